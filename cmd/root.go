// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"oembedtag/internal/cache"
	"oembedtag/internal/config"
	"oembedtag/internal/httputil"
	"oembedtag/internal/oembed"
	"oembedtag/internal/resolver"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig    string
	flagCacheDir  string
	flagBackend   string
	flagTimeout   time.Duration
	flagFormat    string
	flagMaxWidth  int
	flagMaxHeight int
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "oembedtag",
	Short: "Resolve URLs in site content into oEmbed HTML",
	Long: `oembedtag turns a URL from an {% oembed URL %} tag into embeddable HTML.
Known providers are queried directly, other pages are checked for an oEmbed
discovery link, and anything else renders as a plain link. Results are cached
on disk so rebuilds do not hit the network.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: ./oembed.toml, then user config)")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default: .oembed-cache)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "cache-backend", "", "Cache backend: file | sqlite")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request network timeout (default: 5s)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "oEmbed response format: json | xml")
	rootCmd.PersistentFlags().IntVar(&flagMaxWidth, "max-width", 0, "maxwidth hint sent to providers")
	rootCmd.PersistentFlags().IntVar(&flagMaxHeight, "max-height", 0, "maxheight hint sent to providers")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagBackend != "" {
		cfg.CacheBackend = flagBackend
	}
	if flagTimeout != 0 {
		cfg.Timeout = config.Duration{Duration: flagTimeout}
	}
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	if flagMaxWidth != 0 {
		cfg.MaxWidth = flagMaxWidth
	}
	if flagMaxHeight != 0 {
		cfg.MaxHeight = flagMaxHeight
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(os.Stderr, cfg.Debug)
	return nil
}

// setupLogging writes human-readable logs to a terminal and JSON lines otherwise.
func setupLogging(out *os.File, debug bool) {
	var w io.Writer = out
	if term.IsTerminal(int(out.Fd())) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// newRegistry builds the provider registry from the built-ins and cfg.
func newRegistry() (*oembed.Registry, error) {
	custom := make([]*oembed.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		provider, err := oembed.NewProvider(p.Name, p.Endpoint, p.Schemes...)
		if err != nil {
			return nil, fmt.Errorf("configuring provider %q: %w", p.Name, err)
		}
		custom = append(custom, provider)
	}

	return oembed.NewDefaultRegistry(custom,
		oembed.WithHTTPClient(httputil.NewClient(cfg.Timeout.Duration)),
		oembed.WithUserAgent(cfg.UserAgent),
		oembed.WithRequestOptions(oembed.RequestOptions{
			Format:    oembed.Format(strings.ToLower(cfg.Format)),
			MaxWidth:  cfg.MaxWidth,
			MaxHeight: cfg.MaxHeight,
		}),
		oembed.WithLogger(log.Logger),
	), nil
}

// openStore opens the configured cache backend. The returned close func is never nil.
func openStore() (cache.Admin, func(), error) {
	dir, err := cfg.ExpandCacheDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving cache dir: %w", err)
	}

	store, err := cache.Open(cache.Options{
		Dir:        dir,
		Backend:    cfg.CacheBackend,
		MemorySize: cfg.MemoryCacheSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	closeFn := func() {}
	if c, ok := store.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("closing cache")
			}
		}
	}
	return store, closeFn, nil
}

// newResolver wires registry and store. A nil store disables persistence.
func newResolver(store cache.Store) (*resolver.Resolver, error) {
	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}
	return resolver.New(registry, store, resolver.WithLogger(log.Logger)), nil
}
