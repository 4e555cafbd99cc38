// Package config handles TOML-based configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// LocalFile is the per-site config file name looked up in the working directory.
const LocalFile = "oembed.toml"

// Config holds all application configuration.
type Config struct {
	CacheDir        string     `toml:"cache_dir"`
	CacheBackend    string     `toml:"cache_backend"`
	MemoryCacheSize int        `toml:"memory_cache_size"`
	Timeout         Duration   `toml:"timeout"`
	UserAgent       string     `toml:"user_agent"`
	Format          string     `toml:"format"`
	MaxWidth        int        `toml:"max_width"`
	MaxHeight       int        `toml:"max_height"`
	Concurrency     int        `toml:"concurrency"`
	Debug           bool       `toml:"debug"`
	Providers       []Provider `toml:"providers"`
}

// Provider declares a custom oEmbed provider. Custom providers take
// precedence over the built-in set.
type Provider struct {
	Name     string   `toml:"name"`
	Endpoint string   `toml:"endpoint"`
	Schemes  []string `toml:"schemes"`
}

// Duration is a time.Duration that decodes from a TOML string like "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CacheDir:        ".oembed-cache",
		CacheBackend:    "file",
		MemoryCacheSize: 0,
		Timeout:         Duration{5 * time.Second},
		UserAgent:       "",
		Format:          "json",
		Concurrency:     4,
		Debug:           false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "oembedtag"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "oembedtag"), nil
}

// ConfigPath returns the path to the user-level config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration and merges it with defaults. An explicit path
// must exist; otherwise ./oembed.toml and then the user config file are
// tried, and defaults are returned when neither exists.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path, true)
	}

	if _, err := os.Stat(LocalFile); err == nil {
		return loadFile(LocalFile, true)
	}

	userPath, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return loadFile(userPath, false)
}

func loadFile(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// A cache_dir set in a file is relative to that file.
	if md.IsDefined("cache_dir") && !filepath.IsAbs(cfg.CacheDir) && !strings.HasPrefix(cfg.CacheDir, "~/") {
		cfg.CacheDir = filepath.Join(filepath.Dir(path), cfg.CacheDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir cannot be empty")
	}

	validBackends := map[string]bool{"file": true, "sqlite": true}
	if !validBackends[strings.ToLower(c.CacheBackend)] {
		return fmt.Errorf("unsupported cache backend %q (valid: file, sqlite)", c.CacheBackend)
	}

	validFormats := map[string]bool{"json": true, "xml": true}
	if !validFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("unsupported format %q (valid: json, xml)", c.Format)
	}

	if c.Timeout.Duration <= 0 || c.Timeout.Duration > 2*time.Minute {
		return fmt.Errorf("timeout %s out of range (0, 2m]", c.Timeout.Duration)
	}

	if c.MemoryCacheSize < 0 {
		return fmt.Errorf("memory_cache_size cannot be negative")
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return fmt.Errorf("max_width and max_height cannot be negative")
	}
	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("concurrency %d out of range [1, 64]", c.Concurrency)
	}

	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider #%d has no name", i+1)
		}
		if !strings.HasPrefix(p.Endpoint, "http://") && !strings.HasPrefix(p.Endpoint, "https://") {
			return fmt.Errorf("provider %q endpoint must be an http(s) URL", p.Name)
		}
		if len(p.Schemes) == 0 {
			return fmt.Errorf("provider %q declares no URL schemes", p.Name)
		}
	}

	return nil
}

// ExpandCacheDir resolves ~ in the cache directory path and makes it absolute.
func (c *Config) ExpandCacheDir() (string, error) {
	dir := c.CacheDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}
