package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oembedtag/internal/cache"
	"oembedtag/internal/tag"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached embeds",
}

var cacheKeyCmd = &cobra.Command{
	Use:   "key <url>",
	Short: "Print the cache key for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := urlArg(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cache.Key(u))
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Print the cached HTML for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  cacheShowRun,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <url>",
	Short: "Remove the cached HTML for a URL so it is re-resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  cacheClearRun,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache location and entry count",
	Args:  cobra.NoArgs,
	RunE:  cacheStatsRun,
}

func init() {
	cacheCmd.AddCommand(cacheKeyCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}

// urlArg extracts the URL the same way the tag does.
func urlArg(args []string) (string, error) {
	u, ok := tag.ExtractURL(args[0])
	if !ok {
		return "", fmt.Errorf("no http(s) URL in %q", args[0])
	}
	return u, nil
}

func cacheShowRun(cmd *cobra.Command, args []string) error {
	u, err := urlArg(args)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	html, ok, err := store.Get(cmd.Context(), cache.Key(u))
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	if !ok {
		return fmt.Errorf("no cache entry for %s", u)
	}
	fmt.Fprintln(cmd.OutOrStdout(), html)
	return nil
}

func cacheClearRun(cmd *cobra.Command, args []string) error {
	u, err := urlArg(args)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(cmd.Context(), cache.Key(u)); err != nil {
		return fmt.Errorf("clearing cache entry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cache.Key(u))
	return nil
}

func cacheStatsRun(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := store.Len(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s%s\n", styled(labelStyle, "backend"), cfg.CacheBackend)
	fmt.Fprintf(out, "%s%s\n", styled(labelStyle, "location"), store.Location())
	fmt.Fprintf(out, "%s%d\n", styled(labelStyle, "entries"), n)
	return nil
}
