package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"oembedtag/internal/cache"
	"oembedtag/internal/tag"
)

var (
	flagNoCache bool
	flagFile    string
)

var renderCmd = &cobra.Command{
	Use:   "render [tag text...]",
	Short: "Render the oEmbed HTML for a tag argument",
	Long: `Render prints the embed HTML for the first http(s) URL in the tag text.
Text without a URL renders as an empty string. With --file, every line of the
file is one tag argument and one output line is printed per input line.`,
	Example: `  oembedtag render https://twitter.com/user/status/123
  oembedtag render --no-cache "watch this: https://vimeo.com/76979871"
  oembedtag render -f tags.txt`,
	RunE: renderRun,
}

func init() {
	renderCmd.Flags().BoolVarP(&flagNoCache, "no-cache", "n", false, "Bypass the cache (the oembednocache tag form)")
	renderCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Read one tag argument per line from a file (- for stdin)")
}

func renderRun(cmd *cobra.Command, args []string) error {
	raws, err := renderInputs(args)
	if err != nil {
		return err
	}

	// The uncached form never opens the store, so it never touches the cache dir.
	var store cache.Store
	if !flagNoCache {
		admin, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		store = admin
	}

	res, err := newResolver(store)
	if err != nil {
		return err
	}

	name := tag.NameCached
	if flagNoCache {
		name = tag.NameUncached
	}
	adapter, _ := tag.NewSet(res).Lookup(name)
	log.Debug().Str("tag", name).Int("inputs", len(raws)).Msg("rendering")

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	for _, html := range adapter.RenderAll(cmd.Context(), raws, cfg.Concurrency) {
		fmt.Fprintln(out, html)
	}
	return nil
}

// renderInputs collects tag arguments from args or --file.
func renderInputs(args []string) ([]string, error) {
	if flagFile == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("no tag text given (pass text or --file)")
		}
		return []string{strings.Join(args, " ")}, nil
	}

	f := os.Stdin
	if flagFile != "-" {
		var err error
		f, err = os.Open(flagFile)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", flagFile, err)
		}
		defer f.Close()
	}

	var raws []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raws = append(raws, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", flagFile, err)
	}
	return raws, nil
}
