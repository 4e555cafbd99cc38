package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered providers in precedence order",
	Args:  cobra.NoArgs,
	RunE:  providersRun,
}

func providersRun(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styled(headerStyle, "Providers (first match wins)"))
	for i, p := range registry.Providers() {
		fmt.Fprintf(out, "%2d. %s %s\n", i+1, styled(nameStyle, p.Name), styled(dimStyle, p.Endpoint))
		for _, s := range p.Schemes {
			fmt.Fprintf(out, "      %s\n", s)
		}
	}
	return nil
}
