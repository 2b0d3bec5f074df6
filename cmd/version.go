package cmd

import (
	"fmt"

	"github.com/kyle-brindley/turbo-turtle/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "turbo-turtle %s\n", version.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.BuildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
