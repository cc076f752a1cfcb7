package main

import (
	"fmt"

	"github.com/deepnoodle-ai/hostbridge/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hostbridge %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
