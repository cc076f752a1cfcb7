package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var deferPrint bool

var printCmd = &cobra.Command{
	Use:   "print <text>...",
	Short: "Print text through the interpreter's print global",
	Long: `Print joins its arguments with spaces and calls the interpreter's print
global with the result. With --defer the call is scheduled on the host loop
instead and runs when the loop drains.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()

		text := strings.Join(args, " ")
		if !deferPrint {
			return s.bridge.Print(text)
		}

		var printErr error
		s.bridge.Schedule(func() error {
			printErr = s.bridge.Print(text)
			return printErr
		})
		s.drain(context.Background())
		return printErr
	},
}

func init() {
	printCmd.Flags().BoolVar(&deferPrint, "defer", false, "Schedule the print on the host loop")
	rootCmd.AddCommand(printCmd)
}
