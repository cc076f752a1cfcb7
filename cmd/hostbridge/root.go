package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/hostbridge/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	backend    string
	logLevel   string
	trace      bool
)

var rootCmd = &cobra.Command{
	Use:   "hostbridge",
	Short: "Call into an embedded interpreter from the host and defer work to its loop",
	Long: `hostbridge embeds a scripting interpreter the way an editor host does:
print writes to a message area and vim.schedule defers a function to the
host loop. Lua, Risor and JavaScript interpreters are available.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("hostbridge %s\n", version.String()))

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVarP(&backend, "backend", "b", "", "Interpreter backend (lua, risor, goja)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&trace, "trace", false, "Print every bridge call and schedule to stderr")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
