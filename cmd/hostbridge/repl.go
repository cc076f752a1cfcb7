package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyFile string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Repl reads source a line at a time and executes it in the configured
interpreter. Deferred functions run after each line. A line ending in a
backslash continues on the next line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()
		return repl(cmd.Context(), s, cmd)
	},
}

func init() {
	replCmd.Flags().StringVar(&historyFile, "history", defaultHistoryFile(), "Path to the repl history file")
	rootCmd.AddCommand(replCmd)
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".hostbridge-history")
	}
	return filepath.Join(dir, "hostbridge", "history")
}

func repl(ctx context.Context, s *session, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if historyFile != "" {
		_ = os.MkdirAll(filepath.Dir(historyFile), 0755)
	}

	prompt := promptStyle.Render(s.config.Backend+">") + " "
	contPrompt := contStyle.Render(strings.Repeat(".", len(s.config.Backend)+1)) + " "

	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            cmd.OutOrStdout(),
		Stderr:            cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	printBanner(l.Stderr(), s)

	var pending strings.Builder
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if pending.Len() == 0 && len(line) == 0 {
				return nil
			}
			pending.Reset()
			l.SetPrompt(prompt)
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteString("\n")
			l.SetPrompt(contPrompt)
			continue
		}
		pending.WriteString(line)
		src := pending.String()
		pending.Reset()
		l.SetPrompt(prompt)

		if strings.TrimSpace(src) == "" {
			continue
		}
		if err := s.runtime.Exec(ctx, src); err != nil {
			statusf(l.Stderr(), color.FgRed, "Error: %v", err)
		}
		s.drain(ctx)
	}
}
