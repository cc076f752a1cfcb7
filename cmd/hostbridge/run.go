package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watch bool

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a script and drain the host loop",
	Long: `Run executes a script in the configured interpreter, then runs every
function the script deferred until the loop is empty. With --watch the
script is executed again whenever the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		s, err := newSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()

		path := args[0]
		if !watch {
			return runFile(ctx, s, path)
		}
		return watchFile(ctx, s, path, cmd)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Run the script again whenever it changes")
	rootCmd.AddCommand(runCmd)
}

func runFile(ctx context.Context, s *session, path string) error {
	start := time.Now()
	if err := execFile(ctx, s, path); err != nil {
		return err
	}
	jobs := s.drain(ctx)
	s.logger.Debug("script finished",
		"path", path,
		"deferred_jobs", jobs,
		"duration", time.Since(start))
	return ctx.Err()
}

func execFile(ctx context.Context, s *session, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if err := s.runtime.Exec(ctx, string(src)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// watchFile runs the host loop on this goroutine. The watcher goroutine only
// posts reload jobs; the script and everything it defers run on the loop.
func watchFile(ctx context.Context, s *session, path string, cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	loop := s.runtime.Loop()
	reload := func() error {
		err := execFile(ctx, s, path)
		if err != nil && ctx.Err() == nil {
			statusf(cmd.ErrOrStderr(), color.FgRed, "Error: %v", err)
		}
		return err
	}
	statusf(cmd.ErrOrStderr(), color.FgBlue, "Watching %s", path)
	if _, err := loop.Enqueue("run "+path, reload); err != nil {
		return err
	}

	go watchEvents(ctx, s, watcher, filepath.Clean(path), func() {
		_, err := loop.Enqueue("reload "+path, func() error {
			statusf(cmd.ErrOrStderr(), color.FgCyan, "Reloading %s", path)
			return reload()
		})
		if err != nil {
			s.logger.Warn("failed to queue reload", "path", path, "error", err)
		}
	})

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func watchEvents(ctx context.Context, s *session, watcher *fsnotify.Watcher, target string, changed func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			// Let the burst of events from one save settle.
			settle := time.After(50 * time.Millisecond)
		flush:
			for {
				select {
				case <-watcher.Events:
				case <-settle:
					break flush
				case <-ctx.Done():
					return
				}
			}
			changed()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}
