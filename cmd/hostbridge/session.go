package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/gojastate"
	"github.com/deepnoodle-ai/hostbridge/host"
	"github.com/deepnoodle-ai/hostbridge/luastate"
	"github.com/deepnoodle-ai/hostbridge/risorstate"
)

// runtime is what every backend's Runtime provides.
type runtime interface {
	State() hostbridge.State
	Loop() *host.Loop
	Messages() *host.MessageArea
	Exec(ctx context.Context, src string) error
	Close() error
}

// session is one configured interpreter with its bridge.
type session struct {
	config     *hostbridge.Config
	logger     *slog.Logger
	runtime    runtime
	bridge     *hostbridge.Bridge
	messageLog host.MessageLog
}

func loadConfig() (*hostbridge.Config, error) {
	cfg := hostbridge.DefaultConfig()
	if configPath != "" {
		loaded, err := hostbridge.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(out, errOut io.Writer) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := hostbridge.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	var logger *slog.Logger
	if cfg.Log.JSON {
		logger = hostbridge.NewJSONLogger(os.Stderr, level)
	} else {
		logger = hostbridge.NewLogger(level)
	}

	var messageLog host.MessageLog
	if cfg.Messages.LogDir != "" {
		messageLog = host.NewFileMessageLog(cfg.Messages.LogDir)
	} else {
		messageLog = host.NewNullMessageLog()
	}

	loop := host.NewLoop(host.LoopOptions{
		MaxPending: cfg.Loop.MaxPending,
		Logger:     logger,
	})
	messages := host.NewMessageArea(host.MessageAreaOptions{
		Output: out,
		Log:    messageLog,
		Logger: logger,
	})

	rt, err := newRuntime(cfg, loop, messages, logger)
	if err != nil {
		return nil, err
	}

	var callbacks hostbridge.Callbacks
	if trace {
		callbacks = newTraceCallbacks(errOut)
	}
	bridge, err := hostbridge.New(hostbridge.Options{
		State:     rt.State(),
		Names:     cfg.Names,
		Logger:    logger,
		Callbacks: callbacks,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	logger.Debug("session ready",
		"backend", cfg.Backend,
		"session_id", messages.SessionID())

	return &session{
		config:     cfg,
		logger:     logger,
		runtime:    rt,
		bridge:     bridge,
		messageLog: messageLog,
	}, nil
}

func newRuntime(cfg *hostbridge.Config, loop *host.Loop, messages *host.MessageArea, logger *slog.Logger) (runtime, error) {
	switch cfg.Backend {
	case hostbridge.BackendLua:
		return luastate.NewRuntime(luastate.RuntimeOptions{
			Names: cfg.Names, Loop: loop, Messages: messages, Logger: logger,
		})
	case hostbridge.BackendRisor:
		return risorstate.NewRuntime(risorstate.RuntimeOptions{
			Names: cfg.Names, Loop: loop, Messages: messages, Logger: logger,
		})
	case hostbridge.BackendGoja:
		return gojastate.NewRuntime(gojastate.RuntimeOptions{
			Names: cfg.Names, Loop: loop, Messages: messages, Logger: logger,
		})
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// drain runs deferred jobs until none are left or ctx is done.
func (s *session) drain(ctx context.Context) int {
	loop := s.runtime.Loop()
	total := 0
	for loop.Pending() > 0 && ctx.Err() == nil {
		total += loop.RunPending()
	}
	return total
}

func (s *session) Close() error {
	err := s.runtime.Close()
	if closer, ok := s.messageLog.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
