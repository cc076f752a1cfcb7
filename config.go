package hostbridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Supported interpreter backends.
const (
	BackendLua   = "lua"
	BackendRisor = "risor"
	BackendGoja  = "goja"
)

// Config is the on-disk configuration of a host runtime and its bridge.
type Config struct {
	Backend  string         `json:"backend" yaml:"backend"`
	Names    Names          `json:"names" yaml:"names"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Messages MessagesConfig `json:"messages" yaml:"messages"`
	Loop     LoopConfig     `json:"loop" yaml:"loop"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `json:"json,omitempty" yaml:"json,omitempty"`
}

type MessagesConfig struct {
	// LogDir enables the JSONL message log when set.
	LogDir string `json:"log_dir,omitempty" yaml:"log_dir,omitempty"`
}

type LoopConfig struct {
	// MaxPending bounds the deferral queue. Zero means unbounded.
	MaxPending int `json:"max_pending,omitempty" yaml:"max_pending,omitempty"`
}

// DefaultConfig returns a configuration for the Lua backend with the
// Neovim host names.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendLua,
		Names:   DefaultNames(),
		Log:     LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML configuration file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Names = cfg.Names.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no runtime can accept.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLua, BackendRisor, BackendGoja:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if err := c.Names.Validate(); err != nil {
		return fmt.Errorf("invalid names: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Loop.MaxPending < 0 {
		return fmt.Errorf("loop.max_pending must not be negative")
	}
	return nil
}
