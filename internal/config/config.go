// Package config loads keylex session settings from YAML or TOML, with
// KEYLEX_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"keylex/internal/logutil"
	"keylex/stream"
)

// Duration decodes Go duration strings such as "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	// Grammar is the token file. A relative path is resolved against the
	// directory of the config file.
	Grammar  string   `yaml:"grammar" toml:"grammar"`
	Timeout  Duration `yaml:"timeout" toml:"timeout"`
	Ignore   []string `yaml:"ignore" toml:"ignore"`
	LogLevel string   `yaml:"log_level" toml:"log_level"`
	// Actions maps token names to Lua chunks.
	Actions map[string]string `yaml:"actions" toml:"actions"`
}

func Default() *Config {
	return &Config{
		Timeout:  Duration(stream.DefaultTimeout),
		LogLevel: "info",
	}
}

// Load reads path, picking the decoder from its extension, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.Grammar != "" && !filepath.IsAbs(cfg.Grammar) {
		cfg.Grammar = filepath.Join(filepath.Dir(path), cfg.Grammar)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// ApplyEnv overrides fields from KEYLEX_GRAMMAR, KEYLEX_TIMEOUT and
// KEYLEX_DEBUG.
func (c *Config) ApplyEnv() error {
	if g := clean("KEYLEX_GRAMMAR"); g != "" {
		c.Grammar = g
	}
	if s := clean("KEYLEX_TIMEOUT"); s != "" {
		if err := c.Timeout.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("KEYLEX_TIMEOUT: %w", err)
		}
	}
	if s := clean("KEYLEX_DEBUG"); s != "" {
		debug, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("KEYLEX_DEBUG: %w", err)
		}
		if debug {
			c.LogLevel = "debug"
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	return logutil.ParseLevel(c.LogLevel)
}

// IgnoredKeys returns the configured keys, or stream.DefaultIgnoredKeys
// when the file does not mention any.
func (c *Config) IgnoredKeys() []string {
	if c.Ignore == nil {
		return stream.DefaultIgnoredKeys
	}
	return c.Ignore
}

// StreamOptions turns the timing and key settings into adapter options.
func (c *Config) StreamOptions() []stream.Option {
	return []stream.Option{
		stream.WithTimeout(time.Duration(c.Timeout)),
		stream.WithIgnoredKeys(c.IgnoredKeys()...),
	}
}
