// Package config loads the komma configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Database is the badger directory. Empty keeps the store in memory.
	Database string `yaml:"database,omitempty"`

	// Prefixes are bound on top of rdf, rdfs, owl and xsd.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`

	// Indent is the Manchester generator indent width.
	Indent int `yaml:"indent,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Indent:   2,
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file. Missing fields keep their defaults.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Indent)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for prefix, namespace := range c.Prefixes {
		if prefix != "" && !rdf.IsLocalName(prefix) {
			return fmt.Errorf("invalid prefix %q", prefix)
		}
		if namespace == "" {
			return fmt.Errorf("prefix %q has an empty namespace", prefix)
		}
	}
	return nil
}

// Namespaces returns the built-in prefixes with the configured ones bound on
// top, in prefix order.
func (c *Config) Namespaces() *rdf.Namespaces {
	ns := rdf.DefaultNamespaces()
	prefixes := make([]string, 0, len(c.Prefixes))
	for prefix := range c.Prefixes {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		ns.Bind(prefix, c.Prefixes[prefix])
	}
	return ns
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
