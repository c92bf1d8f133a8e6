// Package config loads redline's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable knobs. Every field has a default, and an
// absent config file is not an error.
type Config struct {
	// Listen is the serve command's address.
	Listen string `yaml:"listen"`
	// ParagraphGap is the grouping proximity threshold in lines.
	ParagraphGap int `yaml:"paragraph_gap"`
	// ContextChars is how much surrounding text is captured per diff.
	ContextChars int `yaml:"context_chars"`
	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:       "127.0.0.1:6143",
		ParagraphGap: 3,
		ContextChars: 100,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
