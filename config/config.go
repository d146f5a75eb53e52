package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config represents the oyster configuration file
type Config struct {
	Path    string `yaml:"-"`       // Resolved config file, empty when running on defaults
	Prompt  string `yaml:"prompt"`  // REPL prompt prefix; $PWD and ">" are appended
	Process string `yaml:"process"` // "capture" or "inherit"
	Trace   bool   `yaml:"trace"`   // Log each command before it runs
	Color   bool   `yaml:"color"`   // Colored diagnostics in the REPL
	History string `yaml:"history"` // History file (default: $TMPDIR/.oyster_history)
}

// DefaultPrompt is the REPL prompt prefix used when none is configured
const DefaultPrompt = "🦪 "

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Prompt:  DefaultPrompt,
		Process: "inherit",
		Color:   true,
	}
}

// HistoryPath returns the history file location with "~/" expanded.
func (c *Config) HistoryPath() string {
	if c.History == "" {
		return filepath.Join(os.TempDir(), ".oyster_history")
	}
	if strings.HasPrefix(c.History, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.History[2:])
		}
	}
	return c.History
}
