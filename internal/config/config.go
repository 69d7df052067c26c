package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Margins is padding applied to each edge of a rectangle.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// IgnoreRules lists client windows that are never tiled.
type IgnoreRules struct {
	// Classes matches WM_CLASS exactly (case-insensitive).
	Classes []string `yaml:"classes"`
	// Titles matches any window whose title contains one of the substrings.
	Titles []string `yaml:"titles"`
}

// Config is the effective daemon configuration.
type Config struct {
	ToggleOrientationHotkey string      `yaml:"toggle_orientation_hotkey"`
	AltToggleHotkey         string      `yaml:"alt_toggle_hotkey"`
	Display                 string      `yaml:"display,omitempty"`
	ScreenPadding           Margins     `yaml:"screen_padding"`
	Ignore                  IgnoreRules `yaml:"ignore"`
	RequireTitle            bool        `yaml:"require_title"`
	ReconcileInterval       int         `yaml:"reconcile_interval"` // seconds, 0 = disabled
	LogLevel                string      `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		ToggleOrientationHotkey: "Mod1-x",
		AltToggleHotkey:         "Mod1-c",
		RequireTitle:            true,
		ReconcileInterval:       10,
		LogLevel:                "info",
		Ignore: IgnoreRules{
			Classes: []string{},
			Titles:  []string{},
		},
	}
}

// ValidationError points at the config key that failed validation and,
// when known, the file position it was set at.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the effective config.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ToggleOrientationHotkey) == "" {
		return &ValidationError{Path: "toggle_orientation_hotkey", Err: fmt.Errorf("toggle_orientation_hotkey is required")}
	}
	if c.AltToggleHotkey != "" && c.AltToggleHotkey == c.ToggleOrientationHotkey {
		return &ValidationError{Path: "alt_toggle_hotkey", Err: fmt.Errorf("alt_toggle_hotkey duplicates toggle_orientation_hotkey")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	for i, class := range c.Ignore.Classes {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: fmt.Sprintf("ignore.classes[%d]", i), Err: fmt.Errorf("class must not be empty")}
		}
	}
	for i, title := range c.Ignore.Titles {
		if strings.TrimSpace(title) == "" {
			return &ValidationError{Path: fmt.Sprintf("ignore.titles[%d]", i), Err: fmt.Errorf("title pattern must not be empty")}
		}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// SlogLevel maps log_level onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLogLevel(c.LogLevel)
	return level
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// DefaultConfigPath returns ~/.config/splittile/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "splittile", "config.yaml"), nil
}
