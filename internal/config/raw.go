package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors a single YAML file. Nil fields were not set in that file.
type RawConfig struct {
	Include                 IncludeList     `yaml:"include"`
	ToggleOrientationHotkey *string         `yaml:"toggle_orientation_hotkey"`
	AltToggleHotkey         *string         `yaml:"alt_toggle_hotkey"`
	Display                 *string         `yaml:"display"`
	ScreenPadding           *RawMargins     `yaml:"screen_padding"`
	Ignore                  *RawIgnoreRules `yaml:"ignore"`
	RequireTitle            *bool           `yaml:"require_title"`
	ReconcileInterval       *int            `yaml:"reconcile_interval"`
	LogLevel                *string         `yaml:"log_level"`
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

// RawIgnoreRules replaces the corresponding list wholesale when set.
type RawIgnoreRules struct {
	Classes []string `yaml:"classes"`
	Titles  []string `yaml:"titles"`
}

// merge layers overlay on top of c; later files win key by key.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.ToggleOrientationHotkey != nil {
		out.ToggleOrientationHotkey = overlay.ToggleOrientationHotkey
	}
	if overlay.AltToggleHotkey != nil {
		out.AltToggleHotkey = overlay.AltToggleHotkey
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.ScreenPadding != nil {
		base := RawMargins{}
		if out.ScreenPadding != nil {
			base = *out.ScreenPadding
		}
		merged := mergeRawMargins(base, *overlay.ScreenPadding)
		out.ScreenPadding = &merged
	}
	if overlay.Ignore != nil {
		base := RawIgnoreRules{}
		if out.Ignore != nil {
			base = *out.Ignore
		}
		if overlay.Ignore.Classes != nil {
			base.Classes = overlay.Ignore.Classes
		}
		if overlay.Ignore.Titles != nil {
			base.Titles = overlay.Ignore.Titles
		}
		out.Ignore = &base
	}
	if overlay.RequireTitle != nil {
		out.RequireTitle = overlay.RequireTitle
	}
	if overlay.ReconcileInterval != nil {
		out.ReconcileInterval = overlay.ReconcileInterval
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.ToggleOrientationHotkey != nil {
		cfg.ToggleOrientationHotkey = *raw.ToggleOrientationHotkey
	}
	if raw.AltToggleHotkey != nil {
		cfg.AltToggleHotkey = *raw.AltToggleHotkey
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.ScreenPadding != nil {
		cfg.ScreenPadding = Margins{
			Top:    derefInt(raw.ScreenPadding.Top, cfg.ScreenPadding.Top),
			Bottom: derefInt(raw.ScreenPadding.Bottom, cfg.ScreenPadding.Bottom),
			Left:   derefInt(raw.ScreenPadding.Left, cfg.ScreenPadding.Left),
			Right:  derefInt(raw.ScreenPadding.Right, cfg.ScreenPadding.Right),
		}
	}
	if raw.Ignore != nil {
		if raw.Ignore.Classes != nil {
			cfg.Ignore.Classes = raw.Ignore.Classes
		}
		if raw.Ignore.Titles != nil {
			cfg.Ignore.Titles = raw.Ignore.Titles
		}
	}
	if raw.RequireTitle != nil {
		cfg.RequireTitle = *raw.RequireTitle
	}
	if raw.ReconcileInterval != nil {
		cfg.ReconcileInterval = *raw.ReconcileInterval
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
