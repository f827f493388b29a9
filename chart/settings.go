// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// PaletteSize is the number of colours cycled through by slice index
	PaletteSize = 8

	DefaultLabelThreshold   = 5.0
	DefaultLegendMaxLength  = 25
	DefaultLabelRadiusRatio = 0.7

	// Ellipsis is appended to truncated legend names
	Ellipsis = "..."
)

var DefaultPalette = [PaletteSize]string{
	"#00B39F",
	"#3b82f6",
	"#84cc16",
	"#f59e0b",
	"#6366f1",
	"#6b7280",
	"#8b5cf6",
	"#0ea5e9",
}

var ErrInvalidSettings = errors.New("invalid chart settings")

// Settings controls slice colouring, label suppression and legend truncation
type Settings struct {
	Palette          []string `yaml:"palette"`
	LabelThreshold   float64  `yaml:"label_threshold"`
	LegendMaxLength  int      `yaml:"legend_max_length"`
	LabelRadiusRatio float64  `yaml:"label_radius_ratio"`
}

// DefaultSettings returns the shipped chart policy
func DefaultSettings() Settings {
	return Settings{
		Palette:          append([]string(nil), DefaultPalette[:]...),
		LabelThreshold:   DefaultLabelThreshold,
		LegendMaxLength:  DefaultLegendMaxLength,
		LabelRadiusRatio: DefaultLabelRadiusRatio,
	}
}

// LoadSettings reads a YAML settings file. Fields missing from the file keep
// their defaults. An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read chart settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse chart settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Validate checks that the settings describe a usable chart
func (s Settings) Validate() error {
	if len(s.Palette) != PaletteSize {
		return fmt.Errorf("%w: palette must have %d colours, got %d", ErrInvalidSettings, PaletteSize, len(s.Palette))
	}
	for i, c := range s.Palette {
		if c == "" {
			return fmt.Errorf("%w: palette colour %d is empty", ErrInvalidSettings, i)
		}
	}
	if s.LabelThreshold < 0 || s.LabelThreshold > 100 {
		return fmt.Errorf("%w: label_threshold must be within 0-100", ErrInvalidSettings)
	}
	if s.LegendMaxLength <= 0 {
		return fmt.Errorf("%w: legend_max_length must be positive", ErrInvalidSettings)
	}
	if s.LabelRadiusRatio < 0 || s.LabelRadiusRatio > 1 {
		return fmt.Errorf("%w: label_radius_ratio must be within 0-1", ErrInvalidSettings)
	}
	return nil
}
