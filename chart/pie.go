// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import (
	"fmt"
	"math"

	"github.com/danielhkuo/pollview/models"
)

// Adapter maps results to pie slices using a fixed set of settings
type Adapter struct {
	settings Settings
}

func NewAdapter(settings Settings) *Adapter {
	return &Adapter{settings: settings}
}

var defaultAdapter = NewAdapter(DefaultSettings())

// ToSlices maps results to slices using the default settings
func ToSlices(results []models.Result) []models.PieSlice {
	return defaultAdapter.ToSlices(results)
}

// PlaceLabel positions a slice label using the default settings
func PlaceLabel(g LabelGeometry) (SliceLabel, bool) {
	return defaultAdapter.PlaceLabel(g)
}

func (a *Adapter) Settings() Settings {
	return a.settings
}

// ToSlices maps results to slices in the same order. Colours are assigned by
// position so a stable option order always yields the same colours.
func (a *Adapter) ToSlices(results []models.Result) []models.PieSlice {
	slices := make([]models.PieSlice, len(results))
	for i, r := range results {
		slices[i] = models.PieSlice{
			Name:         r.Text,
			Value:        r.Votes,
			Percentage:   r.Percentage,
			Color:        a.Color(i),
			LabelVisible: a.LabelVisible(r.Percentage),
		}
	}
	return slices
}

// Color returns the palette colour for the slice at index i
func (a *Adapter) Color(i int) string {
	n := len(a.settings.Palette)
	if n == 0 {
		return DefaultPalette[i%PaletteSize]
	}
	return a.settings.Palette[i%n]
}

// LabelVisible reports whether a slice is large enough to carry a label
func (a *Adapter) LabelVisible(percentage float64) bool {
	return percentage >= a.settings.LabelThreshold
}

// LabelGeometry describes one slice as laid out by the renderer.
// MidAngle is in radians, counter-clockwise from the positive x axis.
type LabelGeometry struct {
	CenterX     float64
	CenterY     float64
	MidAngle    float64
	InnerRadius float64
	OuterRadius float64
	Percentage  float64
}

type SliceLabel struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// PlaceLabel computes where a slice label is anchored. The anchor sits at
// LabelRadiusRatio of the way from the inner to the outer radius. Slices
// below the label threshold get no label at all.
func (a *Adapter) PlaceLabel(g LabelGeometry) (SliceLabel, bool) {
	if !a.LabelVisible(g.Percentage) {
		return SliceLabel{}, false
	}

	radius := g.InnerRadius + (g.OuterRadius-g.InnerRadius)*a.settings.LabelRadiusRatio
	return SliceLabel{
		X:    g.CenterX + radius*math.Cos(-g.MidAngle),
		Y:    g.CenterY + radius*math.Sin(-g.MidAngle),
		Text: fmt.Sprintf("%.0f%%", math.Round(g.Percentage)),
	}, true
}
