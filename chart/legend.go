// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import "github.com/danielhkuo/pollview/models"

// TruncateLegend shortens names longer than max characters to max characters
// followed by an ellipsis. Length is counted in runes.
func TruncateLegend(name string, max int) string {
	runes := []rune(name)
	if max <= 0 || len(runes) <= max {
		return name
	}
	return string(runes[:max]) + Ellipsis
}

// Legend builds legend entries for slices in slice order
func (a *Adapter) Legend(slices []models.PieSlice) []models.LegendEntry {
	entries := make([]models.LegendEntry, len(slices))
	for i, s := range slices {
		entries[i] = models.LegendEntry{
			Name:     TruncateLegend(s.Name, a.settings.LegendMaxLength),
			FullName: s.Name,
			Color:    s.Color,
			Value:    s.Value,
		}
	}
	return entries
}
