// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollview/models"
)

func TestTruncateLegend(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Yes", "Yes"},
		{"exactly max", strings.Repeat("a", 25), strings.Repeat("a", 25)},
		{"one over", strings.Repeat("a", 26), strings.Repeat("a", 25) + "..."},
		{"thirty characters", strings.Repeat("b", 30), strings.Repeat("b", 25) + "..."},
		{"multibyte", strings.Repeat("é", 30), strings.Repeat("é", 25) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateLegend(tt.input, DefaultLegendMaxLength))
		})
	}
}

func TestTruncateLegend_NonPositiveMax(t *testing.T) {
	assert.Equal(t, "anything", TruncateLegend("anything", 0))
}

func TestLegend(t *testing.T) {
	long := "An unreasonably long option name for a poll"
	adapter := NewAdapter(DefaultSettings())
	slices := adapter.ToSlices([]models.Result{
		{Text: long, Votes: 4, Percentage: 80},
		{Text: "Short", Votes: 1, Percentage: 20},
	})

	legend := adapter.Legend(slices)
	require.Len(t, legend, 2)

	assert.Equal(t, "An unreasonably long opti...", legend[0].Name)
	assert.Equal(t, long, legend[0].FullName)
	assert.Equal(t, "#00B39F", legend[0].Color)
	assert.Equal(t, 4, legend[0].Value)

	assert.Equal(t, "Short", legend[1].Name)
	assert.Equal(t, "#3b82f6", legend[1].Color)
}
