// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import (
	"math"

	"github.com/danielhkuo/pollview/models"
)

// Arc is one laid-out pie slice. Angles are radians, counter-clockwise from
// the positive x axis; y grows downwards as in SVG.
type Arc struct {
	Slice      models.PieSlice
	StartAngle float64
	EndAngle   float64
	MidAngle   float64
	Geometry   LabelGeometry
}

// Sweep returns the angular size of the arc
func (a Arc) Sweep() float64 {
	return a.EndAngle - a.StartAngle
}

// Point returns the SVG coordinates at angle on a circle of radius r around (cx, cy)
func Point(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(-angle), cy + r*math.Sin(-angle)
}

// Layout assigns each slice a sweep proportional to its value. Slices with no
// votes get an empty arc. When every value is zero all arcs are empty.
func Layout(slices []models.PieSlice, cx, cy, innerRadius, outerRadius float64) []Arc {
	total := 0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}

	arcs := make([]Arc, len(slices))
	angle := 0.0
	for i, s := range slices {
		sweep := 0.0
		if total > 0 && s.Value > 0 {
			sweep = 2 * math.Pi * float64(s.Value) / float64(total)
		}

		mid := angle + sweep/2
		arcs[i] = Arc{
			Slice:      s,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			MidAngle:   mid,
			Geometry: LabelGeometry{
				CenterX:     cx,
				CenterY:     cy,
				MidAngle:    mid,
				InnerRadius: innerRadius,
				OuterRadius: outerRadius,
				Percentage:  s.Percentage,
			},
		}
		angle += sweep
	}

	return arcs
}
