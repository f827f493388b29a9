// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chart adapts aggregated results for a pie chart.

# Slices

	slices := chart.ToSlices(res)

Each slice carries name, value, percentage, colour and label visibility.
Colours cycle through an 8-colour palette by slice index, so the ninth option
shares the first option's colour. Labels are hidden below 5%.

# Label Placement

	label, ok := adapter.PlaceLabel(chart.LabelGeometry{
		CenterX: 150, CenterY: 150,
		MidAngle:    arc.MidAngle,
		InnerRadius: 0, OuterRadius: 120,
		Percentage:  slice.Percentage,
	})

The anchor is 70% of the way from the inner to the outer radius. Slices under
the threshold return ok == false and render no label.

Layout computes start, end and mid angles for all slices and fills in the
LabelGeometry for each arc.

# Legend

Legend names longer than 25 characters are cut to 25 characters plus "...".

# Settings

Settings can be loaded from YAML:

	palette: ["#00B39F", "#3b82f6", "#84cc16", "#f59e0b",
	          "#6366f1", "#6b7280", "#8b5cf6", "#0ea5e9"]
	label_threshold: 5
	legend_max_length: 25
	label_radius_ratio: 0.7

The palette must contain exactly 8 colours.
*/
package chart
