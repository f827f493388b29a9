// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/danielhkuo/pollview/chart"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/ring"
)

const (
	pieSize        = 300.0
	pieRadius      = 120.0
	legendRow      = 22.0
	legendSwatch   = 12.0
	legendTop      = 16.0
	ringTrackColor = "#e5e7eb"
	ringColor      = "#00B39F"
	textColor      = "#0B2B4A"
	emptyColor     = "#e5e7eb"
	fullCircleEps  = 1e-9
)

// RenderPie draws the slices as a standalone SVG pie chart with its legend
// underneath. Labels are placed and suppressed by the settings' policy.
func RenderPie(slices []models.PieSlice, settings chart.Settings) string {
	adapter := chart.NewAdapter(settings)
	legend := adapter.Legend(slices)

	cx, cy := pieSize/2, pieSize/2
	height := pieSize + legendTop + legendRow*float64(len(legend))

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(pieSize), num(height), num(pieSize), num(height))

	arcs := chart.Layout(slices, cx, cy, 0, pieRadius)
	drawn := 0
	for _, arc := range arcs {
		sweep := arc.Sweep()
		if sweep <= 0 {
			continue
		}
		drawn++

		if sweep >= 2*math.Pi-fullCircleEps {
			fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s" fill="%s"><title>%s</title></circle>`,
				num(cx), num(cy), num(pieRadius), html.EscapeString(arc.Slice.Color), html.EscapeString(arc.Slice.Name))
			continue
		}

		x0, y0 := chart.Point(cx, cy, pieRadius, arc.StartAngle)
		x1, y1 := chart.Point(cx, cy, pieRadius, arc.EndAngle)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		fmt.Fprintf(&sb, `<path d="M %s %s L %s %s A %s %s 0 %d 0 %s %s Z" fill="%s" stroke="#ffffff" stroke-width="1"><title>%s</title></path>`,
			num(cx), num(cy), num(x0), num(y0), num(pieRadius), num(pieRadius), large, num(x1), num(y1),
			html.EscapeString(arc.Slice.Color), html.EscapeString(arc.Slice.Name))
	}

	if drawn == 0 {
		fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`, num(cx), num(cy), num(pieRadius), emptyColor)
	}

	for _, arc := range arcs {
		if arc.Sweep() <= 0 {
			continue
		}
		label, ok := adapter.PlaceLabel(arc.Geometry)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, `<text x="%s" y="%s" fill="#ffffff" font-size="14" font-weight="bold" text-anchor="middle" dominant-baseline="central">%s</text>`,
			num(label.X), num(label.Y), html.EscapeString(label.Text))
	}

	for i, entry := range legend {
		y := pieSize + legendTop + legendRow*float64(i)
		fmt.Fprintf(&sb, `<rect x="16" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(y), num(legendSwatch), num(legendSwatch), html.EscapeString(entry.Color))
		fmt.Fprintf(&sb, `<text x="36" y="%s" fill="%s" font-size="13" dominant-baseline="central"><title>%s</title>%s</text>`,
			num(y+legendSwatch/2), textColor, html.EscapeString(entry.FullName), html.EscapeString(entry.Name))
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// RenderRing draws one frame of the progress ring as a standalone SVG
func RenderRing(frame ring.Frame) string {
	g := frame.Geometry
	if g.Radius <= 0 {
		g = ring.DefaultGeometry()
	}
	c := g.Size / 2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(g.Size), num(g.Size), num(g.Size), num(g.Size))
	fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
		num(c), num(c), num(g.Radius), ringTrackColor, num(g.StrokeWidth))
	fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-dasharray="%s" stroke-dashoffset="%s" transform="rotate(-90 %s %s)"/>`,
		num(c), num(c), num(g.Radius), ringColor, num(g.StrokeWidth),
		num(frame.Circumference), num(frame.StrokeOffset), num(c), num(c))
	fmt.Fprintf(&sb, `<text x="%s" y="%s" fill="%s" font-size="40" font-weight="bold" text-anchor="middle" dominant-baseline="central">%s</text>`,
		num(c), num(c), textColor, html.EscapeString(frame.Text))
	sb.WriteString(`</svg>`)
	return sb.String()
}

// RingFrame converts an animator frame to its wire form
func RingFrame(f ring.Frame) models.RingFrame {
	return models.RingFrame{
		Displayed:     f.Displayed,
		Target:        f.Target,
		State:         string(f.State),
		Circumference: f.Circumference,
		StrokeOffset:  f.StrokeOffset,
		Text:          f.Text,
	}
}

// num formats a coordinate with at most two decimals and no trailing zeros
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
