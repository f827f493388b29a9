// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package view composes aggregated results into what a results page shows.

# Building

	b := view.NewBuilder(chart.NewAdapter(settings), clock)
	v := b.Build(payload)

A view carries:

  - Bars: one per option, labelled "59 votes (84.3%)"
  - Slices and Legend: pie chart data, shown only when there are votes
  - Summary and Cards: leading option, totals and creation time
  - RingTarget: the leading share rounded to a whole percent
  - Issues: integrity warnings found in the upstream payload

# Rendering

RenderPie and RenderRing produce standalone SVG documents. The pie is drawn
counter-clockwise from 3 o'clock with labels placed by chart.PlaceLabel; the
ring draws its stroke from 12 o'clock.
*/
package view
