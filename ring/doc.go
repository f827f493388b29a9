// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ring drives the progress ring that shows the leading option's share.

A ring starts at 0 and, 100ms after creation, jumps to its target in a single
step. The frame emitted at that moment has State "animating" so the renderer
can run its stroke transition; afterwards the ring is "settled".

	a := ring.New(84,
		ring.WithClock(clock),
		ring.WithOnChange(func(f ring.Frame) { send(f) }),
	)
	defer a.Dispose()

SetTarget retargets a live ring. The new transition starts from the value
currently shown rather than from 0.

Dispose stops the pending timer. A timer that fires after Dispose never
changes the ring.

# Geometry

The default ring is 280 units wide with radius 105 and stroke width 22. The
stroke dash offset is circumference * (1 - displayed/100).
*/
package ring
