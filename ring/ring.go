// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type State string

const (
	StateInitial   State = "initial"
	StateAnimating State = "animating"
	StateSettled   State = "settled"
)

const (
	DefaultDelay       = 100 * time.Millisecond
	DefaultRadius      = 105.0
	DefaultStrokeWidth = 22.0
	DefaultSize        = 280.0
)

// Geometry is the drawn shape of the ring
type Geometry struct {
	Radius      float64
	StrokeWidth float64
	Size        float64
}

func DefaultGeometry() Geometry {
	return Geometry{
		Radius:      DefaultRadius,
		StrokeWidth: DefaultStrokeWidth,
		Size:        DefaultSize,
	}
}

// Circumference of the ring's stroke path
func (g Geometry) Circumference() float64 {
	return 2 * math.Pi * g.Radius
}

// Frame is a point-in-time rendering of the ring
type Frame struct {
	Displayed     float64
	Target        float64
	State         State
	Circumference float64
	StrokeOffset  float64
	Text          string
	Geometry      Geometry
}

// Animator moves a ring from its displayed value to its target after a
// short delay. Each Animator drives exactly one ring and must be disposed
// when that ring goes away.
type Animator struct {
	clock    clockwork.Clock
	delay    time.Duration
	geometry Geometry
	onChange func(Frame)

	mu        sync.Mutex
	state     State
	displayed float64
	target    float64
	timer     clockwork.Timer
	gen       uint64
	disposed  bool
}

type Option func(*Animator)

func WithClock(clock clockwork.Clock) Option {
	return func(a *Animator) {
		a.clock = clock
	}
}

func WithDelay(d time.Duration) Option {
	return func(a *Animator) {
		a.delay = d
	}
}

func WithGeometry(g Geometry) Option {
	return func(a *Animator) {
		a.geometry = g
	}
}

// WithOnChange registers a callback that receives every frame after the
// displayed value changes. It is called from the timer goroutine without the
// animator's lock held.
func WithOnChange(fn func(Frame)) Option {
	return func(a *Animator) {
		a.onChange = fn
	}
}

// New creates an animator showing 0 and schedules the transition to target
func New(target int, opts ...Option) *Animator {
	a := &Animator{
		clock:    clockwork.NewRealClock(),
		delay:    DefaultDelay,
		geometry: DefaultGeometry(),
		state:    StateInitial,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mu.Lock()
	a.target = Clamp(float64(target))
	a.schedule()
	a.mu.Unlock()

	return a
}

// SetTarget retargets the ring. The next transition starts from the value
// currently displayed. An unchanged target is ignored.
func (a *Animator) SetTarget(target int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disposed {
		return
	}

	t := Clamp(float64(target))
	if t == a.target {
		return
	}

	a.target = t
	a.state = StateInitial
	a.schedule()
}

// Dispose cancels any pending transition. It is safe to call more than once.
func (a *Animator) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disposed {
		return
	}
	a.disposed = true
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Animator) Disposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

// Frame returns the current rendering of the ring
func (a *Animator) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

// schedule must be called with mu held
func (a *Animator) schedule() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.delay, func() {
		a.fire(gen)
	})
}

func (a *Animator) fire(gen uint64) {
	a.mu.Lock()
	if a.disposed || gen != a.gen {
		a.mu.Unlock()
		return
	}

	a.state = StateAnimating
	a.displayed = a.target
	frame := a.frameLocked()
	a.state = StateSettled
	a.timer = nil
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(frame)
	}
}

func (a *Animator) frameLocked() Frame {
	circumference := a.geometry.Circumference()
	return Frame{
		Displayed:     a.displayed,
		Target:        a.target,
		State:         a.state,
		Circumference: circumference,
		StrokeOffset:  StrokeOffset(circumference, a.displayed),
		Text:          fmt.Sprintf("%.0f%%", math.Round(a.displayed)),
		Geometry:      a.geometry,
	}
}

// Settled returns the frame of a ring that has finished moving to target
func Settled(target int, g Geometry) Frame {
	t := Clamp(float64(target))
	a := &Animator{geometry: g, state: StateSettled, displayed: t, target: t}
	return a.frameLocked()
}

// StrokeOffset is the dash offset that leaves percent of the circumference drawn
func StrokeOffset(circumference, percent float64) float64 {
	return circumference * (1 - percent/100)
}

// Clamp limits a percentage to [0, 100]
func Clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
