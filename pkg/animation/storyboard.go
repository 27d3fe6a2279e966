// Package animation drives dependency property values over time.
//
// A [Timeline] interpolates one property between two values with an
// easing curve; a [Storyboard] groups timelines and adds repetition and
// auto-reverse; a [Clock] advances active storyboards once per frame.
// Animated values occupy the highest-precedence layer of a trackable
// value, so they win over local, styled and inherited values while the
// storyboard runs.
//
//	clock := animation.NewClock()
//	clock.Attach(presenter)
//
//	sb, err := animation.Animate(clock, panel, ui.OpacityProperty, 0.0,
//	    300*time.Millisecond, "ease-out")
//
// Interpolation progress comes from gween tweens.
package animation

import (
	"fmt"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Animatable is a timeline a storyboard can drive.
type Animatable interface {
	// Span returns BeginTime plus Duration.
	Span() time.Duration

	begin()
	seek(t time.Duration)
	clear()
	target() *dependency.Object
}

// Timeline animates one trackable value from From (or its current value)
// to To.
type Timeline[T any] struct {
	Target *dependency.Value[T]
	// From is the start value. Nil starts from the target's effective
	// value when the storyboard begins.
	From *T
	To   T
	// BeginTime delays the timeline relative to its storyboard.
	BeginTime time.Duration
	Duration  time.Duration
	// Ease shapes progress. Nil is linear.
	Ease ease.TweenFunc
	// Lerp interpolates values. Nil holds the start value and switches to
	// To at the end.
	Lerp LerpFunc[T]

	start T
	tween *gween.Tween
}

// NewTimeline creates a linear timeline to to over d using the built-in
// interpolator for T.
func NewTimeline[T any](target *dependency.Value[T], to T, d time.Duration) *Timeline[T] {
	return &Timeline[T]{Target: target, To: to, Duration: d, Lerp: LerpFor[T]()}
}

// WithFrom sets an explicit start value.
func (tl *Timeline[T]) WithFrom(x T) *Timeline[T] {
	tl.From = &x
	return tl
}

// WithEasing sets the easing curve by name. See Easing.
func (tl *Timeline[T]) WithEasing(name string) (*Timeline[T], error) {
	fn, err := Easing(name)
	if err != nil {
		return tl, err
	}
	tl.Ease = fn
	return tl, nil
}

// Span implements Animatable.
func (tl *Timeline[T]) Span() time.Duration { return tl.BeginTime + tl.Duration }

func (tl *Timeline[T]) begin() {
	if tl.From != nil {
		tl.start = *tl.From
	} else {
		tl.start = tl.Target.Get()
	}
	fn := tl.Ease
	if fn == nil {
		fn = ease.Linear
	}
	tl.tween = gween.New(0, 1, float32(tl.Duration.Seconds()), fn)
}

func (tl *Timeline[T]) seek(t time.Duration) {
	local := t - tl.BeginTime
	if local < 0 {
		return
	}
	done := tl.Duration <= 0 || local >= tl.Duration
	progress := 1.0
	if !done {
		p, _ := tl.tween.Set(float32(local.Seconds()))
		progress = float64(p)
	}
	tl.Target.SetAnimated(tl.value(progress, done))
}

func (tl *Timeline[T]) value(progress float64, done bool) T {
	switch {
	case done:
		return tl.To
	case tl.Lerp == nil:
		return tl.start
	default:
		return tl.Lerp(tl.start, tl.To, progress)
	}
}

func (tl *Timeline[T]) clear() { tl.Target.ClearAnimated() }

func (tl *Timeline[T]) target() *dependency.Object { return tl.Target.Object() }

// FillBehavior selects what a completed storyboard leaves behind.
type FillBehavior uint8

const (
	// FillHoldEnd keeps the final animated values.
	FillHoldEnd FillBehavior = iota
	// FillStop clears the animated layers on completion.
	FillStop
)

// State is the lifecycle state of a storyboard.
type State uint8

const (
	Stopped State = iota
	Running
	Paused
	// Filling means completed and holding final values.
	Filling
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Filling:
		return "filling"
	default:
		return "stopped"
	}
}

// Forever repeats a storyboard until it is stopped.
const Forever = -1

// Storyboard runs a group of timelines on a shared time line.
type Storyboard struct {
	Name string
	// Repeat is the number of iterations. Zero and one both run once;
	// any negative value, such as Forever, repeats until stopped.
	Repeat int
	// AutoReverse plays every iteration forward and then backward.
	AutoReverse bool
	Fill        FillBehavior
	// SpeedRatio scales elapsed time. Zero means 1.
	SpeedRatio float64

	// Completed is emitted when the last iteration ends.
	Completed event.List[*Storyboard]

	children []Animatable
	clock    *Clock
	elapsed  time.Duration
	state    State
}

// NewStoryboard creates a storyboard over the given timelines.
func NewStoryboard(children ...Animatable) *Storyboard {
	return &Storyboard{children: children}
}

// Add appends timelines.
func (s *Storyboard) Add(children ...Animatable) {
	s.children = append(s.children, children...)
}

// Duration returns the length of one forward iteration.
func (s *Storyboard) Duration() time.Duration {
	var d time.Duration
	for _, c := range s.children {
		d = max(d, c.Span())
	}
	return d
}

// State returns the lifecycle state.
func (s *Storyboard) State() State { return s.state }

// Elapsed returns the scaled time since Begin.
func (s *Storyboard) Elapsed() time.Duration { return s.elapsed }

// Begin starts, or restarts, the storyboard on c.
func (s *Storyboard) Begin(c *Clock) {
	if s.clock != nil && s.clock != c {
		s.clock.remove(s)
	}
	s.clock = c
	s.elapsed = 0
	s.state = Running
	for _, ch := range s.children {
		ch.begin()
	}
	c.add(s)
	s.apply()
}

// Stop ends the storyboard and clears every animated value it set.
func (s *Storyboard) Stop() {
	if s.clock != nil {
		s.clock.remove(s)
	}
	for _, ch := range s.children {
		ch.clear()
	}
	s.state = Stopped
}

func (s *Storyboard) targets(o *dependency.Object) bool {
	for _, ch := range s.children {
		if ch.target() == o {
			return true
		}
	}
	return false
}

// Pause freezes a running storyboard at its current values.
func (s *Storyboard) Pause() {
	if s.state == Running {
		s.state = Paused
	}
}

// Resume continues a paused storyboard.
func (s *Storyboard) Resume() {
	if s.state == Paused {
		s.state = Running
	}
}

// Seek jumps to offset d from the start, measured in storyboard time.
func (s *Storyboard) Seek(d time.Duration) {
	if s.state != Running && s.state != Paused {
		return
	}
	s.elapsed = max(d, 0)
	s.apply()
}

func (s *Storyboard) advance(dt time.Duration) {
	if s.state != Running {
		return
	}
	if s.SpeedRatio > 0 && s.SpeedRatio != 1 {
		dt = time.Duration(float64(dt) * s.SpeedRatio)
	}
	s.elapsed += dt
	s.apply()
}

func (s *Storyboard) apply() {
	period := s.Duration()
	cycle := period
	if s.AutoReverse {
		cycle *= 2
	}
	iterations := max(s.Repeat, 1)
	forever := s.Repeat < 0
	if cycle <= 0 || (!forever && s.elapsed >= cycle*time.Duration(iterations)) {
		s.complete(period)
		return
	}
	pos := s.elapsed % cycle
	if s.AutoReverse && pos > period {
		pos = cycle - pos
	}
	for _, ch := range s.children {
		ch.seek(pos)
	}
}

func (s *Storyboard) complete(period time.Duration) {
	final := period
	if s.AutoReverse {
		final = 0
	}
	for _, ch := range s.children {
		ch.seek(final)
	}
	if s.clock != nil {
		s.clock.remove(s)
	}
	if s.Fill == FillStop {
		for _, ch := range s.children {
			ch.clear()
		}
		s.state = Stopped
	} else {
		s.state = Filling
	}
	s.Completed.Emit(s)
}

// Animate starts a one-timeline storyboard moving v's property p to to.
func Animate[T any](c *Clock, v ui.Visual, p *dependency.Property[T], to T, d time.Duration, easing string) (*Storyboard, error) {
	tl, err := NewTimeline(ui.ValueOf(v, p), to, d).WithEasing(easing)
	if err != nil {
		return nil, fmt.Errorf("animate %s: %w", p, err)
	}
	sb := NewStoryboard(tl)
	sb.Begin(c)
	return sb, nil
}
