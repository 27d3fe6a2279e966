package animation

import (
	"slices"
	"time"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// TimeSource provides wall time to Clock.Step. Tests inject a fake one.
type TimeSource interface {
	Now() time.Time
}

type realTime struct{}

func (realTime) Now() time.Time { return time.Now() }

// Clock advances active storyboards. It implements ui.Ticker; Attach
// registers it with a presenter:
//
//	clock := animation.NewClock()
//	clock.Attach(presenter)
//
// An attached clock stops every storyboard that targets an element leaving
// the presenter's tree. A Clock is used from the presenter's goroutine
// only.
type Clock struct {
	active []*Storyboard
	source TimeSource
	last   time.Time
	paused bool

	presenter *ui.Presenter
	detached  event.Handle
}

// NewClock creates a clock reading wall time for Step.
func NewClock() *Clock {
	return &Clock{source: realTime{}}
}

// Attach makes p drive c from Update and follows p's Detached event. A
// clock attached elsewhere is detached first.
func (c *Clock) Attach(p *ui.Presenter) {
	c.Detach()
	c.presenter = p
	c.detached = p.Detached.Add(c.onDetached)
	p.AddTicker(c)
}

// Detach undoes Attach. Active storyboards keep their state.
func (c *Clock) Detach() {
	if c.presenter == nil {
		return
	}
	c.presenter.Detached.Remove(c.detached)
	c.presenter.RemoveTicker(c)
	c.presenter = nil
}

func (c *Clock) onDetached(e *ui.Element) {
	c.StopTargeting(&e.Object)
}

// StopTargeting stops every active storyboard with a timeline animating a
// value of o.
func (c *Clock) StopTargeting(o *dependency.Object) {
	for _, sb := range slices.Clone(c.active) {
		if sb.targets(o) {
			sb.Stop()
		}
	}
}

// SetTimeSource replaces the time source used by Step and returns the
// previous one.
func (c *Clock) SetTimeSource(s TimeSource) TimeSource {
	prev := c.source
	c.source = s
	c.last = time.Time{}
	return prev
}

// Pause stops time for every storyboard on c.
func (c *Clock) Pause() { c.paused = true }

// Resume restarts time after Pause.
func (c *Clock) Resume() { c.paused = false }

// Paused reports whether c is paused.
func (c *Clock) Paused() bool { return c.paused }

// Active returns the number of running or paused storyboards.
func (c *Clock) Active() int { return len(c.active) }

// Step advances by the wall time elapsed since the previous Step. The
// first call only records the time.
func (c *Clock) Step() {
	now := c.source.Now()
	if c.last.IsZero() {
		c.last = now
		return
	}
	dt := now.Sub(c.last)
	c.last = now
	c.Tick(dt)
}

// Tick advances every active storyboard by dt. Storyboards that finish
// are removed. A panicking storyboard is reported and stopped.
func (c *Clock) Tick(dt time.Duration) {
	if c.paused || len(c.active) == 0 {
		return
	}
	for _, sb := range slices.Clone(c.active) {
		c.advance(sb, dt)
	}
}

func (c *Clock) advance(sb *Storyboard, dt time.Duration) {
	defer uverrors.RecoverWithCallback("animation.Clock.Tick", func(any) {
		sb.Stop()
	})
	sb.advance(dt)
}

func (c *Clock) add(sb *Storyboard) {
	if !slices.Contains(c.active, sb) {
		c.active = append(c.active, sb)
	}
}

func (c *Clock) remove(sb *Storyboard) {
	c.active = slices.DeleteFunc(c.active, func(x *Storyboard) bool { return x == sb })
}
