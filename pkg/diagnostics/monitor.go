// Package diagnostics records per-frame pipeline statistics and serves
// them, together with the element tree, over a small HTTP API.
//
//	mon := diagnostics.NewMonitor(presenter, 240, 0)
//	srv := diagnostics.NewServer(mon)
//	port, err := srv.Start(9229)
//
// The presenter is single-threaded, so the monitor copies everything it
// serves at the end of each frame. HTTP handlers only ever read those
// copies.
package diagnostics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/logging"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Monitor observes a presenter's frames.
type Monitor struct {
	trace *FrameTraceBuffer
	sub   event.Handle
	p     *ui.Presenter

	mu     sync.RWMutex
	tree   *ui.ElementSnapshot
	frames uint64
	errors int
}

// NewMonitor subscribes to p. samples and threshold size the frame
// trace; see NewFrameTraceBuffer.
func NewMonitor(p *ui.Presenter, samples int, threshold time.Duration) *Monitor {
	m := &Monitor{
		trace: NewFrameTraceBuffer(samples, threshold),
		p:     p,
	}
	m.sub = p.FrameCompleted.Add(m.record)
	return m
}

// Close stops observing the presenter.
func (m *Monitor) Close() {
	if m.p != nil {
		m.p.FrameCompleted.Remove(m.sub)
		m.p = nil
	}
}

func (m *Monitor) record(f ui.FrameInfo) {
	// Idle frames neither change the tree nor carry timing worth keeping.
	if f.Stats.Total() == 0 && f.Stats.Errors == 0 {
		m.mu.Lock()
		m.frames = f.Frame
		m.mu.Unlock()
		return
	}
	tree := m.p.Snapshot()
	elements := 0
	if tree != nil {
		elements = countElements(tree)
	}
	m.trace.Add(SampleFrame(f, elements), f.Duration)
	if f.Duration > m.trace.Threshold() && logging.Enabled(slog.LevelDebug) {
		logging.Logger().Debug("slow frame",
			"frame", f.Frame,
			"ms", durationToMillis(f.Duration),
			"elements", elements,
		)
	}

	m.mu.Lock()
	m.tree = tree
	m.frames = f.Frame
	m.errors += f.Stats.Errors
	m.mu.Unlock()
}

// Tree returns the element tree as of the last frame that did work, or
// nil before the first one.
func (m *Monitor) Tree() *ui.ElementSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}

// Frames returns the recorded frame timeline.
func (m *Monitor) Frames() FrameTimeline {
	return m.trace.Snapshot()
}

// Status summarizes the monitor for health checks.
type Status struct {
	Status string `json:"status"`
	Frames uint64 `json:"frames"`
	Errors int    `json:"errors"`
}

// Status returns the frame count and the number of pipeline errors seen.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{Status: "ok", Frames: m.frames, Errors: m.errors}
}

func countElements(s *ui.ElementSnapshot) int {
	n := 1
	for i := range s.Children {
		n += countElements(&s.Children[i])
	}
	return n
}
