package ui

import (
	"slices"
	"time"

	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Styler applies stylesheet rules to an element by setting its styled
// layer. Implemented by package style.
type Styler interface {
	ApplyStyle(e *Element) error
}

// Ticker is advanced once per Update before the pipeline runs. The
// animation clock implements it.
type Ticker interface {
	Tick(dt time.Duration)
}

// FrameInfo describes one completed Update.
type FrameInfo struct {
	// Frame is the sequence number, starting at 1.
	Frame uint64
	// Start is when the update began.
	Start time.Time
	// Delta is the elapsed time passed to Update.
	Delta time.Duration
	// Tick is the time spent advancing tickers.
	Tick time.Duration
	// Duration is the wall time of the whole update.
	Duration time.Duration
	// Stats are the pipeline statistics.
	Stats layout.Stats
}

// Presenter owns a root element and drives the per-frame pipeline:
// Digest, Style, Measure, Arrange and Position.
//
// Presenter is not safe for concurrent use. Call every method, and mutate
// the attached tree, from the goroutine that calls Update.
type Presenter struct {
	root     *Element
	pipeline *layout.Pipeline[*Element]
	viewport layout.Size
	styler   Styler
	text     TextMeasurer
	tickers  []Ticker
	frame    uint64
	last     FrameInfo

	// FrameCompleted is emitted at the end of every Update.
	FrameCompleted event.List[FrameInfo]
	// Detached is emitted for every element leaving the presenter's tree.
	Detached event.List[*Element]
}

// NewPresenter creates a presenter for a viewport of the given size.
func NewPresenter(viewport layout.Size) *Presenter {
	p := &Presenter{
		pipeline: layout.NewPipeline[*Element](),
		viewport: viewport,
		text:     EstimateTextMeasurer{},
	}
	p.pipeline.Handle(layout.PassDigest, p.digest)
	p.pipeline.Handle(layout.PassStyle, p.style)
	p.pipeline.Handle(layout.PassMeasure, p.measure)
	p.pipeline.Handle(layout.PassArrange, p.arrange)
	p.pipeline.Handle(layout.PassPosition, p.position)
	return p
}

// Root returns the root element, or nil.
func (p *Presenter) Root() *Element { return p.root }

// SetRoot replaces the root element. The previous root is detached.
func (p *Presenter) SetRoot(v Visual) error {
	var root *Element
	if v != nil {
		root = v.El()
		if root.parent != nil {
			return ErrAlreadyParented
		}
	}
	if p.root != nil {
		p.root.release()
	}
	p.root = root
	if root == nil {
		return nil
	}
	root.setDepth(0)
	root.attach(p)
	root.InvalidateStyle()
	root.InvalidateMeasure()
	return nil
}

// Viewport returns the available size given to the root.
func (p *Presenter) Viewport() layout.Size { return p.viewport }

// Resize changes the root's available size.
func (p *Presenter) Resize(s layout.Size) {
	if p.viewport.Equal(s) {
		return
	}
	p.viewport = s
	if p.root != nil {
		p.root.InvalidateMeasure()
	}
}

// SetStyler installs the stylesheet engine and restyles the tree.
func (p *Presenter) SetStyler(s Styler) {
	p.styler = s
	if p.root != nil {
		p.root.InvalidateStyle()
	}
}

// TextMeasurer returns the measurer used by text elements.
func (p *Presenter) TextMeasurer() TextMeasurer { return p.text }

// SetTextMeasurer replaces the text measurer and remeasures text.
func (p *Presenter) SetTextMeasurer(m TextMeasurer) {
	if m == nil {
		m = EstimateTextMeasurer{}
	}
	p.text = m
	if p.root != nil {
		p.root.walk(func(e *Element) bool {
			if _, ok := e.self.(*TextBlock); ok {
				e.InvalidateMeasure()
			}
			return true
		})
	}
}

// Pipeline exposes the underlying pipeline for diagnostics.
func (p *Presenter) Pipeline() *layout.Pipeline[*Element] { return p.pipeline }

// LastFrame returns information about the most recent Update.
func (p *Presenter) LastFrame() FrameInfo { return p.last }

// AddTicker registers t to be advanced by every Update.
func (p *Presenter) AddTicker(t Ticker) {
	p.tickers = append(p.tickers, t)
}

// RemoveTicker unregisters t.
func (p *Presenter) RemoveTicker(t Ticker) {
	p.tickers = slices.DeleteFunc(p.tickers, func(x Ticker) bool { return x == t })
}

// Update advances tickers by dt and then runs the pipeline once.
func (p *Presenter) Update(dt time.Duration) FrameInfo {
	start := time.Now()
	for _, t := range p.tickers {
		t.Tick(dt)
	}
	tick := time.Since(start)
	stats := p.pipeline.Run()
	p.frame++
	p.last = FrameInfo{
		Frame:    p.frame,
		Start:    start,
		Delta:    dt,
		Tick:     tick,
		Duration: time.Since(start),
		Stats:    stats,
	}
	p.FrameCompleted.Emit(p.last)
	return p.last
}

func (p *Presenter) digest(e *Element) error {
	e.Object.DigestPending()
	return nil
}

// style applies the stylesheet, digests the new styled layer in place and
// passes the restyle on to the children.
func (p *Presenter) style(e *Element) error {
	// The digest pass has already run; styled values are digested here.
	sched := e.Object.Scheduler()
	e.Object.SetScheduler(nil)
	var err error
	if p.styler != nil {
		e.Object.ClearStyled()
		err = p.styler.ApplyStyle(e)
	}
	e.Object.DigestPending()
	e.Object.SetScheduler(sched)
	for _, c := range e.children {
		p.pipeline.Schedule(layout.PassStyle, c)
	}
	return err
}

func (p *Presenter) measure(e *Element) error {
	switch {
	case e == p.root:
		e.Measure(p.viewport)
		if !e.arrangeValid {
			e.InvalidateArrange()
		}
	case e.parent == nil:
	case !e.measured:
		e.parent.InvalidateMeasure()
	default:
		old := e.desired
		e.Measure(e.available)
		if !old.Equal(e.desired) {
			e.parent.InvalidateMeasure()
		} else if !e.arrangeValid {
			e.InvalidateArrange()
		}
	}
	return nil
}

func (p *Presenter) arrange(e *Element) error {
	switch {
	case e == p.root:
		e.Arrange(layout.RectFromPointSize(layout.Point{}, p.viewport))
	case e.parent == nil:
	case !e.arranged:
		e.parent.InvalidateArrange()
	default:
		e.Arrange(e.final)
	}
	return nil
}

func (p *Presenter) position(e *Element) error {
	if e == p.root || e.parent != nil {
		e.updatePosition()
	}
	return nil
}
