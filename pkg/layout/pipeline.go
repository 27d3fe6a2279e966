package layout

import (
	"fmt"
	"time"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/logging"
)

// Pass identifies one stage of the per-frame pipeline. Passes run in
// declaration order.
type Pass int

const (
	// PassDigest recomputes pending dependency values.
	PassDigest Pass = iota
	// PassStyle applies stylesheets.
	PassStyle
	// PassMeasure computes desired sizes.
	PassMeasure
	// PassArrange assigns final rectangles.
	PassArrange
	// PassPosition resolves absolute positions.
	PassPosition

	passCount
)

// Passes lists every pass in execution order.
var Passes = [passCount]Pass{PassDigest, PassStyle, PassMeasure, PassArrange, PassPosition}

func (p Pass) String() string {
	switch p {
	case PassDigest:
		return "digest"
	case PassStyle:
		return "style"
	case PassMeasure:
		return "measure"
	case PassArrange:
		return "arrange"
	case PassPosition:
		return "position"
	default:
		return fmt.Sprintf("pass(%d)", int(p))
	}
}

// DefaultMaxIterations bounds the nodes processed by one pass in one Run.
const DefaultMaxIterations = 1 << 16

// Handler processes one node during a pass.
type Handler[N Node] func(n N) error

// Stats summarizes one Run.
type Stats struct {
	// Processed counts handled nodes per pass.
	Processed [passCount]int
	// Errors counts nodes whose handler failed or panicked.
	Errors int
	// Violations counts schedules into a pass that had already run.
	Violations int
	// Deferred counts nodes left queued because a pass hit its iteration
	// limit.
	Deferred int
	// PassDuration is the wall time spent draining each pass.
	PassDuration [passCount]time.Duration
	// Duration is the wall time of the Run.
	Duration time.Duration
}

// Total returns the number of processed nodes across passes.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Processed {
		n += c
	}
	return n
}

// Pipeline owns one invalidation queue per pass and drains them in order.
//
// Within a pass nodes are processed shallowest first, so an ancestor
// always precedes its descendants. Handlers may schedule nodes into the
// pass that is running or any later pass; those are drained in the same
// Run. Scheduling into an earlier pass is a violation: it is reported and
// the node waits for the next Run.
//
// A Pipeline is owned by the goroutine that drives frames and is not safe
// for concurrent use.
type Pipeline[N Node] struct {
	queues   [passCount]Queue[N]
	handlers [passCount]Handler[N]

	running Pass
	active  bool
	stats   Stats

	// MaxIterations bounds each pass per Run. Zero means
	// DefaultMaxIterations.
	MaxIterations int
}

// NewPipeline creates an empty pipeline.
func NewPipeline[N Node]() *Pipeline[N] {
	return &Pipeline[N]{}
}

// Handle installs the handler for pass. Nodes in a pass without a handler
// are dequeued and counted but otherwise ignored.
func (p *Pipeline[N]) Handle(pass Pass, h Handler[N]) {
	p.handlers[pass] = h
}

// Schedule queues n for pass. It reports whether n was newly queued.
func (p *Pipeline[N]) Schedule(pass Pass, n N) bool {
	if p.active && pass < p.running {
		p.stats.Violations++
		uverrors.Report(&uverrors.UVError{
			Op:   "layout.Schedule",
			Kind: uverrors.KindPipeline,
			Err: fmt.Errorf("%v scheduled for %s while %s is running; deferred to next frame",
				n, pass, p.running),
		})
	}
	return p.queues[pass].Enqueue(n)
}

// Cancel removes n from the queue for pass. It reports whether n was
// queued.
func (p *Pipeline[N]) Cancel(pass Pass, n N) bool {
	return p.queues[pass].Remove(n)
}

// Unschedule removes n from every queue.
func (p *Pipeline[N]) Unschedule(n N) {
	for i := range p.queues {
		p.queues[i].Remove(n)
	}
}

// Scheduled reports whether n is queued for pass.
func (p *Pipeline[N]) Scheduled(pass Pass, n N) bool {
	return p.queues[pass].Contains(n)
}

// Pending returns the number of nodes queued for pass.
func (p *Pipeline[N]) Pending(pass Pass) int {
	return p.queues[pass].Len()
}

// Queued returns the nodes queued for pass in dequeue order.
func (p *Pipeline[N]) Queued(pass Pass) []N {
	return p.queues[pass].Snapshot()
}

// Idle reports whether every queue is empty.
func (p *Pipeline[N]) Idle() bool {
	for i := range p.queues {
		if p.queues[i].Len() > 0 {
			return false
		}
	}
	return true
}

// Running returns the pass being drained, if any.
func (p *Pipeline[N]) Running() (Pass, bool) {
	return p.running, p.active
}

// Clear empties every queue.
func (p *Pipeline[N]) Clear() {
	for i := range p.queues {
		p.queues[i].Clear()
	}
}

// Run drains every pass in order and returns statistics for this run.
// Handler errors and panics are reported to the error handler; the failing
// node stays dequeued and the pass continues.
func (p *Pipeline[N]) Run() Stats {
	if p.active {
		// Re-entrant Run from a handler would corrupt the pass order.
		uverrors.Report(uverrors.New("layout.Run", uverrors.KindPipeline,
			fmt.Errorf("pipeline is already running %s", p.running)))
		return Stats{}
	}
	start := time.Now()
	p.stats = Stats{}
	p.active = true
	defer func() { p.active = false }()

	limit := p.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	for _, pass := range Passes {
		p.running = pass
		passStart := time.Now()
		p.drain(pass, limit)
		p.stats.PassDuration[pass] = time.Since(passStart)
	}
	p.stats.Duration = time.Since(start)
	if p.stats.Total() > 0 {
		logging.Logger().Debug("pipeline run",
			"digest", p.stats.Processed[PassDigest],
			"style", p.stats.Processed[PassStyle],
			"measure", p.stats.Processed[PassMeasure],
			"arrange", p.stats.Processed[PassArrange],
			"position", p.stats.Processed[PassPosition],
			"errors", p.stats.Errors,
			"duration", p.stats.Duration)
	}
	return p.stats
}

func (p *Pipeline[N]) drain(pass Pass, limit int) {
	q := &p.queues[pass]
	h := p.handlers[pass]
	for processed := 0; q.Len() > 0; processed++ {
		if processed >= limit {
			p.stats.Deferred += q.Len()
			uverrors.Report(uverrors.New("layout.Run", uverrors.KindPipeline,
				fmt.Errorf("%s pass exceeded %d nodes; %d deferred", pass, limit, q.Len())))
			return
		}
		n, _ := q.Dequeue()
		p.stats.Processed[pass]++
		if h == nil {
			continue
		}
		p.process(pass, h, n)
	}
}

// process runs h for n, converting errors and panics into reports.
func (p *Pipeline[N]) process(pass Pass, h Handler[N], n N) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.Errors++
			uverrors.ReportPipelineError(&uverrors.PipelineError{
				Pass:       pass.String(),
				Node:       fmt.Sprint(n),
				Recovered:  r,
				StackTrace: uverrors.CaptureStack(),
			})
		}
	}()
	if err := h(n); err != nil {
		p.stats.Errors++
		uverrors.ReportPipelineError(&uverrors.PipelineError{
			Pass: pass.String(),
			Node: fmt.Sprint(n),
			Err:  err,
		})
	}
}
