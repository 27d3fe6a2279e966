package diagnostics

import (
	"sync"
	"time"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// PassTimings captures time spent in each pipeline pass (ms).
type PassTimings struct {
	TickMs     float64 `json:"tickMs"`
	DigestMs   float64 `json:"digestMs"`
	StyleMs    float64 `json:"styleMs"`
	MeasureMs  float64 `json:"measureMs"`
	ArrangeMs  float64 `json:"arrangeMs"`
	PositionMs float64 `json:"positionMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	Digest     int `json:"digest"`
	Style      int `json:"style"`
	Measure    int `json:"measure"`
	Arrange    int `json:"arrange"`
	Position   int `json:"position"`
	Errors     int `json:"errors"`
	Violations int `json:"violations"`
	Deferred   int `json:"deferred"`
	Elements   int `json:"elements"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Frame     uint64      `json:"frame"`
	Timestamp int64       `json:"ts"`
	DeltaMs   float64     `json:"deltaMs"`
	FrameMs   float64     `json:"frameMs"`
	Passes    PassTimings `json:"passes"`
	Counts    FrameCounts `json:"counts"`
}

// FrameTimeline is the /frames response shape.
type FrameTimeline struct {
	Samples     []FrameSample `json:"samples"`
	SlowFrames  int           `json:"slowFrames"`
	ThresholdMs float64       `json:"thresholdMs"`
}

// SampleFrame converts a presenter frame into a trace sample. elements
// is the size of the tree, or zero when unknown.
func SampleFrame(f ui.FrameInfo, elements int) FrameSample {
	st := f.Stats
	return FrameSample{
		Frame:     f.Frame,
		Timestamp: f.Start.UnixMilli(),
		DeltaMs:   durationToMillis(f.Delta),
		FrameMs:   durationToMillis(f.Duration),
		Passes: PassTimings{
			TickMs:     durationToMillis(f.Tick),
			DigestMs:   durationToMillis(st.PassDuration[layout.PassDigest]),
			StyleMs:    durationToMillis(st.PassDuration[layout.PassStyle]),
			MeasureMs:  durationToMillis(st.PassDuration[layout.PassMeasure]),
			ArrangeMs:  durationToMillis(st.PassDuration[layout.PassArrange]),
			PositionMs: durationToMillis(st.PassDuration[layout.PassPosition]),
		},
		Counts: FrameCounts{
			Digest:     st.Processed[layout.PassDigest],
			Style:      st.Processed[layout.PassStyle],
			Measure:    st.Processed[layout.PassMeasure],
			Arrange:    st.Processed[layout.PassArrange],
			Position:   st.Processed[layout.PassPosition],
			Errors:     st.Errors,
			Violations: st.Violations,
			Deferred:   st.Deferred,
			Elements:   elements,
		},
	}
}

// FrameTraceBuffer stores recent frame samples in a ring buffer. It is
// safe for concurrent use.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   []FrameSample
	index     int
	count     int
	slow      int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a buffer. Non-positive arguments select
// 240 samples and a 60 fps threshold.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   make([]FrameSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *FrameTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Threshold returns the slow frame threshold.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a sample and counts it as slow when frameDuration exceeds
// the threshold.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if frameDuration > b.threshold {
		b.slow++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return FrameTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]FrameSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return FrameTimeline{
		Samples:     result,
		SlowFrames:  b.slow,
		ThresholdMs: durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
