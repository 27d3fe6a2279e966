package diagnostics

import (
	"runtime"
	"sync"
	"time"
)

const (
	runtimeSampleIntervalDefault = 5 * time.Second
	runtimeSampleWindowDefault   = 60 * time.Second
	runtimeSampleMinInterval     = 1 * time.Second
	runtimeSampleMaxSamples      = 120
)

// RuntimeSample captures runtime memory and GC stats.
type RuntimeSample struct {
	Timestamp    int64  `json:"ts"`
	HeapAlloc    uint64 `json:"heapAlloc"`
	HeapInuse    uint64 `json:"heapInuse"`
	NumGC        uint32 `json:"numGC"`
	LastPauseNs  uint64 `json:"lastPauseNs"`
	PauseTotalNs uint64 `json:"pauseTotalNs"`
	Goroutines   int    `json:"goroutines"`
}

// RuntimeSampler records a RuntimeSample every interval into a ring
// covering window.
type RuntimeSampler struct {
	mu       sync.RWMutex
	samples  []RuntimeSample
	index    int
	count    int
	interval time.Duration

	stopMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// NewRuntimeSampler creates a stopped sampler. Intervals below one second
// are raised to one second; zero values select 5s and 60s.
func NewRuntimeSampler(window, interval time.Duration) *RuntimeSampler {
	if interval <= 0 {
		interval = runtimeSampleIntervalDefault
	}
	interval = max(interval, runtimeSampleMinInterval)
	if window <= 0 {
		window = runtimeSampleWindowDefault
	}
	window = max(window, interval)
	capacity := min(max(int(window/interval), 1), runtimeSampleMaxSamples)
	return &RuntimeSampler{
		samples:  make([]RuntimeSample, capacity),
		interval: interval,
	}
}

// Interval returns the sampling interval.
func (s *RuntimeSampler) Interval() time.Duration { return s.interval }

// Add stores a sample.
func (s *RuntimeSampler) Add(sample RuntimeSample) {
	s.mu.Lock()
	s.samples[s.index] = sample
	s.index = (s.index + 1) % len(s.samples)
	if s.count < len(s.samples) {
		s.count++
	}
	s.mu.Unlock()
}

// Snapshot returns samples in chronological order.
func (s *RuntimeSampler) Snapshot() []RuntimeSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.count == 0 {
		return nil
	}
	result := make([]RuntimeSample, s.count)
	if s.count < len(s.samples) {
		copy(result, s.samples[:s.count])
	} else {
		copy(result, s.samples[s.index:])
		copy(result[len(s.samples)-s.index:], s.samples[:s.index])
	}
	return result
}

// Start takes a sample immediately and then one per interval until Stop.
// Starting a running sampler restarts it.
func (s *RuntimeSampler) Start() {
	s.Stop()
	s.stopMu.Lock()
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done
	s.stopMu.Unlock()

	s.Add(readRuntimeSample())
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Add(readRuntimeSample())
			case <-stop:
				return
			}
		}
	}()
}

// Stop ends sampling and waits for the sampling goroutine to exit.
func (s *RuntimeSampler) Stop() {
	s.stopMu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.stopMu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

func readRuntimeSample() RuntimeSample {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	lastPause := uint64(0)
	if stats.NumGC > 0 {
		lastPause = stats.PauseNs[(stats.NumGC-1)%256]
	}
	return RuntimeSample{
		Timestamp:    time.Now().UnixMilli(),
		HeapAlloc:    stats.HeapAlloc,
		HeapInuse:    stats.HeapInuse,
		NumGC:        stats.NumGC,
		LastPauseNs:  lastPause,
		PauseTotalNs: stats.PauseTotalNs,
		Goroutines:   runtime.NumGoroutine(),
	}
}
