package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ultraviolet-go/upf/pkg/logging"
)

// Handler returns the HTTP API over m:
//
//	GET /health   {"status":"ok","frames":N,"errors":N}
//	GET /tree     element tree of the last frame that did work
//	GET /frames   frame timeline; ?limit=N keeps the newest N samples,
//	              ?min_ms=F keeps frames at least F ms long
//	GET /runtime  memory and GC samples when rt is non-nil; ?window=S
//	              keeps the last S seconds, ?limit=N the newest N
func (m *Monitor) Handler(rt *RuntimeSampler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", m.handleHealth)
	mux.HandleFunc("/tree", m.handleTree)
	mux.HandleFunc("/frames", m.handleFrames)
	mux.HandleFunc("/runtime", func(w http.ResponseWriter, r *http.Request) {
		handleRuntime(rt, w, r)
	})
	return mux
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, m.Status())
}

func (m *Monitor) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tree := m.Tree()
	if tree == nil {
		http.Error(w, "no element tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tree)
}

func (m *Monitor) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := m.Frames()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

func handleRuntime(rt *RuntimeSampler, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt == nil {
		http.Error(w, "runtime sampling disabled", http.StatusServiceUnavailable)
		return
	}
	resp := struct {
		Samples []RuntimeSample `json:"samples"`
	}{
		Samples: applyRuntimeFilters(r, rt.Snapshot()),
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to a buffer first so encoding errors still produce a status.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if minMs := parseFloatQuery(r, "min_ms"); minMs > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
		for _, s := range resp.Samples {
			if s.FrameMs >= minMs {
				filtered = append(filtered, s)
			}
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func applyRuntimeFilters(r *http.Request, samples []RuntimeSample) []RuntimeSample {
	if windowSeconds := parseFloatQuery(r, "window"); windowSeconds > 0 {
		cutoff := time.Now().Add(-time.Duration(windowSeconds * float64(time.Second))).UnixMilli()
		filtered := make([]RuntimeSample, 0, len(samples))
		for _, sample := range samples {
			if sample.Timestamp >= cutoff {
				filtered = append(filtered, sample)
			}
		}
		samples = filtered
	}
	if value := r.URL.Query().Get("limit"); value != "" {
		if limit, err := strconv.Atoi(value); err == nil && limit > 0 && len(samples) > limit {
			samples = samples[len(samples)-limit:]
		}
	}
	return samples
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// Server serves a monitor's Handler on a TCP port and samples runtime
// stats while running.
type Server struct {
	monitor *Monitor
	runtime *RuntimeSampler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a stopped server for m with default runtime
// sampling.
func NewServer(m *Monitor) *Server {
	return &Server{monitor: m, runtime: NewRuntimeSampler(0, 0)}
}

// Runtime returns the server's runtime sampler.
func (s *Server) Runtime() *RuntimeSampler { return s.runtime }

// Start listens on port and serves in the background. It returns the
// actual port, which differs from port when port is 0. Starting a
// running server returns its current port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return 0, fmt.Errorf("diagnostics listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.monitor.Handler(s.runtime),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = server
	s.listener = listener
	s.runtime.Start()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			if s.server == server {
				s.server = nil
				s.listener = nil
			}
			s.mu.Unlock()
			logging.Logger().Error("diagnostics server failed", "err", err)
		}
	}()

	actual := listener.Addr().(*net.TCPAddr).Port
	logging.Logger().Info("diagnostics server listening", "port", actual)
	return actual, nil
}

// Stop shuts the server down, waiting up to two seconds for requests in
// flight.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}
	s.runtime.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
