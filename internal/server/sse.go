package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/AndreyAkinshin/testrig/internal/runner"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Stream statuses.
const (
	streamConnected = "connected"
	streamRunning   = "running"
	streamComplete  = "complete"
	streamError     = "error"
)

// StreamEvent is one server-sent event on /test/stream.
type StreamEvent struct {
	Status    string             `json:"status"`
	Progress  int                `json:"progress"`
	Component string             `json:"component,omitempty"`
	Result    *testparser.Result `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// eventWriter serializes events onto one response. Observer callbacks
// arrive from several workers at once.
type eventWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	failed  bool
}

func (e *eventWriter) send(ev StreamEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failed {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		e.failed = true
		return
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		e.failed = true
		return
	}
	e.flusher.Flush()
}

// progressObserver emits one running event per finished component.
type progressObserver struct {
	runner.NopObserver
	events *eventWriter

	mu    sync.Mutex
	total int
	done  int
}

func (o *progressObserver) RunStarted(components []string, _ int) {
	o.mu.Lock()
	o.total = len(components)
	o.mu.Unlock()
}

func (o *progressObserver) ComponentFinished(outcome runner.Outcome, recorded testparser.Result) {
	o.mu.Lock()
	o.done++
	progress := 100
	if o.total > 0 {
		progress = o.done * 100 / o.total
	}
	o.mu.Unlock()

	ev := StreamEvent{Status: streamRunning, Progress: progress, Component: outcome.Component, Result: &recorded}
	if outcome.Err != nil {
		ev.Error = outcome.Err.Error()
	}
	o.events.send(ev)
}

// handleStream runs all components on the worker pool and streams progress
// as server-sent events: connected, one running event per component, then
// complete or error. Query parameters: agents, component.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(r.Context(), w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req := RunRequest{Parallel: true, Component: r.URL.Query().Get("component")}
	if v := r.URL.Query().Get("agents"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAgents {
			writeError(r.Context(), w, http.StatusBadRequest, "agents must be between 1 and 256")
			return
		}
		req.Agents = n
	}

	if !s.runMu.TryLock() {
		writeError(r.Context(), w, http.StatusConflict, "a test run is already in progress")
		return
	}
	defer s.runMu.Unlock()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events := &eventWriter{w: w, flusher: flusher}
	events.send(StreamEvent{Status: streamConnected})

	progress := &progressObserver{events: events}
	report, err := s.execute(r.Context(), req, runner.Observers{s.metrics.Observer(), progress})
	if err != nil {
		s.logger.Warn("streamed run failed", "error", err)
		events.send(StreamEvent{Status: streamError, Error: err.Error()})
		return
	}

	summary := report.Summary
	events.send(StreamEvent{Status: streamComplete, Progress: 100, Result: &summary})
}
