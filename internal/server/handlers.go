package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/AndreyAkinshin/testrig/internal/generator"
	"github.com/AndreyAkinshin/testrig/internal/runner"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// maxAgents mirrors the worker pool cap.
const maxAgents = 256

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// RunRequest is the body of POST /test/run.
type RunRequest struct {
	// Type restricts a whole-suite run: unit, integration, e2e or all.
	Type      string `json:"type,omitempty"`
	Component string `json:"component,omitempty"`
	Parallel  bool   `json:"parallel"`
	Agents    int    `json:"agents,omitempty"`
}

// RunResponse is the body returned by POST /test/run.
type RunResponse struct {
	Status     string                       `json:"status"`
	Data       testparser.Result            `json:"data"`
	Components map[string]testparser.Result `json:"components,omitempty"`
	Order      []string                     `json:"order,omitempty"`
	Workers    int                          `json:"workers"`
	Duration   int64                        `json:"duration"`
}

// GenerateRequest is the body of POST /test/generate.
type GenerateRequest struct {
	Component string `json:"component"`
	Type      string `json:"type,omitempty"`
}

// GenerateResponse is the body returned by POST /test/generate.
type GenerateResponse struct {
	Status  string   `json:"status"`
	Spec    string   `json:"spec"`
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "healthy", Version: s.version})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Agents < 0 || req.Agents > maxAgents {
		writeError(r.Context(), w, http.StatusBadRequest, "agents must be between 1 and 256")
		return
	}

	if !s.runMu.TryLock() {
		writeError(r.Context(), w, http.StatusConflict, "a test run is already in progress")
		return
	}
	defer s.runMu.Unlock()

	report, err := s.execute(r.Context(), req, s.metrics.Observer())
	if err != nil {
		s.logger.Error("test run failed", "error", err)
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, RunResponse{
		Status:     runStatus(report.Summary),
		Data:       report.Summary,
		Components: report.Components,
		Order:      report.Order,
		Workers:    report.Workers,
		Duration:   report.Duration.Milliseconds(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Component == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "component is required")
		return
	}

	containers, err := s.cfg.ParsedContainers()
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}

	res, err := generator.Generate(s.root, req.Component, generator.Options{
		Framework:  s.cfg.Framework,
		Type:       req.Type,
		Containers: containers,
		SpecsDir:   s.cfg.SpecsPath(s.root),
	})
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, GenerateResponse{
		Status:  "success",
		Spec:    res.SpecPath,
		Created: nonNil(res.Created),
		Skipped: nonNil(res.Skipped),
	})
}

// execute runs one request. Without parallel or a component filter the
// whole suite runs in one framework invocation; otherwise the spec
// scheduler runs it.
func (s *Server) execute(ctx context.Context, req RunRequest, obs runner.Observer) (*runner.Report, error) {
	c, err := s.newCollaborator(s.cfg.Framework)
	if err != nil {
		return nil, err
	}

	if !req.Parallel && req.Component == "" {
		paths, err := runner.TypePaths(req.Type)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		summary, err := runner.RunSequential(ctx, c, s.root, paths...)
		s.metrics.RunCompleted(summary, err)
		if err != nil {
			return nil, err
		}
		return &runner.Report{Summary: summary, Workers: 1, Duration: time.Since(start)}, nil
	}

	workers := 1
	if req.Parallel {
		workers = req.Agents
		if workers == 0 {
			workers = s.cfg.ParallelAgents
		}
	}
	opts := runner.Options{Workers: workers, Dir: s.root, Observer: obs}
	if req.Component != "" {
		opts.Components = []string{req.Component}
	}

	report, err := runner.New(c).RunDir(ctx, s.cfg.SpecsPath(s.root), opts)
	summary := testparser.Result{}
	if report != nil {
		summary = report.Summary
	}
	s.metrics.RunCompleted(summary, err)
	return report, err
}

// decodeBody decodes a JSON body. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func runStatus(summary testparser.Result) string {
	if summary.Failed > 0 {
		return "failure"
	}
	return "success"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
