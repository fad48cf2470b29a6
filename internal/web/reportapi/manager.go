// Package reportapi serves a finished run's structured report (spec.md
// §6) over HTTP, in the style of the teacher's internal/web/server,
// middleware, and auth packages, and streams driver progress over a
// websocket while a run is still in flight.
package reportapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer"
	analyzerconfig "github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/report"
	"github.com/wildebeest-nlp/wildebeest/internal/historystore"
	"github.com/wildebeest-nlp/wildebeest/internal/input"
	"github.com/wildebeest-nlp/wildebeest/internal/reportio"
	"github.com/wildebeest-nlp/wildebeest/internal/web/websocket"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Run is one analyze invocation accepted over the HTTP API.
type Run struct {
	ID     string
	Status Status
	Err    error

	mu     sync.RWMutex
	report *report.Report

	hub *websocket.Server
}

// Report returns the finished report, or nil if the run has not
// completed (or failed).
func (r *Run) Report() *report.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report
}

func (r *Run) setReport(rep *report.Report) {
	r.mu.Lock()
	r.report = rep
	r.mu.Unlock()
}

// Manager tracks in-flight and completed runs and optionally persists
// finished snapshots to a historystore.Store.
type Manager struct {
	log     *zap.SugaredLogger
	history historystore.Store // may be nil

	mu   sync.RWMutex
	runs map[string]*Run
}

// NewManager creates a Manager. history may be nil to skip persistence.
func NewManager(log *zap.SugaredLogger, history historystore.Store) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{log: log, history: history, runs: make(map[string]*Run)}
}

// Start kicks off an analyze run over corpus in a background goroutine
// and returns immediately with the new Run's ID.
func (m *Manager) Start(cfg *analyzerconfig.Config, corpus io.Reader) *Run {
	run := &Run{
		ID:     uuid.New().String(),
		Status: StatusRunning,
		hub:    websocket.NewServer(context.Background(), nil),
	}
	run.hub.Start()

	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()

	driver := analyzer.New(cfg)
	driver.SetProgressFunc(func(lines, tokens uint64) {
		m.broadcastProgress(run, lines, tokens)
	})

	go m.runAnalysis(run, driver, cfg, corpus)

	return run
}

func (m *Manager) runAnalysis(run *Run, driver *analyzer.Driver, cfg *analyzerconfig.Config, corpus io.Reader) {
	reader := input.NewReader(corpus)
	rep, err := driver.Run(context.Background(), reader)
	if err != nil {
		run.Status = StatusError
		run.Err = err
		m.log.Errorw("analyze run failed", "run_id", run.ID, "error", err)
		m.broadcastDone(run, false)
		return
	}

	run.setReport(rep)
	run.Status = StatusDone
	m.log.Infow("analyze run finished", "run_id", run.ID, "lines", rep.TotalLines, "tokens", rep.TotalTokens)
	m.broadcastDone(run, true)

	if m.history != nil {
		configJSON, _ := json.Marshal(cfg)
		snap := historystore.FromReport(run.ID, rep, string(configJSON))
		if err := m.history.SaveRun(context.Background(), snap); err != nil {
			m.log.Errorw("failed to persist run snapshot", "run_id", run.ID, "error", err)
		}
	}
}

func (m *Manager) broadcastProgress(run *Run, lines, tokens uint64) {
	payload, _ := json.Marshal(map[string]uint64{"lines": lines, "tokens": tokens})
	run.hub.Hub.Broadcast(&websocket.Message{Type: "progress", Data: payload})
}

func (m *Manager) broadcastDone(run *Run, ok bool) {
	status := "done"
	if !ok {
		status = "error"
	}
	payload, _ := json.Marshal(map[string]string{"status": status})
	run.hub.Hub.Broadcast(&websocket.Message{Type: "complete", Data: payload})
}

// Get returns the run by ID, if known.
func (m *Manager) Get(id string) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	return run, ok
}

// ListHistory returns the most recent persisted run snapshots, newest
// first, for the operator-facing /admin/runs endpoint. It errors if
// this Manager was built without a history store.
func (m *Manager) ListHistory(ctx context.Context, limit int) ([]historystore.Snapshot, error) {
	if m.history == nil {
		return nil, fmt.Errorf("history store not configured")
	}
	return m.history.ListRuns(ctx, limit)
}

// Document renders run's finished report as a reportio.Document.
func Document(run *Run) (reportio.Document, error) {
	rep := run.Report()
	if rep == nil {
		return reportio.Document{}, fmt.Errorf("run %s has not finished", run.ID)
	}
	return reportio.BuildDocument(rep, 0), nil
}
