package web

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"recordnote/internal/pipeline"
)

// Run is one pipeline invocation started through the web API. Values handed
// out by RunManager are snapshots.
type Run struct {
	ID          string
	Input       string
	Document    string
	State       pipeline.State
	Message     string
	Error       string
	Title       string
	ArtworkRef  string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// RunManager tracks runs and fans state changes out to subscribers.
type RunManager struct {
	runs      map[string]*Run
	mu        sync.RWMutex
	listeners map[string][]chan Run
}

const runRetention = 1 * time.Hour

func NewRunManager() *RunManager {
	return &RunManager{
		runs:      make(map[string]*Run),
		listeners: make(map[string][]chan Run),
	}
}

// StartCleanup starts a background goroutine that removes old finished runs.
// Stops when ctx is cancelled.
func (rm *RunManager) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rm.cleanup()
			}
		}
	}()
}

func (rm *RunManager) cleanup() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cutoff := time.Now().Add(-runRetention)
	for id, run := range rm.runs {
		if run.CompletedAt != nil && run.CompletedAt.Before(cutoff) {
			delete(rm.runs, id)
			for _, ch := range rm.listeners[id] {
				close(ch)
			}
			delete(rm.listeners, id)
		}
	}
}

// CreateRun registers a new idle run.
func (rm *RunManager) CreateRun(input, doc string) Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run := &Run{
		ID:        generateRunID(),
		Input:     input,
		Document:  doc,
		State:     pipeline.StateIdle,
		CreatedAt: time.Now(),
	}

	rm.runs[run.ID] = run
	return *run
}

// GetRun retrieves a run by ID
func (rm *RunManager) GetRun(id string) (Run, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	run, ok := rm.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("run not found: %s", id)
	}
	return *run, nil
}

// ListRuns returns all runs, newest first.
func (rm *RunManager) ListRuns() []Run {
	rm.mu.RLock()
	runs := make([]Run, 0, len(rm.runs))
	for _, run := range rm.runs {
		runs = append(runs, *run)
	}
	rm.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// UpdateRun applies fn to the run and notifies subscribers.
func (rm *RunManager) UpdateRun(id string, fn func(*Run)) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, ok := rm.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	oldState := run.State
	fn(run)

	if oldState != run.State {
		now := time.Now()
		if oldState == pipeline.StateIdle && run.StartedAt == nil {
			run.StartedAt = &now
		}
		if run.State.Terminal() && run.CompletedAt == nil {
			run.CompletedAt = &now
		}
	}

	rm.notifyListeners(id, *run)
	return nil
}

// Subscribe subscribes to run updates
func (rm *RunManager) Subscribe(runID string) <-chan Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	ch := make(chan Run, 16)
	rm.listeners[runID] = append(rm.listeners[runID], ch)
	return ch
}

// Unsubscribe removes a listener
func (rm *RunManager) Unsubscribe(runID string, ch <-chan Run) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	listeners := rm.listeners[runID]
	for i, listener := range listeners {
		if listener == ch {
			rm.listeners[runID] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners drops the update for subscribers whose buffer is full.
func (rm *RunManager) notifyListeners(runID string, run Run) {
	for _, ch := range rm.listeners[runID] {
		select {
		case ch <- run:
		default:
		}
	}
}

func generateRunID() string {
	return "run_" + uuid.NewString()
}
