package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/questline/mint-console/modules/minter/entity"
)

// RunStatus is a point-in-time snapshot of one tracked mint run, safe to
// serialize for status polling.
type RunStatus struct {
	Id         string
	TokenType  string
	SnapshotId string
	StartedAt  time.Time
	FinishedAt *time.Time

	State         entity.RunState
	Progress      entity.ProgressEvent
	StopRequested bool

	Summary *entity.RunSummary
	Error   string
}

// trackedRun is the mutable tracker entry behind one run id. The events
// goroutine owns all writes after start; readers copy under the tracker lock.
type trackedRun struct {
	status RunStatus
	stop   *entity.StopFlag
}

// maxTrackedRuns bounds tracker memory on long-lived servers. When the cap is
// exceeded the oldest finished runs are evicted; active runs are never evicted.
const maxTrackedRuns = 256

type runTracker struct {
	mu       sync.RWMutex
	runs     map[string]*trackedRun
	order    []string // insertion order, drives eviction
	capacity int
}

func newRunTracker() *runTracker {
	return &runTracker{
		runs:     make(map[string]*trackedRun),
		capacity: maxTrackedRuns,
	}
}

func newRunId() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (t *runTracker) add(tokenType, snapshotId string) (string, *trackedRun) {
	id := newRunId()
	run := &trackedRun{
		status: RunStatus{
			Id:         id,
			TokenType:  tokenType,
			SnapshotId: snapshotId,
			StartedAt:  time.Now(),
			State:      entity.RunStateIdle,
		},
		stop: entity.NewStopFlag(),
	}
	t.mu.Lock()
	t.runs[id] = run
	t.order = append(t.order, id)
	t.evictLocked()
	t.mu.Unlock()
	return id, run
}

func (t *runTracker) evictLocked() {
	if len(t.runs) <= t.capacity {
		return
	}
	kept := t.order[:0]
	for _, id := range t.order {
		run, ok := t.runs[id]
		if !ok {
			continue
		}
		if len(t.runs) > t.capacity && run.status.FinishedAt != nil {
			delete(t.runs, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

func (t *runTracker) get(id string) (*trackedRun, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	run, ok := t.runs[id]
	return run, ok
}

func (t *runTracker) updateProgress(id string, event entity.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	run, ok := t.runs[id]
	if !ok {
		return
	}
	// terminal states are final, late events must not resurrect a run
	if run.status.FinishedAt != nil {
		return
	}
	run.status.State = event.State
	run.status.Progress = event
}

func (t *runTracker) finish(id string, summary *entity.RunSummary, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	run, ok := t.runs[id]
	if !ok {
		return
	}
	now := time.Now()
	run.status.FinishedAt = &now
	run.status.Summary = summary
	if err != nil {
		run.status.Error = err.Error()
		run.status.State = entity.RunStatePartiallyFailed
		return
	}
	if summary != nil && summary.Success {
		run.status.State = entity.RunStateComplete
	} else {
		run.status.State = entity.RunStatePartiallyFailed
	}
}

// snapshot copies the status under the lock so callers never observe a
// partially updated entry.
func (t *runTracker) snapshot(id string) (RunStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	run, ok := t.runs[id]
	if !ok {
		return RunStatus{}, false
	}
	status := run.status
	status.StopRequested = run.stop.Stopped()
	return status, true
}
