package usecase

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunId(t *testing.T) {
	t.Parallel()

	id := newRunId()
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, newRunId())
}

func TestRunTrackerLifecycle(t *testing.T) {
	t.Parallel()

	tracker := newRunTracker()
	id, run := tracker.add("quest-badge", "snapshot-1")
	require.NotNil(t, run)

	status, ok := tracker.snapshot(id)
	require.True(t, ok)
	assert.Equal(t, id, status.Id)
	assert.Equal(t, "quest-badge", status.TokenType)
	assert.Equal(t, "snapshot-1", status.SnapshotId)
	assert.Equal(t, entity.RunStateIdle, status.State)
	assert.False(t, status.StopRequested)
	assert.Nil(t, status.FinishedAt)

	tracker.updateProgress(id, entity.ProgressEvent{
		State:        entity.RunStateMinting,
		Current:      10,
		Total:        40,
		CurrentBatch: 1,
		TotalBatches: 2,
		Stage:        entity.BatchStageConfirming,
	})
	run.stop.Stop()

	status, ok = tracker.snapshot(id)
	require.True(t, ok)
	assert.Equal(t, entity.RunStateMinting, status.State)
	assert.Equal(t, 10, status.Progress.Current)
	assert.Equal(t, entity.BatchStageConfirming, status.Progress.Stage)
	assert.True(t, status.StopRequested)

	tracker.finish(id, &entity.RunSummary{Success: true, TotalMinted: 40}, nil)
	status, ok = tracker.snapshot(id)
	require.True(t, ok)
	assert.Equal(t, entity.RunStateComplete, status.State)
	require.NotNil(t, status.FinishedAt)
	require.NotNil(t, status.Summary)
	assert.Equal(t, 40, status.Summary.TotalMinted)
}

func TestRunTrackerFinishStates(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		summary   *entity.RunSummary
		err       error
		wantState entity.RunState
		wantError string
	}{
		{
			name:      "all batches confirmed",
			summary:   &entity.RunSummary{Success: true},
			wantState: entity.RunStateComplete,
		},
		{
			name:      "some batches failed",
			summary:   &entity.RunSummary{Success: false, TotalFailed: 3},
			wantState: entity.RunStatePartiallyFailed,
		},
		{
			name:      "run aborted with error",
			err:       errors.New("wallet gone"),
			wantState: entity.RunStatePartiallyFailed,
			wantError: "wallet gone",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracker := newRunTracker()
			id, _ := tracker.add("quest-badge", "")
			tracker.finish(id, tc.summary, tc.err)

			status, ok := tracker.snapshot(id)
			require.True(t, ok)
			assert.Equal(t, tc.wantState, status.State)
			assert.Equal(t, tc.wantError, status.Error)
		})
	}
}

func TestRunTrackerIgnoresEventsAfterFinish(t *testing.T) {
	t.Parallel()

	tracker := newRunTracker()
	id, _ := tracker.add("quest-badge", "")
	tracker.finish(id, nil, errors.New("aborted before first batch"))

	// a late buffered event must not overwrite the terminal state
	tracker.updateProgress(id, entity.ProgressEvent{State: entity.RunStatePreparing})

	status, ok := tracker.snapshot(id)
	require.True(t, ok)
	assert.Equal(t, entity.RunStatePartiallyFailed, status.State)
	require.NotNil(t, status.FinishedAt)
}

func TestRunTrackerEvictsOldestFinishedRuns(t *testing.T) {
	t.Parallel()

	tracker := newRunTracker()
	tracker.capacity = 2

	firstId, _ := tracker.add("quest-badge", "")
	secondId, _ := tracker.add("quest-badge", "")
	tracker.finish(firstId, &entity.RunSummary{Success: true}, nil)

	thirdId, _ := tracker.add("quest-badge", "")

	_, ok := tracker.snapshot(firstId)
	assert.False(t, ok, "oldest finished run should be evicted")
	_, ok = tracker.snapshot(secondId)
	assert.True(t, ok)
	_, ok = tracker.snapshot(thirdId)
	assert.True(t, ok)
}

func TestRunTrackerNeverEvictsActiveRuns(t *testing.T) {
	t.Parallel()

	tracker := newRunTracker()
	tracker.capacity = 2

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id, _ := tracker.add("quest-badge", "")
		ids = append(ids, id)
	}

	// the tracker may exceed its cap while every run is still in flight
	for _, id := range ids {
		_, ok := tracker.snapshot(id)
		assert.True(t, ok)
	}
}

func TestRunTrackerUnknownId(t *testing.T) {
	t.Parallel()

	tracker := newRunTracker()

	_, ok := tracker.snapshot("missing")
	assert.False(t, ok)

	// updates on unknown ids are dropped, not panics
	tracker.updateProgress("missing", entity.ProgressEvent{})
	tracker.finish("missing", nil, nil)
}
