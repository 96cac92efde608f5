package entity

import "time"

// RunState is the top-level state of one mint run.
type RunState string

const (
	RunStateIdle            RunState = "idle"
	RunStatePreparing       RunState = "preparing"
	RunStateMinting         RunState = "minting"
	RunStateComplete        RunState = "complete"
	RunStatePartiallyFailed RunState = "partially_failed"
)

// BatchStage is the sub-state of one batch inside a run.
type BatchStage string

const (
	BatchStageBuilding          BatchStage = "building"
	BatchStageAwaitingSignature BatchStage = "awaiting_signature"
	BatchStageSubmitting        BatchStage = "submitting"
	BatchStageConfirming        BatchStage = "confirming"
	BatchStageSucceeded         BatchStage = "succeeded"
	BatchStageFailed            BatchStage = "failed"
)

// ProgressEvent is emitted on every state transition of a mint run. Consumers
// must not block: events are delivered on the same execution path that drives
// the batch loop.
type ProgressEvent struct {
	State        RunState
	Current      int // recipients attempted so far
	Total        int // total valid recipients
	CurrentBatch int // 1-based; 0 before the first batch starts
	TotalBatches int
	Stage        BatchStage
	Status       string // human-readable status line

	// EstimatedRemaining is derived from an exponential moving average of
	// observed batch latency. Zero until the first batch completes.
	EstimatedRemaining time.Duration
}

// BatchResult reports the outcome of one batch. Errors never propagate past
// the batch boundary; a failed batch must not prevent later batches from
// being attempted.
type BatchResult struct {
	BatchIndex int // 1-based
	Success    bool
	TxHash     string
	AssetIds   []string
	Recipients []Recipient
	Error      error
}

// RunSummary is the final result of a mint run. Success is true only if
// every batch succeeded; callers must treat anything else as partial.
type RunSummary struct {
	Success           bool
	TotalMinted       int
	TotalFailed       int
	TransactionHashes []string
	FailedAddresses   []string
	BatchResults      []BatchResult
}
