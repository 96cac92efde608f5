package entity

import "sync/atomic"

// StopFlag requests that a run stop after the batch currently in flight.
// Checked between batches only: a signed-and-broadcast transaction cannot be
// undone, so no mid-batch cancellation exists.
type StopFlag struct {
	stopped atomic.Bool
}

func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

func (f *StopFlag) Stop() {
	f.stopped.Store(true)
}

func (f *StopFlag) Stopped() bool {
	return f.stopped.Load()
}

// RunParams are the inputs for one mint run. StartMintNumber must equal the
// design's totalMinted + 1 at run start, allocated once by the caller and
// never re-derived mid-run.
type RunParams struct {
	Design          *Design
	Policy          *Policy
	Recipients      []Recipient
	StartMintNumber uint64
	BatchSize       int

	// Events receives one event per state transition. Sends never block:
	// if the channel is full the event is dropped, so consumers should
	// buffer generously. Nil disables progress reporting.
	Events chan<- ProgressEvent

	// OnBatchComplete, if set, is called once per attempted batch on the
	// run's own goroutine. Must not block.
	OnBatchComplete func(BatchResult)

	// Stop enables stop-after-current-batch cancellation. Nil disables it.
	Stop *StopFlag
}
