package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
)

// Progress events are buffered generously: the executor drops events when the
// channel is full rather than blocking the batch loop.
const runEventBuffer = 256

// RunOptions are the caller-level inputs for one mint run.
type RunOptions struct {
	TokenType  string
	SnapshotId string
	Recipients []entity.Recipient
	BatchSize  int

	// Events, if set, receives a copy of every progress event in addition
	// to the tracker. Used by terminal runs to render progress.
	Events chan<- entity.ProgressEvent

	// Stop enables stop-after-current-batch cancellation for synchronous
	// runs. Tracked runs get their own flag from the tracker.
	Stop *entity.StopFlag
}

// ExecuteMintRun runs one mint run synchronously: allocate the start of the
// sequence, resolve recipients and drive the executor to completion.
func (u *Usecase) ExecuteMintRun(ctx context.Context, opts RunOptions) (*entity.RunSummary, error) {
	params, err := u.prepareRun(ctx, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	params.Events = opts.Events
	params.Stop = opts.Stop
	return u.engine.Run(ctx, *params)
}

// StartMintRun starts a tracked, asynchronous mint run and returns its run
// id. Progress is observable via GetRunStatus and the run can be stopped
// after the current batch via StopRun.
func (u *Usecase) StartMintRun(ctx context.Context, opts RunOptions) (string, error) {
	params, err := u.prepareRun(ctx, opts)
	if err != nil {
		return "", errors.WithStack(err)
	}

	runId, run := u.runs.add(opts.TokenType, opts.SnapshotId)
	events := make(chan entity.ProgressEvent, runEventBuffer)
	params.Events = events
	params.Stop = run.stop

	// The run outlives the HTTP request that started it.
	runCtx := logger.WithContext(context.Background(),
		slogx.String("run_id", runId),
		slogx.String("token_type", opts.TokenType),
	)

	// The terminal state is recorded by the drain goroutine after the channel
	// is exhausted, so a buffered progress event can never overwrite it.
	var (
		runSummary *entity.RunSummary
		runErr     error
	)
	go func() {
		for event := range events {
			u.runs.updateProgress(runId, event)
		}
		u.runs.finish(runId, runSummary, runErr)
	}()
	go func() {
		defer close(events)
		summary, err := u.engine.Run(runCtx, *params)
		if err != nil {
			logger.ErrorContext(runCtx, "Mint run aborted", slogx.Error(err))
		}
		runSummary, runErr = summary, err
	}()

	return runId, nil
}

// GetRunStatus returns a snapshot of a tracked run. Returns errs.NotFound
// for unknown run ids.
func (u *Usecase) GetRunStatus(runId string) (RunStatus, error) {
	status, ok := u.runs.snapshot(runId)
	if !ok {
		return RunStatus{}, errors.Wrapf(errs.NotFound, "no run with id %q", runId)
	}
	return status, nil
}

// StopRun requests that a tracked run halt after the batch currently in
// flight. Idempotent; the in-flight batch always completes.
func (u *Usecase) StopRun(runId string) error {
	run, ok := u.runs.get(runId)
	if !ok {
		return errors.Wrapf(errs.NotFound, "no run with id %q", runId)
	}
	run.stop.Stop()
	return nil
}

// prepareRun loads the design and policy, resolves recipients and allocates
// the run's start of sequence. The allocation is reconciled against the
// ledger: if the ledger already holds higher mint numbers the counter is
// lagging (a confirmed batch failed to advance it), and reusing those
// numbers would violate sequence uniqueness.
func (u *Usecase) prepareRun(ctx context.Context, opts RunOptions) (*entity.RunParams, error) {
	design, err := u.registry.GetDesign(ctx, opts.TokenType)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load design %q", opts.TokenType)
	}
	policy, err := u.registry.GetPolicy(ctx, design.PolicyId)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load policy %s", design.PolicyId)
	}
	recipients, err := u.resolveRecipients(ctx, opts.SnapshotId, opts.Recipients)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	startMintNumber, err := u.registry.AllocateSequence(ctx, opts.TokenType)
	if err != nil {
		return nil, errors.Wrapf(err, "can't allocate mint sequence for %q", opts.TokenType)
	}
	maxRecorded, err := u.ledger.GetMaxMintNumber(ctx, opts.TokenType)
	switch {
	case err == nil:
		if maxRecorded >= startMintNumber {
			logger.WarnContext(ctx, "Design counter lags the ledger, advancing start of sequence",
				slogx.String("token_type", opts.TokenType),
				slogx.Uint64("allocated", startMintNumber),
				slogx.Uint64("max_recorded", maxRecorded),
			)
			startMintNumber = maxRecorded + 1
		}
	case errors.Is(err, errs.NotFound):
		// empty ledger, nothing to reconcile
	default:
		return nil, errors.Wrapf(err, "can't read max mint number for %q", opts.TokenType)
	}

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = u.batchSize
	}
	return &entity.RunParams{
		Design:          design,
		Policy:          policy,
		Recipients:      recipients,
		StartMintNumber: startMintNumber,
		BatchSize:       batchSize,
	}, nil
}
