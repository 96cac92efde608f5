package minter

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executorFixture struct {
	executor *Executor
	wallet   *fakeWallet
	chain    *fakeChain
	registry *memRegistry
	ledger   *memLedger
	design   *entity.Design
	policy   *entity.Policy
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()

	design, policy := testDesign(t)
	walletAddress, err := cardano.EncodeAddress(policy.KeyHash(), common.NetworkPreprod)
	require.NoError(t, err)

	wallet := &fakeWallet{
		address: walletAddress,
		utxos:   []chain.UTXO{testUTXO(t, 200, 10_000_000_000)},
	}
	chainClient := &fakeChain{
		tipSlot:      1_000,
		submitErrAt:  map[int]error{},
		confirmErrAt: map[int]error{},
	}
	registry := &memRegistry{design: design, policy: policy}
	ledger := &memLedger{}

	return &executorFixture{
		executor: NewExecutor(wallet, chainClient, registry, ledger, common.NetworkPreprod, time.Minute),
		wallet:   wallet,
		chain:    chainClient,
		registry: registry,
		ledger:   ledger,
		design:   design,
		policy:   policy,
	}
}

func (f *executorFixture) recipients(t *testing.T, n int) []entity.Recipient {
	t.Helper()
	recipients := make([]entity.Recipient, 0, n)
	for i := 0; i < n; i++ {
		recipients = append(recipients, entity.Recipient{
			Address:     testAddress(t, byte(i+1), common.NetworkPreprod),
			DisplayName: "holder",
		})
	}
	return recipients
}

func (f *executorFixture) mintNumbers() []uint64 {
	numbers := make([]uint64, 0, len(f.ledger.records))
	for _, record := range f.ledger.records {
		numbers = append(numbers, record.MintNumber)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func TestRunAllBatchesSucceed(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	events := make(chan entity.ProgressEvent, 256)

	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 23),
		StartMintNumber: 1,
		BatchSize:       10,
		Events:          events,
	})
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Equal(t, 23, summary.TotalMinted)
	assert.Equal(t, 0, summary.TotalFailed)
	assert.Len(t, summary.TransactionHashes, 3)
	assert.Empty(t, summary.FailedAddresses)
	require.Len(t, summary.BatchResults, 3)

	// sequence numbers are exactly 1..23, each in exactly one record
	want := make([]uint64, 0, 23)
	for n := uint64(1); n <= 23; n++ {
		want = append(want, n)
	}
	assert.Equal(t, want, f.mintNumbers())

	assert.Equal(t, []uint64{10, 10, 3}, f.registry.advances)
	assert.Equal(t, uint64(23), f.design.TotalMinted)
	assert.True(t, f.wallet.disconnected)

	close(events)
	var sawFinal bool
	stages := map[entity.BatchStage]int{}
	for event := range events {
		if event.Stage != "" {
			stages[event.Stage]++
		}
		if event.State == entity.RunStateComplete {
			sawFinal = true
		}
	}
	assert.True(t, sawFinal)
	assert.Equal(t, 3, stages[entity.BatchStageBuilding])
	assert.Equal(t, 3, stages[entity.BatchStageAwaitingSignature])
	assert.Equal(t, 3, stages[entity.BatchStageSubmitting])
	assert.Equal(t, 3, stages[entity.BatchStageConfirming])
	assert.Equal(t, 3, stages[entity.BatchStageSucceeded])
}

func TestRunPartialFailureIsolation(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	// batch 2's transaction never confirms
	f.chain.confirmErrAt[2] = errors.Wrap(errs.Timeout, "confirmation window elapsed")

	var batchResults []entity.BatchResult
	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 23),
		StartMintNumber: 1,
		BatchSize:       10,
		OnBatchComplete: func(result entity.BatchResult) {
			batchResults = append(batchResults, result)
		},
	})
	require.NoError(t, err)

	assert.False(t, summary.Success)
	assert.Equal(t, 13, summary.TotalMinted)
	assert.Equal(t, 10, summary.TotalFailed)
	assert.Len(t, summary.TransactionHashes, 2)
	assert.Len(t, summary.FailedAddresses, 10)

	// ledger holds 1..10 and 21..23; 11..20 are missing, never renumbered
	want := []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 21, 22, 23}
	assert.Equal(t, want, f.mintNumbers())

	// counter advanced only by confirmed batches
	assert.Equal(t, []uint64{10, 3}, f.registry.advances)
	assert.Equal(t, uint64(13), f.design.TotalMinted)

	require.Len(t, batchResults, 3)
	assert.True(t, batchResults[0].Success)
	assert.False(t, batchResults[1].Success)
	require.Error(t, batchResults[1].Error)
	assert.ErrorIs(t, batchResults[1].Error, errs.Timeout)
	assert.True(t, batchResults[2].Success)
}

func TestRunSigningRejectionFailsOnlyThatBatch(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	f.wallet.signErrAt = map[int]error{1: errors.WithStack(errs.UserRejected)}

	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 15),
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.NoError(t, err)

	assert.False(t, summary.Success)
	assert.Equal(t, 5, summary.TotalMinted)
	assert.Equal(t, 10, summary.TotalFailed)
	require.Len(t, summary.BatchResults, 2)
	assert.ErrorIs(t, summary.BatchResults[0].Error, errs.UserRejected)

	// batch 2 kept its offset numbers despite batch 1 failing
	assert.Equal(t, []uint64{11, 12, 13, 14, 15}, f.mintNumbers())
}

func TestRunPreflightGate(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	strangerAddress, err := cardano.EncodeAddress(testKeyHash(t, 99), common.NetworkPreprod)
	require.NoError(t, err)
	f.wallet.address = strangerAddress

	_, err = f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 5),
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.ErrorIs(t, err, errs.PolicyWalletMismatch)

	// zero transactions built, zero records written
	assert.Zero(t, f.chain.submissions)
	assert.Zero(t, f.wallet.signCalls)
	assert.Empty(t, f.ledger.records)
	assert.Empty(t, f.registry.advances)
}

func TestRunStopAfterCurrentBatch(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	stop := entity.NewStopFlag()

	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 23),
		StartMintNumber: 1,
		BatchSize:       10,
		Stop:            stop,
		OnBatchComplete: func(entity.BatchResult) {
			stop.Stop()
		},
	})
	require.NoError(t, err)

	// batch 1 completed, batches 2 and 3 never started
	assert.False(t, summary.Success)
	assert.Equal(t, 10, summary.TotalMinted)
	assert.Equal(t, 0, summary.TotalFailed)
	assert.Equal(t, 1, f.chain.submissions)
	assert.Equal(t, []uint64{10}, f.registry.advances)
}

func TestRunIdempotentReRun(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	f.chain.confirmErrAt[2] = errors.Wrap(errs.Timeout, "confirmation window elapsed")

	recipients := f.recipients(t, 23)
	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      recipients,
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.NoError(t, err)
	require.False(t, summary.Success)

	// retry the failed recipients with a freshly allocated start number
	nextStart, err := f.registry.AllocateSequence(context.Background(), f.design.TokenType)
	require.NoError(t, err)
	assert.Equal(t, uint64(14), nextStart)

	retry := make([]entity.Recipient, 0, len(summary.FailedAddresses))
	for _, address := range summary.FailedAddresses {
		retry = append(retry, entity.Recipient{Address: address})
	}
	f.chain.confirmErrAt = map[int]error{}

	retrySummary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      retry,
		StartMintNumber: nextStart,
		BatchSize:       10,
	})
	require.NoError(t, err)
	assert.True(t, retrySummary.Success)

	// no sequence number appears twice across both runs
	numbers := f.mintNumbers()
	seen := map[uint64]struct{}{}
	for _, n := range numbers {
		_, dup := seen[n]
		require.False(t, dup, "mint number %d recorded twice", n)
		seen[n] = struct{}{}
	}
	assert.Len(t, numbers, 23)
	assert.Equal(t, uint64(23), f.design.TotalMinted)
}

func TestRunInvalidRecipientsNeverBlock(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	recipients := append(f.recipients(t, 3), entity.Recipient{Address: "garbage"})

	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      recipients,
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.TotalMinted)
}

func TestRunNoValidRecipients(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	_, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      []entity.Recipient{{Address: "garbage"}},
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestRunLedgerWriteFailureDoesNotFailBatch(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	f.ledger.createErr = errors.New("ledger down")

	summary, err := f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 3),
		StartMintNumber: 1,
		BatchSize:       10,
	})
	require.NoError(t, err)

	// the mint exists on-chain regardless of ledger bookkeeping
	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.TotalMinted)
	assert.Empty(t, f.ledger.records)
	assert.Equal(t, []uint64{3}, f.registry.advances)
}

func TestRunRejectsMismatchedDesignAndPolicy(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture(t)
	otherScript := cardano.SignaturePolicy{KeyHash: testKeyHash(t, 50)}
	otherId, err := cardano.PolicyIDFor(otherScript)
	require.NoError(t, err)
	f.design.PolicyId = otherId

	_, err = f.executor.Run(context.Background(), entity.RunParams{
		Design:          f.design,
		Policy:          f.policy,
		Recipients:      f.recipients(t, 1),
		StartMintNumber: 1,
	})
	require.ErrorIs(t, err, errs.InvalidArgument)
}
