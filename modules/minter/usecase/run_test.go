package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegistry struct {
	design *entity.Design
	policy *entity.Policy
}

func (r *stubRegistry) GetPolicy(ctx context.Context, policyId cardano.PolicyID) (*entity.Policy, error) {
	return r.policy, nil
}

func (r *stubRegistry) GetPolicies(ctx context.Context) ([]*entity.Policy, error) {
	return []*entity.Policy{r.policy}, nil
}

func (r *stubRegistry) CreatePolicy(ctx context.Context, policy *entity.Policy) error {
	return nil
}

func (r *stubRegistry) GetDesign(ctx context.Context, tokenType string) (*entity.Design, error) {
	return r.design, nil
}

func (r *stubRegistry) GetDesigns(ctx context.Context) ([]*entity.Design, error) {
	return []*entity.Design{r.design}, nil
}

func (r *stubRegistry) CreateDesign(ctx context.Context, design *entity.Design) error {
	return nil
}

func (r *stubRegistry) GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	return nil, errors.WithStack(errs.NotFound)
}

func (r *stubRegistry) ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	return nil
}

func (r *stubRegistry) AllocateSequence(ctx context.Context, tokenType string) (uint64, error) {
	return r.design.TotalMinted + 1, nil
}

func (r *stubRegistry) AdvanceSequence(ctx context.Context, tokenType string, confirmed uint64) error {
	return nil
}

type stubLedger struct {
	gotLimit  int32
	gotOffset int64
}

func (l *stubLedger) CreateMintRecord(ctx context.Context, record *entity.MintRecord) error {
	return nil
}

func (l *stubLedger) GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error) {
	l.gotLimit = limit
	l.gotOffset = offset
	return nil, nil
}

func (l *stubLedger) CountMintRecords(ctx context.Context, tokenType string) (uint64, error) {
	return 0, nil
}

func (l *stubLedger) GetMaxMintNumber(ctx context.Context, tokenType string) (uint64, error) {
	return 0, errors.WithStack(errs.NotFound)
}

type stubEngine struct {
	run func(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error)
}

func (e *stubEngine) Plan(recipients []entity.Recipient, batchSize int) *entity.BatchPlan {
	return &entity.BatchPlan{}
}

func (e *stubEngine) Run(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error) {
	return e.run(ctx, params)
}

func newTestUsecase(engine MintEngine, ledger *stubLedger) *Usecase {
	registry := &stubRegistry{
		design: &entity.Design{TokenType: "quest-badge", AssetNamePrefix: "QuestBadge"},
		policy: &entity.Policy{Script: cardano.SignaturePolicy{}},
	}
	if ledger == nil {
		ledger = &stubLedger{}
	}
	return New(registry, ledger, nil, engine, nil, nil, common.NetworkPreprod, 10)
}

func TestStartMintRunAbortedBeforeFirstBatch(t *testing.T) {
	t.Parallel()

	// The engine reports progress before failing pre-flight. The buffered
	// event must not mask the terminal state once the run is finished.
	engine := &stubEngine{
		run: func(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error) {
			params.Events <- entity.ProgressEvent{State: entity.RunStatePreparing, Status: "Loading design"}
			return nil, errors.Wrap(errs.PolicyWalletMismatch, "policy requires another signer")
		},
	}
	u := newTestUsecase(engine, nil)

	runId, err := u.StartMintRun(context.Background(), RunOptions{
		TokenType:  "quest-badge",
		Recipients: []entity.Recipient{{Address: "addr_test1irrelevant"}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := u.GetRunStatus(runId)
		return err == nil && status.FinishedAt != nil
	}, time.Second, 5*time.Millisecond)

	status, err := u.GetRunStatus(runId)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatePartiallyFailed, status.State)
	assert.Contains(t, status.Error, "policy requires another signer")
	assert.Nil(t, status.Summary)
}

func TestStartMintRunCompletedRunKeepsTerminalState(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{
		run: func(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error) {
			params.Events <- entity.ProgressEvent{State: entity.RunStateMinting, Current: 1, Total: 1}
			return &entity.RunSummary{Success: true, TotalMinted: 1}, nil
		},
	}
	u := newTestUsecase(engine, nil)

	runId, err := u.StartMintRun(context.Background(), RunOptions{
		TokenType:  "quest-badge",
		Recipients: []entity.Recipient{{Address: "addr_test1irrelevant"}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := u.GetRunStatus(runId)
		return err == nil && status.FinishedAt != nil
	}, time.Second, 5*time.Millisecond)

	status, err := u.GetRunStatus(runId)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStateComplete, status.State)
	require.NotNil(t, status.Summary)
	assert.Equal(t, 1, status.Summary.TotalMinted)
}

func TestGetMintRecordsLargeOffset(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{}
	u := newTestUsecase(&stubEngine{}, ledger)

	offset := int64(math.MaxInt32) + 10
	_, err := u.GetMintRecords(context.Background(), "quest-badge", 100, offset)
	require.NoError(t, err)
	assert.Equal(t, offset, ledger.gotOffset)
	assert.Equal(t, int32(100), ledger.gotLimit)
}
