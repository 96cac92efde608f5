package minter

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

// fakeWallet is a deterministic Connector: it approves every signing request
// unless an error is scripted for a specific call.
type fakeWallet struct {
	address    cardano.Address
	utxos      []chain.UTXO
	connectErr error
	signErrAt  map[int]error // 1-based sign call index

	signCalls    int
	disconnected bool
}

func (w *fakeWallet) Connect(ctx context.Context) (cardano.Address, error) {
	if w.connectErr != nil {
		return cardano.Address{}, w.connectErr
	}
	return w.address, nil
}

func (w *fakeWallet) Balance(ctx context.Context) (uint64, error) {
	var total uint64
	for _, utxo := range w.utxos {
		total += utxo.Lovelace
	}
	return total, nil
}

func (w *fakeWallet) UTXOs(ctx context.Context) ([]chain.UTXO, error) {
	return w.utxos, nil
}

func (w *fakeWallet) SignTx(ctx context.Context, tx *cardano.Tx) ([]cardano.VKeyWitness, error) {
	w.signCalls++
	if err := w.signErrAt[w.signCalls]; err != nil {
		return nil, err
	}
	return []cardano.VKeyWitness{{VKey: []byte("vkey"), Signature: []byte("signature")}}, nil
}

func (w *fakeWallet) Disconnect(ctx context.Context) error {
	w.disconnected = true
	return nil
}

// fakeChain assigns each submission a synthetic tx hash tagged with its
// 1-based submission index, so confirmation outcomes can be scripted per
// submission.
type fakeChain struct {
	tipSlot      uint64
	submitErrAt  map[int]error
	confirmErrAt map[int]error

	submissions  int
	submittedTxs [][]byte
}

func (c *fakeChain) TipSlot(ctx context.Context) (uint64, error) {
	return c.tipSlot, nil
}

func (c *fakeChain) UTXOs(ctx context.Context, address cardano.Address) ([]chain.UTXO, error) {
	return nil, nil
}

func (c *fakeChain) SubmitTx(ctx context.Context, rawTx []byte) (cardano.TxHash, error) {
	c.submissions++
	if err := c.submitErrAt[c.submissions]; err != nil {
		return cardano.TxHash{}, err
	}
	c.submittedTxs = append(c.submittedTxs, rawTx)
	var hash cardano.TxHash
	hash[0] = byte(c.submissions)
	return hash, nil
}

func (c *fakeChain) AwaitConfirmation(ctx context.Context, txHash cardano.TxHash, timeout time.Duration) error {
	return c.confirmErrAt[int(txHash[0])]
}

// memRegistry keeps one design and one policy in memory and records every
// sequence advancement.
type memRegistry struct {
	mu       sync.Mutex
	design   *entity.Design
	policy   *entity.Policy
	snapshot *entity.Snapshot
	advances []uint64
}

func (r *memRegistry) GetPolicy(ctx context.Context, policyId cardano.PolicyID) (*entity.Policy, error) {
	if r.policy == nil || r.policy.PolicyId != policyId {
		return nil, errors.WithStack(errs.NotFound)
	}
	return r.policy, nil
}

func (r *memRegistry) GetPolicies(ctx context.Context) ([]*entity.Policy, error) {
	if r.policy == nil {
		return nil, nil
	}
	return []*entity.Policy{r.policy}, nil
}

func (r *memRegistry) CreatePolicy(ctx context.Context, policy *entity.Policy) error {
	r.policy = policy
	return nil
}

func (r *memRegistry) GetDesign(ctx context.Context, tokenType string) (*entity.Design, error) {
	if r.design == nil || r.design.TokenType != tokenType {
		return nil, errors.WithStack(errs.NotFound)
	}
	return r.design, nil
}

func (r *memRegistry) GetDesigns(ctx context.Context) ([]*entity.Design, error) {
	if r.design == nil {
		return nil, nil
	}
	return []*entity.Design{r.design}, nil
}

func (r *memRegistry) CreateDesign(ctx context.Context, design *entity.Design) error {
	r.design = design
	return nil
}

func (r *memRegistry) GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	if r.snapshot == nil || r.snapshot.Id != id {
		return nil, errors.WithStack(errs.NotFound)
	}
	return r.snapshot, nil
}

func (r *memRegistry) ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	r.snapshot = snapshot
	return nil
}

func (r *memRegistry) AllocateSequence(ctx context.Context, tokenType string) (uint64, error) {
	design, err := r.GetDesign(ctx, tokenType)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return design.TotalMinted + 1, nil
}

func (r *memRegistry) AdvanceSequence(ctx context.Context, tokenType string, confirmed uint64) error {
	design, err := r.GetDesign(ctx, tokenType)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	design.TotalMinted += confirmed
	r.advances = append(r.advances, confirmed)
	return nil
}

// memLedger is an append-only in-memory mint ledger.
type memLedger struct {
	mu        sync.Mutex
	records   []*entity.MintRecord
	createErr error
}

func (l *memLedger) CreateMintRecord(ctx context.Context, record *entity.MintRecord) error {
	if l.createErr != nil {
		return l.createErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *memLedger) GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	filtered := make([]*entity.MintRecord, 0, len(l.records))
	for _, record := range l.records {
		if tokenType == "" || record.TokenType == tokenType {
			filtered = append(filtered, record)
		}
	}
	if offset >= int64(len(filtered)) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if limit >= 0 && int32(len(filtered)) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (l *memLedger) CountMintRecords(ctx context.Context, tokenType string) (uint64, error) {
	records, err := l.GetMintRecords(ctx, tokenType, -1, 0)
	if err != nil {
		return 0, err
	}
	return uint64(len(records)), nil
}

func (l *memLedger) GetMaxMintNumber(ctx context.Context, tokenType string) (uint64, error) {
	records, err := l.GetMintRecords(ctx, tokenType, -1, 0)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, errors.WithStack(errs.NotFound)
	}
	var max uint64
	for _, record := range records {
		if record.MintNumber > max {
			max = record.MintNumber
		}
	}
	return max, nil
}
