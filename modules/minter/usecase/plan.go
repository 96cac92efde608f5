package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
)

// PlanPreview is a dry-run estimate: the batch plan plus an affordability
// check against the wallet's current balance. The balance can change between
// preview and run, so Affordable is advisory only.
type PlanPreview struct {
	Plan *entity.BatchPlan

	WalletBalanceLovelace uint64
	Affordable            bool
}

// PlanMint resolves the recipient list (an explicit list, or a stored
// snapshot when snapshotId is set) and produces a cost/duration preview
// without building any transaction.
func (u *Usecase) PlanMint(ctx context.Context, tokenType string, snapshotId string, recipients []entity.Recipient, batchSize int) (*PlanPreview, error) {
	if _, err := u.registry.GetDesign(ctx, tokenType); err != nil {
		return nil, errors.Wrapf(err, "can't load design %q", tokenType)
	}
	recipients, err := u.resolveRecipients(ctx, snapshotId, recipients)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if batchSize == 0 {
		batchSize = u.batchSize
	}
	plan := u.engine.Plan(recipients, batchSize)

	preview := &PlanPreview{Plan: plan}
	if _, err := u.wallet.Connect(ctx); err != nil {
		// A plan is still useful without a reachable wallet.
		logger.WarnContext(ctx, "Wallet unreachable during plan, skipping affordability check", slogx.Error(err))
		return preview, nil
	}
	defer func() {
		if err := u.wallet.Disconnect(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to disconnect wallet after plan", slogx.Error(err))
		}
	}()

	balance, err := u.wallet.Balance(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't fetch wallet balance")
	}
	preview.WalletBalanceLovelace = balance
	preview.Affordable = balance >= plan.EstimatedTotalLovelace
	return preview, nil
}

// resolveRecipients prefers the explicit list; snapshotId is consulted only
// when no list is given.
func (u *Usecase) resolveRecipients(ctx context.Context, snapshotId string, recipients []entity.Recipient) ([]entity.Recipient, error) {
	if len(recipients) > 0 {
		return recipients, nil
	}
	if snapshotId == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "either recipients or a snapshot id is required")
	}
	snapshot, err := u.registry.GetSnapshot(ctx, snapshotId)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load snapshot %q", snapshotId)
	}
	return snapshot.Recipients, nil
}
