package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Repository) GetPolicy(ctx context.Context, policyId cardano.PolicyID) (*entity.Policy, error) {
	snap, err := r.client.Collection(policiesCollection).Doc(policyId.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during get")
	}
	var model policyModel
	if err := snap.DataTo(&model); err != nil {
		return nil, errors.Wrap(err, "can't decode policy document")
	}
	return mapModelToPolicy(model)
}

func (r *Repository) GetPolicies(ctx context.Context) ([]*entity.Policy, error) {
	it := r.client.Collection(policiesCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var policies []*entity.Policy
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error during iteration")
		}
		var model policyModel
		if err := snap.DataTo(&model); err != nil {
			return nil, errors.Wrap(err, "can't decode policy document")
		}
		policy, err := mapModelToPolicy(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

func (r *Repository) CreatePolicy(ctx context.Context, policy *entity.Policy) error {
	model, err := mapPolicyToModel(policy)
	if err != nil {
		return errors.WithStack(err)
	}
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	if _, err := r.client.Collection(policiesCollection).Doc(model.PolicyId).Set(ctx, model); err != nil {
		return errors.Wrap(err, "error during set")
	}
	return nil
}

func (r *Repository) GetDesign(ctx context.Context, tokenType string) (*entity.Design, error) {
	snap, err := r.client.Collection(designsCollection).Doc(tokenType).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during get")
	}
	var model designModel
	if err := snap.DataTo(&model); err != nil {
		return nil, errors.Wrap(err, "can't decode design document")
	}
	return mapModelToDesign(model)
}

func (r *Repository) GetDesigns(ctx context.Context) ([]*entity.Design, error) {
	it := r.client.Collection(designsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var designs []*entity.Design
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error during iteration")
		}
		var model designModel
		if err := snap.DataTo(&model); err != nil {
			return nil, errors.Wrap(err, "can't decode design document")
		}
		design, err := mapModelToDesign(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		designs = append(designs, design)
	}
	return designs, nil
}

func (r *Repository) CreateDesign(ctx context.Context, design *entity.Design) error {
	model := mapDesignToModel(design)
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	if _, err := r.client.Collection(designsCollection).Doc(model.TokenType).Set(ctx, model); err != nil {
		return errors.Wrap(err, "error during set")
	}
	return nil
}

func (r *Repository) GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	snap, err := r.client.Collection(snapshotsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during get")
	}
	var model snapshotModel
	if err := snap.DataTo(&model); err != nil {
		return nil, errors.Wrap(err, "can't decode snapshot document")
	}
	return mapModelToSnapshot(model), nil
}

func (r *Repository) ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	// wholesale replace: snapshots are immutable, re-snapshotting overwrites
	if _, err := r.client.Collection(snapshotsCollection).Doc(snapshot.Id).Set(ctx, mapSnapshotToModel(snapshot)); err != nil {
		return errors.Wrap(err, "error during set")
	}
	return nil
}

func (r *Repository) AllocateSequence(ctx context.Context, tokenType string) (uint64, error) {
	design, err := r.GetDesign(ctx, tokenType)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return design.TotalMinted + 1, nil
}

func (r *Repository) AdvanceSequence(ctx context.Context, tokenType string, confirmed uint64) error {
	ref := r.client.Collection(designsCollection).Doc(tokenType)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.WithStack(errs.NotFound)
			}
			return errors.Wrap(err, "error during get")
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "totalMinted", Value: firestore.Increment(int64(confirmed))},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return errors.Wrap(err, "can't advance sequence")
	}
	return nil
}
