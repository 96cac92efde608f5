package datagateway

import (
	"context"

	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

// RegistryDataGateway reads policies, designs and eligibility snapshots, and
// owns the design's mint sequence counter.
type RegistryDataGateway interface {
	// GetPolicy returns the policy for the given policy id. Returns
	// errs.NotFound if the policy is not found.
	GetPolicy(ctx context.Context, policyId cardano.PolicyID) (*entity.Policy, error)
	// GetPolicies returns all registered policies, most recent first.
	GetPolicies(ctx context.Context) ([]*entity.Policy, error)
	CreatePolicy(ctx context.Context, policy *entity.Policy) error

	// GetDesign returns the design for the given token type. Returns
	// errs.NotFound if the design is not found.
	GetDesign(ctx context.Context, tokenType string) (*entity.Design, error)
	GetDesigns(ctx context.Context) ([]*entity.Design, error)
	CreateDesign(ctx context.Context, design *entity.Design) error

	// GetSnapshot returns the eligibility snapshot with the given id.
	// Returns errs.NotFound if the snapshot is not found.
	GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error)
	// ReplaceSnapshot replaces the snapshot with the given id wholesale.
	// Snapshots are immutable once taken; there is no partial update.
	ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error

	// AllocateSequence returns the next mint sequence number for the design:
	// totalMinted + 1. Read exactly once per run, never re-queried mid-run.
	AllocateSequence(ctx context.Context, tokenType string) (uint64, error)
	// AdvanceSequence advances the design's totalMinted counter by the number
	// of confirmed mints. Called only after a batch's chain submission is
	// confirmed, never speculatively.
	AdvanceSequence(ctx context.Context, tokenType string, confirmed uint64) error
}
