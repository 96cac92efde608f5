package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/modules/minter/blobstore"
	"github.com/questline/mint-console/modules/minter/entity"
)

func (u *Usecase) GetPolicies(ctx context.Context) ([]*entity.Policy, error) {
	policies, err := u.registry.GetPolicies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetPolicies")
	}
	return policies, nil
}

func (u *Usecase) CreatePolicy(ctx context.Context, policy *entity.Policy) error {
	return errors.WithStack(u.registry.CreatePolicy(ctx, policy))
}

func (u *Usecase) GetDesigns(ctx context.Context) ([]*entity.Design, error) {
	designs, err := u.registry.GetDesigns(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetDesigns")
	}
	return designs, nil
}

func (u *Usecase) GetDesign(ctx context.Context, tokenType string) (*entity.Design, error) {
	design, err := u.registry.GetDesign(ctx, tokenType)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load design %q", tokenType)
	}
	return design, nil
}

func (u *Usecase) CreateDesign(ctx context.Context, design *entity.Design) error {
	if _, err := u.registry.GetPolicy(ctx, design.PolicyId); err != nil {
		return errors.Wrapf(err, "can't load policy %s for design", design.PolicyId)
	}
	return errors.WithStack(u.registry.CreateDesign(ctx, design))
}

func (u *Usecase) GetSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	snapshot, err := u.registry.GetSnapshot(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load snapshot %q", id)
	}
	return snapshot, nil
}

// ReplaceSnapshot replaces an eligibility snapshot wholesale. Snapshots are
// immutable once taken; there is no partial update.
func (u *Usecase) ReplaceSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	return errors.WithStack(u.registry.ReplaceSnapshot(ctx, snapshot))
}

// metadataDocument is the design-level metadata JSON published to the blob
// store. Token-level CIP-25 metadata is built per mint at run time; this
// document describes the design itself for off-chain consumers.
type metadataDocument struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Image       string                  `json:"image"`
	MediaType   string                  `json:"mediaType"`
	PolicyId    string                  `json:"policyId"`
	Attributes  []entity.TraitAttribute `json:"attributes,omitempty"`
}

// UploadDesignMetadata publishes the design's metadata document to the blob
// store and returns the stored object's content id and URLs.
func (u *Usecase) UploadDesignMetadata(ctx context.Context, tokenType string) (blobstore.Object, error) {
	design, err := u.registry.GetDesign(ctx, tokenType)
	if err != nil {
		return blobstore.Object{}, errors.Wrapf(err, "can't load design %q", tokenType)
	}

	doc := metadataDocument{
		Name:        design.DisplayName,
		Description: design.Description,
		Image:       design.ImageUrl,
		MediaType:   design.MediaType,
		PolicyId:    design.PolicyId.String(),
		Attributes:  design.CustomAttributes,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return blobstore.Object{}, errors.Wrap(err, "can't marshal metadata document")
	}

	object, err := u.blobStore.Upload(ctx, fmt.Sprintf("%s-metadata.json", tokenType), data)
	if err != nil {
		return blobstore.Object{}, errors.Wrapf(err, "can't upload metadata for %q", tokenType)
	}
	return object, nil
}
