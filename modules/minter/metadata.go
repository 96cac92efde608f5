package minter

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

// BuildTokenMetadata assembles the metadata document for one minted asset.
// It merges, in order: the design's core fields, the design's custom
// attributes, the policy's template fields (fixed values copied verbatim,
// placeholder values supplied per token) and the automatic Mint Number and
// Collection attributes. Later sources win on key collision.
func BuildTokenMetadata(design *entity.Design, policy *entity.Policy, mintNumber uint64, placeholders map[string]string) (map[string]any, error) {
	meta := map[string]any{
		"name":      fmt.Sprintf("%s #%d", design.DisplayName, mintNumber),
		"image":     design.ImageUrl,
		"mediaType": design.MediaType,
	}
	if design.Description != "" {
		meta["description"] = design.Description
	}

	for _, attr := range design.CustomAttributes {
		meta[attr.TraitType] = attr.Value
	}

	for _, field := range policy.MetadataTemplate {
		switch field.Kind {
		case entity.TemplateFieldFixed:
			meta[field.Name] = field.FixedValue
		case entity.TemplateFieldPlaceholder:
			value, ok := placeholders[field.Name]
			if !ok {
				return nil, errors.Wrapf(errs.InvalidArgument, "no value supplied for placeholder field %q", field.Name)
			}
			meta[field.Name] = value
		default:
			return nil, errors.Wrapf(errs.InvalidArgument, "unknown template field kind %q", field.Kind)
		}
	}

	meta["Mint Number"] = mintNumber
	meta["Collection"] = policy.Name
	return meta, nil
}

// BuildBatchMetadata wraps per-asset metadata documents into the on-chain
// token metadata envelope for one policy: {721: {policyId: {assetName: doc}}}.
func BuildBatchMetadata(policyId cardano.PolicyID, tokens map[string]map[string]any) cardano.Metadata {
	return cardano.Metadata{
		cardano.MetadataLabelNFT: map[string]any{
			policyId.String(): tokens,
		},
	}
}
