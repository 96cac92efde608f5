package minter

import (
	"testing"

	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDesign(t *testing.T) (*entity.Design, *entity.Policy) {
	t.Helper()
	script := cardano.SignaturePolicy{KeyHash: testKeyHash(t, 7)}
	policyId, err := cardano.PolicyIDFor(script)
	require.NoError(t, err)

	policy := &entity.Policy{
		PolicyId: policyId,
		Name:     "Questline Founders",
		Script:   script,
	}
	design := &entity.Design{
		TokenType:       "founder",
		DisplayName:     "Founder Badge",
		Description:     "Commemorates the founding cohort.",
		ImageUrl:        "ipfs://QmTestImage",
		MediaType:       "image/png",
		AssetNamePrefix: "Founder",
		PolicyId:        policyId,
		CustomAttributes: []entity.TraitAttribute{
			{TraitType: "Season", Value: "Genesis"},
		},
	}
	return design, policy
}

func TestBuildTokenMetadata(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	policy.MetadataTemplate = []entity.TemplateField{
		{Name: "Artist", Kind: entity.TemplateFieldFixed, FixedValue: "studio"},
		{Name: "Recipient", Kind: entity.TemplateFieldPlaceholder},
	}

	meta, err := BuildTokenMetadata(design, policy, 42, map[string]string{"Recipient": "alice"})
	require.NoError(t, err)

	assert.Equal(t, "Founder Badge #42", meta["name"])
	assert.Equal(t, "ipfs://QmTestImage", meta["image"])
	assert.Equal(t, "image/png", meta["mediaType"])
	assert.Equal(t, "Commemorates the founding cohort.", meta["description"])
	assert.Equal(t, "Genesis", meta["Season"])
	assert.Equal(t, "studio", meta["Artist"])
	assert.Equal(t, "alice", meta["Recipient"])
	assert.Equal(t, uint64(42), meta["Mint Number"])
	assert.Equal(t, "Questline Founders", meta["Collection"])
}

func TestBuildTokenMetadataMissingPlaceholder(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	policy.MetadataTemplate = []entity.TemplateField{
		{Name: "Recipient", Kind: entity.TemplateFieldPlaceholder},
	}

	_, err := BuildTokenMetadata(design, policy, 1, nil)
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestBuildTokenMetadataOmitsEmptyDescription(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	design.Description = ""

	meta, err := BuildTokenMetadata(design, policy, 1, nil)
	require.NoError(t, err)
	_, ok := meta["description"]
	assert.False(t, ok)
}

func TestBuildBatchMetadataEnvelope(t *testing.T) {
	t.Parallel()

	design, _ := testDesign(t)
	tokens := map[string]map[string]any{
		"Founder1": {"name": "Founder Badge #1"},
	}
	metadata := BuildBatchMetadata(design.PolicyId, tokens)

	inner, ok := metadata[cardano.MetadataLabelNFT].(map[string]any)
	require.True(t, ok)
	byPolicy, ok := inner[design.PolicyId.String()].(map[string]map[string]any)
	require.True(t, ok)
	assert.Equal(t, tokens, byPolicy)
}
