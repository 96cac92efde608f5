package entity

import (
	"time"

	"github.com/questline/mint-console/pkg/cardano"
)

// TraitAttribute is one trait-type/value pair merged into every mint's
// metadata.
type TraitAttribute struct {
	TraitType string
	Value     string
}

// Design is one NFT type: one artwork plus a metadata template that can be
// minted many times under its owning policy.
type Design struct {
	TokenType       string // unique id
	DisplayName     string
	Description     string
	ImageUrl        string // content-addressed
	MediaType       string
	AssetNamePrefix string
	PolicyId        cardano.PolicyID

	CustomAttributes []TraitAttribute

	// TotalMinted is the single source of truth for the next mint sequence
	// number. It only increases, and only after a batch's chain submission
	// is confirmed.
	TotalMinted uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}
