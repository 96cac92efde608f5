package entity

import (
	"time"

	"github.com/questline/mint-console/pkg/cardano"
)

// TemplateFieldKind tags a metadata template field as either a fixed literal
// copied verbatim into every token's metadata, or a placeholder supplied
// per token at build time.
type TemplateFieldKind string

const (
	TemplateFieldFixed       TemplateFieldKind = "fixed"
	TemplateFieldPlaceholder TemplateFieldKind = "placeholder"
)

// TemplateField is one ordered custom field definition of a policy's
// metadata template.
type TemplateField struct {
	Name       string
	Kind       TemplateFieldKind
	FixedValue string
}

// Policy identifies a minting authority for an asset collection. Created
// once, referenced by many designs, never mutated except soft metadata.
type Policy struct {
	PolicyId cardano.PolicyID
	Name     string
	Notes    string

	// Script is the minting policy script. Its signature key hash must equal
	// the connected wallet's derived key hash at mint time.
	Script cardano.PolicyScript

	ExpiryDate *time.Time

	RoyaltyAddress string
	RoyaltyPercent float64

	MetadataTemplate []TemplateField

	CreatedAt time.Time
	UpdatedAt time.Time
}

// KeyHash returns the payment credential required to sign mints under this
// policy.
func (p Policy) KeyHash() cardano.KeyHash {
	return p.Script.SignatureKeyHash()
}
