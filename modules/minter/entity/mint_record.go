package entity

import (
	"time"

	"github.com/questline/mint-console/common"
)

type MintStatus string

const (
	MintStatusPending   MintStatus = "pending"
	MintStatusSubmitted MintStatus = "submitted"
	MintStatusConfirmed MintStatus = "confirmed"
	MintStatusFailed    MintStatus = "failed"
)

// MintRecord is one durable ledger entry per minted asset. Records are
// append-only: corrections are modeled as new records with corrected status,
// never as mutation.
type MintRecord struct {
	Id            string
	TokenType     string
	MintNumber    uint64 // assigned from the design's counter, never reused
	PolicyId      string
	AssetName     string
	AssetId       string
	RecipientAddr string
	RecipientName string
	BatchNumber   int
	TxHash        string
	Network       common.Network
	Status        MintStatus
	MintedAt      time.Time
	CreatedAt     time.Time
}
