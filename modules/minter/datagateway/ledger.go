package datagateway

import (
	"context"

	"github.com/questline/mint-console/modules/minter/entity"
)

// MintLedgerDataGateway persists one durable record per minted asset. The
// ledger is append-only: no update or delete operations exist.
type MintLedgerDataGateway interface {
	// CreateMintRecord appends one record. Called once per minted asset,
	// immediately after the owning batch's chain confirmation.
	CreateMintRecord(ctx context.Context, record *entity.MintRecord) error

	// GetMintRecords returns ledger records in ledger order, filterable by
	// token type. If tokenType is empty, the filter is ignored.
	// Use limit = -1 as no limit.
	GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error)

	// CountMintRecords returns the number of ledger records for the token
	// type. If tokenType is empty, all records are counted.
	CountMintRecords(ctx context.Context, tokenType string) (uint64, error)

	// GetMaxMintNumber returns the highest mint sequence number recorded for
	// the token type. Returns errs.NotFound if the ledger has no records for
	// it.
	GetMaxMintNumber(ctx context.Context, tokenType string) (uint64, error)
}
