package usecase

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
)

// Ledger export formats.
const (
	ExportFormatCSV     = "csv"
	ExportFormatParquet = "parquet"
)

// GetMintRecords returns ledger records in ledger order, filterable by token
// type. Use limit = -1 as no limit.
func (u *Usecase) GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error) {
	records, err := u.ledger.GetMintRecords(ctx, tokenType, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetMintRecords")
	}
	return records, nil
}

func (u *Usecase) CountMintRecords(ctx context.Context, tokenType string) (uint64, error) {
	count, err := u.ledger.CountMintRecords(ctx, tokenType)
	if err != nil {
		return 0, errors.Wrap(err, "error during CountMintRecords")
	}
	return count, nil
}

// ExportLedger streams the ledger for the token type into w in the requested
// format. An empty tokenType exports the whole ledger.
func (u *Usecase) ExportLedger(ctx context.Context, format string, tokenType string, w io.Writer) error {
	switch format {
	case ExportFormatCSV:
		return errors.WithStack(u.exporter.ExportCSV(ctx, tokenType, w))
	case ExportFormatParquet:
		return errors.WithStack(u.exporter.ExportParquet(ctx, tokenType, w))
	default:
		return errors.Wrapf(errs.Unsupported, "%q export format is not supported", format)
	}
}
