package minter

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/questline/mint-console/modules/minter/datagateway"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	exportPageSize    = 500
	exportConcurrency = 4
)

var exportHeader = []string{"NFT Name", "Mint Number", "Token Type", "Recipient Address", "Recipient Name", "Status", "TX Hash", "Network", "Batch Number", "Minted At", "Asset ID"}

// LedgerExporter writes the mint ledger out as CSV or parquet, one row per
// record, in ledger order. Pages are fetched concurrently but consumed in
// order, so row order always matches ledger order.
type LedgerExporter struct {
	ledger datagateway.MintLedgerDataGateway
}

func NewLedgerExporter(ledger datagateway.MintLedgerDataGateway) *LedgerExporter {
	return &LedgerExporter{ledger: ledger}
}

type ledgerPage struct {
	records []*entity.MintRecord
	err     error
}

func (e *LedgerExporter) streamPages(ctx context.Context, tokenType string) (<-chan ledgerPage, error) {
	count, err := e.ledger.CountMintRecords(ctx, tokenType)
	if err != nil {
		return nil, errors.Wrap(err, "can't count ledger records")
	}

	out := make(chan ledgerPage)
	stream := cstream.NewStream(ctx, exportConcurrency, out)

	go func() {
		defer stream.Close()
		for offset := uint64(0); offset < count; offset += exportPageSize {
			offset := offset
			select {
			case <-ctx.Done():
				return
			default:
				stream.Go(func() ledgerPage {
					records, err := e.ledger.GetMintRecords(ctx, tokenType, exportPageSize, int64(offset))
					if err != nil {
						return ledgerPage{err: errors.Wrapf(err, "can't fetch ledger page at offset %d", offset)}
					}
					return ledgerPage{records: records}
				})
			}
		}
	}()

	// Wait for stream to finish and close out channel
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	return out, nil
}

// ExportCSV writes the ledger as CSV with a fixed header row.
func (e *LedgerExporter) ExportCSV(ctx context.Context, tokenType string, w io.Writer) error {
	pages, err := e.streamPages(ctx, tokenType)
	if err != nil {
		return errors.WithStack(err)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(exportHeader); err != nil {
		return errors.Wrap(err, "can't write csv header")
	}
	for page := range pages {
		if page.err != nil {
			return errors.WithStack(page.err)
		}
		for _, record := range page.records {
			if err := csvWriter.Write(csvRow(record)); err != nil {
				return errors.Wrap(err, "can't write csv row")
			}
		}
	}
	csvWriter.Flush()
	return errors.Wrap(csvWriter.Error(), "can't flush csv")
}

func csvRow(record *entity.MintRecord) []string {
	return []string{
		record.AssetName,
		strconv.FormatUint(record.MintNumber, 10),
		record.TokenType,
		record.RecipientAddr,
		record.RecipientName,
		string(record.Status),
		record.TxHash,
		record.Network.String(),
		strconv.Itoa(record.BatchNumber),
		record.MintedAt.UTC().Format(time.RFC3339),
		record.AssetId,
	}
}

type parquetMintRecord struct {
	AssetName     string `parquet:"name=nft_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	MintNumber    int64  `parquet:"name=mint_number, type=INT64, repetitiontype=REQUIRED"`
	TokenType     string `parquet:"name=token_type, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	RecipientAddr string `parquet:"name=recipient_address, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	RecipientName string `parquet:"name=recipient_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	Status        string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	TxHash        string `parquet:"name=tx_hash, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	Network       string `parquet:"name=network, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
	BatchNumber   int64  `parquet:"name=batch_number, type=INT64, repetitiontype=REQUIRED"`
	MintedAt      int64  `parquet:"name=minted_at, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=REQUIRED"`
	AssetId       string `parquet:"name=asset_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"`
}

// ExportParquet writes the ledger as a parquet file.
func (e *LedgerExporter) ExportParquet(ctx context.Context, tokenType string, w io.Writer) error {
	pages, err := e.streamPages(ctx, tokenType)
	if err != nil {
		return errors.WithStack(err)
	}

	parquetWriter, err := writer.NewParquetWriterFromWriter(w, new(parquetMintRecord), exportConcurrency)
	if err != nil {
		return errors.Wrap(err, "can't create parquet writer")
	}
	for page := range pages {
		if page.err != nil {
			return errors.WithStack(page.err)
		}
		for _, record := range page.records {
			row := parquetMintRecord{
				AssetName:     record.AssetName,
				MintNumber:    int64(record.MintNumber),
				TokenType:     record.TokenType,
				RecipientAddr: record.RecipientAddr,
				RecipientName: record.RecipientName,
				Status:        string(record.Status),
				TxHash:        record.TxHash,
				Network:       record.Network.String(),
				BatchNumber:   int64(record.BatchNumber),
				MintedAt:      record.MintedAt.UTC().UnixMilli(),
				AssetId:       record.AssetId,
			}
			if err := parquetWriter.Write(row); err != nil {
				return errors.Wrap(err, "can't write parquet row")
			}
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return errors.Wrap(err, "can't finalize parquet file")
	}
	return nil
}
