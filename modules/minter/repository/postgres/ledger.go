package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
)

func (r *Repository) CreateMintRecord(ctx context.Context, record *entity.MintRecord) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO minter_mint_records (id, token_type, mint_number, policy_id, asset_name, asset_id, recipient_address, recipient_name, batch_number, tx_hash, network, status, minted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
	`, record.Id, record.TokenType, int64(record.MintNumber), record.PolicyId, record.AssetName, record.AssetId, record.RecipientAddr, record.RecipientName, record.BatchNumber, record.TxHash, record.Network.String(), string(record.Status), record.MintedAt); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, token_type, mint_number, policy_id, asset_name, asset_id, recipient_address, recipient_name, batch_number, tx_hash, network, status, minted_at, created_at
		FROM minter_mint_records
		WHERE ($1 = '' OR token_type = $1)
		ORDER BY seq
		LIMIT NULLIF($2, -1) OFFSET $3
	`, tokenType, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	var records []*entity.MintRecord
	for rows.Next() {
		record, err := scanMintRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return records, nil
}

func scanMintRecord(row pgx.Row) (*entity.MintRecord, error) {
	var (
		record     entity.MintRecord
		mintNumber int64
		network    string
		status     string
	)
	if err := row.Scan(&record.Id, &record.TokenType, &mintNumber, &record.PolicyId, &record.AssetName, &record.AssetId, &record.RecipientAddr, &record.RecipientName, &record.BatchNumber, &record.TxHash, &network, &status, &record.MintedAt, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.MintNumber = uint64(mintNumber)
	record.Network = common.Network(network)
	record.Status = entity.MintStatus(status)
	return &record, nil
}

func (r *Repository) CountMintRecords(ctx context.Context, tokenType string) (uint64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM minter_mint_records WHERE ($1 = '' OR token_type = $1)
	`, tokenType).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(count), nil
}

func (r *Repository) GetMaxMintNumber(ctx context.Context, tokenType string) (uint64, error) {
	var max *int64
	if err := r.db.QueryRow(ctx, `
		SELECT max(mint_number) FROM minter_mint_records WHERE token_type = $1
	`, tokenType).Scan(&max); err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	if max == nil {
		return 0, errors.WithStack(errs.NotFound)
	}
	return uint64(*max), nil
}
