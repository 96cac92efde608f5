package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/entity"
	"google.golang.org/api/iterator"
)

func (r *Repository) CreateMintRecord(ctx context.Context, record *entity.MintRecord) error {
	model := mapMintRecordToModel(record)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if _, err := r.client.Collection(mintRecordsCollection).Doc(model.Id).Set(ctx, model); err != nil {
		return errors.Wrap(err, "error during set")
	}
	return nil
}

func (r *Repository) GetMintRecords(ctx context.Context, tokenType string, limit int32, offset int64) ([]*entity.MintRecord, error) {
	query := r.client.Collection(mintRecordsCollection).Query
	if tokenType != "" {
		query = query.Where("tokenType", "==", tokenType)
	}
	query = query.OrderBy("createdAt", firestore.Asc).Offset(int(offset))
	if limit >= 0 {
		query = query.Limit(int(limit))
	}

	it := query.Documents(ctx)
	defer it.Stop()

	var records []*entity.MintRecord
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error during iteration")
		}
		var model mintRecordModel
		if err := snap.DataTo(&model); err != nil {
			return nil, errors.Wrap(err, "can't decode mint record document")
		}
		records = append(records, mapModelToMintRecord(model))
	}
	return records, nil
}

func (r *Repository) CountMintRecords(ctx context.Context, tokenType string) (uint64, error) {
	query := r.client.Collection(mintRecordsCollection).Query
	if tokenType != "" {
		query = query.Where("tokenType", "==", tokenType)
	}

	// keys-only scan, document payloads are not fetched
	it := query.Select().Documents(ctx)
	defer it.Stop()

	var count uint64
	for {
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return 0, errors.Wrap(err, "error during iteration")
		}
		count++
	}
	return count, nil
}

func (r *Repository) GetMaxMintNumber(ctx context.Context, tokenType string) (uint64, error) {
	it := r.client.Collection(mintRecordsCollection).
		Where("tokenType", "==", tokenType).
		OrderBy("mintNumber", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return 0, errors.WithStack(errs.NotFound)
	}
	if err != nil {
		return 0, errors.Wrap(err, "error during iteration")
	}
	var model mintRecordModel
	if err := snap.DataTo(&model); err != nil {
		return 0, errors.Wrap(err, "can't decode mint record document")
	}
	return uint64(model.MintNumber), nil
}
