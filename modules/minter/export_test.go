package minter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/parquetutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLedger(t *testing.T, n int) *memLedger {
	t.Helper()
	ledger := &memLedger{}
	mintedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		err := ledger.CreateMintRecord(context.Background(), &entity.MintRecord{
			Id:            fmt.Sprintf("founder-%d", i),
			TokenType:     "founder",
			MintNumber:    uint64(i),
			PolicyId:      "policy",
			AssetName:     fmt.Sprintf("Founder%d", i),
			AssetId:       fmt.Sprintf("policy.Founder%d", i),
			RecipientAddr: fmt.Sprintf("addr_test1q%d", i),
			RecipientName: fmt.Sprintf("holder-%d", i),
			BatchNumber:   (i-1)/10 + 1,
			TxHash:        "deadbeef",
			Network:       common.NetworkPreprod,
			Status:        entity.MintStatusConfirmed,
			MintedAt:      mintedAt,
			CreatedAt:     mintedAt,
		})
		require.NoError(t, err)
	}
	return ledger
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	// more than one page to exercise the paged fetch
	exporter := NewLedgerExporter(seededLedger(t, exportPageSize+13))

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportCSV(context.Background(), "founder", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, exportPageSize+14)

	assert.Equal(t, exportHeader, rows[0])
	first := rows[1]
	assert.Equal(t, "Founder1", first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "founder", first[2])
	assert.Equal(t, "holder-1", first[4])
	assert.Equal(t, "confirmed", first[5])
	assert.Equal(t, "deadbeef", first[6])
	assert.Equal(t, "preprod", first[7])
	assert.Equal(t, "1", first[8])
	assert.Equal(t, "2024-06-01T12:00:00Z", first[9])
	assert.Equal(t, "policy.Founder1", first[10])

	// ledger order is preserved across page boundaries
	for i, row := range rows[1:] {
		assert.Equal(t, fmt.Sprintf("%d", i+1), row[1])
	}
}

func TestExportCSVEmptyLedger(t *testing.T) {
	t.Parallel()

	exporter := NewLedgerExporter(&memLedger{})
	var buf bytes.Buffer
	require.NoError(t, exporter.ExportCSV(context.Background(), "", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, exportHeader, rows[0])
}

func TestExportParquet(t *testing.T) {
	t.Parallel()

	exporter := NewLedgerExporter(seededLedger(t, 37))

	buf := parquetutils.NewBuffer()
	require.NoError(t, exporter.ExportParquet(context.Background(), "founder", buf))

	rows, err := parquetutils.ReadAll[parquetMintRecord](parquetutils.NewBufferFrom(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 37)
	assert.Equal(t, "Founder1", rows[0].AssetName)
	assert.Equal(t, int64(1), rows[0].MintNumber)
	assert.Equal(t, "preprod", rows[0].Network)
	assert.Equal(t, int64(4), rows[36].BatchNumber)
}
