package usecase

import (
	"context"
	"io"

	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/modules/minter/blobstore"
	"github.com/questline/mint-console/modules/minter/datagateway"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/modules/minter/wallet"
)

// MintEngine plans and executes batch mint runs.
type MintEngine interface {
	Plan(recipients []entity.Recipient, batchSize int) *entity.BatchPlan
	Run(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error)
}

// LedgerExporter streams the mint ledger into a tabular format.
type LedgerExporter interface {
	ExportCSV(ctx context.Context, tokenType string, w io.Writer) error
	ExportParquet(ctx context.Context, tokenType string, w io.Writer) error
}

type Usecase struct {
	registry  datagateway.RegistryDataGateway
	ledger    datagateway.MintLedgerDataGateway
	wallet    wallet.Connector
	engine    MintEngine
	exporter  LedgerExporter
	blobStore blobstore.Store
	network   common.Network
	batchSize int

	runs *runTracker
}

func New(registry datagateway.RegistryDataGateway, ledger datagateway.MintLedgerDataGateway, walletConn wallet.Connector, engine MintEngine, exporter LedgerExporter, blobStore blobstore.Store, network common.Network, batchSize int) *Usecase {
	return &Usecase{
		registry:  registry,
		ledger:    ledger,
		wallet:    walletConn,
		engine:    engine,
		exporter:  exporter,
		blobStore: blobStore,
		network:   network,
		batchSize: batchSize,
		runs:      newRunTracker(),
	}
}
