package postgres

import (
	"github.com/questline/mint-console/internal/postgres"
	"github.com/questline/mint-console/modules/minter/datagateway"
)

// Repository implements the registry and ledger gateways on Postgres.
type Repository struct {
	db postgres.DB
}

var (
	_ datagateway.RegistryDataGateway   = (*Repository)(nil)
	_ datagateway.MintLedgerDataGateway = (*Repository)(nil)
)

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}
