package config

import (
	"time"

	"github.com/questline/mint-console/internal/postgres"
	"github.com/questline/mint-console/modules/minter/blobstore/ipfsstore"
	"github.com/questline/mint-console/modules/minter/blobstore/s3store"
	"github.com/questline/mint-console/modules/minter/chain/blockfrost"
	"github.com/questline/mint-console/modules/minter/repository/firestore"
	"github.com/questline/mint-console/modules/minter/wallet/bridge"
	"github.com/questline/mint-console/modules/minter/wallet/embedded"
)

// Config is the minter module configuration. Each backend switch mirrors the
// structure of its implementations: a selector string plus one config block
// per supported backend.
type Config struct {
	// Database selects the registry/ledger persistence backend.
	// Supported: "firestore" (default) | "postgres".
	Database  string           `mapstructure:"database"`
	Postgres  postgres.Config  `mapstructure:"postgres"`
	Firestore firestore.Config `mapstructure:"firestore"`

	Blockfrost blockfrost.Config `mapstructure:"blockfrost"`

	Wallet  WalletConfig  `mapstructure:"wallet"`
	Storage StorageConfig `mapstructure:"storage"`

	// BatchSize caps recipients per transaction. Zero uses the default.
	BatchSize int `mapstructure:"batch_size"`

	// ConfirmTimeout bounds how long a submitted batch may wait for
	// on-chain confirmation before the batch is marked failed.
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`

	APIHandlers []string `mapstructure:"api_handlers"`
}

// WalletConfig selects the wallet connector. Kind "embedded" signs with a
// local key file; browser wallet kinds (nami, eternl, flint, lace) go through
// the CIP-30 bridge.
type WalletConfig struct {
	Kind     string          `mapstructure:"kind"`
	Embedded embedded.Config `mapstructure:"embedded"`
	Bridge   bridge.Config   `mapstructure:"bridge"`
}

// StorageConfig selects the artwork/metadata blob store backend.
// Supported: "ipfs" | "s3".
type StorageConfig struct {
	Backend string           `mapstructure:"backend"`
	IPFS    ipfsstore.Config `mapstructure:"ipfs"`
	S3      s3store.Config   `mapstructure:"s3"`
}
