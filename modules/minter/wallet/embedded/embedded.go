package embedded

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/wallet"
	"github.com/questline/mint-console/pkg/cardano"
)

type Config struct {
	// SigningKeyFile holds a hex-encoded 32-byte ed25519 seed.
	SigningKeyFile string `mapstructure:"signing_key_file"`
}

// Connector signs with a locally held key instead of a browser wallet. Meant
// for headless runs on test networks; UTXO lookups go through the chain
// client since there is no extension to ask.
type Connector struct {
	network common.Network
	chain   chain.Client
	key     ed25519.PrivateKey
	address cardano.Address
}

var _ wallet.Connector = (*Connector)(nil)

func New(conf Config, network common.Network, chainClient chain.Client) (*Connector, error) {
	raw, err := os.ReadFile(conf.SigningKeyFile)
	if err != nil {
		return nil, errors.Wrapf(errs.WalletUnavailable, "can't read signing key file %q: %v", conf.SigningKeyFile, err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errs.WalletUnavailable, "signing key file %q must hold a hex-encoded %d-byte seed", conf.SigningKeyFile, ed25519.SeedSize)
	}

	key := ed25519.NewKeyFromSeed(seed)
	keyHash := cardano.KeyHashFromPubKey(key.Public().(ed25519.PublicKey))
	address, err := cardano.EncodeAddress(keyHash, network)
	if err != nil {
		return nil, errors.Wrap(err, "can't derive wallet address")
	}

	return &Connector{
		network: network,
		chain:   chainClient,
		key:     key,
		address: address,
	}, nil
}

func (c *Connector) Connect(ctx context.Context) (cardano.Address, error) {
	return c.address, nil
}

func (c *Connector) Balance(ctx context.Context) (uint64, error) {
	utxos, err := c.chain.UTXOs(ctx, c.address)
	if err != nil {
		return 0, errors.Wrap(err, "can't fetch utxos")
	}
	var total uint64
	for _, utxo := range utxos {
		total += utxo.Lovelace
	}
	return total, nil
}

func (c *Connector) UTXOs(ctx context.Context) ([]chain.UTXO, error) {
	utxos, err := c.chain.UTXOs(ctx, c.address)
	if err != nil {
		return nil, errors.Wrap(err, "can't fetch utxos")
	}
	return utxos, nil
}

func (c *Connector) SignTx(ctx context.Context, tx *cardano.Tx) ([]cardano.VKeyWitness, error) {
	hash, err := tx.Body.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "can't hash tx body")
	}
	return []cardano.VKeyWitness{{
		VKey:      c.key.Public().(ed25519.PublicKey),
		Signature: ed25519.Sign(c.key, hash[:]),
	}}, nil
}

func (c *Connector) Disconnect(ctx context.Context) error {
	return nil
}
