package wallet

import (
	"context"

	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/pkg/cardano"
)

// Kind selects a wallet implementation. Browser wallets are reached through
// the console's signing bridge; the embedded wallet signs with a local key.
type Kind string

const (
	KindNami     Kind = "nami"
	KindEternl   Kind = "eternl"
	KindFlint    Kind = "flint"
	KindLace     Kind = "lace"
	KindEmbedded Kind = "embedded"
)

var supportedKinds = map[Kind]struct{}{
	KindNami:     {},
	KindEternl:   {},
	KindFlint:    {},
	KindLace:     {},
	KindEmbedded: {},
}

func (k Kind) IsSupported() bool {
	_, ok := supportedKinds[k]
	return ok
}

func (k Kind) String() string {
	return string(k)
}

// Connector is a session with one wallet. A connector is a single global
// resource: only one mint run may use it at a time, and only one signing
// request may be in flight.
//
// Connect fails with errs.WalletUnavailable if the wallet cannot be reached
// and errs.UserRejected if authorization is declined. SignTx suspends until
// the user approves or rejects; no timeout is imposed on the approval itself.
type Connector interface {
	// Connect authorizes the session and returns the wallet's primary
	// payment address.
	Connect(ctx context.Context) (cardano.Address, error)

	// Balance returns the current lovelace balance. Pre-flight affordability
	// check only; the balance can change between check and submission.
	Balance(ctx context.Context) (uint64, error)

	// UTXOs returns the wallet's spendable outputs for input selection.
	UTXOs(ctx context.Context) ([]chain.UTXO, error)

	// SignTx signs the transaction body and returns the witnesses to attach.
	// Returns errs.UserRejected if the user declines the signing request.
	SignTx(ctx context.Context, tx *cardano.Tx) ([]cardano.VKeyWitness, error)

	// Disconnect tears down the session. Idempotent.
	Disconnect(ctx context.Context) error
}
