package chain

import (
	"context"
	"time"

	"github.com/questline/mint-console/pkg/cardano"
)

// UTXO is one unspent output usable as a transaction input.
type UTXO struct {
	Input    cardano.TxInput
	Lovelace uint64
}

// Client talks to the Cardano chain. Implementations must map a rejected
// submission caused by unbalanced value to errs.InsufficientFunds so the
// executor can surface it distinctly from generic submission errors.
type Client interface {
	// TipSlot returns the slot number of the chain tip.
	TipSlot(ctx context.Context) (uint64, error)

	// UTXOs returns the unspent outputs held by the address.
	UTXOs(ctx context.Context, address cardano.Address) ([]UTXO, error)

	// SubmitTx broadcasts a signed transaction and returns its hash.
	SubmitTx(ctx context.Context, rawTx []byte) (cardano.TxHash, error)

	// AwaitConfirmation blocks until the transaction is included in a block
	// or the timeout elapses. Returns errs.Timeout on expiry.
	AwaitConfirmation(ctx context.Context, txHash cardano.TxHash, timeout time.Duration) error
}
