package bridge

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/wallet"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/questline/mint-console/pkg/httpclient"
)

type Config struct {
	// BridgeUrl is the console's local signing bridge, which proxies the
	// browser wallet extension (nami, eternl, flint, lace).
	BridgeUrl string `mapstructure:"bridge_url"`
	Debug     bool   `mapstructure:"debug"`
}

// Connector drives a browser wallet extension through the console's signing
// bridge. Signing requests suspend until the user approves or rejects in the
// extension UI; no timeout is imposed on the approval.
type Connector struct {
	client *httpclient.Client
	kind   wallet.Kind
}

var _ wallet.Connector = (*Connector)(nil)

func New(conf Config, kind wallet.Kind) (*Connector, error) {
	if !kind.IsSupported() {
		return nil, errors.Wrapf(errs.Unsupported, "wallet kind %q is not supported", kind)
	}
	client, err := httpclient.New(conf.BridgeUrl, httpclient.Config{Debug: conf.Debug})
	if err != nil {
		return nil, errors.Wrap(err, "can't create bridge client")
	}
	return &Connector{client: client, kind: kind}, nil
}

type connectRequest struct {
	Wallet string `json:"wallet"`
}

type connectResult struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

func (c *Connector) Connect(ctx context.Context) (cardano.Address, error) {
	body, err := json.Marshal(connectRequest{Wallet: c.kind.String()})
	if err != nil {
		return cardano.Address{}, errors.WithStack(err)
	}
	resp, err := c.client.Post(ctx, "/connect", httpclient.RequestOptions{Body: body})
	if err != nil {
		return cardano.Address{}, errors.Wrapf(errs.WalletUnavailable, "bridge unreachable: %v", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return cardano.Address{}, errors.WithStack(err)
	}

	var result connectResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return cardano.Address{}, errors.Wrap(err, "can't parse connect response")
	}
	network := common.Network(result.Network)
	address, err := cardano.DecodeAddress(result.Address, network)
	if err != nil {
		return cardano.Address{}, errors.Wrapf(err, "bridge returned unusable address %q", result.Address)
	}
	return address, nil
}

type balanceResult struct {
	Lovelace uint64 `json:"lovelace"`
}

func (c *Connector) Balance(ctx context.Context) (uint64, error) {
	resp, err := c.client.Get(ctx, "/balance", httpclient.RequestOptions{})
	if err != nil {
		return 0, errors.Wrapf(errs.WalletUnavailable, "bridge unreachable: %v", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return 0, errors.WithStack(err)
	}
	var result balanceResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return 0, errors.Wrap(err, "can't parse balance response")
	}
	return result.Lovelace, nil
}

type bridgeUTXO struct {
	TxHash   string `json:"txHash"`
	Index    uint64 `json:"index"`
	Lovelace uint64 `json:"lovelace"`
}

func (c *Connector) UTXOs(ctx context.Context) ([]chain.UTXO, error) {
	resp, err := c.client.Get(ctx, "/utxos", httpclient.RequestOptions{})
	if err != nil {
		return nil, errors.Wrapf(errs.WalletUnavailable, "bridge unreachable: %v", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, errors.WithStack(err)
	}
	var raw []bridgeUTXO
	if err := resp.UnmarshalBody(&raw); err != nil {
		return nil, errors.Wrap(err, "can't parse utxos response")
	}

	utxos := make([]chain.UTXO, 0, len(raw))
	for _, u := range raw {
		txHash, err := cardano.NewTxHashFromHex(u.TxHash)
		if err != nil {
			return nil, errors.Wrapf(err, "bridge returned unusable utxo tx hash %q", u.TxHash)
		}
		utxos = append(utxos, chain.UTXO{
			Input:    cardano.TxInput{TxHash: txHash, Index: u.Index},
			Lovelace: u.Lovelace,
		})
	}
	return utxos, nil
}

type signRequest struct {
	TxCbor string `json:"txCbor"`
}

type signWitness struct {
	VKey      string `json:"vkey"`
	Signature string `json:"signature"`
}

type signResult struct {
	Witnesses []signWitness `json:"witnesses"`
}

func (c *Connector) SignTx(ctx context.Context, tx *cardano.Tx) ([]cardano.VKeyWitness, error) {
	rawTx, err := tx.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "can't serialize tx for signing")
	}
	body, err := json.Marshal(signRequest{TxCbor: hex.EncodeToString(rawTx)})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.client.Post(ctx, "/sign", httpclient.RequestOptions{Body: body})
	if err != nil {
		return nil, errors.Wrapf(errs.WalletUnavailable, "bridge unreachable: %v", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, errors.WithStack(err)
	}

	var result signResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return nil, errors.Wrap(err, "can't parse sign response")
	}
	witnesses := make([]cardano.VKeyWitness, 0, len(result.Witnesses))
	for _, w := range result.Witnesses {
		vkey, err := hex.DecodeString(w.VKey)
		if err != nil {
			return nil, errors.Wrap(err, "bridge returned unusable vkey")
		}
		signature, err := hex.DecodeString(w.Signature)
		if err != nil {
			return nil, errors.Wrap(err, "bridge returned unusable signature")
		}
		witnesses = append(witnesses, cardano.VKeyWitness{VKey: vkey, Signature: signature})
	}
	return witnesses, nil
}

func (c *Connector) Disconnect(ctx context.Context) error {
	resp, err := c.client.Post(ctx, "/disconnect", httpclient.RequestOptions{})
	if err != nil {
		// already unreachable counts as disconnected
		return nil
	}
	if resp.StatusCode() >= fiber.StatusInternalServerError {
		return errors.Errorf("bridge disconnect failed with status %d", resp.StatusCode())
	}
	return nil
}

func (c *Connector) checkStatus(resp *httpclient.HttpResponse) error {
	switch {
	case resp.StatusCode() == fiber.StatusForbidden:
		return errors.Wrapf(errs.UserRejected, "wallet %q declined the request", c.kind)
	case resp.StatusCode() == fiber.StatusNotFound:
		return errors.Wrapf(errs.WalletUnavailable, "wallet %q extension is not installed", c.kind)
	case resp.StatusCode() >= fiber.StatusBadRequest:
		return errors.Errorf("bridge request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
