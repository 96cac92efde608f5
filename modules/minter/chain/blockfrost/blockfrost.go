package blockfrost

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/questline/mint-console/pkg/httpclient"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
)

// default API hosts per network
var baseUrls = map[common.Network]string{
	common.NetworkMainnet: "https://cardano-mainnet.blockfrost.io/api/v0",
	common.NetworkPreprod: "https://cardano-preprod.blockfrost.io/api/v0",
	common.NetworkPreview: "https://cardano-preview.blockfrost.io/api/v0",
}

const defaultPollInterval = 5 * time.Second

type Config struct {
	ProjectId    string        `mapstructure:"project_id"`
	BaseUrl      string        `mapstructure:"base_url"` // overrides the per-network default
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Debug        bool          `mapstructure:"debug"`
}

// Client implements chain.Client against the Blockfrost API.
type Client struct {
	client       *httpclient.Client
	pollInterval time.Duration
}

var _ chain.Client = (*Client)(nil)

func New(conf Config, network common.Network) (*Client, error) {
	baseUrl := conf.BaseUrl
	if baseUrl == "" {
		var ok bool
		baseUrl, ok = baseUrls[network]
		if !ok {
			return nil, errors.Wrapf(errs.Unsupported, "no blockfrost host for network %q", network)
		}
	}
	if conf.ProjectId == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "blockfrost project id is required")
	}

	client, err := httpclient.New(baseUrl, httpclient.Config{
		Debug:   conf.Debug,
		Headers: map[string]string{"project_id": conf.ProjectId},
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create blockfrost client")
	}

	pollInterval := conf.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Client{client: client, pollInterval: pollInterval}, nil
}

type latestBlockResult struct {
	Slot   uint64 `json:"slot"`
	Height uint64 `json:"height"`
}

func (c *Client) TipSlot(ctx context.Context) (uint64, error) {
	resp, err := c.client.Get(ctx, "/blocks/latest", httpclient.RequestOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "can't fetch latest block")
	}
	if resp.StatusCode() != fiber.StatusOK {
		return 0, errors.Errorf("latest block request failed with status %d", resp.StatusCode())
	}
	var result latestBlockResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return 0, errors.Wrap(err, "can't parse latest block")
	}
	return result.Slot, nil
}

type utxoAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type addressUTXO struct {
	TxHash      string       `json:"tx_hash"`
	OutputIndex uint64       `json:"output_index"`
	Amount      []utxoAmount `json:"amount"`
}

func (c *Client) UTXOs(ctx context.Context, address cardano.Address) ([]chain.UTXO, error) {
	resp, err := c.client.Get(ctx, "/addresses/"+address.String()+"/utxos", httpclient.RequestOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "can't fetch address utxos")
	}
	// blockfrost reports a never-used address as not found
	if resp.StatusCode() == fiber.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != fiber.StatusOK {
		return nil, errors.Errorf("utxo request failed with status %d", resp.StatusCode())
	}

	var raw []addressUTXO
	if err := resp.UnmarshalBody(&raw); err != nil {
		return nil, errors.Wrap(err, "can't parse utxos")
	}

	utxos := make([]chain.UTXO, 0, len(raw))
	for _, u := range raw {
		txHash, err := cardano.NewTxHashFromHex(u.TxHash)
		if err != nil {
			return nil, errors.Wrapf(err, "unusable utxo tx hash %q", u.TxHash)
		}
		var lovelace uint64
		var hasAssets bool
		for _, amount := range u.Amount {
			if amount.Unit == "lovelace" {
				lovelace, err = strconv.ParseUint(amount.Quantity, 10, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "unusable utxo quantity %q", amount.Quantity)
				}
			} else {
				hasAssets = true
			}
		}
		// outputs already carrying assets are left alone so minted tokens
		// are never accidentally spent as change
		if hasAssets {
			continue
		}
		utxos = append(utxos, chain.UTXO{
			Input:    cardano.TxInput{TxHash: txHash, Index: u.OutputIndex},
			Lovelace: lovelace,
		})
	}
	return utxos, nil
}

func (c *Client) SubmitTx(ctx context.Context, rawTx []byte) (cardano.TxHash, error) {
	resp, err := c.client.Post(ctx, "/tx/submit", httpclient.RequestOptions{
		Body:   rawTx,
		Header: map[string]string{fiber.HeaderContentType: "application/cbor"},
	})
	if err != nil {
		return cardano.TxHash{}, errors.Wrap(err, "can't submit tx")
	}
	if resp.StatusCode() != fiber.StatusOK {
		message := string(resp.Body())
		if isInsufficientFunds(message) {
			return cardano.TxHash{}, errors.Wrapf(errs.InsufficientFunds, "node rejected tx: %s", message)
		}
		return cardano.TxHash{}, errors.Errorf("tx submission failed with status %d: %s", resp.StatusCode(), message)
	}

	var hashHex string
	if err := resp.UnmarshalBody(&hashHex); err != nil {
		return cardano.TxHash{}, errors.Wrap(err, "can't parse submitted tx hash")
	}
	txHash, err := cardano.NewTxHashFromHex(hashHex)
	if err != nil {
		return cardano.TxHash{}, errors.Wrapf(err, "unusable submitted tx hash %q", hashHex)
	}
	return txHash, nil
}

// node ledger errors that mean the wallet could not cover the transaction
var insufficientFundsMarkers = []string{
	"ValueNotConservedUTxO",
	"BadInputsUTxO",
	"NotEnoughMoney",
}

func isInsufficientFunds(message string) bool {
	for _, marker := range insufficientFundsMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

func (c *Client) AwaitConfirmation(ctx context.Context, txHash cardano.TxHash, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		confirmed, err := c.isConfirmed(ctx, txHash)
		if err != nil {
			logger.WarnContext(ctx, "Confirmation poll failed, retrying",
				slogx.Error(err),
				slogx.Stringer("tx_hash", txHash),
			)
		}
		if confirmed {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.Wrapf(errs.Timeout, "tx %s not confirmed within %s", txHash, timeout)
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context done while awaiting confirmation")
		case <-ticker.C:
		}
	}
}

func (c *Client) isConfirmed(ctx context.Context, txHash cardano.TxHash) (bool, error) {
	resp, err := c.client.Get(ctx, "/txs/"+txHash.String(), httpclient.RequestOptions{})
	if err != nil {
		return false, errors.Wrap(err, "can't fetch tx")
	}
	switch resp.StatusCode() {
	case fiber.StatusOK:
		return true, nil
	case fiber.StatusNotFound:
		return false, nil
	default:
		return false, errors.Errorf("tx lookup failed with status %d", resp.StatusCode())
	}
}
