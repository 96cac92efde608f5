package minter

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
)

// BatchTx is one built minting transaction plus the bookkeeping needed to
// write ledger records after confirmation. Mint numbers are assigned at build
// time and must be carried through to the ledger as-is, never recomputed.
type BatchTx struct {
	Tx          *cardano.Tx
	Recipients  []entity.Recipient
	MintNumbers []uint64
	AssetNames  []string
	AssetIds    []string
}

// BuildBatchParams are the inputs for building one batch transaction.
type BuildBatchParams struct {
	Design          *entity.Design
	Policy          *entity.Policy
	Recipients      []entity.Recipient
	StartMintNumber uint64
	Network         common.Network

	// UTXOs are the wallet's current spendable outputs; ChangeAddress
	// receives whatever is left after outputs and fee.
	UTXOs         []chain.UTXO
	ChangeAddress cardano.Address

	// TTLSlot bounds the transaction's validity. Must not exceed the
	// policy's expiry slot for a time-locked policy.
	TTLSlot uint64
}

// BuildBatchTx constructs one transaction minting one fresh asset per
// recipient. Asset names embed a strictly increasing sequence number starting
// at StartMintNumber, contiguous across the batch.
func BuildBatchTx(params BuildBatchParams) (*BatchTx, error) {
	if len(params.Recipients) == 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "batch has no recipients")
	}
	if expiry, ok := params.Policy.Script.ExpirySlot(); ok && params.TTLSlot > expiry {
		return nil, errors.Wrapf(errs.InvalidArgument, "ttl slot %d is past policy expiry slot %d", params.TTLSlot, expiry)
	}

	policyId := params.Design.PolicyId
	mint := make(cardano.MultiAsset)
	outputs := make([]cardano.TxOutput, 0, len(params.Recipients)+1)
	tokens := make(map[string]map[string]any, len(params.Recipients))

	result := &BatchTx{
		Recipients:  params.Recipients,
		MintNumbers: make([]uint64, 0, len(params.Recipients)),
		AssetNames:  make([]string, 0, len(params.Recipients)),
		AssetIds:    make([]string, 0, len(params.Recipients)),
	}

	for i, recipient := range params.Recipients {
		mintNumber := params.StartMintNumber + uint64(i)

		assetName, err := cardano.AssetName(params.Design.AssetNamePrefix, mintNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "can't derive asset name for mint number %d", mintNumber)
		}

		address, err := cardano.DecodeAddress(recipient.Address, params.Network)
		if err != nil {
			return nil, errors.Wrapf(err, "recipient address %q failed to decode at build time", recipient.Address)
		}

		meta, err := BuildTokenMetadata(params.Design, params.Policy, mintNumber, tokenPlaceholders(recipient, assetName))
		if err != nil {
			return nil, errors.Wrapf(err, "can't build metadata for asset %q", assetName)
		}
		tokens[assetName] = meta

		assets := make(cardano.MultiAsset)
		assets.Add(policyId, assetName, 1)
		mint.Add(policyId, assetName, 1)
		outputs = append(outputs, cardano.TxOutput{
			Address:  address,
			Lovelace: minUtxoReserveLovelace,
			Assets:   assets,
		})

		result.MintNumbers = append(result.MintNumbers, mintNumber)
		result.AssetNames = append(result.AssetNames, assetName)
		result.AssetIds = append(result.AssetIds, cardano.AssetID(policyId, assetName))
	}

	metadata := BuildBatchMetadata(policyId, tokens)
	auxHash, err := metadata.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "can't hash metadata")
	}

	required := perBatchFeeLovelace + uint64(len(params.Recipients))*minUtxoReserveLovelace
	inputs, change, err := selectInputs(params.UTXOs, required)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if change > 0 {
		outputs = append(outputs, cardano.TxOutput{
			Address:  params.ChangeAddress,
			Lovelace: change,
		})
	}

	result.Tx = &cardano.Tx{
		Body: cardano.TxBody{
			Inputs:           inputs,
			Outputs:          outputs,
			Fee:              perBatchFeeLovelace,
			InvalidAfterSlot: params.TTLSlot,
			Mint:             mint,
			AuxDataHash:      auxHash,
		},
		NativeScripts: []cardano.PolicyScript{params.Policy.Script},
		Metadata:      metadata,
	}
	return result, nil
}

// tokenPlaceholders are the per-token values available to a policy's
// placeholder template fields.
func tokenPlaceholders(recipient entity.Recipient, assetName string) map[string]string {
	return map[string]string{
		"Recipient":  recipient.DisplayName,
		"Asset Name": assetName,
	}
}

// selectInputs picks wallet UTXOs largest-first until they cover the required
// amount, keeping any change at or above the minimum output reserve. Returns
// errs.InsufficientFunds if the wallet cannot cover the batch.
func selectInputs(utxos []chain.UTXO, required uint64) ([]cardano.TxInput, uint64, error) {
	sorted := make([]chain.UTXO, len(utxos))
	copy(sorted, utxos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lovelace > sorted[j].Lovelace
	})

	inputs := make([]cardano.TxInput, 0, len(sorted))
	var total uint64
	for _, utxo := range sorted {
		inputs = append(inputs, utxo.Input)
		total += utxo.Lovelace
		if total < required {
			continue
		}
		change := total - required
		if change == 0 || change >= minUtxoReserveLovelace {
			return inputs, change, nil
		}
	}
	if total < required {
		return nil, 0, errors.Wrapf(errs.InsufficientFunds, "wallet holds %d lovelace, batch requires %d", total, required)
	}
	return nil, 0, errors.Wrapf(errs.InsufficientFunds, "change %d is below the minimum output reserve", total-required)
}
