package minter

import (
	"strings"
	"testing"

	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter/chain"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/pkg/cardano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUTXO(t *testing.T, seed byte, lovelace uint64) chain.UTXO {
	t.Helper()
	var hash cardano.TxHash
	hash[0] = seed
	return chain.UTXO{
		Input:    cardano.TxInput{TxHash: hash, Index: 0},
		Lovelace: lovelace,
	}
}

func TestBuildBatchTx(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	changeAddress, err := cardano.EncodeAddress(policy.KeyHash(), common.NetworkPreprod)
	require.NoError(t, err)

	recipients := []entity.Recipient{
		{Address: testAddress(t, 1, common.NetworkPreprod), DisplayName: "alice"},
		{Address: testAddress(t, 2, common.NetworkPreprod), DisplayName: "bob"},
		{Address: testAddress(t, 3, common.NetworkPreprod), DisplayName: "carol"},
	}

	built, err := BuildBatchTx(BuildBatchParams{
		Design:          design,
		Policy:          policy,
		Recipients:      recipients,
		StartMintNumber: 5,
		Network:         common.NetworkPreprod,
		UTXOs:           []chain.UTXO{testUTXO(t, 1, 100_000_000)},
		ChangeAddress:   changeAddress,
		TTLSlot:         10_000,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{5, 6, 7}, built.MintNumbers)
	assert.Equal(t, []string{"Founder5", "Founder6", "Founder7"}, built.AssetNames)
	for _, assetId := range built.AssetIds {
		assert.True(t, strings.HasPrefix(assetId, design.PolicyId.String()+"."))
	}

	body := built.Tx.Body
	require.Len(t, body.Outputs, 4) // 3 recipients + change
	for i := 0; i < 3; i++ {
		assert.Equal(t, recipients[i].Address, body.Outputs[i].Address.String())
		assert.Equal(t, uint64(minUtxoReserveLovelace), body.Outputs[i].Lovelace)
		assert.Equal(t, uint64(1), body.Outputs[i].Assets[design.PolicyId][built.AssetNames[i]])
	}

	wantChange := uint64(100_000_000) - perBatchFeeLovelace - 3*minUtxoReserveLovelace
	assert.Equal(t, wantChange, body.Outputs[3].Lovelace)
	assert.Equal(t, changeAddress.String(), body.Outputs[3].Address.String())

	assert.Equal(t, uint64(perBatchFeeLovelace), body.Fee)
	assert.Equal(t, uint64(10_000), body.InvalidAfterSlot)
	assert.Len(t, body.Mint[design.PolicyId], 3)
	assert.NotEmpty(t, body.AuxDataHash)
	require.Len(t, built.Tx.NativeScripts, 1)
	assert.Equal(t, policy.KeyHash(), built.Tx.NativeScripts[0].SignatureKeyHash())

	// signable and submittable without witnesses attached yet
	raw, err := built.Tx.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestBuildBatchTxInsufficientFunds(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	changeAddress, err := cardano.EncodeAddress(policy.KeyHash(), common.NetworkPreprod)
	require.NoError(t, err)

	_, err = BuildBatchTx(BuildBatchParams{
		Design:          design,
		Policy:          policy,
		Recipients:      []entity.Recipient{{Address: testAddress(t, 1, common.NetworkPreprod)}},
		StartMintNumber: 1,
		Network:         common.NetworkPreprod,
		UTXOs:           []chain.UTXO{testUTXO(t, 1, 1_000_000)},
		ChangeAddress:   changeAddress,
		TTLSlot:         10_000,
	})
	require.ErrorIs(t, err, errs.InsufficientFunds)
}

func TestBuildBatchTxTTLPastPolicyExpiry(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	script := cardano.TimeLockedPolicy{KeyHash: policy.KeyHash(), InvalidAfterSlot: 5_000}
	policyId, err := cardano.PolicyIDFor(script)
	require.NoError(t, err)
	policy.Script = script
	policy.PolicyId = policyId
	design.PolicyId = policyId

	changeAddress, err := cardano.EncodeAddress(policy.KeyHash(), common.NetworkPreprod)
	require.NoError(t, err)

	_, err = BuildBatchTx(BuildBatchParams{
		Design:          design,
		Policy:          policy,
		Recipients:      []entity.Recipient{{Address: testAddress(t, 1, common.NetworkPreprod)}},
		StartMintNumber: 1,
		Network:         common.NetworkPreprod,
		UTXOs:           []chain.UTXO{testUTXO(t, 1, 100_000_000)},
		ChangeAddress:   changeAddress,
		TTLSlot:         6_000,
	})
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestBuildBatchTxAssetNameTooLong(t *testing.T) {
	t.Parallel()

	design, policy := testDesign(t)
	design.AssetNamePrefix = strings.Repeat("x", cardano.MaxAssetNameLength)
	changeAddress, err := cardano.EncodeAddress(policy.KeyHash(), common.NetworkPreprod)
	require.NoError(t, err)

	_, err = BuildBatchTx(BuildBatchParams{
		Design:          design,
		Policy:          policy,
		Recipients:      []entity.Recipient{{Address: testAddress(t, 1, common.NetworkPreprod)}},
		StartMintNumber: 1,
		Network:         common.NetworkPreprod,
		UTXOs:           []chain.UTXO{testUTXO(t, 1, 100_000_000)},
		ChangeAddress:   changeAddress,
		TTLSlot:         10_000,
	})
	require.Error(t, err)
}

func TestSelectInputsPrefersLargest(t *testing.T) {
	t.Parallel()

	utxos := []chain.UTXO{
		testUTXO(t, 1, 2_000_000),
		testUTXO(t, 2, 50_000_000),
		testUTXO(t, 3, 5_000_000),
	}
	inputs, change, err := selectInputs(utxos, 10_000_000)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, byte(2), inputs[0].TxHash[0])
	assert.Equal(t, uint64(40_000_000), change)
}

func TestSelectInputsAvoidsDustChange(t *testing.T) {
	t.Parallel()

	// First pick alone leaves change below the output reserve, forcing a
	// second input in.
	utxos := []chain.UTXO{
		testUTXO(t, 1, 10_500_000),
		testUTXO(t, 2, 5_000_000),
	}
	inputs, change, err := selectInputs(utxos, 10_000_000)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, uint64(5_500_000), change)
}
