package cardano

import (
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/questline/mint-console/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTxBody(t *testing.T) TxBody {
	t.Helper()

	addr, err := EncodeAddress(testKeyHash(t, 0x01), common.NetworkPreprod)
	require.NoError(t, err)
	txHash, err := NewTxHashFromHex(strings.Repeat("ef", TxHashSize))
	require.NoError(t, err)

	return TxBody{
		Inputs:  []TxInput{{TxHash: txHash, Index: 3}},
		Outputs: []TxOutput{{Address: addr, Lovelace: 2_000_000}},
		Fee:     180_000,
	}
}

func TestNewTxHashFromHex(t *testing.T) {
	t.Parallel()

	_, err := NewTxHashFromHex("zz")
	assert.ErrorContains(t, err, "32 hex-encoded bytes")

	_, err = NewTxHashFromHex("abcd")
	assert.ErrorContains(t, err, "32 hex-encoded bytes")

	hexHash := strings.Repeat("12", TxHashSize)
	h, err := NewTxHashFromHex(hexHash)
	require.NoError(t, err)
	assert.Equal(t, hexHash, h.String())
}

func TestMultiAssetAdd(t *testing.T) {
	t.Parallel()

	policyId, err := NewPolicyIDFromHex(strings.Repeat("ab", KeyHashSize))
	require.NoError(t, err)

	assets := make(MultiAsset)
	assets.Add(policyId, "QuestBadge1", 1)
	assets.Add(policyId, "QuestBadge1", 2)
	assets.Add(policyId, "QuestBadge2", 1)

	assert.Equal(t, uint64(3), assets[policyId]["QuestBadge1"])
	assert.Equal(t, uint64(1), assets[policyId]["QuestBadge2"])
}

func TestTxBodyOptionalFields(t *testing.T) {
	t.Parallel()

	decodeBody := func(t *testing.T, body TxBody) map[uint64]cbor.RawMessage {
		t.Helper()
		raw, err := body.Bytes()
		require.NoError(t, err)
		var decoded map[uint64]cbor.RawMessage
		require.NoError(t, cbor.Unmarshal(raw, &decoded))
		return decoded
	}

	bare := decodeBody(t, testTxBody(t))
	assert.Contains(t, bare, uint64(bodyKeyInputs))
	assert.Contains(t, bare, uint64(bodyKeyOutputs))
	assert.Contains(t, bare, uint64(bodyKeyFee))
	assert.NotContains(t, bare, uint64(bodyKeyTTL))
	assert.NotContains(t, bare, uint64(bodyKeyMint))
	assert.NotContains(t, bare, uint64(bodyKeyAuxDataHash))

	full := testTxBody(t)
	full.InvalidAfterSlot = 5_000
	full.AuxDataHash = make([]byte, 32)
	full.Mint = make(MultiAsset)
	policyId, err := NewPolicyIDFromHex(strings.Repeat("cd", KeyHashSize))
	require.NoError(t, err)
	full.Mint.Add(policyId, "QuestBadge1", 1)

	decoded := decodeBody(t, full)
	assert.Contains(t, decoded, uint64(bodyKeyTTL))
	assert.Contains(t, decoded, uint64(bodyKeyMint))
	assert.Contains(t, decoded, uint64(bodyKeyAuxDataHash))
}

func TestTxBodyHash(t *testing.T) {
	t.Parallel()

	body := testTxBody(t)
	hash, err := body.Hash()
	require.NoError(t, err)
	assert.Len(t, hash.String(), TxHashSize*2)

	again, err := body.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	// any body change yields a different transaction id
	body.Fee++
	changed, err := body.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hash, changed)
}

func TestMetadataHash(t *testing.T) {
	t.Parallel()

	metadata := Metadata{
		MetadataLabelNFT: map[string]any{
			"name":  "QuestBadge1",
			"image": "ipfs://bafytest",
		},
	}

	hash, err := metadata.Hash()
	require.NoError(t, err)
	assert.Len(t, hash, 32)

	again, err := metadata.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	other, err := Metadata{MetadataLabelNFT: map[string]any{"name": "QuestBadge2"}}.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestTxBytes(t *testing.T) {
	t.Parallel()

	tx := Tx{
		Body: testTxBody(t),
		VKeyWitnesses: []VKeyWitness{{
			VKey:      make([]byte, 32),
			Signature: make([]byte, 64),
		}},
		NativeScripts: []PolicyScript{SignaturePolicy{KeyHash: testKeyHash(t, 0x09)}},
		Metadata:      Metadata{MetadataLabelNFT: map[string]any{"name": "QuestBadge1"}},
	}

	raw, err := tx.Bytes()
	require.NoError(t, err)

	var decoded []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 4)

	var witnesses map[uint64]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(decoded[1], &witnesses))
	assert.Contains(t, witnesses, uint64(witnessKeyVKeys))
	assert.Contains(t, witnesses, uint64(witnessKeyNativeScripts))

	// auxiliary data slot holds the metadata, not cbor null
	var aux map[uint64]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(decoded[3], &aux))
	assert.Contains(t, aux, uint64(MetadataLabelNFT))

	// a tx without witnesses or metadata still encodes as a 4-tuple
	bare := Tx{Body: testTxBody(t)}
	rawBare, err := bare.Bytes()
	require.NoError(t, err)
	var decodedBare []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(rawBare, &decodedBare))
	assert.Len(t, decodedBare, 4)
}
