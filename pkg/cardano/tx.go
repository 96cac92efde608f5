package cardano

import (
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// TxHashSize is the size of a transaction id (blake2b-256).
const TxHashSize = 32

type TxHash [TxHashSize]byte

func NewTxHashFromHex(s string) (TxHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != TxHashSize {
		return TxHash{}, errors.New("tx hash must be 32 hex-encoded bytes")
	}
	var h TxHash
	copy(h[:], b)
	return h, nil
}

func (h TxHash) String() string {
	return hex.EncodeToString(h[:])
}

// TxInput references an unspent output by transaction id and output index.
type TxInput struct {
	TxHash TxHash
	Index  uint64
}

// MultiAsset maps policy id to asset name to quantity.
type MultiAsset map[PolicyID]map[string]uint64

// Add accumulates quantity for one asset.
func (m MultiAsset) Add(policyId PolicyID, assetName string, quantity uint64) {
	assets, ok := m[policyId]
	if !ok {
		assets = make(map[string]uint64)
		m[policyId] = assets
	}
	assets[assetName] += quantity
}

func (m MultiAsset) cborValue() map[cbor.ByteString]map[cbor.ByteString]uint64 {
	out := make(map[cbor.ByteString]map[cbor.ByteString]uint64, len(m))
	for policyId, assets := range m {
		inner := make(map[cbor.ByteString]uint64, len(assets))
		for name, quantity := range assets {
			inner[cbor.ByteString(name)] = quantity
		}
		out[cbor.ByteString(policyId.Bytes())] = inner
	}
	return out
}

// TxOutput is one transaction output: an address, a lovelace amount and any
// native assets attached to it.
type TxOutput struct {
	Address  Address
	Lovelace uint64
	Assets   MultiAsset
}

// transaction body map keys (shelley-ma era)
const (
	bodyKeyInputs      = 0
	bodyKeyOutputs     = 1
	bodyKeyFee         = 2
	bodyKeyTTL         = 3
	bodyKeyAuxDataHash = 7
	bodyKeyMint        = 9
)

// TxBody is a minting transaction body. Zero values for TTL, Mint and
// AuxDataHash omit the corresponding fields.
type TxBody struct {
	Inputs           []TxInput
	Outputs          []TxOutput
	Fee              uint64
	InvalidAfterSlot uint64
	Mint             MultiAsset
	AuxDataHash      []byte
}

func (b TxBody) cborBody() map[uint64]any {
	inputs := make([]any, 0, len(b.Inputs))
	for _, in := range b.Inputs {
		inputs = append(inputs, []any{in.TxHash[:], in.Index})
	}

	outputs := make([]any, 0, len(b.Outputs))
	for _, out := range b.Outputs {
		if len(out.Assets) == 0 {
			outputs = append(outputs, []any{out.Address.Bytes(), out.Lovelace})
			continue
		}
		outputs = append(outputs, []any{out.Address.Bytes(), []any{out.Lovelace, out.Assets.cborValue()}})
	}

	body := map[uint64]any{
		bodyKeyInputs:  inputs,
		bodyKeyOutputs: outputs,
		bodyKeyFee:     b.Fee,
	}
	if b.InvalidAfterSlot > 0 {
		body[bodyKeyTTL] = b.InvalidAfterSlot
	}
	if len(b.AuxDataHash) > 0 {
		body[bodyKeyAuxDataHash] = b.AuxDataHash
	}
	if len(b.Mint) > 0 {
		body[bodyKeyMint] = b.Mint.cborValue()
	}
	return body
}

// Bytes returns the canonical CBOR encoding of the body.
func (b TxBody) Bytes() ([]byte, error) {
	return marshalCanonical(b.cborBody())
}

// Hash returns the transaction id: blake2b-256 over the canonical body CBOR.
func (b TxBody) Hash() (TxHash, error) {
	raw, err := b.Bytes()
	if err != nil {
		return TxHash{}, errors.WithStack(err)
	}
	sum := blake2b.Sum256(raw)
	return TxHash(sum), nil
}

// Metadata is transaction metadata keyed by metadatum label. NFT metadata
// lives under label 721.
type Metadata map[uint64]any

// MetadataLabelNFT is the CIP-25 metadatum label for token metadata.
const MetadataLabelNFT = 721

// Hash returns the auxiliary data hash committed to in the tx body.
func (m Metadata) Hash() ([]byte, error) {
	raw, err := marshalCanonical(map[uint64]any(m))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sum := blake2b.Sum256(raw)
	return sum[:], nil
}

// VKeyWitness is an ed25519 signature over the tx body hash.
type VKeyWitness struct {
	VKey      []byte
	Signature []byte
}

// witness set map keys
const (
	witnessKeyVKeys         = 0
	witnessKeyNativeScripts = 1
)

// Tx is a full transaction: body, witness set and auxiliary data.
type Tx struct {
	Body          TxBody
	VKeyWitnesses []VKeyWitness
	NativeScripts []PolicyScript
	Metadata      Metadata
}

// Bytes returns the canonical CBOR of the signed transaction, ready for
// submission.
func (t Tx) Bytes() ([]byte, error) {
	witnesses := make(map[uint64]any)
	if len(t.VKeyWitnesses) > 0 {
		vkeys := make([]any, 0, len(t.VKeyWitnesses))
		for _, w := range t.VKeyWitnesses {
			vkeys = append(vkeys, []any{w.VKey, w.Signature})
		}
		witnesses[witnessKeyVKeys] = vkeys
	}
	if len(t.NativeScripts) > 0 {
		scripts := make([]any, 0, len(t.NativeScripts))
		for _, s := range t.NativeScripts {
			scripts = append(scripts, s.cborScript())
		}
		witnesses[witnessKeyNativeScripts] = scripts
	}

	var aux any
	if len(t.Metadata) > 0 {
		aux = map[uint64]any(t.Metadata)
	}

	return marshalCanonical([]any{t.Body.cborBody(), witnesses, true, aux})
}
