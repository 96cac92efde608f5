package cardano

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/questline/mint-console/common/errs"
	"golang.org/x/crypto/blake2b"
)

// deterministic CBOR encoding, required for script hashing and tx bodies
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func marshalCanonical(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal canonical cbor")
	}
	return b, nil
}

// PolicyID is the blake2b-224 hash of a minting policy script. Combined with
// an asset name it uniquely identifies one token.
type PolicyID [KeyHashSize]byte

func NewPolicyIDFromHex(s string) (PolicyID, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != KeyHashSize {
		return PolicyID{}, errors.Wrap(errs.InvalidArgument, "policy id must be 28 hex-encoded bytes")
	}
	var id PolicyID
	copy(id[:], b)
	return id, nil
}

func (id PolicyID) Bytes() []byte {
	return id[:]
}

func (id PolicyID) String() string {
	return hex.EncodeToString(id[:])
}

// native script tags
const (
	scriptTagPubKey           = 0
	scriptTagAll              = 1
	scriptTagInvalidHereafter = 5
)

// PolicyScript is the tagged union of supported minting policy scripts:
// a bare signature requirement, or a signature combined with a time lock
// after which minting under the policy is no longer possible.
type PolicyScript interface {
	// SignatureKeyHash returns the payment credential that must sign every
	// mint under this policy.
	SignatureKeyHash() KeyHash

	// ExpirySlot returns the slot after which the policy locks, if any.
	ExpirySlot() (uint64, bool)

	// cborScript returns the native script representation for hashing and
	// for inclusion in the transaction witness set.
	cborScript() any
}

// SignaturePolicy requires a single key signature: {type: sig, keyHash}.
type SignaturePolicy struct {
	KeyHash KeyHash
}

func (p SignaturePolicy) SignatureKeyHash() KeyHash { return p.KeyHash }
func (p SignaturePolicy) ExpirySlot() (uint64, bool) {
	return 0, false
}

func (p SignaturePolicy) cborScript() any {
	return []any{uint64(scriptTagPubKey), p.KeyHash.Bytes()}
}

func (p SignaturePolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":    "sig",
		"keyHash": p.KeyHash.String(),
	})
}

// TimeLockedPolicy is an all-of composite of exactly one signature
// requirement and an invalid-hereafter time lock.
type TimeLockedPolicy struct {
	KeyHash          KeyHash
	InvalidAfterSlot uint64
}

func (p TimeLockedPolicy) SignatureKeyHash() KeyHash { return p.KeyHash }
func (p TimeLockedPolicy) ExpirySlot() (uint64, bool) {
	return p.InvalidAfterSlot, true
}

func (p TimeLockedPolicy) cborScript() any {
	return []any{
		uint64(scriptTagAll),
		[]any{
			[]any{uint64(scriptTagPubKey), p.KeyHash.Bytes()},
			[]any{uint64(scriptTagInvalidHereafter), p.InvalidAfterSlot},
		},
	}
}

func (p TimeLockedPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": "all",
		"scripts": []any{
			map[string]any{"type": "sig", "keyHash": p.KeyHash.String()},
			map[string]any{"type": "before", "slot": p.InvalidAfterSlot},
		},
	})
}

// ParsePolicyScript parses the registry's JSON representation of a policy
// script into its typed form.
func ParsePolicyScript(raw []byte) (PolicyScript, error) {
	var head struct {
		Type    string            `json:"type"`
		KeyHash string            `json:"keyHash"`
		Scripts []json.RawMessage `json:"scripts"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, "policy script is not valid json")
	}

	switch head.Type {
	case "sig":
		kh, err := NewKeyHashFromHex(head.KeyHash)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return SignaturePolicy{KeyHash: kh}, nil
	case "all":
		var (
			sig      *SignaturePolicy
			slot     uint64
			haveSlot bool
		)
		for _, sub := range head.Scripts {
			var subHead struct {
				Type    string `json:"type"`
				KeyHash string `json:"keyHash"`
				Slot    uint64 `json:"slot"`
			}
			if err := json.Unmarshal(sub, &subHead); err != nil {
				return nil, errors.Wrap(errs.InvalidArgument, "policy sub-script is not valid json")
			}
			switch subHead.Type {
			case "sig":
				if sig != nil {
					return nil, errors.Wrap(errs.InvalidArgument, "composite policy must contain exactly one signature script")
				}
				kh, err := NewKeyHashFromHex(subHead.KeyHash)
				if err != nil {
					return nil, errors.WithStack(err)
				}
				sig = &SignaturePolicy{KeyHash: kh}
			case "before":
				slot, haveSlot = subHead.Slot, true
			default:
				return nil, errors.Wrapf(errs.Unsupported, "unsupported policy sub-script type %q", subHead.Type)
			}
		}
		if sig == nil {
			return nil, errors.Wrap(errs.InvalidArgument, "composite policy must contain a signature script")
		}
		if !haveSlot {
			return nil, errors.Wrap(errs.InvalidArgument, "composite policy must contain a time lock")
		}
		return TimeLockedPolicy{KeyHash: sig.KeyHash, InvalidAfterSlot: slot}, nil
	default:
		return nil, errors.Wrapf(errs.Unsupported, "unsupported policy script type %q", head.Type)
	}
}

// PolicyIDFor derives the policy id of a script: blake2b-224 over the native
// script tag byte followed by the canonical CBOR of the script.
func PolicyIDFor(script PolicyScript) (PolicyID, error) {
	body, err := marshalCanonical(script.cborScript())
	if err != nil {
		return PolicyID{}, errors.WithStack(err)
	}
	h, err := blake2b.New(KeyHashSize, nil)
	if err != nil {
		return PolicyID{}, errors.WithStack(err)
	}
	h.Write([]byte{0x00}) // native script namespace tag
	h.Write(body)
	var id PolicyID
	copy(id[:], h.Sum(nil))
	return id, nil
}

// MaxAssetNameLength is the chain-level limit on asset name length in bytes.
const MaxAssetNameLength = 32

// AssetName builds the policy-scoped on-chain name for one minted token by
// appending the mint sequence number to the design's prefix.
func AssetName(prefix string, mintNumber uint64) (string, error) {
	name := fmt.Sprintf("%s%d", prefix, mintNumber)
	if len(name) > MaxAssetNameLength {
		return "", errors.Wrapf(errs.InvalidArgument, "asset name %q exceeds %d bytes", name, MaxAssetNameLength)
	}
	return name, nil
}

// AssetID is the fully qualified identifier of one token: policy id and asset
// name joined by a dot.
func AssetID(policyId PolicyID, assetName string) string {
	return policyId.String() + "." + assetName
}
