package cardano

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyIDFromHex(t *testing.T) {
	t.Parallel()

	_, err := NewPolicyIDFromHex("zz")
	assert.ErrorContains(t, err, "28 hex-encoded bytes")

	_, err = NewPolicyIDFromHex("abcd")
	assert.ErrorContains(t, err, "28 hex-encoded bytes")

	hexId := strings.Repeat("ab", KeyHashSize)
	id, err := NewPolicyIDFromHex(hexId)
	require.NoError(t, err)
	assert.Equal(t, hexId, id.String())
	assert.Len(t, id.Bytes(), KeyHashSize)
}

func TestParsePolicyScriptSignature(t *testing.T) {
	t.Parallel()

	kh := testKeyHash(t, 0x11)
	raw := fmt.Sprintf(`{"type":"sig","keyHash":%q}`, kh.String())

	script, err := ParsePolicyScript([]byte(raw))
	require.NoError(t, err)

	sig, ok := script.(SignaturePolicy)
	require.True(t, ok)
	assert.Equal(t, kh, sig.SignatureKeyHash())
	_, locked := sig.ExpirySlot()
	assert.False(t, locked)
}

func TestParsePolicyScriptTimeLocked(t *testing.T) {
	t.Parallel()

	kh := testKeyHash(t, 0x22)
	raw := fmt.Sprintf(`{
		"type": "all",
		"scripts": [
			{"type": "sig", "keyHash": %q},
			{"type": "before", "slot": 123456}
		]
	}`, kh.String())

	script, err := ParsePolicyScript([]byte(raw))
	require.NoError(t, err)

	locked, ok := script.(TimeLockedPolicy)
	require.True(t, ok)
	assert.Equal(t, kh, locked.SignatureKeyHash())
	slot, hasSlot := locked.ExpirySlot()
	assert.True(t, hasSlot)
	assert.Equal(t, uint64(123456), slot)
}

func TestParsePolicyScriptInvalid(t *testing.T) {
	t.Parallel()

	kh := testKeyHash(t, 0x33).String()
	testcases := []struct {
		name     string
		raw      string
		wantKind error
	}{
		{
			name:     "not json",
			raw:      "{",
			wantKind: errs.InvalidArgument,
		},
		{
			name:     "unknown type",
			raw:      `{"type":"any","scripts":[]}`,
			wantKind: errs.Unsupported,
		},
		{
			name:     "bad key hash",
			raw:      `{"type":"sig","keyHash":"zz"}`,
			wantKind: errs.InvalidArgument,
		},
		{
			name:     "composite without signature",
			raw:      `{"type":"all","scripts":[{"type":"before","slot":1}]}`,
			wantKind: errs.InvalidArgument,
		},
		{
			name:     "composite without time lock",
			raw:      fmt.Sprintf(`{"type":"all","scripts":[{"type":"sig","keyHash":%q}]}`, kh),
			wantKind: errs.InvalidArgument,
		},
		{
			name:     "composite with two signatures",
			raw:      fmt.Sprintf(`{"type":"all","scripts":[{"type":"sig","keyHash":%q},{"type":"sig","keyHash":%q}]}`, kh, kh),
			wantKind: errs.InvalidArgument,
		},
		{
			name:     "unsupported sub-script",
			raw:      fmt.Sprintf(`{"type":"all","scripts":[{"type":"sig","keyHash":%q},{"type":"after","slot":1}]}`, kh),
			wantKind: errs.Unsupported,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParsePolicyScript([]byte(tc.raw))
			assert.True(t, errors.Is(err, tc.wantKind), "unexpected error: %v", err)
		})
	}
}

func TestPolicyScriptJSONRoundTrip(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		script PolicyScript
	}{
		{name: "signature", script: SignaturePolicy{KeyHash: testKeyHash(t, 0x44)}},
		{name: "time locked", script: TimeLockedPolicy{KeyHash: testKeyHash(t, 0x55), InvalidAfterSlot: 99}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			raw, err := json.Marshal(tc.script)
			require.NoError(t, err)

			parsed, err := ParsePolicyScript(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.script, parsed)
		})
	}
}

func TestPolicyIDFor(t *testing.T) {
	t.Parallel()

	sig := SignaturePolicy{KeyHash: testKeyHash(t, 0x66)}
	id, err := PolicyIDFor(sig)
	require.NoError(t, err)
	assert.Len(t, id.Bytes(), KeyHashSize)

	// hashing is deterministic
	again, err := PolicyIDFor(sig)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// the time lock changes the script hash even for the same key
	locked := TimeLockedPolicy{KeyHash: sig.KeyHash, InvalidAfterSlot: 1}
	lockedId, err := PolicyIDFor(locked)
	require.NoError(t, err)
	assert.NotEqual(t, id, lockedId)

	otherSig := SignaturePolicy{KeyHash: testKeyHash(t, 0x67)}
	otherId, err := PolicyIDFor(otherSig)
	require.NoError(t, err)
	assert.NotEqual(t, id, otherId)
}

func TestAssetName(t *testing.T) {
	t.Parallel()

	name, err := AssetName("QuestBadge", 42)
	require.NoError(t, err)
	assert.Equal(t, "QuestBadge42", name)

	_, err = AssetName(strings.Repeat("x", MaxAssetNameLength), 1)
	assert.ErrorContains(t, err, "exceeds 32 bytes")
}

func TestAssetID(t *testing.T) {
	t.Parallel()

	id, err := NewPolicyIDFromHex(strings.Repeat("cd", KeyHashSize))
	require.NoError(t, err)
	assert.Equal(t, id.String()+".QuestBadge7", AssetID(id, "QuestBadge7"))
}
