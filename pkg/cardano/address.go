package cardano

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	"github.com/questline/mint-console/common/errs"
	"golang.org/x/crypto/blake2b"
)

// KeyHashSize is the size of a payment credential hash (blake2b-224).
const KeyHashSize = 28

// KeyHash is the blake2b-224 hash of a payment verification key. It is the
// signing credential required by a signature policy script.
type KeyHash [KeyHashSize]byte

func NewKeyHash(b []byte) (KeyHash, error) {
	if len(b) != KeyHashSize {
		return KeyHash{}, errors.Wrapf(errs.InvalidArgument, "key hash must be %d bytes, got %d", KeyHashSize, len(b))
	}
	var kh KeyHash
	copy(kh[:], b)
	return kh, nil
}

func NewKeyHashFromHex(s string) (KeyHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return KeyHash{}, errors.Wrap(errs.InvalidArgument, "key hash is not valid hex")
	}
	return NewKeyHash(b)
}

// KeyHashFromPubKey derives the payment credential hash of an ed25519
// verification key.
func KeyHashFromPubKey(pub ed25519.PublicKey) KeyHash {
	h, _ := blake2b.New(KeyHashSize, nil)
	h.Write(pub)
	var kh KeyHash
	copy(kh[:], h.Sum(nil))
	return kh
}

func (kh KeyHash) Bytes() []byte {
	return kh[:]
}

func (kh KeyHash) String() string {
	return hex.EncodeToString(kh[:])
}

// address header types 0x0-0x7 are Shelley payment addresses. Even types carry
// a key-hash payment credential, odd types a script credential.
const (
	addrTypeMask    = 0xf0
	addrNetworkMask = 0x0f
	addrTypeMax     = 0x7
)

// Address is a decoded Shelley bech32 payment address.
type Address struct {
	bech32  string
	raw     []byte
	header  byte
	payment KeyHash
}

// DecodeAddress parses a bech32 Shelley payment address and verifies it
// belongs to the given network. Byron (base58) addresses and stake addresses
// are rejected.
func DecodeAddress(addr string, network common.Network) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Address{}, errors.Wrapf(errs.InvalidArgument, "address is not valid bech32: %s", err)
	}
	if hrp != network.AddressPrefix() {
		return Address{}, errors.Wrapf(errs.InvalidArgument, "address prefix %q does not match network %q", hrp, network)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, errors.Wrap(errs.InvalidArgument, "address payload is malformed")
	}
	if len(raw) < 1+KeyHashSize {
		return Address{}, errors.Wrapf(errs.InvalidArgument, "address payload too short: %d bytes", len(raw))
	}

	header := raw[0]
	addrType := header >> 4
	if addrType > addrTypeMax {
		return Address{}, errors.Wrapf(errs.InvalidArgument, "unsupported address type 0x%x", addrType)
	}
	networkId := header & addrNetworkMask
	if network.IsTestnet() && networkId != 0 {
		return Address{}, errors.Wrapf(errs.InvalidArgument, "mainnet address used on %s", network)
	}
	if !network.IsTestnet() && networkId != 1 {
		return Address{}, errors.Wrap(errs.InvalidArgument, "testnet address used on mainnet")
	}

	var payment KeyHash
	copy(payment[:], raw[1:1+KeyHashSize])
	return Address{
		bech32:  addr,
		raw:     raw,
		header:  header,
		payment: payment,
	}, nil
}

// HasKeyHashCredential reports whether the payment part of the address is a
// verification key hash (as opposed to a script hash).
func (a Address) HasKeyHashCredential() bool {
	return (a.header>>4)&0x1 == 0
}

// PaymentKeyHash returns the payment credential hash embedded in the address.
// Only meaningful when HasKeyHashCredential is true.
func (a Address) PaymentKeyHash() KeyHash {
	return a.payment
}

// Bytes returns the raw address payload carried in transaction outputs.
func (a Address) Bytes() []byte {
	return a.raw
}

func (a Address) String() string {
	return a.bech32
}

// EncodeAddress builds a bech32 enterprise address (payment key hash only,
// no staking part) for the given network. Used by the embedded wallet.
func EncodeAddress(payment KeyHash, network common.Network) (Address, error) {
	header := byte(0x60) // enterprise, key-hash credential
	if !network.IsTestnet() {
		header |= 0x01
	}
	raw := append([]byte{header}, payment[:]...)
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return Address{}, errors.Wrap(err, "can't convert address payload to base32")
	}
	encoded, err := bech32.Encode(network.AddressPrefix(), data)
	if err != nil {
		return Address{}, errors.Wrap(err, "can't encode address")
	}
	return Address{
		bech32:  encoded,
		raw:     raw,
		header:  header,
		payment: payment,
	}, nil
}
