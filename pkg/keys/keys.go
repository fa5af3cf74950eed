// Package keys wraps secp256k1 key handling for signing witness inputs.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: compressed 33-byte form (0x02/0x03 prefix + x-coordinate)
//   - Signatures: DER-encoded
package keys

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/suffix-labs/btcwire/pkg/chaincfg"
)

// PrivKeyBytesLen is the length of a raw private key.
const PrivKeyBytesLen = 32

// compressMagic follows the key in WIF when the public key is compressed.
const compressMagic = 0x01

// Key errors.
var (
	ErrInvalidKeyLength = errors.New("keys: invalid key length")
	ErrMalformedWIF     = errors.New("keys: malformed WIF")
	ErrWIFNetwork       = errors.New("keys: WIF is for another network")
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// PrivateKeyFromBytes creates a private key from raw bytes.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d",
			ErrInvalidKeyLength, PrivKeyBytesLen, len(keyBytes))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(keyBytes)}, nil
}

// Sign returns the DER-encoded ECDSA signature of hash. Nonces follow
// RFC 6979, so the result is deterministic.
func (pk *PrivateKey) Sign(hash [32]byte) []byte {
	return ecdsa.Sign(pk.key, hash[:]).Serialize()
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Bytes returns the compressed public key.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Uncompressed returns the 65-byte uncompressed public key.
func (pub *PublicKey) Uncompressed() []byte {
	return pub.key.SerializeUncompressed()
}

// ParsePublicKey parses a compressed or uncompressed public key.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &PublicKey{key: pubKey}, nil
}

// WIF is a decoded Wallet Import Format private key.
type WIF struct {
	PrivKey        *PrivateKey
	CompressPubKey bool
	NetID          byte
}

// EncodeWIF encodes a private key for the network's PrivateKeyID.
//
// Format: version || key (32 bytes) || [0x01 if compressed] || checksum (4 bytes)
func EncodeWIF(pk *PrivateKey, compressed bool, params *chaincfg.Params) string {
	payload := make([]byte, 0, PrivKeyBytesLen+1)
	payload = append(payload, pk.Bytes()...)
	if compressed {
		payload = append(payload, compressMagic)
	}
	return base58.CheckEncode(payload, params.PrivateKeyID)
}

// DecodeWIF decodes a WIF string. The network is not checked; see
// WIF.IsForNet.
func DecodeWIF(wif string) (*WIF, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWIF, err)
	}

	var compressed bool
	switch len(payload) {
	case PrivKeyBytesLen + 1:
		if payload[PrivKeyBytesLen] != compressMagic {
			return nil, fmt.Errorf("%w: bad compression flag 0x%02x",
				ErrMalformedWIF, payload[PrivKeyBytesLen])
		}
		compressed = true
	case PrivKeyBytesLen:
	default:
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrMalformedWIF, len(payload))
	}

	key, err := PrivateKeyFromBytes(payload[:PrivKeyBytesLen])
	if err != nil {
		return nil, err
	}
	return &WIF{PrivKey: key, CompressPubKey: compressed, NetID: version}, nil
}

// IsForNet reports whether the WIF was encoded for params.
func (w *WIF) IsForNet(params *chaincfg.Params) bool {
	return w.NetID == params.PrivateKeyID
}

// PubKeyBytes returns the public key in the form the WIF selects.
func (w *WIF) PubKeyBytes() []byte {
	pub := w.PrivKey.PublicKey()
	if w.CompressPubKey {
		return pub.Bytes()
	}
	return pub.Uncompressed()
}

// DecodeWIFForNet decodes a WIF string and requires it to belong to params.
func DecodeWIFForNet(wif string, params *chaincfg.Params) (*WIF, error) {
	w, err := DecodeWIF(wif)
	if err != nil {
		return nil, err
	}
	if !w.IsForNet(params) {
		return nil, fmt.Errorf("%w: version 0x%02x, %s expects 0x%02x",
			ErrWIFNetwork, w.NetID, params.Name, params.PrivateKeyID)
	}
	return w, nil
}
