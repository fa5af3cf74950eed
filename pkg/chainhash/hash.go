// Package chainhash provides the 256-bit digest type used as an object
// identifier throughout the wire codec, together with the hash primitives
// that produce it.
//
// A Hash is stored in raw digest-function output order. The human-facing
// form (String, NewHashFromStr) is byte-reversed, matching how block and
// transaction identifiers are displayed by every Bitcoin-family node.
//
// References:
//   - Bitcoin Core: src/uint256.h (GetHex reverses the raw bytes)
//   - BIP 141: double-SHA256 transaction and witness identifiers
package chainhash

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the size in bytes of a Hash.
const HashSize = 32

// MaxHashStringSize is the length of a hex-encoded Hash.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize is returned when a hash string is longer than MaxHashStringSize.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is a 32-byte digest in raw output order.
type Hash [HashSize]byte

// String returns the display form of the hash: the raw bytes reversed and
// hex encoded.
func (h Hash) String() string {
	var rev [HashSize]byte
	for i := 0; i < HashSize; i++ {
		rev[i] = h[HashSize-1-i]
	}
	return hex.EncodeToString(rev[:])
}

// CloneBytes returns a copy of the raw bytes.
func (h *Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// SetBytes sets the raw bytes of the hash. The slice must be exactly
// HashSize bytes long.
func (h *Hash) SetBytes(b []byte) error {
	if len(b) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(b), HashSize)
	}
	copy(h[:], b)
	return nil
}

// IsEqual reports whether two hashes have the same raw bytes. A nil
// pointer is only equal to another nil pointer.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// Less orders hashes by their raw bytes.
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// NewHash builds a Hash from raw bytes.
func NewHash(b []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(b); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr parses a display-order hex string. Short strings are
// treated as having leading zeros, the same way node RPC interfaces accept
// them.
func NewHashFromStr(s string) (*Hash, error) {
	h := new(Hash)
	if err := Decode(h, s); err != nil {
		return nil, err
	}
	return h, nil
}

// Decode parses a display-order hex string into dst.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversed Hash
	_, err := hex.Decode(reversed[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	for i, b := range reversed[:HashSize/2] {
		reversed[i], reversed[HashSize-1-i] = reversed[HashSize-1-i], b
	}
	*dst = reversed
	return nil
}
