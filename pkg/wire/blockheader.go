package wire

import (
	"fmt"
	"time"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

// BlockHeaderLen is the fixed encoded size of a block header.
const BlockHeaderLen = 80

// BlockHeader is the fixed-size header committing to a block's contents.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32 // Unix seconds
	Bits       uint32 // Compact difficulty target
	Nonce      uint32
}

// NewBlockHeader returns a header for the given fields.
func NewBlockHeader(version int32, prevHash, merkleRoot *chainhash.Hash, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRoot,
		Timestamp:  uint32(time.Now().Unix()),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// Time returns the header timestamp.
func (h *BlockHeader) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0)
}

// BlockHash returns the double hash of the 80 header bytes.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var b [BlockHeaderLen]byte
	fb := NewFixedBuffer(b[:])
	// 80 bytes into 80 bytes of storage cannot fail.
	_ = h.Encode(fb)
	return chainhash.DoubleHashH(fb.Bytes())
}

// Encode writes the 80-byte header.
func (h *BlockHeader) Encode(s Sink) error {
	var b [BlockHeaderLen]byte
	littleEndian.PutUint32(b[0:4], uint32(h.Version))
	copy(b[4:36], h.PrevBlock[:])
	copy(b[36:68], h.MerkleRoot[:])
	littleEndian.PutUint32(b[68:72], h.Timestamp)
	littleEndian.PutUint32(b[72:76], h.Bits)
	littleEndian.PutUint32(b[76:80], h.Nonce)
	return s.WriteBytes(b[:])
}

// Decode reads an 80-byte header. The limits are unused, since nothing in
// a header is variable length, but the signature matches the other
// decoders.
func (h *BlockHeader) Decode(src Source, _ Limits) error {
	var b [BlockHeaderLen]byte
	if err := src.ReadFull(b[:]); err != nil {
		return fmt.Errorf("reading block header: %w", err)
	}
	h.Version = int32(littleEndian.Uint32(b[0:4]))
	copy(h.PrevBlock[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = littleEndian.Uint32(b[68:72])
	h.Bits = littleEndian.Uint32(b[72:76])
	h.Nonce = littleEndian.Uint32(b[76:80])
	return nil
}

// DecodeBlockHeader decodes a header that must span all of b.
func DecodeBlockHeader(b []byte) (*BlockHeader, error) {
	var h BlockHeader
	if err := decodeAll(b, Limits{}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
