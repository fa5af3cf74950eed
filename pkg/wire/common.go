package wire

import (
	"encoding/binary"
	"math"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

// MaxCompactSizeLen is the widest CompactSize encoding.
const MaxCompactSizeLen = 9

// CompactSize escape markers for the wider forms.
const (
	compactSizeUint16 = 0xfd
	compactSizeUint32 = 0xfe
	compactSizeUint64 = 0xff
)

var littleEndian = binary.LittleEndian

// ReadUint8 reads one byte.
func ReadUint8(src Source) (uint8, error) {
	var b [1]byte
	if err := src.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func ReadUint16(src Source) (uint16, error) {
	var b [2]byte
	if err := src.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint16(b[:]), nil
}

// ReadUint16BE reads a big-endian uint16.
func ReadUint16BE(src Source) (uint16, error) {
	var b [2]byte
	if err := src.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// ReadUint32 reads a little-endian uint32.
func ReadUint32(src Source) (uint32, error) {
	var b [4]byte
	if err := src.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint32(b[:]), nil
}

// ReadInt32 reads a little-endian two's complement int32.
func ReadInt32(src Source) (int32, error) {
	v, err := ReadUint32(src)
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func ReadUint64(src Source) (uint64, error) {
	var b [8]byte
	if err := src.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint64(b[:]), nil
}

// ReadInt64 reads a little-endian two's complement int64.
func ReadInt64(src Source) (int64, error) {
	v, err := ReadUint64(src)
	return int64(v), err
}

// WriteUint8 writes one byte.
func WriteUint8(s Sink, v uint8) error {
	b := [1]byte{v}
	return s.WriteBytes(b[:])
}

// WriteUint16 writes a little-endian uint16.
func WriteUint16(s Sink, v uint16) error {
	var b [2]byte
	littleEndian.PutUint16(b[:], v)
	return s.WriteBytes(b[:])
}

// WriteUint16BE writes a big-endian uint16.
func WriteUint16BE(s Sink, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return s.WriteBytes(b[:])
}

// WriteUint32 writes a little-endian uint32.
func WriteUint32(s Sink, v uint32) error {
	var b [4]byte
	littleEndian.PutUint32(b[:], v)
	return s.WriteBytes(b[:])
}

// WriteInt32 writes a little-endian int32.
func WriteInt32(s Sink, v int32) error {
	return WriteUint32(s, uint32(v))
}

// WriteUint64 writes a little-endian uint64.
func WriteUint64(s Sink, v uint64) error {
	var b [8]byte
	littleEndian.PutUint64(b[:], v)
	return s.WriteBytes(b[:])
}

// WriteInt64 writes a little-endian int64.
func WriteInt64(s Sink, v int64) error {
	return WriteUint64(s, uint64(v))
}

// ReadHash reads exactly 32 bytes of digest. The content is not checked.
func ReadHash(src Source, h *chainhash.Hash) error {
	return src.ReadFull(h[:])
}

// WriteHash writes the 32 raw digest bytes.
func WriteHash(s Sink, h *chainhash.Hash) error {
	return s.WriteBytes(h[:])
}

// ReadCompactSize reads a CompactSize integer.
//
// Encoding:
//
//	value <= 0xfc:        1 byte
//	value <= 0xffff:      0xfd || uint16
//	value <= 0xffffffff:  0xfe || uint32
//	otherwise:            0xff || uint64
//
// Any encoding wider than the minimal form for its value is rejected with
// ErrNonCanonicalEncoding.
func ReadCompactSize(src Source) (uint64, error) {
	discriminant, err := ReadUint8(src)
	if err != nil {
		return 0, err
	}

	var rv, minimum uint64
	switch discriminant {
	case compactSizeUint64:
		rv, err = ReadUint64(src)
		minimum = 0x100000000
	case compactSizeUint32:
		var v uint32
		v, err = ReadUint32(src)
		rv, minimum = uint64(v), 0x10000
	case compactSizeUint16:
		var v uint16
		v, err = ReadUint16(src)
		rv, minimum = uint64(v), compactSizeUint16
	default:
		return uint64(discriminant), nil
	}
	if err != nil {
		return 0, err
	}

	if rv < minimum {
		return 0, ErrNonCanonicalEncoding
	}
	return rv, nil
}

// WriteCompactSize writes v in its minimal CompactSize form.
func WriteCompactSize(s Sink, v uint64) error {
	var b [MaxCompactSizeLen]byte
	return s.WriteBytes(PutCompactSize(b[:], v))
}

// PutCompactSize encodes v into b, which must hold at least
// CompactSizeLen(v) bytes, and returns the encoded prefix of b.
func PutCompactSize(b []byte, v uint64) []byte {
	switch {
	case v < compactSizeUint16:
		b[0] = uint8(v)
		return b[:1]
	case v <= math.MaxUint16:
		b[0] = compactSizeUint16
		littleEndian.PutUint16(b[1:3], uint16(v))
		return b[:3]
	case v <= math.MaxUint32:
		b[0] = compactSizeUint32
		littleEndian.PutUint32(b[1:5], uint32(v))
		return b[:5]
	default:
		b[0] = compactSizeUint64
		littleEndian.PutUint64(b[1:9], v)
		return b[:9]
	}
}

// CompactSizeLen returns the number of bytes v occupies as a CompactSize.
func CompactSizeLen(v uint64) int {
	switch {
	case v < compactSizeUint16:
		return 1
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}
