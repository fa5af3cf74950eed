//go:build fixedbuf

package wire

// AllocProfile names the allocation profile selected at build time.
const AllocProfile = "fixed"

// FixedBufferSize is the capacity of every encode buffer on the fixed
// profile. Encodings larger than this fail with ErrCapacityExceeded.
const FixedBufferSize = 1 << 16

// NewEncodeBuffer returns the build's default encode target: a
// FixedBuffer of FixedBufferSize bytes that never grows. sizeHint is
// ignored.
func NewEncodeBuffer(sizeHint int) EncodeBuffer {
	var storage [FixedBufferSize]byte
	return NewFixedBuffer(storage[:])
}
