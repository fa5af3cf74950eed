//go:build !fixedbuf

package wire

// AllocProfile names the allocation profile selected at build time.
const AllocProfile = "heap"

// NewEncodeBuffer returns the build's default encode target: a growable
// Buffer with sizeHint bytes reserved.
func NewEncodeBuffer(sizeHint int) EncodeBuffer {
	return NewBuffer(sizeHint)
}
