package chainhash

import (
	"crypto/sha256"
	"hash"

	blake2b "github.com/minio/blake2b-simd"
)

// HashFunc is the double-digest primitive consumed by the codec: it maps an
// arbitrary byte slice to a 32-byte identifier. The codec never implements
// the digest itself.
type HashFunc func(b []byte) Hash

// HashB returns a single SHA-256 of b.
func HashB(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

// HashH returns a single SHA-256 of b as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB returns SHA-256(SHA-256(b)).
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH returns SHA-256(SHA-256(b)) as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// DoubleHasher computes SHA-256(SHA-256(data)) over data written to it
// incrementally, so a serialization can be streamed straight into the
// digest.
type DoubleHasher struct {
	inner hash.Hash
}

// NewDoubleHasher returns a ready DoubleHasher.
func NewDoubleHasher() *DoubleHasher {
	return &DoubleHasher{inner: sha256.New()}
}

// Write implements io.Writer. It never fails.
func (d *DoubleHasher) Write(p []byte) (int, error) {
	return d.inner.Write(p)
}

// Sum returns the double digest of everything written so far.
func (d *DoubleHasher) Sum() Hash {
	var first [sha256.Size]byte
	d.inner.Sum(first[:0])
	return Hash(sha256.Sum256(first[:]))
}

// Reset clears the written data.
func (d *DoubleHasher) Reset() {
	d.inner.Reset()
}

// newBlake2b256 creates a BLAKE2b-256 hash with the given personalization.
// The personalization is a distinct parameter of the function, not a key.
func newBlake2b256(personalization []byte) hash.Hash {
	config := &blake2b.Config{
		Size:   HashSize,
		Person: personalization,
	}
	h, err := blake2b.New(config)
	if err != nil {
		// Only reachable with a personalization longer than 16 bytes.
		panic(err)
	}
	return h
}

// Blake2b256 returns a HashFunc computing personalised BLAKE2b-256. Some
// networks of the protocol family checksum their envelopes with BLAKE2b
// rather than double SHA-256; the personalization must be at most 16 bytes.
func Blake2b256(personalization string) HashFunc {
	person := []byte(personalization)
	if len(person) > blake2b.PersonSize {
		panic("chainhash: blake2b personalization longer than 16 bytes")
	}
	return func(b []byte) Hash {
		h := newBlake2b256(person)
		h.Write(b)
		var out Hash
		copy(out[:], h.Sum(nil))
		return out
	}
}

// DoubleBlake2b256 applies Blake2b256 twice with the same personalization.
func DoubleBlake2b256(personalization string) HashFunc {
	single := Blake2b256(personalization)
	return func(b []byte) Hash {
		first := single(b)
		return single(first[:])
	}
}
