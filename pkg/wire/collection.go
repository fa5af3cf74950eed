package wire

import "fmt"

// ReadCount reads a CompactSize element count and checks it against
// maxAllowed. The check happens before the caller reserves anything.
func ReadCount(src Source, maxAllowed uint64, field string) (uint64, error) {
	count, err := ReadCompactSize(src)
	if err != nil {
		return 0, fmt.Errorf("reading %s count: %w", field, err)
	}
	if count > maxAllowed {
		return 0, fmt.Errorf("%s count %d exceeds max %d: %w",
			field, count, maxAllowed, ErrLengthExceedsLimit)
	}
	return count, nil
}

// ReadVarBytes reads a CompactSize length followed by that many bytes.
//
// The declared length is checked against maxAllowed and against what the
// source still holds before the result is allocated, so a hostile length
// costs nothing.
func ReadVarBytes(src Source, maxAllowed uint64, field string) ([]byte, error) {
	length, err := ReadCompactSize(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s length: %w", field, err)
	}
	if length > maxAllowed {
		return nil, fmt.Errorf("%s length %d exceeds max %d: %w",
			field, length, maxAllowed, ErrLengthExceedsLimit)
	}
	if rem := src.Remaining(); rem >= 0 && length > uint64(rem) {
		return nil, fmt.Errorf("%s length %d with %d bytes left: %w",
			field, length, rem, ErrLengthExceedsRemaining)
	}

	b := make([]byte, length)
	if err := src.ReadFull(b); err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return b, nil
}

// WriteVarBytes writes a CompactSize length followed by b.
func WriteVarBytes(s Sink, b []byte) error {
	if err := WriteCompactSize(s, uint64(len(b))); err != nil {
		return err
	}
	return s.WriteBytes(b)
}

// VarBytesSerializeSize returns the encoded size of a length-prefixed byte
// string of length n.
func VarBytesSerializeSize(n int) int {
	return CompactSizeLen(uint64(n)) + n
}

// ReadSequence reads a CompactSize count and then that many elements with
// readElem. At most limits.MaxPrealloc elements are reserved up front; the
// slice grows as elements actually decode, so a large count is only ever
// paid for with real input.
func ReadSequence[T any](
	src Source,
	limits Limits,
	maxAllowed uint64,
	field string,
	readElem func(Source, *T) error,
) ([]T, error) {
	count, err := ReadCount(src, maxAllowed, field)
	if err != nil {
		return nil, err
	}
	return readElems(src, limits, count, field, readElem)
}

// readElems reads count elements whose count has already been read and
// checked.
func readElems[T any](
	src Source,
	limits Limits,
	count uint64,
	field string,
	readElem func(Source, *T) error,
) ([]T, error) {
	out := make([]T, 0, limits.prealloc(count))
	for i := uint64(0); i < count; i++ {
		var elem T
		if err := readElem(src, &elem); err != nil {
			return nil, fmt.Errorf("reading %s %d: %w", field, i, err)
		}
		out = append(out, elem)
	}
	return out, nil
}

// decoder is anything with a limits-aware Decode.
type decoder interface {
	Decode(src Source, limits Limits) error
}

// decodeAll decodes v from b and requires that b is consumed exactly.
func decodeAll(b []byte, limits Limits, v decoder) error {
	r := NewReader(b)
	if err := v.Decode(r, limits); err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("%d bytes left: %w", r.Remaining(), ErrTrailingData)
	}
	return nil
}

// WriteSequence writes a CompactSize count and then every element with
// writeElem, in order.
func WriteSequence[T any](s Sink, elems []T, writeElem func(Sink, *T) error) error {
	if err := WriteCompactSize(s, uint64(len(elems))); err != nil {
		return err
	}
	for i := range elems {
		if err := writeElem(s, &elems[i]); err != nil {
			return err
		}
	}
	return nil
}
