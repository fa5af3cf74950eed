package wire

import (
	"errors"
	"io"
	"sync/atomic"
)

// Source yields bytes to a decoder.
type Source interface {
	// ReadFull fills p completely or fails with ErrUnexpectedEOF. On
	// failure the source is left at end of input.
	ReadFull(p []byte) error

	// Remaining returns the number of unread bytes, or -1 when the source
	// cannot know (a stream).
	Remaining() int
}

// Reader is a Source over an in-memory byte slice.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Source reading b. b is not copied.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// ReadFull implements Source. It never reads past the end of the slice.
func (r *Reader) ReadFull(p []byte) error {
	if len(p) > len(r.buf)-r.off {
		r.off = len(r.buf)
		return ErrUnexpectedEOF
	}
	r.off += copy(p, r.buf[r.off:])
	return nil
}

// Remaining implements Source.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// StreamSource adapts an io.Reader. Any blocking happens inside the
// wrapped reader, never in the codec.
type StreamSource struct {
	r io.Reader
	n atomic.Int64
}

// NewStreamSource wraps r.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r}
}

// ReadFull implements Source. A clean or partial EOF is reported as
// ErrUnexpectedEOF; other transport errors are returned unchanged.
func (s *StreamSource) ReadFull(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	s.n.Add(int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Remaining implements Source; a stream does not know its length.
func (s *StreamSource) Remaining() int {
	return -1
}

// BytesRead returns the number of bytes consumed from the stream. It may
// be called while another goroutine reads.
func (s *StreamSource) BytesRead() int64 {
	return s.n.Load()
}
