// Package wire implements the consensus wire codec for Bitcoin-family peer
// to peer messages and ledger objects.
//
// The layers build on each other, leaves first:
//
//  1. Sink / Source: where bytes go to and come from (sink.go, source.go)
//  2. Primitives: fixed-width integers, CompactSize, hashes (common.go)
//  3. Collections: length-prefixed byte strings and sequences (collection.go)
//  4. Composites: transactions, block headers, blocks (msgtx.go, blockheader.go, msgblock.go)
//  5. Message envelope: magic, command, length, checksum, payload (message.go)
//
// Composite codecs only ever talk to the primitive and collection helpers,
// which in turn only talk to a Sink or Source. Allocation policy lives in
// the Sink/Source implementations: a growable Buffer on the default build,
// or a FixedBuffer over caller-owned storage (see alloc_heap.go and
// alloc_fixed.go).
//
// References:
//   - Bitcoin protocol documentation: https://en.bitcoin.it/wiki/Protocol_documentation
//   - BIP 144: segregated witness serialization
package wire

import "io"

// Sink receives encoded bytes.
type Sink interface {
	// WriteBytes appends p in full or fails without consuming any of it.
	WriteBytes(p []byte) error
}

// Buffer is a growable in-memory Sink. Writes never fail.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with sizeHint bytes of capacity reserved.
func NewBuffer(sizeHint int) *Buffer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Buffer{buf: make([]byte, 0, sizeHint)}
}

// WriteBytes implements Sink.
func (b *Buffer) WriteBytes(p []byte) error {
	b.buf = append(b.buf, p...)
	return nil
}

// Bytes returns the bytes written so far. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Reset discards the contents but keeps the capacity.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

// FixedBuffer is a Sink over caller-supplied storage. It never grows: once
// the storage is full every further write fails with ErrCapacityExceeded
// and leaves the written prefix untouched.
type FixedBuffer struct {
	buf []byte
	n   int
}

// NewFixedBuffer wraps storage. The full length of storage is usable.
func NewFixedBuffer(storage []byte) *FixedBuffer {
	return &FixedBuffer{buf: storage}
}

// WriteBytes implements Sink.
func (f *FixedBuffer) WriteBytes(p []byte) error {
	if len(p) > len(f.buf)-f.n {
		return ErrCapacityExceeded
	}
	f.n += copy(f.buf[f.n:], p)
	return nil
}

// Bytes returns the written prefix of the storage.
func (f *FixedBuffer) Bytes() []byte {
	return f.buf[:f.n]
}

// Len returns the number of bytes written.
func (f *FixedBuffer) Len() int {
	return f.n
}

// Cap returns the total storage size.
func (f *FixedBuffer) Cap() int {
	return len(f.buf)
}

// Reset rewinds the buffer to empty.
func (f *FixedBuffer) Reset() {
	f.n = 0
}

// WriterSink adapts an io.Writer, such as a hash.Hash or a network
// connection, to a Sink.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteBytes implements Sink.
func (s *WriterSink) WriteBytes(p []byte) error {
	_, err := s.w.Write(p)
	return err
}

// countingSink discards bytes and counts them.
type countingSink struct {
	n int
}

func (c *countingSink) WriteBytes(p []byte) error {
	c.n += len(p)
	return nil
}
