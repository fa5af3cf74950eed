package wire

// EncodeBuffer is a Sink that also exposes what was written. Both Buffer
// and FixedBuffer satisfy it.
type EncodeBuffer interface {
	Sink
	Bytes() []byte
	Len() int
	Reset()
}

var (
	_ EncodeBuffer = (*Buffer)(nil)
	_ EncodeBuffer = (*FixedBuffer)(nil)
)
