package wire

import (
	"bytes"
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

const (
	// CommandSize is the fixed width of the NUL-padded command field.
	CommandSize = 12

	// ChecksumSize is the number of digest bytes kept as the checksum.
	ChecksumSize = 4

	// MessageHeaderSize is magic 4 + command 12 + length 4 + checksum 4.
	MessageHeaderSize = 4 + CommandSize + 4 + ChecksumSize
)

// Commands of the messages this package can decode.
const (
	CmdVerAck  = "verack"
	CmdPing    = "ping"
	CmdPong    = "pong"
	CmdTx      = "tx"
	CmdBlock   = "block"
	CmdHeaders = "headers"
)

// BitcoinNet is the magic value opening every message on a network. Its
// little-endian bytes are what appear on the wire.
type BitcoinNet uint32

// Well-known network magics.
const (
	MainNet  BitcoinNet = 0xd9b4bef9
	TestNet3 BitcoinNet = 0x0709110b
	RegTest  BitcoinNet = 0xdab5bffa
	SigNet   BitcoinNet = 0x40cf030a
)

var bnStrings = map[BitcoinNet]string{
	MainNet:  "MainNet",
	TestNet3: "TestNet3",
	RegTest:  "RegTest",
	SigNet:   "SigNet",
}

// String returns the network name, or the magic in hex when unknown.
func (n BitcoinNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown BitcoinNet (0x%08x)", uint32(n))
}

// Message is a payload that can travel in an envelope.
type Message interface {
	Command() string
	Encode(s Sink) error
	Decode(src Source, limits Limits) error
}

// MakeEmptyMessage returns an empty message for command, ready to decode
// into.
func MakeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	default:
		return nil, messageError("MakeEmptyMessage", command, ErrUnknownCommand,
			"no payload type for command")
	}
}

// MessageConfig selects the network and policy for envelope framing. It is
// plain data: one value per network, passed to every envelope call.
type MessageConfig struct {
	Net    BitcoinNet
	Limits Limits

	// Checksum hashes the payload; the first ChecksumSize bytes of the
	// result are the envelope checksum. Nil means double SHA-256.
	Checksum chainhash.HashFunc
}

// NewMessageConfig returns a config for net with validated limits and the
// default checksum.
func NewMessageConfig(net BitcoinNet, limits Limits) (MessageConfig, error) {
	if err := limits.Validate(); err != nil {
		return MessageConfig{}, err
	}
	return MessageConfig{Net: net, Limits: limits}, nil
}

func (c *MessageConfig) checksum(payload []byte) [ChecksumSize]byte {
	hashFn := c.Checksum
	if hashFn == nil {
		hashFn = chainhash.DoubleHashH
	}
	digest := hashFn(payload)

	var sum [ChecksumSize]byte
	copy(sum[:], digest[:ChecksumSize])
	return sum
}

// MessageHeader is a decoded envelope header.
type MessageHeader struct {
	Magic    BitcoinNet
	Command  string
	Length   uint32
	Checksum [ChecksumSize]byte
}

// validateCommand checks that command fits the field and is printable
// ASCII.
func validateCommand(command string) error {
	if len(command) > CommandSize {
		return ErrCommandTooLong
	}
	if command == "" {
		return ErrInvalidCommand
	}
	for i := 0; i < len(command); i++ {
		if c := command[i]; c <= 0x20 || c >= 0x7f {
			return ErrInvalidCommand
		}
	}
	return nil
}

// EncodeEnvelope frames payload under command for the configured network
// and writes header and payload to s.
func EncodeEnvelope(s Sink, cfg MessageConfig, command string, payload []byte) error {
	if err := validateCommand(command); err != nil {
		return messageError("EncodeEnvelope", "", err, "command %q", command)
	}
	if uint64(len(payload)) > uint64(cfg.Limits.MaxMessagePayload) {
		return messageError("EncodeEnvelope", command, ErrMessageTooLarge,
			"payload of %d bytes, max %d", len(payload), cfg.Limits.MaxMessagePayload)
	}

	var hdr [MessageHeaderSize]byte
	littleEndian.PutUint32(hdr[0:4], uint32(cfg.Net))
	copy(hdr[4:4+CommandSize], command)
	littleEndian.PutUint32(hdr[16:20], uint32(len(payload)))
	sum := cfg.checksum(payload)
	copy(hdr[20:24], sum[:])

	if err := s.WriteBytes(hdr[:]); err != nil {
		return err
	}
	return s.WriteBytes(payload)
}

// WriteMessage encodes msg and frames it. The payload size is measured
// first, so an oversized message is refused before its buffer exists.
func WriteMessage(s Sink, msg Message, cfg MessageConfig) error {
	command := msg.Command()

	var counter countingSink
	if err := msg.Encode(&counter); err != nil {
		return err
	}
	if uint64(counter.n) > uint64(cfg.Limits.MaxMessagePayload) {
		return messageError("WriteMessage", command, ErrMessageTooLarge,
			"payload of %d bytes, max %d", counter.n, cfg.Limits.MaxMessagePayload)
	}

	buf := NewEncodeBuffer(counter.n)
	if err := msg.Encode(buf); err != nil {
		return err
	}
	return EncodeEnvelope(s, cfg, command, buf.Bytes())
}

// EncodeMessage returns the framed bytes of msg.
func EncodeMessage(msg Message, cfg MessageConfig) ([]byte, error) {
	buf := NewEncodeBuffer(MessageHeaderSize)
	if err := WriteMessage(buf, msg, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseCommand extracts the command from its NUL-padded field. Bytes after
// the first NUL must all be NUL.
func parseCommand(field []byte) (string, error) {
	end := bytes.IndexByte(field, 0)
	if end == -1 {
		end = len(field)
	}
	for _, b := range field[end:] {
		if b != 0 {
			return "", ErrInvalidCommand
		}
	}
	command := string(field[:end])
	if err := validateCommand(command); err != nil {
		return "", err
	}
	return command, nil
}

// ReadEnvelope reads one framed message and returns its header and payload.
//
// Checks run in wire order: magic, command, declared length against
// Limits.MaxMessagePayload (before the payload is allocated), then the
// checksum. The payload is only returned once it verifies.
func ReadEnvelope(src Source, cfg MessageConfig) (*MessageHeader, []byte, error) {
	var raw [MessageHeaderSize]byte
	if err := src.ReadFull(raw[:]); err != nil {
		return nil, nil, messageError("ReadEnvelope", "", err, "reading header")
	}

	hdr := MessageHeader{
		Magic:  BitcoinNet(littleEndian.Uint32(raw[0:4])),
		Length: littleEndian.Uint32(raw[16:20]),
	}
	copy(hdr.Checksum[:], raw[20:24])

	if hdr.Magic != cfg.Net {
		return nil, nil, messageError("ReadEnvelope", "", ErrWrongNetwork,
			"magic %v, expected %v", hdr.Magic, cfg.Net)
	}

	command, err := parseCommand(raw[4 : 4+CommandSize])
	if err != nil {
		return nil, nil, messageError("ReadEnvelope", "", err,
			"command field %q", raw[4:4+CommandSize])
	}
	hdr.Command = command

	if hdr.Length > cfg.Limits.MaxMessagePayload {
		return nil, nil, messageError("ReadEnvelope", command, ErrMessageTooLarge,
			"declared payload of %d bytes, max %d", hdr.Length, cfg.Limits.MaxMessagePayload)
	}
	if rem := src.Remaining(); rem >= 0 && uint64(hdr.Length) > uint64(rem) {
		return nil, nil, messageError("ReadEnvelope", command, ErrLengthExceedsRemaining,
			"declared payload of %d bytes with %d left", hdr.Length, rem)
	}

	payload := make([]byte, hdr.Length)
	if err := src.ReadFull(payload); err != nil {
		return nil, nil, messageError("ReadEnvelope", command, err, "reading payload")
	}

	if sum := cfg.checksum(payload); sum != hdr.Checksum {
		return nil, nil, messageError("ReadEnvelope", command, ErrChecksumMismatch,
			"header checksum %x, payload hashes to %x", hdr.Checksum, sum)
	}

	return &hdr, payload, nil
}

// ReadMessage reads one framed message and decodes its payload with
// DecodePayload. The raw payload is returned alongside the message.
func ReadMessage(src Source, cfg MessageConfig) (Message, []byte, error) {
	hdr, payload, err := ReadEnvelope(src, cfg)
	if err != nil {
		return nil, nil, err
	}

	msg, err := DecodePayload(hdr.Command, payload, cfg.Limits)
	if err != nil {
		return nil, payload, err
	}
	return msg, payload, nil
}

// DecodePayload decodes a verified payload according to its command. The
// payload must decode exactly; leftover bytes are rejected.
func DecodePayload(command string, payload []byte, limits Limits) (Message, error) {
	msg, err := MakeEmptyMessage(command)
	if err != nil {
		return nil, err
	}
	if err := decodeAll(payload, limits, msg); err != nil {
		return nil, messageError("DecodePayload", command, err, "decoding payload")
	}
	return msg, nil
}

// DecodeMessage reads exactly one framed message from b.
func DecodeMessage(b []byte, cfg MessageConfig) (Message, error) {
	r := NewReader(b)
	msg, _, err := ReadMessage(r, cfg)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, messageError("DecodeMessage", msg.Command(), ErrTrailingData,
			"%d bytes after message", r.Remaining())
	}
	return msg, nil
}
