package wire

import "fmt"

// MsgVerAck acknowledges a version message. It has no payload.
type MsgVerAck struct{}

// Command implements Message.
func (msg *MsgVerAck) Command() string { return CmdVerAck }

// Encode implements Message.
func (msg *MsgVerAck) Encode(Sink) error { return nil }

// Decode implements Message.
func (msg *MsgVerAck) Decode(Source, Limits) error { return nil }

// MsgPing carries a nonce the peer echoes back in a pong.
type MsgPing struct {
	Nonce uint64
}

// NewMsgPing returns a ping with the given nonce.
func NewMsgPing(nonce uint64) *MsgPing {
	return &MsgPing{Nonce: nonce}
}

// Command implements Message.
func (msg *MsgPing) Command() string { return CmdPing }

// Encode implements Message.
func (msg *MsgPing) Encode(s Sink) error {
	return WriteUint64(s, msg.Nonce)
}

// Decode implements Message.
func (msg *MsgPing) Decode(src Source, _ Limits) error {
	nonce, err := ReadUint64(src)
	if err != nil {
		return fmt.Errorf("reading ping nonce: %w", err)
	}
	msg.Nonce = nonce
	return nil
}

// MsgPong answers a ping with the same nonce.
type MsgPong struct {
	Nonce uint64
}

// NewMsgPong returns a pong with the given nonce.
func NewMsgPong(nonce uint64) *MsgPong {
	return &MsgPong{Nonce: nonce}
}

// Command implements Message.
func (msg *MsgPong) Command() string { return CmdPong }

// Encode implements Message.
func (msg *MsgPong) Encode(s Sink) error {
	return WriteUint64(s, msg.Nonce)
}

// Decode implements Message.
func (msg *MsgPong) Decode(src Source, _ Limits) error {
	nonce, err := ReadUint64(src)
	if err != nil {
		return fmt.Errorf("reading pong nonce: %w", err)
	}
	msg.Nonce = nonce
	return nil
}

// MsgHeaders delivers block headers. On the wire each header is followed
// by a transaction count, which is always zero.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// AddBlockHeader appends a header.
func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) {
	msg.Headers = append(msg.Headers, bh)
}

// Command implements Message.
func (msg *MsgHeaders) Command() string { return CmdHeaders }

// Encode implements Message.
func (msg *MsgHeaders) Encode(s Sink) error {
	return WriteSequence(s, msg.Headers, func(s Sink, bh **BlockHeader) error {
		if err := (*bh).Encode(s); err != nil {
			return err
		}
		return WriteCompactSize(s, 0)
	})
}

// Decode implements Message. The header count is bounded by
// limits.MaxHeaders and any non-zero transaction count is rejected.
func (msg *MsgHeaders) Decode(src Source, limits Limits) error {
	headers, err := ReadSequence(src, limits, limits.MaxHeaders, "header",
		func(src Source, bh **BlockHeader) error {
			var h BlockHeader
			if err := h.Decode(src, limits); err != nil {
				return err
			}
			txCount, err := ReadCompactSize(src)
			if err != nil {
				return fmt.Errorf("reading transaction count: %w", err)
			}
			if txCount != 0 {
				return fmt.Errorf("header carries %d transactions: %w",
					txCount, ErrNonCanonicalEncoding)
			}
			*bh = &h
			return nil
		})
	if err != nil {
		return err
	}
	msg.Headers = headers
	return nil
}
