// Package peer frames wire messages over a caller-provided stream.
//
// A Conn does not dial, listen or manage timeouts; it reads and writes
// envelopes on an io.ReadWriter the caller already owns and classifies
// failures into those that desynchronise the stream and those that only
// reject one message.
package peer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/suffix-labs/btcwire/pkg/wire"
)

// PayloadError is a message whose envelope verified but whose payload was
// rejected. The stream is still aligned on the next envelope.
type PayloadError struct {
	Command string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("peer: rejected %s payload: %v", e.Command, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err leaves the stream unusable. Envelope failures
// and transport errors are fatal; payload rejections are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var payloadErr *PayloadError
	return !errors.As(err, &payloadErr)
}

// Handler is called for every decoded message. Returning an error stops
// Serve.
type Handler func(ctx context.Context, msg wire.Message) error

// Conn reads and writes framed messages.
type Conn struct {
	cfg wire.MessageConfig
	log *zap.Logger

	src *wire.StreamSource

	writeMu sync.Mutex
	sink    *wire.WriterSink

	bytesWritten atomic.Uint64
	rejected     atomic.Uint64
}

// NewConn wraps rw. A nil logger discards log output.
func NewConn(rw io.ReadWriter, cfg wire.MessageConfig, log *zap.Logger) (*Conn, error) {
	if err := cfg.Limits.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		cfg:  cfg,
		log:  log.With(zap.Stringer("net", cfg.Net)),
		src:  wire.NewStreamSource(rw),
		sink: wire.NewWriterSink(rw),
	}, nil
}

// ReadMessage reads the next message. It is not safe for concurrent use;
// one goroutine owns the read side.
func (c *Conn) ReadMessage() (wire.Message, error) {
	hdr, payload, err := wire.ReadEnvelope(c.src, c.cfg)
	if err != nil {
		c.log.Warn("dropping stream",
			zap.Int64("offset", c.src.BytesRead()),
			zap.Error(err),
		)
		return nil, err
	}

	msg, err := wire.DecodePayload(hdr.Command, payload, c.cfg.Limits)
	if err != nil {
		c.rejected.Add(1)
		c.log.Debug("rejected message",
			zap.String("command", hdr.Command),
			zap.Uint32("length", hdr.Length),
			zap.Error(err),
		)
		return nil, &PayloadError{Command: hdr.Command, Err: err}
	}
	return msg, nil
}

// WriteMessage frames and writes msg. The envelope is encoded in full before
// the stream is touched, so a message that fails to encode writes nothing.
// Safe for concurrent use.
func (c *Conn) WriteMessage(msg wire.Message) error {
	b, err := wire.EncodeMessage(msg, c.cfg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.sink.WriteBytes(b); err != nil {
		c.log.Debug("write failed",
			zap.String("command", msg.Command()),
			zap.Error(err),
		)
		return err
	}
	c.bytesWritten.Add(uint64(len(b)))
	return nil
}

// Serve reads messages until ctx is done, the stream fails or handle
// returns an error. Pings are answered with a pong carrying the same nonce
// before handle sees them. Rejected payloads are skipped.
//
// Reads block inside the wrapped reader, so cancellation is observed
// between messages; close the underlying stream to interrupt a read.
func (c *Conn) Serve(ctx context.Context, handle Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := c.ReadMessage()
		if err != nil {
			if IsFatal(err) {
				return err
			}
			continue
		}

		if ping, ok := msg.(*wire.MsgPing); ok {
			if err := c.WriteMessage(wire.NewMsgPong(ping.Nonce)); err != nil {
				return err
			}
		}

		if handle != nil {
			if err := handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// Stats is a snapshot of a connection's counters.
type Stats struct {
	BytesRead    int64
	BytesWritten uint64
	Rejected     uint64
}

// Stats returns the connection's counters. Safe to call while Serve runs.
func (c *Conn) Stats() Stats {
	return Stats{
		BytesRead:    c.src.BytesRead(),
		BytesWritten: c.bytesWritten.Load(),
		Rejected:     c.rejected.Load(),
	}
}
