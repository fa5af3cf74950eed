package txscript

import (
	"encoding/binary"
	"fmt"
)

// ScriptBuilder assembles a script from opcodes and data pushes, always
// choosing the smallest push encoding. The first error sticks and is
// returned by Script.
type ScriptBuilder struct {
	script []byte
	err    error
}

// NewScriptBuilder returns an empty builder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, 64)}
}

// AddOp appends an opcode.
func (b *ScriptBuilder) AddOp(op byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, op)
	return b
}

// AddInt64 pushes a small integer with its dedicated opcode, or any other
// value as a minimally encoded script number.
func (b *ScriptBuilder) AddInt64(v int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case v == 0:
		return b.AddOp(OP_0)
	case v == -1:
		return b.AddOp(OP_1NEGATE)
	case v >= 1 && v <= 16:
		return b.AddOp(smallIntOpcode(int(v)))
	}
	return b.AddData(scriptNum(v))
}

// AddData pushes data with the canonical push for its length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(data) > MaxScriptElementSize {
		b.err = fmt.Errorf("push of %d bytes exceeds max %d: %w",
			len(data), MaxScriptElementSize, ErrElementTooBig)
		return b
	}
	b.script = appendPush(b.script, data)
	return b
}

// Script returns the assembled script.
func (b *ScriptBuilder) Script() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.script, nil
}

// appendPush appends the minimal push of data. Single bytes 1..16 and 0x81
// use their opcodes.
func appendPush(script, data []byte) []byte {
	n := len(data)
	switch {
	case n == 0 || (n == 1 && data[0] == 0):
		return append(script, OP_0)
	case n == 1 && data[0] <= 16:
		return append(script, smallIntOpcode(int(data[0])))
	case n == 1 && data[0] == 0x81:
		return append(script, OP_1NEGATE)
	case n <= OP_DATA_75:
		script = append(script, byte(n))
	case n <= 0xff:
		script = append(script, OP_PUSHDATA1, byte(n))
	case n <= 0xffff:
		script = append(script, OP_PUSHDATA2)
		script = binary.LittleEndian.AppendUint16(script, uint16(n))
	default:
		script = append(script, OP_PUSHDATA4)
		script = binary.LittleEndian.AppendUint32(script, uint32(n))
	}
	return append(script, data...)
}

// scriptNum encodes v as a minimal little-endian sign-magnitude number.
func scriptNum(v int64) []byte {
	if v == 0 {
		return nil
	}

	negative := v < 0
	m := uint64(v)
	if negative {
		m = uint64(-v)
	}

	var out []byte
	for m > 0 {
		out = append(out, byte(m&0xff))
		m >>= 8
	}

	// The top bit carries the sign, so a magnitude that uses it needs an
	// extra byte.
	if out[len(out)-1]&0x80 != 0 {
		extra := byte(0x00)
		if negative {
			extra = 0x80
		}
		out = append(out, extra)
	} else if negative {
		out[len(out)-1] |= 0x80
	}
	return out
}
