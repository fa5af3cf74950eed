package wire

import (
	"fmt"
	"strconv"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

const (
	// TxVersion is the default version for new transactions.
	TxVersion = 1

	// MaxTxInSequenceNum is the final sequence number.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the previous output index used by coinbase inputs.
	MaxPrevOutIndex uint32 = 0xffffffff

	// WitnessScaleFactor weighs base bytes against witness bytes (BIP 141).
	WitnessScaleFactor = 4
)

// Segregated witness marker and flag. They occupy the position of the input
// count in the legacy format, which is why a zero input count announces
// witness data.
const (
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

// OutPoint references a previous transaction output.
type OutPoint struct {
	Hash  chainhash.Hash // Identifier of the transaction holding the output
	Index uint32         // Output index within that transaction
}

// NewOutPoint returns an OutPoint for the given hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns "hash:index" with the hash in display order.
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// TxWitness is the witness stack of one input: an ordered list of byte
// strings, kept outside the legacy serialization.
type TxWitness [][]byte

// SerializeSize returns the encoded size of the stack: an item count
// followed by each length-prefixed item.
func (t TxWitness) SerializeSize() int {
	n := CompactSizeLen(uint64(len(t)))
	for _, item := range t {
		n += VarBytesSerializeSize(len(item))
	}
	return n
}

// TxIn is a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint  // Output being spent
	SignatureScript  []byte    // Unlocking script (opaque)
	Witness          TxWitness // Witness stack, empty for legacy inputs
	Sequence         uint32    // Sequence number
}

// NewTxIn returns an input spending prevOut with the final sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// SerializeSize returns the size of the input's base encoding, without
// witness data.
func (t *TxIn) SerializeSize() int {
	// Outpoint hash 32 + index 4 + sequence 4 + script.
	return 40 + VarBytesSerializeSize(len(t.SignatureScript))
}

// TxOut is a transaction output.
//
// Value is in the smallest currency unit. It is signed on the wire; range
// checks against the supply ceiling belong to the caller.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns an output paying value to pkScript.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// SerializeSize returns the encoded size of the output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarBytesSerializeSize(len(t.PkScript))
}

// MsgTx is a transaction, and the payload of the "tx" message.
type MsgTx struct {
	Version  int32
	TxIn     []TxIn
	TxOut    []TxOut
	LockTime uint32
}

// NewMsgTx returns an empty transaction with the given version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn appends an input.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, *ti)
}

// AddTxOut appends an output.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, *to)
}

// HasWitness reports whether any input carries witness data. Only then is
// the witness serialization used.
func (msg *MsgTx) HasWitness() bool {
	for i := range msg.TxIn {
		if len(msg.TxIn[i].Witness) != 0 {
			return true
		}
	}
	return false
}

// TxHash returns the transaction identifier: the double hash of the legacy
// serialization. Witness data never affects it.
func (msg *MsgTx) TxHash() chainhash.Hash {
	h := chainhash.NewDoubleHasher()
	// Writing to a hash cannot fail.
	_ = msg.encode(NewWriterSink(h), false)
	return h.Sum()
}

// WitnessHash returns the witness identifier: the double hash of the full
// serialization. Without witness data it equals TxHash.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	h := chainhash.NewDoubleHasher()
	_ = msg.encode(NewWriterSink(h), true)
	return h.Sum()
}

// Command implements Message.
func (msg *MsgTx) Command() string {
	return CmdTx
}

// Encode writes the transaction, using the witness serialization when any
// input has witness data.
//
// Layout:
//
//	version || [0x00 0x01] || in count || inputs || out count || outputs ||
//	[witness stack per input] || lock time
//
// A transaction without inputs does not read back: its zero input count
// is indistinguishable from the witness marker, so Decode rejects the
// bytes with ErrMalformedWitnessMarker. Such transactions are only
// meaningful while under construction and are never relayed.
func (msg *MsgTx) Encode(s Sink) error {
	return msg.encode(s, true)
}

// EncodeStripped writes the legacy serialization, dropping witness data.
func (msg *MsgTx) EncodeStripped(s Sink) error {
	return msg.encode(s, false)
}

func (msg *MsgTx) encode(s Sink, allowWitness bool) error {
	withWitness := allowWitness && msg.HasWitness()

	if err := WriteInt32(s, msg.Version); err != nil {
		return err
	}

	if withWitness {
		if err := s.WriteBytes([]byte{witnessMarker, witnessFlag}); err != nil {
			return err
		}
	}

	if err := WriteSequence(s, msg.TxIn, writeTxIn); err != nil {
		return err
	}
	if err := WriteSequence(s, msg.TxOut, writeTxOut); err != nil {
		return err
	}

	if withWitness {
		for i := range msg.TxIn {
			if err := writeTxWitness(s, msg.TxIn[i].Witness); err != nil {
				return err
			}
		}
	}

	return WriteUint32(s, msg.LockTime)
}

// txDecodeState carries what was learned from the bytes after the version
// field through the rest of one decode call.
type txDecodeState struct {
	witness bool // marker and flag were present
}

// Decode reads a transaction in either serialization. On error msg is left
// unchanged.
func (msg *MsgTx) Decode(src Source, limits Limits) error {
	var tx MsgTx
	var state txDecodeState

	version, err := ReadInt32(src)
	if err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	tx.Version = version

	// The byte after the version is either the input count or the witness
	// marker. A zero count can only be the marker.
	count, err := ReadCompactSize(src)
	if err != nil {
		return fmt.Errorf("reading input count: %w", err)
	}
	if count == witnessMarker {
		flag, err := ReadUint8(src)
		if err != nil {
			return fmt.Errorf("reading witness flag: %w", err)
		}
		if flag != witnessFlag {
			return fmt.Errorf("witness flag 0x%02x: %w", flag, ErrMalformedWitnessMarker)
		}
		state.witness = true

		count, err = ReadCompactSize(src)
		if err != nil {
			return fmt.Errorf("reading input count: %w", err)
		}
	}
	if count > limits.MaxTxIns {
		return fmt.Errorf("input count %d exceeds max %d: %w",
			count, limits.MaxTxIns, ErrLengthExceedsLimit)
	}

	tx.TxIn, err = readElems(src, limits, count, "input", func(src Source, ti *TxIn) error {
		return readTxIn(src, limits, ti)
	})
	if err != nil {
		return err
	}

	tx.TxOut, err = ReadSequence(src, limits, limits.MaxTxOuts, "output", func(src Source, to *TxOut) error {
		return readTxOut(src, limits, to)
	})
	if err != nil {
		return err
	}

	if state.witness {
		for i := range tx.TxIn {
			witness, err := readTxWitness(src, limits)
			if err != nil {
				return fmt.Errorf("reading witness %d: %w", i, err)
			}
			tx.TxIn[i].Witness = witness
		}
		// The encoder only emits the marker when some input has witness
		// data, so a marker with nothing behind it is not canonical.
		if !tx.HasWitness() {
			return fmt.Errorf("marker present without witness data: %w", ErrMalformedWitnessMarker)
		}
	}

	tx.LockTime, err = ReadUint32(src)
	if err != nil {
		return fmt.Errorf("reading lock time: %w", err)
	}

	*msg = tx
	return nil
}

// SerializeSize returns the size of Encode's output.
func (msg *MsgTx) SerializeSize() int {
	n := msg.SerializeSizeStripped()
	if msg.HasWitness() {
		n += 2
		for i := range msg.TxIn {
			n += msg.TxIn[i].Witness.SerializeSize()
		}
	}
	return n
}

// SerializeSizeStripped returns the size of EncodeStripped's output.
func (msg *MsgTx) SerializeSizeStripped() int {
	// Version 4 + lock time 4 + counts.
	n := 8 + CompactSizeLen(uint64(len(msg.TxIn))) + CompactSizeLen(uint64(len(msg.TxOut)))
	for i := range msg.TxIn {
		n += msg.TxIn[i].SerializeSize()
	}
	for i := range msg.TxOut {
		n += msg.TxOut[i].SerializeSize()
	}
	return n
}

// Weight returns the BIP 141 weight: base size times three plus total size.
func (msg *MsgTx) Weight() int {
	return msg.SerializeSizeStripped()*(WitnessScaleFactor-1) + msg.SerializeSize()
}

// Bytes returns the full serialization in a buffer chosen by the build's
// allocation profile.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := NewEncodeBuffer(msg.SerializeSize())
	if err := msg.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesStripped returns the legacy serialization.
func (msg *MsgTx) BytesStripped() ([]byte, error) {
	buf := NewEncodeBuffer(msg.SerializeSizeStripped())
	if err := msg.EncodeStripped(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Copy returns a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]TxIn, len(msg.TxIn)),
		TxOut:    make([]TxOut, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for i, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  cloneBytes(oldTxIn.SignatureScript),
			Sequence:         oldTxIn.Sequence,
		}
		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make(TxWitness, len(oldTxIn.Witness))
			for j, item := range oldTxIn.Witness {
				newTxIn.Witness[j] = cloneBytes(item)
			}
		}
		newTx.TxIn[i] = newTxIn
	}

	for i, oldTxOut := range msg.TxOut {
		newTx.TxOut[i] = TxOut{
			Value:    oldTxOut.Value,
			PkScript: cloneBytes(oldTxOut.PkScript),
		}
	}

	return &newTx
}

// DecodeTx decodes a transaction that must span all of b.
func DecodeTx(b []byte, limits Limits) (*MsgTx, error) {
	var tx MsgTx
	if err := decodeAll(b, limits, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ReadScript reads a length-prefixed script bounded by limits.MaxScriptSize.
// The contents are not interpreted.
func ReadScript(src Source, limits Limits, field string) ([]byte, error) {
	return ReadVarBytes(src, limits.MaxScriptSize, field)
}

// WriteScript writes a length-prefixed script.
func WriteScript(s Sink, script []byte) error {
	return WriteVarBytes(s, script)
}

func readOutPoint(src Source, op *OutPoint) error {
	if err := ReadHash(src, &op.Hash); err != nil {
		return fmt.Errorf("reading previous output hash: %w", err)
	}
	index, err := ReadUint32(src)
	if err != nil {
		return fmt.Errorf("reading previous output index: %w", err)
	}
	op.Index = index
	return nil
}

func writeOutPoint(s Sink, op *OutPoint) error {
	if err := WriteHash(s, &op.Hash); err != nil {
		return err
	}
	return WriteUint32(s, op.Index)
}

func readTxIn(src Source, limits Limits, ti *TxIn) error {
	if err := readOutPoint(src, &ti.PreviousOutPoint); err != nil {
		return err
	}

	script, err := ReadScript(src, limits, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	seq, err := ReadUint32(src)
	if err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}
	ti.Sequence = seq
	return nil
}

// writeTxIn writes the base fields of an input. The witness is written
// separately, after all outputs.
func writeTxIn(s Sink, ti *TxIn) error {
	if err := writeOutPoint(s, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteScript(s, ti.SignatureScript); err != nil {
		return err
	}
	return WriteUint32(s, ti.Sequence)
}

func readTxOut(src Source, limits Limits, to *TxOut) error {
	value, err := ReadInt64(src)
	if err != nil {
		return fmt.Errorf("reading value: %w", err)
	}
	to.Value = value

	script, err := ReadScript(src, limits, "public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

func writeTxOut(s Sink, to *TxOut) error {
	if err := WriteInt64(s, to.Value); err != nil {
		return err
	}
	return WriteScript(s, to.PkScript)
}

func readTxWitness(src Source, limits Limits) (TxWitness, error) {
	items, err := ReadSequence(src, limits, limits.MaxWitnessItems, "witness item",
		func(src Source, item *[]byte) error {
			b, err := ReadVarBytes(src, limits.MaxWitnessItemSize, "witness item")
			if err != nil {
				return err
			}
			*item = b
			return nil
		})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return TxWitness(items), nil
}

func writeTxWitness(s Sink, witness TxWitness) error {
	return WriteSequence(s, witness, func(s Sink, item *[]byte) error {
		return WriteVarBytes(s, *item)
	})
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
