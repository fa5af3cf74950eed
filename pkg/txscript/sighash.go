package txscript

import (
	"errors"
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// SigHashType selects which parts of a transaction a signature commits to.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

// ErrInvalidInputIndex is returned when the input being signed does not
// exist.
var ErrInvalidInputIndex = errors.New("txscript: input index out of range")

// TxSigHashes holds the three transaction-wide digests that BIP 143 reuses
// for every input, so signing n inputs hashes the transaction once.
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash // Double hash of every outpoint
	HashSequence chainhash.Hash // Double hash of every sequence number
	HashOutputs  chainhash.Hash // Double hash of every serialized output
}

// NewTxSigHashes computes the shared digests for tx.
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	return &TxSigHashes{
		HashPrevOuts: computePrevOutsDigest(tx.TxIn),
		HashSequence: computeSequenceDigest(tx.TxIn),
		HashOutputs:  computeOutputsDigest(tx.TxOut),
	}
}

// computePrevOutsDigest hashes hash || index for every input.
func computePrevOutsDigest(inputs []wire.TxIn) chainhash.Hash {
	h := chainhash.NewDoubleHasher()
	s := wire.NewWriterSink(h)
	for i := range inputs {
		op := &inputs[i].PreviousOutPoint
		_ = wire.WriteHash(s, &op.Hash)
		_ = wire.WriteUint32(s, op.Index)
	}
	return h.Sum()
}

// computeSequenceDigest hashes the sequence number of every input.
func computeSequenceDigest(inputs []wire.TxIn) chainhash.Hash {
	h := chainhash.NewDoubleHasher()
	s := wire.NewWriterSink(h)
	for i := range inputs {
		_ = wire.WriteUint32(s, inputs[i].Sequence)
	}
	return h.Sum()
}

// computeOutputsDigest hashes value || script for every output.
func computeOutputsDigest(outputs []wire.TxOut) chainhash.Hash {
	h := chainhash.NewDoubleHasher()
	s := wire.NewWriterSink(h)
	for i := range outputs {
		writeTxOut(s, &outputs[i])
	}
	return h.Sum()
}

func writeTxOut(s wire.Sink, out *wire.TxOut) {
	_ = wire.WriteInt64(s, out.Value)
	_ = wire.WriteVarBytes(s, out.PkScript)
}

// CalcWitnessSigHash returns the BIP 143 signature hash for input idx
// spending amount under scriptCode.
//
// Preimage:
//
//	version || hashPrevouts || hashSequence || outpoint || scriptCode ||
//	amount || sequence || hashOutputs || lock time || sighash type
//
// AnyOneCanPay blanks hashPrevouts and hashSequence; None and Single blank
// hashSequence. Single commits only to the output at idx, or to nothing
// when there is none.
func CalcWitnessSigHash(scriptCode []byte, sigHashes *TxSigHashes, hashType SigHashType,
	tx *wire.MsgTx, idx int, amount int64) (chainhash.Hash, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		return chainhash.Hash{}, fmt.Errorf("%w: %d of %d", ErrInvalidInputIndex, idx, len(tx.TxIn))
	}
	if sigHashes == nil {
		sigHashes = NewTxSigHashes(tx)
	}

	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	base := hashType & sigHashMask

	var zero chainhash.Hash
	hashPrevOuts := &zero
	if !anyoneCanPay {
		hashPrevOuts = &sigHashes.HashPrevOuts
	}
	hashSequence := &zero
	if !anyoneCanPay && base != SigHashSingle && base != SigHashNone {
		hashSequence = &sigHashes.HashSequence
	}
	hashOutputs := &zero
	switch {
	case base != SigHashSingle && base != SigHashNone:
		hashOutputs = &sigHashes.HashOutputs
	case base == SigHashSingle && idx < len(tx.TxOut):
		h := chainhash.NewDoubleHasher()
		writeTxOut(wire.NewWriterSink(h), &tx.TxOut[idx])
		single := h.Sum()
		hashOutputs = &single
	}

	txIn := &tx.TxIn[idx]

	h := chainhash.NewDoubleHasher()
	s := wire.NewWriterSink(h)
	_ = wire.WriteInt32(s, tx.Version)
	_ = wire.WriteHash(s, hashPrevOuts)
	_ = wire.WriteHash(s, hashSequence)
	_ = wire.WriteHash(s, &txIn.PreviousOutPoint.Hash)
	_ = wire.WriteUint32(s, txIn.PreviousOutPoint.Index)
	_ = wire.WriteVarBytes(s, scriptCode)
	_ = wire.WriteInt64(s, amount)
	_ = wire.WriteUint32(s, txIn.Sequence)
	_ = wire.WriteHash(s, hashOutputs)
	_ = wire.WriteUint32(s, tx.LockTime)
	_ = wire.WriteUint32(s, uint32(hashType))

	return h.Sum(), nil
}
