package roles

import (
	"bytes"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/suffix-labs/btcwire/pkg/txscript"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// Role errors.
var (
	ErrNotModifiable      = errors.New("roles: transaction is not modifiable")
	ErrStillModifiable    = errors.New("roles: inputs or outputs are not locked")
	ErrUnsupportedScript  = errors.New("roles: unsupported output script")
	ErrMissingSignatures  = errors.New("roles: not enough signatures")
	ErrKeyMismatch        = errors.New("roles: key does not match input")
	ErrIncompatible       = errors.New("roles: packets describe different transactions")
	ErrNotFinalized       = errors.New("roles: input not finalized")
	ErrInsufficientValue  = errors.New("roles: outputs exceed inputs")
	ErrEmptyTransaction   = errors.New("roles: transaction has no inputs or outputs")
	ErrConflictingSigHash = errors.New("roles: conflicting sighash types")
)

// Modifiable records which parts of the transaction may still change.
type Modifiable uint8

const (
	// InputsModifiable allows inputs to be added.
	InputsModifiable Modifiable = 1 << iota
	// OutputsModifiable allows outputs to be added.
	OutputsModifiable
	// HasSigHashSingle is set once any signature uses SIGHASH_SINGLE, which
	// pins the output at the signer's index.
	HasSigHashSingle
)

// PubKey is a compressed public key used as a map key.
type PubKey [secp256k1.PubKeyBytesLenCompressed]byte

// Packet is a transaction under construction together with the data each
// role needs to sign and finalize it.
type Packet struct {
	// Tx is the unsigned transaction. Witnesses stay empty until
	// extraction.
	Tx *wire.MsgTx

	Inputs  []Input
	Outputs []Output

	Modifiable Modifiable
}

// Input carries per-input signing data.
type Input struct {
	// WitnessUtxo is the output being spent.
	WitnessUtxo wire.TxOut

	// WitnessScript is the P2WSH script, nil for P2WPKH.
	WitnessScript []byte

	SigHashType txscript.SigHashType

	// PartialSigs maps a signer's key to its signature with the sighash
	// byte appended.
	PartialSigs map[PubKey][]byte

	// FinalWitness is set by the spend finalizer.
	FinalWitness wire.TxWitness
}

// Output carries per-output metadata.
type Output struct {
	// Address is the encoded destination, empty when the output was added
	// by script.
	Address string
}

// IsFinalized reports whether the input has its final witness.
func (in *Input) IsFinalized() bool {
	return in.FinalWitness != nil
}

// Fee returns the input total minus the output total.
func (p *Packet) Fee() (int64, error) {
	var in, out int64
	for i := range p.Inputs {
		in += p.Inputs[i].WitnessUtxo.Value
	}
	for i := range p.Tx.TxOut {
		out += p.Tx.TxOut[i].Value
	}
	if out > in {
		return 0, ErrInsufficientValue
	}
	return in - out, nil
}

// Copy returns a deep copy of the packet.
func (p *Packet) Copy() *Packet {
	cp := &Packet{
		Tx:         p.Tx.Copy(),
		Inputs:     make([]Input, len(p.Inputs)),
		Outputs:    append([]Output(nil), p.Outputs...),
		Modifiable: p.Modifiable,
	}
	for i := range p.Inputs {
		in := &p.Inputs[i]
		cp.Inputs[i] = Input{
			WitnessUtxo: wire.TxOut{
				Value:    in.WitnessUtxo.Value,
				PkScript: bytes.Clone(in.WitnessUtxo.PkScript),
			},
			WitnessScript: bytes.Clone(in.WitnessScript),
			SigHashType:   in.SigHashType,
			FinalWitness:  copyWitness(in.FinalWitness),
		}
		if in.PartialSigs != nil {
			sigs := make(map[PubKey][]byte, len(in.PartialSigs))
			for pk, sig := range in.PartialSigs {
				sigs[pk] = bytes.Clone(sig)
			}
			cp.Inputs[i].PartialSigs = sigs
		}
	}
	return cp
}

func copyWitness(w wire.TxWitness) wire.TxWitness {
	if w == nil {
		return nil
	}
	cp := make(wire.TxWitness, len(w))
	for i, item := range w {
		cp[i] = bytes.Clone(item)
	}
	return cp
}
