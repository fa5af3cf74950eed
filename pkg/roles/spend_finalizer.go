package roles

import (
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/txscript"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// SpendFinalizer turns each input's partial signatures into its final
// witness.
type SpendFinalizer struct {
	packet *Packet
}

// NewSpendFinalizer returns a SpendFinalizer for p.
func NewSpendFinalizer(p *Packet) *SpendFinalizer {
	return &SpendFinalizer{packet: p}
}

// Finalize builds the witness for every input that is not yet finalized:
//   - P2WPKH: <sig> <pubkey>
//   - P2WSH multisig: <> <sig>... <witnessScript>, the first k signatures
//     in key order
//
// Partial signatures are dropped once an input is finalized.
func (f *SpendFinalizer) Finalize() error {
	for i := range f.packet.Inputs {
		input := &f.packet.Inputs[i]
		if input.IsFinalized() {
			continue
		}

		var (
			witness wire.TxWitness
			err     error
		)
		if input.WitnessScript == nil {
			witness, err = finalizeWitnessPubKeyHash(input)
		} else {
			witness, err = finalizeWitnessScriptHash(input)
		}
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}

		input.FinalWitness = witness
		input.PartialSigs = nil
	}
	return nil
}

func finalizeWitnessPubKeyHash(input *Input) (wire.TxWitness, error) {
	if len(input.PartialSigs) != 1 {
		return nil, fmt.Errorf("%w: P2WPKH needs 1 signature, have %d",
			ErrMissingSignatures, len(input.PartialSigs))
	}
	var witness wire.TxWitness
	for pk, sig := range input.PartialSigs {
		witness = txscript.WitnessPubKeyHashStack(sig, pk[:])
	}
	return witness, nil
}

func finalizeWitnessScriptHash(input *Input) (wire.TxWitness, error) {
	desc, err := txscript.ParseMultiSigWitnessScript(input.WitnessScript)
	if err != nil {
		return nil, err
	}

	sigs := make([][]byte, 0, desc.Threshold())
	for _, pubKey := range desc.PubKeys() {
		if len(sigs) == desc.Threshold() {
			break
		}
		var pk PubKey
		copy(pk[:], pubKey)
		if sig, ok := input.PartialSigs[pk]; ok {
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) < desc.Threshold() {
		return nil, fmt.Errorf("%w: %d of %d", ErrMissingSignatures, len(sigs), desc.Threshold())
	}
	return desc.Satisfy(sigs)
}

// Finish returns the packet.
func (f *SpendFinalizer) Finish() *Packet {
	return f.packet
}
