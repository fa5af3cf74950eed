package roles

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/address"
	"github.com/suffix-labs/btcwire/pkg/chainhash"
	"github.com/suffix-labs/btcwire/pkg/txscript"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// Constructor adds inputs and outputs to a packet.
type Constructor struct {
	packet *Packet
}

// NewConstructor returns a Constructor for a packet from the Creator.
func NewConstructor(p *Packet) *Constructor {
	return &Constructor{packet: p}
}

// AddInput spends the output prevIndex of prevTx, which pays utxo. Only
// P2WPKH and P2WSH outputs are accepted; witnessScript is required for
// P2WSH and must hash to the output's program. The input signs with
// SIGHASH_ALL unless SetSigHashType changes it.
func (c *Constructor) AddInput(prevTx chainhash.Hash, prevIndex uint32, utxo wire.TxOut,
	witnessScript []byte, sequence uint32) error {

	if c.packet.Modifiable&InputsModifiable == 0 {
		return fmt.Errorf("%w: inputs are locked", ErrNotModifiable)
	}

	switch txscript.GetScriptClass(utxo.PkScript) {
	case txscript.WitnessV0PubKeyHashTy:
		if witnessScript != nil {
			return fmt.Errorf("%w: P2WPKH input with a witness script", ErrUnsupportedScript)
		}
	case txscript.WitnessV0ScriptHashTy:
		if _, err := txscript.ParseMultiSigWitnessScript(witnessScript); err != nil {
			return err
		}
		sum := sha256.Sum256(witnessScript)
		if !bytes.Equal(sum[:], utxo.PkScript[2:]) {
			return fmt.Errorf("%w: witness script does not match output program", ErrUnsupportedScript)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScript, txscript.GetScriptClass(utxo.PkScript))
	}

	txIn := wire.NewTxIn(wire.NewOutPoint(&prevTx, prevIndex), nil, nil)
	txIn.Sequence = sequence
	c.packet.Tx.AddTxIn(txIn)

	c.packet.Inputs = append(c.packet.Inputs, Input{
		WitnessUtxo:   utxo,
		WitnessScript: witnessScript,
		SigHashType:   txscript.SigHashAll,
		PartialSigs:   make(map[PubKey][]byte),
	})
	return nil
}

// SetSigHashType changes the sighash type of an unsigned input.
func (c *Constructor) SetSigHashType(idx int, hashType txscript.SigHashType) error {
	if idx < 0 || idx >= len(c.packet.Inputs) {
		return fmt.Errorf("%w: %d of %d", txscript.ErrInvalidInputIndex, idx, len(c.packet.Inputs))
	}
	input := &c.packet.Inputs[idx]
	if len(input.PartialSigs) > 0 {
		return fmt.Errorf("%w: input %d is already signed", ErrConflictingSigHash, idx)
	}
	input.SigHashType = hashType
	return nil
}

// AddOutput pays value to pkScript.
func (c *Constructor) AddOutput(value int64, pkScript []byte) error {
	return c.addOutput(value, pkScript, "")
}

// AddPayment pays value to addr.
func (c *Constructor) AddPayment(value int64, addr address.Address) error {
	pkScript, err := addr.PkScript()
	if err != nil {
		return err
	}
	return c.addOutput(value, pkScript, addr.String())
}

func (c *Constructor) addOutput(value int64, pkScript []byte, addr string) error {
	if c.packet.Modifiable&OutputsModifiable == 0 {
		return fmt.Errorf("%w: outputs are locked", ErrNotModifiable)
	}
	c.packet.Tx.AddTxOut(wire.NewTxOut(value, pkScript))
	c.packet.Outputs = append(c.packet.Outputs, Output{Address: addr})
	return nil
}

// Finish returns the packet.
func (c *Constructor) Finish() *Packet {
	return c.packet
}
