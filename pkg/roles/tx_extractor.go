package roles

import (
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/wire"
)

// TxExtractor produces the signed transaction from a finalized packet.
type TxExtractor struct {
	packet *Packet
}

// NewTxExtractor returns a TxExtractor for p.
func NewTxExtractor(p *Packet) *TxExtractor {
	return &TxExtractor{packet: p}
}

// Extract returns a copy of the transaction with every input's witness set.
// The packet is left unchanged.
func (e *TxExtractor) Extract() (*wire.MsgTx, error) {
	if e.packet.Modifiable&(InputsModifiable|OutputsModifiable) != 0 {
		return nil, fmt.Errorf("%w: flags 0x%02x", ErrStillModifiable, e.packet.Modifiable)
	}

	tx := e.packet.Tx.Copy()
	for i := range e.packet.Inputs {
		input := &e.packet.Inputs[i]
		if !input.IsFinalized() {
			return nil, fmt.Errorf("%w: input %d", ErrNotFinalized, i)
		}
		tx.TxIn[i].Witness = input.FinalWitness
	}
	return tx, nil
}

// ExtractBytes returns the serialized signed transaction.
func (e *TxExtractor) ExtractBytes() ([]byte, error) {
	tx, err := e.Extract()
	if err != nil {
		return nil, err
	}
	return tx.Bytes()
}
