package roles

import (
	"fmt"
)

// IoFinalizer locks the input and output sets once construction is done.
type IoFinalizer struct {
	packet *Packet
}

// NewIoFinalizer returns an IoFinalizer for p.
func NewIoFinalizer(p *Packet) *IoFinalizer {
	return &IoFinalizer{packet: p}
}

// Finalize checks the packet has inputs and outputs whose values balance,
// then clears both modifiable flags.
func (f *IoFinalizer) Finalize() error {
	if len(f.packet.Inputs) == 0 || len(f.packet.Tx.TxOut) == 0 {
		return ErrEmptyTransaction
	}
	for i := range f.packet.Tx.TxOut {
		if f.packet.Tx.TxOut[i].Value < 0 {
			return fmt.Errorf("output %d has negative value %d", i, f.packet.Tx.TxOut[i].Value)
		}
	}
	if _, err := f.packet.Fee(); err != nil {
		return err
	}

	f.packet.Modifiable &^= InputsModifiable | OutputsModifiable
	return nil
}

// Finish returns the packet.
func (f *IoFinalizer) Finish() *Packet {
	return f.packet
}
