package roles

import (
	"bytes"
	"fmt"
)

// Combiner merges packets signed in parallel. Every packet must describe
// the same unsigned transaction.
type Combiner struct {
	packets []*Packet
}

// NewCombiner returns a Combiner over packets.
func NewCombiner(packets []*Packet) *Combiner {
	return &Combiner{packets: packets}
}

// Combine merges the signatures of every packet into a copy of the first
// one. The modifiable flags are intersected, except HasSigHashSingle which
// is carried if any packet set it. The input packets are never modified.
func (c *Combiner) Combine() (*Packet, error) {
	if len(c.packets) == 0 {
		return nil, fmt.Errorf("no packets to combine")
	}

	dst := c.packets[0].Copy()
	for i, src := range c.packets[1:] {
		if err := mergeInto(dst, src); err != nil {
			return nil, fmt.Errorf("packet %d: %w", i+1, err)
		}
	}
	return dst, nil
}

func mergeInto(dst, src *Packet) error {
	if dst.Tx.TxHash() != src.Tx.TxHash() {
		return fmt.Errorf("%w: txid %v and %v", ErrIncompatible, dst.Tx.TxHash(), src.Tx.TxHash())
	}
	if len(dst.Inputs) != len(src.Inputs) {
		return fmt.Errorf("%w: %d and %d inputs", ErrIncompatible, len(dst.Inputs), len(src.Inputs))
	}

	for i := range dst.Inputs {
		d, s := &dst.Inputs[i], &src.Inputs[i]
		if d.SigHashType != s.SigHashType {
			return fmt.Errorf("%w: input %d", ErrConflictingSigHash, i)
		}

		// A finalized input no longer needs partial signatures.
		switch {
		case d.IsFinalized():
			continue
		case s.IsFinalized():
			d.FinalWitness = copyWitness(s.FinalWitness)
			d.PartialSigs = nil
			continue
		}

		for pk, sig := range s.PartialSigs {
			if existing, ok := d.PartialSigs[pk]; ok && !bytes.Equal(existing, sig) {
				return fmt.Errorf("%w: input %d has two signatures for key %x", ErrIncompatible, i, pk)
			}
			if d.PartialSigs == nil {
				d.PartialSigs = make(map[PubKey][]byte)
			}
			d.PartialSigs[pk] = bytes.Clone(sig)
		}
	}

	single := (dst.Modifiable | src.Modifiable) & HasSigHashSingle
	dst.Modifiable = (dst.Modifiable & src.Modifiable) | single
	return nil
}
