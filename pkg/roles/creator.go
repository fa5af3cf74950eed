// Package roles builds segwit v0 transactions through a sequence of roles,
// each of which may run in a different process or on a different device:
//
//   - Creator: sets the version and lock time
//   - Constructor: adds inputs and outputs
//   - IO Finalizer: locks the input and output sets
//   - Signer: adds BIP 143 signatures
//   - Combiner: merges signatures from parallel signers
//   - Spend Finalizer: builds each input's witness
//   - Transaction Extractor: produces the signed transaction
package roles

import (
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// Creator initializes an empty packet.
type Creator struct {
	version  int32
	lockTime uint32
}

// NewCreator returns a Creator for version 2 transactions with no lock
// time.
func NewCreator() *Creator {
	return &Creator{version: 2}
}

// WithVersion sets the transaction version.
func (c *Creator) WithVersion(version int32) *Creator {
	c.version = version
	return c
}

// WithLockTime sets nLockTime, a block height below 500000000 and a UNIX
// timestamp otherwise.
func (c *Creator) WithLockTime(lockTime uint32) *Creator {
	c.lockTime = lockTime
	return c
}

// Create returns a packet with no inputs or outputs that accepts both.
func (c *Creator) Create() *Packet {
	tx := wire.NewMsgTx(c.version)
	tx.LockTime = c.lockTime
	return &Packet{
		Tx:         tx,
		Modifiable: InputsModifiable | OutputsModifiable,
	}
}
