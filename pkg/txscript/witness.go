package txscript

import (
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/wire"
)

// Sizes used for worst-case satisfaction weight. Item sizes include their
// length prefix.
const (
	maxSigItemLen      = 73 // 72-byte DER signature with sighash byte
	pubKeyItemLen      = 34 // Compressed public key
	scriptSigLenWeight = 4  // Empty scriptSig length byte, weighted by 4
)

// WitnessPubKeyHashStack returns the P2WPKH witness: signature then public
// key.
func WitnessPubKeyHashStack(sig, pubKey []byte) wire.TxWitness {
	return wire.TxWitness{sig, pubKey}
}

// WitnessScriptHashStack returns a P2WSH witness: the items satisfying the
// witness script, then the script itself.
func WitnessScriptHashStack(items [][]byte, witnessScript []byte) wire.TxWitness {
	stack := make(wire.TxWitness, 0, len(items)+1)
	stack = append(stack, items...)
	return append(stack, witnessScript)
}

// WitnessPubKeyHash spends a P2WPKH output for one compressed key.
type WitnessPubKeyHash struct {
	pubKey []byte
	hash   []byte
}

// NewWitnessPubKeyHash validates pubKey and returns its P2WPKH spend
// descriptor.
func NewWitnessPubKeyHash(pubKey []byte) (*WitnessPubKeyHash, error) {
	if _, err := ParseSegwitPubKey(pubKey); err != nil {
		return nil, err
	}
	return &WitnessPubKeyHash{pubKey: pubKey, hash: Hash160(pubKey)}, nil
}

// PubKeyHash returns HASH160 of the key.
func (w *WitnessPubKeyHash) PubKeyHash() []byte {
	return w.hash
}

// PkScript returns the output script.
func (w *WitnessPubKeyHash) PkScript() []byte {
	return witnessProgramScript(0, w.hash)
}

// ScriptCode returns the BIP 143 scriptCode for signing.
func (w *WitnessPubKeyHash) ScriptCode() []byte {
	script, _ := PayToPubKeyHash(w.hash)
	return script
}

// Satisfy returns the witness for sig, which must already carry its
// sighash type byte.
func (w *WitnessPubKeyHash) Satisfy(sig []byte) wire.TxWitness {
	return WitnessPubKeyHashStack(sig, w.pubKey)
}

// MaxSatisfactionWeight returns the worst-case weight the spend adds to a
// transaction: the empty scriptSig plus the witness stack.
func (w *WitnessPubKeyHash) MaxSatisfactionWeight() int {
	return scriptSigLenWeight + 1 + maxSigItemLen + pubKeyItemLen
}

// WitnessScriptHash spends a P2WSH output whose witness script is a k-of-n
// multisig.
type WitnessScriptHash struct {
	k       int
	pubKeys [][]byte
	script  []byte
}

// NewSortedMultiWitnessScriptHash returns the P2WSH descriptor for a
// k-of-n sorted multisig over pubKeys.
func NewSortedMultiWitnessScriptHash(k int, pubKeys [][]byte) (*WitnessScriptHash, error) {
	script, err := SortedMultiSigScript(k, pubKeys)
	if err != nil {
		return nil, err
	}
	if len(script) > MaxWitnessScriptSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrWitnessScriptTooLong, len(script))
	}
	k, sorted, err := ExtractMultiSigPubKeys(script)
	if err != nil {
		return nil, err
	}
	return &WitnessScriptHash{k: k, pubKeys: sorted, script: script}, nil
}

// ParseMultiSigWitnessScript returns the descriptor for an existing
// multisig witness script, keeping its key order.
func ParseMultiSigWitnessScript(script []byte) (*WitnessScriptHash, error) {
	if len(script) > MaxWitnessScriptSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrWitnessScriptTooLong, len(script))
	}
	k, pubKeys, err := ExtractMultiSigPubKeys(script)
	if err != nil {
		return nil, err
	}
	return &WitnessScriptHash{k: k, pubKeys: pubKeys, script: script}, nil
}

// Threshold returns the number of signatures the script requires.
func (w *WitnessScriptHash) Threshold() int {
	return w.k
}

// PubKeys returns the keys in script order. Signatures passed to Satisfy
// follow the same order.
func (w *WitnessScriptHash) PubKeys() [][]byte {
	return w.pubKeys
}

// WitnessScript returns the script the output commits to.
func (w *WitnessScriptHash) WitnessScript() []byte {
	return w.script
}

// PkScript returns the output script.
func (w *WitnessScriptHash) PkScript() []byte {
	script, _ := PayToWitnessScriptHash(w.script)
	return script
}

// ScriptCode returns the BIP 143 scriptCode for signing, which for P2WSH is
// the witness script.
func (w *WitnessScriptHash) ScriptCode() []byte {
	return w.script
}

// Satisfy returns the witness for exactly k signatures, ordered to match
// PubKeys. The leading empty item is consumed by the off-by-one in
// OP_CHECKMULTISIG.
func (w *WitnessScriptHash) Satisfy(sigs [][]byte) (wire.TxWitness, error) {
	if len(sigs) != w.k {
		return nil, fmt.Errorf("%w: %d signatures for %d of %d", ErrInvalidMultiSig, len(sigs), w.k, len(w.pubKeys))
	}
	items := make([][]byte, 0, len(sigs)+1)
	items = append(items, []byte{})
	items = append(items, sigs...)
	return WitnessScriptHashStack(items, w.script), nil
}

// MaxSatisfactionWeight returns the worst-case weight the spend adds: the
// empty scriptSig, the stack item count, the dummy item, k signatures and
// the witness script.
func (w *WitnessScriptHash) MaxSatisfactionWeight() int {
	elements := w.k + 2
	satisfaction := 1 + w.k*maxSigItemLen
	return scriptSigLenWeight +
		wire.CompactSizeLen(uint64(len(w.script))) + len(w.script) +
		wire.CompactSizeLen(uint64(elements)) + satisfaction
}
