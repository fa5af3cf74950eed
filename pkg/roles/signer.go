package roles

import (
	"bytes"
	"fmt"

	"github.com/suffix-labs/btcwire/pkg/keys"
	"github.com/suffix-labs/btcwire/pkg/txscript"
)

// Signer adds BIP 143 signatures to inputs. Several signers may work on
// copies of the same packet; the Combiner merges their results.
type Signer struct {
	packet    *Packet
	sigHashes *txscript.TxSigHashes
}

// NewSigner returns a Signer for p.
func NewSigner(p *Packet) *Signer {
	return &Signer{packet: p}
}

// SignInput signs input idx with key, which must be the P2WPKH key or one of
// the P2WSH multisig keys, and stores the signature under the key.
func (s *Signer) SignInput(idx int, key *keys.PrivateKey) error {
	if idx < 0 || idx >= len(s.packet.Inputs) {
		return fmt.Errorf("%w: %d of %d", txscript.ErrInvalidInputIndex, idx, len(s.packet.Inputs))
	}
	input := &s.packet.Inputs[idx]
	pubKey := key.PublicKey().Bytes()

	scriptCode, err := signingScriptCode(input, pubKey)
	if err != nil {
		return fmt.Errorf("input %d: %w", idx, err)
	}

	if s.sigHashes == nil {
		s.sigHashes = txscript.NewTxSigHashes(s.packet.Tx)
	}
	sig, err := txscript.RawTxInWitnessSignature(s.packet.Tx, s.sigHashes, idx,
		input.WitnessUtxo.Value, scriptCode, input.SigHashType, key)
	if err != nil {
		return fmt.Errorf("input %d: %w", idx, err)
	}

	var pk PubKey
	copy(pk[:], pubKey)
	input.PartialSigs[pk] = sig

	s.updateModifiable(input.SigHashType)
	return nil
}

// signingScriptCode returns the scriptCode input is signed under, after
// checking pubKey can spend it.
func signingScriptCode(input *Input, pubKey []byte) ([]byte, error) {
	if input.WitnessScript == nil {
		desc, err := txscript.NewWitnessPubKeyHash(pubKey)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(desc.PkScript(), input.WitnessUtxo.PkScript) {
			return nil, ErrKeyMismatch
		}
		return desc.ScriptCode(), nil
	}

	desc, err := txscript.ParseMultiSigWitnessScript(input.WitnessScript)
	if err != nil {
		return nil, err
	}
	for _, pk := range desc.PubKeys() {
		if bytes.Equal(pk, pubKey) {
			return desc.ScriptCode(), nil
		}
	}
	return nil, ErrKeyMismatch
}

// updateModifiable clears what the signature commits to. Without
// ANYONECANPAY it covers every input; SIGHASH_ALL also covers every output.
func (s *Signer) updateModifiable(hashType txscript.SigHashType) {
	base := hashType & 0x1f
	if hashType&txscript.SigHashAnyOneCanPay == 0 {
		s.packet.Modifiable &^= InputsModifiable
	}
	switch base {
	case txscript.SigHashAll:
		s.packet.Modifiable &^= OutputsModifiable
	case txscript.SigHashSingle:
		s.packet.Modifiable |= HasSigHashSingle
	}
}

// Finish returns the packet.
func (s *Signer) Finish() *Packet {
	return s.packet
}
