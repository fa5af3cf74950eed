package txscript

import (
	"github.com/suffix-labs/btcwire/pkg/keys"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// RawTxInWitnessSignature signs input idx under scriptCode and returns the
// DER signature with the sighash type appended.
func RawTxInWitnessSignature(tx *wire.MsgTx, sigHashes *TxSigHashes, idx int, amount int64,
	scriptCode []byte, hashType SigHashType, key *keys.PrivateKey) ([]byte, error) {

	hash, err := CalcWitnessSigHash(scriptCode, sigHashes, hashType, tx, idx, amount)
	if err != nil {
		return nil, err
	}
	sig := key.Sign(hash)
	return append(sig, byte(hashType)), nil
}

// WitnessSignature signs a P2WPKH input and returns its complete witness.
func WitnessSignature(tx *wire.MsgTx, sigHashes *TxSigHashes, idx int, amount int64,
	hashType SigHashType, key *keys.PrivateKey) (wire.TxWitness, error) {

	desc, err := NewWitnessPubKeyHash(key.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}
	sig, err := RawTxInWitnessSignature(tx, sigHashes, idx, amount, desc.ScriptCode(), hashType, key)
	if err != nil {
		return nil, err
	}
	return desc.Satisfy(sig), nil
}
