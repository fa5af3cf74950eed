package txscript

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is consensus defined
)

// Script construction errors.
var (
	ErrElementTooBig        = errors.New("txscript: push exceeds max element size")
	ErrInvalidPubKey        = errors.New("txscript: invalid public key")
	ErrUncompressedPubKey   = errors.New("txscript: segwit requires compressed public keys")
	ErrInvalidHashLength    = errors.New("txscript: invalid hash length")
	ErrInvalidMultiSig      = errors.New("txscript: invalid multisig parameters")
	ErrNotWitnessProgram    = errors.New("txscript: script is not a witness program")
	ErrWitnessScriptTooLong = errors.New("txscript: witness script too long")
)

// Program lengths for version 0 witness outputs.
const (
	WitnessV0PubKeyHashLen = 20
	WitnessV0ScriptHashLen = 32
)

// ScriptClass identifies a standard script template.
type ScriptClass byte

const (
	NonStandardTy ScriptClass = iota
	PubKeyHashTy
	ScriptHashTy
	WitnessV0PubKeyHashTy
	WitnessV0ScriptHashTy
	MultiSigTy
)

var scriptClassToName = []string{
	NonStandardTy:         "nonstandard",
	PubKeyHashTy:          "pubkeyhash",
	ScriptHashTy:          "scripthash",
	WitnessV0PubKeyHashTy: "witness_v0_keyhash",
	WitnessV0ScriptHashTy: "witness_v0_scripthash",
	MultiSigTy:            "multisig",
}

// String returns the class name.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return fmt.Sprintf("Invalid ScriptClass (%d)", int(t))
	}
	return scriptClassToName[t]
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// ParseSegwitPubKey parses a public key and requires the 33-byte compressed
// form that witness programs commit to.
func ParseSegwitPubKey(pubKey []byte) (*secp256k1.PublicKey, error) {
	if len(pubKey) == 65 {
		return nil, ErrUncompressedPubKey
	}
	if len(pubKey) != secp256k1.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPubKey, len(pubKey))
	}
	key, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	return key, nil
}

// PayToPubKeyHash returns OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY
// OP_CHECKSIG.
func PayToPubKeyHash(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != ripemd160.Size {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHashLength, len(pubKeyHash))
	}
	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, OP_DATA_20)
	script = append(script, pubKeyHash...)
	return append(script, OP_EQUALVERIFY, OP_CHECKSIG), nil
}

// PayToScriptHash returns OP_HASH160 <hash> OP_EQUAL.
func PayToScriptHash(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != ripemd160.Size {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHashLength, len(scriptHash))
	}
	script := make([]byte, 0, 23)
	script = append(script, OP_HASH160, OP_DATA_20)
	script = append(script, scriptHash...)
	return append(script, OP_EQUAL), nil
}

// PayToWitnessPubKeyHash returns OP_0 <HASH160(pubkey)> for a compressed
// public key.
func PayToWitnessPubKeyHash(pubKey []byte) ([]byte, error) {
	if _, err := ParseSegwitPubKey(pubKey); err != nil {
		return nil, err
	}
	return witnessProgramScript(0, Hash160(pubKey)), nil
}

// PayToWitnessScriptHash returns OP_0 <SHA256(witnessScript)>.
func PayToWitnessScriptHash(witnessScript []byte) ([]byte, error) {
	if len(witnessScript) > MaxWitnessScriptSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrWitnessScriptTooLong, len(witnessScript))
	}
	sum := sha256.Sum256(witnessScript)
	return witnessProgramScript(0, sum[:]), nil
}

// WitnessPubKeyHashScriptCode returns the BIP 143 scriptCode for a P2WPKH
// input, which is the P2PKH script for the same hash.
func WitnessPubKeyHashScriptCode(pubKeyHash []byte) ([]byte, error) {
	return PayToPubKeyHash(pubKeyHash)
}

// MultiSigScript returns OP_k <pubkey>... OP_n OP_CHECKMULTISIG with the keys
// in the given order.
func MultiSigScript(k int, pubKeys [][]byte) ([]byte, error) {
	n := len(pubKeys)
	if k < 1 || k > n || n > MaxPubKeysPerMultiSig {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidMultiSig, k, n)
	}

	b := NewScriptBuilder().AddInt64(int64(k))
	for _, pk := range pubKeys {
		if _, err := ParseSegwitPubKey(pk); err != nil {
			return nil, err
		}
		b.AddData(pk)
	}
	return b.AddInt64(int64(n)).AddOp(OP_CHECKMULTISIG).Script()
}

// SortedMultiSigScript is MultiSigScript with the keys sorted by their
// serialized bytes, so the script does not depend on key order.
func SortedMultiSigScript(k int, pubKeys [][]byte) ([]byte, error) {
	sorted := make([][]byte, len(pubKeys))
	copy(sorted, pubKeys)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i], sorted[j]) < 0
	})
	return MultiSigScript(k, sorted)
}

func witnessProgramScript(version int, program []byte) []byte {
	script := make([]byte, 0, 2+len(program))
	script = append(script, smallIntOpcode(version), byte(len(program)))
	return append(script, program...)
}

// ExtractWitnessProgram returns the version and program of a witness output
// script: a version opcode followed by one direct push of 2 to 40 bytes.
// Version 0 programs must be 20 or 32 bytes.
func ExtractWitnessProgram(script []byte) (int, []byte, error) {
	if len(script) < 4 || len(script) > 42 {
		return 0, nil, ErrNotWitnessProgram
	}
	version, ok := asSmallInt(script[0])
	if !ok {
		return 0, nil, ErrNotWitnessProgram
	}
	if int(script[1]) != len(script)-2 {
		return 0, nil, ErrNotWitnessProgram
	}
	program := script[2:]
	if version == 0 && len(program) != WitnessV0PubKeyHashLen && len(program) != WitnessV0ScriptHashLen {
		return 0, nil, fmt.Errorf("%w: version 0 program of %d bytes", ErrNotWitnessProgram, len(program))
	}
	return version, program, nil
}

// IsPayToPubKeyHash reports whether script is a P2PKH output script.
func IsPayToPubKeyHash(script []byte) bool {
	return len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG
}

// IsPayToScriptHash reports whether script is a P2SH output script.
func IsPayToScriptHash(script []byte) bool {
	return len(script) == 23 &&
		script[0] == OP_HASH160 &&
		script[1] == OP_DATA_20 &&
		script[22] == OP_EQUAL
}

// IsPayToWitnessPubKeyHash reports whether script is a P2WPKH output script.
func IsPayToWitnessPubKeyHash(script []byte) bool {
	return len(script) == 22 && script[0] == OP_0 && script[1] == OP_DATA_20
}

// IsPayToWitnessScriptHash reports whether script is a P2WSH output script.
func IsPayToWitnessScriptHash(script []byte) bool {
	return len(script) == 34 && script[0] == OP_0 && script[1] == OP_DATA_32
}

// isMultiSig reports whether script is a bare multisig script with
// compressed keys, returning k and n.
func isMultiSig(script []byte) (int, int, bool) {
	if len(script) < 3 || script[len(script)-1] != OP_CHECKMULTISIG {
		return 0, 0, false
	}
	k, ok := asSmallInt(script[0])
	if !ok || k == 0 {
		return 0, 0, false
	}
	n, ok := asSmallInt(script[len(script)-2])
	if !ok || n < k {
		return 0, 0, false
	}
	keys := script[1 : len(script)-2]
	if len(keys) != n*(1+secp256k1.PubKeyBytesLenCompressed) {
		return 0, 0, false
	}
	for i := 0; i < n; i++ {
		if keys[i*(1+secp256k1.PubKeyBytesLenCompressed)] != OP_DATA_33 {
			return 0, 0, false
		}
	}
	return k, n, true
}

// ExtractMultiSigPubKeys returns the threshold and keys of a bare multisig
// script in script order.
func ExtractMultiSigPubKeys(script []byte) (int, [][]byte, error) {
	k, n, ok := isMultiSig(script)
	if !ok {
		return 0, nil, fmt.Errorf("%w: not a multisig script", ErrInvalidMultiSig)
	}
	const item = 1 + secp256k1.PubKeyBytesLenCompressed
	pubKeys := make([][]byte, n)
	for i := range pubKeys {
		start := 1 + i*item + 1
		pubKeys[i] = script[start : start+secp256k1.PubKeyBytesLenCompressed]
	}
	return k, pubKeys, nil
}

// GetScriptClass classifies script.
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case IsPayToWitnessPubKeyHash(script):
		return WitnessV0PubKeyHashTy
	case IsPayToWitnessScriptHash(script):
		return WitnessV0ScriptHashTy
	case IsPayToPubKeyHash(script):
		return PubKeyHashTy
	case IsPayToScriptHash(script):
		return ScriptHashTy
	}
	if _, _, ok := isMultiSig(script); ok {
		return MultiSigTy
	}
	return NonStandardTy
}
