package txscript

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/keys"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

var testLimits = wire.Limits{
	MaxMessagePayload:  32 << 20,
	MaxScriptSize:      10000,
	MaxWitnessItemSize: 11000,
	MaxWitnessItems:    500000,
	MaxTxIns:           100000,
	MaxTxOuts:          100000,
	MaxBlockTxs:        100000,
	MaxHeaders:         2000,
	MaxPrealloc:        1024,
}

// Public keys for private keys 1, 2 and 3.
const (
	pubKey1 = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	pubKey2 = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	pubKey3 = "02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestHash160(t *testing.T) {
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6",
		hex.EncodeToString(Hash160(mustHex(t, pubKey1))))
}

func TestLegacyTemplates(t *testing.T) {
	hash := Hash160(mustHex(t, pubKey1))

	p2pkh, err := PayToPubKeyHash(hash)
	require.NoError(t, err)
	assert.Equal(t, "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac", hex.EncodeToString(p2pkh))
	assert.Equal(t, PubKeyHashTy, GetScriptClass(p2pkh))

	p2sh, err := PayToScriptHash(hash)
	require.NoError(t, err)
	assert.Equal(t, "a914751e76e8199196d454941c45d1b3a323f1433bd687", hex.EncodeToString(p2sh))
	assert.Equal(t, ScriptHashTy, GetScriptClass(p2sh))

	_, err = PayToScriptHash(hash[:19])
	require.ErrorIs(t, err, ErrInvalidHashLength)
}

func TestPayToWitnessPubKeyHash(t *testing.T) {
	script, err := PayToWitnessPubKeyHash(mustHex(t, pubKey1))
	require.NoError(t, err)
	assert.Equal(t, "0014751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(script))
	assert.True(t, IsPayToWitnessPubKeyHash(script))
	assert.Equal(t, WitnessV0PubKeyHashTy, GetScriptClass(script))

	version, program, err := ExtractWitnessProgram(script)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.Equal(t, Hash160(mustHex(t, pubKey1)), program)
}

func TestPayToWitnessPubKeyHashRejectsBadKeys(t *testing.T) {
	priv, err := keys.PrivateKeyFromBytes(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)

	_, err = PayToWitnessPubKeyHash(priv.PublicKey().Uncompressed())
	require.ErrorIs(t, err, ErrUncompressedPubKey)

	_, err = PayToWitnessPubKeyHash(make([]byte, 20))
	require.ErrorIs(t, err, ErrInvalidPubKey)

	// Right length, not on the curve.
	notOnCurve := append([]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...)
	_, err = PayToWitnessPubKeyHash(notOnCurve)
	require.ErrorIs(t, err, ErrInvalidPubKey)
}

func TestPayToWitnessScriptHash(t *testing.T) {
	witnessScript := append(append([]byte{OP_DATA_33}, mustHex(t, pubKey1)...), OP_CHECKSIG)

	script, err := PayToWitnessScriptHash(witnessScript)
	require.NoError(t, err)
	assert.Equal(t, "00201863143c14c5166804bd19203356da136c985678cd4d27a1b8c6329604903262",
		hex.EncodeToString(script))
	assert.Equal(t, WitnessV0ScriptHashTy, GetScriptClass(script))

	_, err = PayToWitnessScriptHash(make([]byte, MaxWitnessScriptSize+1))
	require.ErrorIs(t, err, ErrWitnessScriptTooLong)
}

func TestWitnessPubKeyHashScriptCode(t *testing.T) {
	hash := mustHex(t, "1d0f172a0ecb48aee1be1f2687d2963ae33f71a1")
	code, err := WitnessPubKeyHashScriptCode(hash)
	require.NoError(t, err)
	assert.Equal(t, "76a9141d0f172a0ecb48aee1be1f2687d2963ae33f71a188ac", hex.EncodeToString(code))
	assert.True(t, IsPayToPubKeyHash(code))
	assert.Equal(t, PubKeyHashTy, GetScriptClass(code))

	_, err = PayToPubKeyHash(hash[:19])
	require.ErrorIs(t, err, ErrInvalidHashLength)
}

func TestSortedMultiSig(t *testing.T) {
	const want = "5221" + pubKey1 + "21" + pubKey2 + "21" + pubKey3 + "53ae"

	unordered := [][]byte{mustHex(t, pubKey3), mustHex(t, pubKey1), mustHex(t, pubKey2)}
	script, err := SortedMultiSigScript(2, unordered)
	require.NoError(t, err)
	assert.Equal(t, want, hex.EncodeToString(script))
	assert.Equal(t, MultiSigTy, GetScriptClass(script))

	// The caller's slice keeps its order.
	assert.Equal(t, mustHex(t, pubKey3), unordered[0])

	for _, k := range []int{0, 4} {
		_, err := SortedMultiSigScript(k, unordered)
		require.ErrorIs(t, err, ErrInvalidMultiSig, "k=%d", k)
	}
}

func TestSortedMultiWitnessScriptHash(t *testing.T) {
	desc, err := NewSortedMultiWitnessScriptHash(2, [][]byte{
		mustHex(t, pubKey2), mustHex(t, pubKey3), mustHex(t, pubKey1),
	})
	require.NoError(t, err)

	assert.Len(t, desc.WitnessScript(), 105)
	assert.Equal(t, desc.WitnessScript(), desc.ScriptCode())
	assert.Equal(t, "002012c2ffbc6ec1cf5d746dfbd49b1063356212ea55f43023ffc0145934af20c572",
		hex.EncodeToString(desc.PkScript()))

	// scriptSig 4 + script 1+105 + item count 1 + dummy 1 + two signatures 2*73.
	assert.Equal(t, 258, desc.MaxSatisfactionWeight())

	sigA, sigB := []byte{0x30, 0x01}, []byte{0x30, 0x02}
	witness, err := desc.Satisfy([][]byte{sigA, sigB})
	require.NoError(t, err)
	require.Len(t, witness, 4)
	assert.Empty(t, witness[0])
	assert.Equal(t, sigA, witness[1])
	assert.Equal(t, sigB, witness[2])
	assert.Equal(t, desc.WitnessScript(), witness[3])

	_, err = desc.Satisfy([][]byte{sigA})
	require.ErrorIs(t, err, ErrInvalidMultiSig)

	assert.Equal(t, 2, desc.Threshold())
	assert.Equal(t, [][]byte{mustHex(t, pubKey1), mustHex(t, pubKey2), mustHex(t, pubKey3)}, desc.PubKeys())
}

func TestParseMultiSigWitnessScript(t *testing.T) {
	// Unsorted keys keep their script order.
	script, err := MultiSigScript(1, [][]byte{mustHex(t, pubKey3), mustHex(t, pubKey1)})
	require.NoError(t, err)

	desc, err := ParseMultiSigWitnessScript(script)
	require.NoError(t, err)
	assert.Equal(t, 1, desc.Threshold())
	assert.Equal(t, [][]byte{mustHex(t, pubKey3), mustHex(t, pubKey1)}, desc.PubKeys())
	assert.Equal(t, script, desc.WitnessScript())

	_, err = ParseMultiSigWitnessScript([]byte{OP_1, OP_CHECKMULTISIG})
	require.ErrorIs(t, err, ErrInvalidMultiSig)

	_, err = ParseMultiSigWitnessScript(make([]byte, MaxWitnessScriptSize+1))
	require.ErrorIs(t, err, ErrWitnessScriptTooLong)
}

func TestWitnessPubKeyHashDescriptor(t *testing.T) {
	desc, err := NewWitnessPubKeyHash(mustHex(t, pubKey1))
	require.NoError(t, err)

	assert.Equal(t, "0014751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(desc.PkScript()))
	assert.Equal(t, "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac", hex.EncodeToString(desc.ScriptCode()))
	assert.Equal(t, 112, desc.MaxSatisfactionWeight())

	sig := []byte{0x30, 0x44, 0x01}
	assert.Equal(t, wire.TxWitness{sig, mustHex(t, pubKey1)}, desc.Satisfy(sig))
}

func TestWitnessScriptHashStackOrder(t *testing.T) {
	stack := WitnessScriptHashStack([][]byte{{1}, {2}}, []byte{OP_1})
	assert.Equal(t, wire.TxWitness{{1}, {2}, {OP_1}}, stack)
	assert.Equal(t, wire.TxWitness{{9}, {8}}, WitnessPubKeyHashStack([]byte{9}, []byte{8}))
}

func TestExtractWitnessProgramRejects(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"empty", ""},
		{"p2pkh", "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac"},
		{"length byte mismatch", "0015751e76e8199196d454941c45d1b3a323f1433bd6"},
		{"v0 of 21 bytes", "0015751e76e8199196d454941c45d1b3a323f1433bd600"},
		{"not a version opcode", "4f14751e76e8199196d454941c45d1b3a323f1433bd6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ExtractWitnessProgram(mustHex(t, tt.script))
			require.ErrorIs(t, err, ErrNotWitnessProgram)
		})
	}

	// Future versions pass through.
	version, program, err := ExtractWitnessProgram(mustHex(t, "5102abcd"))
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, []byte{0xab, 0xcd}, program)
}

func TestScriptBuilderPushes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "00"},
		{"zero byte", []byte{0}, "00"},
		{"small int", []byte{5}, "55"},
		{"sixteen", []byte{16}, "60"},
		{"negative one", []byte{0x81}, "4f"},
		{"one byte", []byte{17}, "0111"},
		{"seventy five", bytes.Repeat([]byte{1}, 75), "4b" + hex.EncodeToString(bytes.Repeat([]byte{1}, 75))},
		{"pushdata1", bytes.Repeat([]byte{1}, 76), "4c4c" + hex.EncodeToString(bytes.Repeat([]byte{1}, 76))},
		{"pushdata2", bytes.Repeat([]byte{1}, 256), "4d0001" + hex.EncodeToString(bytes.Repeat([]byte{1}, 256))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := NewScriptBuilder().AddData(tt.data).Script()
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(script))
		})
	}

	_, err := NewScriptBuilder().AddData(make([]byte, MaxScriptElementSize+1)).AddOp(OP_1).Script()
	require.ErrorIs(t, err, ErrElementTooBig)
}

func TestScriptBuilderInts(t *testing.T) {
	tests := []struct {
		v    int64
		want string
	}{
		{0, "00"},
		{-1, "4f"},
		{1, "51"},
		{16, "60"},
		{17, "0111"},
		{-2, "0182"},
		{127, "017f"},
		{128, "028000"},
		{255, "02ff00"},
		{-255, "02ff80"},
		{256, "020001"},
	}

	for _, tt := range tests {
		script, err := NewScriptBuilder().AddInt64(tt.v).Script()
		require.NoError(t, err)
		assert.Equal(t, tt.want, hex.EncodeToString(script), "value %d", tt.v)
	}
}

func TestScriptClassString(t *testing.T) {
	assert.Equal(t, "witness_v0_keyhash", WitnessV0PubKeyHashTy.String())
	assert.Equal(t, "nonstandard", GetScriptClass([]byte{OP_1}).String())
	assert.Equal(t, "Invalid ScriptClass (99)", ScriptClass(99).String())
}

// bip143Tx is the unsigned transaction from the native P2WPKH example in
// BIP 143. Input 1 spends 6 BTC from a P2WPKH output.
const bip143Tx = "0100000002fff7f7881a8099afa6940d42d1e7f6362bec38171ea3edf433541db4e4ad969f0000000000eeffffffef51e1b804cc89d182d279655c3aa89e815b1b309fe287d9b2b55d57b90ec68a0100000000ffffffff02202cb206000000001976a9148280b37df378db99f66f85c95a783a76ac7a6d5988ac9093510d000000001976a9143bde42dbee7e4dbe6a21b2d50ce2f0167faa815988ac11000000"

const (
	bip143PrivKey = "619c335025c7f4012e556c2a58b2506e30b8511b53ade95ea316fd8c3286feb9"
	bip143PubKey  = "025476c2e83188368da1ff3e292e7acafcdb3566bb0ad253f62fc70f07aeee6357"
	bip143Amount  = 600000000
)

func TestBIP143SigHash(t *testing.T) {
	tx, err := wire.DecodeTx(mustHex(t, bip143Tx), testLimits)
	require.NoError(t, err)

	sigHashes := NewTxSigHashes(tx)
	assert.Equal(t, "96b827c8483d4e9b96712b6713a7b68d6e8003a781feba36c31143470b4efd37",
		hex.EncodeToString(sigHashes.HashPrevOuts[:]))
	assert.Equal(t, "52b0a642eea2fb7ae638c36f6252b6750293dbe574a806984b8e4d8548339a3b",
		hex.EncodeToString(sigHashes.HashSequence[:]))
	assert.Equal(t, "863ef3e1a92afbfdb97f31ad0fc7683ee943e9abcf2501590ff8f6551f47e5e5",
		hex.EncodeToString(sigHashes.HashOutputs[:]))

	desc, err := NewWitnessPubKeyHash(mustHex(t, bip143PubKey))
	require.NoError(t, err)
	assert.Equal(t, "1d0f172a0ecb48aee1be1f2687d2963ae33f71a1", hex.EncodeToString(desc.PubKeyHash()))

	tests := []struct {
		hashType SigHashType
		want     string
	}{
		{SigHashAll, "c37af31116d1b27caf68aae9e3ac82f1477929014d5b917657d0eb49478cb670"},
		{SigHashNone, "6ff11a9b87fb510a3a31af006bd3811b632f8a39d88a2bfda49cee203dcc356e"},
		{SigHashSingle, "f4fe57286dd2ca8ac0e3dfccd54c352fcdcacbed80f194e264b75d7a7c74e4ce"},
		{SigHashAll | SigHashAnyOneCanPay, "fc5b6bbc855883bcfdaefb77071740ccde4929f15e6a13286584e779b2529d91"},
		{SigHashNone | SigHashAnyOneCanPay, "4abb5ef58a968f8e1ab88a9fb72f2ce74b3022e65d334ac7b8aeda747515dc15"},
		{SigHashSingle | SigHashAnyOneCanPay, "79ff9ff708f79ce8f7a4f90d62028533a99d7340b7fb3d819dfd9a599a78e39c"},
	}

	for _, tt := range tests {
		hash, err := CalcWitnessSigHash(desc.ScriptCode(), sigHashes, tt.hashType, tx, 1, bip143Amount)
		require.NoError(t, err)
		assert.Equal(t, tt.want, hex.EncodeToString(hash[:]), "hash type 0x%x", uint32(tt.hashType))
	}

	// A nil cache computes the same digests.
	hash, err := CalcWitnessSigHash(desc.ScriptCode(), nil, SigHashAll, tx, 1, bip143Amount)
	require.NoError(t, err)
	assert.Equal(t, tests[0].want, hex.EncodeToString(hash[:]))

	_, err = CalcWitnessSigHash(desc.ScriptCode(), sigHashes, SigHashAll, tx, 2, bip143Amount)
	require.ErrorIs(t, err, ErrInvalidInputIndex)
}

func TestWitnessSignature(t *testing.T) {
	tx, err := wire.DecodeTx(mustHex(t, bip143Tx), testLimits)
	require.NoError(t, err)
	txid := tx.TxHash()

	priv, err := keys.PrivateKeyFromBytes(mustHex(t, bip143PrivKey))
	require.NoError(t, err)
	require.Equal(t, bip143PubKey, hex.EncodeToString(priv.PublicKey().Bytes()))

	sigHashes := NewTxSigHashes(tx)
	witness, err := WitnessSignature(tx, sigHashes, 1, bip143Amount, SigHashAll, priv)
	require.NoError(t, err)
	require.Len(t, witness, 2)
	assert.Equal(t, mustHex(t, bip143PubKey), witness[1])

	sig := witness[0]
	assert.Equal(t, byte(SigHashAll), sig[len(sig)-1])

	parsed, err := ecdsa.ParseDERSignature(sig[:len(sig)-1])
	require.NoError(t, err)
	pub, err := secp256k1.ParsePubKey(witness[1])
	require.NoError(t, err)
	hash, err := CalcWitnessSigHash(mustHex(t, "76a9141d0f172a0ecb48aee1be1f2687d2963ae33f71a188ac"),
		sigHashes, SigHashAll, tx, 1, bip143Amount)
	require.NoError(t, err)
	assert.True(t, parsed.Verify(hash[:], pub))

	// Attaching the witness switches to the witness serialization without
	// moving the txid.
	tx.TxIn[1].Witness = witness
	raw, err := tx.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01}, raw[4:6])

	decoded, err := wire.DecodeTx(raw, testLimits)
	require.NoError(t, err)
	assert.Equal(t, txid, decoded.TxHash())
	assert.NotEqual(t, txid, decoded.WitnessHash())
	assert.Equal(t, witness, decoded.TxIn[1].Witness)
}
