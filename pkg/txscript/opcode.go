// Package txscript builds and recognizes the standard scripts used by
// segregated witness version 0 outputs, assembles their witness stacks and
// computes BIP 143 signature hashes.
//
// Scripts are treated as byte strings. Nothing here executes a script or
// checks a signature.
//
// References:
//   - BIP 141: https://github.com/bitcoin/bips/blob/master/bip-0141.mediawiki
//   - BIP 143: https://github.com/bitcoin/bips/blob/master/bip-0143.mediawiki
package txscript

// Opcodes used by the standard templates.
const (
	OP_0             = 0x00
	OP_DATA_20       = 0x14
	OP_DATA_32       = 0x20
	OP_DATA_33       = 0x21
	OP_DATA_75       = 0x4b
	OP_PUSHDATA1     = 0x4c
	OP_PUSHDATA2     = 0x4d
	OP_PUSHDATA4     = 0x4e
	OP_1NEGATE       = 0x4f
	OP_1             = 0x51
	OP_16            = 0x60
	OP_DUP           = 0x76
	OP_EQUAL         = 0x87
	OP_EQUALVERIFY   = 0x88
	OP_HASH160       = 0xa9
	OP_CHECKSIG      = 0xac
	OP_CHECKMULTISIG = 0xae
)

// Script limits from the consensus rules.
const (
	MaxScriptElementSize  = 520 // Largest single push
	MaxPubKeysPerMultiSig = 20
	MaxWitnessScriptSize  = 3600 // Standardness limit for P2WSH scripts
)

// smallIntOpcode returns OP_0 for zero and OP_1 through OP_16 for 1..16.
func smallIntOpcode(n int) byte {
	if n == 0 {
		return OP_0
	}
	return byte(OP_1 - 1 + n)
}

// asSmallInt is the inverse of smallIntOpcode.
func asSmallInt(op byte) (int, bool) {
	switch {
	case op == OP_0:
		return 0, true
	case op >= OP_1 && op <= OP_16:
		return int(op - (OP_1 - 1)), true
	}
	return 0, false
}
