// Package address encodes and decodes the human readable forms of output
// scripts: base58check for P2PKH and P2SH, bech32 for version 0 witness
// programs.
package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is consensus defined

	"github.com/suffix-labs/btcwire/pkg/chaincfg"
	"github.com/suffix-labs/btcwire/pkg/txscript"
)

// Address errors.
var (
	ErrUnknownAddressType    = errors.New("address: unknown address type")
	ErrAddressNetwork        = errors.New("address: address is for another network")
	ErrMalformedAddress      = errors.New("address: malformed address")
	ErrUnsupportedWitnessVer = errors.New("address: unsupported witness version")
)

// Address is a decoded payment address.
type Address interface {
	// String returns the encoded address.
	String() string

	// ScriptAddress returns the hash or witness program committed to by the
	// output script.
	ScriptAddress() []byte

	// IsForNet reports whether the address belongs to params.
	IsForNet(params *chaincfg.Params) bool

	// PkScript returns the output script paying to the address.
	PkScript() ([]byte, error)
}

// AddressPubKeyHash pays to the HASH160 of a public key.
type AddressPubKeyHash struct {
	hash  [ripemd160.Size]byte
	netID byte
}

// NewAddressPubKeyHash returns a P2PKH address for a 20-byte key hash.
func NewAddressPubKeyHash(pubKeyHash []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	if len(pubKeyHash) != ripemd160.Size {
		return nil, fmt.Errorf("%w: pubkey hash of %d bytes", ErrMalformedAddress, len(pubKeyHash))
	}
	a := &AddressPubKeyHash{netID: params.PubKeyHashAddrID}
	copy(a.hash[:], pubKeyHash)
	return a, nil
}

func (a *AddressPubKeyHash) String() string {
	return base58.CheckEncode(a.hash[:], a.netID)
}

func (a *AddressPubKeyHash) ScriptAddress() []byte {
	return a.hash[:]
}

func (a *AddressPubKeyHash) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.PubKeyHashAddrID
}

func (a *AddressPubKeyHash) PkScript() ([]byte, error) {
	return txscript.PayToPubKeyHash(a.hash[:])
}

// AddressScriptHash pays to the HASH160 of a redeem script.
type AddressScriptHash struct {
	hash  [ripemd160.Size]byte
	netID byte
}

// NewAddressScriptHash hashes redeemScript and returns its P2SH address.
func NewAddressScriptHash(redeemScript []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	return NewAddressScriptHashFromHash(txscript.Hash160(redeemScript), params)
}

// NewAddressScriptHashFromHash returns a P2SH address for a 20-byte script
// hash.
func NewAddressScriptHashFromHash(scriptHash []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	if len(scriptHash) != ripemd160.Size {
		return nil, fmt.Errorf("%w: script hash of %d bytes", ErrMalformedAddress, len(scriptHash))
	}
	a := &AddressScriptHash{netID: params.ScriptHashAddrID}
	copy(a.hash[:], scriptHash)
	return a, nil
}

func (a *AddressScriptHash) String() string {
	return base58.CheckEncode(a.hash[:], a.netID)
}

func (a *AddressScriptHash) ScriptAddress() []byte {
	return a.hash[:]
}

func (a *AddressScriptHash) IsForNet(params *chaincfg.Params) bool {
	return a.netID == params.ScriptHashAddrID
}

func (a *AddressScriptHash) PkScript() ([]byte, error) {
	return txscript.PayToScriptHash(a.hash[:])
}

// witnessAddress holds what both version 0 witness address types share.
type witnessAddress struct {
	hrp     string
	program []byte
}

func (a *witnessAddress) String() string {
	s, err := encodeSegwit(a.hrp, 0, a.program)
	if err != nil {
		// Programs are length checked on construction.
		panic(err)
	}
	return s
}

func (a *witnessAddress) ScriptAddress() []byte {
	return a.program
}

func (a *witnessAddress) IsForNet(params *chaincfg.Params) bool {
	return a.hrp == params.Bech32HRPSegwit
}

func (a *witnessAddress) PkScript() ([]byte, error) {
	return txscript.NewScriptBuilder().AddOp(txscript.OP_0).AddData(a.program).Script()
}

// AddressWitnessPubKeyHash pays to a version 0, 20-byte witness program.
type AddressWitnessPubKeyHash struct {
	witnessAddress
}

// NewAddressWitnessPubKeyHash returns a P2WPKH address for a key hash.
func NewAddressWitnessPubKeyHash(program []byte, params *chaincfg.Params) (*AddressWitnessPubKeyHash, error) {
	if len(program) != txscript.WitnessV0PubKeyHashLen {
		return nil, fmt.Errorf("%w: witness pubkey hash of %d bytes", ErrMalformedAddress, len(program))
	}
	return &AddressWitnessPubKeyHash{witnessAddress{
		hrp:     params.Bech32HRPSegwit,
		program: append([]byte(nil), program...),
	}}, nil
}

// AddressWitnessScriptHash pays to a version 0, 32-byte witness program.
type AddressWitnessScriptHash struct {
	witnessAddress
}

// NewAddressWitnessScriptHash returns a P2WSH address for a script hash.
func NewAddressWitnessScriptHash(program []byte, params *chaincfg.Params) (*AddressWitnessScriptHash, error) {
	if len(program) != txscript.WitnessV0ScriptHashLen {
		return nil, fmt.Errorf("%w: witness script hash of %d bytes", ErrMalformedAddress, len(program))
	}
	return &AddressWitnessScriptHash{witnessAddress{
		hrp:     params.Bech32HRPSegwit,
		program: append([]byte(nil), program...),
	}}, nil
}

// DecodeAddress decodes s and requires it to belong to params.
func DecodeAddress(s string, params *chaincfg.Params) (Address, error) {
	// Base58 strings mix case, which bech32 rejects, so the two forms cannot
	// be confused.
	if _, _, err := bech32.Decode(s); err == nil {
		return decodeSegwit(s, params)
	}

	payload, netID, err := base58.CheckDecode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(payload) != ripemd160.Size {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrMalformedAddress, len(payload))
	}

	switch netID {
	case params.PubKeyHashAddrID:
		return NewAddressPubKeyHash(payload, params)
	case params.ScriptHashAddrID:
		return NewAddressScriptHashFromHash(payload, params)
	}
	return nil, fmt.Errorf("%w: version 0x%02x is not %s", ErrAddressNetwork, netID, params.Name)
}

func decodeSegwit(s string, params *chaincfg.Params) (Address, error) {
	version, program, err := decodeSegwitProgram(s, params.Bech32HRPSegwit)
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWitnessVer, version)
	}

	switch len(program) {
	case txscript.WitnessV0PubKeyHashLen:
		return NewAddressWitnessPubKeyHash(program, params)
	case txscript.WitnessV0ScriptHashLen:
		return NewAddressWitnessScriptHash(program, params)
	}
	return nil, fmt.Errorf("%w: version 0 program of %d bytes", ErrMalformedAddress, len(program))
}

// FromPkScript returns the address an output script pays to.
func FromPkScript(script []byte, params *chaincfg.Params) (Address, error) {
	switch txscript.GetScriptClass(script) {
	case txscript.PubKeyHashTy:
		return NewAddressPubKeyHash(script[3:23], params)
	case txscript.ScriptHashTy:
		return NewAddressScriptHashFromHash(script[2:22], params)
	case txscript.WitnessV0PubKeyHashTy:
		return NewAddressWitnessPubKeyHash(script[2:], params)
	case txscript.WitnessV0ScriptHashTy:
		return NewAddressWitnessScriptHash(script[2:], params)
	}

	if version, _, err := txscript.ExtractWitnessProgram(script); err == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWitnessVer, version)
	}
	return nil, ErrUnknownAddressType
}

func encodeSegwit(hrp string, version byte, program []byte) (string, error) {
	conv, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := make([]byte, 0, 1+len(conv))
	data = append(data, version)
	data = append(data, conv...)
	return bech32.Encode(hrp, data)
}

func decodeSegwitProgram(s, hrp string) (byte, []byte, error) {
	gotHRP, data, err := bech32.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if gotHRP != hrp {
		return 0, nil, fmt.Errorf("%w: prefix %q, expected %q", ErrAddressNetwork, gotHRP, hrp)
	}
	if len(data) < 1 || data[0] > 16 {
		return 0, nil, fmt.Errorf("%w: bad witness version", ErrMalformedAddress)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(program) < 2 || len(program) > 40 {
		return 0, nil, fmt.Errorf("%w: program of %d bytes", ErrMalformedAddress, len(program))
	}
	return data[0], program, nil
}
