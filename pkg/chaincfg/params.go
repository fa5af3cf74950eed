// Package chaincfg defines the per-network parameters the codec and the
// display layers need: envelope magic, address prefixes and the genesis
// block hash.
//
// Networks are plain data. Nothing in the codec branches on which network
// is selected; it only compares the values held here.
package chaincfg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// ErrUnknownNetwork is returned when no parameter set matches a lookup.
var ErrUnknownNetwork = errors.New("chaincfg: unknown network")

// Params describes one network.
type Params struct {
	Name        string          // Canonical lower-case name
	Net         wire.BitcoinNet // Envelope magic
	DefaultPort string          // Default peer port
	GenesisHash chainhash.Hash  // Hash of the genesis block header

	// Address encoding
	PubKeyHashAddrID byte   // Base58 version for P2PKH
	ScriptHashAddrID byte   // Base58 version for P2SH
	PrivateKeyID     byte   // Base58 version for WIF private keys
	Bech32HRPSegwit  string // Human-readable part for segwit addresses

	// SLIP 44 coin type
	HDCoinType uint32
}

func mustHash(s string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic(fmt.Sprintf("chaincfg: bad hash %q: %v", s, err))
	}
	return *h
}

// MainNetParams are the parameters for the main network.
var MainNetParams = Params{
	Name:             "mainnet",
	Net:              wire.MainNet,
	DefaultPort:      "8333",
	GenesisHash:      mustHash("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"),
	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0x80,
	Bech32HRPSegwit:  "bc",
	HDCoinType:       0,
}

// TestNet3Params are the parameters for the version 3 test network.
var TestNet3Params = Params{
	Name:             "testnet3",
	Net:              wire.TestNet3,
	DefaultPort:      "18333",
	GenesisHash:      mustHash("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943"),
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "tb",
	HDCoinType:       1,
}

// RegressionNetParams are the parameters for the regression test network.
var RegressionNetParams = Params{
	Name:             "regtest",
	Net:              wire.RegTest,
	DefaultPort:      "18444",
	GenesisHash:      mustHash("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206"),
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "bcrt",
	HDCoinType:       1,
}

// SigNetParams are the parameters for the default signet.
var SigNetParams = Params{
	Name:             "signet",
	Net:              wire.SigNet,
	DefaultPort:      "38333",
	GenesisHash:      mustHash("00000008819873e925422c1ff0f99f7cc9bbb232af63a077a480a3633bee1ef6"),
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "tb",
	HDCoinType:       1,
}

var allParams = []*Params{
	&MainNetParams,
	&TestNet3Params,
	&RegressionNetParams,
	&SigNetParams,
}

// ByName returns the parameters for a network name. Matching ignores case
// and accepts "testnet" for testnet3.
func ByName(name string) (*Params, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "testnet" {
		name = TestNet3Params.Name
	}
	for _, p := range allParams {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// ByNet returns the parameters whose envelope magic is net.
func ByNet(net wire.BitcoinNet) (*Params, error) {
	for _, p := range allParams {
		if p.Net == net {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownNetwork, net)
}

// Names lists the known network names.
func Names() []string {
	names := make([]string, len(allParams))
	for i, p := range allParams {
		names[i] = p.Name
	}
	return names
}

// MessageConfig returns an envelope config for this network under limits.
func (p *Params) MessageConfig(limits wire.Limits) (wire.MessageConfig, error) {
	return wire.NewMessageConfig(p.Net, limits)
}
