// Package config loads codec policy: which network envelopes belong to,
// how their checksums are computed and the ceilings every decoder enforces.
//
// Configuration comes from a single YAML file. Values missing from the file
// keep the standard policy returned by Default.
//
//	network: testnet3
//	checksum:
//	  algorithm: double-sha256
//	limits:
//	  max_message_payload: 33554432
//	  max_headers: 2000
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suffix-labs/btcwire/pkg/chaincfg"
	"github.com/suffix-labs/btcwire/pkg/chainhash"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

// Checksum algorithms accepted by ChecksumConfig.Algorithm.
const (
	DoubleSHA256  = "double-sha256"
	Blake2b       = "blake2b"
	DoubleBlake2b = "double-blake2b"
)

// maxPersonalization is the BLAKE2b personalization length.
const maxPersonalization = 16

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the codec policy.
type Config struct {
	// Network names the chaincfg parameter set, e.g. "mainnet".
	Network string `yaml:"network"`

	// Checksum selects the envelope checksum.
	Checksum ChecksumConfig `yaml:"checksum"`

	// Limits are the decoder ceilings.
	Limits LimitsConfig `yaml:"limits"`
}

// ChecksumConfig selects the envelope checksum function.
type ChecksumConfig struct {
	// Algorithm is one of double-sha256, blake2b or double-blake2b.
	// Default: double-sha256
	Algorithm string `yaml:"algorithm"`

	// Personalization is the BLAKE2b personalization, at most 16 bytes.
	// Ignored for double-sha256.
	Personalization string `yaml:"personalization"`
}

// LimitsConfig mirrors wire.Limits with YAML names.
type LimitsConfig struct {
	MaxMessagePayload  uint32 `yaml:"max_message_payload"`
	MaxScriptSize      uint64 `yaml:"max_script_size"`
	MaxWitnessItemSize uint64 `yaml:"max_witness_item_size"`
	MaxWitnessItems    uint64 `yaml:"max_witness_items"`
	MaxTxIns           uint64 `yaml:"max_tx_ins"`
	MaxTxOuts          uint64 `yaml:"max_tx_outs"`
	MaxBlockTxs        uint64 `yaml:"max_block_txs"`
	MaxHeaders         uint64 `yaml:"max_headers"`
	MaxPrealloc        uint64 `yaml:"max_prealloc"`
}

// Default returns the standard Bitcoin policy on mainnet.
func Default() *Config {
	return &Config{
		Network: chaincfg.MainNetParams.Name,
		Checksum: ChecksumConfig{
			Algorithm: DoubleSHA256,
		},
		Limits: LimitsConfig{
			MaxMessagePayload:  32 * 1024 * 1024,
			MaxScriptSize:      10000,
			MaxWitnessItemSize: 4000000,
			MaxWitnessItems:    500000,
			MaxTxIns:           100000,
			MaxTxOuts:          100000,
			MaxBlockTxs:        100000,
			MaxHeaders:         2000,
			MaxPrealloc:        1024,
		},
	}
}

// DefaultLimits returns the standard decoder ceilings.
func DefaultLimits() wire.Limits {
	return Default().Limits.WireLimits()
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := chaincfg.ByName(c.Network); err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	}

	switch c.Checksum.Algorithm {
	case DoubleSHA256:
	case Blake2b, DoubleBlake2b:
		if len(c.Checksum.Personalization) > maxPersonalization {
			errs = append(errs, fmt.Errorf("checksum.personalization is longer than %d bytes",
				maxPersonalization))
		}
	default:
		errs = append(errs, fmt.Errorf("checksum.algorithm must be one of: %v",
			[]string{DoubleSHA256, Blake2b, DoubleBlake2b}))
	}

	if err := c.Limits.WireLimits().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("limits: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// WireLimits converts to the decoder's limits.
func (l LimitsConfig) WireLimits() wire.Limits {
	return wire.Limits{
		MaxMessagePayload:  l.MaxMessagePayload,
		MaxScriptSize:      l.MaxScriptSize,
		MaxWitnessItemSize: l.MaxWitnessItemSize,
		MaxWitnessItems:    l.MaxWitnessItems,
		MaxTxIns:           l.MaxTxIns,
		MaxTxOuts:          l.MaxTxOuts,
		MaxBlockTxs:        l.MaxBlockTxs,
		MaxHeaders:         l.MaxHeaders,
		MaxPrealloc:        l.MaxPrealloc,
	}
}

// ChecksumFunc returns the configured checksum hash.
func (c *Config) ChecksumFunc() chainhash.HashFunc {
	switch c.Checksum.Algorithm {
	case Blake2b:
		return chainhash.Blake2b256(c.Checksum.Personalization)
	case DoubleBlake2b:
		return chainhash.DoubleBlake2b256(c.Checksum.Personalization)
	}
	return chainhash.DoubleHashH
}

// Params resolves the configured network.
func (c *Config) Params() (*chaincfg.Params, error) {
	return chaincfg.ByName(c.Network)
}

// MessageConfig builds the envelope codec configuration.
func (c *Config) MessageConfig() (wire.MessageConfig, error) {
	params, err := c.Params()
	if err != nil {
		return wire.MessageConfig{}, err
	}
	mc, err := params.MessageConfig(c.Limits.WireLimits())
	if err != nil {
		return wire.MessageConfig{}, err
	}
	mc.Checksum = c.ChecksumFunc()
	return mc, nil
}
