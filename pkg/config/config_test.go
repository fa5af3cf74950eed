package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, DoubleSHA256, cfg.Checksum.Algorithm)
	assert.Equal(t, uint32(32<<20), cfg.Limits.MaxMessagePayload)
	assert.Equal(t, uint64(2000), cfg.Limits.MaxHeaders)

	mc, err := cfg.MessageConfig()
	require.NoError(t, err)
	assert.Equal(t, wire.MainNet, mc.Net)
	assert.Equal(t, DefaultLimits(), mc.Limits)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
network: testnet
limits:
  max_headers: 500
  max_prealloc: 64
`))
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, uint64(500), cfg.Limits.MaxHeaders)
	assert.Equal(t, uint64(64), cfg.Limits.MaxPrealloc)
	// Untouched keys keep the standard policy.
	assert.Equal(t, uint64(10000), cfg.Limits.MaxScriptSize)

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, "testnet3", params.Name)

	mc, err := cfg.MessageConfig()
	require.NoError(t, err)
	assert.Equal(t, wire.TestNet3, mc.Net)
	assert.Equal(t, uint64(500), mc.Limits.MaxHeaders)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown network", "network: dogenet\n"},
		{"unknown key", "limits:\n  max_hedaers: 10\n"},
		{"zero limit", "limits:\n  max_tx_ins: 0\n"},
		{"bad algorithm", "checksum:\n  algorithm: md5\n"},
		{"long personalization", "checksum:\n  algorithm: blake2b\n  personalization: seventeen-bytes!!\n"},
		{"not yaml", "network: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestZeroLimitReportsWireError(t *testing.T) {
	_, err := Parse([]byte("limits:\n  max_witness_items: 0\n"))
	require.ErrorIs(t, err, wire.ErrInvalidLimits)
	assert.Contains(t, err.Error(), "MaxWitnessItems")
}

func TestBlake2bChecksum(t *testing.T) {
	cfg, err := Parse([]byte(`
network: regtest
checksum:
  algorithm: double-blake2b
  personalization: btcwire-test
`))
	require.NoError(t, err)

	payload := []byte("payload")
	want := chainhash.DoubleBlake2b256("btcwire-test")(payload)
	assert.Equal(t, want, cfg.ChecksumFunc()(payload))

	mc, err := cfg.MessageConfig()
	require.NoError(t, err)

	b, err := wire.EncodeMessage(wire.NewMsgPing(7), mc)
	require.NoError(t, err)
	ping := b[wire.MessageHeaderSize:]
	require.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, ping)
	sum := chainhash.DoubleBlake2b256("btcwire-test")(ping)
	assert.Equal(t, sum[:wire.ChecksumSize], b[20:wire.MessageHeaderSize])

	msg, err := wire.DecodeMessage(b, mc)
	require.NoError(t, err)
	assert.Equal(t, wire.NewMsgPing(7), msg)

	// The same bytes fail under the double SHA-256 checksum.
	mc.Checksum = nil
	_, err = wire.DecodeMessage(b, mc)
	require.ErrorIs(t, err, wire.ErrChecksumMismatch)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "btcwire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: signet\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "signet", cfg.Network)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
