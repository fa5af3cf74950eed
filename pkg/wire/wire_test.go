package wire

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

// testLimits mirrors the standard policy closely enough for every vector.
var testLimits = Limits{
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

// txVector is a known-answer transaction.
type txVector struct {
	Name         string `json:"name"`
	Hex          string `json:"hex"`
	StrippedHex  string `json:"strippedHex"`
	TxID         string `json:"txid"`
	WTxID        string `json:"wtxid"`
	Size         int    `json:"size"`
	StrippedSize int    `json:"strippedSize"`
	Weight       int    `json:"weight"`
	Witness      bool   `json:"witness"`
}

// headerVector is a known-answer block header.
type headerVector struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	Hash string `json:"hash"`
}

type vectorFile struct {
	Transactions []txVector     `json:"transactions"`
	Headers      []headerVector `json:"headers"`
}

// getTestDataPath returns the path to test data files
func getTestDataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "vectors")
}

func loadVectors(t *testing.T) vectorFile {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(getTestDataPath(), "wire.json"))
	require.NoError(t, err, "Failed to read test vectors file")

	var vf vectorFile
	require.NoError(t, json.Unmarshal(data, &vf), "Failed to parse JSON")
	require.NotEmpty(t, vf.Transactions)
	require.NotEmpty(t, vf.Headers)
	return vf
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func mustHash(t *testing.T, s string) chainhash.Hash {
	t.Helper()
	h, err := chainhash.NewHashFromStr(s)
	require.NoError(t, err)
	return *h
}

// codec is anything that encodes to a Sink and decodes from a Source.
type codec interface {
	Encode(s Sink) error
	Decode(src Source, limits Limits) error
}

// checkRoundTrip decodes b into a fresh value, re-encodes it and requires
// identical bytes.
func checkRoundTrip[T any, P interface {
	*T
	codec
}](t *testing.T, b []byte) P {
	t.Helper()

	var v T
	p := P(&v)
	require.NoError(t, decodeAll(b, testLimits, p))

	buf := NewBuffer(len(b))
	require.NoError(t, p.Encode(buf))
	require.Equal(t, b, buf.Bytes(), "re-encoding differs")
	return p
}
