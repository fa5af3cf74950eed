//go:build fixedbuf

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

func TestFixedProfileEncodeBuffer(t *testing.T) {
	assert.Equal(t, "fixed", AllocProfile)

	buf := NewEncodeBuffer(1 << 20)
	fb, ok := buf.(*FixedBuffer)
	require.True(t, ok, "got %T", buf)
	assert.Equal(t, FixedBufferSize, fb.Cap())

	require.NoError(t, fb.WriteBytes(make([]byte, FixedBufferSize)))
	require.ErrorIs(t, fb.WriteBytes([]byte{0}), ErrCapacityExceeded)
	assert.Equal(t, FixedBufferSize, fb.Len())
}

func TestFixedProfileOversizedTx(t *testing.T) {
	tx := NewMsgTx(1)
	tx.AddTxIn(NewTxIn(&OutPoint{}, nil, nil))
	tx.AddTxOut(NewTxOut(1, bytes.Repeat([]byte{0x6a}, FixedBufferSize)))

	_, err := tx.Bytes()
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// Identifiers stream into the digest and do not need the pool.
	assert.NotEqual(t, chainhash.Hash{}, tx.TxHash())
	assert.Equal(t, tx.TxHash(), tx.WitnessHash())
}
