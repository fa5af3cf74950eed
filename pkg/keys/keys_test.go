package keys

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/chaincfg"
	"github.com/suffix-labs/btcwire/pkg/chainhash"
)

func keyOne(t *testing.T) *PrivateKey {
	t.Helper()
	raw := make([]byte, PrivKeyBytesLen)
	raw[PrivKeyBytesLen-1] = 1
	pk, err := PrivateKeyFromBytes(raw)
	require.NoError(t, err)
	return pk
}

func TestPublicKeyOfOne(t *testing.T) {
	pub := keyOne(t).PublicKey()
	assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		hex.EncodeToString(pub.Bytes()))
	assert.Len(t, pub.Uncompressed(), 65)

	parsed, err := ParsePublicKey(pub.Uncompressed())
	require.NoError(t, err)
	assert.Equal(t, pub.Bytes(), parsed.Bytes())
}

func TestPrivateKeyFromBytesLength(t *testing.T) {
	_, err := PrivateKeyFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestWIFVectors(t *testing.T) {
	tests := []struct {
		name       string
		params     *chaincfg.Params
		compressed bool
		wif        string
	}{
		{"mainnet compressed", &chaincfg.MainNetParams, true, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"},
		{"mainnet uncompressed", &chaincfg.MainNetParams, false, "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf"},
		{"testnet compressed", &chaincfg.TestNet3Params, true, "cMahea7zqjxrtgAbB7LSGbcQUr1uX1ojuat9jZodMN87JcbXMTcA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk := keyOne(t)
			assert.Equal(t, tt.wif, EncodeWIF(pk, tt.compressed, tt.params))

			w, err := DecodeWIFForNet(tt.wif, tt.params)
			require.NoError(t, err)
			assert.Equal(t, pk.Bytes(), w.PrivKey.Bytes())
			assert.Equal(t, tt.compressed, w.CompressPubKey)
			assert.True(t, w.IsForNet(tt.params))

			if tt.compressed {
				assert.Len(t, w.PubKeyBytes(), 33)
			} else {
				assert.Len(t, w.PubKeyBytes(), 65)
			}
		})
	}
}

func TestDecodeWIFErrors(t *testing.T) {
	_, err := DecodeWIFForNet("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", &chaincfg.TestNet3Params)
	require.ErrorIs(t, err, ErrWIFNetwork)

	// Last character changed, so the checksum fails.
	_, err = DecodeWIF("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWo")
	require.ErrorIs(t, err, ErrMalformedWIF)

	badFlag := base58.CheckEncode(append(make([]byte, PrivKeyBytesLen), 0x02), 0x80)
	_, err = DecodeWIF(badFlag)
	require.ErrorIs(t, err, ErrMalformedWIF)

	short := base58.CheckEncode(make([]byte, 20), 0x80)
	_, err = DecodeWIF(short)
	require.ErrorIs(t, err, ErrMalformedWIF)
}

func TestSignIsDeterministicAndVerifies(t *testing.T) {
	pk := keyOne(t)
	hash := chainhash.DoubleHashH([]byte("btcwire"))

	sig := pk.Sign(hash)
	assert.Equal(t, sig, pk.Sign(hash))

	parsed, err := ecdsa.ParseDERSignature(sig)
	require.NoError(t, err)
	pub, err := secp256k1.ParsePubKey(pk.PublicKey().Bytes())
	require.NoError(t, err)
	assert.True(t, parsed.Verify(hash[:], pub))
}
