package bip21

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btcwire/pkg/address"
	"github.com/suffix-labs/btcwire/pkg/chaincfg"
)

const (
	mainP2PKH  = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
	mainP2WPKH = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
)

func TestParseSimple(t *testing.T) {
	req, err := Parse("bitcoin:"+mainP2PKH, &chaincfg.MainNetParams)
	require.NoError(t, err)

	assert.Equal(t, mainP2PKH, req.Address.String())
	assert.Nil(t, req.Amount)
	assert.Nil(t, req.Label)
	assert.Nil(t, req.Message)
	assert.Nil(t, req.Params)
}

func TestParseFull(t *testing.T) {
	uri := "bitcoin:" + mainP2PKH + "?amount=20.3&label=Luke-Jr&message=Donation%20for%20project%20xyz"

	req, err := Parse(uri, &chaincfg.MainNetParams)
	require.NoError(t, err)

	require.NotNil(t, req.Amount)
	assert.Equal(t, int64(2_030_000_000), *req.Amount)
	require.NotNil(t, req.Label)
	assert.Equal(t, "Luke-Jr", *req.Label)
	require.NotNil(t, req.Message)
	assert.Equal(t, "Donation for project xyz", *req.Message)
}

func TestParseSchemeCaseInsensitive(t *testing.T) {
	req, err := Parse("BITCOIN:"+mainP2WPKH+"?amount=1", &chaincfg.MainNetParams)
	require.NoError(t, err)

	_, ok := req.Address.(*address.AddressWitnessPubKeyHash)
	assert.True(t, ok)
	assert.Equal(t, int64(SatoshiPerBitcoin), *req.Amount)
}

func TestParseKeepsUnknownParams(t *testing.T) {
	req, err := Parse("bitcoin:"+mainP2PKH+"?somethingyoudontunderstand=50&somethingelse=x",
		&chaincfg.MainNetParams)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"somethingyoudontunderstand": "50",
		"somethingelse":              "x",
	}, req.Params)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		err  error
	}{
		{"wrong scheme", "litecoin:" + mainP2PKH, ErrInvalidScheme},
		{"no scheme", mainP2PKH, ErrInvalidScheme},
		{"no address", "bitcoin:?amount=1", ErrMissingAddress},
		{"required param", "bitcoin:" + mainP2PKH + "?req-somethingyoudontunderstand=50", ErrRequiredParam},
		{"duplicate amount", "bitcoin:" + mainP2PKH + "?amount=1&amount=2", ErrDuplicateParam},
		{"bad amount", "bitcoin:" + mainP2PKH + "?amount=1e3", ErrInvalidAmount},
		{"bad escape", "bitcoin:" + mainP2PKH + "?label=%zz", ErrMalformedParams},
		{"wrong network", "bitcoin:" + mainP2PKH, address.ErrAddressNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := &chaincfg.MainNetParams
			if tt.name == "wrong network" {
				params = &chaincfg.TestNet3Params
			}
			_, err := Parse(tt.uri, params)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 100_000_000},
		{"0.00000001", 1},
		{".5", 50_000_000},
		{"5.", 500_000_000},
		{"20.3", 2_030_000_000},
		{"21000000", MaxSatoshi},
		{"0.12345678", 12_345_678},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, in := range []string{
		"",
		".",
		"-1",
		"+1",
		"1.123456789",
		"1,5",
		"1.2.3",
		"21000000.00000001",
		"99999999999",
		"0x10",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "1", FormatAmount(SatoshiPerBitcoin))
	assert.Equal(t, "0.00000001", FormatAmount(1))
	assert.Equal(t, "20.3", FormatAmount(2_030_000_000))
	assert.Equal(t, "21000000", FormatAmount(MaxSatoshi))
}

func TestStringRoundTrip(t *testing.T) {
	amount := int64(12_345)
	label := "coffee & cake"
	message := "thanks!"

	addr, err := address.DecodeAddress(mainP2WPKH, &chaincfg.MainNetParams)
	require.NoError(t, err)

	req := &PaymentRequest{
		Address: addr,
		Amount:  &amount,
		Label:   &label,
		Message: &message,
		Params:  map[string]string{"z": "1", "a": "2"},
	}

	uri := req.String()
	assert.Equal(t,
		"bitcoin:"+mainP2WPKH+"?amount=0.00012345&label=coffee+%26+cake&message=thanks%21&a=2&z=1",
		uri)

	parsed, err := Parse(uri, &chaincfg.MainNetParams)
	require.NoError(t, err)
	assert.Equal(t, req.Address.String(), parsed.Address.String())
	assert.Equal(t, *req.Amount, *parsed.Amount)
	assert.Equal(t, *req.Label, *parsed.Label)
	assert.Equal(t, *req.Message, *parsed.Message)
	assert.Equal(t, req.Params, parsed.Params)
}

func TestStringAddressOnly(t *testing.T) {
	addr, err := address.DecodeAddress(mainP2PKH, &chaincfg.MainNetParams)
	require.NoError(t, err)

	req := &PaymentRequest{Address: addr}
	assert.Equal(t, "bitcoin:"+mainP2PKH, req.String())
}
