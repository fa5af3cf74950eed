// Package bip21 implements BIP 21 payment request URIs.
//
// URI format:
//
//	bitcoin:<address>?amount=<btc>&label=<label>&message=<message>
//
// Amounts are decimal bitcoin with at most eight fractional digits and are
// held as an exact number of satoshis. Unknown parameters are kept, except
// those prefixed "req-", which a reader must understand and so cause the
// URI to be rejected.
package bip21

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/suffix-labs/btcwire/pkg/address"
	"github.com/suffix-labs/btcwire/pkg/chaincfg"
)

const (
	// Scheme is the URI scheme.
	Scheme = "bitcoin"

	// SatoshiPerBitcoin is the number of satoshis in one bitcoin.
	SatoshiPerBitcoin = 100_000_000

	// MaxSatoshi is the supply ceiling.
	MaxSatoshi = 21_000_000 * SatoshiPerBitcoin

	reqPrefix = "req-"
)

// URI errors.
var (
	ErrInvalidScheme   = errors.New("bip21: not a bitcoin URI")
	ErrInvalidAmount   = errors.New("bip21: invalid amount")
	ErrRequiredParam   = errors.New("bip21: unsupported required parameter")
	ErrDuplicateParam  = errors.New("bip21: duplicate parameter")
	ErrMissingAddress  = errors.New("bip21: missing address")
	ErrMalformedParams = errors.New("bip21: malformed query")
)

// PaymentRequest is a parsed payment URI.
type PaymentRequest struct {
	Address address.Address
	Amount  *int64  // Satoshis, nil when the payer chooses
	Label   *string // Optional label for the recipient
	Message *string // Optional message to display to the payer

	// Params holds parameters this package does not interpret.
	Params map[string]string
}

// Parse parses uri and decodes its address for params.
func Parse(uri string, params *chaincfg.Params) (*PaymentRequest, error) {
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return nil, ErrInvalidScheme
	}

	addrPart, query, _ := strings.Cut(rest, "?")
	if addrPart == "" {
		return nil, ErrMissingAddress
	}
	addr, err := address.DecodeAddress(addrPart, params)
	if err != nil {
		return nil, err
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedParams, err)
	}

	req := &PaymentRequest{Address: addr}
	for key, vals := range values {
		if len(vals) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParam, key)
		}
		val := vals[0]

		switch key {
		case "amount":
			amount, err := ParseAmount(val)
			if err != nil {
				return nil, err
			}
			req.Amount = &amount
		case "label":
			req.Label = &val
		case "message":
			req.Message = &val
		default:
			if strings.HasPrefix(key, reqPrefix) {
				return nil, fmt.Errorf("%w: %s", ErrRequiredParam, key)
			}
			if req.Params == nil {
				req.Params = make(map[string]string)
			}
			req.Params[key] = val
		}
	}
	return req, nil
}

// ParseAmount parses a decimal bitcoin amount into satoshis without going
// through floating point.
func ParseAmount(s string) (int64, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > 8 || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	// Eleven whole digits already exceed the supply.
	if len(whole) > 10 {
		return 0, fmt.Errorf("%w: %q exceeds supply", ErrInvalidAmount, s)
	}

	digits := whole + frac + strings.Repeat("0", 8-len(frac))
	sat, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if sat > MaxSatoshi {
		return 0, fmt.Errorf("%w: %q exceeds supply", ErrInvalidAmount, s)
	}
	return sat, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatAmount formats satoshis as decimal bitcoin with trailing zeros
// removed.
func FormatAmount(sat int64) string {
	str := fmt.Sprintf("%d.%08d", sat/SatoshiPerBitcoin, sat%SatoshiPerBitcoin)
	str = strings.TrimRight(str, "0")
	return strings.TrimSuffix(str, ".")
}

// String encodes the request. Parameters are written in a fixed order so
// equal requests encode identically.
func (req *PaymentRequest) String() string {
	uri := Scheme + ":" + req.Address.String()

	var parts []string
	if req.Amount != nil {
		parts = append(parts, "amount="+FormatAmount(*req.Amount))
	}
	if req.Label != nil {
		parts = append(parts, "label="+url.QueryEscape(*req.Label))
	}
	if req.Message != nil {
		parts = append(parts, "message="+url.QueryEscape(*req.Message))
	}

	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(req.Params[k]))
	}

	if len(parts) > 0 {
		uri += "?" + strings.Join(parts, "&")
	}
	return uri
}
