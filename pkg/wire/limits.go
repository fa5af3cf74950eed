package wire

import "fmt"

// Limits bounds every length-prefixed field a decoder will accept. The
// values are deployment policy, so decoders take them explicitly; see
// pkg/config for a loader and the standard policy.
//
// Every declared length is checked against its ceiling before any storage
// is reserved for it.
type Limits struct {
	MaxMessagePayload  uint32 // Largest envelope payload accepted
	MaxScriptSize      uint64 // Largest signature or public key script
	MaxWitnessItemSize uint64 // Largest single witness stack item
	MaxWitnessItems    uint64 // Most witness items per input
	MaxTxIns           uint64 // Most inputs per transaction
	MaxTxOuts          uint64 // Most outputs per transaction
	MaxBlockTxs        uint64 // Most transactions per block
	MaxHeaders         uint64 // Most headers per headers message
	MaxPrealloc        uint64 // Most elements reserved up front for any sequence
}

// Validate rejects limits with a zero ceiling, which would make every
// non-empty field undecodable.
func (l Limits) Validate() error {
	fields := []struct {
		name  string
		value uint64
	}{
		{"MaxMessagePayload", uint64(l.MaxMessagePayload)},
		{"MaxScriptSize", l.MaxScriptSize},
		{"MaxWitnessItemSize", l.MaxWitnessItemSize},
		{"MaxWitnessItems", l.MaxWitnessItems},
		{"MaxTxIns", l.MaxTxIns},
		{"MaxTxOuts", l.MaxTxOuts},
		{"MaxBlockTxs", l.MaxBlockTxs},
		{"MaxHeaders", l.MaxHeaders},
		{"MaxPrealloc", l.MaxPrealloc},
	}
	for _, f := range fields {
		if f.value == 0 {
			return fmt.Errorf("%w: %s must be non-zero", ErrInvalidLimits, f.name)
		}
	}
	return nil
}

// prealloc returns how many elements to reserve for a declared count.
func (l Limits) prealloc(count uint64) int {
	if count > l.MaxPrealloc {
		return int(l.MaxPrealloc)
	}
	return int(count)
}
