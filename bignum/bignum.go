// Package bignum stands in for the multi-precision integer library the
// mechanism and ASN.1 layers treat as an external collaborator ("bignum
// handle"). Arithmetic itself is out of scope for this module; this
// package exists only to give the rest of the core a concrete handle shape
// to import/export/bound-check against.
//
// Handle is modelled on hsiuhsiu-cb-mpc-go-exp's pkg/mpc.Scalar: an
// immutable, big-endian byte-backed value that is always copied on
// construction and on export, compared in constant time, and never aliases
// caller-owned memory.
package bignum

import (
	"crypto/subtle"
	"errors"
	"math/big"
)

// ErrTooShort indicates the imported value is shorter than the required
// minimum length — reported by callers as either bad-data or not-secure
// depending on context.
var ErrTooShort = errors.New("bignum: value shorter than minimum length")

// ErrTooLong indicates the imported value exceeds the maximum length.
var ErrTooLong = errors.New("bignum: value longer than maximum length")

// ErrModulusExceeded indicates the imported value is not strictly less than
// the supplied modulus.
var ErrModulusExceeded = errors.New("bignum: value not less than modulus")

// Handle is an opaque big-endian multi-precision integer.
type Handle struct {
	data []byte // big-endian, no leading zero bytes (except the zero value)
}

// Zero is the additive identity.
func Zero() *Handle {
	return &Handle{data: []byte{0}}
}

// Import builds a Handle from a big-endian byte slice, enforcing
// [min,max] length bounds and, if modulus is non-nil, that the value is
// strictly less than modulus. Leading zero bytes are stripped before the
// bound check, matching the length-prefixed codec's resistance to
// zero-prefix key-size inflation.
func Import(data []byte, min, max int, modulus *Handle) (*Handle, error) {
	trimmed := trimLeadingZeroes(data)

	effectiveLen := len(trimmed)
	if effectiveLen == 0 {
		effectiveLen = 1
	}
	if effectiveLen < min {
		return nil, ErrTooShort
	}
	if max > 0 && effectiveLen > max {
		return nil, ErrTooLong
	}

	h := &Handle{data: cloneOrZero(trimmed)}
	if modulus != nil {
		if h.toBig().Cmp(modulus.toBig()) >= 0 {
			return nil, ErrModulusExceeded
		}
	}
	return h, nil
}

func trimLeadingZeroes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func cloneOrZero(b []byte) []byte {
	if len(b) == 0 {
		return []byte{0}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Export returns a copy of the handle's big-endian byte representation.
func (h *Handle) Export() []byte {
	out := make([]byte, len(h.data))
	copy(out, h.data)
	return out
}

// NumBytes returns the minimal big-endian byte length of the value.
func (h *Handle) NumBytes() int {
	return len(h.data)
}

// HighBit reports whether the most significant bit of the top byte is set.
func (h *Handle) HighBit() bool {
	if len(h.data) == 0 {
		return false
	}
	return h.data[0]&0x80 != 0
}

// IsZero reports whether the handle holds the value zero.
func (h *Handle) IsZero() bool {
	for _, b := range h.data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Equal performs a constant-time comparison of two handles of potentially
// different encoded lengths (shorter one is conceptually zero-padded).
func (h *Handle) Equal(other *Handle) bool {
	a, b := h.data, other.data
	if len(a) < len(b) {
		a, b = b, a
	}
	pad := make([]byte, len(a)-len(b))
	bPadded := append(pad, b...)
	return subtle.ConstantTimeCompare(a, bPadded) == 1
}

func (h *Handle) toBig() *big.Int {
	return new(big.Int).SetBytes(h.data)
}
