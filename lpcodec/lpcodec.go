// Package lpcodec implements the PGP/SSH/TLS style of length-prefixed
// codecs: 16-bit and 32-bit length-prefixed strings and multi-precision
// integers, the little brother of the ber package's tag-length-value
// codec, sharing its sanitization guarantees (bounds checks, zero-prefix
// stripping, not-secure-vs-bad-data distinction).
package lpcodec

import (
	"errors"
	"time"

	"gitlab.com/yawning/pkimech.git/bignum"
	"gitlab.com/yawning/pkimech.git/stream"
)

var (
	// ErrOverflow is returned when a declared length exceeds a hard cap,
	// or a 32-bit length has its top bit set (the SSH "signed length"
	// convention this codec rejects outright).
	ErrOverflow = errors.New("lpcodec: length overflow")
	// ErrNotSecure is returned by the Checked read variants when an
	// imported bignum falls below the caller's required minimum size.
	ErrNotSecure = errors.New("lpcodec: bignum below minimum key size")
)

// MaxStringLength bounds a single read_string32/read_raw_object_32 payload.
const MaxStringLength = 1 << 20

// ReadUint16 reads a 16-bit big-endian value.
func ReadUint16(s *stream.Stream) (uint16, error) {
	return s.ReadUint16BE()
}

// ReadUint32 reads a 32-bit big-endian value. The top bit set is rejected,
// matching the SSH convention that a length/count never has its sign bit
// set.
func ReadUint32(s *stream.Stream) (uint32, error) {
	v, err := s.ReadUint32BE()
	if err != nil {
		return 0, err
	}
	if v&0x80000000 != 0 {
		return 0, s.SetError(ErrOverflow)
	}
	return v, nil
}

// ReadUint32Time reads a 32-bit big-endian Unix timestamp as a UTC time.
func ReadUint32Time(s *stream.Stream) (time.Time, error) {
	v, err := ReadUint32(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

// readLen32 reads and bounds a 32-bit length prefix shared by the
// string/raw-object/MPI-32 readers.
func readLen32(s *stream.Stream) (int, error) {
	v, err := ReadUint32(s)
	if err != nil {
		return 0, err
	}
	if v > MaxStringLength {
		return 0, s.SetError(ErrOverflow)
	}
	return int(v), nil
}

// ReadString32 reads a 32-bit length-prefixed byte string.
func ReadString32(s *stream.Stream) ([]byte, error) {
	n, err := readLen32(s)
	if err != nil {
		return nil, err
	}
	return s.ReadN(n)
}

// WriteString32 writes a 32-bit length-prefixed byte string.
func WriteString32(s *stream.Stream, content []byte) error {
	if err := s.WriteUint32BE(uint32(len(content))); err != nil {
		return err
	}
	_, err := s.Write(content)
	return err
}

// ReadRawObject32 reads a 32-bit length-prefixed opaque blob, content only
// (the length prefix itself is not included in the returned slice), for
// callers that want to hand the payload to a nested, independently
// self-delimited decoder (the length-prefixed analogue of
// ber.ReadRawObjectAlloc).
func ReadRawObject32(s *stream.Stream) ([]byte, error) {
	return ReadString32(s)
}

// ReadInteger16U reads a 16-bit byte-length-prefixed unsigned integer,
// stripping leading zero bytes before returning the minimal payload.
func ReadInteger16U(s *stream.Stream) ([]byte, error) {
	n, err := ReadUint16(s)
	if err != nil {
		return nil, err
	}
	raw, err := s.ReadN(int(n))
	if err != nil {
		return nil, err
	}
	return stripLeadingZeroes(raw), nil
}

// ReadInteger16UBits reads an OpenPGP-style MPI: a 16-bit bit-length
// header followed by ceil(bits/8) content bytes.
func ReadInteger16UBits(s *stream.Stream) ([]byte, error) {
	bits, err := ReadUint16(s)
	if err != nil {
		return nil, err
	}
	nBytes := (int(bits) + 7) / 8
	raw, err := s.ReadN(nBytes)
	if err != nil {
		return nil, err
	}
	return stripLeadingZeroes(raw), nil
}

// WriteInteger16UBits writes value as an OpenPGP-style MPI: a 16-bit
// bit-length header (counting only from the first set bit of the leading
// byte) followed by the minimal big-endian content bytes.
func WriteInteger16UBits(s *stream.Stream, value []byte) error {
	v := stripLeadingZeroes(value)
	bitLen := 0
	if len(v) > 0 {
		bitLen = (len(v) - 1) * 8
		top := v[0]
		for top != 0 {
			top >>= 1
			bitLen++
		}
	}
	if err := s.WriteUint16BE(uint16(bitLen)); err != nil {
		return err
	}
	_, err := s.Write(v)
	return err
}

// ReadInteger32 reads a 32-bit byte-length-prefixed unsigned integer (SSH
// "mpint" convention): the length's top bit must be clear, and leading
// zero bytes are stripped before the minimal payload is returned.
func ReadInteger32(s *stream.Stream) ([]byte, error) {
	n, err := readLen32(s)
	if err != nil {
		return nil, err
	}
	raw, err := s.ReadN(n)
	if err != nil {
		return nil, err
	}
	return stripLeadingZeroes(raw), nil
}

func stripLeadingZeroes(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}

// ReadBignum16UBits reads an OpenPGP MPI into a bignum.Handle, enforcing
// [min,max] byte-length bounds and an optional modulus bound.
func ReadBignum16UBits(s *stream.Stream, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := ReadInteger16UBits(s)
	if err != nil {
		return nil, err
	}
	h, err := bignum.Import(payload, min, max, modulus)
	if err != nil {
		return nil, s.SetError(err)
	}
	return h, nil
}

// ReadBignum16UBitsChecked is ReadBignum16UBits but maps an undersized
// value to ErrNotSecure instead of treating it as malformed input.
func ReadBignum16UBitsChecked(s *stream.Stream, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := ReadInteger16UBits(s)
	if err != nil {
		return nil, err
	}
	h, err := bignum.Import(payload, min, max, modulus)
	if err != nil {
		if errors.Is(err, bignum.ErrTooShort) {
			return nil, s.SetError(ErrNotSecure)
		}
		return nil, s.SetError(err)
	}
	return h, nil
}

// ReadBignum32 reads an SSH-style mpint into a bignum.Handle, enforcing
// [min,max] byte-length bounds and an optional modulus bound.
func ReadBignum32(s *stream.Stream, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := ReadInteger32(s)
	if err != nil {
		return nil, err
	}
	h, err := bignum.Import(payload, min, max, modulus)
	if err != nil {
		return nil, s.SetError(err)
	}
	return h, nil
}

// ReadBignum32Checked is ReadBignum32 but maps an undersized value to
// ErrNotSecure.
func ReadBignum32Checked(s *stream.Stream, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := ReadInteger32(s)
	if err != nil {
		return nil, err
	}
	h, err := bignum.Import(payload, min, max, modulus)
	if err != nil {
		if errors.Is(err, bignum.ErrTooShort) {
			return nil, s.SetError(ErrNotSecure)
		}
		return nil, s.SetError(err)
	}
	return h, nil
}
