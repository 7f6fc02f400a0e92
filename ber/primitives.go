package ber

import (
	"errors"

	"gitlab.com/yawning/pkimech.git/bignum"
	"gitlab.com/yawning/pkimech.git/stream"
)

var (
	// ErrOverflow is returned when a primitive's declared content length
	// exceeds a hard cap (OCTET STRING "over-long is overflow").
	ErrOverflow = errors.New("ber: value too long")
	// ErrNotSecure is returned by ReadBignumChecked when an imported bignum
	// is below the required minimum key size.
	ErrNotSecure = errors.New("ber: bignum below minimum key size")
)

const maxOctetStringLength = 1 << 20

// readHeader reads and tag-checks a primitive's header, returning its
// content length. tag is NoTag/DefaultTag/AnyTag/a concrete tag number;
// defaultTag is the type's standard universal tag.
func readHeader(s *stream.Stream, tag, defaultTag int, mode ReadMode) (int, error) {
	if _, err := expectTag(s, tag, defaultTag); err != nil {
		return 0, err
	}
	return ReadLength(s, mode)
}

// ReadBoolean reads a BOOLEAN primitive: length must be 1;
// content 0x00 is false, anything else (including non-canonical 0x01..0xFF)
// is true.
func ReadBoolean(s *stream.Stream, tag int) (bool, error) {
	length, err := readHeader(s, tag, TagBoolean, ShortLength)
	if err != nil {
		return false, err
	}
	if length != 1 {
		return false, s.SetError(ErrBadLength)
	}
	b, err := s.Getc()
	if err != nil {
		return false, err
	}
	return b != 0x00, nil
}

// ReadNull reads a NULL primitive: length must be 0.
func ReadNull(s *stream.Stream, tag int) error {
	length, err := readHeader(s, tag, TagNull, ShortLength)
	if err != nil {
		return err
	}
	if length != 0 {
		return s.SetError(ErrBadLength)
	}
	return nil
}

// ReadEnumerated reads an ENUMERATED value, which must lie in [0,1000]
// (spec §4.4); values outside that range are rejected with ErrBadLength.
func ReadEnumerated(s *stream.Stream, tag int) (int, error) {
	v, err := readShortInteger(s, tag, TagEnumerated)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1000 {
		return 0, s.SetError(ErrBadLength)
	}
	return v, nil
}

// ReadShortInteger reads an INTEGER that must fit in a machine word (spec
// §4.4 "ENUMERATED / short INTEGER").
func ReadShortInteger(s *stream.Stream, tag int) (int, error) {
	return readShortInteger(s, tag, TagInteger)
}

func readShortInteger(s *stream.Stream, tag, defaultTag int) (int, error) {
	raw, err := readIntegerBytes(s, tag, defaultTag, 8)
	if err != nil {
		return 0, err
	}
	var v int64
	for _, b := range raw {
		v = v<<8 | int64(b)
	}
	if v < 0 || int64(int(v)) != v {
		return 0, s.SetError(ErrLengthOverflow)
	}
	return int(v), nil
}

// readIntegerBytes reads an INTEGER header and content, stripping up to 8
// leading zero bytes of non-minimal padding, and returns the effective
// payload. maxLen bounds the effective payload length (0 means unbounded
// within maxOctetStringLength).
func readIntegerBytes(s *stream.Stream, tag, defaultTag, maxLen int) ([]byte, error) {
	length, err := readHeader(s, tag, defaultTag, ShortLength)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, s.SetError(ErrBadLength)
	}
	raw, err := s.ReadN(length)
	if err != nil {
		return nil, err
	}

	stripped := 0
	for stripped < len(raw)-1 && stripped < 8 && raw[stripped] == 0 {
		stripped++
	}
	payload := raw[stripped:]
	if maxLen > 0 && len(payload) > maxLen {
		return nil, s.SetError(ErrOverflow)
	}
	return payload, nil
}

// ReadIntegerFixed reads an INTEGER into a caller-supplied fixed buffer,
// truncating from the left if the value is longer than the buffer (spec
// §4.4: "acceptable only for opaque integer blobs such as cert serial
// numbers"). It returns the number of bytes actually used.
func ReadIntegerFixed(s *stream.Stream, tag int, out []byte) (int, error) {
	payload, err := readIntegerBytes(s, tag, TagInteger, 0)
	if err != nil {
		return 0, err
	}
	if len(payload) > len(out) {
		payload = payload[len(payload)-len(out):]
	}
	n := copy(out, payload)
	return n, nil
}

// ReadBignum reads an INTEGER into a bignum.Handle, enforcing [min,max]
// length bounds and an optional modulus bound via bignum.Import. Any
// failure is reported as bad-data (use ReadBignumChecked for the
// key-size-check variant that reports not-secure instead).
func ReadBignum(s *stream.Stream, tag int, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := readIntegerBytes(s, tag, TagInteger, 0)
	if err != nil {
		return nil, err
	}
	h, err := bignum.Import(payload, min, max, modulus)
	if err != nil {
		return nil, s.SetError(err)
	}
	return h, nil
}

// ReadBignumChecked is ReadBignum but maps an undersized value to
// ErrNotSecure rather than treating it as malformed input.
func ReadBignumChecked(s *stream.Stream, tag int, min, max int, modulus *bignum.Handle) (*bignum.Handle, error) {
	payload, err := readIntegerBytes(s, tag, TagInteger, 0)
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

// WriteInteger writes an INTEGER primitive from the given two's-complement
// magnitude bytes (unsigned, per how this codec is used — always positive
// values), adding a leading 0x00 pad byte if the top bit is set (so the
// encoding isn't mistaken for a negative number) and stripping redundant
// leading zero bytes otherwise.
func WriteInteger(s *stream.Stream, value []byte) error {
	v := value
	for len(v) > 1 && v[0] == 0 && v[1]&0x80 == 0 {
		v = v[1:]
	}
	needsPad := len(v) == 0 || v[0]&0x80 != 0

	length := len(v)
	if needsPad {
		length++
	}
	if length == 0 {
		length = 1
	}

	if err := s.Putc(TagInteger); err != nil {
		return err
	}
	if err := WriteLength(s, length); err != nil {
		return err
	}
	if len(v) == 0 {
		return s.Putc(0x00)
	}
	if needsPad {
		if err := s.Putc(0x00); err != nil {
			return err
		}
	}
	_, err := s.Write(v)
	return err
}

// ReadOctetString reads an OCTET STRING's content bytes; hard length
// cap, over-long is ErrOverflow.
func ReadOctetString(s *stream.Stream, tag int) ([]byte, error) {
	length, err := readHeader(s, tag, TagOctetString, ShortLength)
	if err != nil {
		return nil, err
	}
	if length > maxOctetStringLength {
		return nil, s.SetError(ErrOverflow)
	}
	return s.ReadN(length)
}

// WriteOctetString writes an OCTET STRING primitive.
func WriteOctetString(s *stream.Stream, content []byte) error {
	if err := s.Putc(TagOctetString); err != nil {
		return err
	}
	if err := WriteLength(s, len(content)); err != nil {
		return err
	}
	_, err := s.Write(content)
	return err
}

// ReadCharacterString reads a polymorphic character string type (tag is
// mandatory — AnyTag or a concrete tag, never DefaultTag). Content that
// overruns len(out) is silently truncated into it, matching real-world
// certificates that over-run their declared string length limits (spec
// §4.4).
func ReadCharacterString(s *stream.Stream, tag int, out []byte) (tagNumber, n int, err error) {
	id, err := ReadTag(s)
	if err != nil {
		return 0, 0, err
	}
	if tag != AnyTag && id.Number != tag {
		return 0, 0, s.SetError(ErrTagMismatch)
	}
	length, err := ReadLength(s, ShortLength)
	if err != nil {
		return 0, 0, err
	}
	content, err := s.ReadN(length)
	if err != nil {
		return 0, 0, err
	}
	n = copy(out, content)
	return id.Number, n, nil
}

// ReadBitString reads a BIT STRING used as a compact integer flag set (spec
// §4.4): the header byte is the unused-bit count (0-7), content is at most
// 4 bytes. Bit order is reversed relative to the wire encoding (ASN.1 bit 0
// is this codec's MSB).
func ReadBitString(s *stream.Stream, tag int) (value uint32, unusedBits int, err error) {
	length, err := readHeader(s, tag, TagBitString, ShortLength)
	if err != nil {
		return 0, 0, err
	}
	if length < 1 || length > 5 {
		return 0, 0, s.SetError(ErrOverflow)
	}
	content, err := s.ReadN(length)
	if err != nil {
		return 0, 0, err
	}
	unused := int(content[0])
	if unused > 7 {
		return 0, 0, s.SetError(ErrBadLength)
	}
	data := content[1:]

	var raw uint32
	for _, b := range data {
		raw = raw<<8 | uint32(reverseBits(b))
	}
	return raw, unused, nil
}

// WriteBitString writes a compact BIT STRING flag set of nBytes content
// bytes (big-endian, MSB-first in our representation), with unusedBits
// trailing unused bits in the final wire byte.
func WriteBitString(s *stream.Stream, value uint32, nBytes, unusedBits int) error {
	if nBytes < 0 || nBytes > 4 || unusedBits < 0 || unusedBits > 7 {
		return s.SetError(ErrBadLength)
	}
	if err := s.Putc(TagBitString); err != nil {
		return err
	}
	if err := WriteLength(s, nBytes+1); err != nil {
		return err
	}
	if err := s.Putc(byte(unusedBits)); err != nil {
		return err
	}
	for i := 0; i < nBytes; i++ {
		shift := uint(8 * (nBytes - 1 - i))
		b := byte(value >> shift)
		if err := s.Putc(reverseBits(b)); err != nil {
			return err
		}
	}
	return nil
}

func reverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}
