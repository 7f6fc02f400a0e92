package ber

import (
	"errors"

	"gitlab.com/yawning/pkimech.git/stream"
)

// ErrTrailingData is returned by CheckObjectEncoding when a buffer holds
// more than one complete object ("trailing garbage").
var ErrTrailingData = errors.New("ber: trailing data after object")

// ReadSequence reads a SEQUENCE header, returning the content length.
// allowIndefinite permits the BER indefinite-length form (returns
// ber.Indefinite); the caller is then responsible for consuming content
// until CheckEOC succeeds.
func ReadSequence(s *stream.Stream, allowIndefinite bool) (int, error) {
	return readConstructedHeader(s, DefaultTag, TagSequence, allowIndefinite, false)
}

// ReadSet reads a SET header, returning the content length.
func ReadSet(s *stream.Stream, allowIndefinite bool) (int, error) {
	return readConstructedHeader(s, DefaultTag, TagSet, allowIndefinite, false)
}

// ReadConstructed reads a constructed object with an explicit tag (e.g. a
// context-specific [n] EXPLICIT wrapper), returning the content length.
func ReadConstructed(s *stream.Stream, tag int, allowIndefinite bool) (int, error) {
	return readConstructedHeader(s, tag, tag, allowIndefinite, false)
}

// ReadLongSequence is ReadSequence but allows full 32-bit lengths, for CMS
// EnvelopedData content that can exceed 32KB.
func ReadLongSequence(s *stream.Stream, allowIndefinite bool) (int, error) {
	return readConstructedHeader(s, DefaultTag, TagSequence, allowIndefinite, true)
}

func readConstructedHeader(s *stream.Stream, tag, defaultTag int, allowIndefinite, long bool) (int, error) {
	if _, err := expectTag(s, tag, defaultTag); err != nil {
		return 0, err
	}
	mode := ShortLength
	switch {
	case long:
		mode = LongAllowIndefinite
	case allowIndefinite:
		mode = ShortAllowIndefinite
	}
	length, err := ReadLength(s, mode)
	if err != nil {
		return 0, err
	}
	if length == Indefinite && !allowIndefinite {
		return 0, s.SetError(ErrBadLength)
	}
	return length, nil
}

// ReadOctetStringHole reads an OCTET STRING header but leaves the content
// on the stream for a nested decoder to parse (a "Hole").
func ReadOctetStringHole(s *stream.Stream, tag int, allowIndefinite bool) (int, error) {
	mode := ShortLength
	if allowIndefinite {
		mode = ShortAllowIndefinite
	}
	return readHeader(s, tag, TagOctetString, mode)
}

// ReadBitStringHole reads a BIT STRING header (including its one
// unused-bits byte, which it returns) but leaves the remaining content on
// the stream.
func ReadBitStringHole(s *stream.Stream, tag int) (contentLength int, unusedBits byte, err error) {
	length, err := readHeader(s, tag, TagBitString, ShortLength)
	if err != nil {
		return 0, 0, err
	}
	if length < 1 {
		return 0, 0, s.SetError(ErrBadLength)
	}
	unusedBits, err = s.Getc()
	if err != nil {
		return 0, 0, err
	}
	if unusedBits > 7 {
		return 0, 0, s.SetError(ErrBadLength)
	}
	return length - 1, unusedBits, nil
}

// ReadGenericHole reads any primitive or constructed object's header and
// returns its content length without interpreting the content at all —
// used when a caller needs to skip or defer-parse an object whose type
// isn't yet known (e.g. an ANY field).
func ReadGenericHole(s *stream.Stream, allowIndefinite bool) (Identifier, int, error) {
	id, err := ReadTag(s)
	if err != nil {
		return Identifier{}, 0, err
	}
	mode := ShortLength
	if allowIndefinite {
		mode = ShortAllowIndefinite
	}
	length, err := ReadLength(s, mode)
	if err != nil {
		return Identifier{}, 0, err
	}
	return id, length, nil
}

// ReadRawObjectAlloc reads one complete self-delimited object (header plus
// content) into a freshly allocated buffer, sized to the decoded header
// It does not interpret the content; pair with
// CheckObjectEncoding to validate that the buffer decodes cleanly with no
// trailing garbage.
func ReadRawObjectAlloc(s *stream.Stream) ([]byte, error) {
	start := s.Tell()
	id, length, err := ReadGenericHole(s, false)
	if err != nil {
		return nil, err
	}
	if err := s.Skip(length, length); err != nil {
		return nil, err
	}
	end := s.Tell()

	_ = id
	return s.Span(start, end)
}

// CheckObjectEncoding validates that buf decodes as exactly one complete
// BER object with no trailing bytes: it re-parses the header,
// skips the declared content, and rejects anything left over.
func CheckObjectEncoding(buf []byte) error {
	s := stream.MemOpenR(buf)
	_, length, err := ReadGenericHole(s, false)
	if err != nil {
		return err
	}
	if err := s.Skip(length, length); err != nil {
		return err
	}
	if s.Len() != 0 {
		return ErrTrailingData
	}
	return nil
}
