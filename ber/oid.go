package ber

import (
	"bytes"
	"errors"

	"gitlab.com/yawning/pkimech.git/stream"
)

// MaxOIDSize is the largest encoded OID (tag + length + content) this codec
// accepts — OIDs in this corpus never exceed 127 content bytes.
const MaxOIDSize = 32

// ErrOIDTooLong is returned when an OID's length byte exceeds 127, or the
// encoded OID (tag+length+content) exceeds MaxOIDSize.
var ErrOIDTooLong = errors.New("ber: OID too long")

// ReadOID reads an entire OBJECT IDENTIFIER (tag, one-byte length, content)
// as a raw blob, for byte-exact comparison. The OID's length
// must be encoded in a single byte (values above 127 content bytes are
// rejected).
func ReadOID(s *stream.Stream) ([]byte, error) {
	id, err := ReadTag(s)
	if err != nil {
		return nil, err
	}
	if id.Class != ClassUniversal || id.Number != TagOID || id.Constructed {
		return nil, s.SetError(ErrBadTag)
	}
	lenByte, err := s.Getc()
	if err != nil {
		return nil, err
	}
	if lenByte&0x80 != 0 {
		// Long-form length: only acceptable if it encodes to exactly
		// one content byte's worth of length-of-length, but this package
		// requires OIDs to use the one-byte short form outright.
		return nil, s.SetError(ErrOIDTooLong)
	}
	content, err := s.ReadN(int(lenByte))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+len(content))
	out = append(out, TagOID, lenByte)
	out = append(out, content...)
	if len(out) > MaxOIDSize {
		return nil, s.SetError(ErrOIDTooLong)
	}
	return out, nil
}

// WriteOID writes a raw OID blob (as returned by ReadOID) verbatim.
func WriteOID(s *stream.Stream, encoded []byte) error {
	_, err := s.Write(encoded)
	return err
}

// OIDEntry is one row of an OID dispatch table (an "OID dispatch
// table"): an encoded OID paired with a selection ID, used by readers that
// accept one of several alternative OIDs (e.g. AlgorithmIdentifier
// dispatch).
type OIDEntry struct {
	OID        []byte
	SelectionID int
	Aux        interface{}
}

// WildcardSelectionID is used as the last entry's SelectionID in a
// dispatch table that accepts an unrecognised OID as "matched anything
// else". A wildcard entry must be last in the table.
const WildcardSelectionID = -1

// MatchOID looks encoded up in table, last-byte prefilter then full
// compare. Returns the matching entry's SelectionID and Aux,
// or the wildcard entry's if present and nothing else matched.
func MatchOID(table []OIDEntry, encoded []byte) (selectionID int, aux interface{}, ok bool) {
	if len(encoded) == 0 {
		return 0, nil, false
	}
	lastByte := encoded[len(encoded)-1]

	for _, e := range table {
		if e.SelectionID == WildcardSelectionID {
			continue
		}
		if len(e.OID) == 0 || e.OID[len(e.OID)-1] != lastByte {
			continue
		}
		if bytes.Equal(e.OID, encoded) {
			return e.SelectionID, e.Aux, true
		}
	}
	for _, e := range table {
		if e.SelectionID == WildcardSelectionID {
			return e.SelectionID, e.Aux, true
		}
	}
	return 0, nil, false
}
