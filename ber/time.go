package ber

import (
	"errors"
	"time"

	"gitlab.com/yawning/pkimech.git/stream"
)

// ErrBadTime is returned for a malformed UTCTime/GeneralizedTime encoding:
// wrong length, non-digit field, or a missing 'Z' terminator.
var ErrBadTime = errors.New("ber: invalid time encoding")

// ReadUTCTime reads a UTCTime primitive: exactly 13 bytes (YYMMDDhhmmssZ).
// Two-digit years below 50 are treated as 20xx. The result is UTC — no
// local-zone conversion is attempted.
func ReadUTCTime(s *stream.Stream, tag int) (time.Time, error) {
	return readTime(s, tag, TagUTCTime, 13, true)
}

// ReadGeneralizedTime reads a GeneralizedTime primitive: exactly 15 bytes
// (YYYYMMDDhhmmssZ).
func ReadGeneralizedTime(s *stream.Stream, tag int) (time.Time, error) {
	return readTime(s, tag, TagGeneralizedTime, 15, false)
}

func readTime(s *stream.Stream, tag, defaultTag, wantLen int, twoDigitYear bool) (time.Time, error) {
	length, err := readHeader(s, tag, defaultTag, ShortLength)
	if err != nil {
		return time.Time{}, err
	}
	if length != wantLen {
		return time.Time{}, s.SetError(ErrBadTime)
	}
	raw, err := s.ReadN(length)
	if err != nil {
		return time.Time{}, err
	}
	if raw[len(raw)-1] != 'Z' {
		return time.Time{}, s.SetError(ErrBadTime)
	}
	digits := raw[:len(raw)-1]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return time.Time{}, s.SetError(ErrBadTime)
		}
	}

	field := func(off, n int) int {
		v := 0
		for i := 0; i < n; i++ {
			v = v*10 + int(digits[off+i]-'0')
		}
		return v
	}

	var year, idx int
	if twoDigitYear {
		year = field(0, 2)
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
		idx = 2
	} else {
		year = field(0, 4)
		idx = 4
	}

	month := field(idx, 2)
	day := field(idx+2, 2)
	hour := field(idx+4, 2)
	minute := field(idx+6, 2)
	second := field(idx+8, 2)

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, s.SetError(ErrBadTime)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// WriteUTCTime writes t as a UTCTime primitive (two-digit year).
func WriteUTCTime(s *stream.Stream, t time.Time) error {
	u := t.UTC()
	year := u.Year() % 100
	content := formatTimeDigits(year, int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second(), 2)
	return writeTimePrimitive(s, TagUTCTime, content)
}

// WriteGeneralizedTime writes t as a GeneralizedTime primitive (four-digit
// year).
func WriteGeneralizedTime(s *stream.Stream, t time.Time) error {
	u := t.UTC()
	content := formatTimeDigits(u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second(), 4)
	return writeTimePrimitive(s, TagGeneralizedTime, content)
}

func writeTimePrimitive(s *stream.Stream, tag byte, content []byte) error {
	if err := s.Putc(tag); err != nil {
		return err
	}
	if err := WriteLength(s, len(content)); err != nil {
		return err
	}
	_, err := s.Write(content)
	return err
}

func formatTimeDigits(year, month, day, hour, minute, second, yearWidth int) []byte {
	out := make([]byte, 0, yearWidth+11)
	out = appendFixedDigits(out, year, yearWidth)
	out = appendFixedDigits(out, month, 2)
	out = appendFixedDigits(out, day, 2)
	out = appendFixedDigits(out, hour, 2)
	out = appendFixedDigits(out, minute, 2)
	out = appendFixedDigits(out, second, 2)
	out = append(out, 'Z')
	return out
}

func appendFixedDigits(out []byte, v, width int) []byte {
	digits := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return append(out, digits...)
}
