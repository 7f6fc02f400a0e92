// Copyright (c) 2014, Yawning Angel <yawning at torproject dot org>
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
//
//  * Redistributions of source code must retain the above copyright notice,
//    this list of conditions and the following disclaimer.
//
//  * Redistributions in binary form must reproduce the above copyright notice,
//    this list of conditions and the following disclaimer in the documentation
//    and/or other materials provided with the distribution.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package stream implements a byte-oriented sequential stream with a sticky
// error state, the substrate every encoded-data codec in this module reads
// and writes through.
//
// Once a Stream's error state is set, by SetError or by any primitive that
// fails, every later call returns that same error without touching the
// underlying buffer.  This lets callers elide per-step error checks in a
// multi-field decode and still detect failure once at the end.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrUnderflow is returned when a read would consume more bytes than the
// stream has remaining.
var ErrUnderflow = errors.New("stream: underflow")

// ErrNotWritable is returned by write operations on a read-only stream.
var ErrNotWritable = errors.New("stream: not writable")

// ErrNotReadable is returned by read operations on a write-only stream.
var ErrNotReadable = errors.New("stream: not readable")

// ErrBadArgument is returned for invariant violations such as skip(n, max)
// with n > max, or a negative count.
var ErrBadArgument = errors.New("stream: bad argument")

// Stream is an opaque byte-oriented sequential stream.  It is not safe for
// concurrent use.
type Stream struct {
	buf      []byte // backing buffer, nil for a null (count-only) stream
	pos      int    // current read/write offset into buf
	maxLen   int    // declared maximum length, <0 means unbounded
	readOnly bool
	writeOnly bool
	isNull   bool // true for null_open: writes are counted, not stored

	err error // sticky error
}

// MemOpenR opens a read-only stream backed by a copy-free view of data.
func MemOpenR(data []byte) *Stream {
	return &Stream{buf: data, maxLen: len(data), readOnly: true}
}

// MemOpenW opens a write-only stream backed by buf.  Writes past len(buf)
// fail with io.ErrShortBuffer.
func MemOpenW(buf []byte) *Stream {
	return &Stream{buf: buf, maxLen: len(buf), writeOnly: true}
}

// NullOpen opens a stream that discards all written data but tracks the
// length that would have been written.  Used for length prediction: run an
// encoder against a null stream first to learn the final size.
func NullOpen() *Stream {
	return &Stream{writeOnly: true, isNull: true, maxLen: -1}
}

// Bytes returns the bytes written so far to a MemOpenW stream, or the bytes
// already consumed from a MemOpenR stream. It panics on a null stream.
func (s *Stream) Bytes() []byte {
	if s.isNull {
		panic("stream: BUG: Bytes() called on a null stream")
	}
	return s.buf[:s.pos]
}

// Tell returns the current absolute position in the stream.
func (s *Stream) Tell() int {
	return s.pos
}

// Span returns a freshly allocated copy of the bytes between absolute
// positions [start, end) of a memory-backed stream. It panics on a null
// stream, which has no addressable backing buffer.
func (s *Stream) Span(start, end int) ([]byte, error) {
	if s.isNull {
		panic("stream: BUG: Span() called on a null stream")
	}
	if s.err != nil {
		return nil, s.err
	}
	if start < 0 || end < start || end > len(s.buf) {
		return nil, ErrBadArgument
	}
	out := make([]byte, end-start)
	copy(out, s.buf[start:end])
	return out, nil
}

// Len returns the number of unread bytes remaining, or -1 if unbounded
// (null stream, or a write stream with no declared bound).
func (s *Stream) Len() int {
	if s.maxLen < 0 {
		return -1
	}
	return s.maxLen - s.pos
}

// SetError sets the stream's sticky error, unless one is already set.
func (s *Stream) SetError(err error) error {
	if s.err == nil && err != nil {
		s.err = err
	}
	return s.err
}

// GetError returns the stream's sticky error, or nil.
func (s *Stream) GetError() error {
	return s.err
}

func (s *Stream) checkRead(n int) error {
	if s.err != nil {
		return s.err
	}
	if s.writeOnly {
		return s.SetError(ErrNotReadable)
	}
	if n < 0 {
		return s.SetError(ErrBadArgument)
	}
	if s.pos+n > len(s.buf) {
		return s.SetError(ErrUnderflow)
	}
	return nil
}

// Getc reads and returns a single byte.
func (s *Stream) Getc() (byte, error) {
	if err := s.checkRead(1); err != nil {
		return 0, err
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// Peek returns the next byte without advancing the stream position.
func (s *Stream) Peek() (byte, error) {
	if err := s.checkRead(1); err != nil {
		return 0, err
	}
	return s.buf[s.pos], nil
}

// Read reads exactly len(p) bytes into p.
func (s *Stream) Read(p []byte) (int, error) {
	if err := s.checkRead(len(p)); err != nil {
		return 0, err
	}
	n := copy(p, s.buf[s.pos:s.pos+len(p)])
	s.pos += n
	return n, nil
}

// ReadN reads and returns the next n bytes as a freshly allocated slice.
func (s *Stream) ReadN(n int) ([]byte, error) {
	if err := s.checkRead(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s.buf[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// Skip advances the read position by n bytes without returning them.
// It refuses n > max, and refuses to underflow the remaining length.
func (s *Stream) Skip(n, max int) error {
	if s.err != nil {
		return s.err
	}
	if n < 0 || n > max {
		return s.SetError(ErrBadArgument)
	}
	if err := s.checkRead(n); err != nil {
		return err
	}
	s.pos += n
	return nil
}

func (s *Stream) checkWrite(n int) error {
	if s.err != nil {
		return s.err
	}
	if s.readOnly {
		return s.SetError(ErrNotWritable)
	}
	if n < 0 {
		return s.SetError(ErrBadArgument)
	}
	if s.isNull {
		return nil
	}
	if s.maxLen >= 0 && s.pos+n > s.maxLen {
		return s.SetError(io.ErrShortBuffer)
	}
	return nil
}

// Putc writes a single byte.
func (s *Stream) Putc(b byte) error {
	if err := s.checkWrite(1); err != nil {
		return err
	}
	if !s.isNull {
		s.buf[s.pos] = b
	}
	s.pos++
	return nil
}

// Write writes p in full.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.checkWrite(len(p)); err != nil {
		return 0, err
	}
	if !s.isNull {
		copy(s.buf[s.pos:], p)
	}
	s.pos += len(p)
	return len(p), nil
}

// WriteUint16BE writes a 16-bit big-endian length/value.
func (s *Stream) WriteUint16BE(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.Write(b[:])
	return err
}

// WriteUint32BE writes a 32-bit big-endian length/value.
func (s *Stream) WriteUint32BE(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.Write(b[:])
	return err
}

// ReadUint16BE reads a 16-bit big-endian value.
func (s *Stream) ReadUint16BE() (uint16, error) {
	var b [2]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// ReadUint32BE reads a 32-bit big-endian value.
func (s *Stream) ReadUint32BE() (uint32, error) {
	var b [4]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
