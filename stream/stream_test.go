package stream

import (
	"bytes"
	"testing"
)

func TestMemOpenRReadGetcPeek(t *testing.T) {
	s := MemOpenR([]byte{0x01, 0x02, 0x03})

	b, err := s.Peek()
	if err != nil || b != 0x01 {
		t.Fatalf("Peek: got (%v, %v), want (0x01, nil)", b, err)
	}

	b, err = s.Getc()
	if err != nil || b != 0x01 {
		t.Fatalf("Getc: got (%v, %v), want (0x01, nil)", b, err)
	}

	rest, err := s.ReadN(2)
	if err != nil || !bytes.Equal(rest, []byte{0x02, 0x03}) {
		t.Fatalf("ReadN: got (%v, %v)", rest, err)
	}

	if _, err := s.Getc(); err != ErrUnderflow {
		t.Fatalf("Getc at EOF: got %v, want ErrUnderflow", err)
	}
}

func TestStickyError(t *testing.T) {
	s := MemOpenR([]byte{0x01})
	if _, err := s.ReadN(5); err != ErrUnderflow {
		t.Fatalf("ReadN: got %v, want ErrUnderflow", err)
	}
	// Every subsequent op must re-return the same sticky error, without
	// touching the underlying buffer.
	if _, err := s.Getc(); err != ErrUnderflow {
		t.Fatalf("Getc after sticky error: got %v, want ErrUnderflow", err)
	}
	if err := s.Skip(0, 0); err != ErrUnderflow {
		t.Fatalf("Skip after sticky error: got %v, want ErrUnderflow", err)
	}
}

func TestSkipBounds(t *testing.T) {
	s := MemOpenR([]byte{0x01, 0x02, 0x03, 0x04})
	if err := s.Skip(5, 3); err != ErrBadArgument {
		t.Fatalf("Skip(5,3): got %v, want ErrBadArgument", err)
	}

	s2 := MemOpenR([]byte{0x01, 0x02, 0x03, 0x04})
	if err := s2.Skip(2, 10); err != nil {
		t.Fatalf("Skip(2,10): unexpected error %v", err)
	}
	if s2.Tell() != 2 {
		t.Fatalf("Tell: got %d, want 2", s2.Tell())
	}
}

func TestMemOpenWOverflow(t *testing.T) {
	buf := make([]byte, 2)
	s := MemOpenW(buf)
	if _, err := s.Write([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("Write: expected overflow error")
	}
}

func TestNullOpenCountsLength(t *testing.T) {
	s := NullOpen()
	if _, err := s.Write([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("Write: unexpected error %v", err)
	}
	if err := s.Putc(0xAA); err != nil {
		t.Fatalf("Putc: unexpected error %v", err)
	}
	if s.Tell() != 4 {
		t.Fatalf("Tell: got %d, want 4", s.Tell())
	}
}

func TestUint16BERoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	w := MemOpenW(buf)
	if err := w.WriteUint16BE(0xBEEF); err != nil {
		t.Fatalf("WriteUint16BE: %v", err)
	}
	r := MemOpenR(buf)
	v, err := r.ReadUint16BE()
	if err != nil || v != 0xBEEF {
		t.Fatalf("ReadUint16BE: got (%x, %v), want (0xBEEF, nil)", v, err)
	}
}
