package bignum

import (
	"bytes"
	"testing"
)

func TestImportExportRoundTrip(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03}
	h, err := Import(in, 1, 256, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := h.Export(); !bytes.Equal(got, in) {
		t.Fatalf("Export: got %x, want %x", got, in)
	}
}

func TestImportStripsLeadingZeroes(t *testing.T) {
	h, err := Import([]byte{0x00, 0x00, 0x7F}, 1, 256, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := h.Export(); !bytes.Equal(got, []byte{0x7F}) {
		t.Fatalf("Export: got %x, want 7f", got)
	}
}

func TestImportTooShort(t *testing.T) {
	if _, err := Import([]byte{0x01}, 4, 256, nil); err != ErrTooShort {
		t.Fatalf("Import: got %v, want ErrTooShort", err)
	}
}

func TestImportModulusBound(t *testing.T) {
	mod, _ := Import([]byte{0x10}, 1, 8, nil)
	if _, err := Import([]byte{0x10}, 1, 8, mod); err != ErrModulusExceeded {
		t.Fatalf("Import: got %v, want ErrModulusExceeded", err)
	}
	if _, err := Import([]byte{0x0F}, 1, 8, mod); err != nil {
		t.Fatalf("Import: unexpected error %v", err)
	}
}

func TestHighBit(t *testing.T) {
	h, _ := Import([]byte{0x80, 0x00}, 1, 8, nil)
	if !h.HighBit() {
		t.Fatalf("HighBit: want true")
	}
	h2, _ := Import([]byte{0x7F}, 1, 8, nil)
	if h2.HighBit() {
		t.Fatalf("HighBit: want false")
	}
}

func TestEqualDifferentLengths(t *testing.T) {
	a, _ := Import([]byte{0x00, 0x01}, 1, 8, nil)
	b, _ := Import([]byte{0x01}, 1, 8, nil)
	if !a.Equal(b) {
		t.Fatalf("Equal: want true for equivalent values of different encoded length")
	}
}
