package lpcodec

import (
	"bytes"
	"testing"
	"time"

	"gitlab.com/yawning/pkimech.git/stream"
)

func TestUint32RejectsTopBitSet(t *testing.T) {
	buf := []byte{0x80, 0x00, 0x00, 0x01}
	r := stream.MemOpenR(buf)
	if _, err := ReadUint32(r); err != ErrOverflow {
		t.Fatalf("ReadUint32: got %v, want ErrOverflow", err)
	}
}

func TestUint32TimeRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	w := stream.MemOpenW(buf)
	if err := w.WriteUint32BE(1700000000); err != nil {
		t.Fatalf("WriteUint32BE: %v", err)
	}
	r := stream.MemOpenR(w.Bytes())
	got, err := ReadUint32Time(r)
	if err != nil {
		t.Fatalf("ReadUint32Time: %v", err)
	}
	want := time.Unix(1700000000, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("ReadUint32Time: got %v, want %v", got, want)
	}
}

func TestString32RoundTrip(t *testing.T) {
	content := []byte("the quick brown fox")
	buf := make([]byte, 64)
	w := stream.MemOpenW(buf)
	if err := WriteString32(w, content); err != nil {
		t.Fatalf("WriteString32: %v", err)
	}
	r := stream.MemOpenR(w.Bytes())
	got, err := ReadString32(r)
	if err != nil || !bytes.Equal(got, content) {
		t.Fatalf("round trip: got (%x,%v)", got, err)
	}
}

func TestString32OverflowRejected(t *testing.T) {
	buf := []byte{0x00, 0x20, 0x00, 0x00} // len = 1<<21, exceeds MaxStringLength
	r := stream.MemOpenR(buf)
	if _, err := ReadString32(r); err != ErrOverflow {
		t.Fatalf("ReadString32: got %v, want ErrOverflow", err)
	}
}

func TestInteger16UStripsLeadingZeroes(t *testing.T) {
	buf := []byte{0x00, 0x03, 0x00, 0x01, 0x02}
	r := stream.MemOpenR(buf)
	got, err := ReadInteger16U(r)
	if err != nil || !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Fatalf("ReadInteger16U: got (%x,%v)", got, err)
	}
}

func TestInteger16UBitsRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x01},
		{0xFF},
		{0x01, 0x00},
		{0x00, 0x00, 0x80, 0x01},
	}
	for _, c := range cases {
		buf := make([]byte, 32)
		w := stream.MemOpenW(buf)
		if err := WriteInteger16UBits(w, c); err != nil {
			t.Fatalf("WriteInteger16UBits(%x): %v", c, err)
		}
		r := stream.MemOpenR(w.Bytes())
		got, err := ReadInteger16UBits(r)
		if err != nil {
			t.Fatalf("ReadInteger16UBits(%x): %v", c, err)
		}
		want := stripLeadingZeroes(c)
		if !bytes.Equal(got, want) {
			t.Fatalf("round trip %x: got %x, want %x", c, got, want)
		}
	}
}

func TestInteger16UBitsExactBitCount(t *testing.T) {
	// 0x01 is a single significant bit.
	buf := make([]byte, 8)
	w := stream.MemOpenW(buf)
	if err := WriteInteger16UBits(w, []byte{0x01}); err != nil {
		t.Fatalf("WriteInteger16UBits: %v", err)
	}
	out := w.Bytes()
	bits := int(out[0])<<8 | int(out[1])
	if bits != 1 {
		t.Fatalf("bit length: got %d, want 1", bits)
	}

	// 0xFF is 8 significant bits.
	buf2 := make([]byte, 8)
	w2 := stream.MemOpenW(buf2)
	if err := WriteInteger16UBits(w2, []byte{0xFF}); err != nil {
		t.Fatalf("WriteInteger16UBits: %v", err)
	}
	out2 := w2.Bytes()
	bits2 := int(out2[0])<<8 | int(out2[1])
	if bits2 != 8 {
		t.Fatalf("bit length: got %d, want 8", bits2)
	}
}

func TestInteger32RejectsTopBitSet(t *testing.T) {
	buf := []byte{0x80, 0x00, 0x00, 0x01, 0xAA}
	r := stream.MemOpenR(buf)
	if _, err := ReadInteger32(r); err != ErrOverflow {
		t.Fatalf("ReadInteger32: got %v, want ErrOverflow", err)
	}
}

func TestBignum16UBitsCheckedKeySize(t *testing.T) {
	buf := []byte{0x00, 0x08, 0x05} // 8-bit MPI, one content byte
	r := stream.MemOpenR(buf)
	if _, err := ReadBignum16UBitsChecked(r, 64, 512, nil); err != ErrNotSecure {
		t.Fatalf("ReadBignum16UBitsChecked: got %v, want ErrNotSecure", err)
	}
}

func TestTruncatedString32Fails(t *testing.T) {
	full := []byte{0x00, 0x00, 0x00, 0x05, 1, 2, 3, 4, 5}
	for n := 0; n < len(full); n++ {
		r := stream.MemOpenR(full[:n])
		if _, err := ReadString32(r); err == nil {
			t.Fatalf("ReadString32(truncated to %d): unexpectedly succeeded", n)
		}
	}
}
