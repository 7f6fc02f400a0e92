package mech

import (
	"golang.org/x/text/encoding/unicode"

	"gitlab.com/yawning/pkimech.git/primitives"
)

// pkcs12IDDiversifier selects which of the three PKCS #12 derivation
// purposes (key material, IV, or MAC key) the block is being generated
// for (RFC 7292 Appendix B.3).
type pkcs12IDDiversifier byte

const (
	PKCS12DiversifierKey pkcs12IDDiversifier = 1
	PKCS12DiversifierIV  pkcs12IDDiversifier = 2
	PKCS12DiversifierMAC pkcs12IDDiversifier = 3
)

// DerivePKCS12 implements the PKCS #12 KDF: the password is
// transcoded to big-endian UTF-16 with a trailing NUL (the "early
// Microsoft non-bug" per RFC 7292), then a diversifier‖salt‖password
// block is repeatedly hashed and added (mod 2^(8*blockSize)) into itself.
func DerivePKCS12(info *DeriveInfo, diversifier pkcs12IDDiversifier) ([]byte, error) {
	const op = "DerivePKCS12"
	if info.Iterations <= 0 || info.OutLen <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	password, err := utf16BEWithNUL(info.Password)
	if err != nil {
		return nil, newErr(op, StatusBadData, err)
	}

	h := info.Hash
	blockSize := hashBlockSize(h)
	digestSize := h.Size()

	dPad := repeatToBlock([]byte{byte(diversifier)}, blockSize)
	sPad := repeatToBlock(info.Salt, blockSize)
	pPad := repeatToBlock(password, blockSize)

	ijBlock := make([]byte, 0, len(dPad)+len(sPad)+len(pPad))
	ijBlock = append(ijBlock, dPad...)
	ijBlock = append(ijBlock, sPad...)
	ijBlock = append(ijBlock, pPad...)

	out := make([]byte, 0, info.OutLen+digestSize)
	for len(out) < info.OutLen {
		digest := h.New()
		digest.Write(ijBlock)
		a := digest.Sum(nil)
		for i := 1; i < info.Iterations; i++ {
			digest.Reset()
			digest.Write(a)
			a = digest.Sum(a[:0])
		}
		out = append(out, a...)

		// B = A repeated to fill one block, then added independently
		// into every v-octet block of I ("Ij = (Ij + B + 1) mod
		// 2^(8v)" per RFC 7292 §B.4) — each block's carry is local to
		// that block, not chained across the whole of I.
		b := repeatToBlock(a, blockSize)
		addBlockwise(ijBlock[len(dPad):], b, blockSize)
	}
	return out[:info.OutLen], nil
}

func hashBlockSize(h primitives.HashContext) int {
	// SHA-1/SHA-256/SHA-384/SHA-512 all use the block sizes below; this
	// covers every hash this package's KDF families reference.
	switch h.Size() {
	case 20, 32:
		return 64
	case 48, 64:
		return 128
	default:
		return 64
	}
}

func repeatToBlock(b []byte, blockSize int) []byte {
	if len(b) == 0 {
		b = []byte{0}
	}
	n := (len(b) + blockSize - 1) / blockSize * blockSize
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = b[i%len(b)]
	}
	return out
}

// addBlockwise adds b (plus 1) into buf independently within each
// v-octet block, carry confined to that block (RFC 7292 §B.4: "Ij = (Ij
// + B + 1) mod 2^(8v)" for each block Ij of I).
func addBlockwise(buf, b []byte, v int) {
	for off := 0; off < len(buf); off += v {
		end := off + v
		if end > len(buf) {
			end = len(buf)
		}
		addOneMod(buf[off:end], b)
	}
}

// addOneMod adds b (plus a carry-in of 1) into dst as a big-endian
// unsigned integer, mod 2^(8*len(dst)).
func addOneMod(dst, b []byte) {
	carry := 1
	for i := len(dst) - 1; i >= 0; i-- {
		sum := int(dst[i]) + int(b[i%len(b)]) + carry
		dst[i] = byte(sum)
		carry = sum >> 8
	}
}

func utf16BEWithNUL(password []byte) ([]byte, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, err := enc.Bytes(password)
	if err != nil {
		return nil, err
	}
	return append(encoded, 0x00, 0x00), nil
}
