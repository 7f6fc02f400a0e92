package mech

import (
	"crypto/subtle"

	"gitlab.com/yawning/pkimech.git/csrand"
)

// fixedFormattedValue is the dummy ciphertext-shaped block substituted
// for a failed RSA decrypt, so the post-decrypt padding check runs
// identical logic on uniform-looking data whether or not the real
// decrypt succeeded. Sized to the largest modulus this core accepts.
var fixedFormattedValue = func() []byte {
	buf := make([]byte, MaxModulusSize)
	buf[0] = 0x00
	buf[1] = 0x02
	for i := 2; i < len(buf); i++ {
		buf[i] = 0x55
	}
	return buf
}()

// WrapPKCS1 implements the PKCS #1 v1.5 key-transport wrap:
// [00][02][padding of non-zero random, >=8 bytes][00][payload], raw-RSA
// encrypted.
func WrapPKCS1(info *WrapInfo) ([]byte, error) {
	const op = "WrapPKCS1"
	modLen := info.Sign.ModulusSize()
	payload := info.Payload
	payloadSize := len(payload)

	if payloadSize+11 > modLen {
		return nil, newErr(op, StatusOverflow, nil)
	}

	em := make([]byte, modLen)
	em[0] = 0x00
	em[1] = 0x02
	padLen := modLen - payloadSize - 3
	if err := csrand.NonZeroBytes(em[2 : 2+padLen]); err != nil {
		return nil, newErr(op, StatusFailed, err)
	}
	em[2+padLen] = 0x00
	copy(em[3+padLen:], payload)

	ciphertext, err := info.Sign.RawEncrypt(em)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	// Catastrophic-failure trap: a faulty or misconfigured cipher context
	// that returns its input unchanged must never be trusted silently.
	sampleLen := 16
	if sampleLen > len(em) {
		sampleLen = len(em)
	}
	if sampleLen <= len(ciphertext) && subtle.ConstantTimeCompare(em[:sampleLen], ciphertext[:sampleLen]) == 1 {
		zeroize(ciphertext)
		return nil, newErr(op, StatusFailed, nil)
	}

	return stripLeadingZeroBytes(ciphertext), nil
}

// UnwrapPKCS1 implements the PKCS #1 v1.5 key-transport unwrap. On a
// decrypt failure it still runs the padding check against
// fixedFormattedValue, so that success and failure paths take
// indistinguishable time. A failed raw decrypt means the ciphertext
// integer was out of range for the modulus — malformed input, not a
// key mismatch — so every rejection here is bad-data, never wrong-key;
// this mechanism has no way to distinguish "wrong key" from "corrupted
// ciphertext" once the decrypt itself has run.
func UnwrapPKCS1(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapPKCS1"
	modLen := info.Sign.ModulusSize()

	padded := make([]byte, modLen)
	copy(padded[modLen-len(ciphertext):], ciphertext)

	decoded, decryptErr := info.Sign.RawDecrypt(padded)
	if decryptErr != nil || len(decoded) != modLen {
		decoded = fixedFormattedValue[:modLen]
	}

	minKeySize := MinKeySize
	if decoded[0] != 0x00 || decoded[1] != 0x02 {
		return nil, newErr(op, StatusBadData, nil)
	}

	zeroPos := -1
	for i := 2; i < len(decoded); i++ {
		if decoded[i] == 0x00 {
			zeroPos = i
			break
		}
	}
	minPadEnd := MinPKCSize - (MaxPayloadSize + 8)
	if zeroPos < 0 || zeroPos < minPadEnd || len(decoded)-zeroPos-1 < minKeySize {
		return nil, newErr(op, StatusBadData, nil)
	}

	payload := make([]byte, len(decoded)-zeroPos-1)
	copy(payload, decoded[zeroPos+1:])
	return payload, nil
}

// WrapPKCS1PGP implements the PGP-MPI key-transport wrap variant: the
// payload is [algorithm ID][symmetric key][16-bit sum-of-bytes checksum],
// then PKCS #1 v1.5-padded and RSA-encrypted exactly like WrapPKCS1.
func WrapPKCS1PGP(info *WrapInfo, key []byte) ([]byte, error) {
	const op = "WrapPKCS1PGP"
	if !info.IsPGP {
		return nil, newErr(op, StatusBadData, nil)
	}
	if info.KeySize != 0 && len(key) != info.KeySize {
		return nil, newErr(op, StatusBadData, nil)
	}

	checksum := uint16(0)
	for _, b := range key {
		checksum += uint16(b)
	}

	payload := make([]byte, 1+len(key)+2)
	payload[0] = info.PGPAlgID
	copy(payload[1:], key)
	payload[len(payload)-2] = byte(checksum >> 8)
	payload[len(payload)-1] = byte(checksum)

	inner := *info
	inner.Payload = payload
	return WrapPKCS1(&inner)
}

// UnwrapPKCS1PGP implements the PGP-MPI key-transport unwrap: after the
// shared PKCS #1 v1.5 padding check, the one-byte algorithm ID is
// stripped off the front of the recovered payload and the trailing
// 16-bit sum-of-bytes checksum verified against the recovered key — a
// checksum mismatch means the decrypt produced the wrong key material,
// reported as wrong-key rather than bad-data. The returned slice is the
// algorithm ID followed by the symmetric key.
func UnwrapPKCS1PGP(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapPKCS1PGP"
	if !info.IsPGP {
		return nil, newErr(op, StatusBadData, nil)
	}

	payload, err := UnwrapPKCS1(info, ciphertext)
	if err != nil {
		return nil, err
	}
	if len(payload) < 3 {
		return nil, newErr(op, StatusBadData, nil)
	}

	algID := payload[0]
	key := payload[1 : len(payload)-2]
	if info.KeySize != 0 && len(key) != info.KeySize {
		return nil, newErr(op, StatusBadData, nil)
	}
	wantChecksum := uint16(payload[len(payload)-2])<<8 | uint16(payload[len(payload)-1])

	checksum := uint16(0)
	for _, b := range key {
		checksum += uint16(b)
	}
	if checksum != wantChecksum {
		return nil, newErr(op, StatusWrongKey, nil)
	}

	out := make([]byte, 1+len(key))
	out[0] = algID
	copy(out[1:], key)
	return out, nil
}

func stripLeadingZeroBytes(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
