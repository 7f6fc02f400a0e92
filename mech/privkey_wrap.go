package mech

import (
	"crypto/sha1"
	"crypto/subtle"

	"gitlab.com/yawning/pkimech.git/ber"
	"gitlab.com/yawning/pkimech.git/stream"
)

// WrapPrivateKey encrypts a DER-encoded PKCS #8 / PKCS #15 private-key
// body: append 1..blockSize bytes of PKCS #5 padding (every pad byte equal
// to the pad count), then CBC-encrypt. Checks the first and last 8 bytes
// of plaintext against the matching ciphertext bytes as a
// catastrophic-failure trap.
func WrapPrivateKey(info *WrapInfo, der []byte) ([]byte, error) {
	const op = "WrapPrivateKey"
	blockSize := info.Block.BlockSize()

	padLen := blockSize - len(der)%blockSize
	padded := make([]byte, len(der)+padLen)
	copy(padded, der)
	for i := len(der); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}

	ciphertext, err := info.Block.EncryptCBC(info.KEK, info.IV, padded)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	n := 8
	if n > len(padded) {
		n = len(padded)
	}
	headMatch := subtle.ConstantTimeCompare(padded[:n], ciphertext[:n])
	tailMatch := subtle.ConstantTimeCompare(padded[len(padded)-n:], ciphertext[len(ciphertext)-n:])
	if headMatch == 1 || tailMatch == 1 {
		zeroize(ciphertext)
		return nil, newErr(op, StatusFailed, nil)
	}

	return ciphertext, nil
}

// UnwrapPrivateKey reverses WrapPrivateKey. Both the top-level ASN.1
// length and the PKCS #5 padding are validated; any failure is reported
// as wrong-key, since the overwhelmingly likely cause is a bad passphrase
// rather than corrupt input.
func UnwrapPrivateKey(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapPrivateKey"
	blockSize := info.Block.BlockSize()

	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, newErr(op, StatusWrongKey, nil)
	}

	padded, err := info.Block.DecryptCBC(info.KEK, info.IV, ciphertext)
	if err != nil {
		return nil, newErr(op, StatusWrongKey, err)
	}

	padLen := int(padded[len(padded)-1])
	if padLen < 1 || padLen > blockSize || padLen > len(padded) {
		return nil, newErr(op, StatusWrongKey, nil)
	}
	for _, b := range padded[len(padded)-padLen:] {
		if int(b) != padLen {
			return nil, newErr(op, StatusWrongKey, nil)
		}
	}

	der := padded[:len(padded)-padLen]
	if err := ber.CheckObjectEncoding(der); err != nil {
		return nil, newErr(op, StatusWrongKey, err)
	}

	return der, nil
}

// pgpMPI is one OpenPGP multi-precision-integer field: a 2-byte bit-count
// header followed by the minimal big-endian value bytes.
type pgpMPI struct {
	header [2]byte
	value  []byte
}

func readPGPMPIs(der []byte, count int) ([]pgpMPI, error) {
	s := stream.MemOpenR(der)
	mpis := make([]pgpMPI, count)
	for i := range mpis {
		bitLen, value, err := readOneMPI(s)
		if err != nil {
			return nil, err
		}
		mpis[i].header[0] = byte(bitLen >> 8)
		mpis[i].header[1] = byte(bitLen)
		mpis[i].value = value
	}
	return mpis, nil
}

func readOneMPI(s *stream.Stream) (int, []byte, error) {
	hi, err := s.Getc()
	if err != nil {
		return 0, nil, err
	}
	lo, err := s.Getc()
	if err != nil {
		return 0, nil, err
	}
	bitLen := int(hi)<<8 | int(lo)
	byteLen := (bitLen + 7) / 8
	value, err := s.ReadN(byteLen)
	if err != nil {
		return 0, nil, err
	}
	return bitLen, value, nil
}

// WrapPrivateKeyPGP2 implements the PGP 2 private-key wrap variant: only
// each MPI's value bytes are encrypted in CFB mode, lengths stay
// cleartext, and a 16-bit sum-of-bytes checksum over the concatenated MPI
// payloads follows the last MPI.
func WrapPrivateKeyPGP2(info *WrapInfo, der []byte, mpiCount int) ([]byte, error) {
	const op = "WrapPrivateKeyPGP2"
	mpis, err := readPGPMPIs(der, mpiCount)
	if err != nil {
		return nil, newErr(op, StatusBadData, err)
	}

	out := stream.MemOpenW(make([]byte, len(der)+2))
	checksum := uint16(0)
	iv := append([]byte(nil), info.IV...)
	for _, m := range mpis {
		out.Write(m.header[:])
		ct, err := info.Block.EncryptCFB(info.KEK, iv, m.value)
		if err != nil {
			return nil, newErr(op, StatusFailed, err)
		}
		out.Write(ct)
		if len(ct) >= info.Block.BlockSize() {
			iv = ct[len(ct)-info.Block.BlockSize():]
		}
		for _, b := range m.value {
			checksum += uint16(b)
		}
	}
	out.WriteUint16BE(checksum)
	return out.Bytes(), nil
}

// UnwrapPrivateKeyPGP2 reverses WrapPrivateKeyPGP2, parsing each MPI's
// cleartext length header to find the value boundary, decrypting only the
// value bytes, and verifying the trailing checksum.
func UnwrapPrivateKeyPGP2(info *WrapInfo, wrapped []byte, mpiCount int) ([]byte, error) {
	const op = "UnwrapPrivateKeyPGP2"
	if len(wrapped) < 2 {
		return nil, newErr(op, StatusBadData, nil)
	}

	s := stream.MemOpenR(wrapped)
	out := stream.MemOpenW(make([]byte, len(wrapped)-2))
	checksum := uint16(0)
	iv := append([]byte(nil), info.IV...)

	for i := 0; i < mpiCount; i++ {
		hi, err := s.Getc()
		if err != nil {
			return nil, newErr(op, StatusBadData, err)
		}
		lo, err := s.Getc()
		if err != nil {
			return nil, newErr(op, StatusBadData, err)
		}
		byteLen := (int(hi)<<8 | int(lo)) + 7
		byteLen /= 8
		ct, err := s.ReadN(byteLen)
		if err != nil {
			return nil, newErr(op, StatusBadData, err)
		}
		pt, err := info.Block.DecryptCFB(info.KEK, iv, ct)
		if err != nil {
			return nil, newErr(op, StatusWrongKey, err)
		}
		out.Putc(hi)
		out.Putc(lo)
		out.Write(pt)
		if len(ct) >= info.Block.BlockSize() {
			iv = ct[len(ct)-info.Block.BlockSize():]
		}
		for _, b := range pt {
			checksum += uint16(b)
		}
	}

	trailer, err := s.ReadN(2)
	if err != nil {
		return nil, newErr(op, StatusBadData, err)
	}
	want := uint16(trailer[0])<<8 | uint16(trailer[1])
	if want != checksum {
		return nil, newErr(op, StatusWrongKey, nil)
	}

	return out.Bytes(), nil
}

// WrapPrivateKeyOpenPGPOld is the OpenPGP-old variant: the same checksum,
// but the entire MPI blob (lengths and all) is CFB-encrypted.
func WrapPrivateKeyOpenPGPOld(info *WrapInfo, der []byte) ([]byte, error) {
	const op = "WrapPrivateKeyOpenPGPOld"
	checksum := uint16(0)
	for _, b := range der {
		checksum += uint16(b)
	}
	plaintext := make([]byte, len(der)+2)
	copy(plaintext, der)
	plaintext[len(der)] = byte(checksum >> 8)
	plaintext[len(der)+1] = byte(checksum)

	ct, err := info.Block.EncryptCFB(info.KEK, info.IV, plaintext)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}
	return ct, nil
}

// WrapPrivateKeyOpenPGPNew is the OpenPGP-new variant: as OpenPGPOld, but
// terminated by a 20-byte SHA-1 MDC (modification detection code) over
// the plaintext preimage instead of the 16-bit checksum.
func WrapPrivateKeyOpenPGPNew(info *WrapInfo, der []byte) ([]byte, error) {
	const op = "WrapPrivateKeyOpenPGPNew"
	h := sha1.Sum(der)
	plaintext := make([]byte, len(der)+len(h))
	copy(plaintext, der)
	copy(plaintext[len(der):], h[:])

	ct, err := info.Block.EncryptCFB(info.KEK, info.IV, plaintext)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}
	return ct, nil
}

// UnwrapPrivateKeyOpenPGPOld reverses WrapPrivateKeyOpenPGPOld, verifying
// the trailing checksum.
func UnwrapPrivateKeyOpenPGPOld(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapPrivateKeyOpenPGPOld"
	if len(ciphertext) < 2 {
		return nil, newErr(op, StatusBadData, nil)
	}
	pt, err := info.Block.DecryptCFB(info.KEK, info.IV, ciphertext)
	if err != nil {
		return nil, newErr(op, StatusWrongKey, err)
	}
	der := pt[:len(pt)-2]
	want := uint16(pt[len(pt)-2])<<8 | uint16(pt[len(pt)-1])
	got := uint16(0)
	for _, b := range der {
		got += uint16(b)
	}
	if got != want {
		return nil, newErr(op, StatusWrongKey, nil)
	}
	return der, nil
}

// UnwrapPrivateKeyOpenPGPNew reverses WrapPrivateKeyOpenPGPNew, verifying
// the trailing SHA-1 MDC.
func UnwrapPrivateKeyOpenPGPNew(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapPrivateKeyOpenPGPNew"
	if len(ciphertext) < sha1.Size {
		return nil, newErr(op, StatusBadData, nil)
	}
	pt, err := info.Block.DecryptCFB(info.KEK, info.IV, ciphertext)
	if err != nil {
		return nil, newErr(op, StatusWrongKey, err)
	}
	der := pt[:len(pt)-sha1.Size]
	want := sha1.Sum(der)
	if subtle.ConstantTimeCompare(pt[len(pt)-sha1.Size:], want[:]) != 1 {
		return nil, newErr(op, StatusWrongKey, nil)
	}
	return der, nil
}
