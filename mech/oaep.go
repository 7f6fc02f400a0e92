package mech

import (
	"crypto/subtle"
	"encoding/binary"

	"gitlab.com/yawning/pkimech.git/csrand"
)

// WrapOAEP implements RSA-OAEP encoding and encryption per RFC 8017
// §7.1.1.
func WrapOAEP(info *WrapInfo, message []byte) ([]byte, error) {
	const op = "WrapOAEP"
	modLen := info.Sign.ModulusSize()
	hLen := info.Hash.Size()

	if len(message) > modLen-2*hLen-2 {
		return nil, newErr(op, StatusOverflow, nil)
	}

	lHash := info.Hash.New().Sum(nil)

	db := make([]byte, modLen-hLen-1)
	copy(db, lHash)
	db[len(db)-len(message)-1] = 0x01
	copy(db[len(db)-len(message):], message)

	seed := make([]byte, hLen)
	if err := csrand.Bytes(seed); err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	dbMask := mgf1Hash(info, seed, len(db))
	maskedDB := xorBytes(db, dbMask)

	seedMask := mgf1Hash(info, maskedDB, hLen)
	maskedSeed := xorBytes(seed, seedMask)

	em := make([]byte, modLen)
	em[0] = 0x00
	copy(em[1:1+hLen], maskedSeed)
	copy(em[1+hLen:], maskedDB)

	return info.Sign.RawEncrypt(em)
}

// UnwrapOAEP implements RSA-OAEP decryption and decoding. Manger's attack
// is defused by computing both MGF1 masks before examining any plaintext
// byte, and by folding every failure condition (EM[0]!=0, lHash mismatch,
// a non-zero byte in PS, missing 0x01 separator) into a single late
// reject — per RFC 8017 §7.1.2(g), PS must be all-zero up to the
// separator, not merely "the first 0x01 byte found". A failed raw
// decrypt means the ciphertext integer was out of range for the
// modulus — malformed input, not a key mismatch — so it folds into the
// same bad-data reject rather than a separate wrong-key status.
func UnwrapOAEP(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapOAEP"
	modLen := info.Sign.ModulusSize()
	hLen := info.Hash.Size()

	padded := make([]byte, modLen)
	copy(padded[modLen-len(ciphertext):], ciphertext)

	em, decryptErr := info.Sign.RawDecrypt(padded)
	if decryptErr != nil || len(em) != modLen || modLen < 2*hLen+2 {
		em = fixedFormattedValue[:modLen]
	}

	maskedSeed := em[1 : 1+hLen]
	maskedDB := em[1+hLen:]

	seedMask := mgf1Hash(info, maskedDB, hLen)
	seed := xorBytes(maskedSeed, seedMask)

	dbMask := mgf1Hash(info, seed, len(maskedDB))
	db := xorBytes(maskedDB, dbMask)

	lHash := info.Hash.New().Sum(nil)

	badHeader := subtle.ConstantTimeByteEq(em[0], 0x00) ^ 1
	badLHash := subtle.ConstantTimeCompare(db[:hLen], lHash) ^ 1

	rest := db[hLen:]
	sepPos := -1
	badPad := 0
	for i, b := range rest {
		if sepPos >= 0 {
			continue
		}
		if b == 0x01 {
			sepPos = i
		} else if b != 0x00 {
			badPad = 1
		}
	}
	badSep := 0
	if sepPos < 0 {
		badSep = 1
		sepPos = 0
	}

	if decryptErr != nil || badHeader != 0 || badLHash != 0 || badSep != 0 || badPad != 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	message := make([]byte, len(rest)-sepPos-1)
	copy(message, rest[sepPos+1:])
	return message, nil
}

func mgf1Hash(info *WrapInfo, seed []byte, outLen int) []byte {
	h := info.Hash
	hLen := h.Size()
	out := make([]byte, 0, outLen+hLen)
	var counter [4]byte
	for i := uint32(0); len(out) < outLen; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		d := h.New()
		d.Write(seed)
		d.Write(counter[:])
		out = append(out, d.Sum(nil)...)
	}
	return out[:outLen]
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
