package mech

import (
	"crypto/subtle"

	"gitlab.com/yawning/pkimech.git/csrand"
)

// WrapCMS implements the CMS triple-wrap symmetric key-wrap (RFC 5652
// §12.3.3): build [len(K)][3 check bytes][K][random pad to a multiple of
// the block size, at least two blocks], then CBC-encrypt it twice. The
// first pass uses the context's configured IV (info.IV); the second pass
// chains onto the first pass's final ciphertext block as its IV.
func WrapCMS(info *WrapInfo, key []byte) ([]byte, error) {
	const op = "WrapCMS"
	blockSize := info.Block.BlockSize()
	if len(key) < MinKeySize || len(key) > MaxWorkingKeySize {
		return nil, newErr(op, StatusOverflow, nil)
	}

	payloadLen := 4 + len(key)
	minLen := 2 * blockSize
	for payloadLen < minLen || payloadLen%blockSize != 0 {
		payloadLen++
	}

	payload := make([]byte, payloadLen)
	payload[0] = byte(len(key))
	for i := 0; i < 3; i++ {
		payload[1+i] = key[i] ^ 0xFF
	}
	copy(payload[4:], key)
	if err := csrand.Bytes(payload[4+len(key):]); err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	firstPass, err := info.Block.EncryptCBC(info.KEK, info.IV, payload)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	iv2 := firstPass[len(firstPass)-blockSize:]
	secondPass, err := info.Block.EncryptCBC(info.KEK, iv2, firstPass)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	if subtle.ConstantTimeCompare(payload, secondPass) == 1 {
		zeroize(secondPass)
		return nil, newErr(op, StatusFailed, nil)
	}

	return secondPass, nil
}

// UnwrapCMS reverses WrapCMS. The second encryption pass is undone first:
// its last block decrypts using the second-to-last ciphertext block as a
// local IV (ordinary CBC chaining needs no global state for that), which
// recovers the first pass's final ciphertext block; that recovered block
// then serves as the IV to undo the rest of the second pass. The first
// pass is then undone in full using the context's configured IV. The four
// validity checks (length bound, pt[0] range, pt[0] vs payload length,
// check bytes) are combined into one OR'd verdict, and any mismatch is
// reported as wrong-key rather than bad-data — the overwhelmingly likely
// cause is the wrong KEK, not adversarial input.
func UnwrapCMS(info *WrapInfo, ciphertext []byte) ([]byte, error) {
	const op = "UnwrapCMS"
	blockSize := info.Block.BlockSize()

	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 || len(ciphertext) < 2*blockSize {
		return nil, newErr(op, StatusBadData, nil)
	}

	innerIV := ciphertext[len(ciphertext)-2*blockSize : len(ciphertext)-blockSize]
	lastBlockPlain, err := info.Block.DecryptCBC(info.KEK, innerIV, ciphertext[len(ciphertext)-blockSize:])
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	rest := ciphertext[:len(ciphertext)-blockSize]
	var restPlain []byte
	if len(rest) > 0 {
		restPlain, err = info.Block.DecryptCBC(info.KEK, lastBlockPlain, rest)
		if err != nil {
			return nil, newErr(op, StatusFailed, err)
		}
	}
	firstPassCipher := append(append([]byte(nil), restPlain...), lastBlockPlain...)

	payload, err := info.Block.DecryptCBC(info.KEK, info.IV, firstPassCipher)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	lenOK := len(payload) >= 4
	checkLen := 0
	if lenOK {
		checkLen = int(payload[0])
	}
	rangeOK := lenOK && checkLen >= MinKeySize && checkLen <= MaxWorkingKeySize
	boundOK := lenOK && checkLen <= len(payload)-4

	badness := 0
	if !lenOK || !rangeOK || !boundOK {
		badness = 1
		checkLen = 0
	}

	checksOK := 1
	for i := 0; i < 3; i++ {
		var got, want byte
		if lenOK && 1+i < len(payload) && 4+i < len(payload) {
			got = payload[1+i]
			want = payload[4+i] ^ 0xFF
		}
		if subtle.ConstantTimeByteEq(got, want) == 0 {
			checksOK = 0
		}
	}

	if badness != 0 || checksOK == 0 {
		return nil, newErr(op, StatusWrongKey, nil)
	}

	key := make([]byte, checkLen)
	copy(key, payload[4:4+checkLen])
	return key, nil
}
