package mech

import (
	"encoding/binary"

	"gitlab.com/yawning/pkimech.git/primitives"
)

// DerivePKCS5 implements PBKDF2 (PKCS #5 v2 / RFC 8018).
//
// The HMAC inner/outer pad setup (ipad XOR key, the hash of it) happens
// once, at hmac.New; every iteration below calls Reset(), which restores
// the digest to exactly that post-setup state rather than re-hashing the
// padded key from scratch. That's the snapshot optimisation the original
// calls out as dominant — Go's crypto/hmac already implements it as
// Reset(), so no hand-rolled state copy is needed to get the same
// iteration cost.
func DerivePKCS5(info *DeriveInfo) ([]byte, error) {
	const op = "DerivePKCS5"
	if info.Iterations <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}
	if info.OutLen <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	prf := primitives.HMAC(info.Hash, info.Password)
	hashLen := prf.Size()
	numBlocks := (info.OutLen + hashLen - 1) / hashLen

	dk := make([]byte, 0, numBlocks*hashLen)
	var blockIndex [4]byte

	for block := 1; block <= numBlocks; block++ {
		prf.Reset()
		prf.Write(info.Salt)
		binary.BigEndian.PutUint32(blockIndex[:], uint32(block))
		prf.Write(blockIndex[:])
		u := prf.Sum(nil)

		t := make([]byte, len(u))
		copy(t, u)

		for i := 1; i < info.Iterations; i++ {
			prf.Reset()
			prf.Write(u)
			u = prf.Sum(u[:0])
			for j := range t {
				t[j] ^= u[j]
			}
		}
		dk = append(dk, t...)
	}
	return dk[:info.OutLen], nil
}
