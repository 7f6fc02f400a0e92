package mech

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"hash"
)

// pHash implements RFC 2246/5246's P_hash: A_1 = HMAC(secret, seed),
// A_{i+1} = HMAC(secret, A_i); each output block is HMAC(secret, A_i ‖
// seed).
func pHash(newHash func() hash.Hash, secret, seed []byte, outLen int) []byte {
	mac := hmac.New(newHash, secret)
	a := append([]byte(nil), seed...)

	out := make([]byte, 0, outLen+mac.Size())
	for len(out) < outLen {
		mac.Reset()
		mac.Write(a)
		a = mac.Sum(nil)

		mac.Reset()
		mac.Write(a)
		mac.Write(seed)
		out = append(out, mac.Sum(nil)...)
	}
	return out[:outLen]
}

// DeriveTLS10 implements the TLS 1.0/1.1 PRF: the secret is
// split into two halves overlapping by one byte when its length is odd,
// and the MD5 and SHA-1 P_hash chains over each half are XORed together.
func DeriveTLS10(secret, label, seed []byte, outLen int) ([]byte, error) {
	const op = "DeriveTLS10"
	if outLen <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	half := (len(secret) + 1) / 2
	s1 := secret[:half]
	s2 := secret[len(secret)-half:]

	labelSeed := append(append([]byte(nil), label...), seed...)

	md5Out := pHash(md5.New, s1, labelSeed, outLen)
	shaOut := pHash(sha1.New, s2, labelSeed, outLen)

	out := make([]byte, outLen)
	for i := range out {
		out[i] = md5Out[i] ^ shaOut[i]
	}
	return out, nil
}

// DeriveTLS12 implements the TLS 1.2 PRF: a single P_hash
// chain using the hash algorithm carried on the descriptor.
func DeriveTLS12(info *DeriveInfo, label, seed []byte) ([]byte, error) {
	const op = "DeriveTLS12"
	if info.OutLen <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}
	labelSeed := append(append([]byte(nil), label...), seed...)
	return pHash(info.Hash.New, info.Password, labelSeed, info.OutLen), nil
}
