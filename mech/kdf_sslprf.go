package mech

import (
	"crypto/md5"
	"crypto/sha1"
)

// DeriveSSL implements the SSL 3.0 PRF ("Open question —
// SSL/TLS 1.0 retention": kept unconditionally, this core has no peer
// negotiation to gate it behind).
//
// Each output block is MD5(secret ‖ SHA1(label ‖ secret ‖ salt)), where
// label is "A", "BB", "CCC", ... for successive blocks.
func DeriveSSL(secret, salt []byte, outLen int) ([]byte, error) {
	const op = "DeriveSSL"
	if outLen <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	out := make([]byte, 0, outLen+md5.Size)
	for round := 1; len(out) < outLen; round++ {
		label := make([]byte, round)
		for i := range label {
			label[i] = byte('A' + round - 1)
		}

		sha := sha1.New()
		sha.Write(label)
		sha.Write(secret)
		sha.Write(salt)
		inner := sha.Sum(nil)

		m := md5.New()
		m.Write(secret)
		m.Write(inner)
		out = append(out, m.Sum(nil)...)
	}
	return out[:outLen], nil
}
