package primitives

import (
	"crypto/rsa"
	"errors"
	"math/big"
)

var errNoPrivateKey = errors.New("primitives: context has no private key")

// modExpBytes performs raw RSA modular exponentiation on a fixed-size
// big-endian block: in^d mod n when priv is non-nil, otherwise in^e mod n
// using pub. The output is left-padded with zero bytes to exactly modLen,
// the convention every mechanism-layer padding routine built on top of this
// expects.
func modExpBytes(in []byte, priv *rsa.PrivateKey, pub *rsa.PublicKey, modLen int) ([]byte, error) {
	x := new(big.Int).SetBytes(in)

	var n, result *big.Int
	if priv != nil {
		n = priv.N
		if x.Cmp(n) >= 0 {
			return nil, errors.New("primitives: input out of range")
		}
		result = new(big.Int).Exp(x, priv.D, n)
	} else {
		n = pub.N
		if x.Cmp(n) >= 0 {
			return nil, errors.New("primitives: input out of range")
		}
		e := big.NewInt(int64(pub.E))
		result = new(big.Int).Exp(x, e, n)
	}

	out := make([]byte, modLen)
	result.FillBytes(out)
	return out, nil
}
