// Package primitives stands in for the object/handle kernel the mechanism
// layer consumes by message (CTX_* style dispatch). Rather than a
// capability-based reference-counted object system, the core here takes
// plain Go interfaces — the same shape handshake_ntor.go uses when it
// injects a hash.Hash instance rather than reimplementing HMAC-SHA256
// itself.
package primitives

import (
	"crypto/hmac"
	"crypto/rsa"
	"hash"
)

// HashContext is the object-kernel stand-in for a hash/MAC context
// (CTXINFO_HASHVALUE, GET_ATTRIBUTE_S). The context itself identifies the
// hash for mechanisms that need to know it (OAEP MGF1 selection,
// AlgorithmIdentifier encoding).
type HashContext interface {
	// New returns a fresh hash.Hash instance for this algorithm.
	New() hash.Hash
	// Size is the digest size in bytes.
	Size() int
	// OID is the DER-encoded AlgorithmIdentifier OID for this hash,
	// used by PKCS#1 v1.5 DigestInfo encoding.
	OID() []byte
}

// HMAC returns an HMAC instance keyed with key, using h's algorithm.
func HMAC(h HashContext, key []byte) hash.Hash {
	return hmac.New(h.New, key)
}

// BlockContext is the object-kernel stand-in for a CBC/CFB-capable
// symmetric cipher context (CTXINFO_IV, CTXINFO_MODE, CTX_ENCRYPT/
// CTX_DECRYPT).
type BlockContext interface {
	// BlockSize is the cipher's block size in bytes.
	BlockSize() int
	// KeySize is the expected key size in bytes.
	KeySize() int
	// EncryptCBC encrypts plaintext (a multiple of BlockSize) with the
	// given IV and returns the ciphertext in a new slice; its last block
	// is the IV for a chained call (CMS triple-wrap).
	EncryptCBC(key, iv, plaintext []byte) (ciphertext []byte, err error)
	// DecryptCBC is the inverse of EncryptCBC.
	DecryptCBC(key, iv, ciphertext []byte) (plaintext []byte, err error)
	// EncryptCFB encrypts plaintext of any length with the given IV
	// (OpenPGP CFB key wrap).
	EncryptCFB(key, iv, plaintext []byte) (ciphertext []byte, err error)
	// DecryptCFB is the inverse of EncryptCFB.
	DecryptCFB(key, iv, ciphertext []byte) (plaintext []byte, err error)
}

// SignContext is the object-kernel stand-in for an RSA private/public key
// context (CTX_SIGN/CTX_SIGCHECK/CTX_ENCRYPT/CTX_DECRYPT with raw RSA
// semantics — no padding applied at this layer; padding is the mechanism
// layer's job).
type SignContext interface {
	// ModulusSize returns the modulus size in bytes.
	ModulusSize() int
	// RawSign performs unpadded (textbook) RSA: out = in^d mod n.
	// len(in) == len(out) == ModulusSize().
	RawSign(in []byte) (out []byte, err error)
	// RawVerify performs unpadded RSA with the public exponent:
	// out = in^e mod n.
	RawVerify(in []byte) (out []byte, err error)
	// RawDecrypt is an alias of RawSign used at key-transport call
	// sites, kept distinct for readability at call sites.
	RawDecrypt(in []byte) (out []byte, err error)
	// RawEncrypt is an alias of RawVerify used at key-transport call
	// sites.
	RawEncrypt(in []byte) (out []byte, err error)
}

// RSAContext adapts an *rsa.PrivateKey (or its public half) to SignContext,
// performing raw modular exponentiation with no padding — exactly the raw
// primitive the mechanism layer's padding routines are written against.
type RSAContext struct {
	Priv *rsa.PrivateKey // nil for a public-key-only context
	Pub  *rsa.PublicKey
}

func (c *RSAContext) modulus() *rsa.PublicKey {
	if c.Priv != nil {
		return &c.Priv.PublicKey
	}
	return c.Pub
}

// ModulusSize implements SignContext.
func (c *RSAContext) ModulusSize() int {
	return (c.modulus().N.BitLen() + 7) / 8
}

// RawSign implements SignContext using the private exponent.
func (c *RSAContext) RawSign(in []byte) ([]byte, error) {
	if c.Priv == nil {
		return nil, errNoPrivateKey
	}
	return modExpBytes(in, c.Priv, nil, c.ModulusSize())
}

// RawDecrypt implements SignContext; identical operation to RawSign at the
// raw-RSA level (decryption and signing share the private-exponent op).
func (c *RSAContext) RawDecrypt(in []byte) ([]byte, error) {
	return c.RawSign(in)
}

// RawVerify implements SignContext using the public exponent.
func (c *RSAContext) RawVerify(in []byte) ([]byte, error) {
	return modExpBytes(in, nil, c.modulus(), c.ModulusSize())
}

// RawEncrypt implements SignContext; identical operation to RawVerify.
func (c *RSAContext) RawEncrypt(in []byte) ([]byte, error) {
	return c.RawVerify(in)
}
