package primitives

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// oid DER encodings (tag 0x06, length, content) for the hash algorithm
// identifiers PKCS#1 v1.5 DigestInfo needs. These are only the OID part of
// the AlgorithmIdentifier; mech/pkcs1_sign.go adds the NULL parameters and
// the SEQUENCE wrappers. Kept here next to the hash they describe.
var (
	oidSHA1   = []byte{0x06, 0x05, 0x2b, 0x0e, 0x03, 0x02, 0x1a}
	oidSHA256 = []byte{0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01}
	oidSHA384 = []byte{0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02}
	oidSHA512 = []byte{0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03}
)

type stdHash struct {
	newFn func() hash.Hash
	size  int
	oid   []byte
}

func (h *stdHash) New() hash.Hash { return h.newFn() }
func (h *stdHash) Size() int      { return h.size }
func (h *stdHash) OID() []byte    { return h.oid }

// SHA1 is the SHA-1 HashContext (retained for the legacy PKCS#1 v1.5 and
// SSL/TLS 1.0 mechanisms).
var SHA1 HashContext = &stdHash{sha1.New, sha1.Size, oidSHA1}

// SHA256 is the SHA-256 HashContext.
var SHA256 HashContext = &stdHash{sha256.New, sha256.Size, oidSHA256}

// SHA384 is the SHA-384 HashContext.
var SHA384 HashContext = &stdHash{sha512.New384, sha512.Size384, oidSHA384}

// SHA512 is the SHA-512 HashContext.
var SHA512 HashContext = &stdHash{sha512.New, sha512.Size, oidSHA512}
