package mech

import (
	"crypto/subtle"
)

// digestInfo builds the canonical DER SEQUENCE { AlgorithmIdentifier,
// OCTET STRING digest } used inside a PKCS #1 v1.5 signature payload.
func digestInfo(oid, digest []byte) []byte {
	algID := make([]byte, 2+len(oid)+2)
	algID[0] = 0x30
	algID[1] = byte(len(oid) + 2)
	copy(algID[2:], oid)
	algID[2+len(oid)] = 0x05
	algID[3+len(oid)] = 0x00

	octet := make([]byte, 2+len(digest))
	octet[0] = 0x04
	octet[1] = byte(len(digest))
	copy(octet[2:], digest)

	body := append(algID, octet...)
	out := make([]byte, 2+len(body))
	out[0] = 0x30
	out[1] = byte(len(body))
	copy(out[2:], body)
	return out
}

// SignPKCS1 implements PKCS #1 v1.5 signing: 00 01 FF..FF 00 DigestInfo,
// padded to exactly the modulus length. With SideChannelProtection set,
// the signature is recovered by running verify on the freshly produced
// signature and compared byte-for-byte against the padded plaintext —
// a mismatch indicates an RSA-CRT fault and is reported as failed,
// never returned to the caller.
func SignPKCS1(info *SignInfo) ([]byte, error) {
	const op = "SignPKCS1"
	modLen := info.Sign.ModulusSize()

	di := digestInfo(info.Hash.OID(), info.Digest)
	if len(di)+11 > modLen {
		return nil, newErr(op, StatusOverflow, nil)
	}

	em := make([]byte, modLen)
	em[0] = 0x00
	em[1] = 0x01
	padLen := modLen - len(di) - 3
	for i := 2; i < 2+padLen; i++ {
		em[i] = 0xFF
	}
	em[2+padLen] = 0x00
	copy(em[3+padLen:], di)

	sig, err := info.Sign.RawSign(em)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	if info.SideChannelProtection {
		recovered, err := info.Sign.RawVerify(sig)
		if err != nil || subtle.ConstantTimeCompare(recovered, em) != 1 {
			zeroize(sig)
			return nil, newErr(op, StatusFailed, nil)
		}
	}

	return sig, nil
}

// VerifyPKCS1 implements PKCS #1 v1.5 verification. The signature is
// format-adjusted to the modulus length (up to 8 leading zero bytes
// stripped, zero-padded on the left if short), raw-verified, then the
// recovered DigestInfo is re-derived locally from hash and OID and
// compared byte-for-byte — the decoder never parses the DigestInfo it
// extracts from the signature, only builds the canonical form it expects
// and requires an exact match (defeats Bleichenbacher'06-style small-e
// forgeries). Any mismatch is reported as signature; trailing bytes after
// a matching DigestInfo are reported as bad-data.
func VerifyPKCS1(info *SignInfo, signature []byte) error {
	const op = "VerifyPKCS1"
	modLen := info.Sign.ModulusSize()

	adjusted := adjustPKCS1Data(signature, modLen)
	if adjusted == nil {
		return newErr(op, StatusSignature, nil)
	}

	em, err := info.Sign.RawVerify(adjusted)
	if err != nil || len(em) != modLen {
		return newErr(op, StatusSignature, nil)
	}

	minPadLen := MinPKCSize - 3 - 19 - MaxHashSize
	zeroPos := -1
	for i := 2; i < len(em); i++ {
		if em[i] == 0x00 {
			zeroPos = i
			break
		}
	}
	if em[0] != 0x00 || em[1] != 0x01 || zeroPos < 0 {
		return newErr(op, StatusSignature, nil)
	}
	padLen := zeroPos - 2
	for i := 2; i < zeroPos; i++ {
		if em[i] != 0xFF {
			return newErr(op, StatusSignature, nil)
		}
	}
	if padLen < minPadLen {
		return newErr(op, StatusSignature, nil)
	}

	want := digestInfo(info.Hash.OID(), info.Digest)
	got := em[zeroPos+1:]

	if len(got) < len(want) {
		return newErr(op, StatusSignature, nil)
	}
	if subtle.ConstantTimeCompare(got[:len(want)], want) != 1 {
		return newErr(op, StatusSignature, nil)
	}
	if len(got) > len(want) {
		return newErr(op, StatusBadData, nil)
	}

	return nil
}

// adjustPKCS1Data pads or trims a raw-RSA input to exactly modLen bytes,
// stripping up to 8 leading zero bytes if the input is already modLen
// bytes or longer, or zero-padding on the left if shorter. Returns nil if
// the input can't be reconciled to modLen within that tolerance.
func adjustPKCS1Data(data []byte, modLen int) []byte {
	if len(data) == modLen {
		return data
	}
	if len(data) > modLen {
		strip := len(data) - modLen
		if strip > 8 {
			return nil
		}
		for _, b := range data[:strip] {
			if b != 0x00 {
				return nil
			}
		}
		return data[strip:]
	}
	if modLen-len(data) > modLen {
		return nil
	}
	out := make([]byte, modLen)
	copy(out[modLen-len(data):], data)
	return out
}

// SignSSL implements the SSL 3.0 dual-hash signature variant: the payload
// is the concatenation of the MD5 and SHA-1 digests with no DigestInfo
// wrapper.
func SignSSL(info *SignInfo) ([]byte, error) {
	const op = "SignSSL"
	modLen := info.Sign.ModulusSize()
	payload := append(append([]byte(nil), info.MD5...), info.SHA1...)

	if len(payload)+11 > modLen {
		return nil, newErr(op, StatusOverflow, nil)
	}

	em := make([]byte, modLen)
	em[0] = 0x00
	em[1] = 0x01
	padLen := modLen - len(payload) - 3
	for i := 2; i < 2+padLen; i++ {
		em[i] = 0xFF
	}
	em[2+padLen] = 0x00
	copy(em[3+padLen:], payload)

	sig, err := info.Sign.RawSign(em)
	if err != nil {
		return nil, newErr(op, StatusFailed, err)
	}

	if info.SideChannelProtection {
		recovered, err := info.Sign.RawVerify(sig)
		if err != nil || subtle.ConstantTimeCompare(recovered, em) != 1 {
			zeroize(sig)
			return nil, newErr(op, StatusFailed, nil)
		}
	}

	return sig, nil
}

// VerifySSL verifies the SSL 3.0 dual-hash signature variant, comparing
// the decoded payload against the caller-supplied MD5 and SHA-1 digests
// individually.
func VerifySSL(info *SignInfo, signature []byte) error {
	const op = "VerifySSL"
	modLen := info.Sign.ModulusSize()

	adjusted := adjustPKCS1Data(signature, modLen)
	if adjusted == nil {
		return newErr(op, StatusSignature, nil)
	}

	em, err := info.Sign.RawVerify(adjusted)
	if err != nil || len(em) != modLen {
		return newErr(op, StatusSignature, nil)
	}

	zeroPos := -1
	for i := 2; i < len(em); i++ {
		if em[i] == 0x00 {
			zeroPos = i
			break
		}
	}
	if em[0] != 0x00 || em[1] != 0x01 || zeroPos < 0 {
		return newErr(op, StatusSignature, nil)
	}
	for i := 2; i < zeroPos; i++ {
		if em[i] != 0xFF {
			return newErr(op, StatusSignature, nil)
		}
	}

	payload := em[zeroPos+1:]
	want := append(append([]byte(nil), info.MD5...), info.SHA1...)
	if len(payload) != len(want) || subtle.ConstantTimeCompare(payload, want) != 1 {
		return newErr(op, StatusSignature, nil)
	}

	return nil
}
