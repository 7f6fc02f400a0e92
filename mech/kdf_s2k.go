package mech

// DeriveS2K implements the OpenPGP iterated-and-salted String-to-Key
// specifier (RFC 4880 §3.7.1.3): the hash is fed
// salt‖password‖salt‖password‖... until byteCount input bytes have been
// consumed (byteCount is the caller-supplied, already-decoded count —
// this core doesn't interpret the one-byte encoded-count form itself).
// If the requested output exceeds the hash size, a second round preloads
// the digest with one zero byte so the two rounds yield independent key
// material.
func DeriveS2K(info *DeriveInfo, byteCount int) ([]byte, error) {
	const op = "DeriveS2K"
	if info.OutLen <= 0 || byteCount <= 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	preimage := append(append([]byte(nil), info.Salt...), info.Password...)
	if len(preimage) == 0 {
		return nil, newErr(op, StatusBadData, nil)
	}

	feed := func(zeroPreload bool) []byte {
		h := info.Hash.New()
		if zeroPreload {
			h.Write([]byte{0x00})
		}
		remaining := byteCount
		for remaining > 0 {
			n := len(preimage)
			if n > remaining {
				n = remaining
			}
			h.Write(preimage[:n])
			remaining -= n
		}
		return h.Sum(nil)
	}

	out := feed(false)
	for len(out) < info.OutLen {
		out = append(out, feed(true)...)
	}
	return out[:info.OutLen], nil
}
