package primitives

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func TestRSAContextRawRoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	ctx := &RSAContext{Priv: priv}

	in := make([]byte, ctx.ModulusSize())
	in[len(in)-1] = 0x2a

	signed, err := ctx.RawSign(in)
	if err != nil {
		t.Fatalf("RawSign: %v", err)
	}
	recovered, err := ctx.RawVerify(signed)
	if err != nil {
		t.Fatalf("RawVerify: %v", err)
	}
	if !bytes.Equal(recovered, in) {
		t.Fatalf("RawVerify(RawSign(x)) != x")
	}
}

func TestAESCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	iv := bytes.Repeat([]byte{0x00}, 16)
	pt := bytes.Repeat([]byte{0x01}, 32)

	ct, err := AES128.EncryptCBC(key, iv, pt)
	if err != nil {
		t.Fatalf("EncryptCBC: %v", err)
	}
	got, err := AES128.DecryptCBC(key, iv, ct)
	if err != nil {
		t.Fatalf("DecryptCBC: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("DecryptCBC(EncryptCBC(x)) != x")
	}
}

func TestTripleDESCFBRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 24)
	iv := bytes.Repeat([]byte{0x00}, 8)
	pt := []byte("openpgp mpi payload, odd length")

	ct, err := TripleDES.EncryptCFB(key, iv, pt)
	if err != nil {
		t.Fatalf("EncryptCFB: %v", err)
	}
	got, err := TripleDES.DecryptCFB(key, iv, ct)
	if err != nil {
		t.Fatalf("DecryptCFB: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("DecryptCFB(EncryptCFB(x)) != x")
	}
}
