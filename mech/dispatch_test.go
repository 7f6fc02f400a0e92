package mech

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"gitlab.com/yawning/pkimech.git/csrand"
	"gitlab.com/yawning/pkimech.git/primitives"
)

func TestDispatchDerivePKCS5(t *testing.T) {
	info := &DeriveInfo{Hash: primitives.SHA256, Password: []byte("pw"), Salt: []byte("salt"), Iterations: 2, OutLen: 16}
	got, err := Derive(MechanismDerivePKCS5, info)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want, err := DerivePKCS5(info)
	if err != nil {
		t.Fatalf("DerivePKCS5: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Derive dispatch mismatch: %x != %x", got, want)
	}
}

func TestDispatchDeriveTLSAndS2K(t *testing.T) {
	sslInfo := &DeriveInfo{Password: []byte("secret"), Salt: []byte("salt"), OutLen: 16}
	got, err := Derive(MechanismDeriveSSL, sslInfo)
	if err != nil {
		t.Fatalf("Derive(SSL): %v", err)
	}
	want, err := DeriveSSL(sslInfo.Password, sslInfo.Salt, sslInfo.OutLen)
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Derive(SSL) mismatch: %x != %x (err %v)", got, want, err)
	}

	tls10Info := &DeriveInfo{Password: []byte("secret"), Label: []byte("master secret"), Seed: []byte("seed"), OutLen: 32}
	got, err = Derive(MechanismDeriveTLS10, tls10Info)
	if err != nil {
		t.Fatalf("Derive(TLS10): %v", err)
	}
	want, err = DeriveTLS10(tls10Info.Password, tls10Info.Label, tls10Info.Seed, tls10Info.OutLen)
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Derive(TLS10) mismatch: %x != %x (err %v)", got, want, err)
	}

	tls12Info := &DeriveInfo{Hash: primitives.SHA256, Password: []byte("secret"), Label: []byte("master secret"), Seed: []byte("seed"), OutLen: 32}
	got, err = Derive(MechanismDeriveTLS12, tls12Info)
	if err != nil {
		t.Fatalf("Derive(TLS12): %v", err)
	}
	want, err = DeriveTLS12(tls12Info, tls12Info.Label, tls12Info.Seed)
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Derive(TLS12) mismatch: %x != %x (err %v)", got, want, err)
	}

	s2kInfo := &DeriveInfo{Hash: primitives.SHA256, Password: []byte("pw"), Salt: []byte("saltsalt"), OutLen: 16, ByteCount: 1024}
	got, err = Derive(MechanismDeriveS2K, s2kInfo)
	if err != nil {
		t.Fatalf("Derive(S2K): %v", err)
	}
	want, err = DeriveS2K(s2kInfo, s2kInfo.ByteCount)
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Derive(S2K) mismatch: %x != %x (err %v)", got, want, err)
	}
}

func TestDispatchUnknownMechanismIsNotAvail(t *testing.T) {
	_, err := Derive(MechanismType(999), &DeriveInfo{})
	if err == nil {
		t.Fatalf("Derive: expected error for unknown mechanism")
	}
	if merr, ok := err.(*Error); !ok || merr.Status != StatusNotAvail {
		t.Fatalf("Derive: got %v, want StatusNotAvail", err)
	}
}

func TestDispatchWrapUnwrapPKCS1(t *testing.T) {
	key := genRSAKey(t, 1024)
	info := &WrapInfo{Sign: key, Payload: []byte("a session key")}

	wrapped, err := Wrap(MechanismWrapPKCS1, info, nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	got, err := Unwrap(MechanismUnwrapPKCS1, info, wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(got, info.Payload) {
		t.Fatalf("Unwrap: got %x, want %x", got, info.Payload)
	}
}

func TestDispatchWrapUnwrapCMS(t *testing.T) {
	kek := make([]byte, 32)
	if err := csrand.Bytes(kek); err != nil {
		t.Fatalf("csrand.Bytes: %v", err)
	}
	iv := make([]byte, 16)
	if err := csrand.Bytes(iv); err != nil {
		t.Fatalf("csrand.Bytes: %v", err)
	}
	info := &WrapInfo{Block: primitives.AES256, KEK: kek, IV: iv}
	key := bytes.Repeat([]byte{0x5A}, 24)

	wrapped, err := Wrap(MechanismWrapCMS, info, key)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	got, err := Unwrap(MechanismUnwrapCMS, info, wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("Unwrap: got %x, want %x", got, key)
	}
}

func TestDispatchWrapUnwrapPKCS1PGP(t *testing.T) {
	key := genRSAKey(t, 1024)
	sessionKey := bytes.Repeat([]byte{0x33}, 16)
	info := &WrapInfo{Sign: key, IsPGP: true, PGPAlgID: 9, KeySize: len(sessionKey)}

	wrapped, err := Wrap(MechanismWrapPKCS1PGP, info, sessionKey)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	got, err := Unwrap(MechanismUnwrapPKCS1PGP, info, wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if got[0] != 9 || !bytes.Equal(got[1:], sessionKey) {
		t.Fatalf("Unwrap: got %x, want algID 9 followed by %x", got, sessionKey)
	}
}

func TestDispatchSignVerify(t *testing.T) {
	key := genRSAKey(t, 2048)
	digest := sha256.Sum256([]byte("payload"))
	info := &SignInfo{Sign: key, Hash: primitives.SHA256, Digest: digest[:]}

	sig, err := Sign(MechanismSignPKCS1, info)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(MechanismVerifyPKCS1, info, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestMechanismTypeStringNames(t *testing.T) {
	cases := map[MechanismType]string{
		MechanismDerivePKCS5: "derivePKCS5",
		MechanismSignPKCS1:   "signPKCS1",
		MechanismWrapOAEP:       "exportOAEP",
		MechanismWrapPKCS1PGP:   "exportPKCS1PGP",
		MechanismUnwrapPKCS1PGP: "importPKCS1PGP",
		MechanismUnwrapCMS:   "importCMS",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Fatalf("MechanismType(%d).String() = %q, want %q", m, got, want)
		}
	}
}
