package mech

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"gitlab.com/yawning/pkimech.git/primitives"
)

func TestDerivePKCS5MatchesReferenceImplementation(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	for _, iter := range []int{1, 2, 10} {
		info := &DeriveInfo{
			Hash:       primitives.SHA256,
			Password:   password,
			Salt:       salt,
			Iterations: iter,
			OutLen:     32,
		}
		got, err := DerivePKCS5(info)
		if err != nil {
			t.Fatalf("DerivePKCS5(iter=%d): %v", iter, err)
		}
		want := pbkdf2.Key(password, salt, iter, 32, primitives.SHA256.New)
		if !bytes.Equal(got, want) {
			t.Fatalf("DerivePKCS5(iter=%d): got %x, want %x", iter, got, want)
		}
	}
}

func TestDerivePKCS5Deterministic(t *testing.T) {
	info := &DeriveInfo{
		Hash:       primitives.SHA1,
		Password:   []byte("hunter2"),
		Salt:       []byte("salty"),
		Iterations: 4,
		OutLen:     40,
	}
	a, err := DerivePKCS5(info)
	if err != nil {
		t.Fatalf("DerivePKCS5: %v", err)
	}
	b, err := DerivePKCS5(info)
	if err != nil {
		t.Fatalf("DerivePKCS5: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("DerivePKCS5 not deterministic: %x != %x", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("DerivePKCS5: got %d bytes, want 40", len(a))
	}
}

func TestDerivePKCS5OutLenLongerThanHash(t *testing.T) {
	info := &DeriveInfo{
		Hash:       primitives.SHA1,
		Password:   []byte("p"),
		Salt:       []byte("s"),
		Iterations: 1,
		OutLen:     100, // > 20-byte SHA-1 digest, forces multiple blocks
	}
	out, err := DerivePKCS5(info)
	if err != nil {
		t.Fatalf("DerivePKCS5: %v", err)
	}
	if len(out) != 100 {
		t.Fatalf("DerivePKCS5: got %d bytes, want 100", len(out))
	}
	want := pbkdf2.Key(info.Password, info.Salt, 1, 100, primitives.SHA1.New)
	if !bytes.Equal(out, want) {
		t.Fatalf("DerivePKCS5: got %x, want %x", out, want)
	}
}

func TestDerivePKCS12Deterministic(t *testing.T) {
	info := &DeriveInfo{
		Hash:       primitives.SHA1,
		Password:   []byte("smeg"),
		Salt:       []byte{0x01, 0x0A, 0x58, 0xCF, 0x64, 0x53, 0x0D, 0x82, 0x3F},
		Iterations: 1,
		OutLen:     24,
	}
	a, err := DerivePKCS12(info, PKCS12DiversifierKey)
	if err != nil {
		t.Fatalf("DerivePKCS12: %v", err)
	}
	b, err := DerivePKCS12(info, PKCS12DiversifierKey)
	if err != nil {
		t.Fatalf("DerivePKCS12: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("DerivePKCS12 not deterministic")
	}
	if len(a) != 24 {
		t.Fatalf("DerivePKCS12: got %d bytes, want 24", len(a))
	}

	other, err := DerivePKCS12(info, PKCS12DiversifierIV)
	if err != nil {
		t.Fatalf("DerivePKCS12: %v", err)
	}
	if bytes.Equal(a, other) {
		t.Fatalf("DerivePKCS12: key and IV diversifiers produced identical output")
	}
}

func TestDeriveSSLDeterministicAndLength(t *testing.T) {
	secret := bytes.Repeat([]byte{0xAB}, 48)
	salt := bytes.Repeat([]byte{0xCD}, 64)
	a, err := DeriveSSL(secret, salt, 48)
	if err != nil {
		t.Fatalf("DeriveSSL: %v", err)
	}
	b, err := DeriveSSL(secret, salt, 48)
	if err != nil {
		t.Fatalf("DeriveSSL: %v", err)
	}
	if !bytes.Equal(a, b) || len(a) != 48 {
		t.Fatalf("DeriveSSL: non-deterministic or wrong length")
	}
}

func TestDeriveTLS10DeterministicAndLength(t *testing.T) {
	secret := bytes.Repeat([]byte{0xAB}, 48)
	seed := bytes.Repeat([]byte{0xCD}, 64)
	a, err := DeriveTLS10(secret, nil, seed, 48)
	if err != nil {
		t.Fatalf("DeriveTLS10: %v", err)
	}
	b, err := DeriveTLS10(secret, nil, seed, 48)
	if err != nil {
		t.Fatalf("DeriveTLS10: %v", err)
	}
	if !bytes.Equal(a, b) || len(a) != 48 {
		t.Fatalf("DeriveTLS10: non-deterministic or wrong length")
	}
}

func TestDeriveTLS10OddSecretLength(t *testing.T) {
	secret := bytes.Repeat([]byte{0x11}, 49) // odd length forces 1-byte overlap
	seed := []byte("seed-material")
	if _, err := DeriveTLS10(secret, []byte("label"), seed, 32); err != nil {
		t.Fatalf("DeriveTLS10: %v", err)
	}
}

func TestDeriveTLS12PrefixProperty(t *testing.T) {
	info := &DeriveInfo{Hash: primitives.SHA256, Password: []byte("secret")}
	label := []byte("master secret")
	seed := []byte("client random server random")

	info.OutLen = 16
	short, err := DeriveTLS12(info, label, seed)
	if err != nil {
		t.Fatalf("DeriveTLS12: %v", err)
	}
	info.OutLen = 32
	long, err := DeriveTLS12(info, label, seed)
	if err != nil {
		t.Fatalf("DeriveTLS12: %v", err)
	}
	if !bytes.Equal(short, long[:16]) {
		t.Fatalf("DeriveTLS12 prefix property violated: %x vs %x", short, long[:16])
	}
}

func TestDeriveS2KByteCountConsumption(t *testing.T) {
	info := &DeriveInfo{
		Hash:     primitives.SHA1,
		Password: []byte("hunter2"),
		Salt:     []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		OutLen:   32,
	}
	a, err := DeriveS2K(info, 1000)
	if err != nil {
		t.Fatalf("DeriveS2K: %v", err)
	}
	b, err := DeriveS2K(info, 1000)
	if err != nil {
		t.Fatalf("DeriveS2K: %v", err)
	}
	if !bytes.Equal(a, b) || len(a) != 32 {
		t.Fatalf("DeriveS2K: non-deterministic or wrong length")
	}

	diffCount, err := DeriveS2K(info, 2000)
	if err != nil {
		t.Fatalf("DeriveS2K: %v", err)
	}
	if bytes.Equal(a, diffCount) {
		t.Fatalf("DeriveS2K: differing byteCount produced identical output")
	}
}

func TestDeriveCMPFirstIterationCounted(t *testing.T) {
	info := &DeriveInfo{
		Hash:       primitives.SHA1,
		Password:   []byte("pw"),
		Salt:       []byte("salt"),
		Iterations: 1,
	}
	h := primitives.SHA1.New()
	h.Write(info.Password)
	h.Write(info.Salt)
	want := h.Sum(nil)

	got, err := DeriveCMP(info)
	if err != nil {
		t.Fatalf("DeriveCMP: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DeriveCMP(iterations=1): got %x, want %x", got, want)
	}
}

func TestDeriveCMPIterates(t *testing.T) {
	info1 := &DeriveInfo{Hash: primitives.SHA1, Password: []byte("pw"), Salt: []byte("salt"), Iterations: 1}
	info2 := &DeriveInfo{Hash: primitives.SHA1, Password: []byte("pw"), Salt: []byte("salt"), Iterations: 3}
	d1, err := DeriveCMP(info1)
	if err != nil {
		t.Fatalf("DeriveCMP: %v", err)
	}
	d2, err := DeriveCMP(info2)
	if err != nil {
		t.Fatalf("DeriveCMP: %v", err)
	}
	if bytes.Equal(d1, d2) {
		t.Fatalf("DeriveCMP: iteration count had no effect")
	}
}

// Seed-scenario fixture shared by the literal-vector tests below: a 48-byte
// password and a 64-byte salt built from a fixed interleaved byte pattern.
var (
	seedScenarioPassword = []byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0xFE, 0xDC, 0xBA, 0x98, 0x76, 0x54, 0x32, 0x10,
		0xF0, 0xE1, 0xD2, 0xC3, 0xB4, 0xA5, 0x96, 0x87,
		0x78, 0x69, 0x5A, 0x4B, 0x3C, 0x2D, 0x1E, 0x0F,
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
	}
	seedScenarioSalt = []byte{
		0xF0, 0xE1, 0xD2, 0xC3, 0xB4, 0xA5, 0x96, 0x87,
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0x78, 0x69, 0x5A, 0x4B, 0x3C, 0x2D, 0x1E, 0x0F,
		0xFE, 0xDC, 0xBA, 0x98, 0x76, 0x54, 0x32, 0x10,
		0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x80, 0x91, 0xA2, 0xB3, 0xC4, 0xD5, 0xE6, 0xF7,
		0x08, 0x19, 0x2A, 0x3B, 0x4C, 0x5D, 0x6E, 0x7F,
	}
)

func TestDerivePKCS5SeedScenarioVector(t *testing.T) {
	want := []byte{
		0x73, 0xF7, 0x8A, 0xBE, 0x3C, 0x9C, 0x65, 0x80,
		0x97, 0x60, 0x56, 0xDE, 0x04, 0x2A, 0x0C, 0x97,
		0x99, 0xF5, 0x06, 0x0F, 0x43, 0x06, 0xA5, 0xD0,
		0x74, 0xC9, 0xD5, 0xC5, 0xA5, 0x05, 0xB5, 0x7F,
	}
	// The vector is PBKDF2-HMAC-SHA1 over the first 32 password bytes and
	// the first 16 salt bytes of the fixture.
	info := &DeriveInfo{
		Hash:       primitives.SHA1,
		Password:   seedScenarioPassword[:32],
		Salt:       seedScenarioSalt[:16],
		Iterations: 10,
		OutLen:     32,
	}
	got, err := DerivePKCS5(info)
	if err != nil {
		t.Fatalf("DerivePKCS5: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DerivePKCS5 seed vector: got %x, want %x", got, want)
	}
}

func TestDeriveS2KSeedScenarioVector(t *testing.T) {
	want := []byte{
		0x4A, 0x4B, 0x90, 0x09, 0x27, 0xF8, 0xD0, 0x93,
		0x56, 0x16, 0xEA, 0xC1, 0x45, 0xCD, 0xEE, 0x05,
		0x67, 0xE1, 0x09, 0x38, 0x66, 0xEB, 0xB2, 0xB2,
		0xB9, 0x1F, 0xD3, 0xF7, 0x48, 0x2B, 0xDC, 0xCA,
	}
	// The vector uses the first 32 password bytes, the first 8 salt bytes
	// and 10 iterations of 64 bytes each, passed as the decoded byte count.
	info := &DeriveInfo{
		Hash:     primitives.SHA1,
		Password: seedScenarioPassword[:32],
		Salt:     seedScenarioSalt[:8],
		OutLen:   32,
	}
	got, err := DeriveS2K(info, 10*64)
	if err != nil {
		t.Fatalf("DeriveS2K: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DeriveS2K seed vector: got %x, want %x", got, want)
	}
}

func TestDeriveSSLSeedScenarioVector(t *testing.T) {
	want := []byte{
		0x87, 0x46, 0xDD, 0x7D, 0xAD, 0x5F, 0x48, 0xB6,
		0xFC, 0x8D, 0x92, 0xC4, 0xDB, 0x38, 0x79, 0x9A,
		0x3D, 0xEA, 0x22, 0xFA, 0xCD, 0x7E, 0x86, 0xD5,
		0x23, 0x6E, 0x10, 0x4C, 0xBD, 0x84, 0x89, 0xDF,
		0x1C, 0x87, 0x60, 0xBF, 0xFA, 0x2B, 0xCA, 0xFE,
		0xFE, 0x65, 0xC7, 0xA2, 0xCF, 0x04, 0xFF, 0xEB,
	}
	got, err := DeriveSSL(seedScenarioPassword, seedScenarioSalt, 48)
	if err != nil {
		t.Fatalf("DeriveSSL: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DeriveSSL seed vector: got %x, want %x", got, want)
	}
}

func TestDeriveTLS10SeedScenarioVector(t *testing.T) {
	want := []byte{
		0xD3, 0xD4, 0x2F, 0xD6, 0xE3, 0x7D, 0xC0, 0x3C,
		0xA6, 0x9F, 0x92, 0xDF, 0x3E, 0x40, 0x0A, 0x64,
		0x49, 0xB4, 0x0E, 0xC4, 0x14, 0x04, 0x2F, 0xC8,
		0xDD, 0x27, 0xD5, 0x1C, 0x62, 0xD2, 0x2C, 0x97,
		0x90, 0xAE, 0x08, 0x4B, 0xEE, 0xF4, 0x8D, 0x22,
		0xF0, 0x2A, 0x1E, 0x38, 0x2D, 0x31, 0xCB, 0x68,
	}
	got, err := DeriveTLS10(seedScenarioPassword, nil, seedScenarioSalt, 48)
	if err != nil {
		t.Fatalf("DeriveTLS10: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("DeriveTLS10 seed vector: got %x, want %x", got, want)
	}
}
