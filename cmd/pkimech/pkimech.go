// pkimech is a flag-based driver that exercises the mechanism layer
// end to end: derive a key, wrap/unwrap it, sign/verify a digest. It
// is meant for manual smoke-testing, not as a production key-management
// tool — there is no keyset persistence, no session state, nothing
// beyond one shot through the mechanisms named on its flags.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"os"

	"gitlab.com/yawning/pkimech.git/csrand"
	"gitlab.com/yawning/pkimech.git/mech"
	"gitlab.com/yawning/pkimech.git/primitives"
)

var (
	cmd         string
	password    string
	salt        string
	iterations  int
	outLen      int
	rsaBits     int
	message     string
	wrapVariant string
)

func init() {
	flag.StringVar(&cmd, "cmd", "", "operation to run: derive, wrap, sign (required)")
	flag.StringVar(&password, "password", "hunter2", "password/secret fed to key derivation")
	flag.StringVar(&salt, "salt", "pkimech-salt", "salt fed to key derivation")
	flag.IntVar(&iterations, "iterations", 1000, "PBKDF iteration count")
	flag.IntVar(&outLen, "outlen", 32, "derived key length in bytes")
	flag.IntVar(&rsaBits, "rsabits", 2048, "RSA modulus size in bits, for wrap/sign")
	flag.StringVar(&message, "message", "pkimech smoke test", "message to sign or wrap as a symmetric key")
	flag.StringVar(&wrapVariant, "wrap", "pkcs1", "wrap variant: pkcs1, oaep or cms")
}

func main() {
	flag.Parse()

	switch cmd {
	case "derive":
		runDerive()
	case "wrap":
		runWrap()
	case "sign":
		runSign()
	default:
		fmt.Fprintln(os.Stderr, "usage: pkimech -cmd={derive,wrap,sign} [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}
}

func runDerive() {
	info := &mech.DeriveInfo{
		Hash:       primitives.SHA256,
		Password:   []byte(password),
		Salt:       []byte(salt),
		Iterations: iterations,
		OutLen:     outLen,
	}
	key, err := mech.Derive(mech.MechanismDerivePKCS5, info)
	if err != nil {
		log.Fatalf("derive: %v", err)
	}
	fmt.Printf("derived key (%d bytes): %x\n", len(key), key)
}

func genRSAKey(bits int) *primitives.RSAContext {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		log.Fatalf("rsa.GenerateKey: %v", err)
	}
	return &primitives.RSAContext{Priv: priv}
}

func runWrap() {
	payload := make([]byte, 24)
	if err := csrand.Bytes(payload); err != nil {
		log.Fatalf("csrand.Bytes: %v", err)
	}
	fmt.Printf("session key: %x\n", payload)

	var wrapped, recovered []byte
	var err error

	switch wrapVariant {
	case "pkcs1":
		key := genRSAKey(rsaBits)
		info := &mech.WrapInfo{Sign: key, Payload: payload}
		wrapped, err = mech.Wrap(mech.MechanismWrapPKCS1, info, nil)
		if err == nil {
			recovered, err = mech.Unwrap(mech.MechanismUnwrapPKCS1, info, wrapped)
		}
	case "oaep":
		key := genRSAKey(rsaBits)
		info := &mech.WrapInfo{Sign: key, Hash: primitives.SHA256}
		wrapped, err = mech.Wrap(mech.MechanismWrapOAEP, info, payload)
		if err == nil {
			recovered, err = mech.Unwrap(mech.MechanismUnwrapOAEP, info, wrapped)
		}
	case "cms":
		kek := make([]byte, 32)
		iv := make([]byte, 16)
		if err := csrand.Bytes(kek); err != nil {
			log.Fatalf("csrand.Bytes: %v", err)
		}
		if err := csrand.Bytes(iv); err != nil {
			log.Fatalf("csrand.Bytes: %v", err)
		}
		info := &mech.WrapInfo{Block: primitives.AES256, KEK: kek, IV: iv}
		wrapped, err = mech.Wrap(mech.MechanismWrapCMS, info, payload)
		if err == nil {
			recovered, err = mech.Unwrap(mech.MechanismUnwrapCMS, info, wrapped)
		}
	default:
		log.Fatalf("unknown -wrap variant %q", wrapVariant)
	}

	if err != nil {
		log.Fatalf("wrap/unwrap: %v", err)
	}
	fmt.Printf("wrapped (%d bytes): %x\n", len(wrapped), wrapped)
	fmt.Printf("unwrapped: %x\n", recovered)
	if string(recovered) != string(payload) {
		log.Fatal("round trip mismatch")
	}
}

func runSign() {
	key := genRSAKey(rsaBits)
	digest := sha256.Sum256([]byte(message))
	info := &mech.SignInfo{
		Sign:                  key,
		Hash:                  primitives.SHA256,
		Digest:                digest[:],
		SideChannelProtection: true,
	}

	sig, err := mech.Sign(mech.MechanismSignPKCS1, info)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Printf("signature (%d bytes): %x\n", len(sig), sig)

	if err := mech.Verify(mech.MechanismVerifyPKCS1, info, sig); err != nil {
		log.Fatalf("verify: %v", err)
	}
	fmt.Println("verify: ok")
}
