package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"errors"
)

var (
	errBadIVLength        = errors.New("primitives: bad IV length")
	errNotBlockMultiple   = errors.New("primitives: input is not a multiple of the block size")
)

// aesBlock is the BlockContext implementation for AES (used as the CMS
// triple-wrap KEK cipher and for PKCS#8/#15 private-key wrap).
type aesBlock struct {
	keySize int
}

// AES128, AES192, AES256 are the BlockContext instances for each AES key
// size.
var (
	AES128 BlockContext = &aesBlock{16}
	AES192 BlockContext = &aesBlock{24}
	AES256 BlockContext = &aesBlock{32}
)

func (b *aesBlock) BlockSize() int { return aes.BlockSize }
func (b *aesBlock) KeySize() int   { return b.keySize }

func (b *aesBlock) newCipher(key []byte) (cipher.Block, error) {
	if len(key) != b.keySize {
		return nil, errors.New("primitives: bad AES key length")
	}
	return aes.NewCipher(key)
}

func (b *aesBlock) EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	return cbcEncrypt(b, key, iv, plaintext)
}

func (b *aesBlock) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	return cbcDecrypt(b, key, iv, ciphertext)
}

func (b *aesBlock) EncryptCFB(key, iv, plaintext []byte) ([]byte, error) {
	blk, err := b.newCipher(key)
	if err != nil {
		return nil, err
	}
	return cfbEncrypt(blk, iv, plaintext)
}

func (b *aesBlock) DecryptCFB(key, iv, ciphertext []byte) ([]byte, error) {
	blk, err := b.newCipher(key)
	if err != nil {
		return nil, err
	}
	return cfbDecrypt(blk, iv, ciphertext)
}

// tripleDESBlock is the BlockContext implementation for 3DES-EDE, the
// classic CMS key-wrap cipher ("3DES-wrap"-style naming derives from this
// cipher, though the wrap construction here is cipher-agnostic).
type tripleDESBlock struct{}

// TripleDES is the 3DES-EDE BlockContext instance.
var TripleDES BlockContext = &tripleDESBlock{}

func (b *tripleDESBlock) BlockSize() int { return des.BlockSize }
func (b *tripleDESBlock) KeySize() int   { return 24 }

func (b *tripleDESBlock) newCipher(key []byte) (cipher.Block, error) {
	if len(key) != 24 {
		return nil, errors.New("primitives: bad 3DES key length")
	}
	return des.NewTripleDESCipher(key)
}

func (b *tripleDESBlock) EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	return cbcEncrypt(b, key, iv, plaintext)
}

func (b *tripleDESBlock) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	return cbcDecrypt(b, key, iv, ciphertext)
}

func (b *tripleDESBlock) EncryptCFB(key, iv, plaintext []byte) ([]byte, error) {
	blk, err := b.newCipher(key)
	if err != nil {
		return nil, err
	}
	return cfbEncrypt(blk, iv, plaintext)
}

func (b *tripleDESBlock) DecryptCFB(key, iv, ciphertext []byte) ([]byte, error) {
	blk, err := b.newCipher(key)
	if err != nil {
		return nil, err
	}
	return cfbDecrypt(blk, iv, ciphertext)
}

type blockCipherFactory interface {
	BlockSize() int
	newCipher(key []byte) (cipher.Block, error)
}

func cbcEncrypt(f blockCipherFactory, key, iv, plaintext []byte) ([]byte, error) {
	blk, err := f.newCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != blk.BlockSize() {
		return nil, errBadIVLength
	}
	if len(plaintext)%blk.BlockSize() != 0 {
		return nil, errNotBlockMultiple
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(blk, iv).CryptBlocks(out, plaintext)
	return out, nil
}

func cbcDecrypt(f blockCipherFactory, key, iv, ciphertext []byte) ([]byte, error) {
	blk, err := f.newCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != blk.BlockSize() {
		return nil, errBadIVLength
	}
	if len(ciphertext)%blk.BlockSize() != 0 {
		return nil, errNotBlockMultiple
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(blk, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func cfbEncrypt(blk cipher.Block, iv, plaintext []byte) ([]byte, error) {
	if len(iv) != blk.BlockSize() {
		return nil, errBadIVLength
	}
	out := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(blk, iv).XORKeyStream(out, plaintext)
	return out, nil
}

func cfbDecrypt(blk cipher.Block, iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != blk.BlockSize() {
		return nil, errBadIVLength
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(blk, iv).XORKeyStream(out, ciphertext)
	return out, nil
}
