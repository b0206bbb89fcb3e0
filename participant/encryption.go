package participant

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Key shares and signing nonces never hit the disk in the clear. The
// stored blob is nonce || AES-256-GCM ciphertext under a key derived
// from the console passphrase.
const (
	scryptCost            = 1 << 16
	scryptBlockSize       = 8
	scryptParallelization = 1
	derivedKeyLen         = 32
)

var errCiphertextTooShort = errors.New("ciphertext is shorter than the nonce")

func newShareCipher(passphrase, salt []byte) (cipher.AEAD, error) {
	derivedKey, err := scrypt.Key(passphrase, salt, scryptCost, scryptBlockSize, scryptParallelization, derivedKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func encrypt(passphrase, salt, plaintext []byte) ([]byte, error) {
	aead, err := newShareCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(passphrase, salt, blob []byte) ([]byte, error) {
	aead, err := newShareCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}

	if len(blob) < aead.NonceSize() {
		return nil, errCiphertextTooShort
	}

	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
