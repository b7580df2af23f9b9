// Package aead adapts TurboShakeAead to the standard crypto/cipher.AEAD interface.
package aead

import (
	"crypto/cipher"

	hazmataead "github.com/codahale/turbosponge/hazmat/aead"
)

// New returns a new cipher.AEAD instance which uses the given key with
// TurboShakeAead. The key must be exactly hazmataead.KeySize bytes.
func New(key []byte) (cipher.AEAD, error) {
	if len(key) != hazmataead.KeySize {
		return nil, hazmataead.ErrInvalidKeySize
	}
	k := make([]byte, hazmataead.KeySize)
	copy(k, key)
	return &aead{key: k}, nil
}

type aead struct {
	key []byte
}

func (a *aead) NonceSize() int {
	return hazmataead.NonceSize
}

func (a *aead) Overhead() int {
	return hazmataead.TagSize
}

// Seal encrypts and authenticates plaintext, authenticates additionalData, and
// appends the result to dst, returning the updated slice.
//
// Panics if len(nonce) != a.NonceSize(), per the crypto/cipher.AEAD contract.
func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != a.NonceSize() {
		panic("aead: invalid nonce size")
	}

	sess, err := hazmataead.NewEncryptor(a.key, nonce)
	if err != nil {
		panic(err)
	}
	return sess.EncryptInPlace(dst, plaintext, additionalData)
}

// Open decrypts and authenticates ciphertext, authenticates additionalData and,
// if successful, appends the resulting plaintext to dst.
//
// Panics if len(nonce) != a.NonceSize(), per the crypto/cipher.AEAD contract.
func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != a.NonceSize() {
		panic("aead: invalid nonce size")
	}

	sess, err := hazmataead.NewDecryptor(a.key, nonce)
	if err != nil {
		panic(err)
	}
	return sess.DecryptInPlace(dst, ciphertext, additionalData)
}

var _ cipher.AEAD = (*aead)(nil)
