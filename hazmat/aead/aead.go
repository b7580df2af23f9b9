// Package aead implements TurboShakeAead, an authenticated-encryption construction
// built directly on the Keccak-p[1600,12] permutation via the duplex pattern:
// absorption and squeezing are interleaved between permutation calls, rather than
// the classic sponge's absorb-everything-then-squeeze-everything.
//
// Grounded on original_source/duplex/turboshake_aead.rs's TurboShakeAead (the state
// machine, rate, and domain separators) and on the single-lane leaf duplex loop of
// the tree-parallel authenticated encryption construction elsewhere in this corpus
// (absorb-before-permute-before-XOR sequencing, and the XOR-accumulate constant-time
// tag comparison idiom).
package aead

import (
	"errors"

	"github.com/codahale/turbosponge/hazmat/keccak"
	"github.com/codahale/turbosponge/internal/mem"
)

const (
	// KeySize is the required key size in bytes.
	KeySize = 32

	// NonceSize is the required nonce size in bytes.
	NonceSize = 16

	// TagSize is the authentication tag size in bytes, appended to the ciphertext.
	TagSize = 32

	rate = 136

	dsADDone  = 0x01
	dsMessage = 0x02
)

// Sentinel errors returned by this package. Check with errors.Is.
var (
	// ErrInvalidKeySize is returned when a key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.New("aead: invalid key size")

	// ErrInvalidNonceSize is returned when a nonce is not exactly NonceSize bytes.
	ErrInvalidNonceSize = errors.New("aead: invalid nonce size")

	// ErrAuthenticationFailed is returned when decryption's tag check fails, or the
	// ciphertext is shorter than TagSize. It does not distinguish the two cases.
	ErrAuthenticationFailed = errors.New("aead: authentication failed")
)

// phase tracks a Session's position in its single-use state machine:
// Initialized -> ReadyForMessage -> Finalized. Associated data is absorbed entirely
// within absorbAD, so there is no separate phase for it.
type phase int

const (
	phaseInitialized phase = iota
	phaseReadyForMessage
	phaseFinalized
)

// Session is a single-use TurboShakeAead duplex state machine. A Session is
// consumed by its first Encrypt/Decrypt (or EncryptInPlace/DecryptInPlace) call;
// reusing a Session, or reusing a (key, nonce) pair across Sessions, is a caller-side
// security violation this package does not prevent.
type Session struct {
	s     [200]byte
	phase phase
}

// NewEncryptor returns a Session initialized with key and nonce, ready to absorb
// associated data and encrypt a single message.
func NewEncryptor(key, nonce []byte) (*Session, error) {
	return newSession(key, nonce)
}

// NewDecryptor returns a Session initialized with key and nonce, ready to absorb
// associated data and decrypt a single message. Initialization is identical to
// NewEncryptor; only the caller's subsequent call (Encrypt vs Decrypt) differs.
func NewDecryptor(key, nonce []byte) (*Session, error) {
	return newSession(key, nonce)
}

func newSession(key, nonce []byte) (*Session, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonceSize
	}

	sess := &Session{}
	mem.XORInPlace(sess.s[:KeySize], key)
	keccak.P1600(&sess.s)
	mem.XORInPlace(sess.s[:NonceSize], nonce)
	keccak.P1600(&sess.s)
	return sess, nil
}

// absorbAD processes associated data in rate-sized blocks, then always absorbs the
// single-byte AD-done domain separator and permutes — even when ad is empty, so
// that encrypting with no AD is structurally distinguishable from any AD at all.
// This departs deliberately from the skip-when-empty behavior of the duplex
// construction this package is grounded on; see DESIGN.md.
func (sess *Session) absorbAD(ad []byte) {
	for len(ad) > 0 {
		n := min(rate, len(ad))
		mem.XORInPlace(sess.s[:n], ad[:n])
		ad = ad[n:]
		keccak.P1600(&sess.s)
	}

	sess.s[0] ^= dsADDone
	keccak.P1600(&sess.s)
	sess.s[0] ^= dsMessage
	keccak.P1600(&sess.s)
	sess.phase = phaseReadyForMessage
}

// Encrypt encrypts plaintext under ad and returns ciphertext with a TagSize-byte
// tag appended. It consumes sess.
func (sess *Session) Encrypt(plaintext, ad []byte) []byte {
	dst := make([]byte, 0, len(plaintext)+TagSize)
	return sess.EncryptInPlace(dst, plaintext, ad)
}

// EncryptInPlace appends the encryption of plaintext under ad to dst and returns
// the resulting slice, with the tag in the trailing TagSize bytes. To reuse
// plaintext's storage, pass plaintext[:0] as dst. It consumes sess.
func (sess *Session) EncryptInPlace(dst, plaintext, ad []byte) []byte {
	sess.absorbAD(ad)

	ret, ciphertext := mem.SliceForAppend(dst, len(plaintext)+TagSize)
	ct := ciphertext[:len(plaintext)]

	off := 0
	for off < len(plaintext) {
		n := min(rate, len(plaintext)-off)
		mem.XORAndCopy(ct[off:off+n], plaintext[off:off+n], sess.s[:n])
		keccak.P1600(&sess.s)
		off += n
	}

	copy(ciphertext[len(plaintext):], sess.s[:TagSize])
	sess.phase = phaseFinalized
	return ret
}

// Decrypt decrypts ciphertext (with its trailing TagSize-byte tag) under ad. It
// consumes sess and returns ErrAuthenticationFailed without producing any plaintext
// if verification fails.
func (sess *Session) Decrypt(ciphertext, ad []byte) ([]byte, error) {
	if len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}
	dst := make([]byte, 0, len(ciphertext)-TagSize)
	return sess.DecryptInPlace(dst, ciphertext, ad)
}

// DecryptInPlace appends the decryption of ciphertext (with its trailing
// TagSize-byte tag) under ad to dst and returns the resulting slice. On
// authentication failure it returns ErrAuthenticationFailed and a nil slice; any
// plaintext written to dst's backing array during the attempt is zeroed first. To
// reuse ciphertext's storage, pass ciphertext[:0] as dst. It consumes sess.
func (sess *Session) DecryptInPlace(dst, ciphertext, ad []byte) ([]byte, error) {
	if len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}

	ctLen := len(ciphertext) - TagSize
	ct := ciphertext[:ctLen]
	receivedTag := ciphertext[ctLen:]

	sess.absorbAD(ad)

	ret, plaintext := mem.SliceForAppend(dst, ctLen)

	off := 0
	for off < ctLen {
		n := min(rate, ctLen-off)
		mem.XORAndReplace(plaintext[off:off+n], ct[off:off+n], sess.s[:n])
		keccak.P1600(&sess.s)
		off += n
	}

	var computedTag [TagSize]byte
	copy(computedTag[:], sess.s[:TagSize])
	sess.phase = phaseFinalized

	if !constantTimeEqual(computedTag[:], receivedTag) {
		clear(plaintext)
		return nil, ErrAuthenticationFailed
	}

	return ret, nil
}

// constantTimeEqual compares a and b without early exit, accumulating the XOR of
// every byte pair before testing for zero.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := range a {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
