// Package mem provides small byte-slice primitives shared by the hazmat packages.
package mem

// XORInPlace sets dst[i] ^= src[i] for each i in src. Len(src) must be <= len(dst).
func XORInPlace(dst, src []byte) {
	for i, s := range src {
		dst[i] ^= s
	}
}

// XORAndCopy sets dst[i] = a[i] ^ b[i] and then b[i] = a[i] for each i. Used by the
// AEAD encrypt path: b is the keystream view of a sponge state, a is plaintext. dst
// receives the ciphertext; b is left holding the plaintext, which is the state that
// results from duplex-absorbing the ciphertext back into the same state that
// produced the keystream (XORing b's old value into the ciphertext cancels it,
// leaving a's value — so writing a[i] directly is equivalent to, and replaces, an
// explicit absorb step).
func XORAndCopy(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
		b[i] = a[i]
	}
}

// XORAndReplace sets dst[i] = src[i] ^ state[i] and then state[i] = dst[i] for each
// i. Used by the AEAD decrypt path: state is the keystream view of a sponge state,
// src is ciphertext. dst receives the plaintext; state is left holding that same
// plaintext value, by the same duplex-absorb cancellation as XORAndCopy.
func XORAndReplace(dst, src, state []byte) {
	for i, c := range src {
		p := c ^ state[i]
		dst[i] = p
		state[i] = p
	}
}

// SliceForAppend extends the capacity of in, if necessary, to guarantee space for
// n more bytes and returns the extended slice along with a slice pointing to the
// newly reserved space. Equivalent to the sliceForAppend idiom used throughout
// golang.org/x/crypto's AEAD implementations.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
