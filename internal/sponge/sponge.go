// Package sponge provides the shared absorb/squeeze/pad10*1 machinery that backs
// TurboSHAKE and, through turboshake.Hasher, KangarooTwelve's trunk hasher.
// KangarooTwelve's leaves are hashed in raw states without a Context.
//
// Rate is fixed at 136 bytes: both TurboSHAKE128 and TurboSHAKE256 use this rate in
// this module (a simplification of RFC 9861's 168/136 split, per the system this
// package serves — see the turboshake package for the full rationale).
package sponge

import "github.com/codahale/turbosponge/hazmat/keccak"

// Rate is the sponge's absorb/squeeze block size in bytes (200 - 64).
const Rate = 136

// Context is an incremental sponge state: a Keccak state, a position cursor, and a
// phase flag distinguishing absorption from squeezing. The cursor stays in
// [0, Rate) while absorbing; while squeezing it may rest at Rate, and the next
// Squeeze permutes before reading more output.
type Context struct {
	S         [200]byte
	Pos       int
	Squeezing bool
}

// Reset zeros the context, returning it to the Absorbing phase at position 0.
func (c *Context) Reset() {
	clear(c.S[:])
	c.Pos = 0
	c.Squeezing = false
}

// Absorb XORs p into the state starting at the current position, permuting and
// wrapping whenever the position reaches Rate. It must not be called once Finalize
// has been invoked.
func (c *Context) Absorb(p []byte) {
	for len(p) > 0 {
		w := min(Rate-c.Pos, len(p))
		for i := 0; i < w; i++ {
			c.S[c.Pos+i] ^= p[i]
		}
		c.Pos += w
		p = p[w:]
		if c.Pos == Rate {
			keccak.P1600(&c.S)
			c.Pos = 0
		}
	}
}

// Finalize applies the pad10*1 framing: XOR ds at the current position, XOR 0x80 at
// the last rate byte, permute, and enter the Squeezing phase at position 0. It is a
// no-op if the context is already squeezing.
func (c *Context) Finalize(ds byte) {
	if c.Squeezing {
		return
	}
	c.S[c.Pos] ^= ds
	c.S[Rate-1] ^= 0x80
	keccak.P1600(&c.S)
	c.Pos = 0
	c.Squeezing = true
}

// Squeeze fills p from the state, permuting and wrapping whenever the position
// reaches Rate. Finalize must have been called first.
func (c *Context) Squeeze(p []byte) {
	for len(p) > 0 {
		if c.Pos == Rate {
			keccak.P1600(&c.S)
			c.Pos = 0
		}
		n := copy(p, c.S[c.Pos:Rate])
		c.Pos += n
		p = p[n:]
	}
}
