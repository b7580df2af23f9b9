// Package turboshake implements TurboSHAKE128 and TurboSHAKE256 as specified in
// RFC 9861.
//
// Both variants are eXtendable-Output Functions (XOFs) built on the Keccak-p[1600,12]
// permutation. In this module both share a rate of 136 bytes (the TurboSHAKE256
// rate); it is a deliberate simplification of RFC 9861's 168/136 rate split, kept so
// every component in this module (TurboSHAKE, KangarooTwelve, the duplex AEAD) shares
// one sponge rate. The two variants differ only in the claimed security level: the
// library exposes both names so callers select intentionally, not in any bit
// processed differently.
package turboshake

import (
	"github.com/codahale/turbosponge/hazmat/keccak"
	"github.com/codahale/turbosponge/internal/mem"
	"github.com/codahale/turbosponge/internal/sponge"
)

// Rate is the TurboSHAKE rate in bytes, shared by both variants in this module.
const Rate = sponge.Rate

// DS is the domain separation byte used by the plain TurboSHAKE128/256 instances.
// Callers building further constructions on top of the sponge (KangarooTwelve, the
// duplex AEAD) use their own domain bytes via New directly.
const DS = 0x1F

// Hasher is an incremental TurboSHAKE instance that implements io.ReadWriter.
// Writes absorb data into the sponge and reads squeeze output from it. Once Read is
// called, no further writes are permitted.
type Hasher struct {
	ctx sponge.Context
	ds  byte
}

// New returns a new Hasher with the given domain separation byte. ds must be in the
// range [0x01, 0x7F].
func New(ds byte) Hasher {
	return Hasher{ds: ds}
}

// New128 returns a new TurboSHAKE128 Hasher.
func New128() Hasher { return New(DS) }

// New256 returns a new TurboSHAKE256 Hasher.
func New256() Hasher { return New(DS) }

// Reset zeros the hasher and reinitializes it with the given domain separation byte.
func (h *Hasher) Reset(ds byte) {
	h.ctx.Reset()
	h.ds = ds
}

// Write absorbs p into the sponge state. It must not be called after Read.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.ctx.Squeezing {
		panic("turboshake: write after finalize")
	}
	h.ctx.Absorb(p)
	return len(p), nil
}

// Read squeezes output from the sponge state into p. On the first call, it
// finalizes absorption by applying padding and permuting. Subsequent calls
// continue squeezing.
func (h *Hasher) Read(p []byte) (int, error) {
	h.ctx.Finalize(h.ds)
	h.ctx.Squeeze(p)
	return len(p), nil
}

// Finalize pads and squeezes len(out) bytes into out, consuming the hasher.
func (h *Hasher) Finalize(out []byte) {
	_, _ = h.Read(out)
}

// Sum computes TurboSHAKE(msg, ds, outLen) and returns the result.
func Sum(msg []byte, ds byte, outLen int) []byte {
	h := New(ds)
	_, _ = h.Write(msg)
	out := make([]byte, outLen)
	h.Finalize(out)
	return out
}

// Hash128 computes TurboSHAKE128(data) into out, an XOF of caller-chosen length.
func Hash128(data, out []byte) {
	h := New128()
	_, _ = h.Write(data)
	h.Finalize(out)
}

// Hash256 computes TurboSHAKE256(data) into out, an XOF of caller-chosen length.
func Hash256(data, out []byte) {
	h := New256()
	_, _ = h.Write(data)
	h.Finalize(out)
}

// Chain clones a into b, finalizes b with the given domain separation byte, and
// finalizes both in parallel using keccak.P1600x2. After Chain returns, both a and b
// are in the squeezing phase and ready for Read. It suits two outputs that share an
// absorbed prefix and differ only in their domain separation byte.
func Chain(a, b *Hasher, ds byte) {
	if a.ctx.Squeezing {
		panic("turboshake: parallel finalization with finalized state")
	}

	*b = *a
	a.ctx.S[a.ctx.Pos] ^= a.ds
	a.ctx.S[sponge.Rate-1] ^= 0x80
	b.ctx.S[b.ctx.Pos] ^= ds
	b.ctx.S[sponge.Rate-1] ^= 0x80
	keccak.P1600x2(&a.ctx.S, &b.ctx.S)
	a.ctx.Pos, b.ctx.Pos = 0, 0
	a.ctx.Squeezing, b.ctx.Squeezing = true, true
}

// absorbDirect XORs p into s starting at pos without going through a Hasher,
// permuting whenever the rate boundary is crossed. Used by internal/kt's
// single-leaf path (leafCVX1), which hashes a leaf in a raw state rather than
// through a Hasher.
func absorbDirect(s *[200]byte, pos int, p []byte) int {
	for len(p) > 0 {
		w := min(Rate-pos, len(p))
		mem.XORInPlace(s[pos:pos+w], p[:w])
		pos += w
		p = p[w:]
		if pos == Rate {
			keccak.P1600(s)
			pos = 0
		}
	}
	return pos
}

// AbsorbDirect is the exported form of absorbDirect, used by internal/kt.
func AbsorbDirect(s *[200]byte, pos int, p []byte) int {
	return absorbDirect(s, pos, p)
}

// FinalizeDirect applies pad10*1 framing directly to a raw state at the given
// domain separator and position, permuting once. Used by internal/kt's leaf path.
func FinalizeDirect(s *[200]byte, pos int, ds byte) {
	s[pos] ^= ds
	s[Rate-1] ^= 0x80
	keccak.P1600(s)
}
