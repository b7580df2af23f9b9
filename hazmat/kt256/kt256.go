// Package kt256 implements KT256 (KangarooTwelve, 256-bit-security variant) as
// specified in RFC 9861.
//
// KT256 is identical to KT128 except for its 64-byte chaining-value and default
// output size; both share the internal/kt tree-hash core.
package kt256

import "github.com/codahale/turbosponge/internal/kt"

const (
	// BlockSize is the KT256 chunk size in bytes.
	BlockSize = kt.BlockSize

	// Size is the default chaining-value and one-shot output size in bytes.
	Size = 64
)

// Hasher is an incremental KT256 instance that implements hash.Hash and io.Reader.
type Hasher struct {
	core *kt.Hasher
}

// New returns a new Hasher with empty customization.
func New() *Hasher {
	return &Hasher{core: kt.New(Size)}
}

// NewCustom returns a new Hasher with the given customization string.
func NewCustom(c []byte) *Hasher {
	return &Hasher{core: kt.NewCustom(Size, c)}
}

// Write absorbs message bytes. It must not be called after Read; Sum leaves the
// state unchanged, so writing after Sum is allowed.
func (h *Hasher) Write(p []byte) (int, error) { return h.core.Write(p) }

// Read squeezes output from the XOF. On the first call, it finalizes absorption.
func (h *Hasher) Read(p []byte) (int, error) { return h.core.Read(p) }

// Sum appends the current 64-byte hash to b without changing the underlying state.
func (h *Hasher) Sum(b []byte) []byte { return h.core.Sum(b, Size) }

// Reset resets the Hasher to its initial state, retaining the customization string.
func (h *Hasher) Reset() { h.core.Reset() }

// Clone returns an independent copy of h.
func (h *Hasher) Clone() *Hasher { return &Hasher{core: h.core.Clone()} }

// Size returns the default output size in bytes.
func (h *Hasher) Size() int { return Size }

// BlockSize returns the KT256 chunk size.
func (h *Hasher) BlockSize() int { return BlockSize }

// Hash computes KT256(message, customization) into output, an XOF of caller-chosen
// length.
func Hash(message, customization, output []byte) {
	h := NewCustom(customization)
	_, _ = h.Write(message)
	_, _ = h.Read(output)
}
