// Package kt implements the KangarooTwelve tree-hash core shared by hazmat/kt128 and
// hazmat/kt256. The two variants differ only in chaining-value size (32 vs 64 bytes);
// everything else — chunking, domain bytes, right_encode framing, leaf parallelism —
// is identical, so it lives here once.
package kt

import (
	"slices"

	"github.com/codahale/turbosponge/hazmat/keccak"
	"github.com/codahale/turbosponge/hazmat/turboshake"
	"github.com/codahale/turbosponge/internal/mem"
)

const (
	// BlockSize is the KangarooTwelve chunk size in bytes.
	BlockSize = 8192

	trunkMultiDS  = 0x06
	trunkSingleDS = 0x07
	leafDS        = 0x0B
)

// kt12Marker is the 8-byte KangarooTwelve marker written after s_0.
var kt12Marker = [8]byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Hasher is an incremental KangarooTwelve instance parameterized by chaining-value
// size. It implements the hash.Hash-shaped Write/Read/Sum/Reset surface used by
// hazmat/kt128.Hasher and hazmat/kt256.Hasher.
type Hasher struct {
	cvSize    int
	suffix    []byte // customization || right_encode(len(customization)), immutable
	buf       []byte // buffered message/leaf data
	ts        *turboshake.Hasher
	leafCount int
	treeMode  bool
}

// New returns a new Hasher with empty customization and the given chaining-value
// size (32 for KT128, 64 for KT256).
func New(cvSize int) *Hasher {
	return &Hasher{cvSize: cvSize, suffix: rightEncode(0)}
}

// NewCustom returns a new Hasher with the given customization string.
func NewCustom(cvSize int, c []byte) *Hasher {
	suffix := make([]byte, 0, len(c)+9)
	suffix = append(suffix, c...)
	suffix = append(suffix, rightEncode(uint64(len(c)))...)
	return &Hasher{cvSize: cvSize, suffix: suffix}
}

// Write absorbs message bytes. It must not be called after Read; Sum leaves the
// state unchanged, so writing after Sum is allowed.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)

	if !h.treeMode {
		need := BlockSize + 1 - len(h.buf)
		if need > len(p) {
			h.buf = append(h.buf, p...)
			return n, nil
		}

		h.buf = append(h.buf, p[:need]...)
		p = p[need:]
		ts := turboshake.New(trunkMultiDS)
		h.ts = &ts
		_, _ = h.ts.Write(h.buf[:BlockSize])
		_, _ = h.ts.Write(kt12Marker[:])
		h.buf[0] = h.buf[BlockSize]
		h.buf = h.buf[:1]
		h.treeMode = true
	}

	lanes := keccak.Lanes

	if len(p) > lanes*BlockSize {
		if len(h.buf) > 0 {
			need := BlockSize - len(h.buf)
			h.buf = append(h.buf, p[:need]...)
			p = p[need:]
			h.processLeafBatch(h.buf[:BlockSize], 1)
			h.buf = h.buf[:0]
		}

		for {
			processable := (len(p) - 1) / BlockSize
			nFlush := (processable / lanes) * lanes
			if nFlush == 0 {
				break
			}
			h.processLeafBatch(p[:nFlush*BlockSize], nFlush)
			p = p[nFlush*BlockSize:]
		}

		h.buf = append(h.buf, p...)
		return n, nil
	}

	h.buf = append(h.buf, p...)
	for {
		processable := (len(h.buf) - 1) / BlockSize
		nFlush := (processable / lanes) * lanes
		if nFlush == 0 {
			break
		}
		h.processLeafBatch(h.buf[:nFlush*BlockSize], nFlush)
		remaining := copy(h.buf, h.buf[nFlush*BlockSize:])
		h.buf = h.buf[:remaining]
	}
	return n, nil
}

// processLeafBatch computes leaf CVs for nLeaves complete chunks using an X4→X2→X1
// cascade, feeding each CV into the trunk hasher as it's produced.
func (h *Hasher) processLeafBatch(data []byte, nLeaves int) {
	cvBuf := make([]byte, 4*h.cvSize)
	idx := 0

	for idx+4 <= nLeaves {
		off := idx * BlockSize
		h.leafCVsX4(data[off:off+4*BlockSize], cvBuf)
		_, _ = h.ts.Write(cvBuf[:4*h.cvSize])
		idx += 4
	}

	for idx+2 <= nLeaves {
		off := idx * BlockSize
		h.leafCVsX2(data[off:off+2*BlockSize], cvBuf)
		_, _ = h.ts.Write(cvBuf[:2*h.cvSize])
		idx += 2
	}

	for idx < nLeaves {
		off := idx * BlockSize
		h.leafCVX1(data[off:off+BlockSize], cvBuf[:h.cvSize])
		_, _ = h.ts.Write(cvBuf[:h.cvSize])
		idx++
	}

	h.leafCount += nLeaves
}

// Read squeezes output from the XOF. On the first call, it finalizes absorption.
func (h *Hasher) Read(p []byte) (int, error) {
	h.finalize()
	return h.ts.Read(p)
}

// Sum appends the hash of the given length to b without changing the underlying
// state.
func (h *Hasher) Sum(b []byte, outLen int) []byte {
	clone := &Hasher{
		cvSize:    h.cvSize,
		suffix:    h.suffix,
		buf:       slices.Clone(h.buf),
		leafCount: h.leafCount,
		treeMode:  h.treeMode,
	}
	if h.ts != nil {
		ts := *h.ts
		clone.ts = &ts
	}
	clone.finalize()

	out := make([]byte, outLen)
	_, _ = clone.ts.Read(out)
	return append(b, out...)
}

// Clone returns an independent copy of h that can be written to and read from
// without affecting h.
func (h *Hasher) Clone() *Hasher {
	clone := &Hasher{
		cvSize:    h.cvSize,
		suffix:    h.suffix,
		buf:       slices.Clone(h.buf),
		leafCount: h.leafCount,
		treeMode:  h.treeMode,
	}
	if h.ts != nil {
		ts := *h.ts
		clone.ts = &ts
	}
	return clone
}

// Reset resets the Hasher to its initial state, retaining the customization string.
func (h *Hasher) Reset() {
	h.buf = h.buf[:0]
	h.ts = nil
	h.leafCount = 0
	h.treeMode = false
}

// BlockSize returns the KangarooTwelve chunk size.
func (h *Hasher) BlockSize() int { return BlockSize }

func (h *Hasher) finalize() {
	if h.ts != nil && !h.treeMode {
		return
	}

	h.buf = append(h.buf, h.suffix...)

	if !h.treeMode {
		if len(h.buf) <= BlockSize {
			ts := turboshake.New(trunkSingleDS)
			h.ts = &ts
			_, _ = h.ts.Write(h.buf)
			return
		}

		ts := turboshake.New(trunkMultiDS)
		h.ts = &ts
		_, _ = h.ts.Write(h.buf[:BlockSize])
		_, _ = h.ts.Write(kt12Marker[:])
		remaining := copy(h.buf, h.buf[BlockSize:])
		h.buf = h.buf[:remaining]
		h.treeMode = true
	}

	nLeaves := (len(h.buf) + BlockSize - 1) / BlockSize
	if nLeaves > 0 {
		cvBuf := make([]byte, 4*h.cvSize)
		idx := 0
		fullLeaves := len(h.buf) / BlockSize

		for idx+4 <= fullLeaves {
			off := idx * BlockSize
			h.leafCVsX4(h.buf[off:off+4*BlockSize], cvBuf)
			_, _ = h.ts.Write(cvBuf[:4*h.cvSize])
			idx += 4
		}

		for idx+2 <= fullLeaves {
			off := idx * BlockSize
			h.leafCVsX2(h.buf[off:off+2*BlockSize], cvBuf)
			_, _ = h.ts.Write(cvBuf[:2*h.cvSize])
			idx += 2
		}

		for idx < nLeaves {
			off := idx * BlockSize
			end := min(off+BlockSize, len(h.buf))
			h.leafCVX1(h.buf[off:end], cvBuf[:h.cvSize])
			_, _ = h.ts.Write(cvBuf[:h.cvSize])
			idx++
		}

		h.leafCount += nLeaves
	}

	_, _ = h.ts.Write(rightEncode(uint64(h.leafCount)))
	_, _ = h.ts.Write([]byte{0xFF, 0xFF})

	// The trunk is complete: clearing treeMode makes later calls return early, as
	// on the single-chunk path, so subsequent Reads only continue squeezing.
	h.treeMode = false
}

// rightEncode encodes x as in KangarooTwelve: big-endian with no leading zeros,
// followed by a byte giving the length of the encoding.
func rightEncode(x uint64) []byte {
	if x == 0 {
		return []byte{0x00}
	}

	n := 0
	for v := x; v > 0; v >>= 8 {
		n++
	}

	buf := make([]byte, n+1)
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(x)
		x >>= 8
	}
	buf[n] = byte(n)

	return buf
}

// leafCVX1 computes a single leaf CV using TurboSHAKE(data, leafDS, cvSize).
func (h *Hasher) leafCVX1(data []byte, cv []byte) {
	var s [200]byte
	pos := turboshake.AbsorbDirect(&s, 0, data)
	turboshake.FinalizeDirect(&s, pos, leafDS)
	copy(cv, s[:h.cvSize])
}

// leafCVsX2 computes 2 leaf CVs in parallel using keccak.P1600x2.
func (h *Hasher) leafCVsX2(data []byte, cv []byte) {
	var s0, s1 [200]byte
	pos := 0
	off := 0
	for off < BlockSize {
		n := min(turboshake.Rate-pos, BlockSize-off)
		mem.XORInPlace(s0[pos:pos+n], data[off:off+n])
		mem.XORInPlace(s1[pos:pos+n], data[BlockSize+off:BlockSize+off+n])
		pos += n
		off += n
		if pos == turboshake.Rate {
			keccak.P1600x2(&s0, &s1)
			pos = 0
		}
	}
	s0[pos] ^= leafDS
	s0[turboshake.Rate-1] ^= 0x80
	s1[pos] ^= leafDS
	s1[turboshake.Rate-1] ^= 0x80
	keccak.P1600x2(&s0, &s1)
	copy(cv[:h.cvSize], s0[:h.cvSize])
	copy(cv[h.cvSize:2*h.cvSize], s1[:h.cvSize])
}

// leafCVsX4 computes 4 leaf CVs in parallel using keccak.P1600x4.
func (h *Hasher) leafCVsX4(data []byte, cv []byte) {
	var s0, s1, s2, s3 [200]byte
	pos := 0
	off := 0
	for off < BlockSize {
		n := min(turboshake.Rate-pos, BlockSize-off)
		mem.XORInPlace(s0[pos:pos+n], data[off:off+n])
		mem.XORInPlace(s1[pos:pos+n], data[BlockSize+off:BlockSize+off+n])
		mem.XORInPlace(s2[pos:pos+n], data[2*BlockSize+off:2*BlockSize+off+n])
		mem.XORInPlace(s3[pos:pos+n], data[3*BlockSize+off:3*BlockSize+off+n])
		pos += n
		off += n
		if pos == turboshake.Rate {
			keccak.P1600x4(&s0, &s1, &s2, &s3)
			pos = 0
		}
	}
	s0[pos] ^= leafDS
	s0[turboshake.Rate-1] ^= 0x80
	s1[pos] ^= leafDS
	s1[turboshake.Rate-1] ^= 0x80
	s2[pos] ^= leafDS
	s2[turboshake.Rate-1] ^= 0x80
	s3[pos] ^= leafDS
	s3[turboshake.Rate-1] ^= 0x80
	keccak.P1600x4(&s0, &s1, &s2, &s3)
	copy(cv[:h.cvSize], s0[:h.cvSize])
	copy(cv[h.cvSize:2*h.cvSize], s1[:h.cvSize])
	copy(cv[2*h.cvSize:3*h.cvSize], s2[:h.cvSize])
	copy(cv[3*h.cvSize:], s3[:h.cvSize])
}
