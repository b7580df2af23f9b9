// Package keccak implements the Keccak-p[1600, ROUNDS] permutation.
//
// The permutation operates on a 200-byte state viewed as 25 little-endian 64-bit lanes.
// ROUNDS is a runtime parameter, but the inner loop is unrolled two rounds at a time so
// that the common cases (12 rounds for TurboSHAKE/KT/AEAD, 24 rounds for conformance
// tests) never fall through a per-round dispatch.
package keccak

import (
	"encoding/binary"
	"runtime"
)

// Lanes is the number of permutations this host can usefully run concurrently. It is
// derived from runtime.GOMAXPROCS and is used to size the goroutine batches in P1600x2,
// P1600x4, and the KangarooTwelve leaf-hashing path.
var Lanes = laneCount()

func laneCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// rc holds the 24 round constants of Keccak-f[1600], indexed by round number.
var rc = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rotc holds the rho rotation offsets applied along the pi-permutation's lane-visiting
// cycle, in the order that cycle is walked starting from lane 1.
var rotc = [24]uint64{
	44, 20, 61, 39, 18, 62, 43, 25, 8, 56, 41, 27,
	14, 2, 55, 45, 36, 28, 21, 15, 10, 6, 3, 1,
}

// P1600 applies the Keccak-p[1600, 12] permutation to state in place.
func P1600(state *[200]byte) {
	Permute(state, 12)
}

// Permute applies the Keccak-p[1600, ROUNDS] permutation to state in place, running the
// last ROUNDS rounds of the 24-round Keccak-f[1600] schedule. ROUNDS must be in [0, 24].
func Permute(state *[200]byte, rounds int) {
	var a [25]uint64
	for i := range a {
		a[i] = binary.LittleEndian.Uint64(state[i*8 : i*8+8])
	}

	start := 24 - rounds
	r := start
	for r+1 < 24 {
		round(&a, rc[r])
		round(&a, rc[r+1])
		r += 2
	}
	if r < 24 {
		round(&a, rc[r])
	}

	for i, lane := range a {
		binary.LittleEndian.PutUint64(state[i*8:i*8+8], lane)
	}
}

// round performs one Keccak-f[1600] round (theta, rho+pi, chi, iota) on a, the 25-lane
// state indexed as a[x+5*y].
func round(a *[25]uint64, roundConstant uint64) {
	// Theta.
	var c [5]uint64
	for x := range 5 {
		c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
	}
	var d [5]uint64
	for x := range 5 {
		d[x] = c[(x+4)%5] ^ rotl64(c[(x+1)%5], 1)
	}
	for x := range 5 {
		a[x] ^= d[x]
		a[x+5] ^= d[x]
		a[x+10] ^= d[x]
		a[x+15] ^= d[x]
		a[x+20] ^= d[x]
	}

	// Rho and pi, fused: walk the lane-permutation cycle starting at lane 1 with a
	// single carried temporary, so no intermediate state array is materialized.
	t := a[1]
	a[1] = rotl64(a[6], rotc[0])
	a[6] = rotl64(a[9], rotc[1])
	a[9] = rotl64(a[22], rotc[2])
	a[22] = rotl64(a[14], rotc[3])
	a[14] = rotl64(a[20], rotc[4])
	a[20] = rotl64(a[2], rotc[5])
	a[2] = rotl64(a[12], rotc[6])
	a[12] = rotl64(a[13], rotc[7])
	a[13] = rotl64(a[19], rotc[8])
	a[19] = rotl64(a[23], rotc[9])
	a[23] = rotl64(a[15], rotc[10])
	a[15] = rotl64(a[4], rotc[11])
	a[4] = rotl64(a[24], rotc[12])
	a[24] = rotl64(a[21], rotc[13])
	a[21] = rotl64(a[8], rotc[14])
	a[8] = rotl64(a[16], rotc[15])
	a[16] = rotl64(a[5], rotc[16])
	a[5] = rotl64(a[3], rotc[17])
	a[3] = rotl64(a[18], rotc[18])
	a[18] = rotl64(a[17], rotc[19])
	a[17] = rotl64(a[11], rotc[20])
	a[11] = rotl64(a[7], rotc[21])
	a[7] = rotl64(a[10], rotc[22])
	a[10] = rotl64(t, rotc[23])

	// Chi, row by row from local copies to avoid aliasing.
	for y := 0; y < 25; y += 5 {
		t0, t1, t2, t3, t4 := a[y], a[y+1], a[y+2], a[y+3], a[y+4]
		a[y] = t0 ^ (^t1 & t2)
		a[y+1] = t1 ^ (^t2 & t3)
		a[y+2] = t2 ^ (^t3 & t4)
		a[y+3] = t3 ^ (^t4 & t0)
		a[y+4] = t4 ^ (^t0 & t1)
	}

	// Iota.
	a[0] ^= roundConstant
}

func rotl64(x, n uint64) uint64 {
	return x<<n | x>>(64-n)
}

// P1600x2 applies the Keccak-p[1600, 12] permutation to two independent states. The two
// permutations execute concurrently when Lanes > 1; the result is bit-identical to calling
// P1600 on each state sequentially.
func P1600x2(state1, state2 *[200]byte) {
	if Lanes < 2 {
		P1600(state1)
		P1600(state2)
		return
	}

	done := make(chan struct{})
	go func() {
		P1600(state2)
		close(done)
	}()
	P1600(state1)
	<-done
}

// P1600x4 applies the Keccak-p[1600, 12] permutation to four independent states,
// concurrently when Lanes permits. The result is bit-identical to calling P1600 on each
// state sequentially.
func P1600x4(state1, state2, state3, state4 *[200]byte) {
	if Lanes < 4 {
		P1600x2(state1, state2)
		P1600x2(state3, state4)
		return
	}

	var done [3]chan struct{}
	for i := range done {
		done[i] = make(chan struct{})
	}
	go func() { P1600(state2); close(done[0]) }()
	go func() { P1600(state3); close(done[1]) }()
	go func() { P1600(state4); close(done[2]) }()
	P1600(state1)
	for _, ch := range done {
		<-ch
	}
}
