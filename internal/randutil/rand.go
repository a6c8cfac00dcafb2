// Package randutil builds seed-injected random sources for sampling.
//
// Nothing here touches the process-global generator: every *rand.Rand is
// derived from an explicit seed so runs are reproducible and concurrent
// computations never share a stream.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent generator for sub-stream n of seed. The same
// (seed, n) pair always yields the same sequence, which lets work be split
// into chunks without the split changing the numbers drawn.
func Derive(seed int64, n uint64) *rand.Rand {
	u := mix(uint64(seed)) ^ mix(n*goldenRatio64+1)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// FreshSeed draws a seed for callers that did not supply one. It reads the
// process-wide generator, so it is the one non-reproducible input; callers
// report the seed so the run can be replayed.
func FreshSeed() int64 {
	return rand.Int64()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
