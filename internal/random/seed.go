// Package random seeds pseudo-random generators from crypto/rand.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed reads a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// FromSeed returns a generator whose sequence is fixed by seed.
func FromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Faces draws count values between 1 and sides from rng.
func Faces(rng *rand.Rand, count, sides int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = rng.Intn(sides) + 1
	}
	return out
}
