// Package entropy provides the simulation's random source.
// A fixed seed gives reproducible runs; seed 0 draws one from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
	"time"
)

// NewRand returns a math/rand generator and the seed it was built from.
// A zero seed is replaced by CryptoSeed so every unseeded run differs.
func NewRand(seed int64) (*mrand.Rand, int64) {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewSource(seed)), seed
}

// CryptoSeed returns a non-zero seed drawn from crypto/rand.
// Falls back to the wall clock if the system source fails.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but keep the run going.
		slog.Warn("crypto/rand unavailable, seeding from clock", "error", err)
		return time.Now().UnixNano() | 1
	}
	// Clear the sign bit; a zero result would mean "random" again.
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
