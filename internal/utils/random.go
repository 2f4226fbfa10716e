package utils

import (
	"math/rand"
)

// RandomUint32 returns a uniform random value over the full uint32 space
func RandomUint32() uint32 {
	return rand.Uint32() //nolint:gosec // Drop odds, not security critical
}

// RandomInt32n returns a uniform random value in [0, n)
func RandomInt32n(n int32) int32 {
	if n <= 0 {
		return 0
	}
	return rand.Int31n(n) //nolint:gosec // Pattern sampling, not security critical
}

// RandomIndex returns a uniform random index into a slice of length n
func RandomIndex(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n) //nolint:gosec // Item choice, not security critical
}
