package utils

import (
	"math"
	"math/rand"
)

// GaussianSample draws from a normal distribution via the Box-Muller
// transform. Both uniform draws are flipped into (0,1] so the log never
// sees zero.
func GaussianSample(r *rand.Rand, mean, stdDev float64) float64 {
	u1 := 1 - r.Float64()
	u2 := 1 - r.Float64()
	z := math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
	return mean + stdDev*z
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
