package utils

import (
	"math"
	"math/rand"
	"testing"
)

func TestGaussianSampleReproducible(t *testing.T) {
	a := GaussianSample(rand.New(rand.NewSource(7)), 100, 15)
	b := GaussianSample(rand.New(rand.NewSource(7)), 100, 15)
	if a != b {
		t.Fatalf("expected identical draws for identical seeds, got %f and %f", a, b)
	}
}

func TestGaussianSampleZeroStdDev(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	got := GaussianSample(r, 50000, 0)
	if got != 50000 {
		t.Fatalf("expected mean with zero stddev, got %f", got)
	}
}

func TestGaussianSampleDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		sum += GaussianSample(r, 100, 15)
	}
	mean := sum / n
	if math.Abs(mean-100) > 1 {
		t.Fatalf("sample mean drifted too far: %f", mean)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.2, 0.30, 0.95); got != 0.30 {
		t.Fatalf("expected lower bound, got %f", got)
	}
	if got := Clamp(1.2, 0.30, 0.95); got != 0.95 {
		t.Fatalf("expected upper bound, got %f", got)
	}
	if got := Clamp(0.5, 0.30, 0.95); got != 0.5 {
		t.Fatalf("expected passthrough, got %f", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(30, 40, 95); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
	if got := ClampInt(100, 40, 95); got != 95 {
		t.Fatalf("expected 95, got %d", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.8189); got != 0.82 {
		t.Fatalf("expected 0.82, got %f", got)
	}
	if got := Round2(0.5671); got != 0.57 {
		t.Fatalf("expected 0.57, got %f", got)
	}
}
