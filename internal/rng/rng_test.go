package rng

import "testing"

func TestSeededReproducible(t *testing.T) {
	a, b := NewSeededRNG(7), NewSeededRNG(7)
	for i := 0; i < 100; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d out of range: %v", i, x)
		}
	}
}

func TestDefaultRange(t *testing.T) {
	src := Default()
	for i := 0; i < 1000; i++ {
		if v := src.Float64(); v < 0 || v >= 1 {
			t.Fatalf("crypto draw out of [0,1): %v", v)
		}
	}
}

func TestFixedWraps(t *testing.T) {
	f := NewFixed(0.1, 0.9)
	got := []float64{f.Float64(), f.Float64(), f.Float64()}
	if got[0] != 0.1 || got[1] != 0.9 || got[2] != 0.1 {
		t.Fatalf("unexpected sequence %v", got)
	}
	if v := (&Fixed{}).Float64(); v != 0 {
		t.Fatalf("empty Fixed should return 0, got %v", v)
	}
}

func TestIntnBounds(t *testing.T) {
	cases := []struct {
		draw float64
		n    int
		want int
	}{
		{0, 5, 0},
		{0.999999, 5, 4},
		{0.5, 4, 2},
		{0.5, 0, 0},
	}
	for _, c := range cases {
		if got := Intn(NewFixed(c.draw), c.n); got != c.want {
			t.Errorf("Intn(%v, %d) = %d, want %d", c.draw, c.n, got, c.want)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Shuffle(NewSeededRNG(3), len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
	seen := make(map[int]bool)
	for _, x := range xs {
		seen[x] = true
	}
	if len(seen) != 8 {
		t.Fatalf("shuffle lost elements: %v", xs)
	}
}
