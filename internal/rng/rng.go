package rng

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the only way the core draws randomness.
// Float64 must return a value in [0, 1).
type RandomSource interface {
	Float64() float64
}

// crypto random: default for live play
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// fall back to math/rand/v2
		return rand.Float64()
	}
	// 53 random bits => [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func Default() RandomSource { return cryptoRNG{} }

// Replicable source (simulations, tests)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// Fixed replays the given values in order and wraps around.
// An empty Fixed always returns 0.
type Fixed struct {
	Values []float64
	next   int
}

func NewFixed(values ...float64) *Fixed { return &Fixed{Values: values} }

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

// Intn maps one draw onto [0, n). n <= 0 yields 0.
func Intn(src RandomSource, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Shuffle permutes n elements in place (Fisher-Yates) using swap.
func Shuffle(src RandomSource, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := Intn(src, i+1)
		swap(i, j)
	}
}
