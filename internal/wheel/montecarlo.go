package wheel

import (
	"math"
	"sort"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/rng"
)

// Share compares one prize's configured weight share with what a run drew.
type Share struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Expected float64 `json:"expected"`
	Observed float64 `json:"observed"`
}

// Frequencies summarizes a batch of draws.
type Frequencies struct {
	Trials       int     `json:"trials"`
	Shares       []Share `json:"shares"`
	MaxDeviation float64 `json:"max_deviation"` // max |observed-expected|
}

// Stats summarizes how many spins a run of trials needed.
type Stats struct {
	Trials int     `json:"trials"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// RunFrequencies draws trials times and reports observed vs expected shares.
func RunFrequencies(prizes []Prize, trials int, src rng.RandomSource) (Frequencies, error) {
	if err := ValidatePrizes(prizes); err != nil {
		return Frequencies{}, err
	}
	if trials <= 0 {
		return Frequencies{Shares: expectedShares(prizes)}, nil
	}
	if src == nil {
		src = rng.Default()
	}
	counts := make([]int, len(prizes))
	for i := 0; i < trials; i++ {
		_, idx, err := Draw(prizes, src)
		if err != nil {
			return Frequencies{}, err
		}
		counts[idx]++
	}
	shares := expectedShares(prizes)
	maxDev := 0.0
	for i := range shares {
		shares[i].Count = counts[i]
		shares[i].Observed = float64(counts[i]) / float64(trials)
		if d := math.Abs(shares[i].Observed - shares[i].Expected); d > maxDev {
			maxDev = d
		}
	}
	return Frequencies{Trials: trials, Shares: shares, MaxDeviation: maxDev}, nil
}

func expectedShares(prizes []Prize) []Share {
	total := 0
	for _, p := range prizes {
		total += p.Weight
	}
	out := make([]Share, len(prizes))
	for i, p := range prizes {
		out[i] = Share{Name: p.Name, Expected: float64(p.Weight) / float64(total)}
	}
	return out
}

// RunDrawsUntil repeats trials of "spin until prize index comes up" and
// returns stats over the number of spins each trial needed.
func RunDrawsUntil(prizes []Prize, index, trials int, src rng.RandomSource) (Stats, error) {
	if err := ValidatePrizes(prizes); err != nil {
		return Stats{}, err
	}
	if index < 0 || index >= len(prizes) || prizes[index].Weight == 0 {
		return Stats{}, errs.Invalid("prize index %d is not drawable", index)
	}
	if trials <= 0 {
		return Stats{}, nil
	}
	if src == nil {
		src = rng.Default()
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		draws := 0
		for {
			draws++
			_, got, err := Draw(prizes, src)
			if err != nil {
				return Stats{}, err
			}
			if got == index {
				break
			}
		}
		samples[i] = draws
	}
	return summarize(samples), nil
}

// summarize sorts samples in place and reads every statistic off the
// sorted slice. Variance is the population variance, accumulated with
// Welford's update.
func summarize(samples []int) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}
	sort.Ints(samples)
	var mean, m2 float64
	for i, v := range samples {
		d := float64(v) - mean
		mean += d / float64(i+1)
		m2 += d * (float64(v) - mean)
	}
	return Stats{
		Trials: n,
		Min:    samples[0],
		Max:    samples[n-1],
		Mean:   mean,
		StdDev: math.Sqrt(m2 / float64(n)),
		P50:    quantile(samples, 0.50),
		P90:    quantile(samples, 0.90),
		P99:    quantile(samples, 0.99),
	}
}

// quantile interpolates linearly between the two closest ranks of sorted.
func quantile(sorted []int, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	f := pos - float64(lo)
	return float64(sorted[lo]) + f*float64(sorted[lo+1]-sorted[lo])
}
