package wheel

import (
	"errors"
	"math"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/rng"
)

var ErrInvalidDraw = errors.New("invalid random draw; must be in [0,1)")

// Prize is one slice of the wheel. Weight is relative: the table does not
// need to sum to 100.
type Prize struct {
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// ValidatePrizes checks a prize table can be drawn from.
func ValidatePrizes(prizes []Prize) error {
	if len(prizes) == 0 {
		return errs.Invalid("prize list is empty")
	}
	total := 0
	for i, p := range prizes {
		if p.Weight < 0 {
			return errs.Invalid("prize %d (%s) has negative weight %d", i, p.Name, p.Weight)
		}
		total += p.Weight
	}
	if total <= 0 {
		return errs.Invalid("prize weights sum to %d; need > 0", total)
	}
	return nil
}

// SelectIndex walks the weights cumulatively and returns the first index
// whose running sum reaches u×total. Zero-weight entries are never chosen.
// Same weights and same u always give the same index.
func SelectIndex(weights []int, u float64) (int, error) {
	if len(weights) == 0 {
		return -1, errs.Invalid("prize list is empty")
	}
	if math.IsNaN(u) || u < 0 || u >= 1 {
		return -1, ErrInvalidDraw
	}
	total := 0
	for i, w := range weights {
		if w < 0 {
			return -1, errs.Invalid("weight %d is negative (%d)", i, w)
		}
		total += w
	}
	if total <= 0 {
		return -1, errs.Invalid("weights sum to %d; need > 0", total)
	}

	target := u * float64(total)
	cum, last := 0, -1
	for i, w := range weights {
		if w == 0 {
			continue
		}
		cum += w
		last = i
		if float64(cum) >= target {
			return i, nil
		}
	}
	// unreachable for u < 1; keep the last live slice as a guard
	return last, nil
}

// Select picks a prize for the draw u in [0,1).
func Select(prizes []Prize, u float64) (Prize, int, error) {
	weights := make([]int, len(prizes))
	for i, p := range prizes {
		weights[i] = p.Weight
	}
	idx, err := SelectIndex(weights, u)
	if err != nil {
		return Prize{}, -1, err
	}
	return prizes[idx], idx, nil
}

// Draw takes one value from src and selects with it. nil src => crypto source.
func Draw(prizes []Prize, src rng.RandomSource) (Prize, int, error) {
	if src == nil {
		src = rng.Default()
	}
	return Select(prizes, src.Float64())
}
