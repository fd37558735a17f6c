package wheel

import (
	"errors"
	"math"
	"testing"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/rng"
)

var siteWeights = []int{5, 15, 10, 2, 50, 3, 15}

func TestSelectEnds(t *testing.T) {
	idx, err := SelectIndex(siteWeights, 0)
	if err != nil || idx != 0 {
		t.Fatalf("u=0: got %d, %v; want first prize", idx, err)
	}
	idx, err = SelectIndex(siteWeights, math.Nextafter(1, 0))
	if err != nil || idx != len(siteWeights)-1 {
		t.Fatalf("u just below 1: got %d, %v; want last prize", idx, err)
	}
	// trailing zero weight is unreachable
	idx, err = SelectIndex([]int{5, 15, 0}, math.Nextafter(1, 0))
	if err != nil || idx != 1 {
		t.Fatalf("trailing zero weight: got %d, %v; want 1", idx, err)
	}
}

func TestSelectBoundaries(t *testing.T) {
	cases := []struct {
		u    float64
		want int
	}{
		{0.04, 0},
		{0.0500001, 1}, // just past the first slice
		{0.19, 1},
		{0.29, 2},
		{0.31, 3},
		{0.33, 4},
		{0.81, 4},
		{0.84, 5},
		{0.86, 6},
	}
	for _, c := range cases {
		got, err := SelectIndex(siteWeights, c.u)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("u=%v: index=%d, want %d", c.u, got, c.want)
		}
	}
}

func TestSelectUsesActualTotal(t *testing.T) {
	w := []int{1, 1} // sums to 2, not 100
	if got, _ := SelectIndex(w, 0.5); got != 0 {
		t.Fatalf("u=0.5: got %d, want 0", got)
	}
	if got, _ := SelectIndex(w, 0.75); got != 1 {
		t.Fatalf("u=0.75: got %d, want 1", got)
	}
}

func TestSelectSkipsLeadingZeroWeight(t *testing.T) {
	if got, _ := SelectIndex([]int{0, 3, 1}, 0); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestSelectStable(t *testing.T) {
	prizes := DefaultConfig().Prizes
	for _, u := range []float64{0.01, 0.42, 0.77, 0.999} {
		a, ai, _ := Select(prizes, u)
		b, bi, _ := Select(prizes, u)
		if ai != bi || a != b {
			t.Fatalf("u=%v: %d vs %d", u, ai, bi)
		}
	}
}

func TestSelectInvalid(t *testing.T) {
	if _, _, err := Select(nil, 0.3); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("empty list: expected ErrInvalidConfiguration, got %v", err)
	}
	zero := []Prize{{Name: "a"}, {Name: "b"}}
	if _, _, err := Select(zero, 0.3); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("all-zero weights: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := SelectIndex([]int{3, -1}, 0.3); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("negative weight: expected ErrInvalidConfiguration, got %v", err)
	}
	for _, u := range []float64{-0.1, 1, math.NaN()} {
		if _, err := SelectIndex(siteWeights, u); !errors.Is(err, ErrInvalidDraw) {
			t.Errorf("u=%v: expected ErrInvalidDraw, got %v", u, err)
		}
	}
}

func TestDrawUsesInjectedSource(t *testing.T) {
	prizes := DefaultConfig().Prizes
	p, idx, err := Draw(prizes, rng.NewFixed(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if idx != 4 || p.Name != prizes[4].Name {
		t.Fatalf("u=0.5 should land on the 50-weight prize, got %d (%s)", idx, p.Name)
	}
}
