package difficulty

import (
	"time"

	"github.com/xtding233/arcade-backend/internal/errs"
)

// Curve drives the shared difficulty multiplier.
// Example: StartDelay=30s, Interval=600ms, Increment=0.1, Max=10
// → 1.0 for the first 30s, then +0.1 every 0.6s, capped at 10.
type Curve struct {
	StartDelay           time.Duration // multiplier stays 1.0 until this much play time
	Interval             time.Duration // length of one ramp step, must be > 0
	IncrementPerInterval float64       // multiplier gain per completed step
	MaxMultiplier        float64       // global cap, must be >= 1
}

// Validate reports the first rule the curve breaks.
func (c Curve) Validate() error {
	if c.Interval <= 0 {
		return errs.Invalid("difficulty interval must be > 0, got %s", c.Interval)
	}
	if c.StartDelay < 0 {
		return errs.Invalid("difficulty start delay must be >= 0, got %s", c.StartDelay)
	}
	if c.IncrementPerInterval < 0 {
		return errs.Invalid("difficulty increment must be >= 0, got %v", c.IncrementPerInterval)
	}
	if c.MaxMultiplier < 1 {
		return errs.Invalid("difficulty max multiplier must be >= 1, got %v", c.MaxMultiplier)
	}
	return nil
}

// ComputeMultiplier maps unpaused play time to a multiplier in [1, MaxMultiplier].
// - elapsed <= StartDelay: 1.0
// - else: 1 + floor((elapsed-StartDelay)/Interval) * Increment, clamped.
func ComputeMultiplier(elapsed time.Duration, c Curve) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if elapsed <= c.StartDelay {
		return 1.0, nil
	}
	intervals := (elapsed - c.StartDelay) / c.Interval // integer division floors for positive values
	m := 1.0 + float64(intervals)*c.IncrementPerInterval
	return clampF(m, 1.0, c.MaxMultiplier), nil
}

// NextStep returns the first play time after elapsed at which the multiplier
// grows. ok is false when it never will: flat curve or cap reached.
func (c Curve) NextStep(elapsed time.Duration) (next time.Duration, ok bool) {
	m, err := ComputeMultiplier(elapsed, c)
	if err != nil || c.IncrementPerInterval == 0 || m >= c.MaxMultiplier {
		return 0, false
	}
	if elapsed < c.StartDelay {
		return c.StartDelay + c.Interval, true
	}
	k := (elapsed - c.StartDelay) / c.Interval
	return c.StartDelay + (k+1)*c.Interval, true
}

// effectiveElapsed is play time past the start delay, never negative.
func effectiveElapsed(elapsed time.Duration, c Curve) time.Duration {
	if elapsed <= c.StartDelay {
		return 0
	}
	return elapsed - c.StartDelay
}

// damp pulls a raw multiplier toward 1 by factor: 1 + (m-1)*factor.
func damp(m, factor float64) float64 {
	return 1.0 + (m-1.0)*factor
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampD(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scaleD multiplies a duration by a float, truncating to whole nanoseconds.
func scaleD(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
