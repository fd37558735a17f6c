package wheel

import (
	"math"
	"time"

	"github.com/xtding233/arcade-backend/internal/errs"
)

// Easing names the curve used to animate a spin.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseOutCubic   Easing = "easeOutCubic"
	EaseInOutCubic Easing = "easeInOutCubic"
)

// EasingFunc maps progress in [0,1] to eased progress with f(0)=0 and f(1)=1.
type EasingFunc func(t float64) float64

// Func returns the easing function; unknown or empty names use ease-out cubic.
func (e Easing) Func() EasingFunc {
	switch e {
	case EaseLinear:
		return func(t float64) float64 { return t }
	case EaseOutQuad:
		// f(t) = 1 - (1 - t)^2
		return func(t float64) float64 { return 1 - (1-t)*(1-t) }
	case EaseInOutCubic:
		return func(t float64) float64 {
			if t < 0.5 {
				return 4 * t * t * t
			}
			return 1 - (-2*t+2)*(-2*t+2)*(-2*t+2)/2
		}
	default:
		return easeOutCubic
	}
}

// f(t) = 1 - (1 - t)^3
func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Valid reports whether e is a known easing name.
func (e Easing) Valid() bool {
	switch e {
	case EaseLinear, EaseOutQuad, EaseOutCubic, EaseInOutCubic:
		return true
	}
	return false
}

// SliceAngle is the wedge size in degrees.
func SliceAngle(sliceCount int) (float64, error) {
	if sliceCount <= 0 {
		return 0, errs.Invalid("slice count must be > 0, got %d", sliceCount)
	}
	return 360 / float64(sliceCount), nil
}

// TargetRotationDegrees is the total rotation that ends with the middle of
// slice prizeIndex under the pointer (fixed at the top, 90° reference),
// after at least minFullSpins whole turns.
func TargetRotationDegrees(prizeIndex, sliceCount, minFullSpins int) (float64, error) {
	slice, err := SliceAngle(sliceCount)
	if err != nil {
		return 0, err
	}
	if prizeIndex < 0 || prizeIndex >= sliceCount {
		return 0, errs.Invalid("prize index %d out of range [0,%d)", prizeIndex, sliceCount)
	}
	if minFullSpins < 0 {
		return 0, errs.Invalid("min full spins must be >= 0, got %d", minFullSpins)
	}
	pointer := -(float64(prizeIndex)*slice + slice/2) + 90
	return float64(minFullSpins)*360 + normalizeDegrees(pointer), nil
}

// normalizeDegrees folds any angle into [0, 360).
func normalizeDegrees(a float64) float64 {
	return math.Mod(math.Mod(a, 360)+360, 360)
}

// Progress is elapsed/duration clamped to [0,1]. A non-positive duration is
// already finished.
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Interpolate returns the wheel angle in degrees at elapsed time into a spin.
// Once progress reaches 1 the result is exactly total and the caller should
// stop requesting frames. nil ease uses ease-out cubic.
func Interpolate(total float64, elapsed, duration time.Duration, ease EasingFunc) float64 {
	if ease == nil {
		ease = easeOutCubic
	}
	p := Progress(elapsed, duration)
	if p >= 1 {
		return total
	}
	return total * ease(p)
}

func degreesToRadians(d float64) float64 { return d * math.Pi / 180 }
