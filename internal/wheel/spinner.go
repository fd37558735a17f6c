package wheel

import (
	"errors"
	"time"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/rng"
)

var (
	ErrSpinning   = errors.New("wheel is already spinning")
	ErrCooldown   = errors.New("wheel is cooling down")
	ErrDailyLimit = errors.New("daily spin limit reached")
)

// Config holds the prize table and the animation/gating tunables.
type Config struct {
	Prizes       []Prize
	Duration     time.Duration // animation length
	MinFullSpins int
	Easing       Easing
	Cooldown     time.Duration // minimum gap between spin starts
	DailyLimit   int           // spins per player per day; 0 disables
	HistorySize  int           // spin records kept per player
}

// DefaultConfig is the wheel the site shipped with.
func DefaultConfig() Config {
	return Config{
		Prizes: []Prize{
			{Name: "Voice Blessing", Weight: 5, Color: "#FF9AC8", Description: "A personal voice message from the princess"},
			{Name: "Limited Badge", Weight: 15, Color: "#FFC8E8", Description: "Anniversary limited digital badge"},
			{Name: "Captain Red Packet", Weight: 10, Color: "#A8E6CF", Description: "Captain renewal red packet"},
			{Name: "Merch", Weight: 2, Color: "#FFD3B6", Description: "Physical merchandise gift"},
			{Name: "Points Doubler", Weight: 50, Color: "#6A457F", Description: "Double game points for one hour"},
			{Name: "Signed Photo", Weight: 3, Color: "#FF6BAC", Description: "Hand-signed photo"},
			{Name: "Thanks for Playing", Weight: 15, Color: "#E9ECEF", Description: "Better luck next time"},
		},
		Duration:     3 * time.Second,
		MinFullSpins: 5,
		Easing:       EaseOutCubic,
		Cooldown:     2 * time.Second,
		DailyLimit:   10,
		HistorySize:  20,
	}
}

func (c Config) Validate() error {
	if err := ValidatePrizes(c.Prizes); err != nil {
		return err
	}
	if c.Duration <= 0 {
		return errs.Invalid("wheel duration must be > 0, got %s", c.Duration)
	}
	if c.MinFullSpins < 0 {
		return errs.Invalid("wheel min full spins must be >= 0")
	}
	if c.Easing != "" && !c.Easing.Valid() {
		return errs.Invalid("wheel easing %q is not one of linear, easeOutQuad, easeOutCubic, easeInOutCubic", c.Easing)
	}
	if c.Cooldown < 0 || c.DailyLimit < 0 || c.HistorySize < 0 {
		return errs.Invalid("wheel cooldown, daily limit and history size must be >= 0")
	}
	return nil
}

// State is what the renderer reads every frame.
type State struct {
	AngleRadians  float64 `json:"angle_radians"`
	Spinning      bool    `json:"spinning"`
	Selected      *Prize  `json:"selected,omitempty"`
	SelectedIndex int     `json:"selected_index"`
}

// Outcome describes a started spin.
type Outcome struct {
	Prize          Prize
	Index          int
	TargetRotation float64 // degrees
	Duration       time.Duration
	StartedAt      time.Time
}

// Wheel runs one wheel: select, solve the target angle, animate.
// It is not safe for concurrent use.
type Wheel struct {
	cfg   Config
	src   rng.RandomSource
	ease  EasingFunc
	state State

	target    float64
	startedAt time.Time
	lastSpin  time.Time

	// restored by Abort
	prevState State
	prevLast  time.Time
}

// New validates cfg and builds a wheel. nil src => crypto source.
func New(cfg Config, src rng.RandomSource) (*Wheel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rng.Default()
	}
	return &Wheel{cfg: cfg, src: src, ease: cfg.Easing.Func(), state: State{SelectedIndex: -1}}, nil
}

// Spin starts a new spin at now. A spin whose animation window has already
// passed is finished first, so hosts that never call Advance still work.
func (w *Wheel) Spin(now time.Time) (Outcome, error) {
	if err := w.Ready(now); err != nil {
		return Outcome{}, err
	}

	prize, idx, err := Draw(w.cfg.Prizes, w.src)
	if err != nil {
		return Outcome{}, err
	}
	target, err := TargetRotationDegrees(idx, len(w.cfg.Prizes), w.cfg.MinFullSpins)
	if err != nil {
		return Outcome{}, err
	}

	w.prevState, w.prevLast = w.state, w.lastSpin
	w.target = target
	w.startedAt = now
	w.lastSpin = now
	w.state = State{AngleRadians: 0, Spinning: true, Selected: &prize, SelectedIndex: idx}

	return Outcome{Prize: prize, Index: idx, TargetRotation: target, Duration: w.cfg.Duration, StartedAt: now}, nil
}

// Abort undoes a spin that is still animating, clearing its cooldown too.
// Hosts call it when the spin could not be recorded.
func (w *Wheel) Abort() {
	if !w.state.Spinning {
		return
	}
	w.state, w.lastSpin = w.prevState, w.prevLast
}

// Ready reports whether a spin could start at now: ErrSpinning while the
// animation runs, ErrCooldown inside the cooldown window.
func (w *Wheel) Ready(now time.Time) error {
	if w.state.Spinning {
		w.Advance(now)
		if w.state.Spinning {
			return ErrSpinning
		}
	}
	if !w.lastSpin.IsZero() && now.Sub(w.lastSpin) < w.cfg.Cooldown {
		return ErrCooldown
	}
	return nil
}

// Advance moves the animation to now and reports whether the spin is done.
func (w *Wheel) Advance(now time.Time) (State, bool) {
	if !w.state.Spinning {
		return w.state, true
	}
	elapsed := now.Sub(w.startedAt)
	deg := Interpolate(w.target, elapsed, w.cfg.Duration, w.ease)
	if rad := degreesToRadians(deg); rad > w.state.AngleRadians {
		w.state.AngleRadians = rad
	}
	if Progress(elapsed, w.cfg.Duration) >= 1 {
		w.state.AngleRadians = degreesToRadians(w.target)
		w.state.Spinning = false
		return w.state, true
	}
	return w.state, false
}

// State returns the last computed frame.
func (w *Wheel) State() State { return w.state }

// Config returns the wheel's configuration.
func (w *Wheel) Config() Config { return w.cfg }

// CheckDailyLimit fails once history holds limit spins on now's calendar
// day (in now's location). limit 0 disables.
func CheckDailyLimit(history []time.Time, now time.Time, limit int) error {
	if limit > 0 && spinsOnDay(history, now) >= limit {
		return ErrDailyLimit
	}
	return nil
}

// RemainingToday is limit minus today's spins, never negative; -1 if unlimited.
func RemainingToday(history []time.Time, now time.Time, limit int) int {
	if limit <= 0 {
		return -1
	}
	if left := limit - spinsOnDay(history, now); left > 0 {
		return left
	}
	return 0
}

func spinsOnDay(history []time.Time, now time.Time) int {
	y, m, d := now.Date()
	n := 0
	for _, ts := range history {
		ty, tm, td := ts.In(now.Location()).Date()
		if ty == y && tm == m && td == d {
			n++
		}
	}
	return n
}
