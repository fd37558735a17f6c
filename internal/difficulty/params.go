package difficulty

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xtding233/arcade-backend/internal/errs"
)

// Kind names one of the three minigames.
type Kind string

const (
	KindBubble   Kind = "bubble"
	KindMemory   Kind = "memory"
	KindReaction Kind = "reaction"
)

// Kinds lists every minigame in display order.
func Kinds() []Kind { return []Kind{KindBubble, KindMemory, KindReaction} }

// ParseKind accepts "bubble", "bubble-game" or "BUBBLE_GAME" style names.
func ParseKind(s string) (Kind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimSuffix(strings.TrimSuffix(k, "-game"), "_game")
	switch Kind(k) {
	case KindBubble, KindMemory, KindReaction:
		return Kind(k), nil
	}
	return "", fmt.Errorf("unknown game %q", s)
}

// BubbleConfig tunes the spawn/collect game.
type BubbleConfig struct {
	InitialCount           int
	MaxCount               int
	InitialSpeed           float64 // px per frame
	MaxSpeed               float64
	InitialSpawnInterval   time.Duration
	SpawnIntervalDecrement time.Duration // per unit of multiplier
	MinSpawnInterval       time.Duration
}

// MemoryConfig tunes the memory-match game.
type MemoryConfig struct {
	Damping            float64
	InitialGridSide    int
	MaxGridSide        int
	GridGrowthInterval time.Duration
	InitialShowTime    time.Duration
	ShowTimeDecrement  time.Duration
	MinShowTime        time.Duration
	InitialPairs       int
	MaxPairs           int
}

// ReactionConfig tunes the reaction-typing game.
type ReactionConfig struct {
	Damping            float64
	InitialShowTime    time.Duration
	ShowTimeDecrement  time.Duration
	MinShowTime        time.Duration
	InitialNextDelay   time.Duration
	NextDelayDecrement time.Duration
	MinNextDelay       time.Duration
	InitialWords       int
	MaxWords           int
	WordGrowthInterval time.Duration
}

// Config is every tunable the difficulty model reads.
type Config struct {
	Curve    Curve
	Bubble   BubbleConfig
	Memory   MemoryConfig
	Reaction ReactionConfig
}

// DefaultConfig returns the tuning the site shipped with.
func DefaultConfig() Config {
	return Config{
		Curve: Curve{
			StartDelay:           30 * time.Second,
			Interval:             600 * time.Millisecond,
			IncrementPerInterval: 0.1,
			MaxMultiplier:        10,
		},
		Bubble: BubbleConfig{
			InitialCount:           3,
			MaxCount:               30,
			InitialSpeed:           2,
			MaxSpeed:               20,
			InitialSpawnInterval:   1500 * time.Millisecond,
			SpawnIntervalDecrement: 50 * time.Millisecond,
			MinSpawnInterval:       300 * time.Millisecond,
		},
		Memory: MemoryConfig{
			Damping:            0.5,
			InitialGridSide:    4,
			MaxGridSide:        8,
			GridGrowthInterval: 2 * time.Minute,
			InitialShowTime:    3 * time.Second,
			ShowTimeDecrement:  100 * time.Millisecond,
			MinShowTime:        time.Second,
			InitialPairs:       8,
			MaxPairs:           32,
		},
		Reaction: ReactionConfig{
			Damping:            0.7,
			InitialShowTime:    2 * time.Second,
			ShowTimeDecrement:  80 * time.Millisecond,
			MinShowTime:        400 * time.Millisecond,
			InitialNextDelay:   1500 * time.Millisecond,
			NextDelayDecrement: 60 * time.Millisecond,
			MinNextDelay:       300 * time.Millisecond,
			InitialWords:       1,
			MaxWords:           4,
			WordGrowthInterval: 3 * time.Minute,
		},
	}
}

// BubbleParams is what the spawn/collect game runs with for one tick.
type BubbleParams struct {
	Count         int
	Speed         float64
	SpawnInterval time.Duration
}

// MemoryParams is what the memory-match game runs with for one tick.
type MemoryParams struct {
	GridSide int
	Pairs    int
	ShowTime time.Duration
}

// ReactionParams is what the reaction-typing game runs with for one tick.
type ReactionParams struct {
	ShowTime  time.Duration
	NextDelay time.Duration
	WordCount int
}

// Params is the result of one derivation. Exactly one of the game
// pointers is set, matching Kind.
type Params struct {
	Kind       Kind
	Elapsed    time.Duration
	Multiplier float64 // raw curve multiplier
	Effective  float64 // after the game's damping
	Bubble     *BubbleParams
	Memory     *MemoryParams
	Reaction   *ReactionParams
}

// Derive computes the parameters for kind at the given unpaused play time.
func (c Config) Derive(kind Kind, elapsed time.Duration) (Params, error) {
	m, err := ComputeMultiplier(elapsed, c.Curve)
	if err != nil {
		return Params{}, err
	}
	out := Params{Kind: kind, Elapsed: elapsed, Multiplier: m, Effective: m}
	switch kind {
	case KindBubble:
		bp, err := c.Bubble.derive(m)
		if err != nil {
			return Params{}, err
		}
		out.Bubble = &bp
	case KindMemory:
		out.Effective = damp(m, c.Memory.Damping)
		mp, err := c.Memory.derive(out.Effective, effectiveElapsed(elapsed, c.Curve))
		if err != nil {
			return Params{}, err
		}
		out.Memory = &mp
	case KindReaction:
		out.Effective = damp(m, c.Reaction.Damping)
		rp, err := c.Reaction.derive(out.Effective, effectiveElapsed(elapsed, c.Curve))
		if err != nil {
			return Params{}, err
		}
		out.Reaction = &rp
	default:
		return Params{}, errs.Invalid("unknown game kind %q", kind)
	}
	return out, nil
}

// Validate checks every curve and per-game bound.
func (c Config) Validate() error {
	if err := c.Curve.Validate(); err != nil {
		return err
	}
	if err := c.Bubble.Validate(); err != nil {
		return err
	}
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	return c.Reaction.Validate()
}

func (b BubbleConfig) Validate() error {
	switch {
	case b.InitialCount < 0 || b.MaxCount < b.InitialCount:
		return errs.Invalid("bubble count bounds must satisfy 0 <= initial <= max")
	case b.InitialSpeed < 0 || b.MaxSpeed < b.InitialSpeed:
		return errs.Invalid("bubble speed bounds must satisfy 0 <= initial <= max")
	case b.MinSpawnInterval <= 0 || b.InitialSpawnInterval < b.MinSpawnInterval:
		return errs.Invalid("bubble spawn interval bounds must satisfy 0 < min <= initial")
	case b.SpawnIntervalDecrement < 0:
		return errs.Invalid("bubble spawn interval decrement must be >= 0")
	}
	return nil
}

// count = floor(initial×m), speed = initial×m, interval = max(min, initial − m×dec)
func (b BubbleConfig) derive(m float64) (BubbleParams, error) {
	if err := b.Validate(); err != nil {
		return BubbleParams{}, err
	}
	count := int(math.Floor(float64(b.InitialCount) * m))
	speed := b.InitialSpeed * m
	interval := b.InitialSpawnInterval - scaleD(b.SpawnIntervalDecrement, m)
	return BubbleParams{
		Count:         clampI(count, b.InitialCount, b.MaxCount),
		Speed:         clampF(speed, b.InitialSpeed, b.MaxSpeed),
		SpawnInterval: clampD(interval, b.MinSpawnInterval, b.InitialSpawnInterval),
	}, nil
}

func (mc MemoryConfig) Validate() error {
	switch {
	case mc.Damping < 0:
		return errs.Invalid("memory damping must be >= 0")
	case mc.GridGrowthInterval <= 0:
		return errs.Invalid("memory grid growth interval must be > 0, got %s", mc.GridGrowthInterval)
	case mc.InitialGridSide < 2 || mc.MaxGridSide < mc.InitialGridSide:
		return errs.Invalid("memory grid side bounds must satisfy 2 <= initial <= max")
	case mc.MinShowTime < 0 || mc.InitialShowTime < mc.MinShowTime:
		return errs.Invalid("memory show time bounds must satisfy 0 <= min <= initial")
	case mc.ShowTimeDecrement < 0:
		return errs.Invalid("memory show time decrement must be >= 0")
	case mc.InitialPairs < 1 || mc.MaxPairs < mc.InitialPairs:
		return errs.Invalid("memory pair bounds must satisfy 1 <= initial <= max")
	}
	return nil
}

// growth = floor(effective/gridGrowth); side = min(max, initial+growth);
// show = max(min, initial − damped×dec); pairs = initial + 2×growth.
func (mc MemoryConfig) derive(damped float64, effective time.Duration) (MemoryParams, error) {
	if err := mc.Validate(); err != nil {
		return MemoryParams{}, err
	}
	growth := int(effective / mc.GridGrowthInterval)
	show := mc.InitialShowTime - scaleD(mc.ShowTimeDecrement, damped)
	return MemoryParams{
		GridSide: clampI(mc.InitialGridSide+growth, mc.InitialGridSide, mc.MaxGridSide),
		Pairs:    clampI(mc.InitialPairs+growth*2, mc.InitialPairs, mc.MaxPairs),
		ShowTime: clampD(show, mc.MinShowTime, mc.InitialShowTime),
	}, nil
}

func (rc ReactionConfig) Validate() error {
	switch {
	case rc.Damping < 0:
		return errs.Invalid("reaction damping must be >= 0")
	case rc.WordGrowthInterval <= 0:
		return errs.Invalid("reaction word growth interval must be > 0, got %s", rc.WordGrowthInterval)
	case rc.MinShowTime < 0 || rc.InitialShowTime < rc.MinShowTime:
		return errs.Invalid("reaction show time bounds must satisfy 0 <= min <= initial")
	case rc.MinNextDelay <= 0 || rc.InitialNextDelay < rc.MinNextDelay:
		return errs.Invalid("reaction next delay bounds must satisfy 0 < min <= initial, got min %s", rc.MinNextDelay)
	case rc.ShowTimeDecrement < 0 || rc.NextDelayDecrement < 0:
		return errs.Invalid("reaction decrements must be >= 0")
	case rc.InitialWords < 1 || rc.MaxWords < rc.InitialWords:
		return errs.Invalid("reaction word count bounds must satisfy 1 <= initial <= max")
	}
	return nil
}

// show/next = max(min, initial − damped×dec); words = min(max, initial + growth)
func (rc ReactionConfig) derive(damped float64, effective time.Duration) (ReactionParams, error) {
	if err := rc.Validate(); err != nil {
		return ReactionParams{}, err
	}
	growth := int(effective / rc.WordGrowthInterval)
	show := rc.InitialShowTime - scaleD(rc.ShowTimeDecrement, damped)
	next := rc.InitialNextDelay - scaleD(rc.NextDelayDecrement, damped)
	return ReactionParams{
		ShowTime:  clampD(show, rc.MinShowTime, rc.InitialShowTime),
		NextDelay: clampD(next, rc.MinNextDelay, rc.InitialNextDelay),
		WordCount: clampI(rc.InitialWords+growth, rc.InitialWords, rc.MaxWords),
	}, nil
}
