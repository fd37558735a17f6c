package minigame

import (
	"errors"
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/errs"
)

var (
	ErrNotRunning     = errors.New("game is not running")
	ErrNotPaused      = errors.New("game is not paused")
	ErrAlreadyStarted = errors.New("game already started")
	ErrUnknownEntity  = errors.New("no such entity")
	ErrCardsShowing   = errors.New("cards are still being shown")
)

// State is a session's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// Result is what a tick or a player action hands back to the host.
// ScoreDelta is never negative.
type Result struct {
	ScoreDelta   int
	FailureDelta int
	Multiplier   float64
	Ended        bool
	Params       difficulty.Params
}

// Game is the surface every minigame exposes. now must come from a
// monotonic clock; the game never reads the wall clock itself.
type Game interface {
	Kind() difficulty.Kind
	Start(now time.Time) error
	Pause(now time.Time) error
	Resume(now time.Time) error
	Stop(now time.Time) error
	Tick(now time.Time) (Result, error)
	Snapshot(now time.Time) Snapshot
}

// BubbleRules are the non-difficulty tunables of the spawn/collect game.
type BubbleRules struct {
	Points        int
	MaxMisses     int
	Lifetime      time.Duration // bubble vanishes without a miss after this
	FieldHeight   float64       // px a bubble travels before it escapes
	FrameInterval time.Duration // nominal frame length that speed is expressed in
	SpeedJitter   float64       // extra px/frame drawn uniformly from [0, jitter)
}

// MemoryRules are the non-difficulty tunables of the memory-match game.
type MemoryRules struct {
	Points        int
	MaxMismatches int // 0 = unlimited
}

// Word is one prompt in the reaction game and the key that answers it.
type Word struct {
	Text string
	Key  string
}

// ReactionRules are the non-difficulty tunables of the reaction game.
type ReactionRules struct {
	Points    int
	MaxErrors int
	Words     []Word
}

// Rules groups the three games' rules.
type Rules struct {
	Bubble   BubbleRules
	Memory   MemoryRules
	Reaction ReactionRules
}

// DefaultRules mirrors the site: 10/50/20 points, 10 misses or errors end a game.
func DefaultRules() Rules {
	return Rules{
		Bubble: BubbleRules{
			Points:        10,
			MaxMisses:     10,
			Lifetime:      8 * time.Second,
			FieldHeight:   540,
			FrameInterval: time.Second / 60,
			SpeedJitter:   2,
		},
		Memory: MemoryRules{Points: 50},
		Reaction: ReactionRules{
			Points:    20,
			MaxErrors: 10,
			Words: []Word{
				{"Cute", "A"}, {"Playful", "S"}, {"Magic", "D"}, {"Elf", "F"},
				{"Princess", "G"}, {"Pact", "H"}, {"Mana", "J"}, {"Bubble", "K"},
				{"Peach", "L"}, {"Soda", "Z"}, {"Sparkle", "X"}, {"Dream", "C"},
				{"Joy", "V"}, {"Eternal", "B"}, {"Star", "N"}, {"Moonlight", "M"},
			},
		},
	}
}

func (r Rules) Validate() error {
	if err := r.Bubble.Validate(); err != nil {
		return err
	}
	if err := r.Memory.Validate(); err != nil {
		return err
	}
	return r.Reaction.Validate()
}

func (r BubbleRules) Validate() error {
	switch {
	case r.Points < 0:
		return errs.Invalid("bubble points must be >= 0")
	case r.MaxMisses <= 0:
		return errs.Invalid("bubble max misses must be > 0")
	case r.Lifetime <= 0 || r.FrameInterval <= 0:
		return errs.Invalid("bubble lifetime and frame interval must be > 0")
	case r.FieldHeight <= 0 || r.SpeedJitter < 0:
		return errs.Invalid("bubble field height must be > 0 and jitter >= 0")
	}
	return nil
}

func (r MemoryRules) Validate() error {
	if r.Points < 0 || r.MaxMismatches < 0 {
		return errs.Invalid("memory points and max mismatches must be >= 0")
	}
	return nil
}

func (r ReactionRules) Validate() error {
	switch {
	case r.Points < 0:
		return errs.Invalid("reaction points must be >= 0")
	case r.MaxErrors <= 0:
		return errs.Invalid("reaction max errors must be > 0")
	case len(r.Words) == 0:
		return errs.Invalid("reaction word list is empty")
	}
	for i, w := range r.Words {
		if w.Key == "" {
			return errs.Invalid("reaction word %d (%s) has no key", i, w.Text)
		}
	}
	return nil
}

// New builds the game for kind. nil src => crypto source.
func New(kind difficulty.Kind, diff difficulty.Config, rules Rules, src RandomSource) (Game, error) {
	var (
		g   Game
		err error
	)
	switch kind {
	case difficulty.KindBubble:
		g, err = NewBubble(diff, rules.Bubble, src)
	case difficulty.KindMemory:
		g, err = NewMemory(diff, rules.Memory, src)
	case difficulty.KindReaction:
		g, err = NewReaction(diff, rules.Reaction, src)
	default:
		return nil, errs.Invalid("unknown game kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
