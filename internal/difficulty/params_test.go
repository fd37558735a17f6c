package difficulty

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xtding233/arcade-backend/internal/errs"
)

func approxD(a, b time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= time.Microsecond
}

func TestBubbleParams(t *testing.T) {
	cfg := DefaultConfig()

	p, err := cfg.Derive(KindBubble, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bubble == nil || p.Memory != nil || p.Reaction != nil {
		t.Fatalf("expected only bubble params, got %+v", p)
	}
	if p.Bubble.Count != 3 || p.Bubble.Speed != 2 || p.Bubble.SpawnInterval != 1450*time.Millisecond {
		t.Fatalf("unexpected start params %+v", *p.Bubble)
	}

	p, err = cfg.Derive(KindBubble, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bubble.Count != 30 || p.Bubble.Speed != 20 || !approxD(p.Bubble.SpawnInterval, time.Second) {
		t.Fatalf("unexpected capped params %+v", *p.Bubble)
	}
}

func TestBubbleSpawnIntervalFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bubble.SpawnIntervalDecrement = 200 * time.Millisecond
	p, err := cfg.Derive(KindBubble, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bubble.SpawnInterval != cfg.Bubble.MinSpawnInterval {
		t.Fatalf("spawn interval = %s, want floor %s", p.Bubble.SpawnInterval, cfg.Bubble.MinSpawnInterval)
	}
}

func TestMemoryParamsUseHalfDamping(t *testing.T) {
	cfg := DefaultConfig()

	p, err := cfg.Derive(KindMemory, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Effective != 1 || p.Memory.GridSide != 4 || p.Memory.Pairs != 8 || p.Memory.ShowTime != 2900*time.Millisecond {
		t.Fatalf("unexpected start params %+v %+v", p, *p.Memory)
	}

	// 30s delay + 2min: multiplier capped at 10, one grid growth step.
	p, err = cfg.Derive(KindMemory, 150*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Effective-5.5) > 1e-9 {
		t.Fatalf("damped multiplier = %v, want 5.5", p.Effective)
	}
	if p.Memory.GridSide != 5 || p.Memory.Pairs != 10 || !approxD(p.Memory.ShowTime, 2450*time.Millisecond) {
		t.Fatalf("unexpected params %+v", *p.Memory)
	}
}

func TestMemoryGrowthWaitsForStartDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.GridGrowthInterval = 10 * time.Second
	p, err := cfg.Derive(KindMemory, 25*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if p.Memory.GridSide != cfg.Memory.InitialGridSide {
		t.Fatalf("grid grew before start delay: %+v", *p.Memory)
	}
}

func TestReactionParamsUseSevenTenthsDamping(t *testing.T) {
	cfg := DefaultConfig()

	p, err := cfg.Derive(KindReaction, 0)
	if err != nil {
		t.Fatal(err)
	}
	r := p.Reaction
	if r.ShowTime != 1920*time.Millisecond || r.NextDelay != 1440*time.Millisecond || r.WordCount != 1 {
		t.Fatalf("unexpected start params %+v", *r)
	}

	p, err = cfg.Derive(KindReaction, 210*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	r = p.Reaction
	if math.Abs(p.Effective-7.3) > 1e-9 {
		t.Fatalf("damped multiplier = %v, want 7.3", p.Effective)
	}
	if !approxD(r.ShowTime, 1416*time.Millisecond) || !approxD(r.NextDelay, 1062*time.Millisecond) || r.WordCount != 2 {
		t.Fatalf("unexpected params %+v", *r)
	}
}

func TestDerivedFieldsStayInBounds(t *testing.T) {
	cfg := DefaultConfig()
	for _, kind := range Kinds() {
		for e := time.Duration(0); e <= 30*time.Minute; e += 1700 * time.Millisecond {
			p, err := cfg.Derive(kind, e)
			if err != nil {
				t.Fatal(err)
			}
			switch kind {
			case KindBubble:
				b, c := p.Bubble, cfg.Bubble
				if b.Count < c.InitialCount || b.Count > c.MaxCount ||
					b.Speed < c.InitialSpeed || b.Speed > c.MaxSpeed ||
					b.SpawnInterval < c.MinSpawnInterval || b.SpawnInterval > c.InitialSpawnInterval {
					t.Fatalf("bubble out of bounds at %s: %+v", e, *b)
				}
			case KindMemory:
				m, c := p.Memory, cfg.Memory
				if m.GridSide < c.InitialGridSide || m.GridSide > c.MaxGridSide ||
					m.Pairs < c.InitialPairs || m.Pairs > c.MaxPairs ||
					m.ShowTime < c.MinShowTime || m.ShowTime > c.InitialShowTime {
					t.Fatalf("memory out of bounds at %s: %+v", e, *m)
				}
			case KindReaction:
				r, c := p.Reaction, cfg.Reaction
				if r.WordCount < c.InitialWords || r.WordCount > c.MaxWords ||
					r.ShowTime < c.MinShowTime || r.ShowTime > c.InitialShowTime ||
					r.NextDelay < c.MinNextDelay || r.NextDelay > c.InitialNextDelay {
					t.Fatalf("reaction out of bounds at %s: %+v", e, *r)
				}
			}
		}
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a, _ := cfg.Derive(KindReaction, 95*time.Second)
	b, _ := cfg.Derive(KindReaction, 95*time.Second)
	if *a.Reaction != *b.Reaction || a.Multiplier != b.Multiplier {
		t.Fatalf("same input gave different output: %+v vs %+v", a, b)
	}
}

func TestDeriveRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.GridGrowthInterval = 0
	if _, err := cfg.Derive(KindMemory, time.Minute); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	// a zero wave delay would replay waves forever
	cfg = DefaultConfig()
	cfg.Reaction.InitialNextDelay = 0
	cfg.Reaction.MinNextDelay = 0
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("zero next delay should be rejected, got %v", err)
	}
	if _, err := DefaultConfig().Derive(Kind("snake"), 0); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for unknown kind, got %v", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"bubble":        KindBubble,
		"memory-game":   KindMemory,
		"REACTION_GAME": KindReaction,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("snake"); err == nil {
		t.Error("expected error for unknown game")
	}
}
