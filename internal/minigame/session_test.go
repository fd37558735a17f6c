package minigame

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/rng"
)

var t0 = time.Date(2025, 12, 25, 20, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func newGame(t *testing.T, kind difficulty.Kind) Game {
	t.Helper()
	g, err := New(kind, difficulty.DefaultConfig(), DefaultRules(), rng.NewFixed(0))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestLifecycleErrors(t *testing.T) {
	for _, kind := range difficulty.Kinds() {
		g := newGame(t, kind)
		if _, err := g.Tick(t0); !errors.Is(err, ErrNotRunning) {
			t.Fatalf("%s: tick before start: %v", kind, err)
		}
		if err := g.Stop(t0); !errors.Is(err, ErrNotRunning) {
			t.Fatalf("%s: stop before start: %v", kind, err)
		}
		if err := g.Start(t0); err != nil {
			t.Fatal(err)
		}
		if err := g.Start(t0); !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("%s: second start: %v", kind, err)
		}
		if err := g.Resume(t0); !errors.Is(err, ErrNotPaused) {
			t.Fatalf("%s: resume while running: %v", kind, err)
		}
		if err := g.Pause(at(time.Second)); err != nil {
			t.Fatal(err)
		}
		if err := g.Pause(at(time.Second)); !errors.Is(err, ErrNotRunning) {
			t.Fatalf("%s: pause while paused: %v", kind, err)
		}
		if _, err := g.Tick(at(2 * time.Second)); !errors.Is(err, ErrNotRunning) {
			t.Fatalf("%s: tick while paused: %v", kind, err)
		}
		if err := g.Stop(at(3 * time.Second)); err != nil {
			t.Fatal(err)
		}
		if err := g.Stop(at(4 * time.Second)); err != nil {
			t.Fatalf("%s: second stop should be a no-op: %v", kind, err)
		}
		if s := g.Snapshot(at(time.Hour)); s.State != StateEnded || s.Elapsed != time.Second {
			t.Fatalf("%s: snapshot after stop: %+v", kind, s)
		}
	}
}

func TestPauseDoesNotAdvanceDifficulty(t *testing.T) {
	straight := newGame(t, difficulty.KindMemory)
	paused := newGame(t, difficulty.KindMemory)
	if err := straight.Start(t0); err != nil {
		t.Fatal(err)
	}
	if err := paused.Start(t0); err != nil {
		t.Fatal(err)
	}

	if err := paused.Pause(at(10 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := paused.Resume(at(70 * time.Second)); err != nil {
		t.Fatal(err)
	}

	a, err := straight.Tick(at(40 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	b, err := paused.Tick(at(100 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Params, b.Params) {
		t.Fatalf("params differ after pause: %+v vs %+v", a.Params, b.Params)
	}
	if a.Params.Elapsed != 40*time.Second || a.Multiplier <= 1 {
		t.Fatalf("unexpected params %+v", a.Params)
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := New("pinball", difficulty.DefaultConfig(), DefaultRules(), nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestRulesValidate(t *testing.T) {
	r := DefaultRules()
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	r.Reaction.Words = nil
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for empty word list")
	}
	r = DefaultRules()
	r.Bubble.MaxMisses = 0
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for zero miss cap")
	}
}

// The outcome of pausing or stopping must not depend on whether the host
// ticked beforehand.
func TestPauseAndStopIgnoreTickCadence(t *testing.T) {
	for _, kind := range []difficulty.Kind{difficulty.KindBubble, difficulty.KindReaction} {
		for _, until := range []time.Duration{6 * time.Second, 20 * time.Second, 90 * time.Second} {
			for _, pause := range []bool{true, false} {
				ticked := newGame(t, kind)
				quiet := newGame(t, kind)
				for _, g := range []Game{ticked, quiet} {
					if err := g.Start(t0); err != nil {
						t.Fatal(err)
					}
				}
				for d := 250 * time.Millisecond; d < until; d += 250 * time.Millisecond {
					if _, err := ticked.Tick(at(d)); errors.Is(err, ErrNotRunning) {
						break
					} else if err != nil {
						t.Fatal(err)
					}
				}
				for _, g := range []Game{ticked, quiet} {
					stopAt := until
					if pause {
						if err := g.Pause(at(until)); err != nil && !errors.Is(err, ErrNotRunning) {
							t.Fatal(err)
						}
						stopAt += 5 * time.Second
					}
					if err := g.Stop(at(stopAt)); err != nil {
						t.Fatal(err)
					}
				}

				a, b := ticked.Snapshot(at(time.Hour)), quiet.Snapshot(at(time.Hour))
				if a.Failures != b.Failures || a.Score != b.Score || a.State != b.State || a.Elapsed != b.Elapsed {
					t.Fatalf("%s until %s (pause %v): ticked %+v, quiet %+v", kind, until, pause, a, b)
				}
				if a.Elapsed > until {
					t.Fatalf("%s: elapsed %s past %s", kind, a.Elapsed, until)
				}
				if until == 90*time.Second && a.Failures != 10 {
					t.Fatalf("%s: want the failure cap reached by %s, got %d", kind, until, a.Failures)
				}
			}
		}
	}
}

func TestPausedBubbleStopKeepsMisses(t *testing.T) {
	b := newBubble(t)
	if err := b.Pause(at(20 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if s := b.Snapshot(at(20 * time.Second)); s.State != StateEnded || s.Failures != 10 || s.Elapsed >= 20*time.Second {
		t.Fatalf("pause should have played out the misses: %+v", s)
	}
	if err := b.Stop(at(25 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if s := b.Snapshot(at(time.Hour)); s.Failures != 10 {
		t.Fatalf("stop lost misses: %+v", s)
	}
}
