package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xtding233/arcade-backend/internal/config"
	"github.com/xtding233/arcade-backend/internal/rng"
	"github.com/xtding233/arcade-backend/internal/store"
)

func TestIdleSessionsAreStoppedAndScored(t *testing.T) {
	a, clk := newTestArcade(t, 0)
	ctx := context.Background()

	abandoned, err := a.StartSession(ctx, "memory", "ann")
	if err != nil {
		t.Fatal(err)
	}
	active, err := a.StartSession(ctx, "memory", "bob")
	if err != nil {
		t.Fatal(err)
	}

	clk.advance(20 * time.Minute)
	if _, err := a.Control(ctx, active.Snapshot.ID, "tick"); err != nil {
		t.Fatal(err)
	}
	clk.advance(20 * time.Minute)
	if _, err := a.StartSession(ctx, "reaction", "cat"); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Session(abandoned.Snapshot.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session should be reaped, got %v", err)
	}
	if v, err := a.Session(active.Snapshot.ID); err != nil || v.Snapshot.State != "running" {
		t.Fatalf("recently touched session was reaped: %+v %v", v.Snapshot, err)
	}
	top, err := a.TopScores(ctx, "memory", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Player != "ann" || top[0].ID != abandoned.Snapshot.ID {
		t.Fatalf("reaped session was not recorded: %+v", top)
	}
}

func TestFinishedSessionsExpire(t *testing.T) {
	a, clk := newTestArcade(t, 0)
	ctx := context.Background()

	v, err := a.StartSession(ctx, "memory", "ann")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Control(ctx, v.Snapshot.ID, "stop"); err != nil {
		t.Fatal(err)
	}
	clk.advance(30 * time.Minute)
	a.reap(ctx, clk.now())
	if _, err := a.Session(v.Snapshot.ID); err != nil {
		t.Fatalf("finished session gone too early: %v", err)
	}
	clk.advance(31 * time.Minute)
	a.reap(ctx, clk.now())
	if _, err := a.Session(v.Snapshot.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("finished session kept past its TTL: %v", err)
	}
}

var errDiskFull = errors.New("disk full")

type unsavableSpins struct{ store.Store }

func (unsavableSpins) SaveSpin(context.Context, store.SpinRecord) error { return errDiskFull }

func TestSpinRefundedWhenNotRecorded(t *testing.T) {
	s := config.Defaults()
	s.StartingBalance = 1000
	clk := &fakeClock{t: time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)}
	st := store.NewMemory()
	a := NewArcade(s, unsavableSpins{st}, WithClock(clk.now), WithRandom(rng.NewFixed(0)))
	ctx := context.Background()

	if _, err := a.Spin(ctx, "ann"); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected the store error, got %v", err)
	}
	if bal, err := st.Balance(ctx, "ann"); err != nil || bal != 1000 {
		t.Fatalf("balance = %d, %v; want the charge refunded", bal, err)
	}
	// the wheel must not be left spinning or cooling down
	if _, err := a.Spin(ctx, "ann"); !errors.Is(err, errDiskFull) {
		t.Fatalf("retry should reach the store again, got %v", err)
	}
}
