package wheel

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xtding233/arcade-backend/internal/rng"
)

var t0 = time.Date(2025, 12, 25, 19, 0, 0, 0, time.UTC)

func TestWheelSpinLifecycle(t *testing.T) {
	w, err := New(DefaultConfig(), rng.NewFixed(0))
	if err != nil {
		t.Fatal(err)
	}
	out, err := w.Spin(t0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Index != 0 || out.TargetRotation != expectedRotation(0, 7, 5) {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s := w.State(); !s.Spinning || s.Selected == nil || s.Selected.Name != out.Prize.Name {
		t.Fatalf("state after spin: %+v", s)
	}

	if _, err := w.Spin(t0.Add(time.Second)); !errors.Is(err, ErrSpinning) {
		t.Fatalf("expected ErrSpinning, got %v", err)
	}

	prev := -1.0
	for ms := 0; ms < 3000; ms += 16 {
		s, done := w.Advance(t0.Add(time.Duration(ms) * time.Millisecond))
		if done {
			t.Fatalf("finished early at %dms", ms)
		}
		if s.AngleRadians < prev {
			t.Fatalf("angle went backwards at %dms", ms)
		}
		prev = s.AngleRadians
	}
	s, done := w.Advance(t0.Add(3 * time.Second))
	if !done || s.Spinning {
		t.Fatalf("expected spin to finish, state=%+v", s)
	}
	if want := out.TargetRotation * math.Pi / 180; s.AngleRadians != want {
		t.Fatalf("final angle %v, want %v", s.AngleRadians, want)
	}

	if _, err := w.Spin(t0.Add(3 * time.Second)); err != nil {
		t.Fatalf("second spin after animation + cooldown: %v", err)
	}
}

func TestWheelCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 500 * time.Millisecond
	w, err := New(cfg, rng.NewFixed(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Spin(t0); err != nil {
		t.Fatal(err)
	}
	if err := w.Ready(t0.Add(100 * time.Millisecond)); !errors.Is(err, ErrSpinning) {
		t.Fatalf("expected ErrSpinning mid-animation, got %v", err)
	}
	if err := w.Ready(t0.Add(time.Second)); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown from Ready, got %v", err)
	}
	if _, err := w.Spin(t0.Add(time.Second)); !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected ErrCooldown, got %v", err)
	}
	if _, err := w.Spin(t0.Add(2 * time.Second)); err != nil {
		t.Fatalf("spin after cooldown: %v", err)
	}
}

func TestWheelAbort(t *testing.T) {
	w, err := New(DefaultConfig(), rng.NewFixed(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Spin(t0); err != nil {
		t.Fatal(err)
	}
	w.Abort()
	if w.State().Spinning {
		t.Fatal("aborted wheel still spinning")
	}
	if err := w.Ready(t0); err != nil {
		t.Fatalf("aborted spin left a gate behind: %v", err)
	}
	w.Abort() // no spin in flight
	if _, err := w.Spin(t0); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prizes = nil
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for empty prize table")
	}
	cfg = DefaultConfig()
	cfg.Easing = "bounce"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for unknown easing")
	}
}

func TestDailyLimit(t *testing.T) {
	var history []time.Time
	for i := 0; i < 9; i++ {
		history = append(history, t0.Add(-time.Duration(i)*time.Minute))
	}
	history = append(history, t0.Add(-24*time.Hour)) // yesterday
	if err := CheckDailyLimit(history, t0, 10); err != nil {
		t.Fatalf("9 spins today should pass: %v", err)
	}
	if left := RemainingToday(history, t0, 10); left != 1 {
		t.Fatalf("remaining = %d, want 1", left)
	}
	history = append(history, t0.Add(-time.Hour))
	if err := CheckDailyLimit(history, t0, 10); !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("expected ErrDailyLimit, got %v", err)
	}
	if left := RemainingToday(history, t0, 10); left != 0 {
		t.Fatalf("remaining = %d, want 0", left)
	}
	if err := CheckDailyLimit(history, t0, 0); err != nil {
		t.Fatalf("limit 0 disables: %v", err)
	}
}
