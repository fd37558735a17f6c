package wallet

import (
	"errors"
	"sync"
	"testing"
)

func TestForSpins(t *testing.T) {
	c := DefaultCost()
	if got := c.ForSpins(1); got != 500 {
		t.Fatalf("one spin = %d", got)
	}
	if got := c.ForSpins(0); got != 0 {
		t.Fatalf("zero spins = %d", got)
	}
	if got := c.ForSpins(12); got != 12*500 {
		t.Fatalf("twelve spins = %d", got)
	}
	if err := (Cost{PerSpin: -1}).Validate(); err == nil {
		t.Fatal("negative cost should be rejected")
	}
}

func TestSpendInsufficient(t *testing.T) {
	w := New(400)
	if _, err := w.Spend(500); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if w.Balance() != 400 {
		t.Fatalf("failed spend changed balance to %d", w.Balance())
	}
	w.Earn(100)
	left, err := w.Spend(500)
	if err != nil || left != 0 {
		t.Fatalf("spend = %d, %v", left, err)
	}
}

func TestConcurrentEarnSpend(t *testing.T) {
	w := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Earn(10)
		}()
	}
	wg.Wait()
	if w.Balance() != 1000 {
		t.Fatalf("balance = %d", w.Balance())
	}
}
