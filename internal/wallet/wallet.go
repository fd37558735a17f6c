package wallet

import (
	"errors"
	"sync"

	"github.com/xtding233/arcade-backend/internal/errs"
)

var ErrInsufficientPoints = errors.New("insufficient points")

// Cost defines how many points the wheel charges per spin.
type Cost struct {
	Name    string // e.g. "points"
	PerSpin int    // points per single spin, e.g. 500
}

// DefaultCost is 500 points a spin.
func DefaultCost() Cost { return Cost{Name: "points", PerSpin: 500} }

func (c Cost) Validate() error {
	if c.PerSpin < 0 {
		return errs.Invalid("spin cost must be >= 0")
	}
	return nil
}

// ForSpins returns how many points n spins cost. There is no bulk discount.
func (c Cost) ForSpins(n int) int {
	if n <= 0 {
		return 0
	}
	return n * c.PerSpin
}

// Wallet is an in-process point balance. Spend never leaves it negative.
type Wallet struct {
	mu      sync.Mutex
	balance int
}

func New(balance int) *Wallet {
	if balance < 0 {
		balance = 0
	}
	return &Wallet{balance: balance}
}

func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Earn credits points; non-positive amounts are ignored.
func (w *Wallet) Earn(points int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if points > 0 {
		w.balance += points
	}
	return w.balance
}

// Spend debits points or fails with ErrInsufficientPoints, leaving the
// balance untouched.
func (w *Wallet) Spend(points int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if points < 0 {
		return w.balance, errs.Invalid("cannot spend %d points", points)
	}
	if points > w.balance {
		return w.balance, ErrInsufficientPoints
	}
	w.balance -= points
	return w.balance, nil
}
