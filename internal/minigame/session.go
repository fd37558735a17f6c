package minigame

import (
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/rng"
)

// RandomSource is the injected randomness for entity placement and shuffles.
type RandomSource = rng.RandomSource

// Session tracks one play-through: score, failures and the unpaused clock.
// Paused time is accumulated and subtracted so resuming never jumps the
// difficulty forward.
type Session struct {
	ID         string
	Kind       difficulty.Kind
	StartedAt  time.Time
	Score      int
	Failures   int
	Multiplier float64

	state       State
	pausedAt    time.Time
	pausedTotal time.Duration
	endedAt     time.Time
}

// Snapshot is a read-only copy of a session for hosts and storage.
type Snapshot struct {
	ID         string          `json:"id"`
	Kind       difficulty.Kind `json:"kind"`
	State      State           `json:"state"`
	Score      int             `json:"score"`
	Failures   int             `json:"failures"`
	Multiplier float64         `json:"multiplier"`
	Elapsed    time.Duration   `json:"elapsed"`
	StartedAt  time.Time       `json:"started_at"`
}

func newSession(kind difficulty.Kind) *Session {
	return &Session{ID: uuid.NewString(), Kind: kind, Multiplier: 1, state: StateIdle}
}

func (s *Session) State() State { return s.state }

func (s *Session) start(now time.Time) error {
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	s.state = StateRunning
	s.StartedAt = now
	s.Score, s.Failures, s.Multiplier = 0, 0, 1
	s.pausedTotal = 0
	return nil
}

func (s *Session) pause(now time.Time) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	s.state = StatePaused
	s.pausedAt = now
	return nil
}

func (s *Session) resume(now time.Time) error {
	if s.state != StatePaused {
		return ErrNotPaused
	}
	if d := now.Sub(s.pausedAt); d > 0 {
		s.pausedTotal += d
	}
	s.state = StateRunning
	return nil
}

// end moves to StateEnded from running or paused. Ending twice is a no-op.
func (s *Session) end(now time.Time) error {
	switch s.state {
	case StateEnded:
		return nil
	case StateIdle:
		return ErrNotRunning
	case StatePaused:
		if err := s.resume(now); err != nil {
			return err
		}
	}
	s.state = StateEnded
	s.endedAt = now
	return nil
}

// Elapsed is unpaused play time at now; it freezes while paused or ended.
func (s *Session) Elapsed(now time.Time) time.Duration {
	var at time.Time
	switch s.state {
	case StateIdle:
		return 0
	case StatePaused:
		at = s.pausedAt
	case StateEnded:
		at = s.endedAt
	default:
		at = now
	}
	e := at.Sub(s.StartedAt) - s.pausedTotal
	if e < 0 {
		return 0
	}
	return e
}

// wallAt maps a play-time offset back onto the host's clock.
func (s *Session) wallAt(at time.Duration) time.Time {
	return s.StartedAt.Add(s.pausedTotal + at)
}

func (s *Session) addScore(points int, res *Result) {
	if points <= 0 {
		return
	}
	s.Score += points
	res.ScoreDelta += points
}

// addFailure counts one failure that happened at play time at and ends the
// session there once limit is reached. limit <= 0 never ends it.
func (s *Session) addFailure(at time.Duration, limit int, res *Result) bool {
	s.Failures++
	res.FailureDelta++
	if limit > 0 && s.Failures >= limit {
		_ = s.end(s.wallAt(at))
		res.Ended = true
		return true
	}
	return false
}

func (s *Session) snapshot(now time.Time) Snapshot {
	return Snapshot{
		ID:         s.ID,
		Kind:       s.Kind,
		State:      s.state,
		Score:      s.Score,
		Failures:   s.Failures,
		Multiplier: s.Multiplier,
		Elapsed:    s.Elapsed(now),
		StartedAt:  s.StartedAt,
	}
}
