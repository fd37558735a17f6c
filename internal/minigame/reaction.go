package minigame

import (
	"strings"
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/rng"
)

// Prompt is a word on screen waiting for its key.
type Prompt struct {
	ID        int           `json:"id"`
	Text      string        `json:"text"`
	Key       string        `json:"key"`
	ShownAt   time.Duration `json:"shown_at"`
	ExpiresAt time.Duration `json:"expires_at"`
}

// Reaction is the reaction-typing game. Waves of WordCount words appear
// every NextDelay; each must be answered with its key within ShowTime or
// it counts as an error, as does a key that matches nothing on screen.
type Reaction struct {
	sess  *Session
	diff  difficulty.Config
	rules ReactionRules
	src   RandomSource

	pool     []Word
	active   []Prompt
	nextID   int
	nextWave time.Duration
	clock    time.Duration
}

func NewReaction(diff difficulty.Config, rules ReactionRules, src RandomSource) (*Reaction, error) {
	if err := diff.Validate(); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rng.Default()
	}
	return &Reaction{sess: newSession(difficulty.KindReaction), diff: diff, rules: rules, src: src}, nil
}

func (r *Reaction) Kind() difficulty.Kind { return difficulty.KindReaction }

func (r *Reaction) Session() *Session { return r.sess }

func (r *Reaction) Start(now time.Time) error {
	if err := r.sess.start(now); err != nil {
		return err
	}
	r.pool, r.active, r.nextID, r.nextWave, r.clock = nil, nil, 0, 0, 0
	var res Result
	return r.advance(0, &res)
}

func (r *Reaction) Pause(now time.Time) error {
	if r.sess.state != StateRunning {
		return ErrNotRunning
	}
	if err := r.catchUp(now); err != nil {
		return err
	}
	if r.sess.state == StateEnded {
		return nil
	}
	return r.sess.pause(now)
}

func (r *Reaction) Resume(now time.Time) error { return r.sess.resume(now) }

func (r *Reaction) Stop(now time.Time) error {
	if err := r.catchUp(now); err != nil {
		return err
	}
	return r.sess.end(now)
}

func (r *Reaction) catchUp(now time.Time) error {
	if st := r.sess.state; st != StateRunning && st != StatePaused {
		return nil
	}
	var res Result
	if err := r.advance(r.sess.Elapsed(now), &res); err != nil {
		return err
	}
	_, err := r.finish(&res)
	return err
}

// Tick plays out waves and expiries up to now in time order.
func (r *Reaction) Tick(now time.Time) (Result, error) {
	var res Result
	if r.sess.state != StateRunning {
		res.Ended = r.sess.state == StateEnded
		return res, ErrNotRunning
	}
	if err := r.advance(r.sess.Elapsed(now), &res); err != nil {
		return res, err
	}
	return r.finish(&res)
}

// Press answers the oldest on-screen word bound to key (case-insensitive).
// A key nothing is waiting for counts as an error.
func (r *Reaction) Press(now time.Time, key string) (Result, error) {
	var res Result
	if r.sess.state != StateRunning {
		res.Ended = r.sess.state == StateEnded
		return res, ErrNotRunning
	}
	at := r.sess.Elapsed(now)
	if err := r.advance(at, &res); err != nil {
		return res, err
	}
	if res.Ended {
		return r.finish(&res)
	}
	for i, p := range r.active {
		if strings.EqualFold(p.Key, key) {
			r.active = append(r.active[:i], r.active[i+1:]...)
			r.sess.addScore(r.rules.Points, &res)
			return r.finish(&res)
		}
	}
	if r.sess.addFailure(at, r.rules.MaxErrors, &res) {
		r.active = nil
	}
	return r.finish(&res)
}

// Skip clears the words on screen without penalty.
func (r *Reaction) Skip(now time.Time) (Result, error) {
	var res Result
	if r.sess.state != StateRunning {
		res.Ended = r.sess.state == StateEnded
		return res, ErrNotRunning
	}
	if err := r.advance(r.sess.Elapsed(now), &res); err != nil {
		return res, err
	}
	r.active = nil
	return r.finish(&res)
}

// Active returns the words currently on screen, oldest first.
func (r *Reaction) Active() []Prompt {
	return append([]Prompt(nil), r.active...)
}

func (r *Reaction) Snapshot(now time.Time) Snapshot { return r.sess.snapshot(now) }

func (r *Reaction) advance(to time.Duration, res *Result) error {
	for {
		ei, eAt := r.nextExpiry()
		switch {
		case ei >= 0 && eAt <= to && eAt <= r.nextWave:
			r.clock = eAt
			r.active = append(r.active[:ei], r.active[ei+1:]...)
			if r.sess.addFailure(eAt, r.rules.MaxErrors, res) {
				r.active = nil
				return nil
			}
		case r.nextWave <= to:
			r.clock = r.nextWave
			p, err := r.diff.Derive(difficulty.KindReaction, r.clock)
			if err != nil {
				return err
			}
			r.wave(r.clock, *p.Reaction)
			r.nextWave = r.clock + p.Reaction.NextDelay
		default:
			r.clock = to
			return nil
		}
	}
}

func (r *Reaction) nextExpiry() (int, time.Duration) {
	idx, at := -1, never
	for i, p := range r.active {
		if p.ExpiresAt < at {
			idx, at = i, p.ExpiresAt
		}
	}
	return idx, at
}

func (r *Reaction) wave(at time.Duration, p difficulty.ReactionParams) {
	for i := 0; i < p.WordCount; i++ {
		w := r.draw()
		r.nextID++
		r.active = append(r.active, Prompt{
			ID:        r.nextID,
			Text:      w.Text,
			Key:       w.Key,
			ShownAt:   at,
			ExpiresAt: at + p.ShowTime,
		})
	}
}

// draw deals words from a shuffled pool, reshuffling when it runs dry.
func (r *Reaction) draw() Word {
	if len(r.pool) == 0 {
		r.pool = append(r.pool, r.rules.Words...)
		rng.Shuffle(r.src, len(r.pool), func(i, j int) {
			r.pool[i], r.pool[j] = r.pool[j], r.pool[i]
		})
	}
	w := r.pool[0]
	r.pool = r.pool[1:]
	return w
}

func (r *Reaction) finish(res *Result) (Result, error) {
	p, err := r.diff.Derive(difficulty.KindReaction, r.clock)
	if err != nil {
		return *res, err
	}
	r.sess.Multiplier = p.Multiplier
	res.Multiplier = p.Multiplier
	res.Params = p
	res.Ended = res.Ended || r.sess.state == StateEnded
	return *res, nil
}
