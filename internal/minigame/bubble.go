package minigame

import (
	"math"
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/rng"
)

// never is used as the escape time of a bubble that does not move.
const never = time.Duration(math.MaxInt64)

// BubbleView is a live bubble as the renderer sees it. Times are play time.
type BubbleView struct {
	ID        int           `json:"id"`
	Speed     float64       `json:"speed"`
	SpawnedAt time.Duration `json:"spawned_at"`
	EscapesAt time.Duration `json:"escapes_at"`
	ExpiresAt time.Duration `json:"expires_at"`
}

// Bubble is the spawn/collect game: bubbles rise through the field; popping
// one scores, letting one escape off the top is a miss.
type Bubble struct {
	sess  *Session
	diff  difficulty.Config
	rules BubbleRules
	src   RandomSource

	live      []BubbleView
	nextID    int
	clock     time.Duration // play time of the last spawn or removal
	now       time.Duration // play time processed so far
	lastSpawn time.Duration
}

func NewBubble(diff difficulty.Config, rules BubbleRules, src RandomSource) (*Bubble, error) {
	if err := diff.Validate(); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rng.Default()
	}
	return &Bubble{sess: newSession(difficulty.KindBubble), diff: diff, rules: rules, src: src}, nil
}

func (b *Bubble) Kind() difficulty.Kind { return difficulty.KindBubble }

func (b *Bubble) Session() *Session { return b.sess }

// Start opens the session and releases the opening wave of Count bubbles.
func (b *Bubble) Start(now time.Time) error {
	if err := b.sess.start(now); err != nil {
		return err
	}
	b.live, b.nextID, b.clock, b.now, b.lastSpawn = nil, 0, 0, 0, 0
	p, err := b.diff.Derive(difficulty.KindBubble, 0)
	if err != nil {
		return err
	}
	for i := 0; i < p.Bubble.Count; i++ {
		b.spawn(0, *p.Bubble)
	}
	return nil
}

// Pause plays out events up to now first; if they end the game it stays
// ended rather than paused.
func (b *Bubble) Pause(now time.Time) error {
	if b.sess.state != StateRunning {
		return ErrNotRunning
	}
	if err := b.catchUp(now); err != nil {
		return err
	}
	if b.sess.state == StateEnded {
		return nil
	}
	return b.sess.pause(now)
}

func (b *Bubble) Resume(now time.Time) error { return b.sess.resume(now) }

func (b *Bubble) Stop(now time.Time) error {
	if err := b.catchUp(now); err != nil {
		return err
	}
	return b.sess.end(now)
}

// catchUp replays events to the session's play time at now, which is frozen
// while paused.
func (b *Bubble) catchUp(now time.Time) error {
	if st := b.sess.state; st != StateRunning && st != StatePaused {
		return nil
	}
	var res Result
	if err := b.advance(b.sess.Elapsed(now), &res); err != nil {
		return err
	}
	_, err := b.finish(&res)
	return err
}

// Tick replays every spawn, escape and expiry up to now in time order, so
// the outcome does not depend on how often the host ticks.
func (b *Bubble) Tick(now time.Time) (Result, error) {
	var res Result
	if b.sess.state != StateRunning {
		res.Ended = b.sess.state == StateEnded
		return res, ErrNotRunning
	}
	if err := b.advance(b.sess.Elapsed(now), &res); err != nil {
		return res, err
	}
	return b.finish(&res)
}

// Pop bursts bubble id if it is still in the field.
func (b *Bubble) Pop(now time.Time, id int) (Result, error) {
	var res Result
	if b.sess.state != StateRunning {
		res.Ended = b.sess.state == StateEnded
		return res, ErrNotRunning
	}
	if err := b.advance(b.sess.Elapsed(now), &res); err != nil {
		return res, err
	}
	if res.Ended {
		return b.finish(&res)
	}
	for i, bv := range b.live {
		if bv.ID == id {
			b.live = append(b.live[:i], b.live[i+1:]...)
			b.sess.addScore(b.rules.Points, &res)
			return b.finish(&res)
		}
	}
	out, _ := b.finish(&res)
	return out, ErrUnknownEntity
}

// Live returns the bubbles currently in the field.
func (b *Bubble) Live() []BubbleView {
	return append([]BubbleView(nil), b.live...)
}

func (b *Bubble) Snapshot(now time.Time) Snapshot { return b.sess.snapshot(now) }

func (b *Bubble) finish(res *Result) (Result, error) {
	p, err := b.diff.Derive(difficulty.KindBubble, b.now)
	if err != nil {
		return *res, err
	}
	b.sess.Multiplier = p.Multiplier
	res.Multiplier = p.Multiplier
	res.Params = p
	res.Ended = res.Ended || b.sess.state == StateEnded
	return *res, nil
}

func (b *Bubble) advance(to time.Duration, res *Result) error {
	for {
		ri, rAt := b.nextRemoval()
		sAt, err := b.nextSpawn()
		if err != nil {
			return err
		}
		switch {
		case ri >= 0 && rAt <= to && rAt <= sAt:
			b.clock = rAt
			gone := b.live[ri]
			b.live = append(b.live[:ri], b.live[ri+1:]...)
			if gone.EscapesAt <= gone.ExpiresAt {
				if b.sess.addFailure(rAt, b.rules.MaxMisses, res) {
					b.live = nil
					b.now = rAt
					return nil
				}
			}
		case sAt <= to:
			b.clock = sAt
			p, err := b.diff.Derive(difficulty.KindBubble, sAt)
			if err != nil {
				return err
			}
			b.spawn(sAt, *p.Bubble)
		default:
			b.now = to
			return nil
		}
	}
}

// nextSpawn is the play time of the next spawn: one interval after the last
// spawn, no earlier than the last event, and only once the field has room
// under the count allowed at that moment.
func (b *Bubble) nextSpawn() (time.Duration, error) {
	p, err := b.diff.Derive(difficulty.KindBubble, b.lastSpawn)
	if err != nil {
		return 0, err
	}
	t := max(b.lastSpawn+p.Bubble.SpawnInterval, b.clock)
	for {
		p, err := b.diff.Derive(difficulty.KindBubble, t)
		if err != nil {
			return 0, err
		}
		if len(b.live) < p.Bubble.Count {
			return t, nil
		}
		next, ok := b.diff.Curve.NextStep(t)
		if !ok {
			return never, nil
		}
		t = next
	}
}

// nextRemoval finds the bubble that leaves the field first.
func (b *Bubble) nextRemoval() (int, time.Duration) {
	idx, at := -1, never
	for i, bv := range b.live {
		t := min(bv.EscapesAt, bv.ExpiresAt)
		if t < at {
			idx, at = i, t
		}
	}
	return idx, at
}

func (b *Bubble) spawn(at time.Duration, p difficulty.BubbleParams) {
	speed := p.Speed + b.src.Float64()*b.rules.SpeedJitter
	escapes := never
	if speed > 0 {
		frames := b.rules.FieldHeight / speed
		escapes = at + time.Duration(frames*float64(b.rules.FrameInterval))
	}
	b.nextID++
	b.live = append(b.live, BubbleView{
		ID:        b.nextID,
		Speed:     speed,
		SpawnedAt: at,
		EscapesAt: escapes,
		ExpiresAt: at + b.rules.Lifetime,
	})
	b.lastSpawn = at
}
