package minigame

import (
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/rng"
)

// Empty marks a grid cell that holds no card this round.
const Empty = -1

// Card is one cell of the memory board. Symbol is hidden (-1 in Board)
// unless the card is face up.
type Card struct {
	Index   int  `json:"index"`
	Symbol  int  `json:"symbol"`
	Matched bool `json:"matched"`
	FaceUp  bool `json:"face_up"`
}

// BoardView is the memory board at a point in time.
type BoardView struct {
	Round     int           `json:"round"`
	Side      int           `json:"side"`
	Showing   bool          `json:"showing"`
	ShowUntil time.Duration `json:"show_until"`
	Cards     []Card        `json:"cards"`
}

// Memory is the pair-matching game. Each round deals a side x side grid,
// shows it for ShowTime, then hides it. Flipping two equal symbols scores;
// clearing the board deals the next, harder round.
type Memory struct {
	sess  *Session
	diff  difficulty.Config
	rules MemoryRules
	src   RandomSource

	round     int
	side      int
	symbols   []int
	matched   []bool
	left      int
	showUntil time.Duration
	first     int // index of the face-up unmatched card, or -1
}

func NewMemory(diff difficulty.Config, rules MemoryRules, src RandomSource) (*Memory, error) {
	if err := diff.Validate(); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rng.Default()
	}
	return &Memory{sess: newSession(difficulty.KindMemory), diff: diff, rules: rules, src: src, first: -1}, nil
}

func (m *Memory) Kind() difficulty.Kind { return difficulty.KindMemory }

func (m *Memory) Session() *Session { return m.sess }

func (m *Memory) Start(now time.Time) error {
	if err := m.sess.start(now); err != nil {
		return err
	}
	m.round = 0
	return m.deal(0)
}

func (m *Memory) Pause(now time.Time) error  { return m.sess.pause(now) }
func (m *Memory) Resume(now time.Time) error { return m.sess.resume(now) }
func (m *Memory) Stop(now time.Time) error   { return m.sess.end(now) }

// Tick only refreshes the multiplier; nothing in this game expires.
func (m *Memory) Tick(now time.Time) (Result, error) {
	var res Result
	if m.sess.state != StateRunning {
		res.Ended = m.sess.state == StateEnded
		return res, ErrNotRunning
	}
	return m.finish(m.sess.Elapsed(now), &res)
}

// Flip turns card index face up. The second flip of a pair resolves it.
func (m *Memory) Flip(now time.Time, index int) (Result, error) {
	var res Result
	if m.sess.state != StateRunning {
		res.Ended = m.sess.state == StateEnded
		return res, ErrNotRunning
	}
	at := m.sess.Elapsed(now)
	if at < m.showUntil {
		out, _ := m.finish(at, &res)
		return out, ErrCardsShowing
	}
	if index < 0 || index >= len(m.symbols) || m.symbols[index] == Empty || m.matched[index] || index == m.first {
		out, _ := m.finish(at, &res)
		return out, ErrUnknownEntity
	}

	if m.first < 0 {
		m.first = index
		return m.finish(at, &res)
	}

	a := m.first
	m.first = -1
	if m.symbols[a] != m.symbols[index] {
		m.sess.addFailure(at, m.rules.MaxMismatches, &res)
		return m.finish(at, &res)
	}
	m.matched[a], m.matched[index] = true, true
	m.left--
	m.sess.addScore(m.rules.Points, &res)
	if m.left == 0 {
		if err := m.deal(at); err != nil {
			return res, err
		}
	}
	return m.finish(at, &res)
}

// Board returns the grid with unrevealed symbols hidden.
func (m *Memory) Board(now time.Time) BoardView {
	at := m.sess.Elapsed(now)
	showing := m.sess.state != StateIdle && at < m.showUntil
	v := BoardView{Round: m.round, Side: m.side, Showing: showing, ShowUntil: m.showUntil}
	v.Cards = make([]Card, len(m.symbols))
	for i, s := range m.symbols {
		c := Card{Index: i, Symbol: Empty, Matched: m.matched[i]}
		if s != Empty && (showing || c.Matched || i == m.first) {
			c.Symbol, c.FaceUp = s, true
		}
		v.Cards[i] = c
	}
	return v
}

func (m *Memory) Snapshot(now time.Time) Snapshot { return m.sess.snapshot(now) }

func (m *Memory) deal(at time.Duration) error {
	p, err := m.diff.Derive(difficulty.KindMemory, at)
	if err != nil {
		return err
	}
	mp := *p.Memory
	cells := mp.GridSide * mp.GridSide
	pairs := min(mp.Pairs, cells/2)

	m.side = mp.GridSide
	m.symbols = make([]int, cells)
	m.matched = make([]bool, cells)
	for i := range m.symbols {
		m.symbols[i] = Empty
	}
	for i := 0; i < pairs; i++ {
		m.symbols[2*i], m.symbols[2*i+1] = i, i
	}
	rng.Shuffle(m.src, cells, func(i, j int) {
		m.symbols[i], m.symbols[j] = m.symbols[j], m.symbols[i]
	})
	m.left = pairs
	m.first = -1
	m.showUntil = at + mp.ShowTime
	m.round++
	return nil
}

func (m *Memory) finish(at time.Duration, res *Result) (Result, error) {
	p, err := m.diff.Derive(difficulty.KindMemory, at)
	if err != nil {
		return *res, err
	}
	m.sess.Multiplier = p.Multiplier
	res.Multiplier = p.Multiplier
	res.Params = p
	res.Ended = res.Ended || m.sess.state == StateEnded
	return *res, nil
}
