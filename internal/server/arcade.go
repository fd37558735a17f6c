// Package server hosts the arcade: minigame sessions, the prize wheel and
// the points wallet behind one service, exposed over HTTP (chi) and gRPC.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xtding233/arcade-backend/internal/config"
	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/minigame"
	"github.com/xtding233/arcade-backend/internal/rng"
	"github.com/xtding233/arcade-backend/internal/store"
	"github.com/xtding233/arcade-backend/internal/wheel"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionNotFound = errors.New("session not found")
)

const (
	// endedTTL is how long a finished session stays readable.
	endedTTL = time.Hour
	// idleTTL is how long an unfinished session may go untouched before it
	// is stopped and scored.
	idleTTL = 30 * time.Minute
)

// Arcade is the transport-independent service. Safe for concurrent use.
type Arcade struct {
	store store.Store
	now   func() time.Time
	src   rng.RandomSource

	mu       sync.RWMutex
	settings config.Settings
	sessions map[string]*sessionEntry
	wheels   map[string]*wheelEntry
}

type sessionEntry struct {
	mu       sync.Mutex
	game     minigame.Game
	diff     difficulty.Config // what the game was built with
	player   string
	recorded bool
	endedAt  time.Time
	lastSeen time.Time
}

type wheelEntry struct {
	mu sync.Mutex
	w  *wheel.Wheel
}

type Option func(*Arcade)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(a *Arcade) { a.now = now } }

// WithRandom replaces the crypto source used by wheels and games.
func WithRandom(src rng.RandomSource) Option { return func(a *Arcade) { a.src = src } }

func NewArcade(settings config.Settings, st store.Store, opts ...Option) *Arcade {
	a := &Arcade{
		store:    st,
		now:      time.Now,
		src:      rng.Default(),
		settings: settings,
		sessions: make(map[string]*sessionEntry),
		wheels:   make(map[string]*wheelEntry),
	}
	for _, o := range opts {
		o(a)
	}
	a.src = &lockedSource{src: a.src}
	return a
}

// lockedSource serialises draws so one seeded source can serve every player.
type lockedSource struct {
	mu  sync.Mutex
	src rng.RandomSource
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (a *Arcade) Settings() config.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Reload swaps in new settings. Running sessions keep the settings they
// started with; wheels are rebuilt on the next spin.
func (a *Arcade) Reload(s config.Settings) {
	a.mu.Lock()
	a.settings = s
	a.wheels = make(map[string]*wheelEntry)
	a.mu.Unlock()
	log.Info().Str("version", s.Version).Msg("settings reloaded")
}

func checkPlayer(player string) error {
	if player == "" || len(player) > 64 {
		return fmt.Errorf("%w: player must be 1-64 characters", ErrInvalidArgument)
	}
	return nil
}

func parseGame(game string) (difficulty.Kind, error) {
	kind, err := difficulty.ParseKind(game)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return kind, nil
}

// ensurePlayer gives a first-time player the starting balance.
func (a *Arcade) ensurePlayer(ctx context.Context, player string) error {
	_, err := a.store.Balance(ctx, player)
	if errors.Is(err, store.ErrNotFound) {
		_, err = a.store.AddPoints(ctx, player, a.Settings().StartingBalance)
	}
	return err
}

// ---- difficulty ----

// Derive computes one game's parameters at elapsed play time.
func (a *Arcade) Derive(game string, elapsed time.Duration) (difficulty.Params, error) {
	kind, err := parseGame(game)
	if err != nil {
		return difficulty.Params{}, err
	}
	if elapsed < 0 {
		return difficulty.Params{}, fmt.Errorf("%w: elapsed must be >= 0", ErrInvalidArgument)
	}
	return a.Settings().Difficulty.Derive(kind, elapsed)
}

// ---- wheel ----

// SpinResult is a started, paid-for spin.
type SpinResult struct {
	ID             string
	Player         string
	Prize          wheel.Prize
	Index          int
	TargetRotation float64
	Duration       time.Duration
	Balance        int
	RemainingToday int // -1 when unlimited
}

func (a *Arcade) wheelFor(player string) (*wheelEntry, error) {
	a.mu.RLock()
	we, ok := a.wheels[player]
	cfg := a.settings.Wheel
	a.mu.RUnlock()
	if ok {
		return we, nil
	}
	w, err := wheel.New(cfg, a.src)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if we, ok := a.wheels[player]; ok {
		return we, nil
	}
	we = &wheelEntry{w: w}
	a.wheels[player] = we
	return we, nil
}

// Spin charges the spin cost and starts the player's wheel. Gates are
// checked before charging: animation in progress, cooldown, daily limit.
func (a *Arcade) Spin(ctx context.Context, player string) (SpinResult, error) {
	if err := checkPlayer(player); err != nil {
		return SpinResult{}, err
	}
	if err := a.ensurePlayer(ctx, player); err != nil {
		return SpinResult{}, err
	}
	we, err := a.wheelFor(player)
	if err != nil {
		return SpinResult{}, err
	}
	we.mu.Lock()
	defer we.mu.Unlock()

	now := a.now()
	if err := we.w.Ready(now); err != nil {
		return SpinResult{}, err
	}
	cfg := we.w.Config()
	recent, err := a.store.RecentSpins(ctx, player, max(cfg.DailyLimit, cfg.HistorySize))
	if err != nil {
		return SpinResult{}, err
	}
	times := make([]time.Time, len(recent))
	for i, r := range recent {
		times[i] = r.At
	}
	if err := wheel.CheckDailyLimit(times, now, cfg.DailyLimit); err != nil {
		return SpinResult{}, err
	}

	cost := a.Settings().Cost.ForSpins(1)
	balance, err := a.store.SpendPoints(ctx, player, cost)
	if err != nil {
		return SpinResult{}, err
	}
	refund := func() {
		if _, rerr := a.store.AddPoints(ctx, player, cost); rerr != nil {
			log.Error().Err(rerr).Str("player", player).Int("points", cost).Msg("refund failed")
		}
	}
	out, err := we.w.Spin(now)
	if err != nil {
		refund()
		return SpinResult{}, err
	}

	rec := store.SpinRecord{ID: uuid.NewString(), Player: player, Prize: out.Prize.Name, Index: out.Index, At: now.UTC()}
	if err := a.store.SaveSpin(ctx, rec); err != nil {
		// an unrecorded spin would escape the daily limit
		we.w.Abort()
		refund()
		return SpinResult{}, err
	}
	log.Info().Str("player", player).Str("prize", out.Prize.Name).Int("balance", balance).Msg("wheel spin")

	return SpinResult{
		ID:             rec.ID,
		Player:         player,
		Prize:          out.Prize,
		Index:          out.Index,
		TargetRotation: out.TargetRotation,
		Duration:       out.Duration,
		Balance:        balance,
		RemainingToday: wheel.RemainingToday(append(times, now), now, cfg.DailyLimit),
	}, nil
}

// History returns the player's latest spins, newest first.
func (a *Arcade) History(ctx context.Context, player string) ([]store.SpinRecord, error) {
	if err := checkPlayer(player); err != nil {
		return nil, err
	}
	n := a.Settings().Wheel.HistorySize
	if n == 0 {
		return []store.SpinRecord{}, nil
	}
	return a.store.RecentSpins(ctx, player, n)
}

// maxTrials bounds a single odds simulation request.
const maxTrials = 1_000_000

// Simulate spins the current prize table trials times without charging
// anyone. until >= 0 also measures spins needed to land that prize.
func (a *Arcade) Simulate(trials, until int) (wheel.Frequencies, *wheel.Stats, error) {
	if trials <= 0 || trials > maxTrials {
		return wheel.Frequencies{}, nil, fmt.Errorf("%w: trials must be in [1, %d]", ErrInvalidArgument, maxTrials)
	}
	prizes := a.Settings().Wheel.Prizes
	freq, err := wheel.RunFrequencies(prizes, trials, nil)
	if err != nil {
		return wheel.Frequencies{}, nil, err
	}
	if until < 0 {
		return freq, nil, nil
	}
	if until >= len(prizes) {
		return wheel.Frequencies{}, nil, fmt.Errorf("%w: prize index %d out of range", ErrInvalidArgument, until)
	}
	st, err := wheel.RunDrawsUntil(prizes, until, min(trials, 10_000), nil)
	if err != nil {
		return wheel.Frequencies{}, nil, err
	}
	return freq, &st, nil
}

// PlayerView is a player's wallet and today's spin allowance.
type PlayerView struct {
	Player         string `json:"player"`
	Balance        int    `json:"balance"`
	RemainingToday int    `json:"remaining_today"`
	SpinCost       int    `json:"spin_cost"`
}

func (a *Arcade) Player(ctx context.Context, player string) (PlayerView, error) {
	if err := checkPlayer(player); err != nil {
		return PlayerView{}, err
	}
	bal, err := a.store.Balance(ctx, player)
	if err != nil {
		return PlayerView{}, err
	}
	s := a.Settings()
	recent, err := a.store.RecentSpins(ctx, player, max(s.Wheel.DailyLimit, 1))
	if err != nil {
		return PlayerView{}, err
	}
	times := make([]time.Time, len(recent))
	for i, r := range recent {
		times[i] = r.At
	}
	return PlayerView{
		Player:         player,
		Balance:        bal,
		RemainingToday: wheel.RemainingToday(times, a.now(), s.Wheel.DailyLimit),
		SpinCost:       s.Cost.ForSpins(1),
	}, nil
}

// ---- sessions ----

// Action is a player input to a running session.
//   - pop:   ID is the bubble id
//   - flip:  ID is the card index
//   - press: Key is the key pressed
//   - skip:  clears reaction words
type Action struct {
	Type string
	ID   int
	Key  string
}

// SessionView is a session as the transports return it.
type SessionView struct {
	Player   string
	Snapshot minigame.Snapshot
	Result   *minigame.Result
	Params   difficulty.Params
	Bubbles  []minigame.BubbleView
	Board    *minigame.BoardView
	Words    []minigame.Prompt
}

// StartSession creates and starts a game for player.
func (a *Arcade) StartSession(ctx context.Context, game, player string) (SessionView, error) {
	kind, err := parseGame(game)
	if err != nil {
		return SessionView{}, err
	}
	if err := checkPlayer(player); err != nil {
		return SessionView{}, err
	}
	if err := a.ensurePlayer(ctx, player); err != nil {
		return SessionView{}, err
	}
	s := a.Settings()
	g, err := minigame.New(kind, s.Difficulty, s.Rules, a.src)
	if err != nil {
		return SessionView{}, err
	}
	now := a.now()
	if err := g.Start(now); err != nil {
		return SessionView{}, err
	}
	e := &sessionEntry{game: g, diff: s.Difficulty, player: player, lastSeen: now}
	id := g.Snapshot(now).ID

	a.reap(ctx, now)
	a.mu.Lock()
	a.sessions[id] = e
	a.mu.Unlock()

	log.Info().Str("session", id).Str("game", string(kind)).Str("player", player).Msg("session started")
	return a.view(e, now, nil)
}

// reap drops finished sessions after endedTTL and stops sessions nobody has
// touched for idleTTL, recording their score like any other ending.
func (a *Arcade) reap(ctx context.Context, now time.Time) {
	var idle []*sessionEntry
	a.mu.Lock()
	for id, e := range a.sessions {
		if !e.mu.TryLock() {
			continue // in use, so not stale
		}
		switch {
		case e.recorded:
			if now.Sub(e.endedAt) > endedTTL {
				delete(a.sessions, id)
			}
		case now.Sub(e.lastSeen) > idleTTL:
			delete(a.sessions, id)
			idle = append(idle, e)
		}
		e.mu.Unlock()
	}
	a.mu.Unlock()

	for _, e := range idle {
		e.mu.Lock()
		err := e.game.Stop(now)
		if err == nil {
			err = a.finishIfEnded(ctx, e, now)
		}
		e.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("player", e.player).Msg("reaping idle session")
		}
	}
}

func (a *Arcade) entry(id string) (*sessionEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Session returns the current view of session id.
func (a *Arcade) Session(id string) (SessionView, error) {
	e, err := a.entry(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return a.view(e, a.now(), nil)
}

// Control applies pause, resume, stop or tick to session id.
func (a *Arcade) Control(ctx context.Context, id, op string) (SessionView, error) {
	e, err := a.entry(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := a.now()
	e.lastSeen = now
	var res *minigame.Result
	switch op {
	case "pause":
		err = e.game.Pause(now)
	case "resume":
		err = e.game.Resume(now)
	case "stop":
		err = e.game.Stop(now)
	case "tick":
		var r minigame.Result
		r, err = e.game.Tick(now)
		res = &r
	default:
		return SessionView{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, op)
	}
	if err != nil {
		return SessionView{}, err
	}
	if err := a.finishIfEnded(ctx, e, now); err != nil {
		return SessionView{}, err
	}
	return a.view(e, now, res)
}

// Act applies a player input to session id.
func (a *Arcade) Act(ctx context.Context, id string, act Action) (SessionView, error) {
	e, err := a.entry(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := a.now()
	e.lastSeen = now
	var res minigame.Result
	switch g := e.game.(type) {
	case *minigame.Bubble:
		if act.Type != "pop" {
			return SessionView{}, fmt.Errorf("%w: bubble accepts pop, got %q", ErrInvalidArgument, act.Type)
		}
		res, err = g.Pop(now, act.ID)
	case *minigame.Memory:
		if act.Type != "flip" {
			return SessionView{}, fmt.Errorf("%w: memory accepts flip, got %q", ErrInvalidArgument, act.Type)
		}
		res, err = g.Flip(now, act.ID)
	case *minigame.Reaction:
		switch act.Type {
		case "press":
			res, err = g.Press(now, act.Key)
		case "skip":
			res, err = g.Skip(now)
		default:
			return SessionView{}, fmt.Errorf("%w: reaction accepts press or skip, got %q", ErrInvalidArgument, act.Type)
		}
	default:
		return SessionView{}, fmt.Errorf("%w: session takes no actions", ErrInvalidArgument)
	}
	if ferr := a.finishIfEnded(ctx, e, now); ferr != nil {
		return SessionView{}, ferr
	}
	if err != nil {
		return SessionView{}, err
	}
	return a.view(e, now, &res)
}

// finishIfEnded records an ended session once: score row plus points.
func (a *Arcade) finishIfEnded(ctx context.Context, e *sessionEntry, now time.Time) error {
	snap := e.game.Snapshot(now)
	if snap.State != minigame.StateEnded || e.recorded {
		return nil
	}
	rec := store.ScoreRecord{
		ID:       snap.ID,
		Player:   e.player,
		Game:     string(snap.Kind),
		Score:    snap.Score,
		Failures: snap.Failures,
		Elapsed:  snap.Elapsed,
		At:       now.UTC(),
	}
	if err := a.store.RecordScore(ctx, rec); err != nil {
		return err
	}
	if _, err := a.store.AddPoints(ctx, e.player, snap.Score); err != nil {
		return err
	}
	e.recorded = true
	e.endedAt = now
	log.Info().Str("session", snap.ID).Str("game", string(snap.Kind)).Str("player", e.player).
		Int("score", snap.Score).Int("failures", snap.Failures).Dur("elapsed", snap.Elapsed).Msg("session ended")
	return nil
}

func (a *Arcade) view(e *sessionEntry, now time.Time, res *minigame.Result) (SessionView, error) {
	snap := e.game.Snapshot(now)
	p, err := e.diff.Derive(snap.Kind, snap.Elapsed)
	if err != nil {
		return SessionView{}, err
	}
	v := SessionView{Player: e.player, Snapshot: snap, Result: res, Params: p}
	switch g := e.game.(type) {
	case *minigame.Bubble:
		v.Bubbles = g.Live()
	case *minigame.Memory:
		b := g.Board(now)
		v.Board = &b
	case *minigame.Reaction:
		v.Words = g.Active()
	}
	return v, nil
}

// TopScores returns the leaderboard for game.
func (a *Arcade) TopScores(ctx context.Context, game string, limit int) ([]store.ScoreRecord, error) {
	kind, err := parseGame(game)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return a.store.TopScores(ctx, string(kind), limit)
}
