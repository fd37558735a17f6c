package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/minigame"
	"github.com/xtding233/arcade-backend/internal/store"
	"github.com/xtding233/arcade-backend/internal/wallet"
	"github.com/xtding233/arcade-backend/internal/wheel"
)

// NewRouter wires the HTTP API onto a.
func NewRouter(a *Arcade) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": a.Settings().Version})
	})

	h := &handlers{a: a}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/difficulty/{game}", h.difficulty)

		r.Get("/wheel", h.wheelInfo)
		r.Post("/wheel/spin", h.spin)
		r.Get("/wheel/history", h.history)
		r.Get("/wheel/simulate", h.simulate)

		r.Post("/games/{game}/sessions", h.startSession)
		r.Get("/sessions/{id}", h.session)
		r.Post("/sessions/{id}/actions", h.act)
		r.Post("/sessions/{id}/{op}", h.control)

		r.Get("/scores/{game}", h.scores)
		r.Get("/players/{player}", h.player)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no route for " + r.URL.Path, Type: "not_found"})
	})
	return r
}

// requestLogger logs one line per request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// httpStatus maps domain errors onto status codes and envelope types.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, errs.ErrInvalidConfiguration):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, wallet.ErrInsufficientPoints):
		return http.StatusPaymentRequired, "insufficient_points"
	case errors.Is(err, wheel.ErrDailyLimit):
		return http.StatusConflict, "daily_limit"
	case errors.Is(err, wheel.ErrSpinning), errors.Is(err, wheel.ErrCooldown),
		errors.Is(err, minigame.ErrNotRunning), errors.Is(err, minigame.ErrNotPaused),
		errors.Is(err, minigame.ErrAlreadyStarted), errors.Is(err, minigame.ErrCardsShowing),
		errors.Is(err, minigame.ErrUnknownEntity):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, typ := httpStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Type: typ})
}

type handlers struct {
	a *Arcade
}

type playerReq struct {
	Player string `json:"player"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func (h *handlers) difficulty(w http.ResponseWriter, r *http.Request) {
	var elapsed time.Duration
	if s := r.URL.Query().Get("elapsed_ms"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid elapsed_ms", ErrInvalidArgument))
			return
		}
		elapsed = time.Duration(n) * time.Millisecond
	}
	p, err := h.a.Derive(chi.URLParam(r, "game"), elapsed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paramsMap(p))
}

func (h *handlers) wheelInfo(w http.ResponseWriter, r *http.Request) {
	s := h.a.Settings()
	writeJSON(w, http.StatusOK, wheelMap(s.Wheel, s.Cost.ForSpins(1)))
}

func (h *handlers) spin(w http.ResponseWriter, r *http.Request) {
	var req playerReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.a.Spin(r.Context(), req.Player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spinMap(res))
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	spins, err := h.a.History(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": player, "spins": spins})
}

func (h *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	trials, until := 10_000, -1
	q := r.URL.Query()
	if s := q.Get("trials"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid trials", ErrInvalidArgument))
			return
		}
		trials = n
	}
	if s := q.Get("until"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: invalid until", ErrInvalidArgument))
			return
		}
		until = n
	}
	freq, stats, err := h.a.Simulate(trials, until)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frequencies": freq, "spins_until": stats})
}

func (h *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	var req playerReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.a.StartSession(r.Context(), chi.URLParam(r, "game"), req.Player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionBody(v))
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	v, err := h.a.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionBody(v))
}

func (h *handlers) control(w http.ResponseWriter, r *http.Request) {
	v, err := h.a.Control(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "op"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionBody(v))
}

// actionReq.Target is a bubble id or card index (number) or a key (string).
type actionReq struct {
	Type   string          `json:"type"`
	Target json.RawMessage `json:"target,omitempty"`
}

func (h *handlers) act(w http.ResponseWriter, r *http.Request) {
	var req actionReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	act := Action{Type: req.Type}
	switch req.Type {
	case "pop", "flip":
		if err := json.Unmarshal(req.Target, &act.ID); err != nil {
			writeError(w, r, fmt.Errorf("%w: target must be an integer", ErrInvalidArgument))
			return
		}
	case "press":
		if err := json.Unmarshal(req.Target, &act.Key); err != nil || act.Key == "" {
			writeError(w, r, fmt.Errorf("%w: target must be a key", ErrInvalidArgument))
			return
		}
	}
	v, err := h.a.Act(r.Context(), chi.URLParam(r, "id"), act)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionBody(v))
}

func (h *handlers) scores(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := h.a.TopScores(r.Context(), chi.URLParam(r, "game"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if top == nil {
		top = []store.ScoreRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": chi.URLParam(r, "game"), "scores": top})
}

func (h *handlers) player(w http.ResponseWriter, r *http.Request) {
	v, err := h.a.Player(r.Context(), chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
