package server

import (
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/minigame"
	"github.com/xtding233/arcade-backend/internal/wheel"
)

// The map forms below feed both encoding/json and structpb, so values stay
// within the types structpb.NewValue accepts.

func ms(d time.Duration) int64 { return d.Milliseconds() }

func paramsMap(p difficulty.Params) map[string]any {
	out := map[string]any{
		"game":       string(p.Kind),
		"elapsed_ms": ms(p.Elapsed),
		"multiplier": p.Multiplier,
		"effective":  p.Effective,
	}
	switch {
	case p.Bubble != nil:
		out["bubble"] = map[string]any{
			"count":             p.Bubble.Count,
			"speed":             p.Bubble.Speed,
			"spawn_interval_ms": ms(p.Bubble.SpawnInterval),
		}
	case p.Memory != nil:
		out["memory"] = map[string]any{
			"grid_side":    p.Memory.GridSide,
			"pairs":        p.Memory.Pairs,
			"show_time_ms": ms(p.Memory.ShowTime),
		}
	case p.Reaction != nil:
		out["reaction"] = map[string]any{
			"show_time_ms":  ms(p.Reaction.ShowTime),
			"next_delay_ms": ms(p.Reaction.NextDelay),
			"word_count":    p.Reaction.WordCount,
		}
	}
	return out
}

func prizeMap(p wheel.Prize) map[string]any {
	return map[string]any{
		"name":        p.Name,
		"weight":      p.Weight,
		"color":       p.Color,
		"description": p.Description,
	}
}

func spinMap(r SpinResult) map[string]any {
	return map[string]any{
		"id":                  r.ID,
		"player":              r.Player,
		"prize":               prizeMap(r.Prize),
		"prize_index":         r.Index,
		"target_rotation_deg": r.TargetRotation,
		"duration_ms":         ms(r.Duration),
		"balance":             r.Balance,
		"remaining_today":     r.RemainingToday,
	}
}

func wheelMap(cfg wheel.Config, spinCost int) map[string]any {
	slice, _ := wheel.SliceAngle(len(cfg.Prizes))
	prizes := make([]any, len(cfg.Prizes))
	for i, p := range cfg.Prizes {
		m := prizeMap(p)
		m["index"] = i
		m["start_deg"] = float64(i) * slice
		prizes[i] = m
	}
	return map[string]any{
		"prizes":         prizes,
		"slice_deg":      slice,
		"duration_ms":    ms(cfg.Duration),
		"min_full_spins": cfg.MinFullSpins,
		"easing":         string(cfg.Easing),
		"cooldown_ms":    ms(cfg.Cooldown),
		"daily_limit":    cfg.DailyLimit,
		"spin_cost":      spinCost,
	}
}

type resultJSON struct {
	ScoreDelta   int     `json:"score_delta"`
	FailureDelta int     `json:"failure_delta"`
	Multiplier   float64 `json:"multiplier"`
	Ended        bool    `json:"ended"`
}

type sessionJSON struct {
	ID         string                `json:"id"`
	Game       string                `json:"game"`
	Player     string                `json:"player"`
	State      minigame.State        `json:"state"`
	Score      int                   `json:"score"`
	Failures   int                   `json:"failures"`
	Multiplier float64               `json:"multiplier"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
	StartedAt  time.Time             `json:"started_at"`
	Params     map[string]any        `json:"params"`
	Result     *resultJSON           `json:"result,omitempty"`
	Bubbles    []minigame.BubbleView `json:"bubbles,omitempty"`
	Board      *minigame.BoardView   `json:"board,omitempty"`
	Words      []minigame.Prompt     `json:"words,omitempty"`
}

func sessionBody(v SessionView) sessionJSON {
	out := sessionJSON{
		ID:         v.Snapshot.ID,
		Game:       string(v.Snapshot.Kind),
		Player:     v.Player,
		State:      v.Snapshot.State,
		Score:      v.Snapshot.Score,
		Failures:   v.Snapshot.Failures,
		Multiplier: v.Snapshot.Multiplier,
		ElapsedMS:  ms(v.Snapshot.Elapsed),
		StartedAt:  v.Snapshot.StartedAt,
		Params:     paramsMap(v.Params),
		Bubbles:    v.Bubbles,
		Board:      v.Board,
		Words:      v.Words,
	}
	if r := v.Result; r != nil {
		out.Result = &resultJSON{ScoreDelta: r.ScoreDelta, FailureDelta: r.FailureDelta, Multiplier: r.Multiplier, Ended: r.Ended}
	}
	return out
}
