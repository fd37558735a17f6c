package config

import (
	"fmt"
	"strings"

	"github.com/xtding233/arcade-backend/internal/errs"
	"github.com/xtding233/arcade-backend/internal/wheel"
)

// ValidateRaw checks field-level constraints of a RawConfig and reports all
// of them at once. Cross-field bounds are checked after Resolve.
func ValidateRaw(cfg RawConfig) error {
	var errList []string
	add := func(format string, args ...any) {
		errList = append(errList, fmt.Sprintf(format, args...))
	}
	nonNegMS := func(name string, v *int64) {
		if v != nil && *v < 0 {
			add("%s must be >= 0", name)
		}
	}
	nonNeg := func(name string, v *int) {
		if v != nil && *v < 0 {
			add("%s must be >= 0", name)
		}
	}
	damping := func(name string, v *float64) {
		if v != nil && (*v < 0 || *v > 1) {
			add("%s must be in [0,1]", name)
		}
	}

	if d := cfg.Difficulty; d != nil {
		if d.IntervalMS != nil && *d.IntervalMS <= 0 {
			add("difficulty.interval_ms must be > 0")
		}
		nonNegMS("difficulty.start_delay_ms", d.StartDelayMS)
		if d.Increment != nil && *d.Increment < 0 {
			add("difficulty.increment must be >= 0")
		}
		if d.MaxMultiplier != nil && *d.MaxMultiplier < 1 {
			add("difficulty.max_multiplier must be >= 1")
		}
	}

	if b := cfg.Bubble; b != nil {
		nonNeg("bubble.initial_count", b.InitialCount)
		nonNeg("bubble.max_count", b.MaxCount)
		nonNeg("bubble.points", b.Points)
		nonNegMS("bubble.initial_spawn_interval_ms", b.InitialSpawnIntervalMS)
		nonNegMS("bubble.spawn_interval_decrement_ms", b.SpawnIntervalDecrementMS)
		if b.MinSpawnIntervalMS != nil && *b.MinSpawnIntervalMS <= 0 {
			add("bubble.min_spawn_interval_ms must be > 0")
		}
		if b.MaxMisses != nil && *b.MaxMisses <= 0 {
			add("bubble.max_misses must be > 0")
		}
		if b.LifetimeMS != nil && *b.LifetimeMS <= 0 {
			add("bubble.lifetime_ms must be > 0")
		}
		if b.FieldHeight != nil && *b.FieldHeight <= 0 {
			add("bubble.field_height must be > 0")
		}
	}

	if m := cfg.Memory; m != nil {
		damping("memory.damping", m.Damping)
		if m.InitialGridSide != nil && *m.InitialGridSide < 2 {
			add("memory.initial_grid_side must be >= 2")
		}
		if m.GridGrowthIntervalMS != nil && *m.GridGrowthIntervalMS <= 0 {
			add("memory.grid_growth_interval_ms must be > 0")
		}
		nonNegMS("memory.initial_show_time_ms", m.InitialShowTimeMS)
		nonNegMS("memory.show_time_decrement_ms", m.ShowTimeDecrementMS)
		nonNegMS("memory.min_show_time_ms", m.MinShowTimeMS)
		nonNeg("memory.points", m.Points)
		nonNeg("memory.max_mismatches", m.MaxMismatches)
	}

	if r := cfg.Reaction; r != nil {
		damping("reaction.damping", r.Damping)
		nonNegMS("reaction.initial_show_time_ms", r.InitialShowTimeMS)
		nonNegMS("reaction.show_time_decrement_ms", r.ShowTimeDecrementMS)
		nonNegMS("reaction.min_show_time_ms", r.MinShowTimeMS)
		nonNegMS("reaction.initial_next_delay_ms", r.InitialNextDelayMS)
		nonNegMS("reaction.next_delay_decrement_ms", r.NextDelayDecrementMS)
		if r.MinNextDelayMS != nil && *r.MinNextDelayMS <= 0 {
			add("reaction.min_next_delay_ms must be > 0")
		}
		if r.WordGrowthIntervalMS != nil && *r.WordGrowthIntervalMS <= 0 {
			add("reaction.word_growth_interval_ms must be > 0")
		}
		if r.InitialWords != nil && *r.InitialWords < 1 {
			add("reaction.initial_words must be >= 1")
		}
		nonNeg("reaction.points", r.Points)
		if r.MaxErrors != nil && *r.MaxErrors <= 0 {
			add("reaction.max_errors must be > 0")
		}
		for i, w := range r.Words {
			if w.Key == "" {
				add("reaction.words[%d].key is required", i)
			}
		}
	}

	if w := cfg.Wheel; w != nil {
		for i, p := range w.Prizes {
			if p.Name == "" {
				add("wheel.prizes[%d].name is required", i)
			}
			if p.Weight < 0 {
				add("wheel.prizes[%d].weight must be >= 0", i)
			}
		}
		if w.Easing != "" && !wheel.Easing(w.Easing).Valid() {
			add("wheel.easing must be one of: linear, easeOutQuad, easeOutCubic, easeInOutCubic")
		}
		if w.DurationMS != nil && *w.DurationMS <= 0 {
			add("wheel.duration_ms must be > 0")
		}
		nonNeg("wheel.min_full_spins", w.MinFullSpins)
		nonNegMS("wheel.cooldown_ms", w.CooldownMS)
		nonNeg("wheel.daily_limit", w.DailyLimit)
		nonNeg("wheel.history_size", w.HistorySize)
	}

	if w := cfg.Wallet; w != nil {
		nonNeg("wallet.per_spin", w.PerSpin)
		nonNeg("wallet.starting_balance", w.StartingBalance)
	}

	if len(errList) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalidConfiguration, strings.Join(errList, "; "))
	}
	return nil
}
