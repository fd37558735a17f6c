package config

import (
	"time"

	"github.com/xtding233/arcade-backend/internal/difficulty"
	"github.com/xtding233/arcade-backend/internal/minigame"
	"github.com/xtding233/arcade-backend/internal/wallet"
	"github.com/xtding233/arcade-backend/internal/wheel"
)

// Settings is the normalized configuration the server runs with.
type Settings struct {
	Version         string // effective config version for tracing
	Difficulty      difficulty.Config
	Rules           minigame.Rules
	Wheel           wheel.Config
	Cost            wallet.Cost
	StartingBalance int
}

// Defaults is what an empty config directory resolves to.
func Defaults() Settings {
	return Settings{
		Version:    "default",
		Difficulty: difficulty.DefaultConfig(),
		Rules:      minigame.DefaultRules(),
		Wheel:      wheel.DefaultConfig(),
		Cost:       wallet.DefaultCost(),
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setMS(dst *time.Duration, v *int64) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}

// Resolve lays raw over Defaults and validates the result as a whole.
func Resolve(raw RawConfig) (Settings, error) {
	s := Defaults()
	if raw.Version != "" {
		s.Version = raw.Version
	}

	if d := raw.Difficulty; d != nil {
		c := &s.Difficulty.Curve
		setMS(&c.StartDelay, d.StartDelayMS)
		setMS(&c.Interval, d.IntervalMS)
		setFloat(&c.IncrementPerInterval, d.Increment)
		setFloat(&c.MaxMultiplier, d.MaxMultiplier)
	}

	if b := raw.Bubble; b != nil {
		c, r := &s.Difficulty.Bubble, &s.Rules.Bubble
		setInt(&c.InitialCount, b.InitialCount)
		setInt(&c.MaxCount, b.MaxCount)
		setFloat(&c.InitialSpeed, b.InitialSpeed)
		setFloat(&c.MaxSpeed, b.MaxSpeed)
		setMS(&c.InitialSpawnInterval, b.InitialSpawnIntervalMS)
		setMS(&c.SpawnIntervalDecrement, b.SpawnIntervalDecrementMS)
		setMS(&c.MinSpawnInterval, b.MinSpawnIntervalMS)
		setInt(&r.Points, b.Points)
		setInt(&r.MaxMisses, b.MaxMisses)
		setMS(&r.Lifetime, b.LifetimeMS)
		setFloat(&r.FieldHeight, b.FieldHeight)
		setFloat(&r.SpeedJitter, b.SpeedJitter)
	}

	if m := raw.Memory; m != nil {
		c, r := &s.Difficulty.Memory, &s.Rules.Memory
		setFloat(&c.Damping, m.Damping)
		setInt(&c.InitialGridSide, m.InitialGridSide)
		setInt(&c.MaxGridSide, m.MaxGridSide)
		setMS(&c.GridGrowthInterval, m.GridGrowthIntervalMS)
		setMS(&c.InitialShowTime, m.InitialShowTimeMS)
		setMS(&c.ShowTimeDecrement, m.ShowTimeDecrementMS)
		setMS(&c.MinShowTime, m.MinShowTimeMS)
		setInt(&c.InitialPairs, m.InitialPairs)
		setInt(&c.MaxPairs, m.MaxPairs)
		setInt(&r.Points, m.Points)
		setInt(&r.MaxMismatches, m.MaxMismatches)
	}

	if x := raw.Reaction; x != nil {
		c, r := &s.Difficulty.Reaction, &s.Rules.Reaction
		setFloat(&c.Damping, x.Damping)
		setMS(&c.InitialShowTime, x.InitialShowTimeMS)
		setMS(&c.ShowTimeDecrement, x.ShowTimeDecrementMS)
		setMS(&c.MinShowTime, x.MinShowTimeMS)
		setMS(&c.InitialNextDelay, x.InitialNextDelayMS)
		setMS(&c.NextDelayDecrement, x.NextDelayDecrementMS)
		setMS(&c.MinNextDelay, x.MinNextDelayMS)
		setInt(&c.InitialWords, x.InitialWords)
		setInt(&c.MaxWords, x.MaxWords)
		setMS(&c.WordGrowthInterval, x.WordGrowthIntervalMS)
		setInt(&r.Points, x.Points)
		setInt(&r.MaxErrors, x.MaxErrors)
		if len(x.Words) > 0 {
			r.Words = make([]minigame.Word, len(x.Words))
			for i, w := range x.Words {
				r.Words[i] = minigame.Word{Text: w.Text, Key: w.Key}
			}
		}
	}

	if w := raw.Wheel; w != nil {
		c := &s.Wheel
		if len(w.Prizes) > 0 {
			c.Prizes = make([]wheel.Prize, len(w.Prizes))
			for i, p := range w.Prizes {
				c.Prizes[i] = wheel.Prize{Name: p.Name, Weight: p.Weight, Color: p.Color, Description: p.Description}
			}
		}
		if w.Easing != "" {
			c.Easing = wheel.Easing(w.Easing)
		}
		setMS(&c.Duration, w.DurationMS)
		setInt(&c.MinFullSpins, w.MinFullSpins)
		setMS(&c.Cooldown, w.CooldownMS)
		setInt(&c.DailyLimit, w.DailyLimit)
		setInt(&c.HistorySize, w.HistorySize)
	}

	if w := raw.Wallet; w != nil {
		setInt(&s.Cost.PerSpin, w.PerSpin)
		setInt(&s.StartingBalance, w.StartingBalance)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if err := s.Difficulty.Validate(); err != nil {
		return err
	}
	if err := s.Rules.Validate(); err != nil {
		return err
	}
	if err := s.Wheel.Validate(); err != nil {
		return err
	}
	return s.Cost.Validate()
}
