package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths locates the base file and the profile overrides.
type Paths struct {
	BaseDir string // e.g. /etc/arcade
}

func (p Paths) BasePath() string {
	return filepath.Join(p.BaseDir, "arcade.yaml")
}

func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Watched lists the files whose change should trigger a reload.
func (p Paths) Watched(profile string) []string {
	if profile == "" {
		return []string{p.BasePath()}
	}
	return []string{p.BasePath(), p.ProfilePath(profile)}
}

// Loader reads YAML configs and merges base → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for the base alone
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges base → profile (profile optional). Both files
// may be missing, in which case every tunable keeps its default.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	base, err := readYAML(l.paths.BasePath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read base config: %w", err)
	}
	merged := base
	if profile != "" {
		over, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %q: %w", profile, err)
		}
		merged = mergeRaw(base, over)
	}

	l.mu.Lock()
	l.cache[""] = base
	l.cache[profile] = merged
	l.mu.Unlock()
	return merged, nil
}

// Load is LoadMerged followed by ValidateRaw and Resolve.
func (l *Loader) Load(profile string) (Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Settings{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Settings{}, err
	}
	return Resolve(raw)
}

// Invalidate clears the loader's cache. Call after the watcher sees a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// pick returns b when set, else a.
func pick[T any](a, b *T) *T {
	if b != nil {
		return b
	}
	return a
}

// mergeRaw performs a deep merge: b overrides a wherever b sets a field.
// Lists (prizes, words) are replaced wholesale, never concatenated.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	if b.Difficulty != nil {
		d := DifficultyCfg{}
		if a.Difficulty != nil {
			d = *a.Difficulty
		}
		d.StartDelayMS = pick(d.StartDelayMS, b.Difficulty.StartDelayMS)
		d.IntervalMS = pick(d.IntervalMS, b.Difficulty.IntervalMS)
		d.Increment = pick(d.Increment, b.Difficulty.Increment)
		d.MaxMultiplier = pick(d.MaxMultiplier, b.Difficulty.MaxMultiplier)
		out.Difficulty = &d
	}

	if b.Bubble != nil {
		c := BubbleCfg{}
		if a.Bubble != nil {
			c = *a.Bubble
		}
		o := b.Bubble
		c.InitialCount = pick(c.InitialCount, o.InitialCount)
		c.MaxCount = pick(c.MaxCount, o.MaxCount)
		c.InitialSpeed = pick(c.InitialSpeed, o.InitialSpeed)
		c.MaxSpeed = pick(c.MaxSpeed, o.MaxSpeed)
		c.InitialSpawnIntervalMS = pick(c.InitialSpawnIntervalMS, o.InitialSpawnIntervalMS)
		c.SpawnIntervalDecrementMS = pick(c.SpawnIntervalDecrementMS, o.SpawnIntervalDecrementMS)
		c.MinSpawnIntervalMS = pick(c.MinSpawnIntervalMS, o.MinSpawnIntervalMS)
		c.Points = pick(c.Points, o.Points)
		c.MaxMisses = pick(c.MaxMisses, o.MaxMisses)
		c.LifetimeMS = pick(c.LifetimeMS, o.LifetimeMS)
		c.FieldHeight = pick(c.FieldHeight, o.FieldHeight)
		c.SpeedJitter = pick(c.SpeedJitter, o.SpeedJitter)
		out.Bubble = &c
	}

	if b.Memory != nil {
		c := MemoryCfg{}
		if a.Memory != nil {
			c = *a.Memory
		}
		o := b.Memory
		c.Damping = pick(c.Damping, o.Damping)
		c.InitialGridSide = pick(c.InitialGridSide, o.InitialGridSide)
		c.MaxGridSide = pick(c.MaxGridSide, o.MaxGridSide)
		c.GridGrowthIntervalMS = pick(c.GridGrowthIntervalMS, o.GridGrowthIntervalMS)
		c.InitialShowTimeMS = pick(c.InitialShowTimeMS, o.InitialShowTimeMS)
		c.ShowTimeDecrementMS = pick(c.ShowTimeDecrementMS, o.ShowTimeDecrementMS)
		c.MinShowTimeMS = pick(c.MinShowTimeMS, o.MinShowTimeMS)
		c.InitialPairs = pick(c.InitialPairs, o.InitialPairs)
		c.MaxPairs = pick(c.MaxPairs, o.MaxPairs)
		c.Points = pick(c.Points, o.Points)
		c.MaxMismatches = pick(c.MaxMismatches, o.MaxMismatches)
		out.Memory = &c
	}

	if b.Reaction != nil {
		c := ReactionCfg{}
		if a.Reaction != nil {
			c = *a.Reaction
		}
		o := b.Reaction
		c.Damping = pick(c.Damping, o.Damping)
		c.InitialShowTimeMS = pick(c.InitialShowTimeMS, o.InitialShowTimeMS)
		c.ShowTimeDecrementMS = pick(c.ShowTimeDecrementMS, o.ShowTimeDecrementMS)
		c.MinShowTimeMS = pick(c.MinShowTimeMS, o.MinShowTimeMS)
		c.InitialNextDelayMS = pick(c.InitialNextDelayMS, o.InitialNextDelayMS)
		c.NextDelayDecrementMS = pick(c.NextDelayDecrementMS, o.NextDelayDecrementMS)
		c.MinNextDelayMS = pick(c.MinNextDelayMS, o.MinNextDelayMS)
		c.InitialWords = pick(c.InitialWords, o.InitialWords)
		c.MaxWords = pick(c.MaxWords, o.MaxWords)
		c.WordGrowthIntervalMS = pick(c.WordGrowthIntervalMS, o.WordGrowthIntervalMS)
		c.Points = pick(c.Points, o.Points)
		c.MaxErrors = pick(c.MaxErrors, o.MaxErrors)
		if len(o.Words) > 0 {
			c.Words = append([]WordCfg(nil), o.Words...)
		}
		out.Reaction = &c
	}

	if b.Wheel != nil {
		c := WheelCfg{}
		if a.Wheel != nil {
			c = *a.Wheel
		}
		o := b.Wheel
		if len(o.Prizes) > 0 {
			c.Prizes = append([]PrizeCfg(nil), o.Prizes...)
		}
		if o.Easing != "" {
			c.Easing = o.Easing
		}
		c.DurationMS = pick(c.DurationMS, o.DurationMS)
		c.MinFullSpins = pick(c.MinFullSpins, o.MinFullSpins)
		c.CooldownMS = pick(c.CooldownMS, o.CooldownMS)
		c.DailyLimit = pick(c.DailyLimit, o.DailyLimit)
		c.HistorySize = pick(c.HistorySize, o.HistorySize)
		out.Wheel = &c
	}

	if b.Wallet != nil {
		c := WalletCfg{}
		if a.Wallet != nil {
			c = *a.Wallet
		}
		c.PerSpin = pick(c.PerSpin, b.Wallet.PerSpin)
		c.StartingBalance = pick(c.StartingBalance, b.Wallet.StartingBalance)
		out.Wallet = &c
	}
	return out
}
