// Package config loads the arcade tunables from YAML: a base file merged
// with an optional profile, validated, then resolved onto the defaults.
package config

// RawConfig is the YAML schema. Every tunable is optional; unset fields keep
// the built-in default. Durations are integer milliseconds.
type RawConfig struct {
	Version    string         `yaml:"version"`
	Difficulty *DifficultyCfg `yaml:"difficulty,omitempty"`
	Bubble     *BubbleCfg     `yaml:"bubble,omitempty"`
	Memory     *MemoryCfg     `yaml:"memory,omitempty"`
	Reaction   *ReactionCfg   `yaml:"reaction,omitempty"`
	Wheel      *WheelCfg      `yaml:"wheel,omitempty"`
	Wallet     *WalletCfg     `yaml:"wallet,omitempty"`
	Notes      string         `yaml:"notes,omitempty"`
}

type DifficultyCfg struct {
	StartDelayMS  *int64   `yaml:"start_delay_ms"`
	IntervalMS    *int64   `yaml:"interval_ms"`
	Increment     *float64 `yaml:"increment"`
	MaxMultiplier *float64 `yaml:"max_multiplier"`
}

type BubbleCfg struct {
	InitialCount             *int     `yaml:"initial_count"`
	MaxCount                 *int     `yaml:"max_count"`
	InitialSpeed             *float64 `yaml:"initial_speed"`
	MaxSpeed                 *float64 `yaml:"max_speed"`
	InitialSpawnIntervalMS   *int64   `yaml:"initial_spawn_interval_ms"`
	SpawnIntervalDecrementMS *int64   `yaml:"spawn_interval_decrement_ms"`
	MinSpawnIntervalMS       *int64   `yaml:"min_spawn_interval_ms"`
	Points                   *int     `yaml:"points"`
	MaxMisses                *int     `yaml:"max_misses"`
	LifetimeMS               *int64   `yaml:"lifetime_ms"`
	FieldHeight              *float64 `yaml:"field_height"`
	SpeedJitter              *float64 `yaml:"speed_jitter"`
}

type MemoryCfg struct {
	Damping              *float64 `yaml:"damping"`
	InitialGridSide      *int     `yaml:"initial_grid_side"`
	MaxGridSide          *int     `yaml:"max_grid_side"`
	GridGrowthIntervalMS *int64   `yaml:"grid_growth_interval_ms"`
	InitialShowTimeMS    *int64   `yaml:"initial_show_time_ms"`
	ShowTimeDecrementMS  *int64   `yaml:"show_time_decrement_ms"`
	MinShowTimeMS        *int64   `yaml:"min_show_time_ms"`
	InitialPairs         *int     `yaml:"initial_pairs"`
	MaxPairs             *int     `yaml:"max_pairs"`
	Points               *int     `yaml:"points"`
	MaxMismatches        *int     `yaml:"max_mismatches"` // 0 = unlimited
}

type ReactionCfg struct {
	Damping              *float64  `yaml:"damping"`
	InitialShowTimeMS    *int64    `yaml:"initial_show_time_ms"`
	ShowTimeDecrementMS  *int64    `yaml:"show_time_decrement_ms"`
	MinShowTimeMS        *int64    `yaml:"min_show_time_ms"`
	InitialNextDelayMS   *int64    `yaml:"initial_next_delay_ms"`
	NextDelayDecrementMS *int64    `yaml:"next_delay_decrement_ms"`
	MinNextDelayMS       *int64    `yaml:"min_next_delay_ms"`
	InitialWords         *int      `yaml:"initial_words"`
	MaxWords             *int      `yaml:"max_words"`
	WordGrowthIntervalMS *int64    `yaml:"word_growth_interval_ms"`
	Points               *int      `yaml:"points"`
	MaxErrors            *int      `yaml:"max_errors"`
	Words                []WordCfg `yaml:"words,omitempty"` // replaces the default list when set
}

type WordCfg struct {
	Text string `yaml:"text"`
	Key  string `yaml:"key"`
}

type WheelCfg struct {
	Prizes       []PrizeCfg `yaml:"prizes,omitempty"` // replaces the default table when set
	DurationMS   *int64     `yaml:"duration_ms"`
	MinFullSpins *int       `yaml:"min_full_spins"`
	Easing       string     `yaml:"easing,omitempty"`
	CooldownMS   *int64     `yaml:"cooldown_ms"`
	DailyLimit   *int       `yaml:"daily_limit"`
	HistorySize  *int       `yaml:"history_size"`
}

type PrizeCfg struct {
	Name        string `yaml:"name"`
	Weight      int    `yaml:"weight"`
	Color       string `yaml:"color,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type WalletCfg struct {
	PerSpin         *int `yaml:"per_spin"`
	StartingBalance *int `yaml:"starting_balance"`
}
