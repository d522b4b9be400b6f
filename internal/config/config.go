// Package config provides YAML-based game configuration loading and
// difficulty presets for the dodge game.
package config

// DodgeConfig contains all tunable parameters for a dodge session.
// It is loaded once at session start and treated as immutable afterwards,
// which keeps simulation runs reproducible under alternate tuning.
type DodgeConfig struct {
	Field      FieldConfig     `yaml:"field" json:"field"`
	Player     PlayerConfig    `yaml:"player" json:"player"`
	Meteors    MeteorConfig    `yaml:"meteors" json:"meteors"`
	Difficulty DDAConfig       `yaml:"difficulty" json:"difficulty"`
	FallSpeed  FallSpeedConfig `yaml:"fall_speed" json:"fall_speed"`
	Spawning   SpawnConfig     `yaml:"spawning" json:"spawning"`
	PowerUps   PowerUpConfig   `yaml:"power_ups" json:"power_ups"`
	Session    SessionConfig   `yaml:"session" json:"session"`
	Metrics    MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// FieldConfig defines the virtual playfield dimensions. The simulation runs
// in field units; the renderer projects them onto terminal cells.
type FieldConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// PlayerConfig defines the player rocket parameters.
type PlayerConfig struct {
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	Speed      int     `yaml:"speed" json:"speed"`             // Field units per tick
	AnimIdleMs float64 `yaml:"anim_idle_ms" json:"anim_idle_ms"`
	AnimMoveMs float64 `yaml:"anim_move_ms" json:"anim_move_ms"`
}

// MeteorConfig defines meteor parameters.
type MeteorConfig struct {
	Width        int     `yaml:"width" json:"width"`
	Height       int     `yaml:"height" json:"height"`
	BaseFallVel  float64 `yaml:"base_fall_vel" json:"base_fall_vel"`   // Field units per tick before scaling
	AnimMs       float64 `yaml:"anim_ms" json:"anim_ms"`               // Frame toggle cadence
	MaxTiltDeg   float64 `yaml:"max_tilt_deg" json:"max_tilt_deg"`     // Base tilt clamp
	TiltExtraDeg float64 `yaml:"tilt_extra_deg" json:"tilt_extra_deg"` // Added at max difficulty
	DriftMin     float64 `yaml:"drift_min" json:"drift_min"`           // Horizontal drift magnitude at min difficulty
	DriftMax     float64 `yaml:"drift_max" json:"drift_max"`           // Horizontal drift magnitude at max difficulty
	NearMissDist float64 `yaml:"near_miss_dist" json:"near_miss_dist"` // Horizontal distance for a near miss
}

// DDAConfig defines the dynamic difficulty adjustment rules.
type DDAConfig struct {
	Min           float64 `yaml:"min" json:"min"`
	Max           float64 `yaml:"max" json:"max"`
	Start         float64 `yaml:"start" json:"start"`
	UpPerSec      float64 `yaml:"up_per_sec" json:"up_per_sec"`
	UpMovingBonus float64 `yaml:"up_moving_bonus" json:"up_moving_bonus"`
	DropMult      float64 `yaml:"drop_mult" json:"drop_mult"` // Multiplicative drop on hit
	DropAbs       float64 `yaml:"drop_abs" json:"drop_abs"`   // Absolute drop on hit
	CooldownSec   float64 `yaml:"cooldown_sec" json:"cooldown_sec"`

	// Movement activity window: the player counts as "actively moving" when
	// total horizontal displacement over the trailing window exceeds the
	// threshold. Active movement earns the bonus ramp.
	MovementWindowSec float64 `yaml:"movement_window_sec" json:"movement_window_sec"`
	MovementThreshold float64 `yaml:"movement_threshold" json:"movement_threshold"`
}

// FallSpeedConfig defines the fall-speed scale penalty/recovery curve.
type FallSpeedConfig struct {
	Min            float64 `yaml:"min" json:"min"`
	HitFactor      float64 `yaml:"hit_factor" json:"hit_factor"`
	RecoveryPerSec float64 `yaml:"recovery_per_sec" json:"recovery_per_sec"`
}

// SpawnConfig defines meteor spawn cadence.
type SpawnConfig struct {
	IntervalSlowMs    float64 `yaml:"interval_slow_ms" json:"interval_slow_ms"` // Target at min difficulty
	IntervalFastMs    float64 `yaml:"interval_fast_ms" json:"interval_fast_ms"` // Target at max difficulty
	InitialIntervalMs float64 `yaml:"initial_interval_ms" json:"initial_interval_ms"`
	Smoothing         float64 `yaml:"smoothing" json:"smoothing"` // Blend toward target per tick

	PenaltyMaxMs       float64 `yaml:"penalty_max_ms" json:"penalty_max_ms"`
	PenaltyHitFrac     float64 `yaml:"penalty_hit_frac" json:"penalty_hit_frac"` // Fraction of max added per hit
	PenaltyDecayPerSec float64 `yaml:"penalty_decay_per_sec" json:"penalty_decay_per_sec"`

	// Wave sizes by difficulty tier.
	WaveTier1Below float64 `yaml:"wave_tier1_below" json:"wave_tier1_below"` // Difficulty below this spawns 2
	WaveTier2Below float64 `yaml:"wave_tier2_below" json:"wave_tier2_below"` // Below this spawns 3, else 4
}

// PowerUpConfig defines power-up spawn and effect parameters.
type PowerUpConfig struct {
	Radius           float64 `yaml:"radius" json:"radius"`
	FallVel          float64 `yaml:"fall_vel" json:"fall_vel"` // Field units per tick before scaling
	DriftMax         float64 `yaml:"drift_max" json:"drift_max"`
	SpawnMinMs       float64 `yaml:"spawn_min_ms" json:"spawn_min_ms"`
	SpawnMaxMs       float64 `yaml:"spawn_max_ms" json:"spawn_max_ms"`
	ShieldChance     float64 `yaml:"shield_chance" json:"shield_chance"`
	ShieldCooldownMs float64 `yaml:"shield_cooldown_ms" json:"shield_cooldown_ms"`
	SlowMoDurationMs float64 `yaml:"slowmo_duration_ms" json:"slowmo_duration_ms"`
	SlowMoFactor     float64 `yaml:"slowmo_factor" json:"slowmo_factor"` // Velocity multiplier while slowed
}

// SessionConfig defines lives and recovery timing.
type SessionConfig struct {
	Lives    int     `yaml:"lives" json:"lives"`
	InvulnMs float64 `yaml:"invuln_ms" json:"invuln_ms"`
	ShakeMs  float64 `yaml:"shake_ms" json:"shake_ms"`
}

// MetricsConfig defines telemetry aggregation windows.
type MetricsConfig struct {
	BlockSeconds    float64 `yaml:"block_seconds" json:"block_seconds"`
	MinBlockSeconds float64 `yaml:"min_block_seconds" json:"min_block_seconds"` // Noise floor for forced flushes
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)
