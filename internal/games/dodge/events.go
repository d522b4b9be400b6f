package dodge

// Event kinds emitted through core.StepResult. The platform timestamps these
// and forwards them to the telemetry recorder; payload fields carry JSON tags
// so detail columns stay machine-readable.

// HitEvent is emitted when a meteor strike costs a life.
type HitEvent struct {
	LivesAfter      int     `json:"lives_after"`
	DifficultyAfter float64 `json:"difficulty_after"`
}

// Kind implements core.Event.
func (HitEvent) Kind() string { return "hit" }

// NearMissEvent is emitted once per meteor when it crosses the player's
// vertical band within the near-miss distance without colliding.
type NearMissEvent struct {
	DistanceUnits int `json:"distance_units"`
}

// Kind implements core.Event.
func (NearMissEvent) Kind() string { return "near_miss" }

// ShieldUsedEvent is emitted when an armed shield absorbs a collision.
type ShieldUsedEvent struct {
	Difficulty float64 `json:"difficulty"`
}

// Kind implements core.Event.
func (ShieldUsedEvent) Kind() string { return "shield_used" }

// PowerUpSpawnEvent is emitted when a power-up enters the field.
type PowerUpSpawnEvent struct {
	PowerUpKind string `json:"kind"`
	X           int    `json:"x"`
}

// Kind implements core.Event.
func (PowerUpSpawnEvent) Kind() string { return "powerup_spawn" }

// PowerUpPickupEvent is emitted when the player collects a power-up.
type PowerUpPickupEvent struct {
	PowerUpKind string `json:"kind"`
}

// Kind implements core.Event.
func (PowerUpPickupEvent) Kind() string { return "powerup_pickup" }

// BlockFlushEvent carries a completed metrics block. The platform maps it to
// a block record rather than a discrete event row.
type BlockFlushEvent struct {
	Block BlockSnapshot `json:"block"`
}

// Kind implements core.Event.
func (BlockFlushEvent) Kind() string { return "block" }

// GameOverEvent is emitted on the frame the last life is lost.
type GameOverEvent struct {
	SurvivalSec float64 `json:"survival_sec"`
}

// Kind implements core.Event.
func (GameOverEvent) Kind() string { return "game_over" }
