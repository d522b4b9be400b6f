package dodge

// GamePhase is the coarse session state.
type GamePhase int

const (
	PhasePlaying GamePhase = iota
	PhasePaused
	PhaseGameOver
)

// String returns the phase name.
func (p GamePhase) String() string {
	switch p {
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "playing"
	}
}

// Snapshot captures the full simulation state for determinism checks and
// debugging. Two games stepped identically from the same seed must produce
// equal snapshots at every tick.
type Snapshot struct {
	Tick       uint64
	ElapsedSec float64
	Phase      GamePhase

	Difficulty     float64
	CooldownSec    float64
	FallSpeedScale float64

	Lives       int
	ShieldArmed bool
	SlowMoMs    float64
	InvulnMs    float64
	ShakeMs     float64

	PlayerX     float64
	PlayerFrame int

	MeteorCount  int
	PowerUpCount int

	SpawnIntervalMs float64
	SpawnAccumMs    float64
	SpawnPenaltyMs  float64

	Spawned    int
	Avoided    int
	Hits       int
	NearMisses int
	Shields    int

	MovementWindow float64
}

// Snapshot returns the current simulation state.
func (g *Game) Snapshot() Snapshot {
	phase := PhasePlaying
	switch {
	case g.gameOver:
		phase = PhaseGameOver
	case g.paused:
		phase = PhasePaused
	}
	return Snapshot{
		Tick:            g.tick,
		ElapsedSec:      g.elapsedMs / 1000,
		Phase:           phase,
		Difficulty:      g.diff.Value(),
		CooldownSec:     g.diff.Cooldown(),
		FallSpeedScale:  g.fall.Value(),
		Lives:           g.lives,
		ShieldArmed:     g.shieldArmed,
		SlowMoMs:        g.slowMoMs,
		InvulnMs:        g.invulnMs,
		ShakeMs:         g.shakeMs,
		PlayerX:         g.playerX,
		PlayerFrame:     g.playerFrame,
		MeteorCount:     len(g.meteors),
		PowerUpCount:    len(g.powerups),
		SpawnIntervalMs: g.spawn.IntervalMs(),
		SpawnAccumMs:    g.spawn.AccumMs(),
		SpawnPenaltyMs:  g.spawn.PenaltyMs(),
		Spawned:         g.agg.spawned,
		Avoided:         g.agg.avoided,
		Hits:            g.agg.hits,
		NearMisses:      g.agg.nearMisses,
		Shields:         g.agg.shields,
		MovementWindow:  g.moveWin.Total(),
	}
}
