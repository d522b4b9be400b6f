// Package dodge implements the meteor-dodge game: a fixed-tick arcade
// simulation with dynamic difficulty adjustment and block-based session
// telemetry. The simulation runs in virtual field units; the renderer
// projects them onto terminal cells.
package dodge

import (
	"math"
	"time"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/registry"
)

var (
	configPath string
	preset     = config.DifficultyNormal
)

// SetConfigPath sets a custom config file path for new game instances.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset for new game instances.
func SetDifficultyPreset(p config.DifficultyPreset) {
	preset = p
}

func init() {
	registry.Register("dodge", func() registry.Game { return New() })
	registry.Register("dodge_practice", func() registry.Game { return NewPractice() })
}

// Game implements registry.Game for the meteor-dodge session.
type Game struct {
	id          string
	title       string
	forcePreset config.DifficultyPreset // empty means use the package preset

	cfg  config.DodgeConfig
	rc   core.RuntimeConfig
	dtMs float64

	rng *SimpleRNG

	diff    *DifficultyController
	fall    *FallSpeedScale
	spawn   *Spawner
	agg     *metricsAggregator
	moveWin *movementWindow

	playerX      float64 // sprite center
	playerFrame  int
	playerAnimMs float64

	meteors  []*Meteor
	powerups []*PowerUp

	lives       int
	shieldArmed bool
	slowMoMs    float64
	invulnMs    float64
	shakeMs     float64

	tick      uint64
	elapsedMs float64

	paused   bool
	gameOver bool
}

// New creates a dodge game with the package-level difficulty preset.
func New() *Game {
	return &Game{id: "dodge", title: "Space Dodge"}
}

// NewPractice creates the fixed-difficulty practice variant. The ramp is
// disabled; hits still drop difficulty so relief mechanics stay testable.
func NewPractice() *Game {
	return &Game{id: "dodge_practice", title: "Space Dodge (practice)", forcePreset: config.DifficultyFixed}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Title returns the display name.
func (g *Game) Title() string { return g.title }

// Reset initializes the game for a new session.
func (g *Game) Reset(rc core.RuntimeConfig) {
	cfg, err := config.LoadDodge(configPath)
	if err != nil {
		cfg = config.DefaultDodgeConfig()
	}
	p := preset
	if g.forcePreset != "" {
		p = g.forcePreset
	}
	config.ApplyDodgePreset(&cfg, p)

	seed := rc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g.cfg = cfg
	g.rc = rc
	g.dtMs = rc.DTMillis()
	g.rng = NewSimpleRNG(seed)

	g.diff = NewDifficultyController(cfg.Difficulty)
	g.fall = NewFallSpeedScale(cfg.FallSpeed)
	g.spawn = NewSpawner(cfg.Spawning, cfg.PowerUps, g.rng)
	g.agg = newMetricsAggregator(cfg.Metrics)
	g.moveWin = newMovementWindow(cfg.Difficulty.MovementWindowSec, cfg.Difficulty.MovementThreshold)

	g.playerX = float64(cfg.Field.Width) / 2
	g.playerFrame = 0
	g.playerAnimMs = 0

	g.meteors = nil
	g.powerups = nil

	g.lives = cfg.Session.Lives
	g.shieldArmed = false
	g.slowMoMs = 0
	g.invulnMs = 0
	g.shakeMs = 0

	g.tick = 0
	g.elapsedMs = 0
	g.paused = false
	g.gameOver = false
}

// Config returns the effective tuning for this session, after preset
// application. The platform serializes it into the session record.
func (g *Game) Config() config.DodgeConfig { return g.cfg }

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    int(g.elapsedMs / 1000),
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Summary returns the whole-session aggregate for the session-end record.
func (g *Game) Summary() SessionSummary {
	return SessionSummary{
		DurationSec:      g.elapsedMs / 1000,
		FinalDifficulty:  g.diff.Value(),
		LivesRemaining:   g.lives,
		ShieldsCollected: g.agg.shields,
		NearMisses:       g.agg.nearMisses,
		MeteorsSpawned:   g.agg.spawned,
		MeteorsAvoided:   g.agg.avoided,
	}
}

// FinalFlush force-flushes the in-progress metrics block. The platform calls
// it when a session ends abruptly (quit, disconnect) so the tail of play is
// not lost. Returns false when the block is below the noise floor or the
// final block already flushed at game over.
func (g *Game) FinalFlush() (BlockSnapshot, bool) {
	return g.agg.FlushFinal()
}

// Step advances the simulation by one fixed tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.gameOver {
		if in.Has(core.ActionRestart) {
			g.Reset(g.rc)
		}
		return g.result(nil)
	}
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return g.result(nil)
	}

	var events []core.Event
	dtMs := g.dtMs
	dtSec := dtMs / 1000
	g.tick++
	g.elapsedMs += dtMs

	g.decayTimers(dtMs, dtSec)

	norm := g.diff.Normalized()
	slowFactor := 1.0
	if g.slowMoMs > 0 {
		slowFactor = g.cfg.PowerUps.SlowMoFactor
	}
	meteorVy := g.cfg.Meteors.BaseFallVel * core.LerpF(0.85, 1.7, norm) * g.fall.Value() * slowFactor
	maxTilt := g.cfg.Meteors.MaxTiltDeg + core.LerpF(0, g.cfg.Meteors.TiltExtraDeg, norm)

	if n := g.spawn.MeteorWave(g.diff.Value(), norm); n > 0 {
		for i := 0; i < n; i++ {
			g.meteors = append(g.meteors, newMeteor(g.cfg.Meteors, g.cfg.Field.Width, norm, g.rng))
		}
		g.agg.CountSpawned(n)
	}

	if kind, ok := g.spawn.NextPowerUp(); ok {
		pu := newPowerUp(kind, g.cfg.PowerUps, g.cfg.Field.Width, g.rng)
		g.powerups = append(g.powerups, pu)
		events = append(events, PowerUpSpawnEvent{PowerUpKind: kind.String(), X: int(pu.X)})
	}

	dx := g.movePlayer(in, dtMs)
	g.moveWin.Add(g.elapsedMs, dx)
	moving := g.moveWin.Active()

	hit := false
	events = g.updateMeteors(meteorVy, maxTilt, &hit, events)
	events = g.updatePowerUps(slowFactor, events)

	if hit {
		g.lives--
		if g.lives < 0 {
			g.lives = 0
		}
		g.agg.CountHit()
		g.fall.ApplyHit()
		g.spawn.ApplyHit()
		g.meteors = g.meteors[:0]
		g.invulnMs = g.cfg.Session.InvulnMs
		g.shakeMs = g.cfg.Session.ShakeMs
	}

	g.diff.Advance(dtSec, hit, moving)

	if hit {
		events = append(events, HitEvent{LivesAfter: g.lives, DifficultyAfter: g.diff.Value()})
		if g.lives == 0 {
			g.gameOver = true
			events = append(events, GameOverEvent{SurvivalSec: g.elapsedMs / 1000})
			if snap, ok := g.agg.FlushFinal(); ok {
				events = append(events, BlockFlushEvent{Block: snap})
			}
		}
	}

	if !g.gameOver {
		g.agg.Accumulate(dtSec, g.diff.Value(), g.fall.Value(), dx)
		if g.agg.BlockDue() {
			events = append(events, BlockFlushEvent{Block: g.agg.FlushBlock()})
		}
	}

	return g.result(events)
}

func (g *Game) result(events []core.Event) core.StepResult {
	return core.StepResult{State: g.State(), Events: events}
}

func (g *Game) decayTimers(dtMs, dtSec float64) {
	if g.invulnMs > 0 {
		g.invulnMs -= dtMs
		if g.invulnMs < 0 {
			g.invulnMs = 0
		}
	}
	if g.slowMoMs > 0 {
		g.slowMoMs -= dtMs
		if g.slowMoMs < 0 {
			g.slowMoMs = 0
		}
	}
	if g.shakeMs > 0 {
		g.shakeMs -= dtMs
		if g.shakeMs < 0 {
			g.shakeMs = 0
		}
	}
	g.fall.Recover(dtSec)
	g.spawn.Advance(dtMs)
}

// movePlayer applies horizontal input, clamps to the field, and advances the
// ship animation. Returns the signed displacement in field units.
func (g *Game) movePlayer(in core.InputFrame, dtMs float64) float64 {
	dx := 0.0
	speed := float64(g.cfg.Player.Speed)
	if in.Has(core.ActionLeft) {
		dx -= speed
	}
	if in.Has(core.ActionRight) {
		dx += speed
	}

	half := float64(g.cfg.Player.Width) / 2
	before := g.playerX
	g.playerX = core.ClampF(g.playerX+dx, half, float64(g.cfg.Field.Width)-half)
	dx = g.playerX - before

	cadence := g.cfg.Player.AnimIdleMs
	if dx != 0 {
		cadence = g.cfg.Player.AnimMoveMs
	}
	g.playerAnimMs += dtMs
	if g.playerAnimMs >= cadence {
		g.playerAnimMs -= cadence
		g.playerFrame = (g.playerFrame + 1) % playerSprite.FrameCount()
	}
	return dx
}

// playerTop returns the top edge of the player sprite; the ship rides the
// bottom of the field.
func (g *Game) playerTop() float64 {
	return float64(g.cfg.Field.Height - g.cfg.Player.Height)
}

// updateMeteors advances every meteor and resolves bookkeeping. All meteors
// are checked for off-screen and near-miss, but at most one collision outcome
// (hit or shield consume) is resolved per frame; the rest survive untouched
// into the next frame.
func (g *Game) updateMeteors(vy, maxTilt float64, hit *bool, events []core.Event) []core.Event {
	playerMask := playerSprite.Frame(g.playerFrame)
	playerLeft := g.playerX - float64(g.cfg.Player.Width)/2
	playerTop := g.playerTop()
	playerCenterY := playerTop + float64(g.cfg.Player.Height)/2

	resolved := false
	active := g.meteors[:0]
	for _, m := range g.meteors {
		m.Update(g.dtMs, vy, maxTilt, g.cfg.Field.Width, g.cfg.Meteors.AnimMs)

		if m.OffScreen(g.cfg.Field.Height) {
			g.agg.CountAvoided()
			continue
		}

		// Near-miss fires once, at the moment the meteor crosses the
		// player's vertical band.
		if !m.NearChecked && m.Y >= playerCenterY {
			m.NearChecked = true
			d := math.Abs(m.X - g.playerX)
			if d <= g.cfg.Meteors.NearMissDist {
				g.agg.CountNearMiss()
				events = append(events, NearMissEvent{DistanceUnits: int(d)})
			}
		}

		if !resolved && g.invulnMs <= 0 &&
			MasksOverlap(playerMask, playerLeft, playerTop, m.Mask(), m.Left(), m.Top()) {
			resolved = true
			if g.shieldArmed {
				g.shieldArmed = false
				g.shakeMs = g.cfg.Session.ShakeMs / 2
				events = append(events, ShieldUsedEvent{Difficulty: g.diff.Value()})
				continue // absorbed meteor is destroyed
			}
			*hit = true
			continue // struck meteor never survives the frame
		}

		active = append(active, m)
	}
	g.meteors = active
	return events
}

// updatePowerUps advances every power-up and applies pickups.
func (g *Game) updatePowerUps(slowFactor float64, events []core.Event) []core.Event {
	vy := g.cfg.PowerUps.FallVel * g.fall.Value() * slowFactor
	playerRect := core.NewRect(
		int(g.playerX-float64(g.cfg.Player.Width)/2),
		int(g.playerTop()),
		g.cfg.Player.Width,
		g.cfg.Player.Height,
	)

	active := g.powerups[:0]
	for _, p := range g.powerups {
		p.Update(vy, g.cfg.Field.Width)

		if p.OffScreen(g.cfg.Field.Height) {
			continue
		}
		if p.Collected(playerRect) {
			events = append(events, PowerUpPickupEvent{PowerUpKind: p.Kind.String()})
			switch p.Kind {
			case PowerUpShield:
				g.shieldArmed = true
				g.agg.CountShield()
			case PowerUpSlowMo:
				g.slowMoMs = g.cfg.PowerUps.SlowMoDurationMs
			}
			continue
		}
		active = append(active, p)
	}
	g.powerups = active
	return events
}
