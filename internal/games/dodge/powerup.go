package dodge

import (
	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
)

// PowerUpKind identifies a power-up effect.
type PowerUpKind int

const (
	// PowerUpShield arms a one-use shield that absorbs the next collision.
	PowerUpShield PowerUpKind = iota
	// PowerUpSlowMo slows meteors and power-ups for a fixed duration.
	PowerUpSlowMo
)

// String returns the telemetry name of the kind.
func (k PowerUpKind) String() string {
	if k == PowerUpShield {
		return "shield"
	}
	return "slowmo"
}

// PowerUp is a falling collectible circle. Position is the center in field
// units.
type PowerUp struct {
	Kind   PowerUpKind
	X, Y   float64
	VX     float64
	Radius float64
}

// newPowerUp spawns a power-up above the top edge with a small random drift.
func newPowerUp(kind PowerUpKind, cfg config.PowerUpConfig, fieldW int, rng *SimpleRNG) *PowerUp {
	return &PowerUp{
		Kind:   kind,
		X:      rng.FloatRange(cfg.Radius, float64(fieldW)-cfg.Radius),
		Y:      -cfg.Radius * 2,
		VX:     rng.FloatRange(-cfg.DriftMax, cfg.DriftMax),
		Radius: cfg.Radius,
	}
}

// Update advances one tick: fall, drift, and reflect off the side walls.
func (p *PowerUp) Update(vy float64, fieldW int) {
	p.Y += vy
	p.X += p.VX

	if p.X < p.Radius {
		p.X = p.Radius
		p.VX = -p.VX
	} else if p.X > float64(fieldW)-p.Radius {
		p.X = float64(fieldW) - p.Radius
		p.VX = -p.VX
	}
}

// Collected reports whether the circle touches the player's bounding box.
func (p *PowerUp) Collected(player core.Rect) bool {
	return core.CircleIntersectsRect(p.X, p.Y, p.Radius, player)
}

// OffScreen reports whether the power-up has fallen past the bottom margin.
func (p *PowerUp) OffScreen(fieldH int) bool {
	return p.Y-p.Radius > float64(fieldH)+20
}
