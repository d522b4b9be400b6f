package dodge

import (
	"math"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
)

// Meteor is a falling rock. Position is the sprite center in field units.
// The collision mask is regenerated from the current tilt every frame, so
// the hitbox tracks the drawn orientation.
type Meteor struct {
	X, Y float64 // center
	VX   float64 // horizontal drift, units per tick

	AngleDeg float64
	Frame    int
	animMs   float64

	mask  Mask
	maskW float64 // rotated extent in field units
	maskH float64

	NearChecked bool
}

// newMeteor spawns a meteor above the top edge with a difficulty-scaled
// drift. Direction is a coin flip.
func newMeteor(cfg config.MeteorConfig, fieldW int, difficultyNorm float64, rng *SimpleRNG) *Meteor {
	half := float64(cfg.Width) / 2
	drift := core.LerpF(cfg.DriftMin, cfg.DriftMax, difficultyNorm) * rng.FloatRange(0.5, 1.0)
	if rng.Intn(2) == 0 {
		drift = -drift
	}
	m := &Meteor{
		X:  rng.FloatRange(half, float64(fieldW)-half),
		Y:  -float64(cfg.Height),
		VX: drift,
	}
	m.regenMask()
	return m
}

// Update advances one tick: animation flip, fall, drift with edge bounce,
// tilt easing toward the velocity vector, then mask regeneration.
func (m *Meteor) Update(dtMs, vy, maxTiltDeg float64, fieldW int, animMs float64) {
	m.animMs += dtMs
	if m.animMs >= animMs {
		m.animMs -= animMs
		m.Frame = (m.Frame + 1) % meteorSprite.FrameCount()
	}

	m.Y += vy
	m.X += m.VX

	half := m.maskW / 2
	if m.X < half {
		m.X = half
		m.VX = math.Abs(m.VX) * 0.8
	} else if m.X > float64(fieldW)-half {
		m.X = float64(fieldW) - half
		m.VX = -math.Abs(m.VX) * 0.8
	}

	// Lean into the travel direction, clamped to the tilt limit.
	target := core.ClampF(math.Atan2(-m.VX, vy)*180/math.Pi, -maxTiltDeg, maxTiltDeg)
	m.AngleDeg += (target - m.AngleDeg) * 0.2

	m.regenMask()
}

func (m *Meteor) regenMask() {
	m.mask = meteorSprite.Frame(m.Frame).Rotate(m.AngleDeg)
	m.maskW = m.mask.WidthUnits()
	m.maskH = m.mask.HeightUnits()
}

// Mask returns the current rotated collision mask.
func (m *Meteor) Mask() Mask { return m.mask }

// Left returns the mask's left edge in field units.
func (m *Meteor) Left() float64 { return m.X - m.maskW/2 }

// Top returns the mask's top edge in field units.
func (m *Meteor) Top() float64 { return m.Y - m.maskH/2 }

// OffScreen reports whether the meteor has fallen past the bottom margin and
// counts as avoided.
func (m *Meteor) OffScreen(fieldH int) bool {
	return m.Top() > float64(fieldH)+50
}
