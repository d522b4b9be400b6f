package dodge

import (
	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
)

// DifficultyController owns the dynamic difficulty value. It ramps slowly
// while the player survives, drops sharply on a hit, and holds the ramp for a
// cooldown window after each drop so the player gets breathing room.
type DifficultyController struct {
	cfg      config.DDAConfig
	value    float64
	cooldown float64 // seconds; ramp is active at <= 0
}

// NewDifficultyController creates a controller starting at the configured
// value with the ramp immediately active.
func NewDifficultyController(cfg config.DDAConfig) *DifficultyController {
	return &DifficultyController{cfg: cfg, value: cfg.Start}
}

// Advance moves the controller one frame. The cooldown timer counts down
// first; a hit then overrides the ramp, so the frame that resolves a hit
// leaves the cooldown at exactly its configured duration.
func (d *DifficultyController) Advance(dtSec float64, hitOccurred, movingActively bool) {
	d.cooldown -= dtSec
	if hitOccurred {
		d.value = core.ClampF(d.value*d.cfg.DropMult-d.cfg.DropAbs, d.cfg.Min, d.cfg.Max)
		d.cooldown = d.cfg.CooldownSec
		return
	}
	if d.cooldown <= 0 {
		rate := d.cfg.UpPerSec
		if movingActively {
			rate += d.cfg.UpMovingBonus
		}
		d.value = core.ClampF(d.value+rate*dtSec, d.cfg.Min, d.cfg.Max)
	}
}

// Value returns the current difficulty.
func (d *DifficultyController) Value() float64 { return d.value }

// Cooldown returns the remaining ramp-hold time in seconds. It goes negative
// while the ramp is active.
func (d *DifficultyController) Cooldown() float64 { return d.cooldown }

// Normalized maps the current value into [0, 1] across the configured range.
func (d *DifficultyController) Normalized() float64 {
	span := d.cfg.Max - d.cfg.Min
	if span <= 0 {
		return 0
	}
	return core.ClampF((d.value-d.cfg.Min)/span, 0, 1)
}

// FallSpeedScale is the global meteor speed multiplier. Hits knock it down
// for immediate relief; it creeps back toward 1.0 while the player survives.
type FallSpeedScale struct {
	cfg   config.FallSpeedConfig
	scale float64
}

// NewFallSpeedScale creates a scale at the neutral value 1.0.
func NewFallSpeedScale(cfg config.FallSpeedConfig) *FallSpeedScale {
	return &FallSpeedScale{cfg: cfg, scale: 1.0}
}

// Recover moves the scale back toward 1.0.
func (f *FallSpeedScale) Recover(dtSec float64) {
	if f.scale < 1.0 {
		f.scale += f.cfg.RecoveryPerSec * dtSec
		if f.scale > 1.0 {
			f.scale = 1.0
		}
	}
}

// ApplyHit multiplies the scale down, flooring at the configured minimum.
func (f *FallSpeedScale) ApplyHit() {
	f.scale *= f.cfg.HitFactor
	if f.scale < f.cfg.Min {
		f.scale = f.cfg.Min
	}
}

// Value returns the current scale.
func (f *FallSpeedScale) Value() float64 { return f.scale }
