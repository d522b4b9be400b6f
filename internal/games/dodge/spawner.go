package dodge

import (
	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
)

// Spawner schedules meteor waves and power-up drops. The live interval chases
// a difficulty-derived target through exponential smoothing, so difficulty
// swings change pacing gradually instead of stepping.
type Spawner struct {
	cfg   config.SpawnConfig
	puCfg config.PowerUpConfig
	rng   *SimpleRNG

	intervalMs float64 // smoothed live interval
	accumMs    float64
	penaltyMs  float64

	puTimerMs        float64
	puNextMs         float64
	shieldCooldownMs float64
}

// NewSpawner creates a spawner with the initial interval and the first
// power-up delay already rolled.
func NewSpawner(cfg config.SpawnConfig, puCfg config.PowerUpConfig, rng *SimpleRNG) *Spawner {
	s := &Spawner{
		cfg:        cfg,
		puCfg:      puCfg,
		rng:        rng,
		intervalMs: cfg.InitialIntervalMs,
	}
	s.rollPowerUpDelay()
	return s
}

func (s *Spawner) rollPowerUpDelay() {
	s.puTimerMs = 0
	s.puNextMs = s.rng.FloatRange(s.puCfg.SpawnMinMs, s.puCfg.SpawnMaxMs)
}

// Advance decays the hit penalty and ticks the accumulators.
func (s *Spawner) Advance(dtMs float64) {
	if s.penaltyMs > 0 {
		s.penaltyMs -= s.cfg.PenaltyDecayPerSec * (dtMs / 1000)
		if s.penaltyMs < 0 {
			s.penaltyMs = 0
		}
	}
	s.accumMs += dtMs
	s.puTimerMs += dtMs
	if s.shieldCooldownMs > 0 {
		s.shieldCooldownMs -= dtMs
	}
}

// MeteorWave checks whether a wave is due and returns its size, or 0. The
// wave size steps up with raw difficulty so high-difficulty play faces
// clustered threats, not just faster ones.
func (s *Spawner) MeteorWave(difficulty, difficultyNorm float64) int {
	target := core.LerpF(s.cfg.IntervalSlowMs, s.cfg.IntervalFastMs, difficultyNorm) + s.penaltyMs
	s.intervalMs += (target - s.intervalMs) * s.cfg.Smoothing
	if s.accumMs < s.intervalMs {
		return 0
	}
	s.accumMs = 0
	switch {
	case difficulty < s.cfg.WaveTier1Below:
		return 2
	case difficulty < s.cfg.WaveTier2Below:
		return 3
	default:
		return 4
	}
}

// ApplyHit adds the relief penalty to the spawn interval and restarts the
// wave accumulator, giving the player a clear field after a strike.
func (s *Spawner) ApplyHit() {
	s.penaltyMs += s.cfg.PenaltyMaxMs * s.cfg.PenaltyHitFrac
	if s.penaltyMs > s.cfg.PenaltyMaxMs {
		s.penaltyMs = s.cfg.PenaltyMaxMs
	}
	s.accumMs = 0
}

// NextPowerUp reports whether a power-up is due and, if so, which kind. A
// shield roll is gated by its own cooldown so shields cannot chain; failed
// gates fall through to slow-mo. Claiming a spawn re-rolls the next delay.
func (s *Spawner) NextPowerUp() (PowerUpKind, bool) {
	if s.puTimerMs < s.puNextMs {
		return 0, false
	}
	s.rollPowerUpDelay()
	if s.shieldCooldownMs <= 0 && s.rng.Float64() < s.puCfg.ShieldChance {
		s.shieldCooldownMs = s.puCfg.ShieldCooldownMs
		return PowerUpShield, true
	}
	return PowerUpSlowMo, true
}

// IntervalMs returns the current smoothed spawn interval.
func (s *Spawner) IntervalMs() float64 { return s.intervalMs }

// PenaltyMs returns the current relief penalty.
func (s *Spawner) PenaltyMs() float64 { return s.penaltyMs }

// AccumMs returns the time accumulated toward the next wave.
func (s *Spawner) AccumMs() float64 { return s.accumMs }
