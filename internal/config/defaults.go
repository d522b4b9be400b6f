package config

import (
	_ "embed"
)

//go:embed defaults/dodge.yaml
var defaultDodgeYAML []byte

// DefaultDodgeConfig returns the default dodge configuration.
// Kept in sync with defaults/dodge.yaml as the last-resort fallback.
func DefaultDodgeConfig() DodgeConfig {
	return DodgeConfig{
		Field: FieldConfig{
			Width:  1000,
			Height: 600,
		},
		Player: PlayerConfig{
			Width:      150,
			Height:     150,
			Speed:      5,
			AnimIdleMs: 140,
			AnimMoveMs: 90,
		},
		Meteors: MeteorConfig{
			Width:        100,
			Height:       100,
			BaseFallVel:  3.0,
			AnimMs:       120,
			MaxTiltDeg:   35,
			TiltExtraDeg: 10,
			DriftMin:     1.0,
			DriftMax:     3.0,
			NearMissDist: 30,
		},
		Difficulty: DDAConfig{
			Min:               0.6,
			Max:               3.0,
			Start:             0.9,
			UpPerSec:          0.02,
			UpMovingBonus:     0.015,
			DropMult:          0.75,
			DropAbs:           0.10,
			CooldownSec:       3.0,
			MovementWindowSec: 5.0,
			MovementThreshold: 160,
		},
		FallSpeed: FallSpeedConfig{
			Min:            0.5,
			HitFactor:      0.8,
			RecoveryPerSec: 0.05,
		},
		Spawning: SpawnConfig{
			IntervalSlowMs:     2000,
			IntervalFastMs:     400,
			InitialIntervalMs:  1600,
			Smoothing:          0.15,
			PenaltyMaxMs:       800,
			PenaltyHitFrac:     0.6,
			PenaltyDecayPerSec: 200,
			WaveTier1Below:     1.2,
			WaveTier2Below:     2.0,
		},
		PowerUps: PowerUpConfig{
			Radius:           16,
			FallVel:          2.2,
			DriftMax:         0.5,
			SpawnMinMs:       6000,
			SpawnMaxMs:       11000,
			ShieldChance:     0.20,
			ShieldCooldownMs: 8000,
			SlowMoDurationMs: 3000,
			SlowMoFactor:     0.6,
		},
		Session: SessionConfig{
			Lives:    3,
			InvulnMs: 1000,
			ShakeMs:  350,
		},
		Metrics: MetricsConfig{
			BlockSeconds:    60,
			MinBlockSeconds: 0.25,
		},
	}
}
