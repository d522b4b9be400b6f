// Package telemetry defines the session logging contract consumed by the
// platform. The simulation emits typed events; the platform timestamps them
// and hands them to a Recorder. Storage backends implement Recorder so the
// platform never depends on a concrete database.
package telemetry

import "time"

// SessionStart is recorded exactly once when a session begins.
type SessionStart struct {
	SessionID  string
	SubjectID  string
	Protocol   string
	Notes      string
	ConfigJSON string // Snapshot of the effective tuning at session start
	StartedAt  time.Time
}

// SessionEnd is recorded exactly once when a session ends, including abrupt
// quits. It carries the final summary counters.
type SessionEnd struct {
	SessionID        string
	EndedAt          time.Time
	DurationSec      float64
	FinalDifficulty  float64
	LivesRemaining   int
	ShieldsCollected int
	NearMisses       int
	MeteorsSpawned   int
	MeteorsAvoided   int
}

// BlockRecord is a fixed-duration metrics aggregation window. One record is
// written per completed block, plus one for the final partial block when the
// session ends with more than the noise-floor duration accumulated.
type BlockRecord struct {
	SessionID     string
	BlockIndex    int
	StartedAt     time.Time
	EndedAt       time.Time
	DurationSec   float64
	DifficultyAvg float64
	SpeedScaleAvg float64
	Spawned       int
	Avoided       int
	Hits          int
	NearMisses    int
	MovementUnits int

	// SuccessRate is avoided/spawned; nil when nothing spawned so the
	// record never carries a fabricated zero.
	SuccessRate *float64
}

// EventRecord is a single timestamped discrete occurrence.
type EventRecord struct {
	SessionID  string
	At         time.Time
	EventKind  string
	DetailJSON string
}

// Recorder receives structured session telemetry. Implementations decide how
// failures are surfaced; callers treat recording as best-effort.
type Recorder interface {
	RecordSessionStart(s SessionStart) error
	RecordSessionEnd(s SessionEnd) error
	RecordBlock(b BlockRecord) error
	RecordEvent(e EventRecord) error
}

// Nop is a Recorder that discards everything. Used when no database is
// available so gameplay never depends on storage health.
type Nop struct{}

// RecordSessionStart implements Recorder.
func (Nop) RecordSessionStart(SessionStart) error { return nil }

// RecordSessionEnd implements Recorder.
func (Nop) RecordSessionEnd(SessionEnd) error { return nil }

// RecordBlock implements Recorder.
func (Nop) RecordBlock(BlockRecord) error { return nil }

// RecordEvent implements Recorder.
func (Nop) RecordEvent(EventRecord) error { return nil }

var _ Recorder = Nop{}
