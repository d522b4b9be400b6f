package core

// RuntimeConfig contains configuration passed to the game at initialization.
// The game uses this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// DTMillis returns the fixed per-tick delta time in milliseconds.
// A single tick never simulates more than one tick's worth of time, so the
// simulation stays deterministic regardless of wall-clock jitter.
func (c RuntimeConfig) DTMillis() float64 {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return 1000.0 / float64(rate)
}

// GameState represents the externally visible state of the game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Survival time in whole seconds
	GameOver bool // Whether the session has ended
	Paused   bool // Whether the game is paused
}

// Event is a discrete notable occurrence emitted by a simulation step.
// Concrete event types live with the game; the platform forwards them to the
// telemetry recorder and the audio notifier without inspecting payloads here.
type Event interface {
	// Kind returns a stable identifier for the event type (e.g. "hit").
	Kind() string
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState

	// Events lists discrete occurrences from this tick, in the order they
	// were resolved. Empty on most ticks.
	Events []Event
}
