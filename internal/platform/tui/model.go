package tui

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/games/dodge"
	"github.com/vovakirdan/space-dodge/internal/platform/audio"
	"github.com/vovakirdan/space-dodge/internal/registry"
	"github.com/vovakirdan/space-dodge/internal/telemetry"
)

// SessionGame is the contract between the platform and a telemetry-aware
// game: the registry interface plus the session reporting surface.
// *dodge.Game satisfies it.
type SessionGame interface {
	registry.Game
	Config() config.DodgeConfig
	Summary() dodge.SessionSummary
	FinalFlush() (dodge.BlockSnapshot, bool)
}

// SessionInfo carries the subject metadata attached to every session record.
type SessionInfo struct {
	SubjectID string
	Protocol  string
	Notes     string
}

// Model is the Bubble Tea model for running a dodge session. It owns the
// session lifecycle: one SessionStart per session, event and block forwarding
// on every tick, and exactly one SessionEnd, whether the session ends by game
// over, restart, or quit.
type Model struct {
	game     SessionGame
	screen   *core.Screen
	recorder telemetry.Recorder
	notifier *audio.Notifier
	logger   *log.Logger
	keys     *KeyMapper

	rc   core.RuntimeConfig
	info SessionInfo

	inputFrame core.InputFrame
	gameState  core.GameState

	sessionID    string
	blockStart   time.Time
	sessionEnded bool
	quitting     bool
}

// NewModel creates a model, resets the game, and records the session start.
func NewModel(game SessionGame, recorder telemetry.Recorder, notifier *audio.Notifier,
	logger *log.Logger, cfg core.RuntimeConfig, info SessionInfo) Model {

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if recorder == nil {
		recorder = telemetry.Nop{}
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		recorder:   recorder,
		notifier:   notifier,
		logger:     logger,
		keys:       NewKeyMapper(),
		rc:         cfg,
		info:       info,
		inputFrame: core.NewInputFrame(),
	}

	game.Reset(cfg)
	m.startSession()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.rc.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.endSession("quit")
		m.quitting = true
		return m, tea.Quit
	}
	if action == core.ActionRestart && !m.gameState.GameOver {
		return m, nil
	}
	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes one simulation tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	// A restart after game over closes the current session and opens a new
	// one with a fresh seed; analysis tools never see two runs merged.
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.endSession("restart")
		m.rc.Seed = time.Now().UnixNano()
		m.game.Reset(m.rc)
		m.gameState = m.game.State()
		m.startSession()
		m.inputFrame.Clear()
		return m, tickCmd(m.rc.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.forwardEvents(result.Events)

	if m.gameState.GameOver && !m.sessionEnded {
		m.endSession("game_over")
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.rc.TickRate)
}

// startSession records a SessionStart with a snapshot of the effective
// tuning.
func (m *Model) startSession() {
	now := time.Now().UTC()
	m.sessionID = fmt.Sprintf("%s-%d", m.info.SubjectID, now.UnixNano())
	m.blockStart = now
	m.sessionEnded = false

	cfgJSON, err := json.Marshal(m.game.Config())
	if err != nil {
		cfgJSON = []byte("{}")
	}

	err = m.recorder.RecordSessionStart(telemetry.SessionStart{
		SessionID:  m.sessionID,
		SubjectID:  m.info.SubjectID,
		Protocol:   m.info.Protocol,
		Notes:      m.info.Notes,
		ConfigJSON: string(cfgJSON),
		StartedAt:  now,
	})
	if err != nil {
		m.logger.Warn("could not record session start", "session", m.sessionID, "error", err)
	}
	m.logger.Info("session started", "session", m.sessionID, "subject", m.info.SubjectID)
}

// endSession flushes the trailing partial block and records the SessionEnd.
// Idempotent per session, so game over followed by quit records exactly one
// end.
func (m *Model) endSession(reason string) {
	if m.sessionEnded {
		return
	}
	m.sessionEnded = true

	now := time.Now().UTC()
	if snap, ok := m.game.FinalFlush(); ok {
		m.recordBlock(snap, now)
	}

	sum := m.game.Summary()
	err := m.recorder.RecordSessionEnd(telemetry.SessionEnd{
		SessionID:        m.sessionID,
		EndedAt:          now,
		DurationSec:      sum.DurationSec,
		FinalDifficulty:  sum.FinalDifficulty,
		LivesRemaining:   sum.LivesRemaining,
		ShieldsCollected: sum.ShieldsCollected,
		NearMisses:       sum.NearMisses,
		MeteorsSpawned:   sum.MeteorsSpawned,
		MeteorsAvoided:   sum.MeteorsAvoided,
	})
	if err != nil {
		m.logger.Warn("could not record session end", "session", m.sessionID, "error", err)
	}
	m.logger.Info("session ended",
		"session", m.sessionID,
		"reason", reason,
		"duration_sec", fmt.Sprintf("%.1f", sum.DurationSec),
		"final_difficulty", fmt.Sprintf("%.2f", sum.FinalDifficulty),
	)
}

// forwardEvents timestamps simulation events and hands them to the recorder
// and the audio notifier.
func (m *Model) forwardEvents(events []core.Event) {
	if len(events) == 0 {
		return
	}
	now := time.Now().UTC()

	for _, ev := range events {
		if bf, ok := ev.(dodge.BlockFlushEvent); ok {
			m.recordBlock(bf.Block, now)
			continue
		}

		detail, err := json.Marshal(ev)
		if err != nil {
			detail = []byte("{}")
		}
		err = m.recorder.RecordEvent(telemetry.EventRecord{
			SessionID:  m.sessionID,
			At:         now,
			EventKind:  ev.Kind(),
			DetailJSON: string(detail),
		})
		if err != nil {
			m.logger.Warn("could not record event", "kind", ev.Kind(), "error", err)
		}

		if m.notifier != nil {
			pickup := ""
			if pe, ok := ev.(dodge.PowerUpPickupEvent); ok {
				pickup = pe.PowerUpKind
			}
			if cue, ok := audio.CueForEvent(ev.Kind(), pickup); ok {
				m.notifier.Play(cue)
			}
		}
	}
}

// recordBlock writes one metrics block, advancing the wall-clock block start.
func (m *Model) recordBlock(snap dodge.BlockSnapshot, now time.Time) {
	err := m.recorder.RecordBlock(telemetry.BlockRecord{
		SessionID:     m.sessionID,
		BlockIndex:    snap.Index,
		StartedAt:     m.blockStart,
		EndedAt:       now,
		DurationSec:   snap.DurationSec,
		DifficultyAvg: snap.DifficultyAvg,
		SpeedScaleAvg: snap.SpeedScaleAvg,
		Spawned:       snap.Spawned,
		Avoided:       snap.Avoided,
		Hits:          snap.Hits,
		NearMisses:    snap.NearMisses,
		MovementUnits: snap.MovementUnits,
		SuccessRate:   snap.SuccessRate,
	})
	if err != nil {
		m.logger.Warn("could not record block", "index", snap.Index, "error", err)
	}
	m.blockStart = now
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program for a single session and blocks until
// the player quits.
func Run(game SessionGame, recorder telemetry.Recorder, notifier *audio.Notifier,
	logger *log.Logger, cfg core.RuntimeConfig, info SessionInfo) error {

	model := NewModel(game, recorder, notifier, logger, cfg, info)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()

	// The player may close the terminal instead of pressing q; the session
	// still has to end exactly once, and endSession is idempotent.
	if fm, ok := final.(Model); ok {
		fm.endSession("disconnect")
	}
	return err
}
