package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/games/dodge"
	"github.com/vovakirdan/space-dodge/internal/telemetry"
)

// fakeRecorder captures everything the model records.
type fakeRecorder struct {
	starts []telemetry.SessionStart
	ends   []telemetry.SessionEnd
	blocks []telemetry.BlockRecord
	events []telemetry.EventRecord
}

func (f *fakeRecorder) RecordSessionStart(rec telemetry.SessionStart) error {
	f.starts = append(f.starts, rec)
	return nil
}

func (f *fakeRecorder) RecordSessionEnd(rec telemetry.SessionEnd) error {
	f.ends = append(f.ends, rec)
	return nil
}

func (f *fakeRecorder) RecordBlock(rec telemetry.BlockRecord) error {
	f.blocks = append(f.blocks, rec)
	return nil
}

func (f *fakeRecorder) RecordEvent(rec telemetry.EventRecord) error {
	f.events = append(f.events, rec)
	return nil
}

// stubGame is a minimal SessionGame whose behavior the tests script directly.
type stubGame struct {
	gameOver   bool
	pending    []core.Event
	finalBlock *dodge.BlockSnapshot
	resets     int
}

func (g *stubGame) ID() string    { return "stub" }
func (g *stubGame) Title() string { return "Stub" }

func (g *stubGame) Reset(cfg core.RuntimeConfig) {
	g.resets++
	g.gameOver = false
}

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	events := g.pending
	g.pending = nil
	return core.StepResult{
		State:  core.GameState{GameOver: g.gameOver},
		Events: events,
	}
}

func (g *stubGame) Render(dst *core.Screen) {}

func (g *stubGame) State() core.GameState {
	return core.GameState{GameOver: g.gameOver}
}

func (g *stubGame) Config() config.DodgeConfig { return config.DefaultDodgeConfig() }

func (g *stubGame) Summary() dodge.SessionSummary {
	return dodge.SessionSummary{DurationSec: 42.5, FinalDifficulty: 1.3, LivesRemaining: 1}
}

func (g *stubGame) FinalFlush() (dodge.BlockSnapshot, bool) {
	if g.finalBlock == nil {
		return dodge.BlockSnapshot{}, false
	}
	snap := *g.finalBlock
	g.finalBlock = nil
	return snap, true
}

func testModel(game SessionGame, rec telemetry.Recorder) Model {
	logger := log.New(io.Discard)
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}
	info := SessionInfo{SubjectID: "P01", Protocol: "v0.3-rehab"}
	return NewModel(game, rec, nil, logger, cfg, info)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRecordsSessionStart(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	testModel(game, rec)

	if game.resets != 1 {
		t.Fatalf("Expected one reset at model creation, got %d", game.resets)
	}
	if len(rec.starts) != 1 {
		t.Fatalf("Expected one session start, got %d", len(rec.starts))
	}
	start := rec.starts[0]
	if start.SubjectID != "P01" {
		t.Errorf("Start subject = %q, expected P01", start.SubjectID)
	}
	if !strings.HasPrefix(start.SessionID, "P01-") {
		t.Errorf("Session id %q should start with subject prefix", start.SessionID)
	}
	if !strings.Contains(start.ConfigJSON, "block_seconds") {
		t.Errorf("Config JSON should capture the effective tuning, got %q", start.ConfigJSON)
	}
}

func TestModelQuitEndsSessionOnce(t *testing.T) {
	rec := &fakeRecorder{}
	m := testModel(&stubGame{}, rec)

	next, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Error("Quit key should produce a command")
	}
	m = next.(Model)

	if len(rec.ends) != 1 {
		t.Fatalf("Expected one session end, got %d", len(rec.ends))
	}
	if rec.ends[0].DurationSec != 42.5 {
		t.Errorf("End duration = %.1f, expected 42.5", rec.ends[0].DurationSec)
	}

	// A second end attempt must not double-record
	m.endSession("disconnect")
	if len(rec.ends) != 1 {
		t.Errorf("Session end should be idempotent, got %d records", len(rec.ends))
	}
}

func TestModelForwardsEvents(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	m := testModel(game, rec)

	game.pending = []core.Event{
		dodge.NearMissEvent{DistanceUnits: 12},
		dodge.HitEvent{LivesAfter: 2, DifficultyAfter: 1.4},
	}
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)

	if len(rec.events) != 2 {
		t.Fatalf("Expected 2 recorded events, got %d", len(rec.events))
	}
	if rec.events[0].EventKind != "near_miss" {
		t.Errorf("First event kind = %q, expected near_miss", rec.events[0].EventKind)
	}
	if rec.events[0].SessionID != rec.starts[0].SessionID {
		t.Error("Events should carry the current session id")
	}
	if !strings.Contains(rec.events[1].DetailJSON, "\"lives_after\":2") {
		t.Errorf("Hit detail should carry lives, got %q", rec.events[1].DetailJSON)
	}
}

func TestModelRoutesBlocksToBlockRecords(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	m := testModel(game, rec)

	game.pending = []core.Event{
		dodge.BlockFlushEvent{Block: dodge.BlockSnapshot{Index: 0, DurationSec: 60, Spawned: 40}},
	}
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)

	if len(rec.events) != 0 {
		t.Errorf("Block flushes should not land in the event log, got %d events", len(rec.events))
	}
	if len(rec.blocks) != 1 {
		t.Fatalf("Expected 1 block record, got %d", len(rec.blocks))
	}
	b := rec.blocks[0]
	if b.BlockIndex != 0 || b.Spawned != 40 {
		t.Errorf("Block record fields wrong: %+v", b)
	}
	if b.EndedAt.Before(b.StartedAt) {
		t.Error("Block end must not precede its start")
	}
}

func TestModelGameOverEndsSessionWithFinalBlock(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	m := testModel(game, rec)

	game.gameOver = true
	game.finalBlock = &dodge.BlockSnapshot{Index: 2, DurationSec: 14.2, Hits: 1}
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)

	if len(rec.ends) != 1 {
		t.Fatalf("Game over should end the session, got %d ends", len(rec.ends))
	}
	if len(rec.blocks) != 1 {
		t.Fatalf("Trailing partial block should be flushed, got %d blocks", len(rec.blocks))
	}
	if rec.blocks[0].BlockIndex != 2 || rec.blocks[0].Hits != 1 {
		t.Errorf("Final block fields wrong: %+v", rec.blocks[0])
	}

	// Further ticks after game over must not end the session again
	next, _ = m.Update(TickMsg(time.Now()))
	_ = next
	if len(rec.ends) != 1 {
		t.Errorf("Expected 1 session end after extra ticks, got %d", len(rec.ends))
	}
}

func TestModelRestartOpensNewSession(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	m := testModel(game, rec)

	game.gameOver = true
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)

	next, _ = m.Update(keyMsg("r"))
	m = next.(Model)
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)

	if game.resets != 2 {
		t.Errorf("Restart should reset the game, got %d resets", game.resets)
	}
	if len(rec.starts) != 2 {
		t.Fatalf("Restart should open a new session, got %d starts", len(rec.starts))
	}
	if rec.starts[0].SessionID == rec.starts[1].SessionID {
		t.Error("Restarted session should get a fresh id")
	}
	if len(rec.ends) != 1 {
		t.Errorf("Expected exactly 1 end before the new session, got %d", len(rec.ends))
	}
}

func TestModelRestartIgnoredMidSession(t *testing.T) {
	rec := &fakeRecorder{}
	game := &stubGame{}
	m := testModel(game, rec)

	next, _ := m.Update(keyMsg("r"))
	m = next.(Model)
	next, _ = m.Update(TickMsg(time.Now()))
	_ = next

	if game.resets != 1 {
		t.Errorf("Restart must be ignored while playing, got %d resets", game.resets)
	}
	if len(rec.starts) != 1 {
		t.Errorf("No new session should open mid-run, got %d starts", len(rec.starts))
	}
}

func TestKeyMapperBindings(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg    tea.KeyMsg
		action core.Action
		isQuit bool
	}{
		{keyMsg("a"), core.ActionLeft, false},
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{keyMsg("d"), core.ActionRight, false},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight, false},
		{keyMsg("p"), core.ActionPause, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause, false},
		{keyMsg("r"), core.ActionRestart, false},
		{keyMsg("q"), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{keyMsg("x"), core.ActionNone, false},
	}

	for _, tc := range tests {
		action, isQuit := km.MapKey(tc.msg)
		if action != tc.action || isQuit != tc.isQuit {
			t.Errorf("MapKey(%q) = (%v, %v), expected (%v, %v)",
				tc.msg.String(), action, isQuit, tc.action, tc.isQuit)
		}
	}
}
