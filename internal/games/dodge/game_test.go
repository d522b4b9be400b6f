package dodge

import (
	"testing"

	"github.com/vovakirdan/space-dodge/internal/core"
)

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     12345,
	}
}

// plantMeteor drops a meteor directly onto the ship so the next step resolves
// a collision.
func plantMeteor(g *Game) {
	m := &Meteor{
		X: g.playerX,
		Y: g.playerTop() + float64(g.cfg.Player.Height)/2,
	}
	m.regenMask()
	g.meteors = append(g.meteors, m)
}

func eventsOfKind(events []core.Event, kind string) []core.Event {
	var out []core.Event
	for _, e := range events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestGameDeterminism(t *testing.T) {
	cfg := testConfig()

	inputSequence := make([]core.InputFrame, 600)
	for i := range inputSequence {
		inputSequence[i] = core.NewInputFrame()
		if i%7 < 3 {
			inputSequence[i].Set(core.ActionLeft)
		} else if i%7 < 6 {
			inputSequence[i].Set(core.ActionRight)
		}
	}

	run := func() Snapshot {
		g := New()
		g.Reset(cfg)
		for _, in := range inputSequence {
			g.Step(in)
		}
		return g.Snapshot()
	}

	snap1 := run()
	snap2 := run()

	if snap1 != snap2 {
		t.Errorf("Determinism failed:\nrun1=%+v\nrun2=%+v", snap1, snap2)
	}
	if snap1.Tick != 600 {
		t.Errorf("Both runs should reach tick 600, got %d", snap1.Tick)
	}
}

func TestGameSteadyRamp(t *testing.T) {
	// One tick per second makes the ramp arithmetic exact.
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 1, Seed: 1}

	g := New()
	g.Reset(cfg)

	g.Step(core.NewInputFrame())

	if !almostEqual(g.diff.Value(), 0.92, 1e-9) {
		t.Errorf("After 1s idle survival difficulty should be 0.92, got %f", g.diff.Value())
	}
}

func TestGameHitConsequences(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.diff.value = 2.0
	plantMeteor(g)

	result := g.Step(core.NewInputFrame())

	if g.lives != 2 {
		t.Errorf("Hit should cost one life, got %d", g.lives)
	}
	if !almostEqual(g.diff.Value(), 1.4, 1e-9) {
		t.Errorf("Hit at difficulty 2.0 should drop to 1.4, got %f", g.diff.Value())
	}
	if g.diff.Cooldown() != g.cfg.Difficulty.CooldownSec {
		t.Errorf("Hit should arm the full cooldown, got %f", g.diff.Cooldown())
	}
	if len(g.meteors) != 0 {
		t.Errorf("Hit should wipe the board, %d meteors left", len(g.meteors))
	}
	if g.invulnMs != g.cfg.Session.InvulnMs {
		t.Errorf("Hit should arm invulnerability, got %f", g.invulnMs)
	}
	if g.spawn.AccumMs() != 0 {
		t.Errorf("Hit should reset the spawn accumulator, got %f", g.spawn.AccumMs())
	}
	if !almostEqual(g.fall.Value(), 0.8, 1e-6) {
		t.Errorf("Hit should scale fall speed to 0.8, got %f", g.fall.Value())
	}
	if g.spawn.PenaltyMs() != 480 {
		t.Errorf("Hit should add the spawn penalty, got %f", g.spawn.PenaltyMs())
	}

	hits := eventsOfKind(result.Events, "hit")
	if len(hits) != 1 {
		t.Fatalf("Exactly one hit event should be emitted, got %d", len(hits))
	}
	he := hits[0].(HitEvent)
	if he.LivesAfter != 2 {
		t.Errorf("Hit event should carry remaining lives, got %d", he.LivesAfter)
	}
	if !almostEqual(he.DifficultyAfter, 1.4, 1e-9) {
		t.Errorf("Hit event should carry the dropped difficulty, got %f", he.DifficultyAfter)
	}
}

func TestGameInvulnerabilityBlocksHits(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	plantMeteor(g)
	g.Step(core.NewInputFrame())

	if g.lives != 2 {
		t.Fatalf("Setup hit failed, lives=%d", g.lives)
	}

	// Immediately planting another meteor must not cost a life while the
	// invulnerability window runs.
	plantMeteor(g)
	result := g.Step(core.NewInputFrame())

	if g.lives != 2 {
		t.Errorf("Invulnerability should block the second hit, lives=%d", g.lives)
	}
	if len(eventsOfKind(result.Events, "hit")) != 0 {
		t.Error("No hit event should be emitted while invulnerable")
	}
	if len(g.meteors) != 1 {
		t.Errorf("Untouched meteor should survive the frame, got %d", len(g.meteors))
	}
}

func TestGameSingleHitPerFrame(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	plantMeteor(g)
	plantMeteor(g)
	plantMeteor(g)

	result := g.Step(core.NewInputFrame())

	if g.lives != 2 {
		t.Errorf("Overlapping meteors should cost exactly one life, got lives=%d", g.lives)
	}
	if len(eventsOfKind(result.Events, "hit")) != 1 {
		t.Error("Exactly one hit event per frame")
	}
}

func TestGameOverFlushesFinalBlock(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.lives = 1

	// Accumulate enough play for the block to clear the noise floor.
	for i := 0; i < 30; i++ {
		g.Step(core.NewInputFrame())
	}

	plantMeteor(g)
	result := g.Step(core.NewInputFrame())

	if !result.State.GameOver {
		t.Fatal("Losing the last life should end the session")
	}
	if len(eventsOfKind(result.Events, "game_over")) != 1 {
		t.Error("Game over should emit a game_over event")
	}
	blocks := eventsOfKind(result.Events, "block")
	if len(blocks) != 1 {
		t.Fatalf("Game over should flush the final block, got %d", len(blocks))
	}
	block := blocks[0].(BlockFlushEvent).Block
	if block.DurationSec <= 0.25 {
		t.Errorf("Flushed block should exceed the noise floor, got %f", block.DurationSec)
	}
	if block.Hits != 1 {
		t.Errorf("Final block should carry the fatal hit, got %d", block.Hits)
	}

	// The platform's abrupt-end flush must not produce a second block.
	if _, ok := g.FinalFlush(); ok {
		t.Error("Final block must flush exactly once")
	}
}

func TestGameOverFreezesSimulation(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.lives = 1
	plantMeteor(g)
	g.Step(core.NewInputFrame())

	if !g.gameOver {
		t.Fatal("Setup should end the game")
	}

	tick := g.tick
	elapsed := g.elapsedMs
	g.Step(core.NewInputFrame())

	if g.tick != tick || g.elapsedMs != elapsed {
		t.Error("Simulation should freeze after game over")
	}
}

func TestGameRestartStartsFresh(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.lives = 1
	plantMeteor(g)
	g.Step(core.NewInputFrame())

	restart := core.NewInputFrame()
	restart.Set(core.ActionRestart)
	g.Step(restart)

	if g.gameOver {
		t.Error("Restart should clear game over")
	}
	if g.lives != g.cfg.Session.Lives {
		t.Errorf("Restart should restore lives, got %d", g.lives)
	}
	if g.tick != 0 || g.elapsedMs != 0 {
		t.Error("Restart should zero the clock")
	}
	if g.agg.hits != 0 || g.agg.spawned != 0 {
		t.Error("Restart should clear session counters")
	}
}

func TestGameRestartIgnoredWhilePlaying(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	for i := 0; i < 10; i++ {
		g.Step(core.NewInputFrame())
	}

	restart := core.NewInputFrame()
	restart.Set(core.ActionRestart)
	g.Step(restart)

	if g.tick != 11 {
		t.Errorf("Restart should be ignored mid-session, tick=%d", g.tick)
	}
}

func TestGameShieldAbsorbsHit(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.diff.value = 2.0
	g.shieldArmed = true
	plantMeteor(g)

	result := g.Step(core.NewInputFrame())

	if g.lives != g.cfg.Session.Lives {
		t.Errorf("Shield should absorb the hit, lives=%d", g.lives)
	}
	if g.shieldArmed {
		t.Error("Shield should be consumed")
	}
	if len(g.meteors) != 0 {
		t.Errorf("Absorbed meteor should be destroyed, %d left", len(g.meteors))
	}
	if len(eventsOfKind(result.Events, "hit")) != 0 {
		t.Error("No hit event when the shield absorbs")
	}
	if len(eventsOfKind(result.Events, "shield_used")) != 1 {
		t.Error("Shield absorption should emit shield_used")
	}
	// Difficulty is untouched apart from the normal frame ramp.
	if g.diff.Value() < 2.0 {
		t.Errorf("Shield absorption should not drop difficulty, got %f", g.diff.Value())
	}
}

func TestGameShieldAbsorbEndsCollisionScan(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.shieldArmed = true
	plantMeteor(g)
	plantMeteor(g)

	result := g.Step(core.NewInputFrame())

	if g.lives != g.cfg.Session.Lives {
		t.Errorf("Second overlapping meteor must not cost a life after an absorb, lives=%d", g.lives)
	}
	if len(eventsOfKind(result.Events, "hit")) != 0 {
		t.Error("One frame must not produce both a shield consume and a hit")
	}
	if len(eventsOfKind(result.Events, "shield_used")) != 1 {
		t.Error("Exactly one shield_used expected")
	}
	if g.shieldArmed {
		t.Error("Shield should be consumed")
	}
	if len(g.meteors) != 1 {
		t.Errorf("The unresolved meteor should survive the frame, %d left", len(g.meteors))
	}
	if g.invulnMs != 0 {
		t.Error("A pure absorb frame must not grant invulnerability")
	}
}

func TestGamePauseFreezesEverything(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	for i := 0; i < 5; i++ {
		g.Step(core.NewInputFrame())
	}

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	result := g.Step(pause)

	if !result.State.Paused {
		t.Fatal("Pause action should pause the game")
	}

	snap := g.Snapshot()
	for i := 0; i < 10; i++ {
		g.Step(core.NewInputFrame())
	}
	if g.Snapshot() != snap {
		t.Error("Nothing should advance while paused")
	}

	g.Step(pause)
	if g.paused {
		t.Error("Pause action should toggle back to playing")
	}
}

func TestGameNearMissOnce(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	// A meteor falling 20 units off the ship's center line while the ship
	// is invulnerable: it passes through instead of colliding, and the
	// crossing registers a single near miss.
	g.invulnMs = 1e9
	m := &Meteor{
		X: g.playerX + 20,
		Y: g.playerTop() - 20,
	}
	m.regenMask()
	g.meteors = append(g.meteors, m)

	total := 0
	for i := 0; i < 300 && len(g.meteors) > 0; i++ {
		result := g.Step(core.NewInputFrame())
		total += len(eventsOfKind(result.Events, "near_miss"))
	}

	if len(g.meteors) != 0 {
		t.Fatal("Meteor should have fallen off screen")
	}
	if total != 1 {
		t.Errorf("A close pass should register exactly one near miss, got %d", total)
	}
	if g.agg.nearMisses != 1 {
		t.Errorf("Near miss should be counted once, got %d", g.agg.nearMisses)
	}
	if g.agg.avoided != 1 {
		t.Errorf("The passed meteor should count as avoided, got %d", g.agg.avoided)
	}
}

func TestGameFarPassNoNearMiss(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	m := &Meteor{X: 100, Y: g.playerTop() - 20}
	m.regenMask()
	g.meteors = append(g.meteors, m)

	for i := 0; i < 300 && len(g.meteors) > 0; i++ {
		g.Step(core.NewInputFrame())
	}

	if g.agg.nearMisses != 0 {
		t.Errorf("A far pass should not register a near miss, got %d", g.agg.nearMisses)
	}
	if g.agg.avoided != 1 {
		t.Errorf("The passed meteor should count as avoided, got %d", g.agg.avoided)
	}
}

func TestGamePlayerMovementClamped(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	left := core.NewInputFrame()
	left.Set(core.ActionLeft)
	for i := 0; i < 1000; i++ {
		g.Step(left)
	}

	half := float64(g.cfg.Player.Width) / 2
	if g.playerX != half {
		t.Errorf("Player should clamp at the left edge, got %f", g.playerX)
	}

	right := core.NewInputFrame()
	right.Set(core.ActionRight)
	for i := 0; i < 1000; i++ {
		g.Step(right)
	}
	if g.playerX != float64(g.cfg.Field.Width)-half {
		t.Errorf("Player should clamp at the right edge, got %f", g.playerX)
	}
}

func TestGameMeteorsEventuallySpawn(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	// Initial interval is 1.6s; three seconds of play guarantees a wave.
	for i := 0; i < 180; i++ {
		g.Step(core.NewInputFrame())
	}

	if g.agg.spawned < 2 {
		t.Errorf("At least one wave should spawn in 3s, spawned=%d", g.agg.spawned)
	}
	if len(g.meteors) == 0 && g.agg.avoided == 0 && g.agg.hits == 0 {
		t.Error("Spawned meteors should be live, avoided, or hit")
	}
}

func TestGameSlowMoScalesVelocity(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	m := &Meteor{X: 500, Y: 100}
	m.regenMask()
	g.meteors = append(g.meteors, m)
	g.Step(core.NewInputFrame())
	normalDrop := g.meteors[0].Y - 100

	g2 := New()
	g2.Reset(cfg)
	m2 := &Meteor{X: 500, Y: 100}
	m2.regenMask()
	g2.meteors = append(g2.meteors, m2)
	g2.slowMoMs = g2.cfg.PowerUps.SlowMoDurationMs
	g2.Step(core.NewInputFrame())
	slowDrop := g2.meteors[0].Y - 100

	want := normalDrop * g2.cfg.PowerUps.SlowMoFactor
	if !almostEqual(slowDrop, want, 1e-6) {
		t.Errorf("Slow-mo should scale fall to %f, got %f", want, slowDrop)
	}
}

func TestGamePracticePresetDisablesRamp(t *testing.T) {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 1, Seed: 1}

	g := NewPractice()
	g.Reset(cfg)

	start := g.diff.Value()
	for i := 0; i < 10; i++ {
		g.Step(core.NewInputFrame())
	}
	if g.diff.Value() != start {
		t.Errorf("Practice difficulty should never ramp, got %f", g.diff.Value())
	}

	// Hits still drop difficulty for relief.
	plantMeteor(g)
	g.Step(core.NewInputFrame())
	if g.diff.Value() >= start {
		t.Errorf("Practice hits should still drop difficulty, got %f", g.diff.Value())
	}
}

func TestGameScoreIsSurvivalSeconds(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	for i := 0; i < 120; i++ {
		g.Step(core.NewInputFrame())
	}

	if got := g.State().Score; got != 2 {
		t.Errorf("120 ticks at 60fps should score 2 seconds, got %d", got)
	}
}

func TestGameRender(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	g.Step(core.NewInputFrame())

	screen := core.NewScreen(cfg.ScreenW, cfg.ScreenH)
	g.Render(screen)

	row := screen.Row(0)
	if len(row) == 0 || row[:4] != "TIME" {
		t.Errorf("HUD should start with TIME, got %q", row)
	}

	hasShip := false
	for y := hudRows; y < cfg.ScreenH; y++ {
		for x := 0; x < cfg.ScreenW; x++ {
			if screen.Get(x, y) == '█' {
				hasShip = true
			}
		}
	}
	if !hasShip {
		t.Error("The ship should be drawn on the playfield")
	}
}

func TestGameSummary(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)
	for i := 0; i < 60; i++ {
		g.Step(core.NewInputFrame())
	}
	plantMeteor(g)
	g.Step(core.NewInputFrame())

	sum := g.Summary()
	if sum.LivesRemaining != 2 {
		t.Errorf("Summary should report 2 lives, got %d", sum.LivesRemaining)
	}
	if sum.DurationSec <= 1.0 {
		t.Errorf("Summary duration should exceed 1s, got %f", sum.DurationSec)
	}
	if sum.FinalDifficulty != g.diff.Value() {
		t.Errorf("Summary should carry the final difficulty")
	}
}

func TestGameCounterConservation(t *testing.T) {
	cfg := testConfig()

	g := New()
	g.Reset(cfg)

	// Every spawned meteor is live, avoided, or destroyed by a collision or
	// wipe; nothing is ever double counted. Soak the invariant over a long
	// seeded run with mixed movement.
	prev := g.Snapshot()
	for i := 0; i < 4000; i++ {
		in := core.NewInputFrame()
		if i%10 < 4 {
			in.Set(core.ActionLeft)
		} else if i%10 < 8 {
			in.Set(core.ActionRight)
		}
		g.Step(in)

		snap := g.Snapshot()
		if snap.Avoided+snap.MeteorCount > snap.Spawned {
			t.Fatalf("Tick %d: avoided %d + live %d exceeds spawned %d",
				i, snap.Avoided, snap.MeteorCount, snap.Spawned)
		}
		if snap.Spawned < prev.Spawned || snap.Avoided < prev.Avoided ||
			snap.Hits < prev.Hits || snap.NearMisses < prev.NearMisses {
			t.Fatalf("Tick %d: a session counter decreased: %+v -> %+v", i, prev, snap)
		}
		prev = snap

		if snap.Phase == PhaseGameOver {
			break
		}
	}
}
