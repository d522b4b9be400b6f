package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/space-dodge/internal/telemetry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func startSession(t *testing.T, store *Store, id, subject string, at time.Time) {
	t.Helper()
	err := store.RecordSessionStart(telemetry.SessionStart{
		SessionID:  id,
		SubjectID:  subject,
		Protocol:   "v0.3-rehab",
		Notes:      "baseline",
		ConfigJSON: `{"field":{"width":1000}}`,
		StartedAt:  at,
	})
	if err != nil {
		t.Fatalf("RecordSessionStart() failed: %v", err)
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSessionLifecycle(t *testing.T) {
	store := openTestStore(t)

	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	startSession(t, store, "anon001-1", "anon001", started)

	// Open session: start fields present, end fields zero
	row, err := store.SessionByID("anon001-1")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if row == nil {
		t.Fatal("Session should exist after start")
	}
	if row.Ended {
		t.Error("Session should not be ended yet")
	}
	if row.SubjectID != "anon001" || row.Protocol != "v0.3-rehab" {
		t.Errorf("Session metadata wrong: %+v", row)
	}
	if !row.StartedAt.Equal(started) {
		t.Errorf("StartedAt should round-trip, got %v", row.StartedAt)
	}

	ended := started.Add(95 * time.Second)
	err = store.RecordSessionEnd(telemetry.SessionEnd{
		SessionID:        "anon001-1",
		EndedAt:          ended,
		DurationSec:      95.0,
		FinalDifficulty:  1.27,
		LivesRemaining:   0,
		ShieldsCollected: 2,
		NearMisses:       7,
		MeteorsSpawned:   80,
		MeteorsAvoided:   77,
	})
	if err != nil {
		t.Fatalf("RecordSessionEnd() failed: %v", err)
	}

	row, err = store.SessionByID("anon001-1")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if !row.Ended {
		t.Fatal("Session should be ended")
	}
	if !row.EndedAt.Equal(ended) {
		t.Errorf("EndedAt should round-trip, got %v", row.EndedAt)
	}
	if row.DurationSec != 95.0 || row.FinalDifficulty != 1.27 {
		t.Errorf("Summary fields wrong: %+v", row)
	}
	if row.MeteorsSpawned != 80 || row.MeteorsAvoided != 77 {
		t.Errorf("Counters wrong: %+v", row)
	}
}

func TestStoreSessionEndWithoutStart(t *testing.T) {
	store := openTestStore(t)

	err := store.RecordSessionEnd(telemetry.SessionEnd{SessionID: "ghost", EndedAt: time.Now()})
	if err == nil {
		t.Error("Ending an unknown session should fail")
	}
}

func TestStoreSessionNotFound(t *testing.T) {
	store := openTestStore(t)

	row, err := store.SessionByID("missing")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if row != nil {
		t.Error("Missing session should return nil")
	}
}

func TestStoreListSessions(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	startSession(t, store, "s1", "anon001", base)
	startSession(t, store, "s2", "anon002", base.Add(time.Hour))
	startSession(t, store, "s3", "anon001", base.Add(2*time.Hour))

	all, err := store.ListSessions("", 10)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(all))
	}
	// Newest first
	if all[0].SessionID != "s3" || all[2].SessionID != "s1" {
		t.Errorf("Sessions should be newest first: %s, %s, %s",
			all[0].SessionID, all[1].SessionID, all[2].SessionID)
	}

	filtered, err := store.ListSessions("anon001", 10)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("Subject filter should match 2 sessions, got %d", len(filtered))
	}

	limited, err := store.ListSessions("", 1)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(limited) != 1 || limited[0].SessionID != "s3" {
		t.Errorf("Limit should keep only the newest session, got %v", limited)
	}
}

func TestStoreBlocks(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	startSession(t, store, "s1", "anon001", base)

	rate := 0.95
	blocks := []telemetry.BlockRecord{
		{
			SessionID: "s1", BlockIndex: 0,
			StartedAt: base, EndedAt: base.Add(time.Minute),
			DurationSec: 60, DifficultyAvg: 1.1, SpeedScaleAvg: 0.97,
			Spawned: 40, Avoided: 38, Hits: 2, NearMisses: 3,
			MovementUnits: 5200, SuccessRate: &rate,
		},
		{
			SessionID: "s1", BlockIndex: 1,
			StartedAt: base.Add(time.Minute), EndedAt: base.Add(90 * time.Second),
			DurationSec: 30, DifficultyAvg: 1.4, SpeedScaleAvg: 1.0,
			MovementUnits: 2100,
		},
	}
	for _, b := range blocks {
		if err := store.RecordBlock(b); err != nil {
			t.Fatalf("RecordBlock() failed: %v", err)
		}
	}

	got, err := store.BlocksForSession("s1")
	if err != nil {
		t.Fatalf("BlocksForSession() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(got))
	}
	if got[0].BlockIndex != 0 || got[1].BlockIndex != 1 {
		t.Error("Blocks should come back in index order")
	}
	if got[0].SuccessRate == nil || *got[0].SuccessRate != 0.95 {
		t.Errorf("Success rate should round-trip, got %v", got[0].SuccessRate)
	}
	if got[1].SuccessRate != nil {
		t.Errorf("Nil success rate should stay nil, got %v", *got[1].SuccessRate)
	}
	if got[0].Spawned != 40 || got[0].Avoided != 38 {
		t.Errorf("Block counters wrong: %+v", got[0])
	}
	if !got[1].StartedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("Block timestamps should round-trip, got %v", got[1].StartedAt)
	}
}

func TestStoreEvents(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	startSession(t, store, "s1", "anon001", base)

	kinds := []string{"hit", "near_miss", "powerup_pickup"}
	for i, kind := range kinds {
		err := store.RecordEvent(telemetry.EventRecord{
			SessionID:  "s1",
			At:         base.Add(time.Duration(i) * time.Second),
			EventKind:  kind,
			DetailJSON: `{"n":` + string(rune('0'+i)) + `}`,
		})
		if err != nil {
			t.Fatalf("RecordEvent() failed: %v", err)
		}
	}

	events, err := store.EventsForSession("s1")
	if err != nil {
		t.Fatalf("EventsForSession() failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, kind := range kinds {
		if events[i].EventKind != kind {
			t.Errorf("Event %d should be %s, got %s", i, kind, events[i].EventKind)
		}
	}
	if events[0].DetailJSON != `{"n":0}` {
		t.Errorf("Detail JSON should round-trip, got %s", events[0].DetailJSON)
	}
}

func TestStoreSubjectStats(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	startSession(t, store, "s1", "anon001", base)
	startSession(t, store, "s2", "anon001", base.Add(time.Hour))
	startSession(t, store, "s3", "anon001", base.Add(2*time.Hour)) // never ends

	ends := []telemetry.SessionEnd{
		{SessionID: "s1", EndedAt: base.Add(time.Minute), DurationSec: 60,
			FinalDifficulty: 1.0, NearMisses: 2, ShieldsCollected: 1,
			MeteorsSpawned: 50, MeteorsAvoided: 47},
		{SessionID: "s2", EndedAt: base.Add(time.Hour + 2*time.Minute), DurationSec: 120,
			FinalDifficulty: 2.0, NearMisses: 4, ShieldsCollected: 0,
			MeteorsSpawned: 100, MeteorsAvoided: 95},
	}
	for _, e := range ends {
		if err := store.RecordSessionEnd(e); err != nil {
			t.Fatalf("RecordSessionEnd() failed: %v", err)
		}
	}

	stats, err := store.StatsForSubject("anon001")
	if err != nil {
		t.Fatalf("StatsForSubject() failed: %v", err)
	}
	if stats.SessionCount != 2 {
		t.Errorf("Open sessions should not count, got %d", stats.SessionCount)
	}
	if stats.TotalPlaySec != 180 {
		t.Errorf("Total play should be 180s, got %f", stats.TotalPlaySec)
	}
	if stats.BestSurvival != 120 {
		t.Errorf("Best survival should be 120s, got %f", stats.BestSurvival)
	}
	if stats.AvgDifficulty != 1.5 {
		t.Errorf("Average difficulty should be 1.5, got %f", stats.AvgDifficulty)
	}
	if stats.TotalNearMiss != 6 || stats.TotalShields != 1 {
		t.Errorf("Aggregate counters wrong: %+v", stats)
	}
	if stats.MeteorsSpawned != 150 || stats.MeteorsAvoided != 142 {
		t.Errorf("Meteor totals wrong: %+v", stats)
	}
}

func TestStoreDuplicateSessionStart(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().UTC()
	startSession(t, store, "s1", "anon001", base)

	err := store.RecordSessionStart(telemetry.SessionStart{
		SessionID: "s1", SubjectID: "anon001", StartedAt: base,
	})
	if err == nil {
		t.Error("Duplicate session_id should fail the unique constraint")
	}
}
