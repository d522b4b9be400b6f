// Package storage provides SQLite-based persistence for session telemetry.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/space-dodge/internal/telemetry"
)

// Store manages the SQLite database connection for telemetry persistence.
// It implements telemetry.Recorder so the platform can log sessions without
// a direct storage dependency.
type Store struct {
	db *sql.DB
}

// SessionRow is one recorded session, joined from its start and end records.
// End fields are zero-valued while a session is still open.
type SessionRow struct {
	ID         int64
	SessionID  string
	SubjectID  string
	Protocol   string
	Notes      string
	ConfigJSON string
	StartedAt  time.Time

	Ended            bool
	EndedAt          time.Time
	DurationSec      float64
	FinalDifficulty  float64
	LivesRemaining   int
	ShieldsCollected int
	NearMisses       int
	MeteorsSpawned   int
	MeteorsAvoided   int
}

// BlockRow is one stored metrics block.
type BlockRow struct {
	ID int64
	telemetry.BlockRecord
}

// EventRow is one stored discrete event.
type EventRow struct {
	ID int64
	telemetry.EventRecord
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			subject_id TEXT NOT NULL,
			protocol TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			config_json TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT,
			duration_sec REAL NOT NULL DEFAULT 0,
			final_difficulty REAL NOT NULL DEFAULT 0,
			lives_remaining INTEGER NOT NULL DEFAULT 0,
			shields_collected INTEGER NOT NULL DEFAULT 0,
			near_misses INTEGER NOT NULL DEFAULT 0,
			meteors_spawned INTEGER NOT NULL DEFAULT 0,
			meteors_avoided INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_subject ON sessions(subject_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);

		CREATE TABLE IF NOT EXISTS blocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			block_index INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_sec REAL NOT NULL,
			difficulty_avg REAL NOT NULL,
			speed_scale_avg REAL NOT NULL,
			spawned INTEGER NOT NULL,
			avoided INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			near_misses INTEGER NOT NULL,
			movement_units INTEGER NOT NULL,
			success_rate REAL
		);
		CREATE INDEX IF NOT EXISTS idx_blocks_session ON blocks(session_id, block_index);

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at TEXT NOT NULL,
			event_kind TEXT NOT NULL,
			detail_json TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeLayout is how timestamps are stored. RFC3339 sorts lexicographically,
// so the started_at index doubles as a chronological one.
const timeLayout = time.RFC3339Nano

// parseTime handles both time.Time and string values returned by the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// RecordSessionStart implements telemetry.Recorder.
func (s *Store) RecordSessionStart(rec telemetry.SessionStart) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, subject_id, protocol, notes, config_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.SubjectID, rec.Protocol, rec.Notes, rec.ConfigJSON,
		rec.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record session start: %w", err)
	}
	return nil
}

// RecordSessionEnd implements telemetry.Recorder.
func (s *Store) RecordSessionEnd(rec telemetry.SessionEnd) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET
			ended_at = ?, duration_sec = ?, final_difficulty = ?,
			lives_remaining = ?, shields_collected = ?, near_misses = ?,
			meteors_spawned = ?, meteors_avoided = ?
		 WHERE session_id = ?`,
		rec.EndedAt.Format(timeLayout), rec.DurationSec, rec.FinalDifficulty,
		rec.LivesRemaining, rec.ShieldsCollected, rec.NearMisses,
		rec.MeteorsSpawned, rec.MeteorsAvoided,
		rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record session end: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: session %s has no start record", rec.SessionID)
	}
	return nil
}

// RecordBlock implements telemetry.Recorder.
func (s *Store) RecordBlock(rec telemetry.BlockRecord) error {
	var rate any
	if rec.SuccessRate != nil {
		rate = *rec.SuccessRate
	}
	_, err := s.db.Exec(
		`INSERT INTO blocks
		 (session_id, block_index, started_at, ended_at, duration_sec,
		  difficulty_avg, speed_scale_avg, spawned, avoided, hits,
		  near_misses, movement_units, success_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.BlockIndex,
		rec.StartedAt.Format(timeLayout), rec.EndedAt.Format(timeLayout),
		rec.DurationSec, rec.DifficultyAvg, rec.SpeedScaleAvg,
		rec.Spawned, rec.Avoided, rec.Hits, rec.NearMisses, rec.MovementUnits,
		rate,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record block: %w", err)
	}
	return nil
}

// RecordEvent implements telemetry.Recorder.
func (s *Store) RecordEvent(rec telemetry.EventRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO events (session_id, at, event_kind, detail_json)
		 VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.At.Format(timeLayout), rec.EventKind, rec.DetailJSON,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record event: %w", err)
	}
	return nil
}

var _ telemetry.Recorder = (*Store)(nil)

const sessionColumns = `id, session_id, subject_id, protocol, notes, config_json,
	started_at, ended_at, duration_sec, final_difficulty, lives_remaining,
	shields_collected, near_misses, meteors_spawned, meteors_avoided`

func scanSession(scan func(...any) error) (SessionRow, error) {
	var r SessionRow
	var startedAt, endedAt any
	err := scan(
		&r.ID, &r.SessionID, &r.SubjectID, &r.Protocol, &r.Notes, &r.ConfigJSON,
		&startedAt, &endedAt, &r.DurationSec, &r.FinalDifficulty, &r.LivesRemaining,
		&r.ShieldsCollected, &r.NearMisses, &r.MeteorsSpawned, &r.MeteorsAvoided,
	)
	if err != nil {
		return r, err
	}
	r.StartedAt = parseTime(startedAt)
	if endedAt != nil {
		r.Ended = true
		r.EndedAt = parseTime(endedAt)
	}
	return r, nil
}

// ListSessions retrieves the most recent sessions, newest first. An empty
// subjectID matches all subjects.
func (s *Store) ListSessions(subjectID string, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	args := []any{}
	if subjectID != "" {
		query += ` WHERE subject_id = ?`
		args = append(args, subjectID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		r, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan session: %w", err)
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return sessions, nil
}

// SessionByID retrieves a single session. Returns nil when not found.
func (s *Store) SessionByID(sessionID string) (*SessionRow, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID)

	r, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &r, nil
}

// BlocksForSession retrieves all blocks of a session in block order.
func (s *Store) BlocksForSession(sessionID string) ([]BlockRow, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, block_index, started_at, ended_at, duration_sec,
		        difficulty_avg, speed_scale_avg, spawned, avoided, hits,
		        near_misses, movement_units, success_rate
		 FROM blocks
		 WHERE session_id = ?
		 ORDER BY block_index`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []BlockRow
	for rows.Next() {
		var b BlockRow
		var startedAt, endedAt any
		var rate sql.NullFloat64
		if err := rows.Scan(
			&b.ID, &b.SessionID, &b.BlockIndex, &startedAt, &endedAt, &b.DurationSec,
			&b.DifficultyAvg, &b.SpeedScaleAvg, &b.Spawned, &b.Avoided, &b.Hits,
			&b.NearMisses, &b.MovementUnits, &rate,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan block: %w", err)
		}
		b.StartedAt = parseTime(startedAt)
		b.EndedAt = parseTime(endedAt)
		if rate.Valid {
			v := rate.Float64
			b.SuccessRate = &v
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return blocks, nil
}

// EventsForSession retrieves all events of a session in time order.
func (s *Store) EventsForSession(sessionID string) ([]EventRow, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, at, event_kind, detail_json
		 FROM events
		 WHERE session_id = ?
		 ORDER BY at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var at any
		if err := rows.Scan(&e.ID, &e.SessionID, &at, &e.EventKind, &e.DetailJSON); err != nil {
			return nil, fmt.Errorf("storage: cannot scan event: %w", err)
		}
		e.At = parseTime(at)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return events, nil
}

// SubjectStats contains aggregated statistics for one subject.
type SubjectStats struct {
	SubjectID      string
	SessionCount   int
	TotalPlaySec   float64
	BestSurvival   float64
	AvgDifficulty  float64
	TotalNearMiss  int
	TotalShields   int
	MeteorsSpawned int
	MeteorsAvoided int
}

// StatsForSubject aggregates all finished sessions of a subject.
func (s *Store) StatsForSubject(subjectID string) (*SubjectStats, error) {
	stats := &SubjectStats{SubjectID: subjectID}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(duration_sec), 0),
		        COALESCE(MAX(duration_sec), 0),
		        COALESCE(AVG(final_difficulty), 0),
		        COALESCE(SUM(near_misses), 0),
		        COALESCE(SUM(shields_collected), 0),
		        COALESCE(SUM(meteors_spawned), 0),
		        COALESCE(SUM(meteors_avoided), 0)
		 FROM sessions
		 WHERE subject_id = ? AND ended_at IS NOT NULL`,
		subjectID,
	).Scan(
		&stats.SessionCount, &stats.TotalPlaySec, &stats.BestSurvival,
		&stats.AvgDifficulty, &stats.TotalNearMiss, &stats.TotalShields,
		&stats.MeteorsSpawned, &stats.MeteorsAvoided,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get subject stats: %w", err)
	}
	return stats, nil
}
