// Package journal records what the engine decided, one row per turn plus one
// row per turn event, in a SQLite file that can be inspected after a match.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Turn is one decision pass.
type Turn struct {
	Session   string
	Turn      int
	Mode      string
	OwnScore  int
	OppScore  int
	Fixed     []int
	Beacons   any // encoded as JSON
	Directive string
	Duration  time.Duration
}

// Event is one notable change between two turns.
type Event struct {
	Session string
	Turn    int
	Kind    string
	Detail  string
}

type Journal struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			session TEXT NOT NULL,
			turn INTEGER NOT NULL,
			mode TEXT NOT NULL,
			own_score INTEGER NOT NULL,
			opp_score INTEGER NOT NULL,
			fixed_json TEXT NOT NULL,
			beacons_json TEXT NOT NULL,
			directive TEXT NOT NULL,
			duration_us INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (session, turn)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			turn INTEGER NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS events_session_turn ON events(session, turn);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// RecordTurn stores a turn. Recording the same session and turn twice
// replaces the earlier row.
func (j *Journal) RecordTurn(ctx context.Context, t Turn) error {
	fixed, err := json.Marshal(nonNil(t.Fixed))
	if err != nil {
		return fmt.Errorf("marshal fixed: %w", err)
	}
	beacons, err := json.Marshal(t.Beacons)
	if err != nil {
		return fmt.Errorf("marshal beacons: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return fmt.Errorf("journal closed")
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO turns
			(session, turn, mode, own_score, opp_score, fixed_json, beacons_json, directive, duration_us, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Session, t.Turn, t.Mode, t.OwnScore, t.OppScore,
		string(fixed), string(beacons), t.Directive,
		t.Duration.Microseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert turn %d: %w", t.Turn, err)
	}
	return nil
}

// RecordEvents stores the events of one turn in a single transaction.
func (j *Journal) RecordEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return fmt.Errorf("journal closed")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events (session, turn, kind, detail) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.Session, e.Turn, e.Kind, e.Detail); err != nil {
			return fmt.Errorf("insert event %s: %w", e.Kind, err)
		}
	}
	return tx.Commit()
}

// Turns returns the recorded turn count for a session.
func (j *Journal) Turns(ctx context.Context, session string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE session = ?`, session).Scan(&n)
	return n, err
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
