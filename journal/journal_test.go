package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestJournalRecordTurn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	err = j.RecordTurn(ctx, Turn{
		Session:   "s1",
		Turn:      1,
		Mode:      "balanced",
		OwnScore:  4,
		OppScore:  7,
		Fixed:     []int{3},
		Beacons:   map[string]int{"3": 2},
		Directive: "BEACON 3 2",
		Duration:  1500 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}
	// Same turn again replaces the row.
	if err := j.RecordTurn(ctx, Turn{Session: "s1", Turn: 1, Mode: "favor_growth", Directive: "WAIT"}); err != nil {
		t.Fatalf("RecordTurn replace: %v", err)
	}
	if err := j.RecordTurn(ctx, Turn{Session: "s1", Turn: 2, Mode: "balanced", Directive: "WAIT"}); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	n, err := j.Turns(ctx, "s1")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if n != 2 {
		t.Fatalf("Turns = %d, want 2", n)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		mode      string
		fixed     string
		directive string
	)
	row := db.QueryRow(`SELECT mode, fixed_json, directive FROM turns WHERE session='s1' AND turn=1`)
	if err := row.Scan(&mode, &fixed, &directive); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if mode != "favor_growth" || fixed != "[]" || directive != "WAIT" {
		t.Fatalf("row mismatch: mode=%q fixed=%q directive=%q", mode, fixed, directive)
	}
}

func TestJournalRecordEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if err := j.RecordEvents(ctx, nil); err != nil {
		t.Fatalf("RecordEvents(nil): %v", err)
	}
	err = j.RecordEvents(ctx, []Event{
		{Session: "s1", Turn: 4, Kind: "mode_changed", Detail: "balanced -> favor_growth"},
		{Session: "s1", Turn: 4, Kind: "target_depleted", Detail: "cell 3"},
	})
	if err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.RecordEvents(ctx, []Event{{Session: "s1"}}); err == nil {
		t.Error("RecordEvents after Close should fail")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE session='s1' AND turn=4`).Scan(&n); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("events = %d, want 2", n)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("Open(\"\") should fail")
	}
}
