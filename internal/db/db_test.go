package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestInitDBCreatesFileAndSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "devflow.db")

	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	var count int
	r := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='automations'")
	if err := r.Scan(&count); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected table 'automations' to exist")
	}

	// Basic smoke test: ensure we can insert an automation
	if _, err := db.Exec("INSERT INTO automations (id, name, data, created_at, updated_at) VALUES (?, ?, ?, datetime('now'), datetime('now'))", "id-1", "deploy", "{}"); err != nil {
		t.Fatalf("insert automation failed: %v", err)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "devflow.db"))
	if err != nil {
		t.Fatalf("InitDB() error: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT count(*) FROM pragma_table_info('automations') WHERE name IN ('last_run', 'run_count')").Scan(&n); err != nil {
		t.Fatalf("table info: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected run bookkeeping columns, got %d", n)
	}
}

func TestTriggersRejectBadInserts(t *testing.T) {
	// in-memory DB
	db, err := sql.Open("sqlite", "file:test_triggers?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	insert := "INSERT INTO automations (id, name, data, created_at, updated_at) VALUES (?, ?, ?, datetime('now'), datetime('now'))"

	// empty name insert should fail
	if _, err := db.Exec(insert, "a", "   ", "{}"); err == nil {
		t.Fatalf("expected insert with empty name to be rejected by trigger")
	}
	// blob name insert should fail
	if _, err := db.Exec(insert, "b", []byte{0xff, 0xfe}, "{}"); err == nil {
		t.Fatalf("expected blob insert to be rejected by trigger")
	}
	// invalid JSON data should fail
	if _, err := db.Exec(insert, "c", "valid", "{not json"); err == nil {
		t.Fatalf("expected invalid data to be rejected by trigger")
	}
	// good insert should succeed
	if _, err := db.Exec(insert, "d", "valid", `{"id":"d"}`); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
}
