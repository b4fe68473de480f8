package journal

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the command_journal schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "journal-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE command_journal (
			id          TEXT PRIMARY KEY,
			light_id    TEXT NOT NULL,
			action      TEXT NOT NULL,
			payload     TEXT,
			delivered   INTEGER NOT NULL,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX idx_command_journal_light ON command_journal(light_id);
		CREATE INDEX idx_command_journal_action ON command_journal(action);
		CREATE INDEX idx_command_journal_created ON command_journal(created_at);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying journal migration: %v", err)
	}

	return db
}

func TestRepository_CreateGeneratesIDAndTimestamp(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	entry := &Entry{
		LightID:   "light_1",
		Action:    "set_status",
		Payload:   map[string]any{"status": "red"},
		Delivered: true,
	}

	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if entry.ID == "" {
		t.Fatal("Create() should generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("Create() should set CreatedAt")
	}
}

func TestRepository_ListRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	entry := &Entry{
		LightID:   "light_2",
		Action:    "set_mode",
		Payload:   map[string]any{"mode": "manual"},
		Delivered: true,
		CreatedAt: time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1", result.Total)
	}
	got := result.Entries[0]
	if got.LightID != "light_2" || got.Action != "set_mode" {
		t.Errorf("entry = %+v, want light_2/set_mode", got)
	}
	if !got.Delivered {
		t.Error("Delivered should round-trip as true")
	}
	if got.Payload["mode"] != "manual" {
		t.Errorf("Payload[mode] = %v, want manual", got.Payload["mode"])
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, entry.CreatedAt)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	seed := []Entry{
		{LightID: "light_1", Action: "set_status", Delivered: true},
		{LightID: "light_1", Action: "set_mode", Delivered: true},
		{LightID: "light_2", Action: "set_status", Delivered: false},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("seeding entry %d: %v", i, err)
		}
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
	}{
		{"all", Filter{}, 3},
		{"by light", Filter{LightID: "light_1"}, 2},
		{"by action", Filter{Action: "set_status"}, 2},
		{"by light and action", Filter{LightID: "light_2", Action: "set_status"}, 1},
		{"no match", Filter{LightID: "light_9"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", result.Total, tt.wantTotal)
			}
			if len(result.Entries) != tt.wantTotal {
				t.Errorf("len(Entries) = %d, want %d", len(result.Entries), tt.wantTotal)
			}
		})
	}
}

func TestRepository_ListPagination(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	base := time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := &Entry{
			LightID:   "light_1",
			Action:    "set_status",
			Delivered: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("seeding entry %d: %v", i, err)
		}
	}

	result, err := repo.List(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(result.Entries))
	}
	// Most recent first; offset 1 skips the newest.
	want := base.Add(3 * time.Minute)
	if !result.Entries[0].CreatedAt.Equal(want) {
		t.Errorf("Entries[0].CreatedAt = %v, want %v", result.Entries[0].CreatedAt, want)
	}
}

func TestRepository_ListEmptyReturnsEmptySlice(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
	if result.Limit != 50 {
		t.Errorf("default Limit = %d, want 50", result.Limit)
	}
}
