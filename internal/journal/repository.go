// Package journal provides access to the command_journal table,
// recording every command handed to the simulation mailbox.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single journalled command.
type Entry struct {
	ID        string         `json:"id"`
	LightID   string         `json:"light_id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
	Delivered bool           `json:"delivered"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filter controls which journal entries to return.
type Filter struct {
	LightID string // optional: filter by target light
	Action  string // optional: filter by action (set_status, set_mode, ...)
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// ListResult contains the paginated journal results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for command journal operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores journal entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new command journal repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new journal entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "cmd-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var payloadJSON *string
	if entry.Payload != nil {
		b, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("marshalling journal payload: %w", err)
		}
		s := string(b)
		payloadJSON = &s
	}

	delivered := 0
	if entry.Delivered {
		delivered = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_journal (id, light_id, action, payload, delivered, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.LightID, entry.Action,
		payloadJSON, delivered,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	return nil
}

// List returns journal entries matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for journal queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.LightID != "" {
		conditions = append(conditions, "light_id = ?")
		args = append(args, filter.LightID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is built from parameterised conditions (? placeholders) — no user input in SQL string.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM command_journal %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting journal entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, light_id, action, payload, delivered, created_at FROM command_journal %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var payloadJSON sql.NullString
		var delivered int
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.LightID, &entry.Action,
			&payloadJSON, &delivered, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}

		entry.Delivered = delivered != 0

		if payloadJSON.Valid && payloadJSON.String != "" {
			var payload map[string]any
			if json.Unmarshal([]byte(payloadJSON.String), &payload) == nil {
				entry.Payload = payload
			}
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", createdAt, err)
		}
		entry.CreatedAt = t

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
