package lishp

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry records one evaluation: the input line, its printed result and the
// kind of the result value.
type Entry struct {
	ID        int64
	RequestID string
	Input     string
	Result    string
	Kind      string
	Timestamp string // RFC 3339, UTC
}

// ToGo converts an Entry for JSON responses.
func (e Entry) ToGo() map[string]any {
	return map[string]any{
		"id":         e.ID,
		"request_id": e.RequestID,
		"input":      e.Input,
		"result":     e.Result,
		"kind":       e.Kind,
		"timestamp":  e.Timestamp,
	}
}

const historySchema = `CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	input      TEXT NOT NULL,
	result     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// History is the SQLite-backed evaluation log.
type History struct {
	db   *sql.DB
	path string
}

// OpenHistory opens (or creates) the history database at path. ":memory:"
// gives a private in-memory store.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// One connection: writes come from a single actor and ":memory:" is
	// per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}
	return &History{db: db, path: path}, nil
}

// Record appends e. ID is assigned by the store and Timestamp defaults to
// now.
func (h *History) Record(e Entry) (int64, error) {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := h.db.Exec(
		`INSERT INTO history (request_id, input, result, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.RequestID, e.Input, e.Result, e.Kind, e.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}
	return id, nil
}

// Recent returns the last limit entries, oldest first.
func (h *History) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	rows, err := h.db.Query(
		`SELECT id, request_id, input, result, kind, created_at FROM history ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Input, &e.Result, &e.Kind, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	if entries == nil {
		return []Entry{}, nil
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Clear deletes every entry.
func (h *History) Clear() error {
	if _, err := h.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
