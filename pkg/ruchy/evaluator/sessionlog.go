package evaluator

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// SessionLog persists script log output in a SQLite database so entries
// survive the interpreter process and can be inspected later.
type SessionLog struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// SessionLogEntry is one persisted log line.
type SessionLogEntry struct {
	ID      int64
	Level   string
	Message string
	Created time.Time
}

// OpenSessionLog opens (creating if needed) the log database at path.
func OpenSessionLog(path string) (*SessionLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to session log: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	const schema = `CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating log schema: %w", err)
	}

	return &SessionLog{db: db, path: path}, nil
}

// Write appends one entry.
func (sl *SessionLog) Write(level, message string) error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	_, err := sl.db.Exec(`INSERT INTO logs (level, message) VALUES (?, ?)`, level, message)
	return err
}

// Recent returns the newest n entries, oldest first.
func (sl *SessionLog) Recent(n int) ([]SessionLogEntry, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	rows, err := sl.db.Query(`
		SELECT id, level, message, created FROM (
			SELECT id, level, message, created FROM logs ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SessionLogEntry
	for rows.Next() {
		var e SessionLogEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Message, &e.Created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (sl *SessionLog) Close() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.db.Close()
}

// Path returns the database file location.
func (sl *SessionLog) Path() string { return sl.path }
