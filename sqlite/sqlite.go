// Package sqlite provides a SQLite backend for the session store. Each turn is
// one row; its content blocks are stored as JSON.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/frame"
	framejson "github.com/fwojciec/frame/json"
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time interface check.
var _ frame.Backend = (*DB)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL,
		turn_index INTEGER NOT NULL,
		role TEXT NOT NULL,
		payload TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
		PRIMARY KEY (session_id, turn_index)
	);
`

// DB stores sessions in a SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return open(path)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Load reads every session with its turns in order.
func (d *DB) Load(ctx context.Context) (map[string][]frame.Turn, error) {
	sessions := make(map[string][]frame.Turn)

	rows, err := d.db.QueryContext(ctx, `SELECT session_id FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions[id] = []frame.Turn{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	rows.Close()

	rows, err = d.db.QueryContext(ctx, `SELECT session_id, payload FROM turns ORDER BY session_id, turn_index`)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn, err := framejson.UnmarshalTurn([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", id, err)
		}
		sessions[id] = append(sessions[id], turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return sessions, nil
}

// Save replaces the stored state with sessions in one transaction.
func (d *DB) Save(ctx context.Context, sessions map[string][]frame.Turn) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns`); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	insertSession, err := tx.PrepareContext(ctx, `INSERT INTO sessions (session_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare session insert: %w", err)
	}
	defer insertSession.Close()

	insertTurn, err := tx.PrepareContext(ctx, `INSERT INTO turns (session_id, turn_index, role, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare turn insert: %w", err)
	}
	defer insertTurn.Close()

	for id, turns := range sessions {
		if _, err := insertSession.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("insert session %q: %w", id, err)
		}
		for i, t := range turns {
			payload, err := framejson.MarshalTurn(t)
			if err != nil {
				return fmt.Errorf("session %q turn %d: %w", id, i, err)
			}
			if _, err := insertTurn.ExecContext(ctx, id, i, string(t.Role), string(payload)); err != nil {
				return fmt.Errorf("insert session %q turn %d: %w", id, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
