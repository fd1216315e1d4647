package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder keeps every archived failure payload in a SQLite table.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// RawPayload is one archived row.
type RawPayload struct {
	ID        int64
	Timestamp time.Time
	Endpoint  string
	Payload   string
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_payloads (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			endpoint  TEXT NOT NULL,
			payload   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_payloads_ts ON raw_payloads(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRawPayload(ctx context.Context, endpoint string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raw_payloads (timestamp, endpoint, payload) VALUES (?,?,?)`,
		time.Now().Unix(), endpoint, string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert raw payload: %w", err)
	}
	return nil
}

// Recent returns the newest archived payloads first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]RawPayload, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, endpoint, payload FROM raw_payloads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query raw payloads: %w", err)
	}
	defer rows.Close()

	var out []RawPayload
	for rows.Next() {
		var p RawPayload
		var ts int64
		if err := rows.Scan(&p.ID, &ts, &p.Endpoint, &p.Payload); err != nil {
			return nil, fmt.Errorf("scan raw payload: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
