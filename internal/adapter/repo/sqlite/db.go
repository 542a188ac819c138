// Package sqlite stores runs, snapshots and events in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"timeherosim/internal/app/ports"
)

type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the database at path. SQLite allows one writer, so
// the pool holds a single connection.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sim_runs (
		run_id TEXT PRIMARY KEY,
		persona TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_snapshots (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		payload BLOB NOT NULL,
		saved_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS sim_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		occurred_at INTEGER NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sim_events_run ON sim_events(run_id, id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.ext(ctx).ExecContext(ctx,
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := sqlx.GetContext(ctx, db.ext(ctx), &value, "SELECT value FROM sim_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	return value, err
}

type txKey struct{}

func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.conn
}

// RunInTx implements ports.TxManager.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) Runs() RunRepo           { return RunRepo{db: db} }
func (db *DB) Snapshots() SnapshotRepo { return SnapshotRepo{db: db} }
func (db *DB) Events() EventRepo       { return EventRepo{db: db} }

// insertOnce runs an INSERT ... ON CONFLICT DO NOTHING and maps a skipped
// row to ErrConflict.
func insertOnce(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) error {
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrConflict
	}
	return nil
}
