// Package store persists daemon state in a single SQLite file: the timer
// registrations that must outlive the process, and the capability grants the
// user has recorded.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/timer"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id         INTEGER PRIMARY KEY,
	trigger_at INTEGER NOT NULL,
	payload    TEXT    NOT NULL,
	cron       TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS registrations_trigger ON registrations(trigger_at);
CREATE TABLE IF NOT EXISTS grants (
	capability TEXT PRIMARY KEY,
	granted_at INTEGER NOT NULL
);
`

// DB is the SQLite-backed store.
type DB struct {
	db *sql.DB
}

var _ timer.Store = (*DB)(nil)

// Open opens (or creates) the database at path and applies the schema.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("error: cannot create store dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open alarm store: %w", err)
	}
	// One writer keeps the conditional claims in Consume/Advance serialized,
	// and keeps ":memory:" on a single shared connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot apply store schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put inserts or replaces the registration with the same id.
func (d *DB) Put(ctx context.Context, r timer.Registration) error {
	payload, err := json.Marshal(r.Alarm)
	if err != nil {
		return fmt.Errorf("encode alarm %d: %w", r.ID, err)
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO registrations (id, trigger_at, payload, cron) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET trigger_at = excluded.trigger_at,
			payload = excluded.payload, cron = excluded.cron`,
		r.ID, r.TriggerAt.UnixMilli(), string(payload), r.CronExpr)
	return err
}

// Delete removes the registration for id.
func (d *DB) Delete(ctx context.Context, id int) (bool, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Consume deletes r only if it is still the stored registration for r.ID.
func (d *DB) Consume(ctx context.Context, r timer.Registration) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE id = ? AND trigger_at = ?`,
		r.ID, r.TriggerAt.UnixMilli())
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Advance replaces r with next only if r is still the stored registration.
func (d *DB) Advance(ctx context.Context, r timer.Registration, next timer.Registration) (bool, error) {
	payload, err := json.Marshal(next.Alarm)
	if err != nil {
		return false, fmt.Errorf("encode alarm %d: %w", next.ID, err)
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE registrations SET trigger_at = ?, payload = ?, cron = ?
		WHERE id = ? AND trigger_at = ?`,
		next.TriggerAt.UnixMilli(), string(payload), next.CronExpr,
		r.ID, r.TriggerAt.UnixMilli())
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Get returns the registration for id.
func (d *DB) Get(ctx context.Context, id int) (timer.Registration, bool, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, trigger_at, payload, cron FROM registrations WHERE id = ?`, id)
	r, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timer.Registration{}, false, nil
	}
	if err != nil {
		return timer.Registration{}, false, err
	}
	return r, true, nil
}

// List returns all registrations ordered by trigger time.
func (d *DB) List(ctx context.Context) ([]timer.Registration, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, trigger_at, payload, cron FROM registrations ORDER BY trigger_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []timer.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("error: failed to scan registration row: %w", err)
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate registrations: %w", err)
	}
	return regs, nil
}

// Grant records that the user granted capability.
func (d *DB) Grant(ctx context.Context, capability string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO grants (capability, granted_at) VALUES (?, ?)
		ON CONFLICT(capability) DO UPDATE SET granted_at = excluded.granted_at`,
		capability, time.Now().UnixMilli())
	return err
}

// Revoke forgets a recorded grant.
func (d *DB) Revoke(ctx context.Context, capability string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM grants WHERE capability = ?`, capability)
	return err
}

// Granted reports whether capability has a recorded grant.
func (d *DB) Granted(ctx context.Context, capability string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM grants WHERE capability = ?`, capability).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(s scanner) (timer.Registration, error) {
	var (
		id        int
		triggerAt int64
		payload   string
		cron      string
	)
	if err := s.Scan(&id, &triggerAt, &payload, &cron); err != nil {
		return timer.Registration{}, err
	}
	var a alarm.Alarm
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return timer.Registration{}, fmt.Errorf("decode alarm %d: %w", id, err)
	}
	return timer.Registration{
		ID:        id,
		TriggerAt: time.UnixMilli(triggerAt),
		Alarm:     a,
		CronExpr:  cron,
	}, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
