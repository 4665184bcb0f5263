// Package sqlite implements the domain repositories on an embedded SQLite
// file, for single-host installs without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liftlog/internal/domain"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

var (
	_ domain.WorkoutRepository = (*DB)(nil)
	_ domain.ProgramRepository = (*DB)(nil)
	_ domain.SessionRepository = (*DB)(nil)
)

// Open opens (creating if needed) the database file at path and runs
// migrations.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := &DB{sql: s, now: time.Now}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS workouts (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, date TEXT NOT NULL, body TEXT NOT NULL, updated_at TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_workouts_user_id ON workouts(user_id);",
		"CREATE TABLE IF NOT EXISTS programs (user_id TEXT PRIMARY KEY, body TEXT NOT NULL, updated_at TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id TEXT NOT NULL, email TEXT NOT NULL, user_agent TEXT NOT NULL DEFAULT '', expires_at TEXT NOT NULL, created_at TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text so they sort and compare
// as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ListWorkouts returns every workout owned by userID, oldest first.
func (d *DB) ListWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT body, updated_at FROM workouts WHERE user_id = ? ORDER BY date;",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Workout
	for rows.Next() {
		var body, updated string
		if err := rows.Scan(&body, &updated); err != nil {
			return nil, err
		}
		var w domain.Workout
		if err := json.Unmarshal([]byte(body), &w); err != nil {
			return nil, fmt.Errorf("decode workout: %w", err)
		}
		if w.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// PutWorkout replaces the workout stored under id.
func (d *DB) PutWorkout(ctx context.Context, id string, w domain.Workout) (time.Time, error) {
	w.UpdatedAt = time.Time{}
	body, err := json.Marshal(w)
	if err != nil {
		return time.Time{}, err
	}
	updatedAt := d.now().UTC()
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, date, body, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, date = excluded.date, body = excluded.body, updated_at = excluded.updated_at;`,
		id, w.UserID, w.Date, string(body), formatTime(updatedAt),
	)
	if err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

// DeleteWorkout removes the workout stored under id.
func (d *DB) DeleteWorkout(ctx context.Context, id string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM workouts WHERE id = ?;", id)
	return err
}

// GetProgram returns the stored program for userID, or nil if there is none.
func (d *DB) GetProgram(ctx context.Context, userID string) (*domain.Program, error) {
	var body string
	err := d.sql.QueryRowContext(ctx, "SELECT body FROM programs WHERE user_id = ?;", userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Program
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProgram replaces the program for userID.
func (d *DB) PutProgram(ctx context.Context, userID string, p domain.Program) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO programs (user_id, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`,
		userID, string(body), formatTime(d.now()),
	)
	return err
}

// CreateSession creates a new session.
func (d *DB) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, email, user_agent, expires_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		s.Token, s.UserID, s.Email, s.UserAgent, formatTime(s.ExpiresAt), formatTime(s.CreatedAt),
	)
	return err
}

// GetSession retrieves a session by token.
func (d *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	var expires, created string
	err := d.sql.QueryRowContext(ctx,
		"SELECT token, user_id, email, user_agent, expires_at, created_at FROM sessions WHERE token = ?",
		token,
	).Scan(&s.Token, &s.UserID, &s.Email, &s.UserAgent, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = parseTime(expires); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession deletes a session by token.
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

// DeleteExpiredSessions deletes all expired sessions.
func (d *DB) DeleteExpiredSessions(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", formatTime(d.now()))
	return err
}
