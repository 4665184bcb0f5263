package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"liftlog/internal/domain"
)

// GetProgram returns the stored program for userID, or nil if there is none.
func (d *DB) GetProgram(ctx context.Context, userID string) (*domain.Program, error) {
	var body []byte
	err := d.sql.QueryRowContext(ctx, "SELECT body FROM programs WHERE user_id = $1;", userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Program
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProgram replaces the program document for userID.
func (d *DB) PutProgram(ctx context.Context, userID string, p domain.Program) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO programs (user_id, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at;`,
		userID, body,
	)
	return err
}
