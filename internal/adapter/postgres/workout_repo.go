package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liftlog/internal/domain"
)

// ListWorkouts returns every workout owned by userID, oldest first.
func (d *DB) ListWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT body, updated_at FROM workouts WHERE user_id = $1 ORDER BY date;",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Workout
	for rows.Next() {
		var body []byte
		var updatedAt time.Time
		if err := rows.Scan(&body, &updatedAt); err != nil {
			return nil, err
		}
		var w domain.Workout
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("decode workout: %w", err)
		}
		w.UpdatedAt = updatedAt
		out = append(out, w)
	}
	return out, rows.Err()
}

// PutWorkout replaces the workout document stored under id. The update
// time comes from the database clock.
func (d *DB) PutWorkout(ctx context.Context, id string, w domain.Workout) (time.Time, error) {
	w.UpdatedAt = time.Time{}
	body, err := json.Marshal(w)
	if err != nil {
		return time.Time{}, err
	}

	var updatedAt time.Time
	err = d.sql.QueryRowContext(ctx,
		`INSERT INTO workouts (id, user_id, date, body, updated_at) VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, date = EXCLUDED.date, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		RETURNING updated_at;`,
		id, w.UserID, w.Date, body,
	).Scan(&updatedAt)
	return updatedAt, err
}

// DeleteWorkout removes the workout stored under id. Deleting a missing
// workout is not an error.
func (d *DB) DeleteWorkout(ctx context.Context, id string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM workouts WHERE id = $1;", id)
	return err
}
