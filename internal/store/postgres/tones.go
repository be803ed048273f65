package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sillygoals/sillygoals/internal/store"
)

type tonesRepo struct {
	pool *pgxpool.Pool
}

const toneColumns = `id, name, COALESCE(user_id, 0), global, stages, greeting, unmet_behavior, deadline`

func scanTone(row pgx.Row) (*store.Tone, error) {
	var t store.Tone
	var stages []byte
	err := row.Scan(&t.ID, &t.Name, &t.UserID, &t.Global, &stages, &t.Greeting, &t.UnmetBehavior, &t.Deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan tone: %w", err)
	}
	if err := json.Unmarshal(stages, &t.Stages); err != nil {
		return nil, fmt.Errorf("postgres: decode tone stages: %w", err)
	}
	return &t, nil
}

func (r *tonesRepo) ForUser(ctx context.Context, userID int64) ([]store.Tone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+toneColumns+` FROM tones WHERE global OR user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: tones for user: %w", err)
	}
	defer rows.Close()

	var tones []store.Tone
	for rows.Next() {
		t, err := scanTone(rows)
		if err != nil {
			return nil, err
		}
		tones = append(tones, *t)
	}
	return tones, rows.Err()
}

func (r *tonesRepo) ByID(ctx context.Context, userID, toneID int64) (*store.Tone, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+toneColumns+` FROM tones WHERE id = $1 AND (global OR user_id = $2)`,
		toneID, userID)
	return scanTone(row)
}

// EnsureGlobalTones inserts the built-in global tones once.
func (s *Store) EnsureGlobalTones(ctx context.Context, tones []store.Tone) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tones WHERE global`).Scan(&count); err != nil {
		return fmt.Errorf("postgres: count global tones: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, t := range tones {
		stages, err := json.Marshal(t.Stages)
		if err != nil {
			return fmt.Errorf("postgres: encode tone stages: %w", err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO tones(name, user_id, global, stages, greeting, unmet_behavior, deadline)
			 VALUES ($1, NULL, TRUE, $2, $3, $4, $5)`,
			t.Name, stages, t.Greeting, t.UnmetBehavior, t.Deadline)
		if err != nil {
			return fmt.Errorf("postgres: insert global tone %q: %w", t.Name, err)
		}
	}
	return nil
}
