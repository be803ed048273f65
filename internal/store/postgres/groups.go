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

type groupsRepo struct {
	pool *pgxpool.Pool
}

func (r *groupsRepo) ForUser(ctx context.Context, userID int64) ([]store.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, COALESCE(description, ''), user_id, tone_id
		 FROM groups WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: groups for user: %w", err)
	}
	defer rows.Close()

	var groups []store.Group
	for rows.Next() {
		var g store.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.UserID, &g.ToneID); err != nil {
			return nil, fmt.Errorf("postgres: scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupsRepo) ByID(ctx context.Context, userID, groupID int64) (*store.GroupWithTone, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT g.id, g.title, COALESCE(g.description, ''), g.user_id, g.tone_id,
		        t.id, t.name, COALESCE(t.user_id, 0), t.global, t.stages, t.greeting,
		        t.unmet_behavior, t.deadline
		 FROM groups g JOIN tones t ON g.tone_id = t.id
		 WHERE g.user_id = $1 AND g.id = $2`, userID, groupID)

	var gt store.GroupWithTone
	var stages []byte
	err := row.Scan(
		&gt.ID, &gt.Title, &gt.Description, &gt.UserID, &gt.ToneID,
		&gt.Tone.ID, &gt.Tone.Name, &gt.Tone.UserID, &gt.Tone.Global, &stages,
		&gt.Tone.Greeting, &gt.Tone.UnmetBehavior, &gt.Tone.Deadline,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan group with tone: %w", err)
	}
	if err := json.Unmarshal(stages, &gt.Tone.Stages); err != nil {
		return nil, fmt.Errorf("postgres: decode tone stages: %w", err)
	}
	return &gt, nil
}

func (r *groupsRepo) Create(ctx context.Context, g store.Group) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO groups(title, description, user_id, tone_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING id`,
		g.Title, g.Description, g.UserID, g.ToneID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: create group: %w", err)
	}
	return id, nil
}

func (r *groupsRepo) Update(ctx context.Context, g store.Group) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE groups SET title = $1, description = NULLIF($2, ''), tone_id = $3
		 WHERE user_id = $4 AND id = $5`,
		g.Title, g.Description, g.ToneID, g.UserID, g.ID)
	if err != nil {
		return fmt.Errorf("postgres: update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *groupsRepo) Delete(ctx context.Context, userID, groupID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM groups WHERE user_id = $1 AND id = $2`, userID, groupID)
	if err != nil {
		return fmt.Errorf("postgres: delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
