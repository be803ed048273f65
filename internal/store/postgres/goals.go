package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sillygoals/sillygoals/internal/store"
)

type goalsRepo struct {
	pool *pgxpool.Pool
}

const goalColumns = `id, title, COALESCE(description, ''), stage, group_id, deadline`

func scanGoal(row pgx.Row) (*store.Goal, error) {
	var g store.Goal
	err := row.Scan(&g.ID, &g.Title, &g.Description, &g.Stage, &g.GroupID, &g.Deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan goal: %w", err)
	}
	return &g, nil
}

func (r *goalsRepo) ForGroup(ctx context.Context, groupID int64) ([]store.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("postgres: goals for group: %w", err)
	}
	defer rows.Close()

	var goals []store.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *goalsRepo) ByID(ctx context.Context, groupID, goalID int64) (*store.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE group_id = $1 AND id = $2`, groupID, goalID)
	return scanGoal(row)
}

func (r *goalsRepo) Create(ctx context.Context, g store.Goal) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO goals(title, description, stage, group_id, deadline)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5) RETURNING id`,
		g.Title, g.Description, g.Stage, g.GroupID, g.Deadline).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: create goal: %w", err)
	}
	return id, nil
}

func (r *goalsRepo) Update(ctx context.Context, g store.Goal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE goals SET title = $1, description = NULLIF($2, ''), stage = $3, deadline = $4
		 WHERE group_id = $5 AND id = $6`,
		g.Title, g.Description, g.Stage, g.Deadline, g.GroupID, g.ID)
	if err != nil {
		return fmt.Errorf("postgres: update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *goalsRepo) UpdateStage(ctx context.Context, groupID, goalID int64, stage int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE goals SET stage = $1 WHERE group_id = $2 AND id = $3`,
		stage, groupID, goalID)
	if err != nil {
		return fmt.Errorf("postgres: update goal stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *goalsRepo) Delete(ctx context.Context, groupID, goalID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM goals WHERE group_id = $1 AND id = $2`, groupID, goalID)
	if err != nil {
		return fmt.Errorf("postgres: delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
