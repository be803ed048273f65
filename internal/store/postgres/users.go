package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sillygoals/sillygoals/internal/store"
)

type usersRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, public_id, COALESCE(name, ''), email, is_new_user`

func scanUser(row pgx.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.PublicID, &u.Name, &u.Email, &u.IsNewUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	return &u, nil
}

func (r *usersRepo) ByPublicID(ctx context.Context, publicID uuid.UUID) (*store.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE public_id = $1`, publicID)
	return scanUser(row)
}

func (r *usersRepo) ByEmail(ctx context.Context, email string) (*store.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
	return scanUser(row)
}

func (r *usersRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = LOWER($1))`, email).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("postgres: email taken: %w", err)
	}
	return taken, nil
}

func (r *usersRepo) Create(ctx context.Context, email string) (*store.User, error) {
	publicID := uuid.New()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users(public_id, email) VALUES ($1, LOWER($2))
		 RETURNING `+userColumns,
		publicID, strings.TrimSpace(email))
	return scanUser(row)
}

func (r *usersRepo) UpdateName(ctx context.Context, publicID uuid.UUID, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1 WHERE public_id = $2`, name, publicID)
	if err != nil {
		return fmt.Errorf("postgres: update name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdateEmail(ctx context.Context, publicID uuid.UUID, email string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email = LOWER($1) WHERE public_id = $2`, email, publicID)
	if err != nil {
		return fmt.Errorf("postgres: update email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ClearNewFlag(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_new_user = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: clear new flag: %w", err)
	}
	return nil
}

func (r *usersRepo) Delete(ctx context.Context, publicID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM users WHERE public_id = $1`, publicID)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
