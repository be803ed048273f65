package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sillygoals/sillygoals/internal/store"
)

type credentialsRepo struct {
	pool *pgxpool.Pool
}

func (r *credentialsRepo) ByUser(ctx context.Context, userID int64) ([]store.Credential, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, passkey FROM webauthn_credentials WHERE user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: credentials by user: %w", err)
	}
	defer rows.Close()

	var creds []store.Credential
	for rows.Next() {
		var c store.Credential
		if err := rows.Scan(&c.ID, &c.UserID, &c.Passkey); err != nil {
			return nil, fmt.Errorf("postgres: scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (r *credentialsRepo) Insert(ctx context.Context, cred store.Credential) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webauthn_credentials(id, user_id, passkey) VALUES ($1, $2, $3)`,
		cred.ID, cred.UserID, cred.Passkey)
	if err != nil {
		return fmt.Errorf("postgres: insert credential: %w", err)
	}
	return nil
}
