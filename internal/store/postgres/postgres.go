// Package postgres implements store.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	"github.com/sillygoals/sillygoals/internal/store"
	migrations "github.com/sillygoals/sillygoals/migrations/postgres"
)

// Store is the PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool

	users *usersRepo
	creds *credentialsRepo
	tones *tonesRepo
	grps  *groupsRepo
	goals *goalsRepo
}

// Connect opens a pool against dsn and pings it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{
		pool:  pool,
		users: &usersRepo{pool: pool},
		creds: &credentialsRepo{pool: pool},
		tones: &tonesRepo{pool: pool},
		grps:  &groupsRepo{pool: pool},
		goals: &goalsRepo{pool: pool},
	}, nil
}

func (s *Store) Users() store.Users             { return s.users }
func (s *Store) Credentials() store.Credentials { return s.creds }
func (s *Store) Tones() store.Tones             { return s.tones }
func (s *Store) Groups() store.Groups           { return s.grps }
func (s *Store) Goals() store.Goals             { return s.goals }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres: open for migrate: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("postgres: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
