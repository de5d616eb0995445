package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/store/migrations"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// Postgres is the production user store, one row per user in the users
// table. It expects its schema to be in place; run [Postgres.Migrate]
// once at startup.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for dsn and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an already-open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded schema migrations.
func (s *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}

// CreateUser inserts the record, mapping a username collision to
// [ErrDuplicateUsername].
func (s *Postgres) CreateUser(ctx context.Context, user *model.PrivateUser) error {
	query := `INSERT INTO users (id, created_at, username, display_name, avatar_url, password_hash, salt)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	avatar := sql.NullString{}
	if user.AvatarURL != nil {
		avatar = sql.NullString{String: *user.AvatarURL, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.Username, user.DisplayName, avatar, user.PasswordHash, user.Salt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// FetchUser returns the record for username or [ErrUserNotFound].
func (s *Postgres) FetchUser(ctx context.Context, username string) (*model.PrivateUser, error) {
	query := `SELECT id, created_at, username, display_name, avatar_url, password_hash, salt
	          FROM users WHERE username = $1`

	user := &model.PrivateUser{}
	var avatar sql.NullString
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.CreatedAt, &user.Username, &user.DisplayName, &avatar, &user.PasswordHash, &user.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if avatar.Valid {
		user.AvatarURL = &avatar.String
	}

	return user, nil
}
