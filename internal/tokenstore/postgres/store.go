package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
)

// Common interface of pgxpool.Pool, pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps tokens of one profile in 'session_tokens' table
// Several machines may share same profile and so same session
type Store struct {
	DB      DBTX
	Profile string
}

func New(db DBTX, profile string) *Store {
	return &Store{DB: db, Profile: profile}
}

const getTokens = `-- name: Get tokens of profile
SELECT access_token, refresh_token
FROM session_tokens
WHERE profile = $1
`

func (s *Store) Get(ctx context.Context) (models.TokenPair, error) {
	rows, _ := s.DB.Query(ctx, getTokens, s.Profile)
	pair, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.TokenPair, error) {
		var p models.TokenPair
		err := row.Scan(&p.Access, &p.Refresh)
		return p, err
	})

	switch {
	case err == nil:
		return pair, nil
	case errors.Is(err, pgx.ErrNoRows):
		return models.TokenPair{}, nil
	default:
		return models.TokenPair{}, wrapErr(err)
	}
}

const setTokens = `-- name: Set both tokens of profile
INSERT INTO session_tokens (profile, access_token, refresh_token, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile) DO UPDATE
SET access_token = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    updated_at = EXCLUDED.updated_at
`

func (s *Store) Set(ctx context.Context, pair models.TokenPair) error {
	_, err := s.DB.Exec(ctx, setTokens, s.Profile, pair.Access, pair.Refresh)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

const setAccess = `-- name: Set access token of profile, refresh token stays untouched
INSERT INTO session_tokens (profile, access_token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (profile) DO UPDATE
SET access_token = EXCLUDED.access_token,
    updated_at = EXCLUDED.updated_at
`

func (s *Store) SetAccess(ctx context.Context, access string) error {
	_, err := s.DB.Exec(ctx, setAccess, s.Profile, access)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

const clearTokens = `-- name: Clear tokens of profile
DELETE FROM session_tokens
WHERE profile = $1
`

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, clearTokens, s.Profile)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// Connection problems are reported as apperrors.ErrStoreUnavailable
func wrapErr(err error) error {
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError

	switch {
	case errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code):
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	case errors.As(err, &connectErr):
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
