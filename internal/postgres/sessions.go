package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Sessions maps a session id to its bearer token.
type Sessions struct{ DB *pgxpool.Pool }

func (s *Sessions) Token(ctx context.Context, sid string) (string, bool, error) {
	var token string
	err := s.DB.QueryRow(ctx, `SELECT token FROM sessions WHERE id=$1`, sid).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "load session")
	}
	return token, true, nil
}

func (s *Sessions) PutToken(ctx context.Context, sid, token string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO sessions (id, token) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET token=EXCLUDED.token, updated_at=now()`, sid, token)
	return errors.Wrap(err, "save session")
}

func (s *Sessions) DeleteToken(ctx context.Context, sid string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, sid)
	return errors.Wrap(err, "delete session")
}
