package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var ErrEmailTaken = errors.New("email already has a credential")

const uniqueViolation = "23505"

type Credentials struct{ DB *pgxpool.Pool }

func (c *Credentials) Insert(ctx context.Context, uid, email, hash string) error {
	_, err := c.DB.Exec(ctx, `INSERT INTO auth_credentials (uid, email, password_hash) VALUES ($1, $2, $3)`, uid, email, hash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return errors.Wrap(err, "insert credential")
}

// ByEmail returns ok=false when no credential exists for email.
func (c *Credentials) ByEmail(ctx context.Context, email string) (uid, hash string, ok bool, err error) {
	err = c.DB.QueryRow(ctx, `SELECT uid, password_hash FROM auth_credentials WHERE email=$1`, email).Scan(&uid, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, errors.Wrap(err, "credential by email")
	}
	return uid, hash, true, nil
}
