package localstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// DirectoryAuth checks plaintext passwords kept on the user records. The
// credential carries no token; its subject is the user id.
type DirectoryAuth struct {
	Users shop.Collection[shop.User]
}

func (a *DirectoryAuth) SignUp(ctx context.Context, u *shop.User, password string) error {
	users, err := a.Users.List(ctx)
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.Email == u.Email {
			return shop.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Password = password
	return nil
}

func (a *DirectoryAuth) SignIn(ctx context.Context, email, password string) (shop.Credential, error) {
	users, err := a.Users.List(ctx)
	if err != nil {
		return shop.Credential{}, err
	}
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if u.Password != password {
			return shop.Credential{}, shop.ErrInvalidCredentials
		}
		return shop.Credential{Subject: u.ID}, nil
	}
	return shop.Credential{}, shop.ErrUserNotFound
}

func (a *DirectoryAuth) Resume(ctx context.Context, c shop.Credential) (string, error) {
	if c.Subject == "" {
		return "", shop.ErrInvalidToken
	}
	_, ok, err := a.Users.Get(ctx, c.Subject)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", shop.ErrInvalidToken
	}
	return c.Subject, nil
}
