package remotestore

import (
	"context"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// TokenStore is implemented by postgres.Sessions.
type TokenStore interface {
	Token(ctx context.Context, sid string) (string, bool, error)
	PutToken(ctx context.Context, sid, token string) error
	DeleteToken(ctx context.Context, sid string) error
}

// Sessions persists only the bearer token. Carts live in memory for the
// lifetime of the process.
type Sessions struct {
	Tokens TokenStore
}

func (s *Sessions) Load(ctx context.Context, sid string) (shop.SessionRecord, bool, error) {
	token, ok, err := s.Tokens.Token(ctx, sid)
	if err != nil || !ok {
		return shop.SessionRecord{}, false, err
	}
	return shop.SessionRecord{Credential: shop.Credential{Token: token}}, true, nil
}

func (s *Sessions) Save(ctx context.Context, sid string, rec shop.SessionRecord) error {
	if rec.Credential.Token == "" {
		return s.Tokens.DeleteToken(ctx, sid)
	}
	return s.Tokens.PutToken(ctx, sid, rec.Credential.Token)
}
