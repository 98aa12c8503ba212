package localstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ariefcatur/go-timestore/internal/redisx"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

// Sessions keeps the logged-in user and the cart of a session under two
// separate keys.
type Sessions struct {
	kv KV
}

func (s *Sessions) Load(ctx context.Context, sid string) (shop.SessionRecord, bool, error) {
	var rec shop.SessionRecord
	ub, hasUser, err := s.kv.Get(ctx, redisx.SessionUserKey(sid))
	if err != nil {
		return rec, false, err
	}
	if hasUser {
		var u shop.User
		if err := json.Unmarshal(ub, &u); err != nil {
			return rec, false, errors.Wrap(err, "decode session user")
		}
		rec.User = &u
		rec.Credential = shop.Credential{Subject: u.ID}
	}
	cb, hasCart, err := s.kv.Get(ctx, redisx.SessionCartKey(sid))
	if err != nil {
		return rec, false, err
	}
	if hasCart {
		if err := json.Unmarshal(cb, &rec.Cart); err != nil {
			return rec, false, errors.Wrap(err, "decode session cart")
		}
	}
	return rec, hasUser || hasCart, nil
}

func (s *Sessions) Save(ctx context.Context, sid string, rec shop.SessionRecord) error {
	userKey, cartKey := redisx.SessionUserKey(sid), redisx.SessionCartKey(sid)
	if rec.User != nil && rec.Credential.Subject != "" {
		b, err := json.Marshal(rec.User.Public())
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, userKey, b); err != nil {
			return err
		}
	} else if err := s.kv.Del(ctx, userKey); err != nil {
		return err
	}

	if len(rec.Cart) == 0 {
		return s.kv.Del(ctx, cartKey)
	}
	b, err := json.Marshal(rec.Cart)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, cartKey, b)
}
