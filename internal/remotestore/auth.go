package remotestore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-timestore/internal/postgres"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

const DefaultTokenTTL = 24 * time.Hour

// CredentialStore is implemented by postgres.Credentials. Insert returns
// postgres.ErrEmailTaken for a duplicate email.
type CredentialStore interface {
	Insert(ctx context.Context, uid, email, hash string) error
	ByEmail(ctx context.Context, email string) (uid, hash string, ok bool, err error)
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth keeps bcrypt hashes apart from the user profiles and issues HS256
// tokens whose subject is the user id.
type Auth struct {
	Creds  CredentialStore
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (a *Auth) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// SignUp honours a preset u.ID. The profile never carries the password.
func (a *Auth) SignUp(ctx context.Context, u *shop.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	err = a.Creds.Insert(ctx, id, u.Email, string(hash))
	if errors.Is(err, postgres.ErrEmailTaken) {
		return shop.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	u.ID = id
	u.Password = ""
	return nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (shop.Credential, error) {
	uid, hash, ok, err := a.Creds.ByEmail(ctx, email)
	if err != nil {
		return shop.Credential{}, err
	}
	if !ok {
		return shop.Credential{}, shop.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return shop.Credential{}, shop.ErrInvalidCredentials
	}
	token, exp, err := a.GenerateToken(uid, email)
	if err != nil {
		return shop.Credential{}, err
	}
	return shop.Credential{Subject: uid, Token: token, ExpiresAt: exp}, nil
}

func (a *Auth) Resume(ctx context.Context, c shop.Credential) (string, error) {
	claims, err := a.ParseToken(c.Token)
	if err != nil {
		return "", shop.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (a *Auth) GenerateToken(uid, email string) (string, time.Time, error) {
	ttl := a.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := a.now()
	exp := now.Add(ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	return s, exp, errors.Wrap(err, "sign token")
}

func (a *Auth) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}
	return nil, shop.ErrInvalidToken
}
