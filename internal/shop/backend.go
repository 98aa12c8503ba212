package shop

import (
	"context"
	"time"
)

// Entity is implemented by every stored record so generic collections can
// read and assign identifiers.
type Entity[T any] interface {
	Key() string
	WithKey(id string) T
}

// Collection is the storage capability shared by both backends.
//
// Update and Delete of an unknown id are silent no-ops. Subscribe delivers the
// current snapshot before returning and then the full collection after every
// observed change; ctx bounds the initial snapshot only, the subscription
// lives until stop is called.
type Collection[T Entity[T]] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, bool, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn func([]T)) (stop func(), err error)
}

// Credential is what a successful sign-in yields. Token is empty for the
// local backend.
type Credential struct {
	Subject   string    `json:"subject"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type Authenticator interface {
	// SignUp registers the credential and assigns u.ID.
	SignUp(ctx context.Context, u *User, password string) error
	SignIn(ctx context.Context, email, password string) (Credential, error)
	// Resume validates a persisted credential and returns its subject.
	Resume(ctx context.Context, c Credential) (string, error)
}

// SessionRecord is what survives a reload of one session.
type SessionRecord struct {
	Credential Credential `json:"credential"`
	User       *User      `json:"user,omitempty"`
	Cart       []CartLine `json:"cart,omitempty"`
}

type SessionStore interface {
	Load(ctx context.Context, sid string) (SessionRecord, bool, error)
	// Save replaces the record; a record without credential and cart
	// removes whatever was stored for sid.
	Save(ctx context.Context, sid string, rec SessionRecord) error
}

type Backend interface {
	Name() string
	Products() Collection[Product]
	Clients() Collection[Client]
	Suppliers() Collection[Supplier]
	Sales() Collection[Sale]
	Purchases() Collection[Purchase]
	Users() Collection[User]
	Auth() Authenticator
	Sessions() SessionStore
}
