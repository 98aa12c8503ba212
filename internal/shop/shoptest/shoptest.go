// Package shoptest provides in-memory fakes of the shop storage interfaces
// for use in tests.
package shoptest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// Collection is an ordered in-memory shop.Collection. Subscribers are
// notified synchronously after every mutation unless Deferred is set, in
// which case notifications wait for Flush (like an upstream echo).
type Collection[T shop.Entity[T]] struct {
	mu       sync.Mutex
	items    []T
	subs     map[int]func([]T)
	nextSub  int
	pending  bool
	Deferred bool
	Err      error // returned by every call when set
	// OnCreate runs at the start of Create, outside the collection lock.
	OnCreate func()
}

func NewCollection[T shop.Entity[T]](seed ...T) *Collection[T] {
	return &Collection[T]{items: append([]T(nil), seed...), subs: map[int]func([]T){}}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]T(nil), c.items...), nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if c.Err != nil {
		return zero, false, c.Err
	}
	for _, v := range c.items {
		if v.Key() == id {
			return v, true, nil
		}
	}
	return zero, false, nil
}

func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	if c.OnCreate != nil {
		c.OnCreate()
	}
	c.mu.Lock()
	if c.Err != nil {
		c.mu.Unlock()
		var zero T
		return zero, c.Err
	}
	if v.Key() == "" {
		v = v.WithKey(uuid.NewString())
	}
	c.items = append(c.items, v)
	c.mu.Unlock()
	c.changed()
	return v, nil
}

func (c *Collection[T]) Update(ctx context.Context, v T) error {
	c.mu.Lock()
	if c.Err != nil {
		c.mu.Unlock()
		return c.Err
	}
	found := false
	for i := range c.items {
		if c.items[i].Key() == v.Key() {
			c.items[i] = v
			found = true
		}
	}
	c.mu.Unlock()
	if found {
		c.changed()
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.Err != nil {
		c.mu.Unlock()
		return c.Err
	}
	out := c.items[:0]
	for _, v := range c.items {
		if v.Key() != id {
			out = append(out, v)
		}
	}
	removed := len(out) != len(c.items)
	c.items = out
	c.mu.Unlock()
	if removed {
		c.changed()
	}
	return nil
}

func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	c.mu.Lock()
	if c.Err != nil {
		c.mu.Unlock()
		return nil, c.Err
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	snap := append([]T(nil), c.items...)
	c.mu.Unlock()
	fn(snap)
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}, nil
}

// Flush delivers a deferred notification.
func (c *Collection[T]) Flush() {
	c.mu.Lock()
	p := c.pending
	c.pending = false
	c.mu.Unlock()
	if p {
		c.notify()
	}
}

func (c *Collection[T]) changed() {
	if c.Deferred {
		c.mu.Lock()
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.notify()
}

func (c *Collection[T]) notify() {
	c.mu.Lock()
	snap := append([]T(nil), c.items...)
	fns := make([]func([]T), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Auth checks plaintext passwords on the user directory.
type Auth struct {
	Users *Collection[shop.User]
}

func (a *Auth) SignUp(ctx context.Context, u *shop.User, password string) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Password = password
	return nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (shop.Credential, error) {
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

func (a *Auth) Resume(ctx context.Context, c shop.Credential) (string, error) {
	if c.Subject == "" {
		return "", shop.ErrInvalidToken
	}
	return c.Subject, nil
}

// Sessions keeps session records in a map.
type Sessions struct {
	mu      sync.Mutex
	Records map[string]shop.SessionRecord
}

func (s *Sessions) Load(ctx context.Context, sid string) (shop.SessionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.Records[sid]
	return rec, ok, nil
}

func (s *Sessions) Save(ctx context.Context, sid string, rec shop.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Records == nil {
		s.Records = map[string]shop.SessionRecord{}
	}
	if rec.Credential == (shop.Credential{}) && len(rec.Cart) == 0 {
		delete(s.Records, sid)
		return nil
	}
	s.Records[sid] = rec
	return nil
}

// Backend bundles the fakes into a shop.Backend.
type Backend struct {
	ProductsC  *Collection[shop.Product]
	ClientsC   *Collection[shop.Client]
	SuppliersC *Collection[shop.Supplier]
	SalesC     *Collection[shop.Sale]
	PurchasesC *Collection[shop.Purchase]
	UsersC     *Collection[shop.User]
	AuthF      shop.Authenticator
	SessionsF  *Sessions
}

func NewBackend(products ...shop.Product) *Backend {
	users := NewCollection[shop.User]()
	return &Backend{
		ProductsC:  NewCollection(products...),
		ClientsC:   NewCollection[shop.Client](),
		SuppliersC: NewCollection[shop.Supplier](),
		SalesC:     NewCollection[shop.Sale](),
		PurchasesC: NewCollection[shop.Purchase](),
		UsersC:     users,
		AuthF:      &Auth{Users: users},
		SessionsF:  &Sessions{},
	}
}

func (b *Backend) Name() string                              { return "memory" }
func (b *Backend) Products() shop.Collection[shop.Product]   { return b.ProductsC }
func (b *Backend) Clients() shop.Collection[shop.Client]     { return b.ClientsC }
func (b *Backend) Suppliers() shop.Collection[shop.Supplier] { return b.SuppliersC }
func (b *Backend) Sales() shop.Collection[shop.Sale]         { return b.SalesC }
func (b *Backend) Purchases() shop.Collection[shop.Purchase] { return b.PurchasesC }
func (b *Backend) Users() shop.Collection[shop.User]         { return b.UsersC }
func (b *Backend) Auth() shop.Authenticator                  { return b.AuthF }
func (b *Backend) Sessions() shop.SessionStore               { return b.SessionsF }
