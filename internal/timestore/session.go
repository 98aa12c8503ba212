package timestore

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// Session is the state of one shopper: cart, cart view flag and login.
type Session struct {
	ID    string
	store *Store

	// checkout serializes checkouts of this session.
	checkout sync.Mutex

	mu       sync.Mutex
	user     *shop.User
	cred     shop.Credential
	cart     Cart
	cartOpen bool

	lastUsed time.Time // guarded by Store.mu
}

// Session returns the live session for sid, restoring it from the session
// store on first use. Restores run outside the store lock; when two requests
// race on a new sid the first one stored wins.
func (s *Store) Session(ctx context.Context, sid string) (*Session, error) {
	if sess := s.liveSession(sid); sess != nil {
		return sess, nil
	}
	fresh := &Session{ID: sid, store: s}
	if err := fresh.restore(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sid]; ok {
		sess.lastUsed = s.now()
		return sess, nil
	}
	fresh.lastUsed = s.now()
	s.sessions[sid] = fresh
	return fresh, nil
}

func (s *Store) liveSession(sid string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok {
		return nil
	}
	sess.lastUsed = s.now()
	return sess
}

// Forget drops the in-memory session without touching what was persisted.
func (s *Store) Forget(sid string) {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
}

// Sweep drops sessions idle for longer than Options.SessionIdle and reports
// how many were dropped.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.opts.SessionIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, sid)
			n++
		}
	}
	return n
}

// LiveSessions is the number of sessions held in memory.
func (s *Store) LiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.WithField("sessions", n).Debug("idle sessions dropped")
			}
		}
	}
}

func (ss *Session) restore(ctx context.Context) error {
	st := ss.store
	rec, ok, err := st.backend.Sessions().Load(ctx, ss.ID)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	if !ok {
		return nil
	}
	ss.cart = NewCart(rec.Cart)
	if rec.Credential == (shop.Credential{}) {
		return nil
	}
	subject, err := st.backend.Auth().Resume(ctx, rec.Credential)
	if err != nil {
		st.log.WithError(err).WithField("session", ss.ID).Info("stored credential rejected")
		return nil
	}
	u, found, err := st.backend.Users().Get(ctx, subject)
	if err != nil {
		return errors.Wrap(err, "fetch profile")
	}
	if !found {
		return nil
	}
	if u.Status != shop.StatusApproved {
		st.log.WithFields(log.Fields{"session": ss.ID, "user_id": u.ID, "status": u.Status}).Info("restored user no longer approved")
		return nil
	}
	ss.user = &u
	ss.cred = rec.Credential
	ss.cred.Subject = subject
	return nil
}

// User is the logged-in user or nil.
func (ss *Session) User() *shop.User {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.user == nil {
		return nil
	}
	u := ss.user.Public()
	return &u
}

func (ss *Session) IsAdmin() bool {
	u := ss.User()
	return u != nil && u.IsAdmin
}

// Credential is the credential bound to the session; zero when logged out.
func (ss *Session) Credential() shop.Credential {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cred
}

func (ss *Session) Cart() Cart {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return NewCart(ss.cart.Lines())
}

func (ss *Session) CartOpen() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cartOpen
}

func (ss *Session) ToggleCart() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.cartOpen = !ss.cartOpen
	return ss.cartOpen
}

// AddToCart adds one unit of p and opens the cart view.
func (ss *Session) AddToCart(ctx context.Context, p shop.Product) error {
	return ss.mutate(ctx, func() {
		ss.cart.Add(p)
		ss.cartOpen = true
	})
}

func (ss *Session) RemoveFromCart(ctx context.Context, productID string) error {
	return ss.mutate(ctx, func() { ss.cart.Remove(productID) })
}

func (ss *Session) UpdateQuantity(ctx context.Context, productID string, delta int) error {
	return ss.mutate(ctx, func() { ss.cart.Adjust(productID, delta) })
}

func (ss *Session) ClearCart(ctx context.Context) error {
	return ss.mutate(ctx, func() { ss.cart.Clear() })
}

func (ss *Session) mutate(ctx context.Context, fn func()) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	fn()
	return ss.saveLocked(ctx)
}

func (ss *Session) saveLocked(ctx context.Context) error {
	rec := shop.SessionRecord{Credential: ss.cred, Cart: ss.cart.Lines()}
	if ss.user != nil {
		u := *ss.user
		rec.User = &u
	}
	if err := ss.store.backend.Sessions().Save(ctx, ss.ID, rec); err != nil {
		ss.store.log.WithError(err).WithFields(log.Fields{"session": ss.ID}).Error("persist session")
		return errors.Wrap(err, "save session")
	}
	return nil
}
