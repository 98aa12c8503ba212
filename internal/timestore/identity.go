package timestore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

const (
	MsgRegistered   = "Registro exitoso. Espera la aprobación del administrador."
	MsgLoggedIn     = "Inicio de sesión exitoso."
	MsgConnectError = "Error de conexión con el servidor."
)

var messages = []struct {
	err error
	msg string
}{
	{shop.ErrDuplicateEmail, "El email ya está registrado."},
	{shop.ErrUserNotFound, "Usuario no encontrado."},
	{shop.ErrInvalidCredentials, "Contraseña incorrecta."},
	{shop.ErrAccountPending, "Tu cuenta está pendiente de aprobación por un administrador."},
	{shop.ErrAccountRejected, "Tu cuenta ha sido rechazada. Contacta al administrador."},
}

// Result is the flat outcome shape of login and register.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ResultOf maps err onto a Result. Unknown errors are reported as a
// connection failure.
func ResultOf(err error, okMessage string) Result {
	if err == nil {
		return Result{Success: true, Message: okMessage}
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return Result{Message: m.msg}
		}
	}
	return Result{Message: MsgConnectError}
}

// Users returns the user directory without credentials.
func (s *Store) Users() []shop.User {
	users := s.users.snapshot()
	for i := range users {
		users[i] = users[i].Public()
	}
	return users
}

func (s *Store) userByEmail(email string) (shop.User, bool) {
	for _, u := range s.users.snapshot() {
		if u.Email == email {
			return u, true
		}
	}
	return shop.User{}, false
}

// Register creates a pending user. It does not log anybody in.
func (s *Store) Register(ctx context.Context, name, email, password string) (shop.User, error) {
	email = strings.TrimSpace(email)
	if _, ok := s.userByEmail(email); ok {
		return shop.User{}, shop.ErrDuplicateEmail
	}
	u := shop.User{
		Name:   strings.TrimSpace(name),
		Email:  email,
		Role:   shop.RoleUser,
		Status: shop.StatusPending,
	}
	if err := s.backend.Auth().SignUp(ctx, &u, password); err != nil {
		return shop.User{}, errors.Wrap(err, "sign up")
	}
	created, err := s.backend.Users().Create(ctx, u)
	if err != nil {
		return shop.User{}, errors.Wrap(err, "create profile")
	}
	s.log.WithFields(log.Fields{"user_id": created.ID, "email": created.Email}).Info("user registered")
	return created.Public(), nil
}

// Login authenticates and binds the session to the user when approved.
func (ss *Session) Login(ctx context.Context, email, password string) (shop.User, error) {
	st := ss.store
	cred, err := st.backend.Auth().SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return shop.User{}, errors.Wrap(err, "sign in")
	}
	u, ok, err := st.backend.Users().Get(ctx, cred.Subject)
	if err != nil {
		return shop.User{}, errors.Wrap(err, "fetch profile")
	}
	if !ok {
		return shop.User{}, shop.ErrUserNotFound
	}
	switch u.Status {
	case shop.StatusPending:
		return shop.User{}, shop.ErrAccountPending
	case shop.StatusRejected:
		return shop.User{}, shop.ErrAccountRejected
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.user = &u
	ss.cred = cred
	if err := ss.saveLocked(ctx); err != nil {
		return shop.User{}, err
	}
	st.log.WithFields(log.Fields{"user_id": u.ID, "session": ss.ID}).Info("user logged in")
	return u.Public(), nil
}

// Logout unbinds the user. The cart survives unless the store was configured
// to clear it.
func (ss *Session) Logout(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.user = nil
	ss.cred = shop.Credential{}
	if ss.store.opts.ClearCartOnLogout {
		ss.cart.Clear()
	}
	return ss.saveLocked(ctx)
}

func (s *Store) Approve(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, shop.StatusApproved)
}

func (s *Store) Reject(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, shop.StatusRejected)
}

// setStatus is last-write-wins; overwriting a terminal status is allowed but logged.
func (s *Store) setStatus(ctx context.Context, id string, to shop.UserStatus) error {
	u, ok, err := s.backend.Users().Get(ctx, id)
	if err != nil {
		return errors.Wrap(err, "fetch user")
	}
	if !ok {
		return nil
	}
	entry := s.log.WithFields(log.Fields{"user_id": id, "from": u.Status, "to": to})
	if u.Status != to && !shop.CanTransition(u.Status, to) {
		entry.Warn("overwriting terminal user status")
	}
	u.Status = to
	if err := s.backend.Users().Update(ctx, u); err != nil {
		return errors.Wrap(err, "update user status")
	}
	entry.Info("user status changed")
	return nil
}

// EnsureAdmin guarantees the bootstrap admin exists, approved and with the
// admin role.
func (s *Store) EnsureAdmin(ctx context.Context) error {
	users, err := s.backend.Users().List(ctx)
	if err != nil {
		return errors.Wrap(err, "list users")
	}
	for _, u := range users {
		if u.Email != shop.AdminEmail {
			continue
		}
		if u.Status == shop.StatusApproved && u.Role == shop.RoleAdmin && u.IsAdmin {
			return nil
		}
		u.Status, u.Role, u.IsAdmin = shop.StatusApproved, shop.RoleAdmin, true
		s.log.WithField("user_id", u.ID).Warn("bootstrap admin repaired")
		return errors.Wrap(s.backend.Users().Update(ctx, u), "repair admin")
	}

	admin := shop.MasterAdmin("")
	err = s.backend.Auth().SignUp(ctx, &admin, s.opts.AdminPassword)
	if errors.Is(err, shop.ErrDuplicateEmail) {
		// credential outlived its profile
		cred, signErr := s.backend.Auth().SignIn(ctx, shop.AdminEmail, s.opts.AdminPassword)
		if signErr != nil {
			return errors.Wrap(signErr, "recover admin credential")
		}
		admin.ID = cred.Subject
		err = nil
	}
	if err != nil {
		return errors.Wrap(err, "sign up admin")
	}
	if _, err := s.backend.Users().Create(ctx, admin); err != nil {
		return errors.Wrap(err, "create admin")
	}
	s.log.WithField("user_id", admin.ID).Info("bootstrap admin created")
	return nil
}
