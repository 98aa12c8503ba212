package timestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/shop/shoptest"
)

func TestRegisterCreatesPendingUser(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Ana", " ana@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, shop.StatusPending, u.Status)
	assert.Equal(t, shop.RoleUser, u.Role)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = s.Register(ctx, "Ana 2", "ana@example.com", "other")
	assert.ErrorIs(t, err, shop.ErrDuplicateEmail)
	assert.Len(t, s.Users(), 2)
}

func TestLoginFollowsApprovalWorkflow(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	u, err := s.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)
	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)

	_, err = sess.Login(ctx, "ana@example.com", "pw")
	assert.ErrorIs(t, err, shop.ErrAccountPending)
	assert.Nil(t, sess.User())

	require.NoError(t, s.Approve(ctx, u.ID))
	got, err := sess.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, sess.IsAdmin())

	require.NoError(t, sess.Logout(ctx))
	require.NoError(t, s.Reject(ctx, u.ID))
	_, err = sess.Login(ctx, "ana@example.com", "pw")
	assert.ErrorIs(t, err, shop.ErrAccountRejected)
}

func TestLoginFailures(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)

	_, err = sess.Login(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, shop.ErrUserNotFound)

	_, err = sess.Login(ctx, shop.AdminEmail, "wrong")
	assert.ErrorIs(t, err, shop.ErrInvalidCredentials)
}

func TestAdminLoginSurvivesReload(t *testing.T) {
	s, _ := setup(t, watchProduct("1", 100, 5))
	ctx := context.Background()
	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)

	_, err = sess.Login(ctx, shop.AdminEmail, shop.AdminPassword)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())
	p, _ := s.Product("1")
	require.NoError(t, sess.AddToCart(ctx, p))

	s.Forget("sid")
	restored, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, restored.User())
	assert.Equal(t, shop.AdminID, restored.User().ID)
	assert.Equal(t, 1, restored.Cart().Count())
}

func TestLogoutKeepsCartByDefault(t *testing.T) {
	s, _ := setup(t, watchProduct("1", 100, 5))
	ctx := context.Background()
	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	_, err = sess.Login(ctx, shop.AdminEmail, shop.AdminPassword)
	require.NoError(t, err)
	p, _ := s.Product("1")
	require.NoError(t, sess.AddToCart(ctx, p))

	require.NoError(t, sess.Logout(ctx))
	assert.Nil(t, sess.User())
	assert.Equal(t, shop.Credential{}, sess.Credential())
	assert.Equal(t, 1, sess.Cart().Count())
}

func TestLogoutClearsCartWhenConfigured(t *testing.T) {
	b := shoptest.NewBackend(watchProduct("1", 100, 5))
	s, err := New(context.Background(), b, Options{ClearCartOnLogout: true, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	p, _ := s.Product("1")
	require.NoError(t, sess.AddToCart(ctx, p))

	require.NoError(t, sess.Logout(ctx))
	assert.Zero(t, sess.Cart().Len())
	_, stored := b.SessionsF.Records["sid"]
	assert.False(t, stored)
}

func TestStatusChangesAreLastWriteWins(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	u, err := s.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Approve(ctx, u.ID))
	require.NoError(t, s.Reject(ctx, u.ID))
	for _, got := range s.Users() {
		if got.ID == u.ID {
			assert.Equal(t, shop.StatusRejected, got.Status)
		}
	}

	assert.NoError(t, s.Approve(ctx, "missing"))
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, Result{Success: true, Message: MsgLoggedIn}, ResultOf(nil, MsgLoggedIn))
	assert.Equal(t, "Contraseña incorrecta.", ResultOf(shop.ErrInvalidCredentials, "").Message)
	assert.Equal(t, MsgConnectError, ResultOf(errors.New("dial tcp: refused"), "").Message)
	assert.False(t, ResultOf(shop.ErrAccountPending, "").Success)
}

func TestRestoreDropsUnapprovedUser(t *testing.T) {
	s, _ := setup(t, watchProduct("1", 100, 5))
	ctx := context.Background()
	u, err := s.Register(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Approve(ctx, u.ID))
	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	_, err = sess.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	p, _ := s.Product("1")
	require.NoError(t, sess.AddToCart(ctx, p))

	require.NoError(t, s.Reject(ctx, u.ID))
	s.Forget("sid")
	restored, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, restored.User())
	assert.Equal(t, 1, restored.Cart().Count())
}
