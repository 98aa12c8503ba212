package remotestore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-timestore/internal/postgres"
	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

type fakeDocs struct {
	mu   sync.Mutex
	docs map[string][]postgres.Document
}

func (f *fakeDocs) List(ctx context.Context, coll string) ([]postgres.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postgres.Document(nil), f.docs[coll]...), nil
}

func (f *fakeDocs) Get(ctx context.Context, coll, id string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs[coll] {
		if d.ID == id {
			return d.Body, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeDocs) Insert(ctx context.Context, coll, id string, body json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = map[string][]postgres.Document{}
	}
	f.docs[coll] = append(f.docs[coll], postgres.Document{ID: id, Body: body})
	return nil
}

func (f *fakeDocs) Update(ctx context.Context, coll, id string, body json.RawMessage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs[coll] {
		if d.ID == id {
			f.docs[coll][i].Body = body
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDocs) Delete(ctx context.Context, coll, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs[coll] {
		if d.ID == id {
			f.docs[coll] = append(f.docs[coll][:i], f.docs[coll][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// queue holds published messages until delivered.
type queue struct {
	mu   sync.Mutex
	msgs []kafka.Message
	feed *Feed
	loop bool
}

func (q *queue) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{Key: key, Value: value}
	if q.loop {
		_ = q.feed.Handle(context.Background(), m)
		return
	}
	q.mu.Lock()
	q.msgs = append(q.msgs, m)
	q.mu.Unlock()
}

func (q *queue) deliver(t *testing.T) {
	q.mu.Lock()
	msgs := q.msgs
	q.msgs = nil
	q.mu.Unlock()
	for _, m := range msgs {
		require.NoError(t, q.feed.Handle(context.Background(), m))
	}
}

type fakeCreds struct {
	mu   sync.Mutex
	rows map[string][2]string // email -> uid, hash
}

func (f *fakeCreds) Insert(ctx context.Context, uid, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[string][2]string{}
	}
	if _, ok := f.rows[email]; ok {
		return postgres.ErrEmailTaken
	}
	f.rows[email] = [2]string{uid, hash}
	return nil
}

func (f *fakeCreds) ByEmail(ctx context.Context, email string) (string, string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[email]
	return r[0], r[1], ok, nil
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeTokens) Token(ctx context.Context, sid string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[sid]
	return t, ok, nil
}

func (f *fakeTokens) PutToken(ctx context.Context, sid, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[sid] = token
	return nil
}

func (f *fakeTokens) DeleteToken(ctx context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, sid)
	return nil
}

type fixture struct {
	docs    *fakeDocs
	queue   *queue
	creds   *fakeCreds
	tokens  *fakeTokens
	backend *Backend
}

func setup(t *testing.T, loop bool) *fixture {
	t.Helper()
	f := &fixture{docs: &fakeDocs{}, queue: &queue{loop: loop}, creds: &fakeCreds{}, tokens: &fakeTokens{}}
	f.queue.feed = NewFeed(f.queue, "test", nil)
	f.backend = New(Deps{
		Docs:   f.docs,
		Creds:  f.creds,
		Tokens: f.tokens,
		Feed:   f.queue.feed,
		Secret: []byte("test-secret"),
	})
	return f
}

func TestWritesWaitForEcho(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	var last []shop.Client
	stop, err := f.backend.Clients().Subscribe(ctx, func(c []shop.Client) { last = c })
	require.NoError(t, err)
	defer stop()
	assert.Empty(t, last)

	c, err := f.backend.Clients().Create(ctx, shop.Client{Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	assert.Empty(t, last, "no optimistic update")

	f.queue.deliver(t)
	require.Len(t, last, 1)
	assert.Equal(t, c.ID, last[0].ID)
	assert.Equal(t, "Ana", last[0].Name)
}

func TestBodiesOmitID(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	_, err := f.backend.Products().Create(ctx, shop.Product{ID: "p1", Name: "Pilot", Price: decimal.NewFromInt(10), Stock: 2})
	require.NoError(t, err)
	docs, _ := f.docs.List(ctx, CollProducts)
	require.Len(t, docs, 1)
	assert.Equal(t, "p1", docs[0].ID)
	assert.NotContains(t, string(docs[0].Body), `"id"`)

	p, ok, err := f.backend.Products().Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 2, p.Stock)
}

func TestMissingStockDefaults(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	require.NoError(t, f.docs.Insert(ctx, CollProducts, "old", json.RawMessage(`{"name":"Old","price":"5"}`)))

	list, err := f.backend.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shop.DefaultStock, list[0].Stock)
}

func TestUnknownIDsAreSilent(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()

	require.NoError(t, f.backend.Sales().Update(ctx, shop.Sale{ID: "nope"}))
	require.NoError(t, f.backend.Sales().Delete(ctx, "nope"))
	assert.Empty(t, f.queue.msgs)
}

func TestFeedIgnoresForeignEvents(t *testing.T) {
	f := setup(t, false)
	called := false
	stop := f.queue.feed.Listen(CollUsers, func() { called = true })
	defer stop()

	require.NoError(t, f.queue.feed.Handle(context.Background(), kafka.Message{Value: []byte(`not json`)}))
	require.NoError(t, f.queue.feed.Handle(context.Background(), kafka.Message{Value: []byte(`{"event_type":"Other"}`)}))
	assert.False(t, called)

	f.queue.feed.Announce(CollUsers, "u1", OpUpdate)
	f.queue.deliver(t)
	assert.True(t, called)
}

func TestAuth(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	auth := f.backend.Auth()

	u := shop.User{Email: "ana@example.com", Password: "leak"}
	require.NoError(t, auth.SignUp(ctx, &u, "pw"))
	require.NotEmpty(t, u.ID)
	assert.Empty(t, u.Password)

	dup := shop.User{Email: "ana@example.com"}
	assert.ErrorIs(t, auth.SignUp(ctx, &dup, "pw"), shop.ErrDuplicateEmail)

	preset := shop.MasterAdmin("")
	require.NoError(t, auth.SignUp(ctx, &preset, "admin"))
	assert.Equal(t, shop.AdminID, preset.ID)

	cred, err := auth.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, cred.Subject)
	assert.NotEmpty(t, cred.Token)
	assert.True(t, cred.ExpiresAt.After(time.Now()))

	sub, err := auth.Resume(ctx, shop.Credential{Token: cred.Token})
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	_, err = auth.SignIn(ctx, "ana@example.com", "bad")
	assert.ErrorIs(t, err, shop.ErrInvalidCredentials)
	_, err = auth.SignIn(ctx, "x@example.com", "pw")
	assert.ErrorIs(t, err, shop.ErrUserNotFound)

	_, err = auth.Resume(ctx, shop.Credential{Token: cred.Token + "x"})
	assert.ErrorIs(t, err, shop.ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	a := &Auth{Creds: &fakeCreds{}, Secret: []byte("s"), TTL: time.Hour, Now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
	tok, _, err := a.GenerateToken("u1", "a@example.com")
	require.NoError(t, err)

	_, err = a.Resume(context.Background(), shop.Credential{Token: tok})
	assert.ErrorIs(t, err, shop.ErrInvalidToken)

	other := &Auth{Secret: []byte("other")}
	_, err = other.ParseToken(tok)
	assert.Error(t, err)
}

func TestSessionsDropCart(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	sessions := f.backend.Sessions()

	rec := shop.SessionRecord{
		Credential: shop.Credential{Subject: "u1", Token: "tok"},
		Cart:       []shop.CartLine{{Product: shop.Product{ID: "1"}, Quantity: 1}},
	}
	require.NoError(t, sessions.Save(ctx, "sid", rec))
	got, ok, err := sessions.Load(ctx, "sid")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", got.Credential.Token)
	assert.Empty(t, got.Cart)

	require.NoError(t, sessions.Save(ctx, "sid", shop.SessionRecord{Cart: rec.Cart}))
	_, ok, err = sessions.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreOverRemoteBackend(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	require.NoError(t, f.docs.Insert(ctx, CollProducts, "1", json.RawMessage(`{"name":"Pilot","price":"100","stock":5}`)))

	s, err := timestore.New(ctx, f.backend, timestore.Options{ClearCartOnLogout: true})
	require.NoError(t, err)
	defer s.Close()

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, shop.AdminID, users[0].ID)
	body, _, _ := f.docs.Get(ctx, CollUsers, shop.AdminID)
	assert.NotContains(t, string(body), "password")

	sess, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	_, err = sess.Login(ctx, shop.AdminEmail, shop.AdminPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, f.tokens.tokens["sid"])

	p, _ := s.Product("1")
	require.NoError(t, sess.AddToCart(ctx, p))
	_, err = sess.Checkout(ctx, "")
	require.NoError(t, err)
	got, _ := s.Product("1")
	assert.Equal(t, 4, got.Stock)
	require.Len(t, s.Sales(), 1)

	s.Forget("sid")
	restored, err := s.Session(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, restored.User())
	assert.Equal(t, shop.AdminID, restored.User().ID)
	assert.Equal(t, shop.AdminID, restored.Credential().Subject)

	require.NoError(t, restored.Logout(ctx))
	_, ok := f.tokens.tokens["sid"]
	assert.False(t, ok)
}
