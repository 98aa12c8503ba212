package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

func TestKVGetSetDel(t *testing.T) {
	mr := setup(t)
	rdb, err := Connect(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	kv := NewKV(rdb, nil)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, KeyProducts, []byte(`[]`)))
	b, ok, err := kv.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(b))

	require.NoError(t, kv.Del(ctx, KeyProducts))
	assert.False(t, mr.Exists(KeyProducts))
}

func TestWatchIgnoresOwnOrigin(t *testing.T) {
	mr := setup(t)
	ctx := context.Background()
	rdb := New(Options{Addr: mr.Addr()})
	defer rdb.Close()
	a, b := NewKV(rdb, nil), NewKV(rdb, nil)

	heard := make(chan struct{}, 4)
	stop, err := a.Watch(ctx, KeyUsers, func() { heard <- struct{}{} })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, a.Notify(ctx, KeyUsers))
	require.NoError(t, b.Notify(ctx, KeyUsers))

	select {
	case <-heard:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification from other origin")
	}
	select {
	case <-heard:
		t.Fatal("own write was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConnectFails(t *testing.T) {
	_, err := Connect(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "timestore_user:abc", SessionUserKey("abc"))
	assert.Equal(t, "timestore_cart:abc", SessionCartKey("abc"))
	assert.Equal(t, "timestore:changed:timestore_users_db", ChangedChannel(KeyUsers))
}
