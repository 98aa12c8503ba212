// Package localstore keeps every collection as one JSON array in a durable
// key-value store. Writes are applied in process and persisted immediately;
// other processes learn about them through change notifications.
package localstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// KV is implemented by redisx.KV.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Del(ctx context.Context, key string) error
	Notify(ctx context.Context, key string) error
	Watch(ctx context.Context, key string, fn func()) (stop func(), err error)
}

// Collection is a shop.Collection over a single KV key.
type Collection[T shop.Entity[T]] struct {
	kv  KV
	key string
	log *log.Entry

	mu      sync.Mutex
	items   []T
	subs    map[int]func([]T)
	nextSub int
	stop    func()
}

type collectionOpts[T any] struct {
	seed  []T
	watch bool
}

// open loads key once. seed is written when the key is absent; with watch
// the collection reloads whenever another process rewrites key.
func open[T shop.Entity[T]](ctx context.Context, kv KV, key string, o collectionOpts[T], logger *log.Entry) (*Collection[T], error) {
	c := &Collection[T]{kv: kv, key: key, subs: map[int]func([]T){}, log: logger.WithField("key", key)}
	items, ok, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.items = items
	if !ok && o.seed != nil {
		c.items = append([]T(nil), o.seed...)
		if err := c.persist(ctx, c.items); err != nil {
			return nil, err
		}
		c.log.WithField("count", len(c.items)).Info("collection seeded")
	}
	if o.watch {
		stop, err := kv.Watch(ctx, key, c.reload)
		if err != nil {
			return nil, err
		}
		c.stop = stop
	}
	return c, nil
}

func (c *Collection[T]) load(ctx context.Context) ([]T, bool, error) {
	b, ok, err := c.kv.Get(ctx, c.key)
	if err != nil || !ok {
		return nil, ok, err
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, true, errors.Wrapf(err, "decode %s", c.key)
	}
	return items, true, nil
}

func (c *Collection[T]) persist(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode %s", c.key)
	}
	if err := c.kv.Set(ctx, c.key, b); err != nil {
		return err
	}
	if err := c.kv.Notify(ctx, c.key); err != nil {
		c.log.WithError(err).Warn("change notification failed")
	}
	return nil
}

// reload replaces the whole collection with what is stored now.
func (c *Collection[T]) reload() {
	items, _, err := c.load(context.Background())
	if err != nil {
		c.log.WithError(err).Error("reload after external change")
		return
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.log.WithField("count", len(items)).Debug("collection reloaded")
	c.notify()
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...), nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.items {
		if v.Key() == id {
			return v, true, nil
		}
	}
	var zero T
	return zero, false, nil
}

func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	if v.Key() == "" {
		v = v.WithKey(uuid.NewString())
	}
	err := c.write(ctx, func(items []T) ([]T, bool) { return append(items, v), true })
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (c *Collection[T]) Update(ctx context.Context, v T) error {
	return c.write(ctx, func(items []T) ([]T, bool) {
		found := false
		for i := range items {
			if items[i].Key() == v.Key() {
				items[i] = v
				found = true
			}
		}
		return items, found
	})
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.write(ctx, func(items []T) ([]T, bool) {
		out := items[:0]
		for _, v := range items {
			if v.Key() != id {
				out = append(out, v)
			}
		}
		return out, len(out) != len(items)
	})
}

// write applies fn to a copy and persists it. Nothing changes when fn
// reports no change or persisting fails.
func (c *Collection[T]) write(ctx context.Context, fn func([]T) ([]T, bool)) error {
	c.mu.Lock()
	next, changed := fn(append([]T(nil), c.items...))
	if !changed {
		c.mu.Unlock()
		return nil
	}
	if err := c.persist(ctx, next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.items = next
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	c.mu.Lock()
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

func (c *Collection[T]) close() {
	if c.stop != nil {
		c.stop()
	}
}
