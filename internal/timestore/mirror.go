package timestore

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-timestore/internal/shop"
)

// mirror is the in-memory copy of one collection. It is replaced wholesale
// on every upstream notification, never diffed.
type mirror[T shop.Entity[T]] struct {
	mu    sync.RWMutex
	items []T
	stop  func()
}

func watch[T shop.Entity[T]](ctx context.Context, c shop.Collection[T]) (*mirror[T], error) {
	m := &mirror[T]{}
	stop, err := c.Subscribe(ctx, m.replace)
	if err != nil {
		return nil, err
	}
	m.stop = stop
	return m, nil
}

func (m *mirror[T]) replace(items []T) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

func (m *mirror[T]) snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T(nil), m.items...)
}

func (m *mirror[T]) find(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.items {
		if v.Key() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (m *mirror[T]) close() {
	if m != nil && m.stop != nil {
		m.stop()
	}
}
