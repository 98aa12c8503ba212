package remotestore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/postgres"
	"github.com/ariefcatur/go-timestore/internal/shop"
)

// DocumentStore is implemented by postgres.Documents.
type DocumentStore interface {
	List(ctx context.Context, collection string) ([]postgres.Document, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error)
	Insert(ctx context.Context, collection, id string, body json.RawMessage) error
	Update(ctx context.Context, collection, id string, body json.RawMessage) (bool, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// Collection is a shop.Collection over one document collection. Writes are
// not visible to subscribers until the feed echoes them back.
type Collection[T shop.Entity[T]] struct {
	name string
	docs DocumentStore
	feed *Feed
	log  *log.Entry
}

func NewCollection[T shop.Entity[T]](name string, docs DocumentStore, feed *Feed, logger *log.Entry) *Collection[T] {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Collection[T]{name: name, docs: docs, feed: feed, log: logger.WithField("collection", name)}
}

func (c *Collection[T]) decode(id string, body json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, errors.Wrapf(err, "decode %s/%s", c.name, id)
	}
	return v.WithKey(id), nil
}

// encode drops the id; it is the document key, not part of the body.
func (c *Collection[T]) encode(v T) (json.RawMessage, error) {
	b, err := json.Marshal(v.WithKey(""))
	return b, errors.Wrapf(err, "encode %s", c.name)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	docs, err := c.docs.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := c.decode(d.ID, d.Body)
		if err != nil {
			c.log.WithError(err).Warn("skip undecodable document")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	body, ok, err := c.docs.Get(ctx, c.name, id)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.decode(id, body)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	id := v.Key()
	if id == "" {
		id = uuid.NewString()
	}
	body, err := c.encode(v)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.docs.Insert(ctx, c.name, id, body); err != nil {
		var zero T
		return zero, err
	}
	c.feed.Announce(c.name, id, OpCreate)
	return v.WithKey(id), nil
}

func (c *Collection[T]) Update(ctx context.Context, v T) error {
	body, err := c.encode(v)
	if err != nil {
		return err
	}
	ok, err := c.docs.Update(ctx, c.name, v.Key(), body)
	if err != nil || !ok {
		return err
	}
	c.feed.Announce(c.name, v.Key(), OpUpdate)
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	ok, err := c.docs.Delete(ctx, c.name, id)
	if err != nil || !ok {
		return err
	}
	c.feed.Announce(c.name, id, OpDelete)
	return nil
}

// Subscribe lists the collection again on every change notification and
// hands the full result to fn.
func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	fn(items)
	stop := c.feed.Listen(c.name, func() {
		items, err := c.List(context.Background())
		if err != nil {
			c.log.WithError(err).Error("refresh after change")
			return
		}
		fn(items)
	})
	return stop, nil
}
