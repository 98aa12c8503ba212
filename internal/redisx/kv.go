package redisx

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Change is published after a key is rewritten.
type Change struct {
	Origin string `json:"origin"`
	Key    string `json:"key"`
}

// KV is a durable string store with per-key change notification across
// processes sharing the same Redis. Each KV has its own origin so it never
// hears its own writes.
type KV struct {
	rdb    *redis.Client
	origin string
	log    *log.Entry
}

func NewKV(rdb *redis.Client, logger *log.Entry) *KV {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	origin := uuid.NewString()
	return &KV{rdb: rdb, origin: origin, log: logger.WithFields(log.Fields{"component": "kv", "origin": origin})}
}

func (kv *KV) Origin() string { return kv.origin }

// Get returns ok=false when the key is absent.
func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := kv.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}
	return b, true, nil
}

func (kv *KV) Set(ctx context.Context, key string, val []byte) error {
	return errors.Wrapf(kv.rdb.Set(ctx, key, val, 0).Err(), "set %s", key)
}

func (kv *KV) Del(ctx context.Context, key string) error {
	return errors.Wrapf(kv.rdb.Del(ctx, key).Err(), "del %s", key)
}

// Notify tells other processes that key changed.
func (kv *KV) Notify(ctx context.Context, key string) error {
	b, err := json.Marshal(Change{Origin: kv.origin, Key: key})
	if err != nil {
		return err
	}
	return errors.Wrapf(kv.rdb.Publish(ctx, ChangedChannel(key), b).Err(), "publish %s", key)
}

// Watch calls fn for every change of key made by another origin. ctx bounds
// the subscribe handshake; the watch lasts until stop.
func (kv *KV) Watch(ctx context.Context, key string, fn func()) (stop func(), err error) {
	ps := kv.rdb.Subscribe(context.Background(), ChangedChannel(key))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Wrapf(err, "subscribe %s", key)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				kv.log.WithError(err).WithField("channel", msg.Channel).Warn("bad change message")
				continue
			}
			if c.Origin == kv.origin {
				continue
			}
			fn()
		}
	}()
	return func() {
		_ = ps.Close()
		<-done
	}, nil
}
