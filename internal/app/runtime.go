// Package app wires a shop.Backend from configuration for the binaries.
package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-timestore/internal/config"
	kafkax "github.com/ariefcatur/go-timestore/internal/kafka"
	"github.com/ariefcatur/go-timestore/internal/localstore"
	"github.com/ariefcatur/go-timestore/internal/postgres"
	"github.com/ariefcatur/go-timestore/internal/redisx"
	"github.com/ariefcatur/go-timestore/internal/remotestore"
	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

// Runtime owns a backend and the connections and goroutines behind it.
type Runtime struct {
	Backend shop.Backend
	Config  config.Config

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closers []func()
	once    sync.Once
}

// Open connects the configured backend. With follow set, the remote backend
// consumes the change feed so subscriptions see writes from every process.
func Open(ctx context.Context, cfg config.Config, follow bool, logger *log.Entry) (*Runtime, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	bg, cancel := context.WithCancel(context.Background())
	rt := &Runtime{Config: cfg, cancel: cancel}

	var err error
	switch cfg.Backend {
	case config.BackendLocal:
		err = rt.openLocal(ctx, cfg, logger)
	case config.BackendRemote:
		err = rt.openRemote(ctx, bg, cfg, follow, logger)
	default:
		err = errors.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		rt.Close()
		return nil, err
	}
	logger.WithField("backend", rt.Backend.Name()).Info("backend ready")
	return rt, nil
}

func (rt *Runtime) openLocal(ctx context.Context, cfg config.Config, logger *log.Entry) error {
	rdb, err := redisx.Connect(ctx, redisx.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, func() { _ = rdb.Close() })

	b, err := localstore.Open(ctx, redisx.NewKV(rdb, logger), logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, b.Close)
	rt.Backend = b
	return nil
}

func (rt *Runtime) openRemote(ctx, bg context.Context, cfg config.Config, follow bool, logger *log.Entry) error {
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, db.Close)
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.ChangesTopic, 1024, logger)
	prod.Start(bg)
	rt.closers = append(rt.closers, func() {
		prod.Close()
		prod.WaitClosed()
	})

	feed := remotestore.NewFeed(prod, cfg.ServiceName, logger)
	if follow {
		cons := kafkax.NewConsumer(kafkax.ConsumerConfig{
			Brokers:    cfg.KafkaBrokers,
			Group:      cfg.ServiceName + "-" + uuid.NewString(),
			Topic:      cfg.ChangesTopic,
			FromLatest: true,
		}, logger)
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			if err := cons.Start(bg, feed.Handle); err != nil {
				logger.WithError(err).Error("change feed stopped")
			}
		}()
	}

	rt.Backend = remotestore.New(remotestore.Deps{
		Docs:     &postgres.Documents{DB: db},
		Creds:    &postgres.Credentials{DB: db},
		Tokens:   &postgres.Sessions{DB: db},
		Feed:     feed,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
		Log:      logger,
	})
	return nil
}

// StoreOptions maps configuration onto timestore.Options.
func (rt *Runtime) StoreOptions(logger *log.Entry) timestore.Options {
	return timestore.Options{
		ClearCartOnLogout: rt.Config.ClearCartOnLogout(),
		AdminPassword:     rt.Config.AdminPassword,
		SessionIdle:       rt.Config.SessionIdle,
		Log:               logger,
	}
}

// Close stops background consumers, then releases connections in reverse
// order of opening.
func (rt *Runtime) Close() {
	rt.once.Do(func() {
		rt.cancel()
		rt.wg.Wait()
		for i := len(rt.closers) - 1; i >= 0; i-- {
			rt.closers[i]()
		}
	})
}
