package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-timestore/internal/app"
	"github.com/ariefcatur/go-timestore/internal/concierge"
	"github.com/ariefcatur/go-timestore/internal/config"
	"github.com/ariefcatur/go-timestore/internal/httpx"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	cfg.SetupLogging()
	logger := log.WithField("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("api stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Entry) error {
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rt, err := app.Open(startCtx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := timestore.New(startCtx, rt.Backend, rt.StoreOptions(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	var gen concierge.Generator
	gemini, err := concierge.NewGemini(startCtx, cfg.APIKey, cfg.GeminiModel)
	if err != nil {
		logger.WithError(err).Warn("concierge disabled")
	} else if gemini != nil {
		gen = gemini
	}

	router := httpx.NewRouter(logger)
	h := &httpx.Handler{
		Store:     store,
		Concierge: concierge.New(gen, logger),
		AuthRate:  cfg.AuthRateLimit,
		Log:       logger,
	}
	if err := h.Register(router); err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(log.Fields{"addr": cfg.HTTPAddr, "backend": store.BackendName()}).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
