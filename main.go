package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stevemurr/fitness-server/config"
	"github.com/stevemurr/fitness-server/fitness"
	"github.com/stevemurr/fitness-server/handler"
	"github.com/stevemurr/fitness-server/logging"
	"github.com/stevemurr/fitness-server/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.New(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Fatalf("failed to create store (backend=%s): %v", cfg.StoreBackend, err)
	}
	defer s.Close()
	if cfg.StoreBackend == store.BackendOffline {
		logger.Warn("no database configured, serving fallback data")
	}

	svc := fitness.NewService(s, fitness.Config{
		Logger:       logger,
		Timeout:      cfg.StoreTimeout,
		DatabaseURL:  cfg.DatabaseURL,
		DatabaseName: cfg.DatabaseName,
	})

	var h http.Handler = handler.New(svc, logger)
	h = logging.RequestLogger(logger)(h)
	h = logging.RequestID(logger)(h)
	h = handler.CORS(h, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":     cfg.Addr(),
		"store":    cfg.StoreBackend,
		"database": s.Name(),
	}).Info("Fitness API starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server error: %v", err)
	}
}
