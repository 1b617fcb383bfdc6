package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"argip-api/internal/auth"
	"argip-api/internal/catalog"
	"argip-api/internal/config"
	"argip-api/internal/server"
	"argip-api/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := cfg.NewLogger()
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	db, err := storage.Open(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Database ready")

	if err := run(cfg, db, log); err != nil {
		log.WithError(err).Error("Server stopped with error")
	}

	if err := storage.Close(db); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, db *gorm.DB, log *logrus.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	handler := server.NewRouter(server.Deps{
		Users:          auth.NewService(db, cfg.BcryptCost),
		Tokens:         auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL()),
		Catalog:        catalog.NewStore(db),
		DB:             sqlDB,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Context:        bgCtx,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
