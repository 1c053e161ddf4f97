package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/apiserver"
	"github.com/empresasintegra/leykarin/pkg/attachment"
	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/config"
	"github.com/empresasintegra/leykarin/pkg/mailer"
	"github.com/empresasintegra/leykarin/pkg/storage"
	"github.com/empresasintegra/leykarin/pkg/store/postgres"
	redisclient "github.com/empresasintegra/leykarin/pkg/store/redis"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapConfig.Level = level
	}
	return zapConfig.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sessions, err := redisclient.NewSessionStore(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer sessions.Close()

	objectStore, err := storage.NewMinioStore(&cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create object storage client", zap.Error(err))
	}
	if err := objectStore.EnsureBucket(context.Background()); err != nil {
		logger.Fatal("Failed to prepare storage bucket", zap.Error(err))
	}

	stager, err := attachment.NewStager(cfg.Uploads.TempDir)
	if err != nil {
		logger.Fatal("Failed to prepare upload staging dir", zap.Error(err))
	}
	validator := attachment.NewValidator(cfg.Uploads.MaxBytes)
	pipeline := attachment.NewPipeline(objectStore, logger)

	catalog := postgres.NewCatalogRepository(db.DB())
	complainants := postgres.NewComplainantRepository(db.DB())
	complaints := postgres.NewComplaintRepository(db.DB())
	forum := postgres.NewForumRepository(db.DB())
	admins := postgres.NewAdminRepository(db.DB())
	notifications := postgres.NewNotificationRepository(db.DB())

	flow := wizard.New(sessions, catalog, complainants, complaints, pipeline, stager, logger)
	mail := mailer.New(&cfg.SMTP, notifications, logger)
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	server := apiserver.NewServer(apiserver.Deps{
		Flow:         flow,
		Validator:    validator,
		Stager:       stager,
		Catalog:      catalog,
		Complainants: complainants,
		Complaints:   complaints,
		Forum:        forum,
		Admins:       admins,
		Mailer:       mail,
		Tokens:       tokens,
	}, cfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.ReadTimeout * 2,
	}

	go func() {
		logger.Info("Starting API server", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
