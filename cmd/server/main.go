package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/internal/database"
	"github.com/sharebox/sharebox/internal/handlers"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
	"github.com/sharebox/sharebox/pkg/utils"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{Level: logger.LogLevel(cfg.Log.Level), Format: cfg.Log.Format})
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB, cfg.Admin)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	slots := uploadtoken.NewIssuer(cfg.JWT.Secret, cfg.Blob.SlotExpiry)
	store, err := newBlobStore(cfg.Blob, slots)
	if err != nil {
		log.Fatalf("blob store initialization failed: %v", err)
	}

	svc := handlers.Services{
		Registry:   services.NewFileRegistry(db, store, services.NewURLCache(cfg.Cache.URLCacheSize, cfg.Cache.URLCacheTTL, cfg.Blob.URLExpiry)),
		Ledger:     services.NewContributionLedger(db),
		Accounting: services.NewStorageAccounting(db, cfg.Storage),
	}

	bodyLimit := cfg.Server.BodyLimitMB * 1024 * 1024
	app := fiber.New(fiber.Config{BodyLimit: bodyLimit})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.AllowOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, svc)
	if cfg.Blob.Backend == "memory" {
		handlers.RegisterBlobRoutes(app, store)
	}

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":         cfg.Server.Port,
		"address":      listenAddr,
		"body_limit":   humanize.IBytes(uint64(bodyLimit)),
		"blob_backend": cfg.Blob.Backend,
		"db_driver":    cfg.DB.Driver,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}

func newBlobStore(cfg config.BlobConfig, slots *uploadtoken.Issuer) (storage.BlobStore, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(cfg.MemoryBaseURL, slots), nil
	case "minio", "s3", "":
		store, err := storage.NewMinIOStore(cfg, slots)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensuring bucket: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
