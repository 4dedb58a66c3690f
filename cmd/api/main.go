package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/georgemunganga/promoled-directory/internal/config"
	"github.com/georgemunganga/promoled-directory/internal/graceful"
	"github.com/georgemunganga/promoled-directory/internal/logger"
	"github.com/georgemunganga/promoled-directory/internal/modules/admin"
	"github.com/georgemunganga/promoled-directory/internal/modules/auth"
	"github.com/georgemunganga/promoled-directory/internal/modules/contact"
	"github.com/georgemunganga/promoled-directory/internal/modules/directory"
	"github.com/georgemunganga/promoled-directory/internal/modules/media"
	"github.com/georgemunganga/promoled-directory/internal/modules/postalcode"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync(logg)

	logg.Infow("starting promoled directory", "config", cfg.String())
	if err := run(cfg, logg); err != nil {
		logg.Fatalw("server stopped with error", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	log.Info("successfully connected to the database")

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := directory.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := admin.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	adminRepo := admin.NewPostgresRepository(db)
	adminService := admin.NewService(adminRepo)
	if cfg.Auth.AdminEmail != "" {
		created, err := adminService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Infow("bootstrap admin created", "email", cfg.Auth.AdminEmail)
		}
	}

	authService := auth.NewService(adminRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Postal codes ────────────────────────────────────────
	postalRepo, err := postalcode.NewPgxRepository(ctx, pool)
	if err != nil {
		return err
	}
	postalService := postalcode.NewService(postalRepo, log)
	if err := postalService.Load(ctx); err != nil {
		return err
	}
	postalHandler := postalcode.NewHandler(postalService)
	postalHandler.RegisterRoutes(router)

	// ── Photo storage ───────────────────────────────────────
	var images directory.ImageStore
	if cfg.Storage.Endpoint != "" {
		store, err := media.NewMinioStore(cfg.Storage)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		images = store
		media.NewHandler(store, log).RegisterRoutes(router)
	} else {
		log.Warn("MINIO_ENDPOINT not set, photo uploads are disabled")
	}

	// ── Directory ───────────────────────────────────────────
	directoryService := directory.NewService(directory.NewPostgresRepository(db), postalService, log)
	if err := directoryService.Load(ctx); err != nil {
		return err
	}
	directoryHandler := directory.NewHandler(directoryService, images, log)
	directoryHandler.RegisterRoutes(router)

	// ── Contact requests ────────────────────────────────────
	var publisher contact.Publisher = contact.NewLogPublisher(log)
	if cfg.Kafka.Broker != "" {
		publisher = contact.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.ContactTopic)
	}
	defer publisher.Close()
	contact.NewHandler(contact.NewService(directoryService, publisher, log)).RegisterRoutes(router)

	// ── Administration ──────────────────────────────────────
	router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(authService.RequireAdmin)
		directoryHandler.RegisterAdminRoutes(r)
		postalHandler.RegisterAdminRoutes(r)
		admin.NewHandler(adminService).RegisterAdminRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Infow("promoled directory API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
