package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casdu/portal-api/internal/api"
	"github.com/casdu/portal-api/internal/core/service"
	"github.com/casdu/portal-api/internal/infrastructure/config"
	mongodb "github.com/casdu/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/casdu/portal-api/internal/infrastructure/db/redis"
	"github.com/casdu/portal-api/internal/infrastructure/queue"
	"github.com/casdu/portal-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Datastores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	principalRepo := mongodb.NewPrincipalRepository(db)
	if err := principalRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	employeeRepo := mongodb.NewEmployeeRepository(db)

	// --- Core services ---
	codec := service.NewSessionTokenCodec(principalRepo, cfg.JWTSecret, cfg.TokenTTL)
	secret := service.NewSystemSecretVerifier(cfg.AuthSecret)
	authService := service.NewAuthService(principalRepo, codec)
	userService := service.NewUserService(principalRepo)

	dispatcher := queue.NewDispatcher(cfg.Sync.Workers, log)
	identityService := service.NewIdentityService(
		principalRepo,
		employeeRepo,
		codec,
		dispatcher,
		redisdb.NewSyncGate(rdb, cfg.Sync.ThrottleTTL),
		service.IdentityOptions{
			TestPrefix:      cfg.ThaID.TestPrefix,
			SandboxCID:      cfg.ThaID.SandboxCID,
			SyncTimeout:     cfg.Sync.Timeout,
			DeparturePolicy: cfg.Sync.DeparturePolicy,
		},
		log,
	)
	dispatcher.Start(ctx, identityService)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Mongo:    db,
		Redis:    rdb,
		Auth:     authService,
		Identity: identityService,
		Users:    userService,
		Codec:    codec,
		Secret:   secret,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal api listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
