package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chatbridge/token-broker/internal/api"
	"github.com/chatbridge/token-broker/internal/core/domain"
	"github.com/chatbridge/token-broker/internal/core/ports"
	"github.com/chatbridge/token-broker/internal/core/service"
	"github.com/chatbridge/token-broker/internal/infrastructure/config"
	brokermongo "github.com/chatbridge/token-broker/internal/infrastructure/db/mongo"
	brokerredis "github.com/chatbridge/token-broker/internal/infrastructure/db/redis"
	"github.com/chatbridge/token-broker/internal/infrastructure/gcp"
	"github.com/chatbridge/token-broker/internal/infrastructure/identity"
	"github.com/chatbridge/token-broker/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger not initialised yet.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	mongoClient, db, err := brokermongo.Connect(ctx, brokermongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	var rdb *goredis.Client
	var limiter ports.MintLimiter
	if cfg.Redis.Addr != "" {
		rdb, err = brokerredis.Connect(ctx, brokerredis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() { _ = rdb.Close() }()
		if cfg.RateLimit.Requests > 0 {
			limiter = brokerredis.NewLimiter(rdb, cfg.RateLimit.Requests,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
		}
	}

	// --- External providers ---
	verifier, err := identity.NewFirebaseVerifier(ctx, cfg.ProjectID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("identity verifier init failed")
	}
	iamClient, err := gcp.NewIAMCredentialsClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("iam credentials client init failed")
	}

	// --- Services ---
	clock := service.NewExpiryClock()
	roomRepo := brokermongo.NewRoomRepository(db)
	resolver := service.NewRoomAccessService(roomRepo, clock, log)
	minter := service.NewMinterService(iamClient, cfg.GatewayAudience, clock, log)
	accounts := map[domain.Provider]string{
		domain.ProviderAnonymous: cfg.GuestAccount(),
		domain.ProviderPassword:  cfg.AdminAccount(),
	}
	broker := service.NewBrokerService(verifier, resolver, minter, limiter, clock, accounts, log)

	// --- HTTP server ---
	e := api.NewRouter(broker, db, rdb, api.RouterConfig{CORSOrigin: cfg.CORSOrigin}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("token broker listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
