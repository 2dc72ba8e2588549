// @title           Crypto Tracker API
// @version         1.0
// @description     Accounts, display preferences and a cached market-data proxy for the crypto tracker dashboard.
// @host            localhost:4000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/cryptotracker/tracker/docs"
	"github.com/cryptotracker/tracker/internal/api"
	"github.com/cryptotracker/tracker/internal/core/ports"
	"github.com/cryptotracker/tracker/internal/core/service"
	"github.com/cryptotracker/tracker/internal/infrastructure/db/memory"
	"github.com/cryptotracker/tracker/internal/infrastructure/db/mongo"
	"github.com/cryptotracker/tracker/internal/infrastructure/db/redis"
	"github.com/cryptotracker/tracker/internal/infrastructure/market"
	"github.com/cryptotracker/tracker/internal/pkg/config"
	"github.com/cryptotracker/tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		File:    cfg.LogFile,
		Service: "crypto-tracker-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		users    ports.UserRepository
		db       *mongodriver.Database
		rdb      *goredis.Client
		denylist ports.TokenDenylist = memory.NewTokenDenylist()
		cache    ports.MarketCache   = memory.NewMarketCache()
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()

		repo := mongo.NewUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		users, db = repo, database
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	default:
		users = memory.NewUserRepository()
		log.Warn().Msg("using in-memory store; data is lost on restart")
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()

		rdb = client
		denylist = redis.NewTokenDenylist(client)
		cache = redis.NewMarketCache(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	authService := service.NewAuthService(users, denylist, cfg.JWTSecret, cfg.TokenTTL, log)
	preferenceService := service.NewPreferenceService(users, log)
	marketClient := market.NewClient(market.Config{
		BaseURL:           cfg.Market.BaseURL,
		CacheTTL:          cfg.Market.CacheTTL,
		RequestsPerMinute: cfg.Market.RequestsPerMinute,
	}, cache, log)

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Preferences:   preferenceService,
		Market:        marketClient,
		Mongo:         db,
		Redis:         rdb,
		Log:           log,
		CORSOrigins:   cfg.Origins(),
		AuthRateLimit: cfg.AuthRateLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
