package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/cryptotracker/tracker/internal/api/handler"
	"github.com/cryptotracker/tracker/internal/api/middleware"
	"github.com/cryptotracker/tracker/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers. Mongo and Redis
// are optional; when nil they are left out of the readiness check.
type Deps struct {
	Auth        ports.AuthService
	Preferences ports.PreferenceService
	Market      ports.MarketData

	Mongo *mongo.Database
	Redis *redis.Client

	Log zerolog.Logger

	// CORSOrigins is the browser allow-list. Empty allows any origin.
	CORSOrigins []string
	// AuthRateLimit is requests per second per client IP on /api/auth.
	// Zero disables throttling.
	AuthRateLimit float64
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics get their own registry so several routers can coexist in
	// one process; /metrics serves it together with the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.OPTIONS},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "cryptotracker",
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Preferences)
	marketHandler := handler.NewMarketHandler(d.Market)
	authMiddleware := middleware.Auth(d.Auth)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	if d.AuthRateLimit > 0 {
		auth.Use(authRateLimiter(d.AuthRateLimit))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authMiddleware)

	// --- User routes (bearer token required) ---
	user := api.Group("/user", authMiddleware)
	user.GET("/me", userHandler.Me)
	user.PUT("/settings", userHandler.UpdateSettings)
	user.PUT("/favorites", userHandler.UpdateFavorites)

	// --- Market proxy ---
	market := api.Group("/market")
	market.GET("/coins", marketHandler.Coins)
	market.GET("/coins/:id", marketHandler.Details)
	market.GET("/coins/:id/chart", marketHandler.Chart)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(readinessChecks(d))

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func readinessChecks(d Deps) map[string]handler.Pinger {
	checks := make(map[string]handler.Pinger)
	if d.Mongo != nil {
		db := d.Mongo
		checks["mongodb"] = func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}
	}
	if d.Redis != nil {
		rdb := d.Redis
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
