package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casdu/portal-api/internal/api/handler"
	"github.com/casdu/portal-api/internal/api/middleware"
	"github.com/casdu/portal-api/internal/core/ports"
	"github.com/casdu/portal-api/internal/infrastructure/http/handlers"
)

// Dependencies carries the constructed collaborators into the router.
// Everything is built in main and passed in; the router only wires routes
// to policies.
type Dependencies struct {
	Mongo    *mongo.Database
	Redis    *redis.Client
	Auth     ports.AuthService
	Identity ports.IdentityService
	Users    ports.UserService
	Codec    ports.TokenCodec
	Secret   ports.SecretVerifier
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Authorization gate policies ---
	classifier := middleware.NewClassifier(deps.Secret, deps.Codec)
	optional := middleware.Optional(classifier)
	required := middleware.Required(classifier)
	adminRequired := middleware.AdminRequired(classifier)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Identity, deps.Codec)
	employeeHandler := handler.NewEmployeeHandler(deps.Identity)
	userHandler := handler.NewUserHandler(deps.Users)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/thaid-login", authHandler.ThaIDLogin)
	e.GET("/auth/session", authHandler.Session, optional)
	e.GET("/auth/me", authHandler.Me, required)
	e.POST("/auth/refresh", authHandler.Refresh, required)
	e.PATCH("/auth/password", authHandler.ChangePassword, required)
	e.PATCH("/auth/profile", userHandler.Profile, required)

	// --- Employee verification (external auth orchestration layer) ---
	e.POST("/employee/verify", employeeHandler.Verify, required)

	// --- Administrative principal management ---
	e.GET("/users", userHandler.List, adminRequired)
	e.GET("/users/:id", userHandler.Get, adminRequired)
	e.PATCH("/users/:id", userHandler.Update, adminRequired)
	e.DELETE("/users/:id", userHandler.Delete, adminRequired)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
