package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/usersvc/accounts-api/docs"
	"github.com/usersvc/accounts-api/internal/api/handler"
	"github.com/usersvc/accounts-api/internal/api/middleware"
	"github.com/usersvc/accounts-api/internal/auth"
	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
	"github.com/usersvc/accounts-api/internal/core/service"
	mongodb "github.com/usersvc/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/usersvc/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The mailer may be nil, in which case no welcome emails are queued.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, mail ports.EmailEnqueuer, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	codec := auth.NewJWTCodec(jwtSecret, auth.DefaultTokenTTL)
	accountService := service.NewAccountService(accountRepo, auth.NewBcryptHasher(), codec, mail, log)
	accountHandler := handler.NewAccountHandler(accountService, log)

	authenticated := middleware.Authenticate(codec, log)
	admin := func(action domain.Action) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authenticated, middleware.RequireRole(accountRepo, action)}
	}
	loginLimiter := middleware.RateLimitLogin(redisdb.NewLoginLimiter(rdb), log)

	// --- Public routes ---
	e.POST("/users/register", accountHandler.Register)
	e.POST("/users/login", accountHandler.Login, loginLimiter)
	e.GET("/users/logout", accountHandler.Logout)

	// --- Self-service (token required) ---
	e.GET("/users/me", accountHandler.GetSelf, authenticated)
	e.POST("/users/me", accountHandler.UpdateSelf, authenticated)

	// --- Administration (token + role above Normal) ---
	e.GET("/users/list", accountHandler.List, admin(domain.ActionListAccounts)...)
	e.GET("/users/singleUser/:username", accountHandler.GetByUsername, admin(domain.ActionViewAnyAccount)...)
	e.DELETE("/users/:username", accountHandler.Delete, admin(domain.ActionDeleteAnyAccount)...)
	e.POST("/admin/:username", accountHandler.ChangeRole, admin(domain.ActionChangeAnyRole)...)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
