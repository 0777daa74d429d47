package handler

import (
	"ledger-service/internal/adapter/http/middleware"
	"ledger-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	UserSvc        ports.UserService
	AccountSvc     ports.AccountService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	RateLimiter    *middleware.RateLimiter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware. The admission check runs before auth so rejected
	// bursts never cost a token validation.
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	if deps.RateLimiter != nil {
		r.Use(middleware.RateLimit(deps.RateLimiter, deps.Logger))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	userHandler := NewUserHandler(deps.UserSvc)
	accountHandler := NewAccountHandler(deps.AccountSvc, deps.LedgerSvc)
	txHandler := NewTransactionHandler(deps.LedgerSvc)

	// Public routes
	r.POST("/users", userHandler.Register)
	r.POST("/users/login", userHandler.Login)

	// Everything else requires a bearer token.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	users := r.Group("/users", jwtAuth)
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	accounts := r.Group("/accounts", jwtAuth)
	{
		accounts.POST("", accountHandler.Create)
		accounts.GET("", accountHandler.List)
		accounts.GET("/:id", accountHandler.Get)
		accounts.PUT("/:id", accountHandler.Update)
		accounts.DELETE("/:id", accountHandler.Delete)
		accounts.POST("/:id/deposit", accountHandler.Deposit)
		accounts.POST("/:id/withdraw", accountHandler.Withdraw)
	}

	transactions := r.Group("/transactions", jwtAuth)
	{
		transactions.POST("", txHandler.Create)
		transactions.GET("", txHandler.List)
		transactions.GET("/:id", txHandler.Get)
		transactions.PUT("/:id/status", txHandler.UpdateStatus)
	}

	return r
}
