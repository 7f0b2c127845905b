package http

import (
	"github.com/gin-gonic/gin"

	appsvc "tasktrack/internal/app"
	"tasktrack/internal/bootstrap"
	"tasktrack/internal/cache"
	"tasktrack/internal/pkg/hasher"
	"tasktrack/internal/pkg/jwtutil"
	"tasktrack/internal/platform/rabbitmq"
	"tasktrack/internal/repository"
	"tasktrack/internal/transport/http/handler"
	"tasktrack/internal/transport/http/middleware"
	"tasktrack/internal/transport/http/session"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(app.Logger))

	healthHandler := handler.NewHealthHandler(cfg, app.DB, app.Redis, app.MQConn, app.StartedAt)
	router.GET("/healthz", healthHandler.Check)

	tokens := jwtutil.NewManager([]byte(cfg.Auth.JWTSecret), cfg.TokenTTL())
	sessions := session.NewTransport(cfg.Auth.CookieName, tokens.TTL(), cfg.Auth.CookieSecure)

	// Typed nils must not leak into the interfaces below.
	var (
		publisher   appsvc.AuthEventPublisher
		revoker     appsvc.TokenRevoker
		revocations middleware.RevocationChecker
	)
	auditService := appsvc.NewAuditService(repository.NewAuthEventRepository(app.DB))
	if app.MQConn != nil {
		publisher = rabbitmq.NewEventPublisher(app.MQConn, cfg.RabbitMQ.AuthEventQueue)
	} else {
		publisher = auditService
	}
	if cfg.Auth.RevokeOnLogout && app.Redis != nil {
		denylist := cache.NewTokenDenylist(app.Redis)
		revoker = denylist
		revocations = denylist
	}

	userRepo := repository.NewUserRepository(app.DB)
	taskRepo := repository.NewTaskRepository(app.DB)
	authService := appsvc.NewAuthService(
		userRepo,
		hasher.New(cfg.Auth.BcryptCost, cfg.Auth.HashWorkers),
		tokens,
		publisher,
		revoker,
		app.Logger,
	)
	taskService := appsvc.NewTaskService(taskRepo)
	authHandler := handler.NewAuthHandler(authService, sessions, app.Logger)
	taskHandler := handler.NewTaskHandler(taskService, app.Logger)
	auditHandler := handler.NewAuditHandler(auditService, app.Logger)

	requireAuth := middleware.AuthJWT(middleware.AuthOptions{
		Tokens:      tokens,
		Transport:   sessions,
		Revocations: revocations,
		Logger:      app.Logger,
	})

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", requireAuth, authHandler.Me)
	authGroup.GET("/events", requireAuth, auditHandler.List)

	taskGroup := api.Group("/tasks")
	taskGroup.Use(requireAuth)
	taskGroup.GET("", taskHandler.List)
	taskGroup.POST("", taskHandler.Create)
	taskGroup.PUT("/:id", taskHandler.Update)
	taskGroup.DELETE("/:id", taskHandler.Delete)

	return router
}
