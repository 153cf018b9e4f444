package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/di"
	"github.com/Agus3160/blog-web-app-server-go/internal/middleware"
	"github.com/Agus3160/blog-web-app-server-go/pkg/config"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/Agus3160/blog-web-app-server-go/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	container, err := di.New(ctx, cfg)
	if err != nil {
		log.Fatal("failed to wire dependencies", zap.Error(err))
	}
	defer container.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := buildRouter(cfg, container)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func buildRouter(cfg *config.Config, c *di.Container) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.ErrorHandler(),
		middleware.CORS([]string{cfg.App.FrontendOrigin}),
		telemetry.TracingMiddleware(cfg.App.Name),
	)

	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", c.AuthHandler.SignUp)
		auth.POST("/login",
			middleware.RateLimit(c.Redis, "login", 10, time.Minute),
			c.AuthHandler.Login)
		auth.POST("/refresh", c.AuthHandler.Refresh)
		auth.POST("/logout", c.AuthHandler.Logout)
		auth.POST("/reset-password-send-email",
			middleware.RateLimit(c.Redis, "reset-email", 5, time.Minute),
			c.AuthHandler.ResetPasswordEmail)
		auth.POST("/reset-password/:token", c.AuthHandler.ResetPassword)
	}

	authenticated := middleware.Authenticated(c.Tokens)

	user := api.Group("/user")
	{
		user.GET("", authenticated, middleware.RequireAdmin(), c.UserHandler.List)
		user.GET("/:username", authenticated, c.UserHandler.GetByUsername)
		user.PUT("", authenticated, c.AuthHandler.UpdateProfile)
		user.PUT("/password", authenticated, c.AuthHandler.ChangePassword)
		user.DELETE("/:id", authenticated,
			middleware.RequireOwner(c.UserService.OwnerID, "id"),
			c.UserHandler.Delete)
	}

	posts := api.Group("/posts", authenticated)
	{
		posts.GET("", c.PostHandler.List)
		posts.GET("/:id", c.PostHandler.GetByID)
		posts.GET("/author/:username", c.PostHandler.ListByAuthor)
		posts.POST("/upload", c.PostHandler.Create)
		posts.PUT("/:id",
			middleware.RequireOwner(c.PostService.OwnerID, "id"),
			c.PostHandler.Update)
		posts.DELETE("/:id",
			middleware.RequireOwner(c.PostService.OwnerID, "id"),
			c.PostHandler.Delete)
	}

	return router
}
