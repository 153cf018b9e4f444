// Package di wires repositories, services and handlers from configuration.
package di

import (
	"context"
	"fmt"

	"github.com/Agus3160/blog-web-app-server-go/internal/events"
	"github.com/Agus3160/blog-web-app-server-go/internal/handler"
	"github.com/Agus3160/blog-web-app-server-go/internal/mailer"
	"github.com/Agus3160/blog-web-app-server-go/internal/migrations"
	"github.com/Agus3160/blog-web-app-server-go/internal/repository"
	"github.com/Agus3160/blog-web-app-server-go/internal/service"
	"github.com/Agus3160/blog-web-app-server-go/internal/storage"
	"github.com/Agus3160/blog-web-app-server-go/pkg/config"
	"github.com/Agus3160/blog-web-app-server-go/pkg/database"
	"github.com/Agus3160/blog-web-app-server-go/pkg/kafka"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	appredis "github.com/Agus3160/blog-web-app-server-go/pkg/redis"
	"go.uber.org/zap"
)

// Container holds every wired dependency of the application
type Container struct {
	Config *config.Config

	DB        *database.PostgresDB
	Redis     *appredis.Client
	Publisher events.Publisher

	Users repository.UserRepository
	Posts repository.PostRepository

	Tokens      *service.TokenService
	AuthService *service.AuthService
	UserService *service.UserService
	PostService *service.PostService

	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
	HealthHandler *handler.HealthHandler
}

// New builds the container: connects Postgres and Redis, applies
// migrations, and wires services and handlers.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := migrations.Up(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, err
	}

	redisClient, err := appredis.NewClient(ctx, &appredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var publisher events.Publisher = events.NewNoOpPublisher()
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			logger.Get().Warn("kafka unavailable, events disabled", zap.Error(err))
		} else {
			publisher = events.NewKafkaPublisher(producer, cfg.Kafka.Topic)
		}
	}

	store, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		publisher.Close()
		redisClient.Close()
		db.Close()
		return nil, err
	}

	mail := mailer.NewSMTPSender(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	users := repository.NewPostgresUserRepository(db.Pool())
	posts := repository.NewPostgresPostRepository(db.Pool())

	tokens := service.NewTokenService(
		service.TokenConfig{Secret: cfg.JWT.AccessSecret, TTL: cfg.JWT.AccessTTL},
		service.TokenConfig{Secret: cfg.JWT.RefreshSecret, TTL: cfg.JWT.RefreshTTL},
		service.TokenConfig{Secret: cfg.JWT.ResetSecret, TTL: cfg.JWT.ResetTTL},
	)
	hasher := service.NewBcryptHasher()

	resetURLBase := cfg.App.FrontendOrigin + "/reset-password"
	authService := service.NewAuthService(users, hasher, tokens, store, mail, publisher, resetURLBase)
	userService := service.NewUserService(users, posts, store, publisher)
	postService := service.NewPostService(posts, store, publisher)

	return &Container{
		Config:        cfg,
		DB:            db,
		Redis:         redisClient,
		Publisher:     publisher,
		Users:         users,
		Posts:         posts,
		Tokens:        tokens,
		AuthService:   authService,
		UserService:   userService,
		PostService:   postService,
		AuthHandler:   handler.NewAuthHandler(authService),
		UserHandler:   handler.NewUserHandler(userService),
		PostHandler:   handler.NewPostHandler(postService),
		HealthHandler: handler.NewHealthHandler(db, redisClient),
	}, nil
}

// Close releases every held connection
func (c *Container) Close() {
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Get().Warn("failed to close redis client", zap.Error(err))
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
