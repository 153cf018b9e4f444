package service

import (
	"context"

	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/events"
	"github.com/Agus3160/blog-web-app-server-go/internal/repository"
	"github.com/Agus3160/blog-web-app-server-go/internal/storage"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/Agus3160/blog-web-app-server-go/pkg/telemetry"
	"go.uber.org/zap"
)

// UserService implements user directory reads and account deletion
type UserService struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	storage   storage.ObjectStorage
	publisher events.Publisher
}

// NewUserService creates a UserService
func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	store storage.ObjectStorage,
	publisher events.Publisher,
) *UserService {
	return &UserService{users: users, posts: posts, storage: store, publisher: publisher}
}

// List returns every account
func (s *UserService) List(ctx context.Context) ([]*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.List")
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list users", "Internal Server Error").WithCause(err)
	}

	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, &dto.UserResponse{
			Username: u.Username,
			Email:    u.Email,
			ImageURL: u.ImageURL,
		})
	}
	return out, nil
}

// GetByUsername returns one account's public view
func (s *UserService) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.GetByUsername")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return nil, apperror.NotFound("no user with that username", "User not found")
	}

	return &dto.UserResponse{
		Username: user.Username,
		Email:    user.Email,
		ImageURL: user.ImageURL,
	}, nil
}

// OwnerID returns the account ID itself; the route parameter already names
// the resource owner. Satisfies the ownership middleware's lookup contract.
func (s *UserService) OwnerID(ctx context.Context, id string) (string, error) {
	return id, nil
}

// Delete removes an account together with its stored images. Post rows
// cascade at the schema level, so their objects are collected first.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "UserService.Delete")
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperror.Internal("failed to look up user", "Internal Server Error").WithCause(err)
	}
	if user == nil {
		return apperror.NotFound("no user with that id", "User not found")
	}

	imagePaths, err := s.posts.ListImagePathsByAuthor(ctx, id)
	if err != nil {
		return apperror.Internal("failed to collect post images", "Internal Server Error").WithCause(err)
	}
	if user.ImagePath != "" {
		imagePaths = append(imagePaths, user.ImagePath)
	}
	for _, path := range imagePaths {
		if err := s.storage.Delete(ctx, path); err != nil {
			logger.Get().Warn("failed to delete stored image",
				zap.String("path", path), zap.Error(err))
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return apperror.Internal("failed to delete user", "Internal Server Error").WithCause(err)
	}

	s.publisher.Publish(ctx, events.EventUserDeleted, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
	})
	return nil
}
