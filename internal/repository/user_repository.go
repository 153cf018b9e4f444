package repository

import (
	"context"
	"errors"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
)

// ErrDuplicate is returned when an insert violates a unique constraint
// (username or email already taken).
var ErrDuplicate = errors.New("unique constraint violation")

// UserRepository defines persistence operations for users. Lookups return
// (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id, username, email, imageURL, imagePath string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
