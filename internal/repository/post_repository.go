package repository

import (
	"context"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
)

// PostRepository defines persistence operations for posts. Lookups return
// (nil, nil) when no row matches. Read operations join the author's username.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	ListByAuthorUsername(ctx context.Context, username string) ([]*domain.Post, error)
	ListImagePathsByAuthor(ctx context.Context, authorID string) ([]string, error)
	Update(ctx context.Context, id, title, content, imageURL, imagePath string) error
	Delete(ctx context.Context, id string) error
}
