package service

import (
	"context"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/internal/events"
	"github.com/Agus3160/blog-web-app-server-go/internal/repository"
	"github.com/Agus3160/blog-web-app-server-go/internal/storage"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/Agus3160/blog-web-app-server-go/pkg/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const postImageDir = "post-images"

// PostService implements post CRUD with image handling
type PostService struct {
	posts     repository.PostRepository
	storage   storage.ObjectStorage
	publisher events.Publisher
}

// NewPostService creates a PostService
func NewPostService(posts repository.PostRepository, store storage.ObjectStorage, publisher events.Publisher) *PostService {
	return &PostService{posts: posts, storage: store, publisher: publisher}
}

// Create stores a new post authored by the session's user
func (s *PostService) Create(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.Create")
	defer span.End()

	var imageURL, imagePath string
	var err error
	if req.Image != "" {
		imageURL, imagePath, err = s.storage.UploadBase64(ctx, postImageDir, req.Image)
		if err != nil {
			return nil, apperror.BadRequest("failed to store post image", "Invalid image payload").WithCause(err)
		}
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  authorID,
		ImageURL:  imageURL,
		ImagePath: imagePath,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if imagePath != "" {
			if delErr := s.storage.Delete(ctx, imagePath); delErr != nil {
				logger.Get().Warn("failed to clean up orphaned post image",
					zap.String("path", imagePath), zap.Error(delErr))
			}
		}
		return nil, apperror.Internal("failed to create post", "Internal Server Error").WithCause(err)
	}

	s.publisher.Publish(ctx, events.EventPostCreated, map[string]interface{}{
		"postId":   post.ID,
		"authorId": authorID,
	})
	return toPostResponse(post), nil
}

// GetByID returns one post
func (s *PostService) GetByID(ctx context.Context, id string) (*dto.PostResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.GetByID")
	defer span.End()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to look up post", "Internal Server Error").WithCause(err)
	}
	if post == nil {
		return nil, apperror.NotFound("no post with that id", "Post not found")
	}
	return toPostResponse(post), nil
}

// List returns all posts, newest first
func (s *PostService) List(ctx context.Context) ([]*dto.PostResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.List")
	defer span.End()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list posts", "Internal Server Error").WithCause(err)
	}
	return toPostResponses(posts), nil
}

// ListByAuthor returns one author's posts, newest first
func (s *PostService) ListByAuthor(ctx context.Context, username string) ([]*dto.PostResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.ListByAuthor")
	defer span.End()

	posts, err := s.posts.ListByAuthorUsername(ctx, username)
	if err != nil {
		return nil, apperror.Internal("failed to list posts", "Internal Server Error").WithCause(err)
	}
	return toPostResponses(posts), nil
}

// OwnerID resolves a post to its author; satisfies the ownership
// middleware's lookup contract.
func (s *PostService) OwnerID(ctx context.Context, id string) (string, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return "", apperror.Internal("failed to look up post", "Internal Server Error").WithCause(err)
	}
	if post == nil {
		return "", apperror.NotFound("no post with that id", "Post not found")
	}
	return post.AuthorID, nil
}

// Update replaces a post's content and, when a new image arrives, swaps the
// stored object.
func (s *PostService) Update(ctx context.Context, id string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.Update")
	defer span.End()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to look up post", "Internal Server Error").WithCause(err)
	}
	if post == nil {
		return nil, apperror.NotFound("no post with that id", "Post not found")
	}

	imageURL, imagePath := post.ImageURL, post.ImagePath
	if req.NewImage != "" {
		newURL, newPath, err := s.storage.UploadBase64(ctx, postImageDir, req.NewImage)
		if err != nil {
			return nil, apperror.BadRequest("failed to store post image", "Invalid image payload").WithCause(err)
		}
		if post.ImagePath != "" {
			if err := s.storage.Delete(ctx, post.ImagePath); err != nil {
				logger.Get().Warn("failed to delete previous post image",
					zap.String("path", post.ImagePath), zap.Error(err))
			}
		}
		imageURL, imagePath = newURL, newPath
	}

	if err := s.posts.Update(ctx, id, req.Title, req.Content, imageURL, imagePath); err != nil {
		return nil, apperror.Internal("failed to update post", "Internal Server Error").WithCause(err)
	}

	post.Title = req.Title
	post.Content = req.Content
	post.ImageURL = imageURL
	post.ImagePath = imagePath
	post.UpdatedAt = time.Now()
	return toPostResponse(post), nil
}

// Delete removes a post and its stored image
func (s *PostService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostService.Delete")
	defer span.End()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return apperror.Internal("failed to look up post", "Internal Server Error").WithCause(err)
	}
	if post == nil {
		return apperror.NotFound("no post with that id", "Post not found")
	}

	if post.ImagePath != "" {
		if err := s.storage.Delete(ctx, post.ImagePath); err != nil {
			logger.Get().Warn("failed to delete stored post image",
				zap.String("path", post.ImagePath), zap.Error(err))
		}
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return apperror.Internal("failed to delete post", "Internal Server Error").WithCause(err)
	}
	return nil
}

func toPostResponse(p *domain.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
		Author:    p.AuthorUsername,
	}
}

func toPostResponses(posts []*domain.Post) []*dto.PostResponse {
	out := make([]*dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}
