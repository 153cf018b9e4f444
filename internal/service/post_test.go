package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/Agus3160/blog-web-app-server-go/internal/dto"
	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPostRepo is an in-memory PostRepository
type mockPostRepo struct {
	mu    sync.Mutex
	posts map[string]*domain.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: map[string]*domain.Post{}}
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockPostRepo) List(ctx context.Context) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPostRepo) ListByAuthorUsername(ctx context.Context, username string) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Post
	for _, p := range m.posts {
		if p.AuthorUsername == username {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPostRepo) ListImagePathsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.posts {
		if p.AuthorID == authorID && p.ImagePath != "" {
			out = append(out, p.ImagePath)
		}
	}
	return out, nil
}

func (m *mockPostRepo) Update(ctx context.Context, id, title, content, imageURL, imagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.posts[id]
	p.Title = title
	p.Content = content
	p.ImageURL = imageURL
	p.ImagePath = imagePath
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

func TestPostService_CreateAndGet(t *testing.T) {
	repo := newMockPostRepo()
	store := &mockStorage{}
	pub := &mockPublisher{}
	svc := NewPostService(repo, store, pub)

	post, err := svc.Create(context.Background(), "author-1", &dto.CreatePostRequest{
		Title:   "First post",
		Content: "Hello world",
		Image:   "data:image/webp;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "First post", post.Title)
	assert.NotEmpty(t, post.ID)
	assert.NotEmpty(t, post.ImageURL)
	assert.Contains(t, pub.types(), "post.created")

	got, err := svc.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
}

func TestPostService_GetMissing(t *testing.T) {
	svc := NewPostService(newMockPostRepo(), &mockStorage{}, &mockPublisher{})
	_, err := svc.GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.From(err).HTTPStatus)
}

func TestPostService_OwnerID(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewPostService(repo, &mockStorage{}, &mockPublisher{})

	post, err := svc.Create(context.Background(), "author-1", &dto.CreatePostRequest{
		Title: "t", Content: "c",
	})
	require.NoError(t, err)

	owner, err := svc.OwnerID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "author-1", owner)

	_, err = svc.OwnerID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.From(err).HTTPStatus)
}

func TestPostService_UpdateSwapsImage(t *testing.T) {
	repo := newMockPostRepo()
	store := &mockStorage{}
	svc := NewPostService(repo, store, &mockPublisher{})

	post, err := svc.Create(context.Background(), "author-1", &dto.CreatePostRequest{
		Title: "t", Content: "c", Image: "aGVsbG8=",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), post.ID, &dto.UpdatePostRequest{
		Title:    "t2",
		Content:  "c2",
		NewImage: "d29ybGQ=",
	})
	require.NoError(t, err)
	assert.Equal(t, "t2", updated.Title)
	assert.Equal(t, []string{"post-images/stored.webp"}, store.deleted)
}

func TestPostService_DeleteRemovesImage(t *testing.T) {
	repo := newMockPostRepo()
	store := &mockStorage{}
	svc := NewPostService(repo, store, &mockPublisher{})

	post, err := svc.Create(context.Background(), "author-1", &dto.CreatePostRequest{
		Title: "t", Content: "c", Image: "aGVsbG8=",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), post.ID))
	assert.Equal(t, []string{"post-images/stored.webp"}, store.deleted)

	_, err = svc.GetByID(context.Background(), post.ID)
	assert.Error(t, err)
}

func TestUserService_DeleteCollectsImages(t *testing.T) {
	users := newMockUserRepo()
	posts := newMockPostRepo()
	store := &mockStorage{}
	pub := &mockPublisher{}
	svc := NewUserService(users, posts, store, pub)

	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID: "u1", Username: "alice", Email: "a@example.com",
		ImagePath: "profile_images/a.webp", Role: domain.RoleUser,
	}))
	require.NoError(t, posts.Create(context.Background(), &domain.Post{
		ID: "p1", AuthorID: "u1", Title: "t", Content: "c",
		ImagePath: "post-images/p1.webp",
	}))

	require.NoError(t, svc.Delete(context.Background(), "u1"))

	assert.ElementsMatch(t, []string{"profile_images/a.webp", "post-images/p1.webp"}, store.deleted)
	assert.Contains(t, pub.types(), "user.deleted")

	got, err := users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
