package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostRepository implements PostRepository using PostgreSQL
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

const postColumns = `p.id, p.title, p.content, p.author_id, u.username, p.image_url, p.image_path, p.created_at, p.updated_at`

func scanPost(row pgx.Row) (*domain.Post, error) {
	post := &domain.Post{}
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.AuthorUsername,
		&post.ImageURL,
		&post.ImagePath,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// Create creates a new post
func (r *PostgresPostRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id, image_url, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.AuthorID,
		post.ImageURL,
		post.ImagePath,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return err
}

// GetByID retrieves a post with its author's username
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`
	return scanPost(r.pool.QueryRow(ctx, query, id))
}

// List retrieves all posts, newest first
func (r *PostgresPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByAuthorUsername retrieves an author's posts, newest first
func (r *PostgresPostRepository) ListByAuthorUsername(ctx context.Context, username string) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE u.username = $1
		ORDER BY p.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListImagePathsByAuthor returns the storage paths of an author's post images.
// Posts without an image are skipped.
func (r *PostgresPostRepository) ListImagePathsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	query := `SELECT image_path FROM posts WHERE author_id = $1 AND image_path <> ''`
	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Update replaces a post's title, content and image fields
func (r *PostgresPostRepository) Update(ctx context.Context, id, title, content, imageURL, imagePath string) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, image_url = $4, image_path = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, title, content, imageURL, imagePath, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete deletes a post
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func collectPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		post := &domain.Post{}
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.AuthorID,
			&post.AuthorUsername,
			&post.ImageURL,
			&post.ImagePath,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
