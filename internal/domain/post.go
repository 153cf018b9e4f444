package domain

import "time"

// Post is a blog entry owned by its author. AuthorUsername is populated by
// queries that join the users table for read models.
type Post struct {
	ID             string
	Title          string
	Content        string
	AuthorID       string
	AuthorUsername string
	ImageURL       string
	ImagePath      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
