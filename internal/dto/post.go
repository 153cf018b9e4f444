package dto

// CreatePostRequest creates a post; Image is an optional base64 data URL.
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image"`
}

// UpdatePostRequest updates a post. NewImage replaces the stored image when
// present; otherwise the existing image is kept.
type UpdatePostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	NewImage string `json:"newImage"`
}

// PostResponse is the public view of a post
type PostResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Author    string `json:"author"`
}
