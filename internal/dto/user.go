package dto

// UpdateProfileRequest updates username/email/profile image. The current
// password re-authenticates the caller; NewImage is an optional base64 data
// URL replacing the stored image.
type UpdateProfileRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	CurrentPassword string `json:"currentPassword" binding:"required,min=8"`
	NewImage        string `json:"newImage"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
}
