package dto

// SignupRequest represents the signup body. Image is an optional base64 data
// URL for the profile picture; Role defaults to USER when empty.
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

// LoginRequest represents the login body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the session summary returned by login, refresh and
// profile updates. The access token travels only here, never in a cookie.
type SessionResponse struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
}

// ResetPasswordEmailRequest asks for a password-reset email
type ResetPasswordEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset; the token arrives in the
// URL path.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordRequest changes the password of an authenticated user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
