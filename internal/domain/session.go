package domain

// SessionPayload is the claims structure embedded in both access and refresh
// tokens. The same shape is used for both kinds; on refresh the profile
// image is re-read from the store while the rest comes from the claims.
type SessionPayload struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
}
