package domain

import "time"

// Role is the user's authorization role
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account. ImageURL is the public URL of the
// profile image and ImagePath its object-storage key; both are empty when no
// image was uploaded.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ImageURL     string
	ImagePath    string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
