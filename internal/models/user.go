// internal/models/user.go
package models

import "time"

type UserProfile struct {
	ID                int       `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Name              string    `json:"name"`
	VerificationToken *string   `json:"-"`
	IsVerified        bool      `json:"is_verified"`
	IsActive          bool      `json:"-"`
	IsStaff           bool      `json:"-"`
	DateCreated       time.Time `json:"-"`
}

// PublicProfile is the user shape returned by the API.
type PublicProfile struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

func (u *UserProfile) Public() PublicProfile {
	return PublicProfile{
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// RefreshToken is a persisted refresh credential; logout deletes it and
// refresh requires it to still exist.
type RefreshToken struct {
	ID        int
	UserID    int
	Token     string
	CreatedAt time.Time
}
