package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// PasswordHash holds a bcrypt digest and must never leave the service boundary.
// Records are created once and never updated.
type User struct {
	ID             string
	Email          string
	Username       string
	PasswordHash   string
	ProfilePicture string
	IsGoogleSignIn bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
