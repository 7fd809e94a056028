package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert violates the unique email index.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
// Records are only ever created; there is no update or delete.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// UserCache is an optional read-through cache in front of GetByID.
// A miss is reported as (nil, false, nil).
type UserCache interface {
	Get(ctx context.Context, id string) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User) error
}
