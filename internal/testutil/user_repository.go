// Package testutil provides test doubles shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	"github.com/oksasatya/movie-review-api/internal/domain/repository"
)

// UserRepository is an in-process repository.UserRepository with the same
// email uniqueness semantics as the MongoDB one.
type UserRepository struct {
	mu      sync.Mutex
	byID    map[string]entity.User
	byEmail map[string]string

	// Err, when set, is returned by every call.
	Err error
	// BeforeCreate runs inside Create before the uniqueness check, without the lock held.
	BeforeCreate func(u *entity.User)
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if r.Err != nil {
		return r.Err
	}
	if r.BeforeCreate != nil {
		r.BeforeCreate(u)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID().Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

var _ repository.UserRepository = (*UserRepository)(nil)
