package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	"github.com/oksasatya/movie-review-api/internal/domain/repository"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

func profileKey(userID string) string { return "user:profile:" + userID }

// cachedUser is the cached projection of a user; the password hash is never cached.
type cachedUser struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsGoogleSignIn bool      `json:"is_google_sign_in"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCached(u *entity.User) cachedUser {
	return cachedUser{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		IsGoogleSignIn: u.IsGoogleSignIn,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:             c.ID,
		Email:          c.Email,
		Username:       c.Username,
		ProfilePicture: c.ProfilePicture,
		IsGoogleSignIn: c.IsGoogleSignIn,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// UserCache stores user profiles in Redis. User records are immutable, so
// entries only expire by TTL.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func (c *UserCache) Get(ctx context.Context, id string) (*entity.User, bool, error) {
	var cu cachedUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, profileKey(id), &cu)
	if err != nil || !ok {
		return nil, false, err
	}
	return cu.toEntity(), true, nil
}

func (c *UserCache) Set(ctx context.Context, u *entity.User) error {
	return helpers.RedisSetJSON(ctx, c.rdb, profileKey(u.ID), toCached(u), c.ttl)
}

var _ repository.UserCache = (*UserCache)(nil)
