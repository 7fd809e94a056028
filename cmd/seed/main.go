package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/movie-review-api/config"
	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	"github.com/oksasatya/movie-review-api/internal/domain/repository"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+" seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		logger.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.RunMigrations(client, cfg.MongoDatabase, cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	email := "demo@moviereview.local"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.NewBcryptHasher(helpers.PasswordCost).Hash(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	repo := mongodb.NewUserRepository(client.Database(cfg.MongoDatabase))
	u := &entity.User{Email: email, Username: username, PasswordHash: hash}
	err = repo.Create(ctx, u)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		logger.WithField("email", email).Info("demo user already exists")
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		logger.Infof("seeded user: id=%s email=%s username=%s password=%s", u.ID, email, username, password)
	}
}
