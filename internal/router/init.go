package router

import (
	"errors"

	"github.com/oksasatya/movie-review-api/internal/application"
	"github.com/oksasatya/movie-review-api/internal/container"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/cache"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/movie-review-api/internal/interface/http"
	"github.com/oksasatya/movie-review-api/internal/router/modules"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

func buildAuthService() *application.Service {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	// optional collaborators stay untyped nil when absent
	var userCache *cache.UserCache
	if rdb := container.GetRedis(); rdb != nil {
		userCache = cache.NewUserCache(rdb, cfg.UserCacheTTL)
	}

	svc := application.NewService(
		mongodb.NewUserRepository(container.GetMongoDB()),
		helpers.NewBcryptHasher(helpers.PasswordCost),
		container.GetTokens(),
		nil,
		cfg.GoogleClientID,
		nil,
		nil,
		logger,
	)
	if v := container.GetVerifier(); v != nil {
		svc.Verifier = v
	}
	if userCache != nil {
		svc.Cache = userCache
	}
	if n := container.GetWelcomeNotifier(); n != nil {
		svc.Notifier = n
	}
	return svc
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	authHandler := handlers.NewAuthHandler(buildAuthService(), logger)
	r.Add(modules.NewAuthModule(authHandler, container.GetTokens(), logger))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(cfg.AppName, cfg.Env)))

	if !cfg.IsProduction() {
		return
	}
	spa, err := handlers.NewSPAHandler(cfg.FrontendDistDir)
	switch {
	case errors.Is(err, handlers.ErrNoFrontendBuild):
		logger.WithField("dir", cfg.FrontendDistDir).Info("no frontend build found, skipping static file hosting")
	case err != nil:
		logger.WithError(err).Warn("static file hosting disabled")
	default:
		r.Fallback(spa.Serve)
	}
}
