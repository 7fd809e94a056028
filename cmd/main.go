package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/movie-review-api/config"
	"github.com/oksasatya/movie-review-api/internal/container"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/google"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/movie-review-api/internal/interface/middleware"
	"github.com/oksasatya/movie-review-api/internal/router"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
	"github.com/oksasatya/movie-review-api/pkg/mailer"
	"github.com/oksasatya/movie-review-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("%v. Set it before starting the server.", err)
	}
	if cfg.JWTSecretIsDefault {
		logger.Warn("JWT_SECRET is not set; tokens are signed with the insecure development secret")
	}
	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID is not set; Google sign-in will reject every credential")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB
	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		logger.Fatalf("MongoDB connection error: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	logger.Info("MongoDB connected successfully")

	if err := mongodb.RunMigrations(client, cfg.MongoDatabase, cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis profile cache (optional)
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unavailable; profile cache disabled")
			_ = rdb.Close()
		} else {
			defer func() { _ = rdb.Close() }()
			container.SetRedis(rdb)
		}
	}

	// Welcome emails (optional)
	if cfg.MailSendEnabled {
		q, err := mailer.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			defer q.Close()
			container.SetEmailQueue(q)
			container.SetWelcomeNotifier(mailer.NewWelcomeNotifier(q, cfg.AppName, cfg.SupportURL))
		}
	}

	verifier, err := google.NewVerifier(ctx, cfg.GoogleHTTPTimeout)
	if err != nil {
		logger.Fatalf("failed to init google verifier: %v", err)
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongoDB(client.Database(cfg.MongoDatabase))
	container.SetTokens(helpers.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
	container.SetVerifier(verifier)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestIDMiddleware())
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(logger))
	}
	r.Use(middleware.CORS(cfg.CORSOrigins(), logger))

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithField("env", cfg.Env).Infof("server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
