package container

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/movie-review-api/config"
	"github.com/oksasatya/movie-review-api/internal/infrastructure/google"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
	"github.com/oksasatya/movie-review-api/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	redisClient *redis.Client

	tokenIssuer *helpers.TokenIssuer
	verifier    *google.Verifier

	emailQueue *mailer.Queue
	welcome    *mailer.WelcomeNotifier
)

func SetConfig(c *config.Config)       { cfg = c }
func GetConfig() *config.Config        { return cfg }
func SetLogger(l *logrus.Logger)       { logger = l }
func SetMongoDB(db *mongo.Database)    { mongoDB = db }
func GetMongoDB() *mongo.Database      { return mongoDB }
func SetRedis(r *redis.Client)         { redisClient = r }
func GetRedis() *redis.Client          { return redisClient }
func SetVerifier(v *google.Verifier)   { verifier = v }
func GetVerifier() *google.Verifier    { return verifier }
func SetEmailQueue(q *mailer.Queue)    { emailQueue = q }
func GetEmailQueue() *mailer.Queue     { return emailQueue }
func SetTokens(t *helpers.TokenIssuer) { tokenIssuer = t }

func SetWelcomeNotifier(n *mailer.WelcomeNotifier) { welcome = n }
func GetWelcomeNotifier() *mailer.WelcomeNotifier  { return welcome }

func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return helpers.NewNopLogger()
}

// GetTokens falls back to the development secret when nothing was set.
func GetTokens() *helpers.TokenIssuer {
	if tokenIssuer != nil {
		return tokenIssuer
	}
	ttl := 24 * time.Hour
	if cfg != nil && cfg.TokenTTL > 0 {
		ttl = cfg.TokenTTL
	}
	return helpers.NewTokenIssuer(config.DevJWTSecret, ttl)
}
