package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret is used when JWT_SECRET is not set. Never rely on it outside local development.
const DevJWTSecret = "your-secret-key"

// defaultCORSOrigins are always allowed in addition to the configured ones.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://localhost:3000",
	"https://movie-site-mu-five.vercel.app",
	"https://movie-review-backend-gg0v.onrender.com",
	"https://accounts.google.com",
}

// ErrMissingMongoURI is returned by Validate when no database connection string is configured.
var ErrMissingMongoURI = errors.New("missing MONGODB_URI environment variable")

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// MongoDB
	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	MigrationsDir       string

	// JWT
	JWTSecret          string
	JWTSecretIsDefault bool
	TokenTTL           time.Duration

	// Google sign-in
	GoogleClientID    string
	GoogleHTTPTimeout time.Duration

	// CORS
	FrontendURL            string
	RenderExternalHostname string
	CORSAdditionalOrigins  string // comma-separated

	// Static frontend served in production
	FrontendDistDir string

	// Redis profile cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	UserCacheTTL  time.Duration

	// Welcome emails
	MailSendEnabled    bool
	RabbitMQURL        string
	RabbitMQEmailQueue string
	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSender      string
	SupportURL         string

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	secret := os.Getenv("JWT_SECRET")
	secretIsDefault := secret == ""
	if secretIsDefault {
		secret = DevJWTSecret
	}

	return &Config{
		AppName: getenv("APP_NAME", "Movie Review API"),
		Env:     getenv("APP_ENV", getenv("NODE_ENV", "development")),
		Port:    getenv("PORT", "5000"),
		GinMode: getenv("GIN_MODE", "release"),

		MongoURI:            os.Getenv("MONGODB_URI"),
		MongoDatabase:       getenv("MONGODB_DATABASE", "movie_review"),
		MongoConnectTimeout: getdur("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		MigrationsDir:       getenv("MIGRATIONS_DIR", "db/migrations"),

		JWTSecret:          secret,
		JWTSecretIsDefault: secretIsDefault,
		TokenTTL:           getdur("JWT_TTL", 24*time.Hour),

		GoogleClientID:    getenv("GOOGLE_CLIENT_ID", ""),
		GoogleHTTPTimeout: getdur("GOOGLE_HTTP_TIMEOUT", 10*time.Second),

		FrontendURL:            getenv("FRONTEND_URL", ""),
		RenderExternalHostname: getenv("RENDER_EXTERNAL_HOSTNAME", ""),
		CORSAdditionalOrigins:  getenv("CORS_ADDITIONAL_ORIGINS", ""),

		FrontendDistDir: getenv("FRONTEND_DIST_DIR", "../front_end/dist"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		UserCacheTTL:  getdur("USER_CACHE_TTL", 10*time.Minute),

		// off by default; the worker and a broker are optional deployments
		MailSendEnabled:    getbool("MAIL_SEND_ENABLED", false),
		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),
		MailgunDomain:      getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getenv("MAILGUN_API_KEY", ""),
		MailgunSender:      getenv("MAILGUN_SENDER", ""),
		SupportURL:         getenv("SUPPORT_URL", ""),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate reports configuration the process cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return ErrMissingMongoURI
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CORSOrigins returns the allowed origins: built-in defaults plus frontend,
// Render hostname and CORS_ADDITIONAL_ORIGINS, normalized and de-duplicated.
func (c *Config) CORSOrigins() []string {
	candidates := make([]string, 0, len(defaultCORSOrigins)+4)
	candidates = append(candidates, defaultCORSOrigins...)
	candidates = append(candidates, c.FrontendURL)
	if h := strings.TrimSpace(c.RenderExternalHostname); h != "" {
		candidates = append(candidates, "https://"+h)
	}
	candidates = append(candidates, strings.Split(c.CORSAdditionalOrigins, ",")...)

	seen := make(map[string]struct{}, len(candidates))
	res := make([]string, 0, len(candidates))
	for _, p := range candidates {
		p = NormalizeOrigin(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		res = append(res, p)
	}
	return res
}

// NormalizeOrigin trims whitespace and a single trailing slash.
func NormalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.TrimSpace(origin), "/")
}
