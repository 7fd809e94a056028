package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/movie-review-api/internal/interface/http"
	"github.com/oksasatya/movie-review-api/internal/interface/middleware"
)

// AuthModule wires the auth handlers under /auth.
// Public: POST /auth/register, POST /auth/login, POST /auth/google
// Protected: GET /auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenValidator
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenValidator, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", m.Handler.Register)
	auth.POST("/login", m.Handler.Login)
	auth.POST("/google", m.Handler.Google)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(m.Tokens, m.Logger))
	{
		protected.GET("/me", m.Handler.Me)
	}
}
