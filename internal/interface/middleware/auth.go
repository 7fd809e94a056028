package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/pkg/response"
)

// CtxUserIDKey holds the authenticated user id on the gin context.
const CtxUserIDKey = "userID"

const bearerPrefix = "Bearer "

type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth validates the bearer token in the Authorization header and injects
// the user id into the context.
func Auth(tokens TokenValidator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			response.Message(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		uid, err := tokens.Validate(token)
		if err != nil {
			logger.WithError(err).WithField("request_id", response.RequestID(c)).Debug("token rejected")
			response.Message(c, http.StatusUnauthorized, "Token is not valid")
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// UserID returns the id set by Auth, or "" outside protected routes.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
