package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/pkg/response"
)

// Recovery turns a handler panic into a 500 and logs it with the stack.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      rec,
			"stack":      string(debug.Stack()),
		}).Error("panic recovered")
		response.Message(c, http.StatusInternalServerError, "Something broke!")
	})
}
