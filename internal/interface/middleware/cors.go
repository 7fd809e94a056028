package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/config"
)

// CORS allows the given origins (already normalized) with credentials.
// Origins are compared after trimming a trailing slash; blocked origins are logged.
func CORS(origins []string, logger *logrus.Logger) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[config.NormalizeOrigin(o)] = struct{}{}
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if _, ok := allowed[config.NormalizeOrigin(origin)]; ok {
				return true
			}
			logger.WithField("origin", origin).Warn("CORS blocked for origin")
			return false
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
