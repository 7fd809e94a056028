package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// isoMillis matches the millisecond UTC timestamps browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type HealthHandler struct {
	AppName string
	Env     string
	Now     func() time.Time
}

func NewHealthHandler(appName, env string) *HealthHandler {
	return &HealthHandler{AppName: appName, Env: env, Now: time.Now}
}

// Health GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     h.AppName + " is running",
		"timestamp":   h.Now().UTC().Format(isoMillis),
		"environment": h.Env,
	})
}
