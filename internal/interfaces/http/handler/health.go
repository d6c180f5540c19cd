package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const healthMessage = "Marvel Store API is running! 🦸"

// HealthCheck is one dependency probed by the readiness endpoint
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler probing checks on readiness
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// ReadinessResponse lists the state of every dependency
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health answers the liveness probe
func (h *HealthHandler) Health(c *gin.Context) {
	h.OK(c, dto.HealthResponse{Status: "ok", Message: healthMessage})
}

// Ready probes every dependency and answers 503 when one is down
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed",
				zap.String("check", check.Name),
				zap.Error(err))
			resp.Status = "unavailable"
			resp.Checks[check.Name] = "down"
			continue
		}
		resp.Checks[check.Name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
