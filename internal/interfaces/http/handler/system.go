package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ReadinessChecker reports whether a dependency is reachable
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        *persistence.Database
	checkers  map[string]ReadinessChecker
}

// NewSystemHandler creates a new SystemHandler. Extra readiness checkers
// (redis, object storage) can be attached by name.
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
		checkers:  make(map[string]ReadinessChecker),
	}
}

// AddReadinessChecker registers a named dependency for the readiness probe
func (h *SystemHandler) AddReadinessChecker(name string, checker ReadinessChecker) {
	h.checkers[name] = checker
}

// Health godoc
// @Summary      Liveness probe
// @Description  Returns 200 while the process is running
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Checks the database and registered dependencies; 503 when any is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	for name, checker := range h.checkers {
		if err := checker.Ping(c.Request.Context()); err != nil {
			checks[name] = "error"
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	checks["status"] = "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		checks["status"] = "not_ready"
	}
	checks["time"] = time.Now().Format(time.RFC3339)
	c.JSON(status, checks)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Storefront Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Storefront Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
