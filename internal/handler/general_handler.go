package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// GeneralHandler serves the welcome document and health probe.
type GeneralHandler struct {
	database PingFunc
	cache    PingFunc
	version  string
}

// NewGeneralHandler builds a handler. The database is required for health, the cache is not.
func NewGeneralHandler(database, cache PingFunc, version string) *GeneralHandler {
	return &GeneralHandler{database: database, cache: cache, version: version}
}

// DependencyStatus is the health of a single dependency.
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// Home godoc
// @Summary API welcome document
// @Tags general
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *GeneralHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "مرحباً بك في موقع API المتطور",
		"version":       h.version,
		"documentation": "/api-docs",
		"endpoints": echo.Map{
			"auth":     "/api/auth",
			"users":    "/api/users",
			"movies":   "/api/movies",
			"tools":    "/api/tools",
			"download": "/api/download",
		},
		"features": []string{
			"توثيق المستخدمين",
			"إدارة الأفلام والمسلسلات",
			"أدوات متنوعة للمطورين",
			"تحميل المحتوى",
			"Rate Limiting",
			"توثيق شامل مع Swagger",
		},
	})
}

// Health godoc
// @Summary Dependency health
// @Tags general
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (h *GeneralHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	overall := statusHealthy
	deps := map[string]DependencyStatus{}

	if h.database != nil {
		dep := check(ctx, h.database)
		deps["database"] = dep
		if dep.Status == statusUnhealthy {
			overall = statusUnhealthy
		}
	}
	if h.cache != nil {
		dep := check(ctx, h.cache)
		deps["redis"] = dep
		// redis is optional; the cache degrades to the in-process tier
		if dep.Status == statusUnhealthy && overall == statusHealthy {
			overall = statusDegraded
		}
	}

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{
		"success":      overall != statusUnhealthy,
		"status":       overall,
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
	})
}

func check(ctx context.Context, ping PingFunc) DependencyStatus {
	start := time.Now()
	err := ping(ctx)
	dep := DependencyStatus{Status: statusHealthy, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
	}
	return dep
}

// NotFound renders unknown routes.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{
		"success":            false,
		"message":            "المسار غير موجود",
		"availableEndpoints": "/api-docs",
	})
}
