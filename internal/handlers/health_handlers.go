package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"salesops/internal/caching"
	"salesops/internal/services"
)

const healthProbeTimeout = 2 * time.Second

type HealthHandlers struct {
	db      *pgxpool.Pool
	cache   caching.CacheService
	storage services.RecordingStorage
}

func NewHealthHandlers(db *pgxpool.Pool, cache caching.CacheService, storage services.RecordingStorage) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, storage: storage}
}

// Live reports process liveness only. Load balancers poll it.
func (h *HealthHandlers) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks every downstream dependency. A degraded response keeps the
// per-service detail so operators can see which dependency is down.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	status := "ok"
	checks := map[string]string{}

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy"
		status = "degraded"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.cache.SetString(ctx, "salesops:health", "ok", healthProbeTimeout); err != nil {
		checks["redis"] = "unhealthy"
		status = "degraded"
	} else {
		checks["redis"] = "healthy"
	}

	if err := h.storage.EnsureBucket(ctx); err != nil {
		checks["storage"] = "unhealthy"
		status = "degraded"
	} else {
		checks["storage"] = "healthy"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status":    status,
		"services":  checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
