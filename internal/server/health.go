package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/athena/internal/directory"
)

type APIPinger interface {
	Ping(ctx context.Context) error
}

type StatusReporter interface {
	Status() directory.Status
}

type HealthChecker struct {
	api   APIPinger
	cache StatusReporter
	log   *slog.Logger
}

func NewHealthChecker(api APIPinger, cache StatusReporter, log *slog.Logger) *HealthChecker {
	return &HealthChecker{
		api:   api,
		cache: cache,
		log:   log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.api.Ping(req.Context()); err != nil {
		status["api"] = "unreachable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: API unreachable", "error", err)
	} else {
		status["api"] = "ok"
	}

	// a failed read keeps serving the previous cache, so it degrades instead of failing
	cacheStatus := h.cache.Status()
	switch {
	case cacheStatus.Employees.Err != "" || cacheStatus.Qualifications.Err != "":
		status["cache"] = "degraded"
		h.log.WarnContext(
			req.Context(),
			"Health check: last cache operation failed",
			"employees_error",
			cacheStatus.Employees.Err,
			"qualifications_error",
			cacheStatus.Qualifications.Err,
		)
	default:
		status["cache"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
