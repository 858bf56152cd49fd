package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
)

// NewMonitoringHandler routes /metrics and /healthz.
func NewMonitoringHandler(reg *prometheus.Registry, health http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true, Registry: reg}))
	mux.Handle("/healthz", health)

	return mux
}

// StartMonitoringServer serves metrics and health checks on port until ctx is done.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	health http.Handler,
	port int,
) {
	const shutdownTimeout = 5 * time.Second
	const readHeaderTimeout = 5 * time.Second

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           NewMonitoringHandler(reg, health),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Monitoring server shutdown failed", sl.Err(err))
		}
	}()

	log.InfoContext(ctx, "Monitoring server started", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", sl.Err(err))
	}
	log.InfoContext(ctx, "Monitoring server stopped")
}
