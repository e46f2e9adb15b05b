package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/circa10a/appointment-reminder/internal/reminder/database"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmiddleware "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

// HealthStatus is the body returned by /health.
type HealthStatus struct {
	Status string `json:"status"`
}

// Health handles health check requests by verifying the database can be opened.
type Health struct {
	Store database.Store
}

// GetHandleFunc writes ok with 200, or failed with 503 when the store is unreachable.
func (h *Health) GetHandleFunc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := HealthStatus{Status: "ok"}

	err := h.Store.Ping()
	if err != nil {
		status.Status = "failed"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(status)
}

// NewStatusHandler returns the router serving /health and /metrics for the scheduler.
func NewStatusHandler(store database.Store, metrics *Metrics) http.Handler {
	router := chi.NewRouter()

	healthHandler := &Health{Store: store}
	router.Get("/health", healthHandler.GetHandleFunc)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mdlw := httpmiddleware.New(httpmiddleware.Config{
		Recorder: httpmetrics.NewRecorder(httpmetrics.Config{
			Registry: metrics.Registry,
		}),
	})

	return std.Handler("", mdlw, router)
}

// serveStatus runs an HTTP server for handler on addr until ctx is cancelled.
func serveStatus(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) {
	log := logger.With("component", "status-server")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("Starting status server on " + addr)

	err := httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Status server failed", "error", err)
	}
}
