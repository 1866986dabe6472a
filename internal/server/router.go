// Package server exposes the processed dataset over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs request details and latency, and records metrics.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		metricRequestsInflight.Inc()
		next.ServeHTTP(rec, r)
		metricRequestsInflight.Dec()

		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		metricRequestsCount.WithLabelValues(route, http.StatusText(rec.status)).Inc()
		metricRequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
		log.WithFields(log.Fields{
			"component": "server",
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"elapsed":   elapsed,
		}).Info("request")
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/", h.HandleSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", h.HandleSummary).Methods(http.MethodGet)
	r.HandleFunc("/cluster/{id}", h.HandleCluster).Methods(http.MethodGet)
	r.HandleFunc("/api/cluster/{id}", h.HandleCluster).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.HandleStats).Methods(http.MethodGet)
	r.HandleFunc("/reprocesar", h.HandleReprocess).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/ver_csv/{name}", h.HandleViewCSV).Methods(http.MethodGet)
	r.HandleFunc("/static/clusters.png", h.HandlePlot).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusNotFound, errorResponse{Error: "Ruta no encontrada"})
	})
	return r
}
