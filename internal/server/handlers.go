package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/gorilla/mux"

	"github.com/KaramelBytes/linkeddata/internal/dataset"
)

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	store        *dataset.Store
	exampleLimit int
	logger       log.Interface
}

// NewHandler creates a Handler serving the given store.
func NewHandler(store *dataset.Store, exampleLimit int) *Handler {
	if exampleLimit <= 0 {
		exampleLimit = dataset.DefaultExampleLimit
	}
	if f := store.Frame(); f != nil {
		metricDatasetRecords.Set(float64(f.Rows()))
	}
	return &Handler{
		store:        store,
		exampleLimit: exampleLimit,
		logger:       log.WithField("component", "server"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type summaryResponse struct {
	Message string `json:"mensaje"`
	dataset.Summary
}

type clusterResponse struct {
	Cluster  int              `json:"cluster"`
	Examples []map[string]any `json:"ejemplos"`
}

type reprocessResponse struct {
	Message string `json:"mensaje"`
	Records int    `json:"total_registros"`
	RunID   string `json:"run_id"`
}

type healthResponse struct {
	Status  string           `json:"status"`
	Loaded  bool             `json:"loaded"`
	LastRun *dataset.RunInfo `json:"last_run,omitempty"`
}

// HandleSummary handles GET / and GET /api/summary.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.Summary()
	if err != nil {
		h.writeError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, summaryResponse{Message: "API del Proyecto Linked Data", Summary: sum})
}

// HandleCluster handles GET /cluster/{id} and GET /api/cluster/{id}.
// ?decode=true returns the original category values instead of codes.
func (h *Handler) HandleCluster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "El id de cluster debe ser un entero"})
		return
	}
	lookup := h.store.ClusterExamples
	if decode, _ := strconv.ParseBool(r.URL.Query().Get("decode")); decode {
		lookup = h.store.DecodedClusterExamples
	}
	examples, err := lookup(id, h.exampleLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, clusterResponse{Cluster: id, Examples: examples})
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.ClusterStats()
	if err != nil {
		h.writeError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, st)
}

// HandleReprocess handles GET|POST /reprocesar. The pipeline runs
// synchronously within the request.
func (h *Handler) HandleReprocess(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Reprocess(r.Context())
	if err != nil {
		metricReprocessCount.WithLabelValues("failure").Inc()
		h.logger.WithError(err).Error("reprocess failed")
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	metricReprocessCount.WithLabelValues("success").Inc()
	metricDatasetRecords.Set(float64(res.Frame.Rows()))
	sendJSON(w, http.StatusOK, reprocessResponse{
		Message: "Dataset reprocesado correctamente",
		Records: res.Frame.Rows(),
		RunID:   res.RunID,
	})
}

// HandleViewCSV handles GET /ver_csv/{name} for the whitelisted datasets.
func (h *Handler) HandleViewCSV(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, err := h.store.View(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := f.HTML(&buf, name); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandlePlot serves the rendered scatter plot.
func (h *Handler) HandlePlot(w http.ResponseWriter, r *http.Request) {
	b, err := os.ReadFile(h.store.Options().PlotPath)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Loaded:  h.store.Loaded(),
		LastRun: h.store.LastRun(),
	})
}

// writeError maps store errors to status codes at the request boundary.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		notFound  *dataset.ClusterNotFoundError
		unknown   *dataset.UnknownDatasetError
		missingCl *dataset.MissingColumnError
	)
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "No hay datos procesados"})
	case errors.As(err, &notFound):
		sendJSON(w, http.StatusNotFound, errorResponse{Error: "Cluster no encontrado"})
	case errors.As(err, &unknown):
		sendJSON(w, http.StatusNotFound, errorResponse{Error: "Archivo no encontrado"})
	case errors.Is(err, fs.ErrNotExist):
		sendJSON(w, http.StatusNotFound, errorResponse{Error: "Archivo no encontrado"})
	case errors.As(err, &missingCl):
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: missingCl.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// sendJSON writes a JSON response.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
