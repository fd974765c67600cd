package api

import (
	"FlowTagger/internal/metrics"
	"FlowTagger/internal/query"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds the dependencies for API handlers.
type Handler struct {
	querier query.Querier
}

// NewRouter builds the API routes. The /metrics endpoint serves gatherer.
func NewRouter(querier query.Querier, reg prometheus.Registerer, gatherer prometheus.Gatherer) *mux.Router {
	h := &Handler{querier: querier}

	r := mux.NewRouter()
	r.Use(metrics.NewHTTPMetrics(reg).Middleware)

	r.HandleFunc("/api/v1/sources", h.sourcesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/reports/{source}/tags", h.tagCountsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/reports/{source}/ports", h.portProtocolCountsHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// sourcesHandler lists the sources with stored reports.
func (h *Handler) sourcesHandler(w http.ResponseWriter, r *http.Request) {
	sources, err := h.querier.Sources(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query sources: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"sources": sources})
}

// tagCountsHandler returns the tag section of the latest report for a source.
func (h *Handler) tagCountsHandler(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]

	counts, err := h.querier.TagCounts(r.Context(), source)
	if errors.Is(err, query.ErrSourceNotFound) {
		http.Error(w, fmt.Sprintf("no report found for source '%s'", source), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query tag counts: %v", err), http.StatusInternalServerError)
		return
	}

	rows := make([]tagCountJSON, len(counts))
	for i, c := range counts {
		rows[i] = tagCountJSON{Tag: c.Tag, Count: c.Count}
	}
	writeJSON(w, map[string]interface{}{"source": source, "tag_counts": rows})
}

// portProtocolCountsHandler returns the port/protocol section of the latest report for a source.
func (h *Handler) portProtocolCountsHandler(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]

	counts, err := h.querier.PortProtocolCounts(r.Context(), source)
	if errors.Is(err, query.ErrSourceNotFound) {
		http.Error(w, fmt.Sprintf("no report found for source '%s'", source), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query port/protocol counts: %v", err), http.StatusInternalServerError)
		return
	}

	rows := make([]portProtocolCountJSON, len(counts))
	for i, c := range counts {
		rows[i] = portProtocolCountJSON{Port: c.Port, Protocol: c.Protocol, Count: c.Count}
	}
	writeJSON(w, map[string]interface{}{"source": source, "port_protocol_counts": rows})
}

type tagCountJSON struct {
	Tag   string `json:"tag"`
	Count uint64 `json:"count"`
}

type portProtocolCountJSON struct {
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
	Count    uint64 `json:"count"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
