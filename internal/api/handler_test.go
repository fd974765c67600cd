package api

import (
	"FlowTagger/internal/model"
	"FlowTagger/internal/query"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeQuerier struct {
	tags  map[string][]model.TagCount
	ports map[string][]model.PortProtocolCount
	err   error
}

func (f *fakeQuerier) Sources(ctx context.Context) ([]query.SourceSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []query.SourceSummary{{Source: "flow_logs.txt", LastRun: time.Unix(0, 0).UTC(), Runs: 1}}, nil
}

func (f *fakeQuerier) TagCounts(ctx context.Context, source string) ([]model.TagCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts, ok := f.tags[source]
	if !ok {
		return nil, query.ErrSourceNotFound
	}
	return counts, nil
}

func (f *fakeQuerier) PortProtocolCounts(ctx context.Context, source string) ([]model.PortProtocolCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts, ok := f.ports[source]
	if !ok {
		return nil, query.ErrSourceNotFound
	}
	return counts, nil
}

func newTestRouter(q query.Querier) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(q, reg, reg)
}

func TestTagCountsHandler(t *testing.T) {
	q := &fakeQuerier{
		tags: map[string][]model.TagCount{
			"flow_logs.txt": {{Tag: "sv_P2", Count: 1}, {Tag: "Untagged", Count: 9}},
		},
	}
	router := newTestRouter(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/flow_logs.txt/tags", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got '%s'", ct)
	}

	var body struct {
		Source    string         `json:"source"`
		TagCounts []tagCountJSON `json:"tag_counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Source != "flow_logs.txt" || len(body.TagCounts) != 2 || body.TagCounts[1].Count != 9 {
		t.Errorf("Unexpected response: %+v", body)
	}
}

func TestPortProtocolCountsHandler(t *testing.T) {
	q := &fakeQuerier{
		ports: map[string][]model.PortProtocolCount{
			"flow_logs.txt": {{Port: "22", Protocol: "tcp", Count: 1}},
		},
	}
	router := newTestRouter(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/flow_logs.txt/ports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"port":"22"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestHandlerNotFoundAndErrors(t *testing.T) {
	router := newTestRouter(&fakeQuerier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/unknown.txt/tags", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for an unknown source, got %d", rec.Code)
	}

	router = newTestRouter(&fakeQuerier{err: errors.New("connection refused")})
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 on querier error, got %d", rec.Code)
	}
}

func TestTagCountsHandlerEmptyLatestRun(t *testing.T) {
	q := &fakeQuerier{tags: map[string][]model.TagCount{"flow_logs.txt": {}}}
	router := newTestRouter(q)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/flow_logs.txt/tags", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for an empty latest run, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"tag_counts":[]`) {
		t.Errorf("Expected an empty tag list, got %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeQuerier{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `flowtagger_api_requests_total{code="200",route="/api/v1/sources"} 1`) {
		t.Errorf("Expected request counter in metrics output, got:\n%s", rec.Body.String())
	}
}
