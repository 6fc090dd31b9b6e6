package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTP(t *testing.T) *HTTPServer {
	t.Helper()
	svc, cfg := newTestService(t)
	srv, err := NewHTTPServer(cfg.Server, svc, nil)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_Health(t *testing.T) {
	rec := do(t, newTestHTTP(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTP_Query(t *testing.T) {
	srv := newTestHTTP(t)

	rec := do(t, srv, http.MethodPost, "/v1/query", `{
		"dataset": "employees",
		"conditions": [
			{"id": "c1", "field": "skills", "operator": "notIn", "value": ["rust"]},
			{"id": "c2", "field": "name", "operator": "startsWith", "value": "a"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []any{"Alice"}, names(resp.Records))
	assert.False(t, resp.Cached)

	// identical query is served from the cache
	rec = do(t, srv, http.MethodPost, "/v1/query", `{
		"dataset": "employees",
		"conditions": [
			{"id": "x1", "field": "skills", "operator": "notIn", "value": ["rust"]},
			{"id": "x2", "field": "name", "operator": "startsWith", "value": "a"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
}

func TestHTTP_QueryErrors(t *testing.T) {
	srv := newTestHTTP(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown field", `{"datasets": "employees"}`, http.StatusBadRequest},
		{"unknown dataset", `{"dataset": "missing"}`, http.StatusNotFound},
		{"bad value", `{"records": [], "conditions": [{"field": "a", "operator": "in", "value": {"foo": 1}}]}`, http.StatusBadRequest},
		{"bad sort", `{"records": [], "sort": {"key": "a", "direction": "sideways"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/query", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHTTP_Fields(t *testing.T) {
	srv := newTestHTTP(t)

	rec := do(t, srv, http.MethodGet, "/v1/datasets/employees/fields", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Dataset string `json:"dataset"`
		Fields  []struct {
			Key       string   `json:"key"`
			Type      string   `json:"type"`
			Operators []string `json:"operators"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "employees", body.Dataset)
	require.Len(t, body.Fields, 3)
	assert.Equal(t, "skills", body.Fields[2].Key)
	assert.Equal(t, []string{"in", "notIn"}, body.Fields[2].Operators)

	rec = do(t, srv, http.MethodGet, "/v1/datasets/missing/fields", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_ListDatasets(t *testing.T) {
	rec := do(t, newTestHTTP(t), http.MethodGet, "/v1/datasets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Datasets []struct {
			Name        string `json:"name"`
			RecordCount int    `json:"recordCount"`
		} `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Datasets, 1)
	assert.Equal(t, "employees", body.Datasets[0].Name)
	assert.Equal(t, 3, body.Datasets[0].RecordCount)
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestHTTP(t), http.MethodGet, "/v1/query", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
