package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeZeebe struct {
	err error
}

func (f fakeZeebe) HealthCheck(context.Context) error { return f.err }

func get(t *testing.T, mux http.Handler, path string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]string
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServeMux_Health(t *testing.T) {
	rec, body := get(t, newServeMux(fakeZeebe{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestServeMux_Ready(t *testing.T) {
	rec, body := get(t, newServeMux(fakeZeebe{}), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])

	rec, body = get(t, newServeMux(fakeZeebe{err: assert.AnError}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, assert.AnError.Error(), body["error"])
}

func TestServeMux_Metrics(t *testing.T) {
	rec, _ := get(t, newServeMux(fakeZeebe{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "report_fill_duration_seconds")
}
