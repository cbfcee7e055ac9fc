package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_NotFound(t *testing.T) {
	router := NewRouter()

	rec := doRequest(t, router, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, errorNotFoundCode, body["error"])
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
}

func TestRouter_NotImplementedWithoutRegistrar(t *testing.T) {
	router := NewRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/validations", "{}")
	require.Equal(t, http.StatusNotImplemented, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_implemented", body["error"])
}

func TestRouter_MetricsHandler(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("configurator_up 1\n"))
	})

	rec := doRequest(t, NewRouter(WithMetricsHandler(metrics)), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "configurator_up")

	rec = doRequest(t, NewRouter(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AppliesMiddlewares(t *testing.T) {
	var called bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	doRequest(t, NewRouter(WithMiddlewares(mw)), http.MethodGet, "/healthz", "")
	assert.True(t, called)
}

func TestHealthHandlers(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	clock := func() time.Time { return now }

	failing := errors.New("rules not loaded")
	var ready bool
	health := NewHealthHandlers(
		WithHealthClock(clock),
		WithHealthVersion("1.2.3"),
		WithReadinessCheck("rules", func(context.Context) error {
			if !ready {
				return failing
			}
			return nil
		}),
	)
	router := NewRouter(WithHealthHandlers(health))
	now = start.Add(90 * time.Second)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload healthPayload
	decodeBody(t, rec, &payload)
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "1m30s", payload.Uptime)
	assert.Equal(t, "2024-01-01T00:01:30Z", payload.Timestamp)
	assert.Equal(t, "1.2.3", payload.Version)

	rec = doRequest(t, router, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	decodeBody(t, rec, &payload)
	assert.Equal(t, "unavailable", payload.Status)
	assert.Equal(t, "rules not loaded", payload.Checks["rules"])

	ready = true
	rec = doRequest(t, router, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	payload = healthPayload{}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "ok", payload.Checks["rules"])
}
