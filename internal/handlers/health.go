package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// ReadinessCheck reports whether a dependency is ready to serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers serves liveness and readiness checks.
type HealthHandlers struct {
	started time.Time
	now     func() time.Time
	version string
	checks  map[string]ReadinessCheck
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithHealthVersion reports the build version in health payloads.
func WithHealthVersion(version string) HealthOption {
	return func(h *HealthHandlers) {
		h.version = version
	}
}

// WithHealthClock overrides the clock used for uptime and timestamps.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if now != nil {
			h.now = now
			h.started = now()
		}
	}
}

// WithReadinessCheck registers a named check evaluated by /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandlers) {
		if name != "" && check != nil {
			h.checks[name] = check
		}
	}
}

// NewHealthHandlers constructs the health handlers.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		started: time.Now(),
		now:     time.Now,
		checks:  make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type healthPayload struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Healthz reports liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.payload("ok", nil))
}

// Readyz evaluates every registered readiness check.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](r.Context()); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	label := "ok"
	if status != http.StatusOK {
		label = "unavailable"
	}
	writeJSONResponse(w, status, h.payload(label, results))
}

func (h *HealthHandlers) payload(status string, checks map[string]string) healthPayload {
	now := h.now()
	return healthPayload{
		Status:    status,
		Uptime:    now.Sub(h.started).String(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
	}
}
