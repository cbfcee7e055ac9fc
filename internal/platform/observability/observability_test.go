package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hanko-field/configurator/internal/platform/requestctx"
)

func TestParseCloudTraceContext(t *testing.T) {
	spanCtx, ok := parseCloudTraceContext("105445aa7843bc8bf206b12000100000/1;o=1")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	if got := spanCtx.TraceID().String(); got != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("unexpected trace id %s", got)
	}
	if got := spanCtx.SpanID().String(); got != "0000000000000001" {
		t.Fatalf("unexpected span id %s", got)
	}
	if !spanCtx.IsSampled() || !spanCtx.IsRemote() {
		t.Fatalf("expected sampled remote span context")
	}

	for _, header := range []string{"", "abc/1", "105445aa7843bc8bf206b12000100000", "105445aa7843bc8bf206b12000100000/"} {
		if _, ok := parseCloudTraceContext(header); ok {
			t.Errorf("expected %q to be rejected", header)
		}
	}
}

func TestTraceMiddlewareStoresTraceInfo(t *testing.T) {
	var info requestctx.TraceInfo
	handler := TraceMiddleware("hf-dev")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(cloudTraceHeader, "105445aa7843bc8bf206b12000100000/1;o=1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if info.ProjectID != "hf-dev" {
		t.Fatalf("expected project id, got %q", info.ProjectID)
	}
	if info.TraceID == "" {
		t.Fatalf("expected trace id on context")
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(InjectLoggerMiddleware(logger), RequestLoggerMiddleware("hf-dev", nil))
	r.Get("/products/{productId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/p1", nil))

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/products/{productId}" {
		t.Fatalf("expected route pattern, got %v", fields["route"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", fields["status"])
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 4xx, got %s", entries[0].Level)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/validations", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_server_error") {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestInitTelemetryExposesMetrics(t *testing.T) {
	telemetry, err := InitTelemetry(TelemetryOptions{Environment: "test", MetricsEnabled: true})
	if err != nil {
		t.Fatalf("InitTelemetry returned error: %v", err)
	}
	t.Cleanup(func() { _ = telemetry.Shutdown(context.Background()) })

	telemetry.Metrics.RecordRequest(context.Background(), http.MethodGet, "/healthz", http.StatusOK, 0)

	rec := httptest.NewRecorder()
	telemetry.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "configurator_http_requests_total") {
		t.Fatalf("expected request counter in exposition, got:\n%s", body)
	}
}

func TestInitTelemetryWithoutMetrics(t *testing.T) {
	telemetry, err := InitTelemetry(TelemetryOptions{})
	if err != nil {
		t.Fatalf("InitTelemetry returned error: %v", err)
	}
	if telemetry.Handler != nil {
		t.Fatalf("expected no metrics handler")
	}
	telemetry.Metrics.RecordRequest(context.Background(), http.MethodGet, "/", http.StatusOK, 0)
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestNewEventLoggerPrefersRequestLogger(t *testing.T) {
	fallbackCore, fallbackLogs := observer.New(zapcore.DebugLevel)
	requestCore, requestLogs := observer.New(zapcore.DebugLevel)

	log := NewEventLogger(zap.New(fallbackCore), "configurator log")
	log(context.Background(), "compile.start", map[string]any{"parameters": 3})

	ctx := requestctx.WithRunID(requestctx.WithLogger(context.Background(), zap.New(requestCore)), "01HRUN")
	log(ctx, "compile.done", nil)

	if fallbackLogs.Len() != 1 || requestLogs.Len() != 1 {
		t.Fatalf("expected one entry per logger, got %d and %d", fallbackLogs.Len(), requestLogs.Len())
	}
	if got := requestLogs.All()[0].ContextMap()["run_id"]; got != "01HRUN" {
		t.Fatalf("expected run id field, got %v", got)
	}
}
