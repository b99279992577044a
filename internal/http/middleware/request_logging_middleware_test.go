package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func captureDefaultLogger(t *testing.T) *captureHandler {
	t.Helper()
	orig := slog.Default()
	cap := &captureHandler{}
	slog.SetDefault(slog.New(cap))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return cap
}

func TestStructuredRequestLoggerLevels(t *testing.T) {
	cap := captureDefaultLogger(t)

	r := chi.NewRouter()
	r.Use(StructuredRequestLogger)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/api/userCredentials/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/api/accounts/{accountId}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, target := range []string{"/health/live", "/api/userCredentials/c-1", "/api/accounts/a-9", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = "198.51.100.10:3456"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(cap.records) != 4 {
		t.Fatalf("expected 4 log records, got %d", len(cap.records))
	}
	wantLevels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	for i, want := range wantLevels {
		if cap.records[i].Level != want {
			t.Fatalf("record %d: expected level %v, got %v", i, want, cap.records[i].Level)
		}
	}

	attrs := recordAttrs(cap.records[1])
	if attrs["route"] != "/api/userCredentials/{id}" || attrs["status"] != "200" || attrs["resource_id"] != "c-1" {
		t.Fatalf("unexpected credential request attrs %+v", attrs)
	}
	if attrs["client_ip"] != "198.51.100.10" || attrs["duration_ms"] == "" {
		t.Fatalf("expected client_ip without port and duration, got %+v", attrs)
	}

	attrs = recordAttrs(cap.records[2])
	if attrs["resource_id"] != "a-9" || attrs["status"] != "404" {
		t.Fatalf("unexpected account request attrs %+v", attrs)
	}

	if _, ok := recordAttrs(cap.records[3])["resource_id"]; ok {
		t.Fatal("routes without params must not log resource_id")
	}
}

func TestStructuredRequestLoggerStatusFallbackTo200(t *testing.T) {
	cap := captureDefaultLogger(t)

	h := StructuredRequestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/none", nil)
	req.RemoteAddr = "not-a-host-port"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(cap.records) != 1 {
		t.Fatalf("expected one log record, got %d", len(cap.records))
	}
	attrs := recordAttrs(cap.records[0])
	if attrs["status"] != "200" {
		t.Fatalf("expected fallback status 200, got %q", attrs["status"])
	}
	if attrs["client_ip"] != "not-a-host-port" {
		t.Fatalf("expected raw remote addr, got %q", attrs["client_ip"])
	}
}

func recordAttrs(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}
