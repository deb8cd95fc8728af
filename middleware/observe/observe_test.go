package observe

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var seen string
	h := RequestID(logger)(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/x", nil))

	if seen == "" {
		t.Fatalf("expected request id in context")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("expected header %q, got %q", seen, got)
	}
	out := buf.String()
	if !strings.Contains(out, "request_id="+seen) || !strings.Contains(out, "status=418") {
		t.Fatalf("expected access log with request id and status, got %q", out)
	}
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	h := RequestID(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected incoming id to be kept, got %q", got)
	}
}

func TestLogger_DefaultWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	if Logger(r.Context()) != slog.Default() {
		t.Fatalf("expected slog.Default()")
	}
}

func TestMetrics_Instrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	h := m.Instrument("debate", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "http://example/api/debate", nil))
	m.UpstreamError("API_ERROR")

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("debate", "429")); got != 1 {
		t.Fatalf("expected 1 request with code 429, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamErrors.WithLabelValues("API_ERROR")); got != 1 {
		t.Fatalf("expected 1 upstream error, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := m.Instrument("x", next); h == nil {
		t.Fatalf("expected handler")
	}
	m.UpstreamError("x")
}
