package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-tools-gateway/internal/llm"
)

func TestFromUpstream_Classification(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   Code
	}{
		{"auth", &llm.UpstreamError{StatusCode: 401}, http.StatusInternalServerError, APIError},
		{"forbidden", &llm.UpstreamError{StatusCode: 403}, http.StatusInternalServerError, APIError},
		{"rate", &llm.UpstreamError{StatusCode: 429}, http.StatusTooManyRequests, RateLimitExceeded},
		{"overloaded", &llm.UpstreamError{StatusCode: 529}, http.StatusServiceUnavailable, ServiceOverloaded},
		{"overloaded type", &llm.UpstreamError{StatusCode: 500, Type: "overloaded_error"}, http.StatusServiceUnavailable, ServiceOverloaded},
		{"unavailable", &llm.UpstreamError{StatusCode: 503}, http.StatusServiceUnavailable, ServiceOverloaded},
		{"other status", &llm.UpstreamError{StatusCode: 400}, http.StatusInternalServerError, APIError},
		{"wrapped", fmt.Errorf("debate: %w", &llm.UpstreamError{StatusCode: 429}), http.StatusTooManyRequests, RateLimitExceeded},
		{"no key", llm.ErrNotConfigured, http.StatusInternalServerError, APIError},
		{"throttled", llm.ErrThrottled, http.StatusTooManyRequests, RateLimitExceeded},
		{"unknown", errors.New("dial tcp: refused"), http.StatusInternalServerError, APIError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := FromUpstream(tc.err)
			if e.Status != tc.status || e.Code != tc.code {
				t.Fatalf("got %d/%s, want %d/%s", e.Status, e.Code, tc.status, tc.code)
			}
			if !errors.Is(e, tc.err) && !errors.Is(e.Err, tc.err) {
				t.Fatalf("expected original error to be wrapped")
			}
		})
	}
}

func TestWrite_DoesNotLeakInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, &llm.UpstreamError{StatusCode: 401, Body: `{"secret":"sk-123"}`})

	// erro cru (não *Error) vira API_ERROR genérico
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "sk-123") {
		t.Fatalf("response leaked upstream body: %s", w.Body.String())
	}

	var b map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if b["error"] != string(APIError) || b["message"] == "" {
		t.Fatalf("unexpected body %v", b)
	}
}

func TestWrite_RateLimitedIncludesReset(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, RateLimited(42))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), `"resetInMinutes":42`) {
		t.Fatalf("expected resetInMinutes in body, got %s", w.Body.String())
	}
}

func TestAs_KeepsTypedError(t *testing.T) {
	orig := Validation(MissingField, "theme is required")
	if got := As(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("expected same *Error")
	}
}
