package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Generate_SendsMessagesRequest(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"m-1","content":[{"type":"text","text":"hello "},{"type":"text","text":"world"}],"usage":{"input_tokens":7,"output_tokens":3}}`)
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithModel("m-1"))
	resp, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "hi", MaxTokens: 100, Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello world" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.InputTokens != 7 || resp.Usage.OutputTokens != 3 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if got.Model != "m-1" || got.MaxTokens != 100 || got.System != "sys" || len(got.Messages) != 1 || got.Messages[0].Content != "hi" {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestClient_Generate_UpstreamErrors(t *testing.T) {
	cases := []struct {
		status     int
		body       string
		overloaded bool
	}{
		{http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, false},
		{http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, false},
		{StatusOverloaded, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, true},
		{http.StatusBadGateway, `not json`, false},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, tc.body)
		}))

		_, err := NewClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
		srv.Close()

		var ue *UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("status %d: expected UpstreamError, got %v", tc.status, err)
		}
		if ue.StatusCode != tc.status {
			t.Fatalf("expected status %d, got %d", tc.status, ue.StatusCode)
		}
		if ue.Overloaded() != tc.overloaded {
			t.Fatalf("status %d: overloaded=%v", tc.status, ue.Overloaded())
		}
	}
}

func TestClient_Generate_NoAPIKey(t *testing.T) {
	_, err := NewClient("").Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_Generate_ThrottledWithoutCallingUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(0.001, 1))
	if _, err := c.Generate(context.Background(), Request{Prompt: "x"}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.Generate(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected upstream called once, got %d", calls)
	}
}

func TestClient_Generate_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
