// Package tools implementa os endpoints do gateway: cada um valida a entrada,
// consome a quota do cliente, chama o serviço de geração e devolve os campos
// extraídos da resposta em JSON.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"ai-tools-gateway/internal/apierr"
	"ai-tools-gateway/internal/llm"
	"ai-tools-gateway/internal/pdftext"
	"ai-tools-gateway/middleware/observe"
	"ai-tools-gateway/middleware/ratelimit"
	"ai-tools-gateway/middleware/ratelimit/domain"
)

// Deps agrupa os colaboradores dos handlers.
type Deps struct {
	Generator llm.Generator
	Extractor pdftext.Extractor

	KeyFn ratelimit.KeyFunc

	DebateQuota  *ratelimit.Limiter
	SessionQuota *ratelimit.Limiter
	SummaryQuota *ratelimit.Limiter

	// Concurrency envolve as rotas que chamam o LLM (pode ser nil).
	Concurrency func(http.Handler) http.Handler

	Metrics        *observe.Metrics
	MetricsHandler http.Handler
	// Health é consultado em /healthz (ex.: ping no Redis). Pode ser nil.
	Health func(ctx context.Context) error

	Logger *slog.Logger
}

// NewRouter monta o mux com request ID e log de acesso.
func NewRouter(d Deps) http.Handler {
	if d.KeyFn == nil {
		d.KeyFn = ratelimit.DefaultKeyFunc("", true)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Concurrency == nil {
		d.Concurrency = func(h http.Handler) http.Handler { return h }
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/debate", d.Metrics.Instrument("debate", d.Concurrency(http.HandlerFunc(d.debate))))
	mux.Handle("POST /api/summarize", d.Metrics.Instrument("summarize", d.Concurrency(http.HandlerFunc(d.summarize))))
	mux.HandleFunc("GET /healthz", d.health)
	if d.MetricsHandler != nil {
		mux.Handle("GET /metrics", d.MetricsHandler)
	}

	return observe.RequestID(d.Logger)(observe.AccessLog(mux))
}

func (d Deps) health(w http.ResponseWriter, r *http.Request) {
	if d.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Health(ctx); err != nil {
			observe.Logger(r.Context()).Warn("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkQuota consome a quota; devolve false se a resposta já foi escrita.
//
// Falha do store (ex.: Redis fora) não bloqueia o usuário: a quota é best-effort.
func (d Deps) checkQuota(w http.ResponseWriter, r *http.Request, l *ratelimit.Limiter, key string) (domain.Decision, bool) {
	if l == nil {
		return domain.Decision{Allowed: true, Remaining: -1}, true
	}
	dec, err := l.Check(w, r, key)
	if err != nil {
		observe.Logger(r.Context()).Warn("quota store unavailable, allowing request",
			"quota", l.Quota().Name, "err", err)
		return domain.Decision{Allowed: true, Remaining: -1}, true
	}
	if !dec.Allowed {
		observe.Logger(r.Context()).Info("quota exceeded",
			"quota", l.Quota().Name, "reset_in_minutes", dec.ResetInMinutes)
		apierr.Write(w, apierr.RateLimited(dec.ResetInMinutes))
		return dec, false
	}
	return dec, true
}

// generate chama o LLM e escreve o erro classificado em caso de falha.
func (d Deps) generate(w http.ResponseWriter, r *http.Request, req llm.Request) (llm.Response, bool) {
	resp, err := d.Generator.Generate(r.Context(), req)
	if err != nil {
		e := apierr.FromUpstream(err)
		observe.Logger(r.Context()).Error("generation failed",
			"code", e.Code, "status", e.Status, "err", err)
		d.Metrics.UpstreamError(string(e.Code))
		apierr.Write(w, e)
		return llm.Response{}, false
	}
	observe.Logger(r.Context()).Debug("generation done",
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)
	return resp, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
