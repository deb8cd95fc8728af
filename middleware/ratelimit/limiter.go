package ratelimit

import (
	"net/http"
	"time"

	"ai-tools-gateway/middleware/ratelimit/application"
	"ai-tools-gateway/middleware/ratelimit/domain"
)

// Limiter aplica uma quota por janela fixa dentro de um handler.
//
// Diferente de um middleware, o handler decide quando consumir a quota
// (ex.: só depois de validar a entrada, para que requests inválidas não gastem quota).
type Limiter struct {
	svc     application.QuotaService
	stats   domain.StatsStore
	headers bool
}

type LimiterOptions struct {
	Store domain.WindowStore
	Stats domain.StatsStore
	Quota domain.Quota
	// AddRateLimitHeaders escreve X-RateLimit-Limit/Remaining na resposta.
	AddRateLimitHeaders bool
	Now                 func() time.Time
}

func NewLimiter(opts LimiterOptions) *Limiter {
	return &Limiter{
		svc: application.QuotaService{
			Store: opts.Store,
			Quota: opts.Quota,
			Now:   opts.Now,
		},
		stats:   opts.Stats,
		headers: opts.AddRateLimitHeaders,
	}
}

func (l *Limiter) Quota() domain.Quota { return l.svc.Quota }

// Check consome uma unidade da quota para key e devolve a decisão.
//
// Quando negado, escreve Retry-After (segundos). Erro do store é devolvido ao
// chamador; estatísticas são best-effort.
func (l *Limiter) Check(w http.ResponseWriter, r *http.Request, key string) (domain.Decision, error) {
	dec, err := l.svc.Decide(r.Context(), domain.Key(key))
	if err != nil {
		return dec, err
	}

	if l.stats != nil {
		_ = l.stats.Record(r.Context(), domain.StatsEvent{
			Key:     domain.Key(key),
			Quota:   l.svc.Quota.Name,
			Allowed: dec.Allowed,
			Method:  r.Method,
			Path:    r.URL.Path,
			At:      time.Now(),
		})
	}

	if l.headers && dec.Remaining >= 0 {
		w.Header().Set("X-RateLimit-Limit", formatInt(l.svc.Quota.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
	}
	if !dec.Allowed {
		w.Header().Set("Retry-After", formatInt(retryAfterSeconds(dec.ResetIn)))
	}
	return dec, nil
}

func retryAfterSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
