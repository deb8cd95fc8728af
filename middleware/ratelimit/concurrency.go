package ratelimit

import (
	"net/http"
	"time"

	"ai-tools-gateway/middleware/ratelimit/application"
	"ai-tools-gateway/middleware/ratelimit/domain"
	"ai-tools-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	// Pool permite compartilhar o pool (ex.: gauge de métricas). Se nil, cria um com Max vagas.
	Pool domain.SlotPool
	// OnReject escreve a resposta quando não há vaga. Padrão: http.Error com RejectStatus.
	OnReject http.HandlerFunc
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 && opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewChanPool(opts.Max)
	}
	if opts.OnReject == nil {
		status := opts.RejectStatus
		opts.OnReject = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(status), status)
		}
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.OnReject(w, r)
				return
			}
			defer release()
			next.ServeHTTP(w, r)
		})
	}
}
