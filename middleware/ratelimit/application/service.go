package application

import (
	"context"
	"fmt"
	"time"

	"ai-tools-gateway/middleware/ratelimit/domain"
)

// QuotaService concentra a regra de aplicação da quota por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type QuotaService struct {
	Store domain.WindowStore
	Quota domain.Quota
	// Now permite relógio fixo em testes. Padrão: time.Now.
	Now func() time.Time
}

func (s QuotaService) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil || s.Quota.MaxRequests <= 0 {
		return domain.Decision{Allowed: true, Remaining: -1}, nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	st, err := s.Store.Hit(ctx, key, s.Quota)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("quota %q: %w", s.Quota.Name, err)
	}

	resetIn := st.ResetAt.Sub(now())
	if resetIn < 0 {
		resetIn = 0
	}
	if !st.Allowed {
		return domain.Decision{
			Allowed:        false,
			Remaining:      0,
			ResetIn:        resetIn,
			ResetInMinutes: CeilMinutes(resetIn),
		}, nil
	}

	remaining := s.Quota.MaxRequests - st.Count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{
		Allowed:        true,
		Remaining:      remaining,
		ResetIn:        resetIn,
		ResetInMinutes: CeilMinutes(resetIn),
	}, nil
}

// CeilMinutes arredonda d para cima em minutos inteiros, com mínimo 1.
func CeilMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
