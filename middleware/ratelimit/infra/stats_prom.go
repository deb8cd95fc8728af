package infra

import (
	"context"

	"ai-tools-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromStatsStore exporta as decisões de quota como métricas Prometheus.
// Labels: quota e outcome (allowed/denied). A chave do cliente nunca vira label.
type PromStatsStore struct {
	decisions *prometheus.CounterVec
}

type PromStatsOption func(reg prometheus.Registerer)

// WithKeysGauge registra um gauge com o número de chaves rastreadas pelo store
// de janela (ex.: MemoryWindowStore.Size).
func WithKeysGauge(size func() int) PromStatsOption {
	return func(reg prometheus.Registerer) {
		promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "gateway",
				Name:      "quota_keys",
				Help:      "Number of identifiers currently tracked by the quota store",
			},
			func() float64 { return float64(size()) },
		)
	}
}

// WithInFlightGauge registra um gauge com as vagas ocupadas do pool de concorrência.
func WithInFlightGauge(pool domain.SlotPool) PromStatsOption {
	return func(reg prometheus.Registerer) {
		promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "gateway",
				Name:      "generation_in_flight",
				Help:      "Generation requests currently holding a concurrency slot",
			},
			func() float64 { return float64(pool.InUse()) },
		)
	}
}

func NewPromStatsStore(reg prometheus.Registerer, opts ...PromStatsOption) *PromStatsStore {
	s := &PromStatsStore{
		decisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Name:      "quota_decisions_total",
				Help:      "Quota decisions by quota name and outcome",
			},
			[]string{"quota", "outcome"},
		),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return s
}

func (s *PromStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	s.decisions.WithLabelValues(ev.Quota, outcome).Inc()
	return nil
}

// MultiStats repassa o evento para vários stores; devolve o primeiro erro.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
