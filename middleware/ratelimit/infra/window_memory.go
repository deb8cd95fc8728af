package infra

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"ai-tools-gateway/middleware/ratelimit/domain"

	"github.com/cespare/xxhash/v2"
)

// MemoryWindowStore é uma implementação de domain.WindowStore em memória,
// com janela fixa por chave.
//
// A tabela é dividida em shards (xxhash da chave escolhe o shard), cada um com
// seu próprio mutex. A expiração usa um min-heap por shard ordenado por resetAt:
// o janitor só remove o que já venceu, sem varrer a tabela inteira.
//
// O estado é local ao processo e se perde no restart (quota best-effort).
// Para quota compartilhada entre instâncias use RedisWindowStore.
type MemoryWindowStore struct {
	shards       []*windowShard
	now          func() time.Time
	cleanupEvery time.Duration
}

type windowShard struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	expiry  expiryHeap
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

type MemoryWindowOption func(*MemoryWindowStore)

// WithShards define o número de shards (mínimo 1).
func WithShards(n int) MemoryWindowOption {
	return func(s *MemoryWindowStore) {
		if n < 1 {
			n = 1
		}
		s.shards = newShards(n)
	}
}

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryWindowOption {
	return func(s *MemoryWindowStore) { s.now = now }
}

func WithCleanupEvery(d time.Duration) MemoryWindowOption {
	return func(s *MemoryWindowStore) { s.cleanupEvery = d }
}

func NewMemoryWindowStore(opts ...MemoryWindowOption) *MemoryWindowStore {
	s := &MemoryWindowStore{
		shards:       newShards(16),
		now:          time.Now,
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*windowShard {
	shards := make([]*windowShard, n)
	for i := range shards {
		shards[i] = &windowShard{entries: make(map[string]*windowEntry)}
	}
	return shards
}

func (s *MemoryWindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *MemoryWindowStore) shard(key string) *windowShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Hit implementa domain.WindowStore.
func (s *MemoryWindowStore) Hit(_ context.Context, key domain.Key, q domain.Quota) (domain.WindowState, error) {
	sk := scopedKey(q, key)
	sh := s.shard(sk)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[sk]
	if !ok || !now.Before(ent.resetAt) {
		// janela nova (ou a anterior venceu): sobrescreve com count=1
		ent = &windowEntry{count: 1, resetAt: now.Add(q.Window)}
		sh.entries[sk] = ent
		heap.Push(&sh.expiry, expiryItem{key: sk, resetAt: ent.resetAt})
		return domain.WindowState{Allowed: true, Count: 1, ResetAt: ent.resetAt}, nil
	}

	if ent.count >= q.MaxRequests {
		return domain.WindowState{Allowed: false, Count: ent.count, ResetAt: ent.resetAt}, nil
	}
	ent.count++
	return domain.WindowState{Allowed: true, Count: ent.count, ResetAt: ent.resetAt}, nil
}

// Sweep remove as entradas cuja janela venceu até `now`. Retorna quantas saíram.
func (s *MemoryWindowStore) Sweep(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for sh.expiry.Len() > 0 && !now.Before(sh.expiry[0].resetAt) {
			it := heap.Pop(&sh.expiry).(expiryItem)
			// o item pode ser de uma janela antiga já substituída
			if ent, ok := sh.entries[it.key]; ok && ent.resetAt.Equal(it.resetAt) {
				delete(sh.entries, it.key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Size retorna o número de chaves rastreadas (inclui as vencidas ainda não varridas).
func (s *MemoryWindowStore) Size() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// StartJanitor inicia uma goroutine que varre chaves vencidas periodicamente.
// Pare cancelando o contexto; o canal retornado fecha quando a goroutine sai.
func (s *MemoryWindowStore) StartJanitor(ctx DoneContext) <-chan struct{} {
	done := make(chan struct{})
	if s.cleanupEvery <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.Sweep(s.now()); n > 0 {
					slog.Debug("quota janitor sweep", "removed", n, "remaining", s.Size())
				}
			}
		}
	}()
	return done
}

// DoneContext é o mínimo necessário para aceitar context.Context sem acoplar.
type DoneContext interface {
	Done() <-chan struct{}
}

func scopedKey(q domain.Quota, key domain.Key) string {
	if q.Name == "" {
		return string(key)
	}
	return q.Name + ":" + string(key)
}

type expiryItem struct {
	key     string
	resetAt time.Time
}

// expiryHeap implementa heap.Interface (min-heap por resetAt).
type expiryHeap []expiryItem

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].resetAt.Before(h[j].resetAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *expiryHeap) Push(x any) { *h = append(*h, x.(expiryItem)) }

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
