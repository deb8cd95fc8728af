package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-tools-gateway/middleware/ratelimit/domain"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript aplica a mesma regra do MemoryWindowStore de forma atômica.
// Retorna {allowed(0/1), count, ttl_ms}.
var fixedWindowScript = redis.NewScript(`
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local cur = redis.call('GET', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if (not cur) or ttl <= 0 then
  redis.call('SET', KEYS[1], 1, 'PX', window)
  return {1, 1, window}
end
cur = tonumber(cur)
if cur >= max then
  return {0, cur, ttl}
end
cur = redis.call('INCR', KEYS[1])
return {1, cur, ttl}
`)

// RedisWindowStore guarda os contadores da janela fixa no Redis, compartilhando
// a quota entre instâncias do gateway. A chave expira junto com a janela.
type RedisWindowStore struct {
	rdb redis.Scripter

	prefix   string
	hashKeys bool
	now      func() time.Time
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithHashedKeys grava o xxhash da chave em vez do identificador (ex.: IP) em claro.
func WithHashedKeys(on bool) RedisWindowOption {
	return func(s *RedisWindowStore) { s.hashKeys = on }
}

func WithRedisClock(now func() time.Time) RedisWindowOption {
	return func(s *RedisWindowStore) { s.now = now }
}

func NewRedisWindowStore(rdb redis.Scripter, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		prefix: "ratelimit:quota",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowStore) redisKey(q domain.Quota, key domain.Key) string {
	if s.hashKeys {
		h := strconv.FormatUint(xxhash.Sum64String(string(key)), 16)
		return s.prefix + ":" + scopedKey(q, domain.Key(h))
	}
	return s.prefix + ":" + scopedKey(q, key)
}

// Hit implementa domain.WindowStore.
func (s *RedisWindowStore) Hit(ctx context.Context, key domain.Key, q domain.Quota) (domain.WindowState, error) {
	windowMs := q.Window.Milliseconds()
	if windowMs <= 0 {
		return domain.WindowState{}, fmt.Errorf("redis window store: invalid window %s", q.Window)
	}

	now := s.now()
	res, err := fixedWindowScript.Run(ctx, s.rdb, []string{s.redisKey(q, key)}, q.MaxRequests, windowMs).Int64Slice()
	if err != nil {
		return domain.WindowState{}, fmt.Errorf("redis window store: %w", err)
	}
	if len(res) != 3 {
		return domain.WindowState{}, fmt.Errorf("redis window store: unexpected reply %v", res)
	}

	return domain.WindowState{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		ResetAt: now.Add(time.Duration(res[2]) * time.Millisecond),
	}, nil
}
