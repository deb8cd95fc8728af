// Package config carrega a configuração do gateway a partir de variáveis de
// ambiente e, opcionalmente, de um arquivo YAML.
//
// Cada chave aninhada vira uma variável em maiúsculas com "_" no lugar de ".":
// quota.debate.max_requests -> QUOTA_DEBATE_MAX_REQUESTS.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`
	LogLevel   string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat  string `mapstructure:"log_format" validate:"oneof=json text"`

	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`

	RateKeyHeader       string `mapstructure:"rate_key_header"`
	TrustXFF            bool   `mapstructure:"trust_xff"`
	AddRateLimitHeaders bool   `mapstructure:"add_ratelimit_headers"`

	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Quota       QuotaConfig       `mapstructure:"quota"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Stats       StatsConfig       `mapstructure:"stats"`
	PDF         PDFConfig         `mapstructure:"pdf"`
}

type AnthropicConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// UpstreamConfig limita as chamadas de saída; RPS 0 desliga o throttle.
type UpstreamConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type ConcurrencyConfig struct {
	Max     int           `mapstructure:"max" validate:"gte=0"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type QuotaConfig struct {
	Backend      string        `mapstructure:"backend" validate:"oneof=memory redis"`
	Shards       int           `mapstructure:"shards" validate:"gt=0"`
	CleanupEvery time.Duration `mapstructure:"cleanup_every" validate:"gte=0"`
	HashKeys     bool          `mapstructure:"hash_keys"`
	Prefix       string        `mapstructure:"prefix" validate:"required"`

	Debate    LimitConfig `mapstructure:"debate"`
	Session   LimitConfig `mapstructure:"session"`
	Summarize LimitConfig `mapstructure:"summarize"`
}

type LimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests" validate:"gte=0"`
	Window      time.Duration `mapstructure:"window" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type StatsConfig struct {
	// Redis liga o store de estatísticas no Redis (além do Prometheus).
	Redis     bool          `mapstructure:"redis"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Bucket    string        `mapstructure:"bucket" validate:"oneof=minute hour none"`
	TrackKeys bool          `mapstructure:"track_keys"`
}

type PDFConfig struct {
	MaxChars int `mapstructure:"max_chars" validate:"gte=0"`
}

// NeedsRedis indica se algum componente configurado usa o Redis.
func (c *Config) NeedsRedis() bool {
	return c.Quota.Backend == "redis" || c.Stats.Redis
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.timeout", 30*time.Second)

	v.SetDefault("upstream.rps", 0)
	v.SetDefault("upstream.burst", 0)

	v.SetDefault("rate_key_header", "")
	// o identificador padrão é o primeiro IP do X-Forwarded-For
	v.SetDefault("trust_xff", true)
	v.SetDefault("add_ratelimit_headers", true)

	v.SetDefault("concurrency.max", 100)
	v.SetDefault("concurrency.timeout", 0)

	v.SetDefault("quota.backend", "memory")
	v.SetDefault("quota.shards", 16)
	v.SetDefault("quota.cleanup_every", time.Minute)
	v.SetDefault("quota.hash_keys", false)
	v.SetDefault("quota.prefix", "ratelimit:quota")
	v.SetDefault("quota.debate.max_requests", 10)
	v.SetDefault("quota.debate.window", time.Hour)
	v.SetDefault("quota.session.max_requests", 3)
	v.SetDefault("quota.session.window", time.Hour)
	v.SetDefault("quota.summarize.max_requests", 5)
	v.SetDefault("quota.summarize.window", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("stats.redis", false)
	v.SetDefault("stats.prefix", "ratelimit:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")
	v.SetDefault("stats.track_keys", false)

	v.SetDefault("pdf.max_chars", 50000)
}

// Load lê o arquivo (se informado) e aplica as variáveis de ambiente por cima.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			msgs := make([]string, 0, len(ves))
			for _, fe := range ves {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.NeedsRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("REDIS_ADDR is required when QUOTA_BACKEND=redis or STATS_REDIS=true")
	}
	if c.Upstream.RPS > 0 && c.Upstream.Burst <= 0 {
		return errors.New("UPSTREAM_BURST must be > 0 when UPSTREAM_RPS is set")
	}
	return nil
}
