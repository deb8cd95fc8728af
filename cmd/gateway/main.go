package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-tools-gateway/internal/apierr"
	"ai-tools-gateway/internal/config"
	"ai-tools-gateway/internal/llm"
	"ai-tools-gateway/internal/pdftext"
	"ai-tools-gateway/internal/tools"
	"ai-tools-gateway/middleware/observe"
	"ai-tools-gateway/middleware/ratelimit"
	"ai-tools-gateway/middleware/ratelimit/domain"
	"ai-tools-gateway/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "AI tools gateway (debate trainer, PDF summarizer)",
	Long: `Serves the server-side endpoints of the AI tools:

  POST /api/debate      debate turn with scores and feedback
  POST /api/summarize   PDF upload -> summary and key points
  GET  /healthz
  GET  /metrics

Configuration comes from environment variables (LISTEN_ADDR, ANTHROPIC_API_KEY,
QUOTA_DEBATE_MAX_REQUESTS, ...) and optionally from a YAML file (--config).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return run(ctx, cfg)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (env vars take precedence)")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Anthropic.APIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set; generation endpoints will answer API_ERROR")
	}
	gen := llm.NewClient(cfg.Anthropic.APIKey,
		llm.WithBaseURL(cfg.Anthropic.BaseURL),
		llm.WithModel(cfg.Anthropic.Model),
		llm.WithTimeout(cfg.Anthropic.Timeout),
		llm.WithRateLimit(cfg.Upstream.RPS, cfg.Upstream.Burst),
	)

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping error: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var pool domain.SlotPool
	if cfg.Concurrency.Max > 0 {
		pool = infra.NewChanPool(cfg.Concurrency.Max)
	}

	var (
		window   domain.WindowStore
		promOpts []infra.PromStatsOption
	)
	switch cfg.Quota.Backend {
	case "redis":
		window = infra.NewRedisWindowStore(rdb,
			infra.WithWindowPrefix(cfg.Quota.Prefix),
			infra.WithHashedKeys(cfg.Quota.HashKeys),
		)
	default:
		mem := infra.NewMemoryWindowStore(
			infra.WithShards(cfg.Quota.Shards),
			infra.WithCleanupEvery(cfg.Quota.CleanupEvery),
		)
		mem.StartJanitor(ctx)
		window = mem
		promOpts = append(promOpts, infra.WithKeysGauge(mem.Size))
	}
	if pool != nil {
		promOpts = append(promOpts, infra.WithInFlightGauge(pool))
	}

	stats := infra.MultiStats{infra.NewPromStatsStore(reg, promOpts...)}
	if cfg.Stats.Redis {
		stats = append(stats, infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		))
	}

	limiter := func(name string, l config.LimitConfig) *ratelimit.Limiter {
		return ratelimit.NewLimiter(ratelimit.LimiterOptions{
			Store:               window,
			Stats:               stats,
			Quota:               domain.Quota{Name: name, MaxRequests: l.MaxRequests, Window: l.Window},
			AddRateLimitHeaders: cfg.AddRateLimitHeaders,
		})
	}

	deps := tools.Deps{
		Generator:    gen,
		Extractor:    pdftext.PDFExtractor{MaxChars: cfg.PDF.MaxChars},
		KeyFn:        ratelimit.DefaultKeyFunc(cfg.RateKeyHeader, cfg.TrustXFF),
		DebateQuota:  limiter("debate", cfg.Quota.Debate),
		SessionQuota: limiter("debate-session", cfg.Quota.Session),
		SummaryQuota: limiter("summarize", cfg.Quota.Summarize),
		Concurrency: ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Pool:           pool,
			AcquireTimeout: cfg.Concurrency.Timeout,
			OnReject: func(w http.ResponseWriter, _ *http.Request) {
				apierr.Write(w, apierr.New(http.StatusServiceUnavailable, apierr.ServiceOverloaded,
					"Too many requests in progress. Please try again shortly."))
			},
		}),
		Metrics:        observe.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:         logger,
	}
	if rdb != nil {
		deps.Health = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           tools.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a geração pode levar o timeout inteiro do upstream
		WriteTimeout: cfg.Anthropic.Timeout + 15*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening",
		"addr", cfg.ListenAddr,
		"model", gen.Model(),
		"quota_backend", cfg.Quota.Backend,
		"debate_quota", cfg.Quota.Debate.MaxRequests,
		"session_quota", cfg.Quota.Session.MaxRequests,
		"summarize_quota", cfg.Quota.Summarize.MaxRequests,
		"trust_xff", cfg.TrustXFF,
		"concurrency_max", cfg.Concurrency.Max,
		"upstream_rps", cfg.Upstream.RPS,
		"redis_stats", cfg.Stats.Redis,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("gateway stopped")
	return nil
}
