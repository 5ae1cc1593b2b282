package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/memecard-ai/memecard/internal/cache/memestore"
	"github.com/memecard-ai/memecard/internal/cache/redisstore"
	"github.com/memecard-ai/memecard/internal/card"
	"github.com/memecard-ai/memecard/internal/core/config"
	"github.com/memecard-ai/memecard/internal/core/health"
	"github.com/memecard-ai/memecard/internal/core/httpclient"
	"github.com/memecard-ai/memecard/internal/core/observability"
	"github.com/memecard-ai/memecard/internal/core/server"
	"github.com/memecard-ai/memecard/internal/genai"
	"github.com/memecard-ai/memecard/internal/logger"
	"github.com/memecard-ai/memecard/internal/metrics"
	"github.com/memecard-ai/memecard/internal/render"
	"github.com/memecard-ai/memecard/internal/resolver"
	"github.com/memecard-ai/memecard/internal/usage"
	"github.com/memecard-ai/memecard/internal/usage/kafkausage"
	"github.com/memecard-ai/memecard/internal/usage/redisusage"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "memecard",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting memecard",
		"addr", cfg.Addr,
		"version", Version,
		"redis", cfg.RedisAddr,
		"model", cfg.GenAIModel)

	var metricsHandler http.Handler
	if strings.ToLower(os.Getenv("METRICS_ENABLED")) != "false" {
		p := metrics.Init(metrics.Config{
			Build: metrics.BuildInfo{
				Version:   os.Getenv("BUILD_VERSION"),
				Revision:  os.Getenv("BUILD_REVISION"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
		})
		observability.Init(p.Registerer(), true)
		observability.ExposeBuildInfo(Version)
		metricsHandler = p.Handler()
	} else {
		observability.Init(nil, false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	cli, err := redisstore.New(connectCtx, cfg.RedisAddr)
	cancel()
	if err != nil {
		appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
		return 1
	}
	defer func() { _ = cli.Close() }()

	gen, err := genai.New(genai.Config{
		BaseURL: cfg.GenAIBaseURL,
		Model:   cfg.GenAIModel,
		APIKey:  cfg.GenAIAPIKey,
	}, httpclient.NewOutbound(cfg.GenAITimeout))
	if err != nil {
		appLog.Error("model client setup failed", "err", err)
		return 1
	}

	store := memestore.NewRedisStore(cli, cfg.CacheTTL)
	res := resolver.New(appLog, store, gen, resolver.Config{
		TTL:       cfg.CacheTTL,
		OpTimeout: cfg.CacheOpTimeout,
	})

	rend, err := render.New(appLog, render.Config{
		BackgroundFile:  cfg.BackgroundFile,
		FontFile:        cfg.FontFile,
		PlaceholderFile: cfg.PlaceholderFile,
		MemoSize:        cfg.RenderCacheSize,
	})
	if err != nil {
		appLog.Error("renderer setup failed", "err", err)
		return 1
	}

	redisRec := redisusage.New(appLog, cli, cfg.UsageQueueSize, cfg.CacheOpTimeout)
	defer func() { _ = redisRec.Close() }()
	recorders := usage.Multi{redisRec}

	if cfg.UsageEvents.Enabled {
		pub, err := kafkausage.NewPublisher(appLog,
			strings.Split(cfg.UsageEvents.Brokers, ","),
			cfg.UsageEvents.Topic,
			cfg.UsageQueueSize)
		if err != nil {
			appLog.Error("kafka publisher setup failed", "err", err)
			return 1
		}
		defer func() { _ = pub.Close() }()
		recorders = append(recorders, pub)
	}

	engine := card.New(appLog, res, rend, recorders)

	deps := server.Deps{
		Handler:   engine,
		Metrics:   metricsHandler,
		Readiness: health.ReadinessFunc(cli.Ping),
	}

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
