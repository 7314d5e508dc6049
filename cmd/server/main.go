package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Renan-T/chart-auto-magic/internal/config"
	"github.com/Renan-T/chart-auto-magic/internal/httpx"
	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/pipeline"
	"github.com/Renan-T/chart-auto-magic/internal/prefs"
	"github.com/Renan-T/chart-auto-magic/internal/store"
	"github.com/Renan-T/chart-auto-magic/internal/view"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("err", envErr.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	ps, err := prefs.Open(ctx, kv, logger)
	if err != nil {
		logger.Error("prefs error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cl := pipeline.New(cfg.APIBaseURL, pipeline.NewHTTPClient(cfg.HTTPTimeout), m, logger)
	cache := store.NewDashboards(kv)

	r := httpx.NewRouter(httpx.Deps{
		Log:      logger,
		Loader:   view.NewLoader(cl, cache, m, logger),
		Uploader: view.NewUploader(cl, cache, cfg.PipelineModel, m, logger, "hero", "cta"),
		Prefs:    ps,
		Backend:  cl,
		Store:    kv,
		Metrics:  m,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server",
		slog.String("port", cfg.Port),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("store", cfg.StoreBackend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if c, ok := kv.(interface{ Close() error }); ok {
		c.Close()
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.KV, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		return store.DialRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
	default:
		return store.NewFileStore(cfg.StoreDir)
	}
}
