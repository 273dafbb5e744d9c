package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"sleuth/internal/adapters/llm"
	"sleuth/internal/platform/cache"
	"sleuth/internal/platform/config"
	"sleuth/internal/platform/logger"
	"sleuth/internal/platform/metrics"
	phttp "sleuth/internal/platform/net/http"
	"sleuth/internal/platform/queue"
	"sleuth/internal/platform/store"

	"sleuth/internal/services/api"
	detectdom "sleuth/internal/services/detect/domain"
	detectsvc "sleuth/internal/services/detect/service"
)

func main() {
	// service-scoped config views (CORE_API_*, SERVICE_PGSQL_*, DETECT_*, LLM_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	detectCfg := root.Prefix("DETECT_")
	llmCfg := root.Prefix("LLM_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres is optional; without it detect still works but history is off
	var st *store.Store
	if pgCfg.MayBool("ENABLE", true) && pgCfg.MayString("URL", "") != "" {
		var err error
		st, err = store.Open(ctx, store.FromConf(pgCfg, "sleuth"), store.WithLogger(*logger.Get()))
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	} else {
		l.Warn().Msg("postgres disabled, analyses history is off")
	}

	// engine internals, shared with the admin surface
	resultCache := cache.New[detectdom.ResultSet]()
	resultCache.StartSweeper(ctx, detectCfg.MayDuration("CACHE_SWEEP", 5*time.Minute))

	jobs := queue.New(
		queue.WithConcurrency(detectCfg.MayInt("WORKERS", queue.DefaultConcurrency)),
		queue.WithDispatchTimeout(detectCfg.MayDuration("JOB_TIMEOUT", time.Minute)),
	)
	rec := metrics.NewRecorder()
	mock := detectsvc.NewMock()

	var detector detectdom.Detector
	if completer, err := llm.New(llmCfg); err != nil {
		l.Warn().Err(err).Msg("llm client unavailable, running heuristics only")
		detector = mock
	} else {
		l.Info().Str("model", completer.Model()).Msg("llm analyzer ready")
		detector = detectsvc.NewEngine(completer, mock, resultCache, jobs, rec,
			detectsvc.WithCacheTTL(detectCfg.MayDuration("CACHE_TTL", time.Hour)),
		)
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         apiCfg,
		Store:          st,
		Detector:       detector,
		Queue:          jobs,
		Cache:          resultCache,
		Recorder:       rec,
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
