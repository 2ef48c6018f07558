package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/api"
	"github.com/corey888773/notification-scheduler/internal/bus"
	"github.com/corey888773/notification-scheduler/internal/config"
	"github.com/corey888773/notification-scheduler/internal/dispatch"
	"github.com/corey888773/notification-scheduler/internal/domain"
	"github.com/corey888773/notification-scheduler/internal/metrics"
	"github.com/corey888773/notification-scheduler/internal/scheduler"
	"github.com/corey888773/notification-scheduler/internal/store"
)

func main() {
	// ---- configuration ----
	cfg := config.Load()

	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = lvl
	}
	logger, _ := zapCfg.Build()
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	// ---- store ----
	mongoClient, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx) //nolint:errcheck

	notifStore := store.NewMongoStore(mongoClient)
	if err := notifStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to provision store indexes", zap.Error(err))
	}
	logger.Info("store indexes provisioned")

	// ---- bus ----
	natsConn, js, err := bus.Connect(bus.DefaultConfig(cfg.NatsURL))
	if err != nil {
		logger.Fatal("failed to connect to nats", zap.Error(err))
	}
	defer natsConn.Close()

	channels := []domain.Channel{domain.ChannelPush, domain.ChannelEmail}
	if err := bus.ProvisionStreams(ctx, js, channels); err != nil {
		logger.Fatal("failed to provision bus streams", zap.Error(err))
	}
	logger.Info("bus streams provisioned")

	publisher := bus.NewNatsPublisher(js)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	onSent, onFailed := m.DispatchHooks()
	svc := dispatch.NewServiceWithConfig(notifStore, publisher, logger, dispatch.Hooks{
		OnSent:   onSent,
		OnFailed: onFailed,
	}, dispatch.Config{
		BatchLimit:   cfg.BatchLimit,
		MaxAttempts:  cfg.MaxAttempts,
		RetryBackoff: cfg.RetryBackoff,
	})

	// ---- scheduler ----
	// Context for the scheduler's ticker loops; cancelled on shutdown signal.
	schedCtx, cancelSched := context.WithCancel(ctx)
	defer cancelSched()

	sched := scheduler.New(svc, logger)
	sched.Start(schedCtx)

	// ---- admission HTTP server ----
	router := api.NewRouter(svc, logger, m.HTTPDuration)
	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("admission server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("admission server error", zap.Error(err))
		}
	}()

	// ---- metrics HTTP server ----
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.PrometheusPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server starting", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admission server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", zap.Error(err))
	}

	// 2. Signal both scheduler tiers to stop ticking.
	cancelSched()

	// 3. Wait for in-flight dispatch ticks to drain.
	sched.Wait()

	logger.Info("server stopped cleanly")
}
