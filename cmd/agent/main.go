package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/auricmart/agent-api/internal/api"
	"github.com/auricmart/agent-api/internal/config"
	"github.com/auricmart/agent-api/internal/credential"
	"github.com/auricmart/agent-api/internal/handler"
	marketHandler "github.com/auricmart/agent-api/internal/handler/market"
	notificationHandler "github.com/auricmart/agent-api/internal/handler/notification"
	requestHandler "github.com/auricmart/agent-api/internal/handler/request"
	sessionHandler "github.com/auricmart/agent-api/internal/handler/session"
	"github.com/auricmart/agent-api/internal/reconciler"
	"github.com/auricmart/agent-api/internal/router"
	notifierService "github.com/auricmart/agent-api/internal/service/notifier"
	ratesService "github.com/auricmart/agent-api/internal/service/rates"
	requestService "github.com/auricmart/agent-api/internal/service/request"
	sessionService "github.com/auricmart/agent-api/internal/service/session"
	"github.com/auricmart/agent-api/internal/store"
	"github.com/auricmart/agent-api/pkg/logger"
	"github.com/auricmart/agent-api/pkg/messaging"
	"github.com/auricmart/agent-api/pkg/messaging/memory"
	redisBroker "github.com/auricmart/agent-api/pkg/messaging/redis"
	"github.com/auricmart/agent-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})

	m := metrics.NewMetrics("agent")

	// Local state: in-memory store plus the sqlite snapshot backing it.
	st := store.New()
	snapshot, err := store.OpenSnapshot(cfg.Agent.SnapshotPath)
	if err != nil {
		appLogger.Fatal(err, "failed to open snapshot database")
	}
	defer snapshot.Close()

	creds, err := credential.Open(cfg.Agent.CredentialDir)
	if err != nil {
		appLogger.Fatal(err, "failed to open credential store")
	}

	// Backend client. The token source reads the live session so a
	// login mid-flight switches every subsequent call.
	client := api.NewClient(api.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
	}, st.Token, appLogger, m)

	// Event bus.
	var broker messaging.Broker
	switch cfg.Broker.Kind {
	case "redis":
		broker, err = redisBroker.NewBroker(redisBroker.Config{
			URL:          cfg.Broker.RedisURL,
			MaxRetries:   cfg.Broker.MaxRetries,
			RetryBackoff: cfg.Broker.RetryBackoff,
			PoolSize:     cfg.Broker.PoolSize,
			MinIdleConns: cfg.Broker.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			appLogger.Fatal(err, "failed to connect broker")
		}
	default:
		broker = memory.NewBroker()
	}
	defer broker.Close()

	// Services.
	sessionSvc := sessionService.NewService(client, creds, st, appLogger)
	ratesSvc := ratesService.NewService(client, cfg.Rates.TTL, appLogger)
	requestSvc := requestService.NewService(client, st, broker, appLogger, m)
	notifierSvc := notifierService.NewService(client, st, snapshot, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := notifierSvc.Start(ctx, broker); err != nil {
		appLogger.Fatal(err, "failed to start notifier")
	}

	rec := reconciler.New(snapshot, client, notifierSvc, reconciler.Config{
		BatchSize:    cfg.Reconcile.BatchSize,
		PollInterval: cfg.Reconcile.PollInterval,
		MaxAttempts:  cfg.Reconcile.MaxAttempts,
	}, appLogger, m)
	go rec.Start(ctx)

	// Warm-start: restore the session and the persisted views, then
	// pull fresh state in the background.
	if restored, err := sessionSvc.Restore(ctx); err != nil {
		appLogger.Warn("session restore failed", "error", err.Error())
	} else if restored {
		warmStart(ctx, st, snapshot, notifierSvc, appLogger)
	}

	// Facade.
	r := router.NewRouter(
		sessionHandler.NewHandler(sessionSvc, st),
		requestHandler.NewHandler(requestSvc, ratesSvc, st),
		notificationHandler.NewHandler(notifierSvc),
		marketHandler.NewHandler(ratesSvc, client, st),
		handler.NewHandler(),
		router.Config{
			RateLimit: rate.Limit(cfg.Agent.RequestsPerSecond),
			RateBurst: cfg.Agent.Burst,
			Logger:    appLogger.Zerolog(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    cfg.Agent.Addr,
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("agent listening", "addr", cfg.Agent.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "failed to start facade server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down agent")

	// Persist the current views before exiting.
	persistSnapshot(st, snapshot, appLogger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "facade server forced to shutdown")
	}

	appLogger.Info("agent exited properly")
}

func warmStart(ctx context.Context, st *store.Store, snapshot *store.Snapshot, notifierSvc *notifierService.Service, appLogger *logger.Logger) {
	viewer := st.ViewerID()

	if requests, err := snapshot.LoadRequests(ctx, viewer); err == nil && len(requests) > 0 {
		st.ReplaceRequests(requests)
	}
	if list, err := snapshot.LoadNotifications(ctx, viewer); err == nil && len(list) > 0 {
		st.ReplaceNotifications(list)
	}

	go func() {
		if err := notifierSvc.Refresh(ctx); err != nil {
			appLogger.Warn("startup notification refresh failed", "error", err.Error())
		}
	}()
}

func persistSnapshot(st *store.Store, snapshot *store.Snapshot, appLogger *logger.Logger) {
	viewer := st.ViewerID()
	if viewer == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := snapshot.SaveRequests(ctx, viewer, st.Requests()); err != nil {
		appLogger.Warn("failed to persist request snapshot", "error", err.Error())
	}
	if err := snapshot.SaveNotifications(ctx, viewer, st.AllNotifications()); err != nil {
		appLogger.Warn("failed to persist notification snapshot", "error", err.Error())
	}
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
