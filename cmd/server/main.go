package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"fantasy/internal/app"
	jwttoken "fantasy/internal/jwt_token"
	markethandler "fantasy/internal/market/handler"
	marketmetrics "fantasy/internal/market/metrics"
	marketservice "fantasy/internal/market/service"
	"fantasy/internal/notification"
	notificationhandler "fantasy/internal/notification/handler"
	notificationstore "fantasy/internal/notification/store"
	"fantasy/internal/platform/config"
	"fantasy/internal/platform/httpserver"
	"fantasy/internal/platform/logger"
	"fantasy/internal/platform/metrics"
	"fantasy/internal/platform/redis"
	"fantasy/internal/platform/tracing"
	"fantasy/internal/provisioning"
	provisioningmetrics "fantasy/internal/provisioning/metrics"
	"fantasy/internal/ratelimit"
	"fantasy/internal/registration"
	httptransport "fantasy/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fantasy server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, "fantasy-server")
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

	store, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	queue, err := app.OpenBroker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer queue.Close()

	health := map[string]httptransport.HealthCheck{"storage": store.Health}

	var notificationStore notification.Store = notificationstore.NewInMemory()
	var limitStore ratelimit.Store = ratelimit.NewInMemory()
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		notificationStore = notificationstore.NewRedis(rdb.Client)
		limitStore = ratelimit.NewRedis(rdb.Client)
		health["redis"] = rdb.Health
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	notifications := notification.NewService(notificationStore, log)
	market := marketservice.New(store.UnitOfWork,
		marketservice.WithNotifier(notifications),
		marketservice.WithLogger(log),
		marketservice.WithMetrics(marketmetrics.New(reg)),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	registrar := registration.NewHandler(
		registration.NewService(store.UnitOfWork, queue, log, httpMetrics),
		tokens, jwttoken.DefaultAccessTokenTTL, log,
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  httpMetrics,
		Gatherer: reg,
		Auth:     jwttoken.NewJWTServiceAdapter(tokens),
		Public:   []httptransport.Routes{registrar.PublicRoutes()},
		PublicLimit: ratelimit.NewMiddleware(limitStore, cfg.RateLimit.Register, cfg.RateLimit.Window, log).
			Limit("register"),
		Protected: []httptransport.Routes{
			markethandler.New(market, log, nil),
			registrar,
			notificationhandler.New(notifications, log),
		},
		Health: health,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(cfg.Server, router), cfg.Server.ShutdownTimeout, log)
	})
	if cfg.EmbeddedWorker() {
		worker := app.NewWorker(cfg, store.UnitOfWork, queue, log.With("component", "worker"),
			provisioning.WithMetrics(provisioningmetrics.New(reg)))
		g.Go(func() error { return worker.Run(ctx) })
	}

	log.InfoContext(ctx, "fantasy server started",
		"broker", app.DescribeBroker(cfg),
		"embedded_worker", cfg.EmbeddedWorker(),
		"postgres", cfg.Postgres.URL != "",
		"redis", rdb != nil,
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("fantasy server stopped")
	return nil
}
