package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fantasy/internal/app"
	"fantasy/internal/platform/config"
	"fantasy/internal/platform/httpserver"
	"fantasy/internal/platform/logger"
	"fantasy/internal/platform/tracing"
	"fantasy/internal/provisioning"
	provisioningmetrics "fantasy/internal/provisioning/metrics"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, provisioning.ErrBootstrapExhausted) {
			fmt.Fprintln(os.Stderr, "fantasy worker: broker unreachable, giving up")
		}
		fmt.Fprintf(os.Stderr, "fantasy worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.EmbeddedWorker() {
		return errors.New("standalone worker needs BROKER=kafka; the memory broker runs inside the server")
	}
	if cfg.Postgres.URL == "" {
		return errors.New("standalone worker needs DATABASE_URL; provisioned teams must land in the API's store")
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level, os.Stdout).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, "fantasy-worker")
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

	reg := prometheus.NewRegistry()
	worker := app.NewWorker(cfg, store.UnitOfWork, queue, log,
		provisioning.WithMetrics(provisioningmetrics.New(reg)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(ctx) })
	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(cfg.Server, metricsRouter(reg)), cfg.Server.ShutdownTimeout, log)
	})

	log.InfoContext(ctx, "provisioning worker started", "broker", app.DescribeBroker(cfg), "metrics_addr", cfg.Server.Addr)
	return g.Wait()
}

// metricsRouter is the worker's only HTTP surface.
func metricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
