// Package service is the transfer market engine. Every operation is one unit of
// work: the player and team rows it reads are re-read and locked inside the
// transaction, and either all of its writes commit or none do.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"fantasy/internal/market/metrics"
	"fantasy/internal/market/models"
	"fantasy/internal/storage"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/sentinel"
)

// Notifier receives PlayerSold events after a purchase commits.
type Notifier interface {
	NotifyPlayerSold(ctx context.Context, event models.PlayerSold) error
}

type Service struct {
	uow      storage.UnitOfWork
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(uow storage.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		uow:    uow,
		logger: slog.Default(),
		tracer: otel.Tracer("fantasy/internal/market/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run executes fn as one unit of work and records its outcome.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context, st storage.Stores) error) error {
	start := time.Now()
	err := translate(s.uow.RunInTx(ctx, fn))
	outcome := "ok"
	if err != nil {
		code, _ := dErrors.CodeOf(err)
		outcome = string(code)
	}
	s.metrics.ObserveOperation(op, outcome, time.Since(start))
	return err
}

// translate turns whatever escaped the unit of work into a coded error.
// Domain errors raised by the engine pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.CodeOf(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, please retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
}

// notFound maps a store miss onto CodeNotFound with msg and passes anything else on.
func notFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return err
}
