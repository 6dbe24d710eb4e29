// Package postgres implements the storage unit of work on PostgreSQL via pgx.
//
// Row locks give the market its isolation: a unit of work locks the player it
// touches first and then its teams in id order, so concurrent purchases of the
// same player queue behind each other and the loser re-reads the sold row.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fantasy/internal/storage"
	dErrors "fantasy/pkg/domain-errors"
	"fantasy/pkg/platform/sentinel"
	txcontext "fantasy/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Store implements storage.UnitOfWork on a pgx pool.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

type Option func(*Store)

func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, timeout: storage.DefaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables when they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// RunInTx opens a READ COMMITTED transaction, or joins the one already carried
// by ctx.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, stores storage.Stores) error) error {
	if err := storage.Aborted(ctx.Err()); err != nil {
		return err
	}
	if tx, ok := txcontext.From(ctx); ok {
		return fn(ctx, storesFor(tx))
	}

	ctx, cancel := storage.WithTxDeadline(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return translate(ctx, err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(txcontext.WithTx(ctx, tx), storesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(ctx, err, "commit transaction")
	}
	return nil
}

func storesFor(tx pgx.Tx) storage.Stores {
	return storage.Stores{
		Teams:   &teamStore{tx: tx},
		Players: &playerStore{tx: tx},
		Users:   &userStore{tx: tx},
	}
}

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// translate maps driver failures onto sentinels so services never see pgx types.
func translate(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if aborted := storage.Aborted(ctx.Err()); aborted != nil {
		return aborted
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		case pgLockNotAvailable, pgQueryCanceled:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction aborted: store busy or deadline exceeded")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
