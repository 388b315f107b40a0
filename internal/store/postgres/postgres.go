// Package postgres provides a PostgreSQL implementation of the store contracts
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/envsync/internal/otel"
	"github.com/stacklok/envsync/internal/store"
)

// TracerName is the name used for the store tracer
const TracerName = "github.com/stacklok/envsync/store/postgres"

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries implements store.Session over a querier
type queries struct {
	db     querier
	tracer trace.Tracer
}

var _ store.Session = (*queries)(nil)

// Store is a store.Store backed by a pgx connection pool
type Store struct {
	*queries
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

type options struct {
	tracer trace.Tracer
}

// Option is a functional option for configuring the store
type Option func(*options) error

// WithTracer sets the tracer used for query spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// New creates a store on top of an existing pool
func New(pool *pgxpool.Pool, opts ...Option) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return &Store{
		queries: &queries{db: pool, tracer: o.tracer},
		pool:    pool,
	}, nil
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithSession runs fn in a serializable transaction that is committed when
// fn returns nil and rolled back otherwise
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, session store.Session) error) (err error) {
	ctx, span := s.startSpan(ctx, "store.WithSession")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(ctx, &queries{db: tx, tracer: s.tracer}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// startSpan starts a span for a store operation. All spans carry the
// db.system attribute.
func (q *queries) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{semconv.DBSystemPostgreSQL, otel.AttrDBOperation.String(name)}, attrs...)
	return otel.StartSpan(ctx, q.tracer, name, trace.WithAttributes(attrs...))
}

// mapError translates pgx errors into store sentinels
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
