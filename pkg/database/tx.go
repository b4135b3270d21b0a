package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrAcquireTimeout is returned when no pooled connection became available
// within the scope's acquire timeout
var ErrAcquireTimeout = errors.New("timed out acquiring database connection")

// TxObserver receives one call per resolved transaction
type TxObserver interface {
	ObserveTx(op string, committed bool, elapsed time.Duration)
}

// TxScope runs a function inside a transaction on a dedicated pooled
// connection. The transaction is resolved exactly once, by commit or
// rollback, on every exit path, and the connection goes back to the pool
// when it is resolved.
type TxScope struct {
	pool           Pool
	opts           pgx.TxOptions
	acquireTimeout time.Duration
	observer       TxObserver
}

// TxScopeOption configures a TxScope
type TxScopeOption func(*TxScope)

// WithTxOptions sets the isolation level and access mode of each transaction
func WithTxOptions(opts pgx.TxOptions) TxScopeOption {
	return func(s *TxScope) { s.opts = opts }
}

// WithAcquireTimeout bounds how long Run waits for a free connection. Zero
// waits as long as the caller's context allows.
func WithAcquireTimeout(d time.Duration) TxScopeOption {
	return func(s *TxScope) { s.acquireTimeout = d }
}

// WithObserver reports every commit and rollback to o
func WithObserver(o TxObserver) TxScopeOption {
	return func(s *TxScope) { s.observer = o }
}

func NewTxScope(pool Pool, opts ...TxScopeOption) *TxScope {
	s := &TxScope{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run begins a transaction, calls fn with it, and commits when fn returns nil
// and ctx is still live. Any error from fn, a cancelled ctx, or a panic rolls
// the transaction back before Run returns (or re-panics). fn must not commit
// or roll back the transaction itself.
func (s *TxScope) Run(ctx context.Context, op string, fn func(tx pgx.Tx) error) (err error) {
	started := time.Now()

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	resolved := false
	defer func() {
		if resolved {
			return
		}
		// fn panicked or called runtime.Goexit
		p := recover()
		s.rollback(ctx, op, tx, started)
		if p != nil {
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		resolved = true
		s.rollback(ctx, op, tx, started)
		return err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		resolved = true
		s.rollback(ctx, op, tx, started)
		return fmt.Errorf("%s: %w", op, ctxErr)
	}

	resolved = true
	if err := tx.Commit(ctx); err != nil {
		// a failed commit leaves the transaction aborted; pgx releases the
		// connection either way
		s.observe(op, false, started)
		return fmt.Errorf("commit %s: %w", op, err)
	}
	s.observe(op, true, started)
	return nil
}

func (s *TxScope) begin(ctx context.Context) (pgx.Tx, error) {
	beginCtx := ctx
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		beginCtx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(beginCtx, s.opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrAcquireTimeout
		}
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

func (s *TxScope) rollback(ctx context.Context, op string, tx pgx.Tx, started time.Time) {
	// the caller's context may already be cancelled; rollback must still run
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.WarnContext(ctx, "rollback failed", "op", op, "error", err)
	}
	s.observe(op, false, started)
}

func (s *TxScope) observe(op string, committed bool, started time.Time) {
	if s.observer != nil {
		s.observer.ObserveTx(op, committed, time.Since(started))
	}
}
