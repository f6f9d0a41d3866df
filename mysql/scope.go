package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/probelab/txprobe"
)

// Executor runs statements either on a transaction or on the pool.
type Executor interface {
	// ExecContext executes a statement with the provided context.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	// QueryRowContext executes a single-row query with the provided context.
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scoper opens independent transaction scopes on a MySQL pool.
type Scoper struct {
	db     *sql.DB
	cfg    Config
	anchor string
}

var _ txprobe.Scoper = (*Scoper)(nil)

// NewScoper constructs a Scoper with validated configuration.
func NewScoper(db *sql.DB, opts ...Option) (*Scoper, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	auditTable, err := sanitizeTableName(cfg.AuditTable)
	if err != nil {
		return nil, err
	}

	return &Scoper{
		db:     db,
		cfg:    cfg,
		anchor: fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", auditTable),
	}, nil
}

// Begin opens a fresh top-level READ COMMITTED transaction, never joining any
// caller-level scope. In unbound mode the returned scope still owns its
// transaction, but statements routed through it run on the pool instead.
func (s *Scoper) Begin(ctx context.Context) (txprobe.Scope, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("txprobe mysql: begin tx failed: %w", err)
	}

	// InnoDB registers a transaction on its first storage access, not on
	// START TRANSACTION; anchor with a cheap read so diagnostics observe the
	// scope before any probe write happens.
	var one int
	if err := tx.QueryRowContext(ctx, s.anchor).Scan(&one); err != nil && !errors.Is(err, sql.ErrNoRows) {
		rollbackErr := tx.Rollback()

		return nil, errors.Join(fmt.Errorf("txprobe mysql: anchor scope failed: %w", err), rollbackErr)
	}

	scope := &Scope{tx: tx, exec: tx, depth: 1}
	if s.cfg.UnboundWrites {
		scope.exec = s.db
	}

	return scope, nil
}

// Scope is one explicit transaction handle. A top-level scope wraps a
// *sql.Tx; nested scopes share the transaction behind a savepoint.
type Scope struct {
	tx        *sql.Tx
	exec      Executor
	depth     int
	savepoint string
	done      bool
}

var _ txprobe.Scope = (*Scope)(nil)

// Depth returns the nesting depth of this scope, 1 for a top-level scope.
func (s *Scope) Depth() int {
	return s.depth
}

// Executor returns where statements joining this scope execute. For a bound
// scope that is the scope's transaction; for an unbound one it is the pool,
// which is exactly the misbinding under study.
func (s *Scope) Executor() Executor {
	return s.exec
}

// Nest opens a nested scope backed by a savepoint on the same transaction.
// Diagnostics through the nested scope observe depth parent+1.
func (s *Scope) Nest(ctx context.Context) (*Scope, error) {
	if s.done {
		return nil, ErrScopeFinished
	}

	name := fmt.Sprintf("txprobe_sp_%d", s.depth)
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("txprobe mysql: savepoint failed: %w", err)
	}

	return &Scope{tx: s.tx, exec: s.exec, depth: s.depth + 1, savepoint: name}, nil
}

// Complete marks the scope for commit and finalizes it. A nested scope
// releases its savepoint; a top-level scope commits the transaction.
func (s *Scope) Complete() error {
	if s.done {
		return ErrScopeFinished
	}
	s.done = true

	if s.savepoint != "" {
		if _, err := s.tx.Exec("RELEASE SAVEPOINT " + s.savepoint); err != nil {
			return fmt.Errorf("txprobe mysql: release savepoint failed: %w", err)
		}

		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("txprobe mysql: commit failed: %w", err)
	}

	return nil
}

// Abandon releases the scope without completing it. A nested scope rolls back
// to its savepoint; a top-level scope rolls back the transaction. Writes that
// did not run on the scope's transaction are not undone.
func (s *Scope) Abandon() error {
	if s.done {
		return ErrScopeFinished
	}
	s.done = true

	if s.savepoint != "" {
		if _, err := s.tx.Exec("ROLLBACK TO SAVEPOINT " + s.savepoint); err != nil {
			return fmt.Errorf("txprobe mysql: rollback to savepoint failed: %w", err)
		}

		return nil
	}
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("txprobe mysql: rollback failed: %w", err)
	}

	return nil
}
