package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/probelab/txprobe"
)

// Sink persists diagnostic and business rows. Diagnostic rows always execute
// on the pool, autocommitted and detached from any scope; business rows
// execute through the scope they are handed. Do not give both writes the
// same scoping: the asymmetry is what makes the anomaly observable.
type Sink struct {
	db      Executor
	cfg     Config
	queries queries
}

var _ txprobe.Sink = (*Sink)(nil)
var _ txprobe.AnomalyCounter = (*Sink)(nil)

// NewSink constructs a Sink with validated configuration.
func NewSink(db *sql.DB, opts ...Option) (*Sink, error) {
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
	businessTable, err := sanitizeTableName(cfg.BusinessTable)
	if err != nil {
		return nil, err
	}

	return &Sink{
		db:      db,
		cfg:     cfg,
		queries: newQueries(auditTable, businessTable),
	}, nil
}

// RecordDiagnostic inserts exactly one diagnostic row, detached from any
// ambient scope so it survives whatever happens to the unit.
func (s *Sink) RecordDiagnostic(ctx context.Context, snap txprobe.Snapshot, correlationID string) error {
	_, err := s.db.ExecContext(
		ctx,
		s.queries.insertAudit,
		correlationID,
		snap.Depth,
		snap.State.String(),
		snap.TxID,
	)
	if err != nil {
		return errors.Join(
			txprobe.ErrPersistence,
			fmt.Errorf("txprobe mysql: audit insert failed: %w", err),
		)
	}

	return nil
}

// RecordBusiness inserts exactly one business row through the given scope.
// Whether the row outlives an abandoned scope is the write under test.
func (s *Sink) RecordBusiness(ctx context.Context, scope txprobe.Scope, message string, snap txprobe.Snapshot, correlationID string) error {
	if message == "" {
		return ErrMessageRequired
	}
	sc, ok := scope.(*Scope)
	if !ok {
		return errors.Join(txprobe.ErrPersistence, ErrForeignScope)
	}

	_, err := sc.Executor().ExecContext(
		ctx,
		s.queries.insertBusiness,
		message,
		correlationID,
		snap.Details(),
	)
	if err != nil {
		return errors.Join(
			txprobe.ErrPersistence,
			fmt.Errorf("txprobe mysql: business insert failed: %w", err),
		)
	}

	return nil
}

// AnomalyCount returns the number of business rows that should have been
// rolled back but are durable anyway.
func (s *Sink) AnomalyCount(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, s.queries.countSurvivors, txprobe.MessageNeverCommitted)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("txprobe mysql: survivor count failed: %w", err)
	}

	return count, nil
}
