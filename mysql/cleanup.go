package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/probelab/txprobe"
)

const (
	defaultCleanupLimit      = 10000
	defaultCleanupEvery      = time.Hour
	defaultCleanupLockPrefix = "txprobe:cleanup:"
)

// CleanupOptions defines how to delete old probe rows. The harness runs
// forever and both tables are append-only, so growth is unbounded without it.
type CleanupOptions struct {
	// Before removes rows created before this timestamp (required).
	Before time.Time
	// Limit caps the number of rows deleted per table per call (0 uses the default).
	Limit int
}

// CleanupResult reports how many rows were removed.
type CleanupResult struct {
	Audit    int64
	Business int64
}

// CleanupMaintainerConfig controls periodic pruning of the probe tables.
type CleanupMaintainerConfig struct {
	// AuditTable is the diagnostics table name.
	AuditTable string
	// BusinessTable is the business table name.
	BusinessTable string
	// Retention removes rows older than now-retention (required).
	Retention time.Duration
	// CheckEvery is the interval between cleanup runs.
	CheckEvery time.Duration
	// Limit caps the number of rows deleted per table per run (0 uses the default).
	Limit int
	// KeepSurvivors leaves anomalous business rows in place so the
	// inconsistency stays observable after the fact.
	KeepSurvivors bool
	// LockName is the advisory lock name. Defaults to txprobe:cleanup:<table>.
	LockName string
	// Clock overrides the time source (useful for tests).
	Clock txprobe.Clock
	// Logger receives warnings about cleanup failures.
	Logger txprobe.Logger
}

// CleanupMaintainer runs periodic cleanup of the probe tables.
type CleanupMaintainer struct {
	db            *sql.DB
	auditTable    string
	businessTable string
	cfg           CleanupMaintainerConfig
}

// NewCleanupMaintainer creates a cleanup maintainer with defaults applied.
func NewCleanupMaintainer(db *sql.DB, cfg CleanupMaintainerConfig) (*CleanupMaintainer, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	if cfg.Retention <= 0 {
		return nil, ErrCleanupRetentionInvalid
	}
	if cfg.Clock == nil {
		cfg.Clock = txprobe.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = txprobe.NopLogger{}
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = defaultCleanupEvery
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaultCleanupLimit
	}
	if cfg.Limit < 0 {
		return nil, ErrCleanupLimitInvalid
	}
	if cfg.AuditTable == "" {
		cfg.AuditTable = defaultAuditTable
	}
	if cfg.BusinessTable == "" {
		cfg.BusinessTable = defaultBusinessTable
	}

	auditTable, err := sanitizeTableName(cfg.AuditTable)
	if err != nil {
		return nil, err
	}
	businessTable, err := sanitizeTableName(cfg.BusinessTable)
	if err != nil {
		return nil, err
	}
	if cfg.LockName == "" {
		cfg.LockName = defaultCleanupLockPrefix + auditTable
	}

	return &CleanupMaintainer{
		db:            db,
		auditTable:    auditTable,
		businessTable: businessTable,
		cfg:           cfg,
	}, nil
}

// Run periodically deletes old rows until the context is canceled.
func (m *CleanupMaintainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckEvery)
	defer ticker.Stop()

	if _, err := m.Ensure(ctx); err != nil {
		m.cfg.Logger.Warn("probe cleanup failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.Ensure(ctx); err != nil {
				m.cfg.Logger.Warn("probe cleanup failed", "err", err)
			}
		}
	}
}

// Ensure executes a single cleanup pass guarded by an advisory lock so only
// one session prunes at a time.
func (m *CleanupMaintainer) Ensure(ctx context.Context) (CleanupResult, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("txprobe mysql: cleanup conn failed: %w", err)
	}
	defer conn.Close()

	locked, err := m.tryLock(ctx, conn)
	if err != nil {
		return CleanupResult{}, err
	}
	if !locked {
		m.cfg.Logger.Debug("probe cleanup lock held by another session")

		return CleanupResult{}, nil
	}
	defer m.releaseLock(ctx, conn)

	before := m.cfg.Clock.Now().Add(-m.cfg.Retention)

	return m.Cleanup(ctx, CleanupOptions{Before: before, Limit: m.cfg.Limit})
}

// Cleanup removes rows created before opts.Before from both tables.
func (m *CleanupMaintainer) Cleanup(ctx context.Context, opts CleanupOptions) (CleanupResult, error) {
	if opts.Before.IsZero() {
		return CleanupResult{}, ErrCleanupBeforeRequired
	}
	limit := opts.Limit
	if limit == 0 {
		limit = defaultCleanupLimit
	}
	if limit < 0 {
		return CleanupResult{}, ErrCleanupLimitInvalid
	}

	audit, err := m.deleteBefore(ctx, m.auditTable, "", opts.Before, limit)
	if err != nil {
		return CleanupResult{}, err
	}

	keep := ""
	if m.cfg.KeepSurvivors {
		keep = txprobe.MessageNeverCommitted
	}
	business, err := m.deleteBefore(ctx, m.businessTable, keep, opts.Before, limit)
	if err != nil {
		return CleanupResult{}, err
	}

	return CleanupResult{Audit: audit, Business: business}, nil
}

func (m *CleanupMaintainer) deleteBefore(ctx context.Context, table, keepMessage string, before time.Time, limit int) (int64, error) {
	// #nosec G201 -- table names are internal and sanitized.
	query := fmt.Sprintf("DELETE FROM %s WHERE created_at <= ? ORDER BY id LIMIT ?", table)
	args := []any{before, limit}
	if keepMessage != "" {
		query = fmt.Sprintf("DELETE FROM %s WHERE created_at <= ? AND message <> ? ORDER BY id LIMIT ?", table)
		args = []any{before, keepMessage, limit}
	}

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("txprobe mysql: cleanup delete failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("txprobe mysql: cleanup rows failed: %w", err)
	}

	return affected, nil
}

func (m *CleanupMaintainer) tryLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", m.cfg.LockName).Scan(&got); err != nil {
		return false, fmt.Errorf("txprobe mysql: acquire cleanup lock failed: %w", err)
	}
	if !got.Valid || got.Int64 == 0 {
		return false, nil
	}

	return true, nil
}

func (m *CleanupMaintainer) releaseLock(ctx context.Context, conn *sql.Conn) {
	var released sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", m.cfg.LockName).Scan(&released); err != nil {
		m.cfg.Logger.Warn("probe cleanup release lock failed", "err", err)
	}
}
