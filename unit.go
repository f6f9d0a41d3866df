package txprobe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Outcome is the terminal state of one processed work item.
type Outcome int

const (
	// OutcomeAborted means the remote call failed as induced and the scope was
	// abandoned. This is the expected outcome of every run.
	OutcomeAborted Outcome = iota
	// OutcomeCommitted means the remote call succeeded and the scope was
	// completed, a near-zero-probability branch that must still be handled.
	OutcomeCommitted
	// OutcomeFailed means diagnostics, persistence or the remote transport
	// failed in a way the scenario did not induce.
	OutcomeFailed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeAborted:
		return "aborted"
	case OutcomeCommitted:
		return "committed"
	default:
		return "failed"
	}
}

// Unit orchestrates one transactional work item: scope, diagnose, audit,
// business write, remote call, then commit or propagate the failure.
type Unit struct {
	scoper Scoper
	diag   Diagnostician
	sink   Sink
	remote Remote
	cfg    Config
}

// NewUnit constructs a Unit with defaults and optional settings.
func NewUnit(scoper Scoper, diag Diagnostician, sink Sink, remote Remote, opts ...Option) *Unit {
	if scoper == nil {
		panic("txprobe: nil Scoper")
	}
	if diag == nil {
		panic("txprobe: nil Diagnostician")
	}
	if sink == nil {
		panic("txprobe: nil Sink")
	}
	if remote == nil {
		panic("txprobe: nil Remote")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Unit{
		scoper: scoper,
		diag:   diag,
		sink:   sink,
		remote: remote,
		cfg:    cfg,
	}
}

// Process runs the full state machine for one item. Errors are classified,
// never retried; the unit always returns control to the caller. The returned
// error is nil for both expected terminal states.
func (u *Unit) Process(ctx context.Context, item WorkItem) (Outcome, error) {
	start := time.Now()
	defer func() {
		u.cfg.Metrics.ObserveUnitDuration(time.Since(start))
	}()

	if err := item.Validate(); err != nil {
		return OutcomeFailed, err
	}

	scope, err := u.scoper.Begin(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: begin scope: %w", err)
	}

	completed := false
	defer func() {
		if !completed {
			if abandonErr := scope.Abandon(); abandonErr != nil {
				u.cfg.Logger.Error("scope abandon failed", "correlation_id", item.CorrelationID, "err", abandonErr)
			}
		}
	}()

	snap, err := u.diag.Snapshot(ctx, scope)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: snapshot: %w", err)
	}

	if !snap.Consistent() {
		// The load-bearing signal: everything written inside this scope from
		// here on may survive the rollback. The run proceeds on purpose so the
		// anomaly can be observed.
		u.cfg.Logger.Warn("about to create inconsistent data",
			"correlation_id", item.CorrelationID,
			"depth", snap.Depth,
			"state", snap.State.String(),
			"tx_id", snap.TxID,
		)
		u.cfg.Metrics.AddDepthWarnings(1)
	}

	if err := u.sink.RecordDiagnostic(ctx, snap, item.CorrelationID); err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: record diagnostic: %w", err)
	}

	if err := u.sink.RecordBusiness(ctx, scope, MessageNeverCommitted, snap, item.CorrelationID); err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: record business: %w", err)
	}

	if err := u.remote.Invoke(ctx, item.CorrelationID); err != nil {
		if errors.Is(err, ErrInduced) {
			u.cfg.Logger.Debug("remote unit of work failed as induced, abandoning scope",
				"correlation_id", item.CorrelationID, "depth", snap.Depth)

			return OutcomeAborted, nil
		}

		return OutcomeFailed, fmt.Errorf("txprobe: invoke remote: %w", err)
	}

	if err := u.sink.RecordBusiness(ctx, scope, MessageNeverReached, snap, item.CorrelationID); err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: record business: %w", err)
	}

	if err := scope.Complete(); err != nil {
		return OutcomeFailed, fmt.Errorf("txprobe: complete scope: %w", err)
	}
	completed = true

	return OutcomeCommitted, nil
}
