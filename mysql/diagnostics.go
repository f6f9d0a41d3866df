package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/probelab/txprobe"
)

// Collector queries ambient transaction depth, state and identifier through
// a scope's executor. It is a passive observer: the diagnostic query neither
// starts nor joins a transaction beyond the one already bound to the
// connection it runs on.
type Collector struct{}

var _ txprobe.Diagnostician = (*Collector)(nil)

// NewCollector constructs a Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Snapshot implements txprobe.Diagnostician. Failures wrap
// txprobe.ErrDiagnosticsUnavailable and are fatal for the current item.
func (c *Collector) Snapshot(ctx context.Context, scope txprobe.Scope) (txprobe.Snapshot, error) {
	sc, ok := scope.(*Scope)
	if !ok {
		return txprobe.Snapshot{}, errors.Join(txprobe.ErrDiagnosticsUnavailable, ErrForeignScope)
	}

	var (
		count int
		state sql.NullString
		txID  sql.NullString
	)
	row := sc.Executor().QueryRowContext(ctx, diagnosticsQuery)
	if err := row.Scan(&count, &state, &txID); err != nil {
		return txprobe.Snapshot{}, errors.Join(
			txprobe.ErrDiagnosticsUnavailable,
			fmt.Errorf("txprobe mysql: diagnostics query failed: %w", err),
		)
	}

	return txprobe.Snapshot{
		Depth: observedDepth(count, sc.Depth()),
		State: mapState(count, state.String),
		TxID:  txID.String,
	}, nil
}

// observedDepth combines the server-side transaction count with the scope's
// savepoint nesting. A pool connection with no open transaction reports 0; a
// bound top-level scope 1; each savepoint level adds one.
func observedDepth(serverCount, scopeDepth int) int {
	if serverCount == 0 {
		return 0
	}

	return serverCount + scopeDepth - 1
}

func mapState(serverCount int, trxState string) txprobe.TxState {
	if serverCount == 0 {
		return txprobe.StateIndeterminate
	}

	switch strings.ToUpper(trxState) {
	case "RUNNING", "LOCK WAIT":
		return txprobe.StateActive
	case "COMMITTING":
		return txprobe.StateCommitted
	case "ROLLING BACK":
		return txprobe.StateAborted
	default:
		return txprobe.StateIndeterminate
	}
}
