package txprobe

import "context"

// Fixed business messages. Under correct transaction behavior the first is
// rolled back on every run and the second is written on none.
const (
	// MessageNeverCommitted marks the business row written before the remote
	// call. Its presence after an abandoned scope is the anomaly.
	MessageNeverCommitted = "should never be committed"
	// MessageNeverReached marks the business row written when the remote call
	// unexpectedly succeeds.
	MessageNeverReached = "should never be reached"
)

// Diagnostician observes ambient transaction state without starting, joining
// or altering any transaction.
type Diagnostician interface {
	// Snapshot queries depth, state and id of the transaction bound to scope.
	Snapshot(ctx context.Context, scope Scope) (Snapshot, error)
}

// Sink persists diagnostic and business rows. The scoping asymmetry between
// the two operations is deliberate and is the crux of the reproduction.
type Sink interface {
	// RecordDiagnostic inserts one diagnostic row detached from any scope, so
	// it survives regardless of the unit's outcome.
	RecordDiagnostic(ctx context.Context, snap Snapshot, correlationID string) error
	// RecordBusiness inserts one business row through the given scope. Its
	// durability follows the scope's outcome; this is the write under test.
	RecordBusiness(ctx context.Context, scope Scope, message string, snap Snapshot, correlationID string) error
}

// AnomalyCounter reports business rows that outlived a rollback. Sinks may
// implement it to let the loop sample survivor counts.
type AnomalyCounter interface {
	// AnomalyCount returns the current number of surviving business rows.
	AnomalyCount(ctx context.Context) (int, error)
}
