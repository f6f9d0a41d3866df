package txprobe

import "errors"

var (
	// ErrInduced marks the deliberate, always-occurring failure of the remote
	// unit of work. Callers match it with errors.Is to separate the expected
	// outcome from genuine infrastructure failures.
	ErrInduced = errors.New("txprobe: induced remote failure")
	// ErrDiagnosticsUnavailable indicates the transaction diagnostics query
	// could not be executed or returned no result.
	ErrDiagnosticsUnavailable = errors.New("txprobe: transaction diagnostics unavailable")
	// ErrPersistence indicates an audit or business write failed.
	ErrPersistence = errors.New("txprobe: persistence failure")
	// ErrCorrelationRequired is returned when WorkItem.CorrelationID is empty.
	ErrCorrelationRequired = errors.New("txprobe: correlation id is required")
	// ErrQueueClosed signals that the in-memory queue no longer accepts items.
	ErrQueueClosed = errors.New("txprobe: queue is closed")
	// ErrWorkerPanic indicates a loop worker panic.
	ErrWorkerPanic = errors.New("txprobe: worker panic")
)
