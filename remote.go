package txprobe

import (
	"context"
	"fmt"
)

// Remote invokes the remote unit of work. The call enlists the caller's
// ambient transaction in a distributed coordination protocol, promoting the
// local transaction to a multi-resource one.
type Remote interface {
	// Invoke performs the remote operation for the given correlation id.
	Invoke(ctx context.Context, correlationID string) error
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, correlationID string) error

// Invoke implements Remote.
func (fn RemoteFunc) Invoke(ctx context.Context, correlationID string) error {
	return fn(ctx, correlationID)
}

// InducedRemote is the stub remote endpoint: every invocation terminates by
// signaling failure, tagged with ErrInduced so callers can tell the expected
// outcome apart from genuine infrastructure errors.
type InducedRemote struct{}

// Invoke implements Remote. It always fails.
func (InducedRemote) Invoke(ctx context.Context, correlationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: correlation %s", ErrInduced, correlationID)
}
