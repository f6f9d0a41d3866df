package txprobe

import "context"

// Scope is one explicit transaction handle. It replaces the source system's
// implicit ambient transaction: every collaborator that needs to observe or
// join the transaction receives the scope as an argument.
type Scope interface {
	// Depth returns the nesting depth of this scope, 1 for a top-level scope.
	Depth() int
	// Complete marks the scope for commit and finalizes it.
	Complete() error
	// Abandon releases the scope without completing it, rolling back its work.
	Abandon() error
}

// Scoper opens independent transaction scopes. Begin always starts a fresh
// top-level scope at READ COMMITTED, never joining a caller-level one.
type Scoper interface {
	// Begin opens a new independent scope.
	Begin(ctx context.Context) (Scope, error)
}
