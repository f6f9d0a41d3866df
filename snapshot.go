package txprobe

import "fmt"

// ExpectedDepth is the ambient transaction depth of a well-behaved unit: one
// independent scope and nothing else.
const ExpectedDepth = 1

// TxState represents the observed state of the ambient transaction.
type TxState int16

const (
	// StateIndeterminate indicates the state could not be classified.
	StateIndeterminate TxState = 0
	// StateActive indicates a running transaction.
	StateActive TxState = 1
	// StateCommitted indicates the transaction is committing or committed.
	StateCommitted TxState = 2
	// StateAborted indicates the transaction is rolling back or rolled back.
	StateAborted TxState = 3
)

// String returns the lowercase state name.
func (s TxState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "indeterminate"
	}
}

// Snapshot is an immutable diagnostic record of ambient transaction state,
// taken immediately before the risky remote call.
type Snapshot struct {
	// Depth is the number of nested ambient transaction scopes observed.
	Depth int
	// State classifies the ambient transaction at query time.
	State TxState
	// TxID is the store-assigned transaction identifier, empty when no
	// ambient transaction exists.
	TxID string
}

// Consistent reports whether the observed depth guarantees a consistent
// outcome. Anything other than ExpectedDepth means the business write may
// survive a rollback.
func (s Snapshot) Consistent() bool {
	return s.Depth == ExpectedDepth
}

// Details renders the snapshot as stored alongside business rows.
func (s Snapshot) Details() string {
	return fmt.Sprintf("depth=%d state=%s tx=%s", s.Depth, s.State, s.TxID)
}
