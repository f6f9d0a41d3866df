// Package txprobe reproduces, under continuous load, a distributed-transaction
// inconsistency: a local transaction is promoted to a distributed one by a
// remote transactional call, the call fails, and writes made earlier inside
// the local transaction are not always rolled back.
//
// Typical flow:
//  1. A Loop receives a WorkItem from the queue boundary and hands it to the Unit.
//  2. The Unit opens an independent transaction scope, snapshots ambient
//     transaction state, records a diagnostic row outside the scope, records a
//     business row inside it, then invokes the remote unit of work, which fails
//     by design.
//  3. The scope is abandoned, the outcome is logged, and the Loop submits a
//     successor item with a fresh correlation id, forever.
//
// Whether the business row survives the abandoned scope is the anomaly under
// study. For the MySQL scopes, diagnostics collector and audit sink, see the
// mysql package.
package txprobe
