// Package mysql implements the probe's storage-facing components against
// MySQL: independent READ COMMITTED transaction scopes with savepoint
// nesting, the innodb_trx diagnostics collector, and the audit sink whose
// diagnostic writes are detached from any scope while business writes join
// the scope they are handed.
//
// The Scoper's unbound mode intentionally executes scope statements on the
// pool instead of the scope's transaction, reproducing the lost-ambient-
// transaction anomaly the probe exists to observe.
package mysql
