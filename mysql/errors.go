package mysql

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("txprobe mysql: db is required")
	// ErrTableNameRequired is returned when a table name is empty.
	ErrTableNameRequired = errors.New("txprobe mysql: table name is required")
	// ErrInvalidTableName is returned when a table name has disallowed characters.
	ErrInvalidTableName = errors.New("txprobe mysql: invalid table name")
	// ErrForeignScope is returned when a scope was not created by this package.
	ErrForeignScope = errors.New("txprobe mysql: scope was not created by this package")
	// ErrScopeFinished is returned when a scope is completed or abandoned twice.
	ErrScopeFinished = errors.New("txprobe mysql: scope already finished")
	// ErrMessageRequired is returned when a business message is empty.
	ErrMessageRequired = errors.New("txprobe mysql: business message is required")
	// ErrCleanupBeforeRequired is returned when the cleanup cutoff is missing.
	ErrCleanupBeforeRequired = errors.New("txprobe mysql: cleanup before time is required")
	// ErrCleanupLimitInvalid is returned when the cleanup limit is negative.
	ErrCleanupLimitInvalid = errors.New("txprobe mysql: cleanup limit must be non-negative")
	// ErrCleanupRetentionInvalid is returned when cleanup retention is not positive.
	ErrCleanupRetentionInvalid = errors.New("txprobe mysql: cleanup retention must be positive")
)
