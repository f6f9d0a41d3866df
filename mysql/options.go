package mysql

const (
	defaultAuditTable    = "probe_audit"
	defaultBusinessTable = "probe_business"
)

// Config defines MySQL scope and sink behavior.
type Config struct {
	AuditTable    string
	BusinessTable string
	// UnboundWrites makes scopes hand out the pool instead of their
	// transaction as the statement executor. Writes then autocommit and
	// survive Abandon: the anomaly the probe reproduces.
	UnboundWrites bool
}

func (c Config) withDefaults() Config {
	if c.AuditTable == "" {
		c.AuditTable = defaultAuditTable
	}
	if c.BusinessTable == "" {
		c.BusinessTable = defaultBusinessTable
	}

	return c
}

// Option configures the MySQL components.
type Option func(*Config)

// WithAuditTable sets the diagnostics table name.
func WithAuditTable(name string) Option {
	return func(c *Config) {
		c.AuditTable = name
	}
}

// WithBusinessTable sets the business table name.
func WithBusinessTable(name string) Option {
	return func(c *Config) {
		c.BusinessTable = name
	}
}

// WithUnboundWrites detaches scope statement execution from the scope's
// transaction to drive the inconsistency on purpose.
func WithUnboundWrites(enabled bool) Option {
	return func(c *Config) {
		c.UnboundWrites = enabled
	}
}
