package txprobe

import "time"

const (
	defaultWorkers       = 1
	defaultQueueCapacity = 1024
)

// Config defines how the Unit and the Loop behave. Both are built from the
// same option set; loop-only fields are ignored by the Unit.
type Config struct {
	Workers         int
	MaxRuns         uint64
	Clock           Clock
	Logger          Logger
	Metrics         Metrics
	Generator       IDGenerator
	AnomalyCounter  AnomalyCounter
	AnomalyInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Generator == nil {
		c.Generator = UUIDv7Generator{}
	}

	return c
}

// Option configures a Unit or a Loop.
type Option func(*Config)

// WithWorkers sets the number of concurrent loop workers.
func WithWorkers(count int) Option {
	return func(c *Config) {
		c.Workers = count
	}
}

// WithMaxRuns stops the loop after processing the given number of items.
// Zero keeps the loop running until the context is canceled.
func WithMaxRuns(count uint64) Option {
	return func(c *Config) {
		c.MaxRuns = count
	}
}

// WithClock sets the time source.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithGenerator sets the correlation id generator used for successor items.
func WithGenerator(gen IDGenerator) Option {
	return func(c *Config) {
		c.Generator = gen
	}
}

// WithAnomalyCounter lets the loop sample how many business rows have
// survived a rollback.
func WithAnomalyCounter(counter AnomalyCounter) Option {
	return func(c *Config) {
		c.AnomalyCounter = counter
	}
}

// WithAnomalyInterval sets the minimum interval between survivor samples.
// Use a positive value to enable sampling. The default is disabled.
func WithAnomalyInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.AnomalyInterval = interval
	}
}
