package txprobe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// errStop is returned by workers when the configured run limit is reached.
var errStop = errors.New("txprobe: run limit reached")

// Loop drives the scenario indefinitely: receive an item, process it, and
// unconditionally submit a successor with a fresh correlation id. No error
// from processing one item is ever allowed to stop the loop.
type Loop struct {
	queue  Queue
	source Source
	unit   *Unit
	cfg    Config

	processed atomic.Uint64

	survivorMu sync.Mutex
	survivorAt time.Time
}

// NewLoop constructs a Loop with defaults and optional settings.
func NewLoop(queue Queue, source Source, unit *Unit, opts ...Option) *Loop {
	if queue == nil {
		panic("txprobe: nil Queue")
	}
	if source == nil {
		panic("txprobe: nil Source")
	}
	if unit == nil {
		panic("txprobe: nil Unit")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Loop{
		queue:  queue,
		source: source,
		unit:   unit,
		cfg:    cfg,
	}
}

// Run starts the configured number of workers and blocks until the context is
// canceled, the run limit is reached, or the queue boundary fails.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, l.cfg.Workers)
	var wg sync.WaitGroup

	for i := 0; i < l.cfg.Workers; i++ {
		wg.Add(1)
		workerID := i
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("%w: %v", ErrWorkerPanic, rec)
					l.cfg.Logger.Error("loop worker panic", "worker", workerID, "panic", rec)
					errCh <- err
					cancel()
				}
			}()

			err := l.runWorker(ctx)
			if errors.Is(err, errStop) {
				cancel()

				return
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				l.cfg.Logger.Error("loop worker error", "worker", workerID, "err", err)
				errCh <- err
				cancel()
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// Processed returns the number of items processed so far.
func (l *Loop) Processed() uint64 {
	return l.processed.Load()
}

func (l *Loop) runWorker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item, err := l.source.Receive(ctx)
		if err != nil {
			return err
		}

		if err := l.ProcessOne(ctx, item); err != nil {
			return err
		}

		n := l.processed.Add(1)
		if limit := l.cfg.MaxRuns; limit > 0 && n >= limit {
			return errStop
		}

		l.maybeRecordSurvivors(ctx)
	}
}

// ProcessOne executes the work unit for a single item and submits its
// successor. Only queue-boundary failures are returned; unit outcomes are
// classified, logged and counted here.
func (l *Loop) ProcessOne(ctx context.Context, item WorkItem) error {
	outcome, err := l.unit.Process(ctx, item)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.cfg.Metrics.AddFailed(1)
		l.classifyFailure(item, err)
	case outcome == OutcomeCommitted:
		l.cfg.Metrics.AddCommitted(1)
		l.cfg.Logger.Info("remote unit of work succeeded, scope completed", "correlation_id", item.CorrelationID)
	default:
		l.cfg.Metrics.AddAborted(1)
	}

	successor, err := l.nextItem()
	if err != nil {
		return err
	}
	if err := l.queue.Submit(ctx, successor); err != nil {
		return fmt.Errorf("txprobe: submit successor: %w", err)
	}
	l.cfg.Metrics.AddSubmitted(1)

	return nil
}

func (l *Loop) classifyFailure(item WorkItem, err error) {
	switch {
	case errors.Is(err, ErrDiagnosticsUnavailable):
		l.cfg.Logger.Error("transaction diagnostics unavailable", "correlation_id", item.CorrelationID, "err", err)
	case errors.Is(err, ErrPersistence):
		l.cfg.Logger.Error("persistence failure", "correlation_id", item.CorrelationID, "err", err)
	default:
		l.cfg.Logger.Error("unexpected work unit failure", "correlation_id", item.CorrelationID, "err", err)
	}
}

func (l *Loop) nextItem() (WorkItem, error) {
	id, err := l.cfg.Generator.New()
	if err != nil {
		return WorkItem{}, fmt.Errorf("txprobe: successor id: %w", err)
	}

	return WorkItem{CorrelationID: id}, nil
}

func (l *Loop) maybeRecordSurvivors(ctx context.Context) {
	counter := l.cfg.AnomalyCounter
	if counter == nil {
		return
	}
	if l.cfg.AnomalyInterval <= 0 {
		return
	}
	if ctx.Err() != nil {
		return
	}

	now := l.cfg.Clock.Now()
	l.survivorMu.Lock()
	nextAllowed := l.survivorAt.Add(l.cfg.AnomalyInterval)
	if !l.survivorAt.IsZero() && now.Before(nextAllowed) {
		l.survivorMu.Unlock()

		return
	}
	l.survivorAt = now
	l.survivorMu.Unlock()

	count, err := counter.AnomalyCount(ctx)
	if err != nil {
		l.cfg.Logger.Warn("survivor count failed", "err", err)

		return
	}

	l.cfg.Metrics.SetSurvivors(count)
	if count > 0 {
		l.cfg.Logger.Warn("business rows survived rollback", "count", count)
	}
}
