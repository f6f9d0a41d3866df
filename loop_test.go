package txprobe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceClock struct {
	times []time.Time
	idx   int
}

func (c *sequenceClock) Now() time.Time {
	if c.idx >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	t := c.times[c.idx]
	c.idx++
	return t
}

// countingQueue wraps a MemQueue and records every submitted item.
type countingQueue struct {
	inner *MemQueue

	mu        sync.Mutex
	submitted []WorkItem
}

func (q *countingQueue) Submit(ctx context.Context, item WorkItem) error {
	if err := q.inner.Submit(ctx, item); err != nil {
		return err
	}
	q.mu.Lock()
	q.submitted = append(q.submitted, item)
	q.mu.Unlock()
	return nil
}

func (q *countingQueue) items() []WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]WorkItem, len(q.submitted))
	copy(out, q.submitted)
	return out
}

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (c *fakeCounter) AnomalyCount(context.Context) (int, error) {
	c.calls++
	return c.count, c.err
}

func newTestUnit(sink *fakeSink, remote *fakeRemote) *Unit {
	return NewUnit(
		&fakeScoper{scope: &fakeScope{depth: 1}},
		&fakeDiag{snap: Snapshot{Depth: 1, State: StateActive}},
		sink,
		remote,
	)
}

func seedQueue(t *testing.T, queue *MemQueue, id string) {
	t.Helper()
	if err := queue.Submit(context.Background(), WorkItem{CorrelationID: id}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestLoopResubmitsAfterUnexpectedFailure(t *testing.T) {
	mem := NewMemQueue(16)
	queue := &countingQueue{inner: mem}
	sink := &fakeSink{diagErr: errors.Join(ErrPersistence, errors.New("insert failed"))}
	metrics := &captureMetrics{}
	loop := NewLoop(queue, mem, newTestUnit(sink, &fakeRemote{err: inducedErr()}), WithMaxRuns(5), WithMetrics(metrics))

	seedQueue(t, mem, "seed")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := len(queue.items()); got != 5 {
		t.Fatalf("expected 5 successor submissions after 5 failures, got %d", got)
	}
	if metrics.failed != 5 {
		t.Fatalf("expected 5 failed units, got %d", metrics.failed)
	}
	if metrics.submitted != 5 {
		t.Fatalf("expected 5 submissions counted, got %d", metrics.submitted)
	}
}

func TestLoopSuccessorHasFreshCorrelation(t *testing.T) {
	mem := NewMemQueue(16)
	queue := &countingQueue{inner: mem}
	sink := &fakeSink{}
	remote := &fakeRemote{err: inducedErr()}
	loop := NewLoop(queue, mem, newTestUnit(sink, remote), WithMaxRuns(1))

	seedQueue(t, mem, "seed")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.diags) != 1 || sink.diags[0] != "seed" {
		t.Fatalf("expected one diagnostic row for seed, got %v", sink.diags)
	}
	if remote.calls != 1 {
		t.Fatalf("expected one remote invocation, got %d", remote.calls)
	}
	successors := queue.items()
	if len(successors) != 1 {
		t.Fatalf("expected exactly one successor, got %d", len(successors))
	}
	if successors[0].CorrelationID == "seed" {
		t.Fatalf("expected a fresh correlation id")
	}
	if err := successors[0].Validate(); err != nil {
		t.Fatalf("successor invalid: %v", err)
	}
}

func TestLoopCorrelationIDsDistinct(t *testing.T) {
	mem := NewMemQueue(64)
	queue := &countingQueue{inner: mem}
	loop := NewLoop(queue, mem, newTestUnit(&fakeSink{}, &fakeRemote{err: inducedErr()}), WithMaxRuns(50))

	seedQueue(t, mem, "seed")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	seen := map[string]struct{}{"seed": {}}
	for _, item := range queue.items() {
		if _, dup := seen[item.CorrelationID]; dup {
			t.Fatalf("duplicate correlation id %s", item.CorrelationID)
		}
		seen[item.CorrelationID] = struct{}{}
	}
	if len(seen) != 51 {
		t.Fatalf("expected 51 distinct ids, got %d", len(seen))
	}
}

func TestLoopCommittedOutcomeCounted(t *testing.T) {
	mem := NewMemQueue(16)
	metrics := &captureMetrics{}
	loop := NewLoop(mem, mem, newTestUnit(&fakeSink{}, &fakeRemote{}), WithMaxRuns(1), WithMetrics(metrics))

	seedQueue(t, mem, "seed")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if metrics.committed != 1 {
		t.Fatalf("expected one committed unit, got %d", metrics.committed)
	}
}

func TestLoopRunContextCancel(t *testing.T) {
	mem := NewMemQueue(16)
	loop := NewLoop(mem, mem, newTestUnit(&fakeSink{}, &fakeRemote{err: inducedErr()}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestLoopProcessedCount(t *testing.T) {
	mem := NewMemQueue(16)
	loop := NewLoop(mem, mem, newTestUnit(&fakeSink{}, &fakeRemote{err: inducedErr()}), WithMaxRuns(3))

	seedQueue(t, mem, "seed")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := loop.Processed(); got != 3 {
		t.Fatalf("expected 3 processed items, got %d", got)
	}
}

func TestLoopSurvivorSamplingDisabledByDefault(t *testing.T) {
	mem := NewMemQueue(16)
	counter := &fakeCounter{count: 10}
	metrics := &captureMetrics{}
	loop := NewLoop(mem, mem, newTestUnit(&fakeSink{}, &fakeRemote{err: inducedErr()}),
		WithAnomalyCounter(counter), WithMetrics(metrics))

	loop.maybeRecordSurvivors(context.Background())

	if counter.calls != 0 {
		t.Fatalf("expected no survivor samples, got %d", counter.calls)
	}
	if metrics.survivorCalls != 0 {
		t.Fatalf("expected no survivor metric updates, got %d", metrics.survivorCalls)
	}
}

func TestLoopSurvivorSamplingEnabled(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &sequenceClock{times: []time.Time{now, now, now.Add(time.Second)}}
	mem := NewMemQueue(16)
	counter := &fakeCounter{count: 42}
	metrics := &captureMetrics{}
	loop := NewLoop(mem, mem, newTestUnit(&fakeSink{}, &fakeRemote{err: inducedErr()}),
		WithAnomalyCounter(counter),
		WithAnomalyInterval(time.Second),
		WithClock(clock),
		WithMetrics(metrics),
	)

	loop.maybeRecordSurvivors(context.Background())
	loop.maybeRecordSurvivors(context.Background())
	loop.maybeRecordSurvivors(context.Background())

	if counter.calls != 2 {
		t.Fatalf("expected 2 survivor samples, got %d", counter.calls)
	}
	if metrics.survivors != 42 {
		t.Fatalf("expected survivor count 42, got %d", metrics.survivors)
	}
}
