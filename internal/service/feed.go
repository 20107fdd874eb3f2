package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"feewatch/internal/model"
	"feewatch/internal/service/sink"
	"feewatch/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FetchFunc[R any] func(ctx context.Context) ([]R, error)

// Feed periodically fetches a batch and merges it into its series. A tick
// that arrives while the previous cycle is still running is skipped. Once
// Serve returns, no in-flight cycle can touch the series.
type Feed[R store.Record[R]] struct {
	name     model.Feed
	interval time.Duration
	fetch    FetchFunc[R]
	series   *store.Series[R]
	producer sink.Producer
	log      *zap.Logger

	inFlight atomic.Bool
	wg       sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewFeed[R store.Record[R]](interval time.Duration, fetch FetchFunc[R], series *store.Series[R], producer sink.Producer, log *zap.Logger) *Feed[R] {
	return &Feed[R]{
		name:     series.Feed(),
		interval: interval,
		fetch:    fetch,
		series:   series,
		producer: producer,
		log:      log.With(zap.String("feed", series.Feed().String())),
	}
}

func (f *Feed[R]) String() string {
	return "feed-" + f.name.String()
}

// Serve runs one cycle immediately and then one per interval until ctx is done.
func (f *Feed[R]) Serve(ctx context.Context) error {
	f.mu.Lock()
	f.stopped = false
	f.mu.Unlock()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	defer f.teardown()

	f.log.Info("feed started", zap.Duration("interval", f.interval))
	f.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			f.log.Info("closing feed")
			return nil
		case <-ticker.C:
			f.tick(ctx)
		}
	}
}

func (f *Feed[R]) teardown() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.wg.Wait()
}

// tick starts a cycle in the background unless one is already running.
func (f *Feed[R]) tick(ctx context.Context) bool {
	if !f.inFlight.CompareAndSwap(false, true) {
		f.publish(ctx, &model.CycleEvent{
			Feed:    f.name,
			CycleID: uuid.NewString(),
			Status:  model.CycleSkipped,
			Started: time.Now(),
		})
		return false
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.inFlight.Store(false)
		f.runCycle(ctx)
	}()
	return true
}

func (f *Feed[R]) runCycle(ctx context.Context) *model.CycleEvent {
	ev := &model.CycleEvent{
		Feed:    f.name,
		CycleID: uuid.NewString(),
		Started: time.Now(),
	}
	defer func() {
		ev.Duration = time.Since(ev.Started)
		f.publish(ctx, ev)
	}()

	recs, err := f.safeFetch(ctx)

	var partial *model.PartialBatchError
	switch {
	case ctx.Err() != nil:
		ev.Status = model.CycleDiscarded
		return ev
	case err == nil:
		ev.Status = model.CycleOK
	case errors.As(err, &partial):
		ev.Status = model.CyclePartial
		ev.Err = err
	default:
		ev.Status = model.CycleFailed
		ev.Err = err
		return ev
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		ev.Status = model.CycleDiscarded
		return ev
	}

	res := f.series.Merge(recs)
	ev.Records = len(recs)
	ev.Added = res.Added
	ev.Replaced = res.Replaced
	ev.Conflicts = res.Conflicts
	ev.SeriesLength = f.series.Len()
	return ev
}

// safeFetch turns a panicking fetch into a failed cycle. Suture only recovers
// panics raised on the Serve goroutine, and cycles run on their own.
func (f *Feed[R]) safeFetch(ctx context.Context) (recs []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("fetch panicked", zap.Any("panic", r), zap.Stack("stack"))
			recs, err = nil, fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return f.fetch(ctx)
}

func (f *Feed[R]) publish(ctx context.Context, ev *model.CycleEvent) {
	if f.producer == nil {
		return
	}
	if err := f.producer.Publish(context.WithoutCancel(ctx), ev); err != nil {
		f.log.Warn("failed to publish cycle event", zap.String("cycle_id", ev.CycleID), zap.Error(err))
	}
}
