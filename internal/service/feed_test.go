package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"feewatch/internal/model"
	"feewatch/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventLog struct {
	mu     sync.Mutex
	events []*model.CycleEvent
}

func (l *eventLog) Publish(ctx context.Context, ev *model.CycleEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) statuses() []model.CycleStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.CycleStatus, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Status)
	}
	return out
}

func baseFees(blocks ...uint64) []model.BlockFeeRecord {
	out := make([]model.BlockFeeRecord, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, model.BlockFeeRecord{BlockNumber: b, BaseFeeGwei: decimal.NewFromInt(int64(b))})
	}
	return out
}

func TestFeedTransportErrorLeavesStoreUnchanged(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)
	series.Merge(baseFees(10, 11))

	calls := 0
	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		calls++
		if calls == 1 {
			return nil, &model.TransportError{Method: "eth_feeHistory", Err: errors.New("timeout")}
		}
		return baseFees(11, 12), nil
	}

	events := &eventLog{}
	f := NewFeed(time.Hour, fetch, series, events, zap.NewNop())

	ev := f.runCycle(context.Background())
	assert.Equal(t, model.CycleFailed, ev.Status)
	assert.Equal(t, baseFees(10, 11), series.Snapshot())

	ev = f.runCycle(context.Background())
	assert.Equal(t, model.CycleOK, ev.Status)
	assert.Equal(t, 1, ev.Added)
	assert.Equal(t, 3, ev.SeriesLength)
	assert.Equal(t, baseFees(10, 11, 12), series.Snapshot())

	assert.Equal(t, []model.CycleStatus{model.CycleFailed, model.CycleOK}, events.statuses())
}

func TestFeedMergesPartialBatch(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedMinerFee, store.Immutable)

	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		partial := &model.PartialBatchError{}
		partial.Add(2, errors.New("502"))
		return baseFees(1, 3), partial
	}

	f := NewFeed(time.Hour, fetch, series, nil, zap.NewNop())
	ev := f.runCycle(context.Background())

	assert.Equal(t, model.CyclePartial, ev.Status)
	assert.Error(t, ev.Err)
	assert.Equal(t, baseFees(1, 3), series.Snapshot())
}

func TestFeedReportsConflicts(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)
	series.Merge(baseFees(5))

	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		return []model.BlockFeeRecord{{BlockNumber: 5, BaseFeeGwei: decimal.NewFromInt(99)}}, nil
	}

	f := NewFeed(time.Hour, fetch, series, nil, zap.NewNop())
	ev := f.runCycle(context.Background())

	require.Len(t, ev.Conflicts, 1)
	assert.Equal(t, uint64(5), ev.Conflicts[0].Block)
	assert.Equal(t, baseFees(5), series.Snapshot())
}

func TestFeedSkipsTickWhileCycleInFlight(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		started <- struct{}{}
		<-release
		return baseFees(1), nil
	}

	events := &eventLog{}
	f := NewFeed(time.Hour, fetch, series, events, zap.NewNop())
	ctx := context.Background()

	assert.True(t, f.tick(ctx))
	<-started
	assert.False(t, f.tick(ctx))
	assert.False(t, f.tick(ctx))

	close(release)
	f.wg.Wait()

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, []model.CycleStatus{model.CycleSkipped, model.CycleSkipped, model.CycleOK}, events.statuses())

	assert.True(t, f.tick(ctx))
	<-started
	f.wg.Wait()
}

func TestFeedTeardownDiscardsInFlightBatch(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)

	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		close(started)
		<-release
		return baseFees(1, 2, 3), nil
	}

	events := &eventLog{}
	f := NewFeed(time.Hour, fetch, series, events, zap.NewNop())

	require.True(t, f.tick(context.Background()))
	<-started

	done := make(chan struct{})
	go func() {
		f.teardown()
		close(done)
	}()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.stopped
	}, time.Second, 5*time.Millisecond)

	close(release)
	<-done

	assert.Zero(t, series.Len())
	assert.Equal(t, []model.CycleStatus{model.CycleDiscarded}, events.statuses())
}

func TestFeedServeRunsFirstCycleImmediately(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)

	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		return baseFees(7), nil
	}

	f := NewFeed(time.Hour, fetch, series, nil, zap.NewNop())
	assert.Equal(t, "feed-base_fee", f.String())

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- f.Serve(ctx) }()

	require.Eventually(t, func() bool { return series.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errC:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestFeedContainsPanickingFetch(t *testing.T) {
	series := store.NewSeries[model.BlockFeeRecord](model.FeedBaseFee, store.Immutable)

	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context) ([]model.BlockFeeRecord, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			panic("boom")
		}
		return baseFees(3), nil
	}

	events := &eventLog{}
	f := NewFeed(time.Hour, fetch, series, events, zap.NewNop())
	ctx := context.Background()

	require.True(t, f.tick(ctx))
	f.wg.Wait()
	assert.Zero(t, series.Len())

	require.True(t, f.tick(ctx))
	f.wg.Wait()
	assert.Equal(t, baseFees(3), series.Snapshot())

	assert.Equal(t, []model.CycleStatus{model.CycleFailed, model.CycleOK}, events.statuses())
	events.mu.Lock()
	assert.ErrorContains(t, events.events[0].Err, "boom")
	events.mu.Unlock()
}
