package service

import (
	"context"
	"sync/atomic"

	data_layer "feewatch/internal/data-layer"
	"feewatch/internal/feemath"
	"feewatch/internal/model"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BlockEnricher computes per-block miner fee statistics by pairing the base
// fee reported by eth_feeHistory with the full transaction list of each block.
type BlockEnricher struct {
	gateway     data_layer.Gateway
	concurrency int
	cache       *lru.Cache[uint64, model.MinerFeeRecord]
	log         *zap.Logger

	initialWindow uint64
	window        uint64
	primed        atomic.Bool
}

func NewBlockEnricher(gateway data_layer.Gateway, concurrency, cacheSize int, initialWindow, window uint64, log *zap.Logger) (*BlockEnricher, error) {
	cache, err := lru.New[uint64, model.MinerFeeRecord](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create miner fee cache")
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BlockEnricher{
		gateway:       gateway,
		concurrency:   concurrency,
		cache:         cache,
		log:           log,
		initialWindow: initialWindow,
		window:        window,
	}, nil
}

// FetchMinerFeeRecords enriches the last count blocks. A failed fee history
// call fails the whole batch. A failed block body only drops that block: the
// resolved records are returned alongside a *model.PartialBatchError.
func (e *BlockEnricher) FetchMinerFeeRecords(ctx context.Context, count uint64) ([]model.MinerFeeRecord, error) {
	fh, err := e.gateway.FeeHistory(ctx, count, data_layer.AnchorLatest)
	if err != nil {
		return nil, err
	}

	n := min(count, uint64(len(fh.BaseFeePerGas)))
	results := make([]*model.MinerFeeRecord, n)
	failures := make([]error, n)

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := uint64(0); i < n; i++ {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		number := fh.OldestBlock + i
		if rec, ok := e.cache.Get(number); ok {
			results[i] = &rec
			continue
		}

		baseFee := fh.BaseFeePerGas[i]
		g.Go(func() error {
			block, err := e.gateway.BlockByNumber(ctx, number)
			if err != nil {
				failures[i] = err
				return nil
			}

			avg := feemath.MinerFeeAverages(block.Transactions, baseFee)
			rec := model.MinerFeeRecord{
				BlockNumber:   number,
				MeanFeeGwei:   avg.MeanGwei,
				MedianFeeGwei: avg.MedianGwei,
				TxCount:       avg.TxCount,
				FeeTxCount:    avg.FeeTxCount,
			}
			e.cache.Add(number, rec)
			results[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.MinerFeeRecord, 0, n)
	partial := &model.PartialBatchError{}
	for i, rec := range results {
		if rec != nil {
			out = append(out, *rec)
			continue
		}
		if failures[i] != nil {
			partial.Add(fh.OldestBlock+uint64(i), failures[i])
		}
	}

	if !partial.Empty() {
		e.log.Debug("miner fee batch resolved partially",
			zap.Int("resolved", len(out)),
			zap.Int("failed", len(partial.Failures)),
		)
		return out, partial
	}
	return out, nil
}

// Fetch covers InitialWindow blocks until one cycle has resolved, then Window
// blocks per cycle.
func (e *BlockEnricher) Fetch(ctx context.Context) ([]model.MinerFeeRecord, error) {
	count := e.window
	if !e.primed.Load() {
		count = e.initialWindow
	}

	recs, err := e.FetchMinerFeeRecords(ctx, count)
	if len(recs) > 0 {
		e.primed.Store(true)
	}
	return recs, err
}
