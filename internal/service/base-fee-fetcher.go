package service

import (
	"context"

	data_layer "feewatch/internal/data-layer"
	"feewatch/internal/feemath"
	"feewatch/internal/model"
)

type BaseFeeFetcher struct {
	Gateway data_layer.Gateway
	Window  uint64
}

// FetchBaseFeeSeries returns one record per block for the last count blocks
// ending at the chain tip, oldest first. The node reports count+1 base fees,
// the last being the projection for the next block, which is dropped.
func (f *BaseFeeFetcher) FetchBaseFeeSeries(ctx context.Context, count uint64) ([]model.BlockFeeRecord, error) {
	fh, err := f.Gateway.FeeHistory(ctx, count, data_layer.AnchorLatest)
	if err != nil {
		return nil, err
	}

	n := min(count, uint64(len(fh.BaseFeePerGas)))
	out := make([]model.BlockFeeRecord, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, model.BlockFeeRecord{
			BlockNumber: fh.OldestBlock + i,
			BaseFeeGwei: feemath.WeiToGwei(fh.BaseFeePerGas[i]),
		})
	}
	return out, nil
}

func (f *BaseFeeFetcher) Fetch(ctx context.Context) ([]model.BlockFeeRecord, error) {
	return f.FetchBaseFeeSeries(ctx, f.Window)
}
