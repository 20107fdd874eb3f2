package model

import (
	"github.com/shopspring/decimal"
)

type (
	BlockFeeRecord struct {
		BlockNumber uint64          `json:"blockNumber"`
		BaseFeeGwei decimal.Decimal `json:"baseFeeGwei"`
	}

	MinerFeeRecord struct {
		BlockNumber   uint64          `json:"blockNumber"`
		MeanFeeGwei   decimal.Decimal `json:"meanFeeGwei"`
		MedianFeeGwei decimal.Decimal `json:"medianFeeGwei"`
		TxCount       int             `json:"txCount"`
		FeeTxCount    int             `json:"feeTxCount"`
	}

	TransferRecord struct {
		BlockNumber uint64          `json:"blockNumber"`
		Volume      decimal.Decimal `json:"volume"`
		Transfers   int             `json:"transfers"`
	}
)

func (r BlockFeeRecord) Block() uint64 { return r.BlockNumber }

func (r BlockFeeRecord) SameValue(o BlockFeeRecord) bool {
	return r.BaseFeeGwei.Equal(o.BaseFeeGwei)
}

func (r MinerFeeRecord) Block() uint64 { return r.BlockNumber }

// SameValue compares the fee statistics only; the counts are informational.
func (r MinerFeeRecord) SameValue(o MinerFeeRecord) bool {
	return r.MeanFeeGwei.Equal(o.MeanFeeGwei) && r.MedianFeeGwei.Equal(o.MedianFeeGwei)
}

func (r TransferRecord) Block() uint64 { return r.BlockNumber }

func (r TransferRecord) SameValue(o TransferRecord) bool {
	return r.Volume.Equal(o.Volume) && r.Transfers == o.Transfers
}
