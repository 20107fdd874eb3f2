package store

import (
	"feewatch/internal/model"
)

// Store holds one series per feed. Each series is written only by its own feed.
type Store struct {
	BaseFees  *Series[model.BlockFeeRecord]
	MinerFees *Series[model.MinerFeeRecord]
	Transfers *Series[model.TransferRecord]
}

// New returns a store with empty series: base and miner fees immutable,
// transfer volume replaceable.
func New() *Store {
	return &Store{
		BaseFees:  NewSeries[model.BlockFeeRecord](model.FeedBaseFee, Immutable),
		MinerFees: NewSeries[model.MinerFeeRecord](model.FeedMinerFee, Immutable),
		Transfers: NewSeries[model.TransferRecord](model.FeedTransferVolume, ReplaceOnChange),
	}
}

// Lengths reports the size of every series, keyed by feed.
func (s *Store) Lengths() map[model.Feed]int {
	return map[model.Feed]int{
		model.FeedBaseFee:        s.BaseFees.Len(),
		model.FeedMinerFee:       s.MinerFees.Len(),
		model.FeedTransferVolume: s.Transfers.Len(),
	}
}
