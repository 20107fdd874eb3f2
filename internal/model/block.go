package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// FeeHistory is the decoded result of eth_feeHistory. BaseFeePerGas is
	// oldest first and may hold one more entry than the requested block count.
	FeeHistory struct {
		OldestBlock   uint64
		BaseFeePerGas []*big.Int
	}

	RawBlock struct {
		Number        uint64
		BaseFeePerGas *big.Int
		Transactions  []Transaction
	}

	BlockRange struct {
		From uint64
		To   uint64
	}

	LogEntry struct {
		BlockNumber uint64
		TxHash      common.Hash
		Index       uint64
		Address     common.Address
		Topics      []common.Hash
		Data        string
		Removed     bool
	}
)

// Len returns the number of blocks in the inclusive range.
func (r BlockRange) Len() uint64 {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}
