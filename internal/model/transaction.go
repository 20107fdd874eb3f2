package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// Transaction carries the fee caps of a transaction. Both caps are nil
	// for transactions that predate the priority-fee market.
	Transaction struct {
		Hash                 common.Hash
		Type                 uint64
		MaxFeePerGas         *big.Int
		MaxPriorityFeePerGas *big.Int
	}
)
