// Package feemath computes per-block miner fee statistics from transaction
// fee caps. Inputs are in wei; the exported averages are in gwei.
package feemath

import (
	"math/big"
	"sort"

	"feewatch/internal/model"
	"github.com/shopspring/decimal"
)

// GweiExp is the decimal exponent between wei and gwei.
const GweiExp = 9

// Averages holds a block's miner fee statistics. FeeTxCount is the number of
// transactions with a defined miner fee.
type Averages struct {
	MeanGwei   decimal.Decimal
	MedianGwei decimal.Decimal
	TxCount    int
	FeeTxCount int
}

// EffectiveMinerFee returns the fee the block producer keeps for one
// transaction, or false when the transaction has no defined miner fee:
// either cap is missing, or the priority cap is below what is left after the
// base fee (the sender is refunded the difference).
func EffectiveMinerFee(maxFeePerGas, maxPriorityFeePerGas, baseFee *big.Int) (*big.Int, bool) {
	if maxFeePerGas == nil || maxPriorityFeePerGas == nil || baseFee == nil {
		return nil, false
	}

	leftover := new(big.Int).Sub(maxFeePerGas, baseFee)
	if leftover.Sign() < 0 {
		return nil, false
	}
	if maxPriorityFeePerGas.Cmp(leftover) >= 0 {
		return leftover, true
	}
	return nil, false
}

// MeanFee divides the sum of the defined fees by the number of transactions
// in the block, so fee-less transactions dilute the mean.
func MeanFee(allTransactionCount int, fees []*big.Int) decimal.Decimal {
	if allTransactionCount <= 0 {
		return decimal.Zero
	}
	sum := new(big.Int)
	for _, f := range fees {
		sum.Add(sum, f)
	}
	return decimal.NewFromBigInt(sum, 0).Div(decimal.NewFromInt(int64(allTransactionCount)))
}

// MedianFee returns the middle fee, or the average of the two middle fees for
// an even count. An empty set has median 0. The input is not modified.
func MedianFee(fees []*big.Int) decimal.Decimal {
	if len(fees) == 0 {
		return decimal.Zero
	}

	sorted := make([]*big.Int, len(fees))
	copy(sorted, fees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })

	half := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return decimal.NewFromBigInt(sorted[half], 0)
	}
	pair := new(big.Int).Add(sorted[half-1], sorted[half])
	return decimal.NewFromBigInt(pair, 0).Div(decimal.NewFromInt(2))
}

// ToGwei converts a wei amount to gwei.
func ToGwei(wei decimal.Decimal) decimal.Decimal {
	return wei.Shift(-GweiExp)
}

// WeiToGwei converts a wei integer to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -GweiExp)
}

// MinerFeeAverages computes the block's mean and median miner fee in gwei.
func MinerFeeAverages(txs []model.Transaction, baseFee *big.Int) Averages {
	fees := make([]*big.Int, 0, len(txs))
	for _, tx := range txs {
		if fee, ok := EffectiveMinerFee(tx.MaxFeePerGas, tx.MaxPriorityFeePerGas, baseFee); ok {
			fees = append(fees, fee)
		}
	}

	return Averages{
		MeanGwei:   ToGwei(MeanFee(len(txs), fees)),
		MedianGwei: ToGwei(MedianFee(fees)),
		TxCount:    len(txs),
		FeeTxCount: len(fees),
	}
}
