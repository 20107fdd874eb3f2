package service

import (
	"context"
	"fmt"
	"math/big"

	data_layer "feewatch/internal/data-layer"
	"feewatch/internal/metrics"
	"feewatch/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferAggregator sums the amounts of a token's Transfer events per block.
type TransferAggregator struct {
	gateway  data_layer.Gateway
	contract common.Address
	topic    common.Hash
	lookback uint64
	decimals int32
	amount   abi.Arguments
	log      *zap.Logger
}

func EventTopic(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

func NewTransferAggregator(gateway data_layer.Gateway, contract common.Address, eventSignature string, lookback uint64, decimals int32, log *zap.Logger) (*TransferAggregator, error) {
	uint256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build uint256 abi type")
	}
	return &TransferAggregator{
		gateway:  gateway,
		contract: contract,
		topic:    EventTopic(eventSignature),
		lookback: lookback,
		decimals: decimals,
		amount:   abi.Arguments{{Type: uint256}},
		log:      log,
	}, nil
}

// FetchTransferVolume aggregates matching logs over [latest-lookback, latest].
// Blocks without transfers produce no record. Undecodable entries are
// dropped individually and reported through a *model.PartialBatchError.
func (a *TransferAggregator) FetchTransferVolume(ctx context.Context, lookback uint64) ([]model.TransferRecord, error) {
	latest, err := a.gateway.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var from uint64
	if latest > lookback {
		from = latest - lookback
	}

	logs, err := a.gateway.Logs(ctx, from, latest, a.contract, []common.Hash{a.topic})
	if err != nil {
		return nil, err
	}

	byBlock := make(map[uint64]int)
	var out []model.TransferRecord
	partial := &model.PartialBatchError{}

	for _, entry := range logs {
		if entry.Removed {
			continue
		}

		amount, err := a.decodeAmount(entry.Data)
		if err != nil {
			metrics.DecodeErrors.Inc()
			partial.Add(entry.BlockNumber, &model.DecodeError{Block: entry.BlockNumber, Index: entry.Index, Err: err})
			continue
		}

		pos, ok := byBlock[entry.BlockNumber]
		if !ok {
			pos = len(out)
			byBlock[entry.BlockNumber] = pos
			out = append(out, model.TransferRecord{BlockNumber: entry.BlockNumber, Volume: decimal.Zero})
		}
		out[pos].Volume = out[pos].Volume.Add(amount)
		out[pos].Transfers++
	}

	if !partial.Empty() {
		a.log.Warn("discarded undecodable transfer logs",
			zap.Uint64("from", from),
			zap.Uint64("to", latest),
			zap.Error(partial),
		)
		return out, partial
	}
	return out, nil
}

func (a *TransferAggregator) decodeAmount(data string) (decimal.Decimal, error) {
	raw, err := hexutil.Decode(data)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "log data")
	}
	values, err := a.amount.Unpack(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(values) != 1 {
		return decimal.Decimal{}, fmt.Errorf("expected 1 value, got %d", len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unexpected amount type %T", values[0])
	}
	return decimal.NewFromBigInt(v, -a.decimals), nil
}

func (a *TransferAggregator) Fetch(ctx context.Context) ([]model.TransferRecord, error) {
	return a.FetchTransferVolume(ctx, a.lookback)
}
