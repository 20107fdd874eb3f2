package data_layer

import (
	"context"

	"feewatch/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks

// AnchorLatest asks eth_feeHistory for the window ending at the chain head.
const AnchorLatest = "latest"

// Gateway is the only view of the chain the feeds have. Every method fails
// with a *model.TransportError.
type Gateway interface {
	FeeHistory(ctx context.Context, blockCount uint64, anchor string) (*model.FeeHistory, error)
	BlockByNumber(ctx context.Context, blockNumber uint64) (*model.RawBlock, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	Logs(ctx context.Context, fromBlock, toBlock uint64, address common.Address, topics []common.Hash) ([]model.LogEntry, error)
}
