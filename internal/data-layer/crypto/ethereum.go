package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"feewatch/internal/metrics"
	"feewatch/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var errBlockNotFound = errors.New("block not found")

type EthereumOptions struct {
	URL               string
	APIKey            string
	Timeout           time.Duration
	RetryCount        int
	RequestsPerSecond float64
	Burst             int
}

type EthereumGateway struct {
	client      *resty.Client
	rateLimiter *rate.Limiter
}

func NewEthereumGateway(opts EthereumOptions) *EthereumGateway {
	client := resty.New().
		SetBaseURL(opts.URL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)
	if opts.APIKey != "" {
		client.SetHeader("X-API-Key", opts.APIKey)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &EthereumGateway{
		client:      client,
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

type rpcFeeHistory struct {
	OldestBlock   hexutil.Uint64 `json:"oldestBlock"`
	BaseFeePerGas []*hexutil.Big `json:"baseFeePerGas"`
}

type rpcTransaction struct {
	Hash                 common.Hash    `json:"hash"`
	Type                 hexutil.Uint64 `json:"type"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
}

type rpcBlock struct {
	Number        hexutil.Uint64   `json:"number"`
	BaseFeePerGas *hexutil.Big     `json:"baseFeePerGas"`
	Transactions  []rpcTransaction `json:"transactions"`
}

type rpcLog struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        string         `json:"data"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	LogIndex    hexutil.Uint64 `json:"logIndex"`
	Removed     bool           `json:"removed"`
}

type rpcLogFilter struct {
	FromBlock hexutil.Uint64 `json:"fromBlock"`
	ToBlock   hexutil.Uint64 `json:"toBlock"`
	Address   common.Address `json:"address"`
	Topics    []common.Hash  `json:"topics"`
}

func (e *EthereumGateway) FeeHistory(ctx context.Context, blockCount uint64, anchor string) (*model.FeeHistory, error) {
	const method = "eth_feeHistory"

	var res rpcFeeHistory
	params := []interface{}{hexutil.Uint64(blockCount), anchor, []float64{}}
	if err := e.rpcCall(ctx, method, params, &res); err != nil {
		return nil, err
	}

	fees := make([]*big.Int, 0, len(res.BaseFeePerGas))
	for i, fee := range res.BaseFeePerGas {
		if fee == nil {
			return nil, &model.TransportError{Method: method, Err: fmt.Errorf("null base fee at position %d", i)}
		}
		fees = append(fees, fee.ToInt())
	}

	return &model.FeeHistory{
		OldestBlock:   uint64(res.OldestBlock),
		BaseFeePerGas: fees,
	}, nil
}

func (e *EthereumGateway) BlockByNumber(ctx context.Context, blockNumber uint64) (*model.RawBlock, error) {
	const method = "eth_getBlockByNumber"

	var res *rpcBlock
	params := []interface{}{hexutil.Uint64(blockNumber), true}
	if err := e.rpcCall(ctx, method, params, &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &model.TransportError{Method: method, Err: errors.Wrapf(errBlockNotFound, "block %d", blockNumber)}
	}

	txs := make([]model.Transaction, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		txs = append(txs, model.Transaction{
			Hash:                 tx.Hash,
			Type:                 uint64(tx.Type),
			MaxFeePerGas:         bigOrNil(tx.MaxFeePerGas),
			MaxPriorityFeePerGas: bigOrNil(tx.MaxPriorityFeePerGas),
		})
	}

	return &model.RawBlock{
		Number:        uint64(res.Number),
		BaseFeePerGas: bigOrNil(res.BaseFeePerGas),
		Transactions:  txs,
	}, nil
}

func (e *EthereumGateway) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var res hexutil.Uint64
	if err := e.rpcCall(ctx, "eth_blockNumber", []interface{}{}, &res); err != nil {
		return 0, err
	}
	return uint64(res), nil
}

func (e *EthereumGateway) Logs(ctx context.Context, fromBlock, toBlock uint64, address common.Address, topics []common.Hash) ([]model.LogEntry, error) {
	filter := rpcLogFilter{
		FromBlock: hexutil.Uint64(fromBlock),
		ToBlock:   hexutil.Uint64(toBlock),
		Address:   address,
		Topics:    topics,
	}

	var res []rpcLog
	if err := e.rpcCall(ctx, "eth_getLogs", []interface{}{filter}, &res); err != nil {
		return nil, err
	}

	entries := make([]model.LogEntry, 0, len(res))
	for _, l := range res {
		entries = append(entries, model.LogEntry{
			BlockNumber: uint64(l.BlockNumber),
			TxHash:      l.TxHash,
			Index:       uint64(l.LogIndex),
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			Removed:     l.Removed,
		})
	}
	return entries, nil
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcCall performs one JSON-RPC request and decodes its result into out.
// Every failure comes back as a *model.TransportError.
func (e *EthereumGateway) rpcCall(ctx context.Context, method string, params []interface{}, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RPCRequests.WithLabelValues(method, status).Inc()
		metrics.RPCDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return &model.TransportError{Method: method, Err: errors.Wrap(err, "rate limiter")}
	}

	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "go-client",
		"method":  method,
		"params":  params,
	}
	var envelope rpcResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		Post("")
	if err != nil {
		return &model.TransportError{Method: method, Err: err}
	}
	if resp.IsError() {
		return &model.TransportError{Method: method, Err: fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())}
	}
	if envelope.Error != nil {
		return &model.TransportError{Method: method, Err: envelope.Error}
	}
	if len(envelope.Result) == 0 {
		return &model.TransportError{Method: method, Err: errors.New("empty result")}
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &model.TransportError{Method: method, Err: errors.Wrap(err, "decode result")}
	}
	return nil
}

func bigOrNil(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return v.ToInt()
}
