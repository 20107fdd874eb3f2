package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"feewatch/internal/config"
	"feewatch/internal/data-layer/mocks"
	"feewatch/internal/model"
	"feewatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestBuildFeedsFollowsConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	cfg := config.DefaultConfig()
	feeds, err := BuildFeeds(cfg, gw, store.New(), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, feeds, 3)

	cfg.Feeds.MinerFee.Enabled = false
	cfg.Feeds.TransferVolume.Enabled = false
	feeds, err = BuildFeeds(cfg, gw, store.New(), nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "feed-base_fee", feeds[0].(interface{ String() string }).String())

	cfg.Feeds.BaseFee.Enabled = false
	_, err = BuildFeeds(cfg, gw, store.New(), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRunPipelineFillsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	gw.EXPECT().FeeHistory(gomock.Any(), gomock.Any(), gomock.Any()).Return(&model.FeeHistory{
		OldestBlock:   100,
		BaseFeePerGas: []*big.Int{gwei(10), gwei(11)},
	}, nil).AnyTimes()
	gw.EXPECT().BlockByNumber(gomock.Any(), uint64(100)).Return(&model.RawBlock{
		Number:       100,
		Transactions: []model.Transaction{{MaxFeePerGas: gwei(20), MaxPriorityFeePerGas: gwei(20)}},
	}, nil).AnyTimes()
	gw.EXPECT().LatestBlockNumber(gomock.Any()).Return(uint64(100), nil).AnyTimes()
	gw.EXPECT().Logs(gomock.Any(), uint64(0), uint64(100), gomock.Any(), gomock.Any()).Return([]model.LogEntry{
		{BlockNumber: 100, Data: amountData(100_000_000)},
	}, nil).AnyTimes()

	cfg := config.DefaultConfig()
	cfg.Feeds.BaseFee.Window = 1
	cfg.Feeds.MinerFee.InitialWindow = 1

	st := store.New()
	events := &eventLog{}
	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- RunPipeline(ctx, cfg, gw, st, events, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		l := st.Lengths()
		return l[model.FeedBaseFee] == 1 && l[model.FeedMinerFee] == 1 && l[model.FeedTransferVolume] == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errC:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop")
	}

	fee, ok := st.MinerFees.Latest()
	require.True(t, ok)
	assert.Equal(t, "10", fee.MeanFeeGwei.String())

	vol, ok := st.Transfers.Latest()
	require.True(t, ok)
	assert.Equal(t, "1", vol.Volume.String())
}
