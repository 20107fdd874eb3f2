package service

import (
	"context"

	"feewatch/internal/config"
	data_layer "feewatch/internal/data-layer"
	"feewatch/internal/data-layer/crypto"
	"feewatch/internal/service/sink"
	"feewatch/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// BuildFeeds creates one service per enabled feed, all writing to st.
func BuildFeeds(cfg *config.AppConfig, gateway data_layer.Gateway, st *store.Store, producer sink.Producer, log *zap.Logger) ([]suture.Service, error) {
	var services []suture.Service
	feeds := cfg.Feeds

	if feeds.BaseFee.Enabled {
		fetcher := &BaseFeeFetcher{Gateway: gateway, Window: feeds.BaseFee.Window}
		services = append(services, NewFeed(feeds.BaseFee.Interval, fetcher.Fetch, st.BaseFees, producer, log))
	}

	if feeds.MinerFee.Enabled {
		mc := feeds.MinerFee
		enricher, err := NewBlockEnricher(gateway, mc.Concurrency, mc.CacheSize, mc.InitialWindow, mc.Window, log)
		if err != nil {
			return nil, err
		}
		services = append(services, NewFeed(mc.Interval, enricher.Fetch, st.MinerFees, producer, log))
	}

	if feeds.TransferVolume.Enabled {
		tc := feeds.TransferVolume
		aggregator, err := NewTransferAggregator(gateway, common.HexToAddress(tc.Contract), tc.EventSignature, tc.Lookback, tc.TokenDecimals, log)
		if err != nil {
			return nil, err
		}
		services = append(services, NewFeed(tc.Interval, aggregator.Fetch, st.Transfers, producer, log))
	}

	if len(services) == 0 {
		return nil, errors.New("no feed enabled")
	}
	return services, nil
}

func RunPipelineFromYAML(ctx context.Context, cfg *config.AppConfig, st *store.Store, producer sink.Producer, log *zap.Logger, extra ...suture.Service) error {
	gateway := crypto.NewEthereumGateway(crypto.EthereumOptions{
		URL:               cfg.RPC.URL,
		APIKey:            cfg.RPC.APIKey,
		Timeout:           cfg.RPC.Timeout,
		RetryCount:        cfg.RPC.RetryCount,
		RequestsPerSecond: cfg.RPC.RequestsPerSecond,
		Burst:             cfg.RPC.Burst,
	})
	return RunPipeline(ctx, cfg, gateway, st, producer, log, extra...)
}

// RunPipeline supervises the feeds and any extra services until ctx is done.
func RunPipeline(ctx context.Context, cfg *config.AppConfig, gateway data_layer.Gateway, st *store.Store, producer sink.Producer, log *zap.Logger, extra ...suture.Service) error {
	feeds, err := BuildFeeds(cfg, gateway, st, producer, log)
	if err != nil {
		return errors.Wrap(err, "unable to build feeds")
	}

	sup := suture.New("feewatch", suture.Spec{
		EventHook: func(e suture.Event) {
			log.Warn("supervisor event", zap.String("event", e.String()))
		},
	})
	for _, svc := range append(feeds, extra...) {
		sup.Add(svc)
	}

	log.Info("pipeline started", zap.Int("feeds", len(feeds)), zap.String("rpc", cfg.RPC.URL))
	err = sup.Serve(ctx)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
