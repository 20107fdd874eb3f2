package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"feewatch/internal/api"
	"feewatch/internal/config"
	"feewatch/internal/logger"
	"feewatch/internal/service"
	"feewatch/internal/service/sink"
	"feewatch/internal/store"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var rootConfig = struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	HTTPAddr   string
}{
	ConfigPath: "cmd/config.yaml",
}

var app = &cli.Command{
	Name:   "feewatch",
	Usage:  "Polls an Ethereum node and serves base fee, miner fee and token transfer series",
	Flags:  rootFlags,
	Action: rootAction,
}

var rootFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Sources: cli.ValueSourceChain{
			Chain: []cli.ValueSource{cli.EnvVar("FEEWATCH_CONFIG")},
		},
		Usage:       "Path to the YAML configuration file. Empty runs on defaults and environment.",
		Value:       rootConfig.ConfigPath,
		Destination: &rootConfig.ConfigPath,
	},
	&cli.StringFlag{
		Name: "log.level",
		Sources: cli.ValueSourceChain{
			Chain: []cli.ValueSource{cli.EnvVar("FEEWATCH_LOG_LEVEL")},
		},
		Usage:       "Overrides log.level from the config file: debug, info, warn, error",
		Destination: &rootConfig.LogLevel,
	},
	&cli.StringFlag{
		Name: "log.format",
		Sources: cli.ValueSourceChain{
			Chain: []cli.ValueSource{cli.EnvVar("FEEWATCH_LOG_FORMAT")},
		},
		Usage:       "Overrides log.format from the config file: console, json",
		Destination: &rootConfig.LogFormat,
	},
	&cli.StringFlag{
		Name: "http.addr",
		Sources: cli.ValueSourceChain{
			Chain: []cli.ValueSource{cli.EnvVar("FEEWATCH_HTTP_ADDR")},
		},
		Usage:       "Overrides http.addr from the config file",
		Destination: &rootConfig.HTTPAddr,
	},
}

func main() {
	sigs := make(chan os.Signal, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer cancel()
		defer signal.Stop(sigs)

		select {
		case <-ctx.Done():
		case sig := <-sigs:
			logger.Info("received termination signal, stopping", zap.String("signal", sig.String()))
		}
	}()

	if err := app.Run(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "feewatch: %v\n", err)
		os.Exit(1)
	}
}

func rootAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig(rootConfig.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if rootConfig.LogLevel != "" {
		cfg.Log.Level = rootConfig.LogLevel
	}
	if rootConfig.LogFormat != "" {
		cfg.Log.Format = rootConfig.LogFormat
	}
	if rootConfig.HTTPAddr != "" {
		cfg.HTTP.Addr = rootConfig.HTTPAddr
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync()

	log := logger.Log
	st := store.New()
	producer := sink.Multi{sink.NewLogProducer(log), sink.MetricsProducer{}}
	server := api.NewServer(cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout, st, log)

	if err := service.RunPipelineFromYAML(ctx, cfg, st, producer, log, server); err != nil {
		return err
	}
	log.Info("feewatch stopped", zap.Any("series", st.Lengths()))
	return nil
}
