package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvRPCURL    = "FEEWATCH_RPC_URL"
	EnvRPCAPIKey = "FEEWATCH_RPC_API_KEY"

	// WBTC on Ethereum mainnet.
	DefaultTransferContract = "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"
	DefaultTransferEvent    = "Transfer(address,address,uint256)"
)

type RPCConfig struct {
	URL               string        `yaml:"url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RetryCount        int           `yaml:"retry_count"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type BaseFeeConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Window   uint64        `yaml:"window"`
}

type MinerFeeConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	InitialWindow uint64        `yaml:"initial_window"`
	Window        uint64        `yaml:"window"`
	Concurrency   int           `yaml:"concurrency"`
	CacheSize     int           `yaml:"cache_size"`
}

type TransferConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Interval       time.Duration `yaml:"interval"`
	Lookback       uint64        `yaml:"lookback"`
	Contract       string        `yaml:"contract"`
	EventSignature string        `yaml:"event_signature"`
	TokenDecimals  int32         `yaml:"token_decimals"`
}

type FeedsConfig struct {
	BaseFee        BaseFeeConfig  `yaml:"base_fee"`
	MinerFee       MinerFeeConfig `yaml:"miner_fee"`
	TransferVolume TransferConfig `yaml:"transfer_volume"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AppConfig struct {
	RPC   RPCConfig   `yaml:"rpc"`
	Feeds FeedsConfig `yaml:"feeds"`
	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
}

// DefaultConfig mirrors the polling cadence of the dashboard this service feeds.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		RPC: RPCConfig{
			Timeout:           10 * time.Second,
			RetryCount:        0,
			RequestsPerSecond: 10,
			Burst:             10,
		},
		Feeds: FeedsConfig{
			BaseFee: BaseFeeConfig{
				Enabled:  true,
				Interval: 12 * time.Second,
				Window:   99,
			},
			MinerFee: MinerFeeConfig{
				Enabled:       true,
				Interval:      7500 * time.Millisecond,
				InitialWindow: 5,
				Window:        1,
				Concurrency:   4,
				CacheSize:     512,
			},
			TransferVolume: TransferConfig{
				Enabled:        true,
				Interval:       15 * time.Second,
				Lookback:       100,
				Contract:       DefaultTransferContract,
				EventSignature: DefaultTransferEvent,
				TokenDecimals:  8,
			},
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. An empty
// path skips the file. A .env file in the working directory is loaded first
// and the FEEWATCH_RPC_* variables override the file.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.RPC.URL = v
	}
	if v := os.Getenv(EnvRPCAPIKey); v != "" {
		cfg.RPC.APIKey = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required (or set %s)", EnvRPCURL)
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	if c.RPC.RetryCount < 0 {
		return fmt.Errorf("rpc.retry_count must not be negative")
	}
	if c.RPC.RequestsPerSecond <= 0 || c.RPC.Burst <= 0 {
		return fmt.Errorf("rpc.requests_per_second and rpc.burst must be positive")
	}

	f := c.Feeds
	if f.BaseFee.Enabled {
		if f.BaseFee.Interval <= 0 || f.BaseFee.Window == 0 {
			return fmt.Errorf("feeds.base_fee needs a positive interval and window")
		}
	}
	if f.MinerFee.Enabled {
		if f.MinerFee.Interval <= 0 || f.MinerFee.Window == 0 || f.MinerFee.InitialWindow == 0 {
			return fmt.Errorf("feeds.miner_fee needs a positive interval, window and initial_window")
		}
		if f.MinerFee.Concurrency <= 0 || f.MinerFee.CacheSize <= 0 {
			return fmt.Errorf("feeds.miner_fee needs a positive concurrency and cache_size")
		}
	}
	if f.TransferVolume.Enabled {
		if f.TransferVolume.Interval <= 0 {
			return fmt.Errorf("feeds.transfer_volume needs a positive interval")
		}
		if !common.IsHexAddress(f.TransferVolume.Contract) {
			return fmt.Errorf("feeds.transfer_volume.contract %q is not an address", f.TransferVolume.Contract)
		}
		if f.TransferVolume.EventSignature == "" {
			return fmt.Errorf("feeds.transfer_volume.event_signature is required")
		}
		if f.TransferVolume.TokenDecimals < 0 {
			return fmt.Errorf("feeds.transfer_volume.token_decimals must not be negative")
		}
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}
