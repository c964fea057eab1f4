package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// HTTP server settings
	ListenAddr  string        `json:"listen_addr"`
	ReadTimeout time.Duration `json:"read_timeout"`
	IdleTimeout time.Duration `json:"idle_timeout"`

	// Exchange settings
	BaseAsset     string   `json:"base_asset"`
	EngineAccount string   `json:"engine_account"`
	Owners        []string `json:"owners"`

	// Price feed settings
	PriceFeed PriceFeedConfig `json:"price_feed"`

	// History journal; empty DSN disables journaling
	HistoryDSN string `json:"history_dsn"`

	// Feature flags
	PrometheusEnabled bool `json:"prometheus_enabled"`
	Debug             bool `json:"debug"`
}

type PriceFeedConfig struct {
	BaseURL     string          `json:"base_url"`
	RateLimit   RateLimitConfig `json:"rate_limit"`
	CacheSize   int             `json:"cache_size"`
	MaxQuoteAge time.Duration   `json:"max_quote_age"`
	Timeout     time.Duration   `json:"timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
}

func (c *Config) ValidateConfig() error {
	var errors []string

	if c.ListenAddr == "" {
		errors = append(errors, "listen_addr must be specified")
	}
	if !common.IsHexAddress(c.BaseAsset) {
		errors = append(errors, "base_asset must be a hex address")
	}
	if !common.IsHexAddress(c.EngineAccount) {
		errors = append(errors, "engine_account must be a hex address")
	}
	if len(c.Owners) == 0 {
		errors = append(errors, "at least one owner must be specified")
	}
	for _, owner := range c.Owners {
		if !common.IsHexAddress(owner) {
			errors = append(errors, fmt.Sprintf("owner %q is not a hex address", owner))
		}
	}
	if c.PriceFeed.BaseURL != "" {
		if err := c.PriceFeed.RateLimit.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("price feed rate limit error: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (r *RateLimitConfig) Validate() error {
	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if r.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive")
	}

	return nil
}

// BaseAssetAddress returns the parsed base asset address. ValidateConfig
// must have passed.
func (c *Config) BaseAssetAddress() common.Address {
	return common.HexToAddress(c.BaseAsset)
}

// EngineAccountAddress returns the parsed engine holding account.
func (c *Config) EngineAccountAddress() common.Address {
	return common.HexToAddress(c.EngineAccount)
}

// OwnerAddresses returns the parsed owner allow list.
func (c *Config) OwnerAddresses() []common.Address {
	owners := make([]common.Address, 0, len(c.Owners))
	for _, owner := range c.Owners {
		owners = append(owners, common.HexToAddress(owner))
	}
	return owners
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  ":8080",
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		PriceFeed: PriceFeedConfig{
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 10,
				BurstSize:         5,
			},
			CacheSize:   128,
			MaxQuoteAge: 15 * time.Second,
			Timeout:     5 * time.Second,
		},
		PrometheusEnabled: true,
	}
}

func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".baseswap.json")
	}

	file, err := os.Open(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.ValidateConfig(); err != nil {
		return nil, err
	}

	return config, nil
}
