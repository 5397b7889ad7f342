// Package config builds the explicit configuration value passed to each
// component at construction. Nothing in this repository reads the
// environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults.
const (
	DefaultRPCURL = "https://mainnet.helius-rpc.com/?api-key=%s"
	DefaultWSURL  = "wss://mainnet.helius-rpc.com/?api-key=%s"

	// DefaultMinFeeLamports sits above the 5000-lamport base fee so
	// signature-only spam transactions are filtered from display.
	DefaultMinFeeLamports = 10_000

	DefaultAssetCacheTTL     = 5 * time.Minute
	DefaultPingInterval      = 30 * time.Second
	DefaultReconnectDelay    = 5 * time.Second
	DefaultMaxReconnectDelay = 60 * time.Second
)

// Config carries every tunable the tool uses.
type Config struct {
	APIKey string

	RPCURL string
	WSURL  string

	MinFeeLamports    uint64
	AssetCacheTTL     time.Duration
	PingInterval      time.Duration
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// FromEnv loads configuration from the environment. HELIUS_API_KEY is
// required; everything else has a default.
func FromEnv() (*Config, error) {
	key := os.Getenv("HELIUS_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("HELIUS_API_KEY is not set")
	}

	cfg := &Config{
		APIKey:            key,
		RPCURL:            fmt.Sprintf(DefaultRPCURL, key),
		WSURL:             fmt.Sprintf(DefaultWSURL, key),
		MinFeeLamports:    DefaultMinFeeLamports,
		AssetCacheTTL:     DefaultAssetCacheTTL,
		PingInterval:      DefaultPingInterval,
		ReconnectDelay:    DefaultReconnectDelay,
		MaxReconnectDelay: DefaultMaxReconnectDelay,
	}

	if v := os.Getenv("HELIUS_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("HELIUS_WS_URL"); v != "" {
		cfg.WSURL = v
	}

	if v := os.Getenv("WALLETWATCH_MIN_FEE_LAMPORTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse WALLETWATCH_MIN_FEE_LAMPORTS: %w", err)
		}
		cfg.MinFeeLamports = n
	}

	if v := os.Getenv("WALLETWATCH_ASSET_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse WALLETWATCH_ASSET_CACHE_TTL: %w", err)
		}
		cfg.AssetCacheTTL = d
	}

	if v := os.Getenv("WALLETWATCH_RECONNECT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse WALLETWATCH_RECONNECT_DELAY: %w", err)
		}
		cfg.ReconnectDelay = d
	}

	return cfg, nil
}

// RedactedSummary returns a log-safe description of the configuration.
func (c *Config) RedactedSummary() string {
	return fmt.Sprintf("config: api-key=%s min-fee=%d lamports asset-cache-ttl=%s reconnect-delay=%s",
		redactKey(c.APIKey), c.MinFeeLamports, c.AssetCacheTTL, c.ReconnectDelay)
}

func redactKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
