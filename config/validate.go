package config

import (
	"fmt"
	"net/url"

	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Validate checks client config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	u, err := url.Parse(cfg.RPC.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("rpc.url must be an http(s) URL, got %q", cfg.RPC.URL)
	}
	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}
	if cfg.RPC.PollInterval <= 0 {
		return fmt.Errorf("rpc.pollinterval must be positive")
	}
	if cfg.RPC.InclusionTimeout < cfg.RPC.PollInterval {
		return fmt.Errorf("rpc.inclusiontimeout must be at least rpc.pollinterval")
	}
	if cfg.Chain.ID == "" {
		return fmt.Errorf("chain.id is required")
	}
	if _, err := cfg.NativeToken(); err != nil {
		return err
	}
	if cfg.Wallet.Name == "" {
		return fmt.Errorf("wallet.name is required")
	}
	return nil
}

// NativeToken returns the configured fee token address.
func (c *Config) NativeToken() (types.Address, error) {
	if c.Chain.NativeToken == "" {
		return types.Address{}, nil
	}
	addr, err := types.ParseAddress(c.Chain.NativeToken)
	if err != nil {
		return types.Address{}, fmt.Errorf("chain.nativetoken: %w", err)
	}
	return addr, nil
}
