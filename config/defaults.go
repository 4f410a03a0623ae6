package config

import "time"

// DefaultMainnet returns the default client configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			URL:              "http://127.0.0.1:8545",
			Timeout:          10 * time.Second,
			PollInterval:     time.Second,
			InclusionTimeout: 2 * time.Minute,
		},
		Chain: ChainConfig{
			ID: "klingnet-mainnet",
		},
		Wallet: WalletConfig{
			Name: "default",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default client configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.RPC.URL = "http://127.0.0.1:8645"
	cfg.Chain.ID = "klingnet-testnet"
	return cfg
}

// Default returns the default client configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
