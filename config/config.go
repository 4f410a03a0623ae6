// Package config handles SDK client configuration.
//
// Settings are layered: network defaults, then the key = value config file
// in the data directory, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds client runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Node connection
	RPC RPCConfig

	// Chain identity
	Chain ChainConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds the node endpoint and client timing.
type RPCConfig struct {
	URL              string        `conf:"rpc.url"`
	Timeout          time.Duration `conf:"rpc.timeout"`          // Per request.
	PollInterval     time.Duration `conf:"rpc.pollinterval"`     // Between inclusion checks.
	InclusionTimeout time.Duration `conf:"rpc.inclusiontimeout"` // Total wait after broadcast.
}

// ChainConfig identifies the chain transactions are built for.
type ChainConfig struct {
	ID string `conf:"chain.id"`
	// NativeToken is the bech32 address of the fee token. Empty means the
	// zero address.
	NativeToken string `conf:"chain.nativetoken"`
}

// WalletConfig holds keystore settings.
type WalletConfig struct {
	Name string `conf:"wallet.name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-tx
//	macOS:   ~/Library/Application Support/KlingnetTx
//	Windows: %APPDATA%\KlingnetTx
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-tx"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetTx")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetTx")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetTx")
	default:
		return filepath.Join(home, ".klingnet-tx")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the wallet database directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.ChainDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingnet-tx.conf")
}
