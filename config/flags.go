package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
)

// ErrHelp is returned by Load when --help was given.
var ErrHelp = flag.ErrHelp

// Flags holds parsed global command-line flags.
type Flags struct {
	Help    bool
	Version bool

	Network string
	Testnet bool
	DataDir string
	Config  string

	// Overrides maps config keys to values given on the command line.
	// Only flags that were actually passed appear here.
	Overrides map[string]string

	// Remaining args: the subcommand and its own flags.
	Args []string
}

// overrideFlags are the flags that map one-to-one onto config keys.
var overrideFlags = []struct {
	name, key, usage string
	isBool           bool
}{
	{"rpc", "rpc.url", "Node RPC URL", false},
	{"rpc-timeout", "rpc.timeout", "Per-request RPC timeout", false},
	{"poll-interval", "rpc.pollinterval", "Interval between inclusion checks", false},
	{"inclusion-timeout", "rpc.inclusiontimeout", "Total wait for inclusion after broadcast", false},
	{"chain-id", "chain.id", "Chain ID", false},
	{"native-token", "chain.nativetoken", "Native token address", false},
	{"wallet", "wallet.name", "Wallet name", false},
	{"log-level", "log.level", "Log level (trace, debug, info, warn, error)", false},
	{"log-file", "log.file", "Log file path", false},
	{"log-json", "log.json", "Output logs as JSON", true},
}

// overrideValue records a flag's raw text under its config key.
type overrideValue struct {
	key    string
	isBool bool
	into   map[string]string
}

func (v *overrideValue) String() string { return "" }

func (v *overrideValue) Set(s string) error {
	v.into[v.key] = s
	return nil
}

func (v *overrideValue) IsBoolFlag() bool { return v.isBool }

// ParseFlags parses the global flags in args. Parsing stops at the first
// non-flag argument, which starts the subcommand.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{Overrides: make(map[string]string)}
	fs := flag.NewFlagSet("klingnet-tx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	for _, o := range overrideFlags {
		fs.Var(&overrideValue{key: o.key, isBool: o.isBool, into: f.Overrides}, o.name, o.usage)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.Testnet {
		f.Network = string(Testnet)
	}
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to cfg. Overrides go through the
// same conversion as config file values, so a malformed duration on the
// command line is reported the same way.
func ApplyFlags(cfg *Config, f *Flags) error {
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	return ApplyFileConfig(cfg, f.Overrides)
}

// PrintUsage writes the global usage text to w.
func PrintUsage(w io.Writer) {
	usage := `klingnet-tx - build, sign and submit Klingnet transactions

Usage:
  klingnet-tx [global options] <command> [command options]

Global Options:
  --network       Network type: mainnet (default) or testnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.klingnet-tx)
  --config, -c    Config file path (default: <datadir>/klingnet-tx.conf)
  --rpc           Node RPC URL (mainnet: http://127.0.0.1:8545)
  --rpc-timeout   Per-request RPC timeout (default: 10s)
  --poll-interval Interval between inclusion checks
  --inclusion-timeout
                  Total wait for inclusion after broadcast
  --chain-id      Chain ID (mainnet: klingnet-mainnet)
  --native-token  Native token address
  --wallet        Wallet name (default: default)
  --log-level     Log level: trace, debug, info, warn, error (default: info)
  --log-file      Log file path (default: stderr only)
  --log-json      Output logs as JSON

Commands:
  build <kind>       Build an unsigned transaction
  sign               Sign a built transaction
  append-sig         Append an external signature bundle
  submit             Broadcast a signed transaction and wait for inclusion
  reveal             Reveal a signing key's public key if needed
  wallet             Manage wallets (new, import, add-spending-key, list)
  shielded install   Check a shielded parameter set (not persisted)

Kinds:
  ` + kindList() + `
`
	fmt.Fprint(w, usage)
}

func kindList() string {
	names := make([]string, len(msg.Kinds))
	for i, k := range msg.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help {
		return nil, flags, ErrHelp
	}

	// Determine network first (needed for defaults)
	network := Mainnet
	if strings.ToLower(flags.Network) == string(Testnet) {
		network = Testnet
	}

	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	if err := ApplyFlags(cfg, flags); err != nil {
		return nil, nil, fmt.Errorf("applying flags: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.ChainDataDir(),
		cfg.KeystoreDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
