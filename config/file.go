package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"
)

// LoadFile reads a key = value config file. Blank lines and lines starting
// with # are skipped; values may be quoted. A missing file yields no values.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", n)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		values[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return values, scanner.Err()
}

// keyAliases are short forms accepted in config files.
var keyAliases = map[string]string{
	"rpc":    "rpc.url",
	"wallet": "wallet.name",
}

var durationType = reflect.TypeFor[time.Duration]()

// ApplyFileConfig sets every field of cfg whose conf tag appears in values.
// Unknown keys are ignored.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	fields := make(map[string]reflect.Value)
	collectFields(reflect.ValueOf(cfg).Elem(), fields)

	for key, value := range values {
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		f, ok := fields[key]
		if !ok {
			continue
		}
		if err := setField(f, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// collectFields indexes the settable fields of v by conf tag, descending
// into nested sections.
func collectFields(v reflect.Value, out map[string]reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		f := v.Field(i)
		if tag := t.Field(i).Tag.Get("conf"); tag != "" {
			out[tag] = f
		} else if f.Kind() == reflect.Struct {
			collectFields(f, out)
		}
	}
}

func setField(f reflect.Value, value string) error {
	switch {
	case f.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
	case f.Kind() == reflect.Bool:
		f.SetBool(parseBool(value))
	case f.Kind() == reflect.String:
		f.SetString(value)
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}

// parseBool accepts true/1/yes/on in any case; everything else is false.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	cfg := Default(network)
	content := `# Klingnet transaction client configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.klingnet-tx)
# datadir = ~/.klingnet-tx

# ============================================================================
# Node RPC
# ============================================================================

rpc.url = ` + cfg.RPC.URL + `
rpc.timeout = ` + cfg.RPC.Timeout.String() + `

# How often to check whether a submitted transaction was applied, and how
# long to wait in total.
rpc.pollinterval = ` + cfg.RPC.PollInterval.String() + `
rpc.inclusiontimeout = ` + cfg.RPC.InclusionTimeout.String() + `

# ============================================================================
# Chain
# ============================================================================

chain.id = ` + cfg.Chain.ID + `
# Fee token address (default: the native coin)
# chain.nativetoken =

# ============================================================================
# Wallet
# ============================================================================

wallet.name = ` + cfg.Wallet.Name + `

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
