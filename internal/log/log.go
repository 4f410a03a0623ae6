// Package log provides structured, colored logging for the Klingnet SDK.
// Output goes to stderr so command output on stdout stays machine readable.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	SDK      zerolog.Logger
	Signing  zerolog.Logger
	Wallet   zerolog.Logger
	RPC      zerolog.Logger
	Shielded zerolog.Logger
	Storage  zerolog.Logger
)

const consoleTime = "15:04:05"

func init() {
	SetLogger(New(console(os.Stderr), "info"))
}

// Init configures the global logger. Console output is colored unless
// jsonOutput is set. A non-empty file additionally receives JSON entries.
func Init(level string, jsonOutput bool, file string) error {
	var w io.Writer = os.Stderr
	if !jsonOutput {
		w = console(os.Stderr)
	}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		w = zerolog.MultiLevelWriter(w, f)
	}
	SetLogger(New(w, level))
	return nil
}

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTime}
}

// New returns a timestamped logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// SetLogger replaces the global logger and rebuilds the component loggers.
// Tests use it to capture output.
func SetLogger(l zerolog.Logger) {
	Logger = l
	SDK = component("sdk")
	Signing = component("signing")
	Wallet = component("wallet")
	RPC = component("rpc")
	Shielded = component("shielded")
	Storage = component("storage")
}

func component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// parseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func parseLevel(level string) zerolog.Level {
	if level == "off" {
		return zerolog.Disabled
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithTx returns l with a tx_id field.
func WithTx(l zerolog.Logger, id string) zerolog.Logger {
	return l.With().Str("tx_id", id).Logger()
}
