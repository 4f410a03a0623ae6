// klingnet-tx builds, signs and submits Klingnet transactions.
//
// Payloads move between steps as files of versioned CBOR, so each step can
// run in a different process or on a different machine.
package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/Klingon-tech/klingnet-sdk/config"
	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-sdk/internal/storage"
	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/sdk"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
	"golang.org/x/term"
)

const version = "0.1.0"

// env is what every command needs.
type env struct {
	cfg    *config.Config
	client *rpcclient.Client
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		config.PrintUsage(os.Stdout)
		return
	}
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("klingnet-tx version %s\n", version)
		return
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	args := flags.Args
	if len(args) == 0 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	e := &env{
		cfg: cfg,
		client: rpcclient.NewWithOptions(cfg.RPC.URL, rpcclient.Options{
			Timeout:          cfg.RPC.Timeout,
			PollInterval:     cfg.RPC.PollInterval,
			InclusionTimeout: cfg.RPC.InclusionTimeout,
		}),
	}

	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "build":
		cmdBuild(e, cmdArgs)
	case "sign":
		cmdSign(e, cmdArgs)
	case "append-sig":
		cmdAppendSig(e, cmdArgs)
	case "submit":
		cmdSubmit(e, cmdArgs)
	case "reveal":
		cmdReveal(e, cmdArgs)
	case "wallet":
		cmdWallet(e, cmdArgs)
	case "shielded":
		cmdShielded(e, cmdArgs)
	case "help":
		config.PrintUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
}

// session opens a session over w. A nil wallet starts empty.
func (e *env) session(w *wallet.Wallet) *sdk.Session {
	native, err := e.cfg.NativeToken()
	if err != nil {
		fatal("%v", err)
	}
	return sdk.New(e.client, w, native)
}

// openKeystore opens the on-disk keystore. The caller closes the returned DB.
func (e *env) openKeystore() (*wallet.Keystore, storage.DB) {
	db, err := storage.NewBadger(e.cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	return wallet.NewKeystore(db), db
}

// loadWallet unlocks the configured wallet. When it does not exist and
// required is false, an empty wallet is returned.
func (e *env) loadWallet(required bool) *wallet.Wallet {
	ks, db := e.openKeystore()
	defer db.Close()

	name := e.cfg.Wallet.Name
	exists, err := ks.Exists(name)
	if err != nil {
		fatal("open wallet: %v", err)
	}
	if !exists {
		if required {
			fatal("wallet %q not found", name)
		}
		return wallet.New()
	}
	password, err := readPassword(fmt.Sprintf("Password for wallet %q: ", name))
	if err != nil {
		fatal("read password: %v", err)
	}
	w, err := ks.Load(name, password)
	if err != nil {
		fatal("unlock wallet: %v", err)
	}
	return w
}

func readFile(path, what string) []byte {
	if path == "" {
		fatal("missing --%s", what)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read %s: %v", what, err)
	}
	return data
}

func writeFile(path string, data []byte) {
	if err := os.WriteFile(path, data, 0600); err != nil {
		fatal("write %s: %v", path, err)
	}
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
