package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Klingon-tech/klingnet-sdk/internal/shielded"
	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
)

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: klingnet-tx wallet <new|import|add-spending-key|list>")
	}
	switch args[0] {
	case "new":
		walletNew(e, args[1:])
	case "import":
		walletImport(e, args[1:])
	case "add-spending-key":
		walletAddSpendingKey(e, args[1:])
	case "list":
		walletList(e)
	default:
		fatal("unknown wallet command: %s", args[0])
	}
}

func walletNew(e *env, args []string) {
	fs := flag.NewFlagSet("wallet new", flag.ExitOnError)
	alias := fs.String("alias", "default", "Alias of the first account")
	fs.Parse(args)

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	acc := createFromMnemonic(e, mnemonic, *alias)

	fmt.Println("Write down your recovery phrase and keep it safe:")
	fmt.Println()
	fmt.Printf("  %s\n", mnemonic)
	fmt.Println()
	fmt.Printf("Wallet %q created, account %s: %s\n", e.cfg.Wallet.Name, acc.Alias, acc.Address)
}

func walletImport(e *env, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	alias := fs.String("alias", "default", "Alias of the imported account")
	fs.Parse(args)

	fmt.Fprint(os.Stderr, "Recovery phrase: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fatal("read mnemonic: %v", err)
	}
	mnemonic := strings.TrimSpace(line)
	if !wallet.ValidateMnemonic(mnemonic) {
		fatal("invalid recovery phrase")
	}
	acc := createFromMnemonic(e, mnemonic, *alias)
	fmt.Printf("Wallet %q imported, account %s: %s\n", e.cfg.Wallet.Name, acc.Alias, acc.Address)
}

// createFromMnemonic derives the first account of mnemonic and stores the
// result as a new wallet.
func createFromMnemonic(e *env, mnemonic, alias string) wallet.Account {
	ks, db := e.openKeystore()
	defer db.Close()

	name := e.cfg.Wallet.Name
	exists, err := ks.Exists(name)
	if err != nil {
		fatal("open wallet: %v", err)
	}
	if exists {
		fatal("wallet %q already exists", name)
	}

	w := wallet.New()
	acc, err := w.ImportMnemonic(mnemonic, "", alias, 0, 0)
	if err != nil {
		fatal("derive account: %v", err)
	}
	password := newPassword()
	if err := ks.Save(name, w, password, wallet.DefaultParams()); err != nil {
		fatal("save wallet: %v", err)
	}
	return acc
}

func walletAddSpendingKey(e *env, args []string) {
	fs := flag.NewFlagSet("wallet add-spending-key", flag.ExitOnError)
	alias := fs.String("alias", "", "Alias for the spending key")
	fs.Parse(args)

	if *alias == "" || fs.NArg() != 1 {
		fatal("Usage: klingnet-tx wallet add-spending-key --alias name <xsk>")
	}

	ks, db := e.openKeystore()
	defer db.Close()

	name := e.cfg.Wallet.Name
	password, err := readPassword(fmt.Sprintf("Password for wallet %q: ", name))
	if err != nil {
		fatal("read password: %v", err)
	}
	w, err := ks.Load(name, password)
	if err != nil {
		fatal("unlock wallet: %v", err)
	}
	if err := e.session(w).AddSpendingKey(fs.Arg(0), *alias); err != nil {
		fatal("add spending key: %v", err)
	}
	if err := ks.Save(name, w, password, wallet.DefaultParams()); err != nil {
		fatal("save wallet: %v", err)
	}
	fmt.Printf("Spending key %q added\n", *alias)
}

func walletList(e *env) {
	ks, db := e.openKeystore()
	defer db.Close()

	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets")
		return
	}
	for _, name := range names {
		accounts, err := ks.Accounts(name)
		if err != nil {
			fatal("wallet %q: %v", name, err)
		}
		fmt.Printf("%s:\n", name)
		for _, acc := range accounts {
			fmt.Printf("  %-12s %s\n", acc.Alias, acc.Address)
		}
	}
}

func newPassword() []byte {
	password, err := readPassword("New password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

// ── shielded ────────────────────────────────────────────────────────────

// cmdShielded checks that a parameter set loads. Nothing is stored; the
// cache lives only as long as the process.
func cmdShielded(e *env, args []string) {
	if len(args) < 1 || args[0] != "install" {
		fatal("Usage: klingnet-tx shielded install <spend> <output> <convert>\n" +
			"Checks that the files form a loadable parameter set. Nothing is persisted.")
	}
	paths := args[1:]
	if len(paths) != shielded.ParamCount {
		fatal("shielded install takes exactly %d parameter files, got %d", shielded.ParamCount, len(paths))
	}

	blobs := make([][]byte, len(paths))
	for i, p := range paths {
		blobs[i] = readFile(p, "params")
	}

	s := e.session(nil)
	s.InstallShieldedParams(slices.Values(blobs))
	p, ok := s.ShieldedParams()
	if !ok {
		fatal("shielded parameters not loaded")
	}
	fmt.Printf("Shielded parameter set OK, not persisted (spend %d, output %d, convert %d bytes)\n",
		len(p.Spend), len(p.Output), len(p.Convert))
}
