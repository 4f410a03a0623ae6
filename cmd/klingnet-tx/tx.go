package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/sdk"
)

// ── build ───────────────────────────────────────────────────────────────

func cmdBuild(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: klingnet-tx build <kind> [--args f] --tx f [--fee-payer alias] --out f [--unsigned f]")
	}
	kind, err := msg.ParseKind(args[0])
	if err != nil {
		fatal("%v", err)
	}

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	argsFile := fs.String("args", "", "Kind-specific arguments file")
	txFile := fs.String("tx", "", "Common tx arguments file")
	feePayer := fs.String("fee-payer", "", "Wallet alias paying the fees")
	out := fs.String("out", "", "Output file for the built transaction")
	unsigned := fs.String("unsigned", "", "Also write the unsigned wire form here")
	fs.Parse(args[1:])

	if *out == "" {
		fatal("missing --out")
	}
	var specific []byte
	if kind != msg.KindRevealPK {
		specific = readFile(*argsFile, "args")
	}
	common := readFile(*txFile, "tx")

	var s *sdk.Session
	if *feePayer != "" {
		s = e.session(e.loadWallet(true))
	} else {
		s = e.session(nil)
	}
	built, err := s.Build(context.Background(), kind, specific, common, *feePayer)
	if err != nil {
		fatal("build %s: %v", kind, err)
	}

	data, err := sdk.EncodeBuilt(built)
	if err != nil {
		fatal("%v", err)
	}
	writeFile(*out, data)
	if *unsigned != "" {
		txBytes, err := built.TxBytes()
		if err != nil {
			fatal("%v", err)
		}
		writeFile(*unsigned, txBytes)
	}
	fmt.Printf("Built %s transaction %s\n", kind, built.Tx.ID())
}

// ── sign ────────────────────────────────────────────────────────────────

func cmdSign(e *env, args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	in := fs.String("in", "", "Built transaction file")
	txFile := fs.String("tx", "", "Common tx arguments file")
	key := fs.String("key", "", "Signing key (hex)")
	signer := fs.String("signer", "", "Wallet alias of the signing key")
	out := fs.String("out", "", "Output file for the signed transaction")
	fs.Parse(args)

	if *out == "" {
		fatal("missing --out")
	}
	built, err := sdk.DecodeBuilt(readFile(*in, "in"))
	if err != nil {
		fatal("%v", err)
	}
	common := readFile(*txFile, "tx")

	w := e.loadWallet(*signer != "")
	keyHex := resolveKey(w, *key, *signer)
	signed, err := e.session(w).Sign(built, common, keyHex)
	if err != nil {
		fatal("sign: %v", err)
	}
	writeFile(*out, signed)
	fmt.Printf("Signed transaction %s\n", built.Tx.ID())
}

// ── append-sig ──────────────────────────────────────────────────────────

func cmdAppendSig(e *env, args []string) {
	fs := flag.NewFlagSet("append-sig", flag.ExitOnError)
	in := fs.String("in", "", "Transaction file")
	sig := fs.String("sig", "", "Signature bundle file")
	out := fs.String("out", "", "Output file")
	fs.Parse(args)

	if *out == "" {
		fatal("missing --out")
	}
	signed, err := e.session(nil).AppendSignature(readFile(*in, "in"), readFile(*sig, "sig"))
	if err != nil {
		fatal("append signature: %v", err)
	}
	writeFile(*out, signed)
	fmt.Println("Signatures appended")
}

// ── submit ──────────────────────────────────────────────────────────────

func cmdSubmit(e *env, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	in := fs.String("in", "", "Signed transaction file")
	txFile := fs.String("tx", "", "Common tx arguments file")
	fs.Parse(args)

	res, err := e.session(nil).Submit(context.Background(), readFile(*in, "in"), readFile(*txFile, "tx"))
	if err != nil {
		fatal("submit: %v", err)
	}
	fmt.Printf("Transaction %s applied at height %d\n", res.TxID, res.Height)
}

// ── reveal ──────────────────────────────────────────────────────────────

func cmdReveal(e *env, args []string) {
	fs := flag.NewFlagSet("reveal", flag.ExitOnError)
	key := fs.String("key", "", "Signing key (hex)")
	signer := fs.String("signer", "", "Wallet alias of the signing key")
	txFile := fs.String("tx", "", "Common tx arguments file")
	fs.Parse(args)

	if *key == "" && *signer == "" {
		fatal("Usage: klingnet-tx reveal (--key hex | --signer alias) --tx f")
	}
	w := e.loadWallet(*signer != "")
	keyHex := resolveKey(w, *key, *signer)
	if err := e.session(w).EnsureRevealed(context.Background(), keyHex, readFile(*txFile, "tx")); err != nil {
		fatal("reveal: %v", err)
	}
	fmt.Println("Public key revealed")
}

// resolveKey returns the hex signing key given directly or by wallet alias.
func resolveKey(w *wallet.Wallet, key, alias string) string {
	if key != "" {
		return key
	}
	if alias == "" {
		return ""
	}
	k, err := w.FindByAlias(alias)
	if err != nil {
		fatal("%v", err)
	}
	return hex.EncodeToString(k.Serialize())
}
