// sign_bundle.go signs a transaction offline and writes a signature bundle
// for `klingnet-tx append-sig`. The key file holds a hex-encoded private key.
// Usage: go run scripts/sign_bundle.go <keyfile> <txfile> <outfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: sign_bundle <keyfile> <txfile> <outfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		die(err)
	}
	keyBytes, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		die(err)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		die(err)
	}
	txBytes, err := os.ReadFile(os.Args[2])
	if err != nil {
		die(err)
	}
	t, err := tx.Decode(txBytes)
	if err != nil {
		die(err)
	}
	if err := t.ProtocolFilter(); err != nil {
		die(err)
	}

	// Raw section: the header hash.
	rawIdx := []uint8{0}
	rawSig := sign(key, t.SecHashes()[:1])
	sec, err := t.SignatureSection(key.PublicKey(), rawIdx, rawSig)
	if err != nil {
		die(err)
	}
	t.AddSection(sec)

	// Wrapper section: every hash, the raw section above included.
	hashes := t.SecHashes()
	wrapperIdx := make([]uint8, len(hashes))
	for i := range wrapperIdx {
		wrapperIdx[i] = uint8(i)
	}
	wrapperSig := sign(key, hashes)

	bundle, err := msg.Encode(&msg.SignatureMsg{
		PubKey:           key.PublicKey(),
		RawIndices:       rawIdx,
		RawSignature:     rawSig,
		WrapperIndices:   wrapperIdx,
		WrapperSignature: wrapperSig,
	})
	if err != nil {
		die(err)
	}
	if err := os.WriteFile(os.Args[3], bundle, 0600); err != nil {
		die(err)
	}

	pub := key.PublicKey()
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("address=%s\n", crypto.AddressFromPubKey(pub).String())
	fmt.Printf("tx=%s\n", t.ID())
}

func sign(key *crypto.PrivateKey, targets []types.Hash) []byte {
	s := &tx.Signature{Targets: targets}
	m := s.Message()
	b, err := key.Sign(m[:])
	if err != nil {
		die(err)
	}
	return b
}

func die(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
