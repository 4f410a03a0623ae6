// Package wallet implements the SDK keyring: aliased signing keys, shielded
// spending keys, HD derivation from mnemonics and encrypted persistence.
package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
)

// Wallet is an in-memory keyring. It is not safe for concurrent use; the
// owning session serializes access.
type Wallet struct {
	keys     map[string]*crypto.PrivateKey
	spending map[string]*HDKey
}

// New returns an empty wallet.
func New() *Wallet {
	return &Wallet{
		keys:     make(map[string]*crypto.PrivateKey),
		spending: make(map[string]*HDKey),
	}
}

func normalizeAlias(alias string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(alias))
	if a == "" {
		return "", fmt.Errorf("empty alias")
	}
	return a, nil
}

// Insert adds a signing key under alias. Aliases are case-insensitive.
func (w *Wallet) Insert(alias string, key *crypto.PrivateKey) (Account, error) {
	a, err := normalizeAlias(alias)
	if err != nil {
		return Account{}, err
	}
	if _, ok := w.keys[a]; ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAliasExists, a)
	}
	w.keys[a] = key
	log.Wallet.Debug().Str("alias", a).Msg("Key inserted")
	return accountOf(a, key), nil
}

// ImportMnemonic derives the key at m/44'/8888'/account'/0/index from a
// BIP-39 mnemonic and inserts it under alias.
func (w *Wallet) ImportMnemonic(mnemonic, passphrase, alias string, account, index uint32) (Account, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return Account{}, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return Account{}, err
	}
	hd, err := master.DeriveAccount(account, ChangeExternal, index)
	if err != nil {
		return Account{}, err
	}
	key, err := hd.Signer()
	if err != nil {
		return Account{}, err
	}
	return w.Insert(alias, key)
}

// AddSpendingKey parses a serialized extended spending key and stores it
// under alias.
func (w *Wallet) AddSpendingKey(xsk, alias string) error {
	a, err := normalizeAlias(alias)
	if err != nil {
		return err
	}
	if _, ok := w.spending[a]; ok {
		return fmt.Errorf("%w: %s", ErrAliasExists, a)
	}
	key, err := ParseExtendedKey(xsk)
	if err != nil {
		return err
	}
	if !key.IsPrivate() {
		return fmt.Errorf("spending key %s: extended key is public only", a)
	}
	w.spending[a] = key
	log.Wallet.Debug().Str("alias", a).Msg("Spending key added")
	return nil
}

// SpendingKey returns the spending key stored under alias.
func (w *Wallet) SpendingKey(alias string) (*HDKey, error) {
	a, _ := normalizeAlias(alias)
	key, ok := w.spending[a]
	if !ok {
		return nil, &KeyNotFoundError{Ref: alias}
	}
	return key, nil
}

// FindByAlias returns the signing key stored under alias.
func (w *Wallet) FindByAlias(alias string) (*crypto.PrivateKey, error) {
	a, _ := normalizeAlias(alias)
	key, ok := w.keys[a]
	if !ok {
		return nil, &KeyNotFoundError{Ref: alias}
	}
	return key, nil
}

// FindByPublicKey returns the signing key whose public key is pubKey.
func (w *Wallet) FindByPublicKey(pubKey []byte) (*crypto.PrivateKey, error) {
	for _, key := range w.keys {
		if bytes.Equal(key.PublicKey(), pubKey) {
			return key, nil
		}
	}
	return nil, &KeyNotFoundError{Ref: hex.EncodeToString(pubKey)}
}

// FindFeePayerKey resolves the key able to sign fees for feePayer, a public
// key taken from a transaction's signing data. The well-known shielded
// source key is always available.
func (w *Wallet) FindFeePayerKey(feePayer []byte) (crypto.Signer, error) {
	if len(feePayer) == 0 {
		return nil, &KeyNotFoundError{Ref: "fee payer (unset)"}
	}
	if shielded := crypto.ShieldedTxKey(); bytes.Equal(shielded.PublicKey(), feePayer) {
		return shielded, nil
	}
	return w.FindByPublicKey(feePayer)
}

// Accounts lists the signing keys, sorted by alias.
func (w *Wallet) Accounts() []Account {
	out := make([]Account, 0, len(w.keys))
	for a, key := range w.keys {
		out = append(out, accountOf(a, key))
	}
	slices.SortFunc(out, func(x, y Account) int { return strings.Compare(x.Alias, y.Alias) })
	return out
}

// SpendingAliases lists the spending key aliases, sorted.
func (w *Wallet) SpendingAliases() []string {
	out := make([]string, 0, len(w.spending))
	for a := range w.spending {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func accountOf(alias string, key *crypto.PrivateKey) Account {
	pub := key.PublicKey()
	return Account{Alias: alias, Address: crypto.AddressFromPubKey(pub), PublicKey: pub}
}
