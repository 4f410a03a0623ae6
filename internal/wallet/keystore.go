package wallet

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/internal/storage"
	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
)

const keystoreVersion = 1

var (
	keystorePrefix = []byte("wallet/")
	metaKey        = []byte("meta")
	secretKey      = []byte("secret")
)

// keystoreMeta is the cleartext part of a stored wallet. It lets callers list
// accounts without the password.
type keystoreMeta struct {
	Version   uint8          `cbor:"1,keyasint"`
	CreatedAt int64          `cbor:"2,keyasint"`
	UpdatedAt int64          `cbor:"3,keyasint"`
	Accounts  []accountEntry `cbor:"4,keyasint"`
	Spending  []string       `cbor:"5,keyasint"`
}

type accountEntry struct {
	Alias     string `cbor:"1,keyasint"`
	PublicKey []byte `cbor:"2,keyasint"`
}

// keystoreSecrets is encrypted at rest.
type keystoreSecrets struct {
	Keys     map[string][]byte `cbor:"1,keyasint"`
	Spending map[string]string `cbor:"2,keyasint"`
}

// Keystore persists wallets in a key-value store. Each wallet lives in its
// own namespace; its secrets are encrypted with the wallet password and
// bound to the wallet name.
type Keystore struct {
	db storage.DB
}

// NewKeystore creates a keystore over db.
func NewKeystore(db storage.DB) *Keystore {
	return &Keystore{db: db}
}

func (ks *Keystore) namespace(name string) (*storage.Namespace, error) {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return nil, fmt.Errorf("invalid wallet name %q", name)
	}
	prefix := append(bytes.Clone(keystorePrefix), name+"/"...)
	return storage.NewNamespace(ks.db, prefix), nil
}

// Save writes w under name, replacing any previous version. Both records are
// written in one batch.
func (ks *Keystore) Save(name string, w *Wallet, password []byte, params EncryptionParams) error {
	ns, err := ks.namespace(name)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	meta := keystoreMeta{Version: keystoreVersion, CreatedAt: now, UpdatedAt: now}
	if prev, err := ks.readMeta(ns); err == nil {
		meta.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	secrets := keystoreSecrets{
		Keys:     make(map[string][]byte, len(w.keys)),
		Spending: make(map[string]string, len(w.spending)),
	}
	for _, acct := range w.Accounts() {
		meta.Accounts = append(meta.Accounts, accountEntry{Alias: acct.Alias, PublicKey: acct.PublicKey})
		secrets.Keys[acct.Alias] = w.keys[acct.Alias].Serialize()
	}
	for _, a := range w.SpendingAliases() {
		meta.Spending = append(meta.Spending, a)
		secrets.Spending[a] = w.spending[a].String()
	}

	plain, err := cbor.Encode(&secrets)
	if err != nil {
		return fmt.Errorf("encode wallet secrets: %w", err)
	}
	encrypted, err := Encrypt(plain, password, []byte(name), params)
	clear(plain)
	for _, k := range secrets.Keys {
		clear(k)
	}
	if err != nil {
		return fmt.Errorf("encrypt wallet: %w", err)
	}
	metaBytes, err := cbor.Encode(&meta)
	if err != nil {
		return fmt.Errorf("encode wallet metadata: %w", err)
	}

	b := ns.NewBatch()
	if err := b.Put(metaKey, metaBytes); err != nil {
		return err
	}
	if err := b.Put(secretKey, encrypted); err != nil {
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("write wallet %q: %w", name, err)
	}

	log.Wallet.Info().
		Str("wallet", name).
		Int("keys", len(meta.Accounts)).
		Int("spending_keys", len(meta.Spending)).
		Msg("Wallet saved")
	return nil
}

// Load decrypts the wallet stored under name.
func (ks *Keystore) Load(name string, password []byte) (*Wallet, error) {
	ns, err := ks.namespace(name)
	if err != nil {
		return nil, err
	}
	if _, err := ks.readMeta(ns); err != nil {
		return nil, err
	}
	encrypted, err := ns.Get(secretKey)
	if err != nil {
		return nil, fmt.Errorf("read wallet %q: %w", name, err)
	}
	plain, err := Decrypt(encrypted, password, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	defer clear(plain)

	var secrets keystoreSecrets
	if err := cbor.Decode(plain, &secrets); err != nil {
		return nil, fmt.Errorf("parse wallet %q: %w", name, err)
	}

	w := New()
	for alias, raw := range secrets.Keys {
		key, err := crypto.PrivateKeyFromBytes(raw)
		clear(raw)
		if err != nil {
			return nil, fmt.Errorf("wallet %q key %s: %w", name, alias, err)
		}
		if _, err := w.Insert(alias, key); err != nil {
			return nil, err
		}
	}
	for alias, xsk := range secrets.Spending {
		if err := w.AddSpendingKey(xsk, alias); err != nil {
			return nil, fmt.Errorf("wallet %q: %w", name, err)
		}
	}
	log.Wallet.Debug().Str("wallet", name).Int("keys", len(w.keys)).Msg("Wallet loaded")
	return w, nil
}

// Accounts returns the public account list of a stored wallet without
// decrypting it.
func (ks *Keystore) Accounts(name string) ([]Account, error) {
	ns, err := ks.namespace(name)
	if err != nil {
		return nil, err
	}
	meta, err := ks.readMeta(ns)
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(meta.Accounts))
	for _, e := range meta.Accounts {
		out = append(out, Account{Alias: e.Alias, Address: crypto.AddressFromPubKey(e.PublicKey), PublicKey: e.PublicKey})
	}
	return out, nil
}

// Exists reports whether a wallet is stored under name.
func (ks *Keystore) Exists(name string) (bool, error) {
	ns, err := ks.namespace(name)
	if err != nil {
		return false, err
	}
	return ns.Has(metaKey)
}

// List returns the names of all stored wallets, sorted.
func (ks *Keystore) List() ([]string, error) {
	var names []string
	suffix := "/" + string(metaKey)
	err := ks.db.ForEach(keystorePrefix, func(key, _ []byte) error {
		rest := string(key[len(keystorePrefix):])
		if name, ok := strings.CutSuffix(rest, suffix); ok && !strings.Contains(name, "/") {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes a stored wallet.
func (ks *Keystore) Delete(name string) error {
	ns, err := ks.namespace(name)
	if err != nil {
		return err
	}
	ok, err := ns.Has(metaKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wallet %q not found", name)
	}
	return ns.Drop()
}

func (ks *Keystore) readMeta(ns *storage.Namespace) (*keystoreMeta, error) {
	data, err := ns.Get(metaKey)
	if err != nil {
		return nil, err
	}
	var meta keystoreMeta
	if err := cbor.Decode(data, &meta); err != nil {
		return nil, fmt.Errorf("parse wallet metadata: %w", err)
	}
	if meta.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", meta.Version)
	}
	return &meta, nil
}
