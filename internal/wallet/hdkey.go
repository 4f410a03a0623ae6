package wallet

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
)

// Account keys live at m/44'/8888'/account'/change/index.
const (
	purposeBIP44 = bip32.FirstHardenedChild + 44
	coinType     = bip32.FirstHardenedChild + 8888

	// ChangeExternal is the receiving chain, used for signing accounts.
	ChangeExternal = 0
)

// HDKey is a BIP-32 extended key. Signing accounts are derived from a
// master HDKey; spending keys are stored as serialized private HDKeys.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master key from a BIP-39 seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// ParseExtendedKey reads a base58 extended key, private or public.
func ParseExtendedKey(s string) (*HDKey, error) {
	key, err := bip32.B58Deserialize(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse extended key: %w", err)
	}
	return &HDKey{key: key}, nil
}

func (k *HDKey) String() string {
	return k.key.B58Serialize()
}

// DeriveChild derives the child at index. Add bip32.FirstHardenedChild for
// hardened derivation.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DeriveAccount derives the signing key of an account.
func (k *HDKey) DeriveAccount(account, change, index uint32) (*HDKey, error) {
	cur := k
	for _, i := range []uint32{purposeBIP44, coinType, bip32.FirstHardenedChild + account, change, index} {
		next, err := cur.DeriveChild(i)
		if err != nil {
			return nil, fmt.Errorf("derive account %d/%d/%d: %w", account, change, index, err)
		}
		cur = next
	}
	return cur, nil
}

// IsPrivate reports whether the key can sign.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// PrivateKeyBytes returns the 32-byte secret, or nil for a public key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 may pad the secret to 33 bytes with a leading zero.
	raw := k.key.Key
	return raw[len(raw)-32:]
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Signer returns the signing key held by k.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("extended key is public only")
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// Neuter returns the public half of k.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}
