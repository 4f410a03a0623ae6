package wallet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
)

func genKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	return k
}

func TestWallet_InsertAndFind(t *testing.T) {
	w := New()
	k := genKey(t)

	acct, err := w.Insert("  Alice ", k)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if acct.Alias != "alice" || acct.Address != crypto.AddressFromPubKey(k.PublicKey()) {
		t.Errorf("Insert() = %+v", acct)
	}

	got, err := w.FindByAlias("ALICE")
	if err != nil || got != k {
		t.Errorf("FindByAlias() = %v, %v", got, err)
	}
	got, err = w.FindByPublicKey(k.PublicKey())
	if err != nil || got != k {
		t.Errorf("FindByPublicKey() = %v, %v", got, err)
	}

	if _, err := w.Insert("alice", genKey(t)); !errors.Is(err, ErrAliasExists) {
		t.Errorf("duplicate Insert() error = %v, want ErrAliasExists", err)
	}
	if _, err := w.Insert(" ", genKey(t)); err == nil {
		t.Error("Insert() with empty alias should fail")
	}
}

func TestWallet_KeyNotFound(t *testing.T) {
	w := New()
	_, err := w.FindByAlias("bob")
	var knf *KeyNotFoundError
	if !errors.As(err, &knf) || knf.Ref != "bob" {
		t.Errorf("FindByAlias() error = %v, want KeyNotFoundError{bob}", err)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("KeyNotFoundError should match ErrKeyNotFound")
	}
	if _, err := w.FindByPublicKey(genKey(t).PublicKey()); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("FindByPublicKey() error = %v, want ErrKeyNotFound", err)
	}
	if _, err := w.SpendingKey("x"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("SpendingKey() error = %v, want ErrKeyNotFound", err)
	}
}

func TestWallet_FindFeePayerKey(t *testing.T) {
	w := New()
	payer := genKey(t)
	w.Insert("gas", payer)

	got, err := w.FindFeePayerKey(payer.PublicKey())
	if err != nil {
		t.Fatalf("FindFeePayerKey() error: %v", err)
	}
	if !bytes.Equal(got.PublicKey(), payer.PublicKey()) {
		t.Error("FindFeePayerKey() returned the wrong key")
	}

	shielded := crypto.ShieldedTxKey()
	got, err = w.FindFeePayerKey(shielded.PublicKey())
	if err != nil {
		t.Fatalf("FindFeePayerKey(shielded) error: %v", err)
	}
	if !bytes.Equal(got.PublicKey(), shielded.PublicKey()) {
		t.Error("shielded fee payer should resolve to the shielded key")
	}

	if _, err := w.FindFeePayerKey(nil); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("unset fee payer error = %v, want ErrKeyNotFound", err)
	}
	if _, err := w.FindFeePayerKey(genKey(t).PublicKey()); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("unknown fee payer error = %v, want ErrKeyNotFound", err)
	}
}

func TestWallet_ImportMnemonic(t *testing.T) {
	w := New()
	acct, err := w.ImportMnemonic(mnemonic12, "TREZOR", "main", 0, 0)
	if err != nil {
		t.Fatalf("ImportMnemonic() error: %v", err)
	}
	hd, _ := testMaster(t).DeriveAccount(0, ChangeExternal, 0)
	if !bytes.Equal(acct.PublicKey, hd.PublicKeyBytes()) {
		t.Error("imported key should sit at m/44'/8888'/0'/0/0")
	}

	if _, err := w.ImportMnemonic("bogus words", "", "other", 0, 0); err == nil {
		t.Error("ImportMnemonic() should reject an invalid mnemonic")
	}
}

func TestWallet_AddSpendingKey(t *testing.T) {
	w := New()
	xprv := testXprv(t)
	if err := w.AddSpendingKey(xprv, "Shielded"); err != nil {
		t.Fatalf("AddSpendingKey() error: %v", err)
	}
	k, err := w.SpendingKey("shielded")
	if err != nil {
		t.Fatalf("SpendingKey() error: %v", err)
	}
	if k.String() != xprv {
		t.Error("stored spending key differs")
	}

	if err := w.AddSpendingKey(xprv, "shielded"); !errors.Is(err, ErrAliasExists) {
		t.Errorf("duplicate AddSpendingKey() error = %v, want ErrAliasExists", err)
	}
	pub, _ := ParseExtendedKey(xprv)
	if err := w.AddSpendingKey(pub.Neuter().String(), "watch"); err == nil {
		t.Error("AddSpendingKey() should reject a public extended key")
	}
	if err := w.AddSpendingKey("garbage", "bad"); err == nil {
		t.Error("AddSpendingKey() should reject garbage")
	}
	if got := w.SpendingAliases(); len(got) != 1 || got[0] != "shielded" {
		t.Errorf("SpendingAliases() = %v", got)
	}
}

func TestWallet_AccountsSorted(t *testing.T) {
	w := New()
	for _, a := range []string{"carol", "alice", "bob"} {
		w.Insert(a, genKey(t))
	}
	accts := w.Accounts()
	if len(accts) != 3 || accts[0].Alias != "alice" || accts[2].Alias != "carol" {
		t.Errorf("Accounts() = %+v", accts)
	}
}
