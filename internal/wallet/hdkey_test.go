package wallet

import (
	"bytes"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
)

// testSeed returns the BIP-39 seed of the 12-word test mnemonic with
// passphrase "TREZOR".
func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(mnemonic12, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func testMaster(t *testing.T) *HDKey {
	t.Helper()
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	return master
}

// testXprv returns a serialized private extended key usable as a spending key.
func testXprv(t *testing.T) string {
	t.Helper()
	k, err := testMaster(t).DeriveChild(purposeBIP44)
	if err != nil {
		t.Fatalf("DeriveChild() error: %v", err)
	}
	return k.String()
}

func TestNewMasterKey(t *testing.T) {
	master := testMaster(t)
	if !master.IsPrivate() {
		t.Error("master key is public only")
	}
	if len(master.PrivateKeyBytes()) != 32 || len(master.PublicKeyBytes()) != 33 {
		t.Errorf("key sizes = %d/%d, want 32/33", len(master.PrivateKeyBytes()), len(master.PublicKeyBytes()))
	}
	for _, n := range []int{0, 32, 128} {
		if _, err := NewMasterKey(make([]byte, n)); err == nil {
			t.Errorf("NewMasterKey(%d bytes) should fail", n)
		}
	}
}

func TestDeriveAccount(t *testing.T) {
	master := testMaster(t)
	key, err := master.DeriveAccount(0, ChangeExternal, 0)
	if err != nil {
		t.Fatalf("DeriveAccount() error: %v", err)
	}

	// Same path, one step at a time.
	cur := master
	for _, i := range []uint32{purposeBIP44, coinType, bip32.FirstHardenedChild, 0, 0} {
		if cur, err = cur.DeriveChild(i); err != nil {
			t.Fatalf("DeriveChild(%d) error: %v", i, err)
		}
	}
	if !bytes.Equal(cur.PrivateKeyBytes(), key.PrivateKeyBytes()) {
		t.Error("DeriveAccount() differs from m/44'/8888'/0'/0/0")
	}

	for _, p := range [][3]uint32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		other, err := master.DeriveAccount(p[0], p[1], p[2])
		if err != nil {
			t.Fatalf("DeriveAccount(%v) error: %v", p, err)
		}
		if bytes.Equal(key.PrivateKeyBytes(), other.PrivateKeyBytes()) {
			t.Errorf("DeriveAccount(%v) equals account 0/0/0", p)
		}
	}
}

func TestParseExtendedKey(t *testing.T) {
	xprv := testXprv(t)
	k, err := ParseExtendedKey("  " + xprv + "\n")
	if err != nil {
		t.Fatalf("ParseExtendedKey() error: %v", err)
	}
	if !k.IsPrivate() || k.String() != xprv {
		t.Error("parsed key should roundtrip to the same serialization")
	}

	pub, err := ParseExtendedKey(k.Neuter().String())
	if err != nil {
		t.Fatalf("ParseExtendedKey(xpub) error: %v", err)
	}
	if pub.IsPrivate() {
		t.Error("xpub should parse as public only")
	}

	if _, err := ParseExtendedKey("xprv-not-base58"); err == nil {
		t.Error("ParseExtendedKey() should reject garbage")
	}
}

func TestNeuter_PublicDerivation(t *testing.T) {
	master := testMaster(t)
	privChild, _ := master.DeriveChild(0)
	pubChild, err := master.Neuter().DeriveChild(0)
	if err != nil {
		t.Fatalf("DeriveChild from public key error: %v", err)
	}
	if !bytes.Equal(privChild.PublicKeyBytes(), pubChild.PublicKeyBytes()) {
		t.Error("public derivation should match neutered private derivation")
	}
	if pubChild.PrivateKeyBytes() != nil {
		t.Error("public key should have no private bytes")
	}
	if _, err := pubChild.Signer(); err == nil {
		t.Error("Signer() from public key should return error")
	}
}

func TestSigner(t *testing.T) {
	key, _ := testMaster(t).DeriveAccount(0, ChangeExternal, 0)
	signer, err := key.Signer()
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	hash := crypto.Hash([]byte("test message"))
	sig, err := signer.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !crypto.VerifySignature(hash[:], sig, signer.PublicKey()) {
		t.Error("signature from HD-derived key should verify")
	}
}
