package sdk

import (
	"context"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

func TestEnsureRevealed_Idempotent(t *testing.T) {
	k := genKey(t)
	client := newFakeClient()
	s := New(client, nil, testNativeToken)
	common := commonArgs(t, k)

	if err := s.EnsureRevealed(context.Background(), keyHex(k), common); err != nil {
		t.Fatalf("first EnsureRevealed: %v", err)
	}
	if len(client.submitted) != 1 {
		t.Fatalf("submissions = %d, want 1", len(client.submitted))
	}
	if err := s.EnsureRevealed(context.Background(), keyHex(k), common); err != nil {
		t.Fatalf("second EnsureRevealed: %v", err)
	}
	if len(client.submitted) != 1 {
		t.Fatalf("second call submitted again: %d submissions", len(client.submitted))
	}
	if client.revealAsks != 2 {
		t.Errorf("reveal queries = %d, want 2", client.revealAsks)
	}

	got, err := tx.Decode(client.submitted[0])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if code, _ := got.Code(); string(code) != "tx_reveal-pk" {
		t.Errorf("submitted %q, want a reveal-pk transaction", code)
	}
	sigs := got.Signatures()
	if len(sigs) != 2 {
		t.Fatalf("signature sections = %d, want raw and wrapper", len(sigs))
	}
	if *sigs[0].Signer.Owner != crypto.AddressFromPubKey(k.PublicKey()) {
		t.Error("reveal not signed for the key's address")
	}
}

func TestEnsureRevealed_AlreadyRevealed(t *testing.T) {
	k := genKey(t)
	client := newFakeClient()
	client.revealed[crypto.AddressFromPubKey(k.PublicKey())] = true
	s := New(client, nil, testNativeToken)

	if err := s.EnsureRevealed(context.Background(), keyHex(k), commonArgs(t, k)); err != nil {
		t.Fatalf("EnsureRevealed: %v", err)
	}
	if len(client.submitted) != 0 {
		t.Fatal("nothing should be submitted for a revealed key")
	}
}

func TestEnsureRevealed_QueryError(t *testing.T) {
	k := genKey(t)
	client := newFakeClient()
	client.revealErr = errors.New("node unreachable")
	s := New(client, nil, testNativeToken)

	err := s.EnsureRevealed(context.Background(), keyHex(k), commonArgs(t, k))
	var qe *QueryError
	if !errors.As(err, &qe) || !errors.Is(err, client.revealErr) {
		t.Fatalf("err = %v, want *QueryError wrapping the client error", err)
	}
	if len(client.submitted) != 0 {
		t.Fatal("submitted after a failed query")
	}
}

func TestEnsureRevealed_SubmitErrorNotRetried(t *testing.T) {
	k := genKey(t)
	client := newFakeClient()
	client.submitErr = errors.New("mempool full")
	s := New(client, nil, testNativeToken)

	err := s.EnsureRevealed(context.Background(), keyHex(k), commonArgs(t, k))
	if err != client.submitErr {
		t.Fatalf("err = %v, want the submit error unmodified", err)
	}
	if len(client.submitted) != 1 {
		t.Fatalf("submissions = %d, want exactly 1", len(client.submitted))
	}
}

func TestEnsureRevealed_WrongKey(t *testing.T) {
	k, other := genKey(t), genKey(t)
	client := newFakeClient()
	s := New(client, nil, testNativeToken)

	err := s.EnsureRevealed(context.Background(), keyHex(other), commonArgs(t, k))
	if !errors.Is(err, wallet.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
	if len(client.submitted) != 0 {
		t.Fatal("submitted a reveal signed by the wrong key")
	}
}

func TestEnsureRevealed_NoSigningKeys(t *testing.T) {
	s := New(newFakeClient(), nil, testNativeToken)
	var be *BuilderError
	if err := s.EnsureRevealed(context.Background(), "", commonArgs(t)); !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BuilderError", err)
	}
}
