package sdk

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"slices"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

func TestBuild_SelectsMatchingBuilder(t *testing.T) {
	k := genKey(t)
	specific := validSpecific(t)

	for _, kind := range msg.Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			rb := &recordingBuilders{}
			s := NewWithBuilders(newFakeClient(), rb, nil, testNativeToken)

			built, err := s.Build(context.Background(), kind, specific[kind], commonArgs(t, k), "")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !slices.Equal(rb.calls, []msg.Kind{kind}) {
				t.Fatalf("calls = %v, want [%s]", rb.calls, kind)
			}
			code, _ := built.Tx.Code()
			if string(code) != "tx_"+kind.String() {
				t.Errorf("code = %q", code)
			}
			switch kind {
			case msg.KindVoteProposal:
				if rb.epoch != 7 {
					t.Errorf("vote built at epoch %d, want the queried epoch 7", rb.epoch)
				}
			case msg.KindRevealPK:
				if !bytes.Equal(rb.pubKey, k.PublicKey()) {
					t.Error("reveal-pk should reveal the first signing key")
				}
			}
		})
	}
}

func TestBuild_MalformedSpecificArgs(t *testing.T) {
	k := genKey(t)
	specific := validSpecific(t)
	structures := map[msg.Kind]string{
		msg.KindBond:              "bond args",
		msg.KindUnbond:            "unbond args",
		msg.KindWithdraw:          "withdraw args",
		msg.KindTransfer:          "transfer args",
		msg.KindIBCTransfer:       "ibc transfer args",
		msg.KindEthBridgeTransfer: "eth bridge transfer args",
		msg.KindRevealPK:          "reveal pk args",
		msg.KindVoteProposal:      "vote proposal args",
	}
	// {0: 1, 1: {}}: right version, field 1 of the wrong type for every kind.
	mismatched, _ := hex.DecodeString("a2000101a0")

	for _, kind := range msg.Kinds {
		inputs := map[string][]byte{"type mismatch": mismatched}
		if valid := specific[kind]; len(valid) > 0 {
			inputs["truncated"] = valid[:len(valid)-1]
		} else {
			inputs["truncated"] = []byte{0xa2}
		}
		for name, in := range inputs {
			t.Run(kind.String()+"/"+name, func(t *testing.T) {
				rb := &recordingBuilders{}
				s := NewWithBuilders(newFakeClient(), rb, nil, testNativeToken)

				_, err := s.Build(context.Background(), kind, in, commonArgs(t, k), "")
				var de *msg.DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("err = %v, want *msg.DecodeError", err)
				}
				if de.Structure != structures[kind] {
					t.Errorf("structure = %q, want %q", de.Structure, structures[kind])
				}
				if len(rb.calls) != 0 {
					t.Errorf("builder called: %v", rb.calls)
				}
			})
		}
	}
}

func TestBuild_MalformedCommonArgs(t *testing.T) {
	rb := &recordingBuilders{}
	s := NewWithBuilders(newFakeClient(), rb, nil, testNativeToken)

	_, err := s.Build(context.Background(), msg.KindBond, validSpecific(t)[msg.KindBond], []byte{0xa1, 0x00}, "")
	var de *msg.DecodeError
	if !errors.As(err, &de) || de.Structure != "tx args" {
		t.Fatalf("err = %v, want tx args decode error", err)
	}
	if len(rb.calls) != 0 {
		t.Error("builder called")
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	s := NewWithBuilders(newFakeClient(), &recordingBuilders{}, nil, testNativeToken)
	_, err := s.Build(context.Background(), msg.Kind(42), nil, commonArgs(t, genKey(t)), "")
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestBuild_FeePayerHint(t *testing.T) {
	k, payer := genKey(t), genKey(t)
	w := wallet.New()
	if _, err := w.Insert("gas", payer); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	rb := &recordingBuilders{}
	s := NewWithBuilders(newFakeClient(), rb, w, testNativeToken)
	specific := validSpecific(t)[msg.KindWithdraw]

	t.Run("known alias", func(t *testing.T) {
		if _, err := s.Build(context.Background(), msg.KindWithdraw, specific, commonArgs(t, k), "GAS"); err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !bytes.Equal(rb.common.FeePayer, payer.PublicKey()) {
			t.Error("hint did not set the fee payer")
		}
	})

	t.Run("unknown alias", func(t *testing.T) {
		rb.calls = nil
		_, err := s.Build(context.Background(), msg.KindWithdraw, specific, commonArgs(t, k), "nobody")
		if !errors.Is(err, wallet.ErrKeyNotFound) {
			t.Fatalf("err = %v, want ErrKeyNotFound", err)
		}
		if len(rb.calls) != 0 {
			t.Error("builder called")
		}
	})
}

func TestBuild_EpochQueryError(t *testing.T) {
	client := newFakeClient()
	client.epochErr = errors.New("connection refused")
	rb := &recordingBuilders{}
	s := NewWithBuilders(client, rb, nil, testNativeToken)

	_, err := s.Build(context.Background(), msg.KindVoteProposal, validSpecific(t)[msg.KindVoteProposal], commonArgs(t, genKey(t)), "")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
	if !errors.Is(err, client.epochErr) {
		t.Error("query error should wrap the client error")
	}
	if len(rb.calls) != 0 {
		t.Error("builder called after failed epoch query")
	}
}

func TestBuild_BuilderErrorVerbatim(t *testing.T) {
	boom := errors.New("invalid validator")
	rb := &recordingBuilders{err: boom}
	s := NewWithBuilders(newFakeClient(), rb, nil, testNativeToken)

	_, err := s.Build(context.Background(), msg.KindBond, validSpecific(t)[msg.KindBond], commonArgs(t, genKey(t)), "")
	var be *BuilderError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BuilderError", err)
	}
	if be.Kind != msg.KindBond || be.Err != boom {
		t.Errorf("BuilderError = %+v", be)
	}
	if len(rb.calls) != 1 {
		t.Errorf("builder called %d times, want 1", len(rb.calls))
	}
}

func TestBuild_RevealWithoutSigningKeys(t *testing.T) {
	s := NewWithBuilders(newFakeClient(), &recordingBuilders{}, nil, testNativeToken)
	_, err := s.Build(context.Background(), msg.KindRevealPK, nil, commonArgs(t), "")
	var be *BuilderError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BuilderError", err)
	}
}

func TestBuildBytes(t *testing.T) {
	s := New(newFakeClient(), nil, testNativeToken)
	k := genKey(t)

	b, err := s.BuildBytes(context.Background(), msg.KindBond, validSpecific(t)[msg.KindBond], commonArgs(t, k), "")
	if err != nil {
		t.Fatalf("BuildBytes: %v", err)
	}
	got, err := tx.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Signatures()) != 0 {
		t.Error("unsigned transaction carries signatures")
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEncodeBuilt(t *testing.T) {
	s := New(newFakeClient(), nil, testNativeToken)
	k := genKey(t)
	built, err := s.Build(context.Background(), msg.KindBond, validSpecific(t)[msg.KindBond], commonArgs(t, k), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := EncodeBuilt(built)
	if err != nil {
		t.Fatalf("EncodeBuilt: %v", err)
	}
	got, err := DecodeBuilt(data)
	if err != nil {
		t.Fatalf("DecodeBuilt: %v", err)
	}
	if got.Tx.HeaderHash() != built.Tx.HeaderHash() {
		t.Error("header hash changed")
	}
	if _, ok := got.SigningData.AccountPublicKeysMap.Index(k.PublicKey()); !ok {
		t.Error("account key map lost")
	}

	var de *msg.DecodeError
	if _, err := DecodeBuilt(data[:len(data)-2]); !errors.As(err, &de) || de.Structure != "built tx" {
		t.Errorf("truncated: err = %v, want built tx decode error", err)
	}
}
