package tx

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

func TestProtocolFilter_StripsShieldedBuilder(t *testing.T) {
	tx := NewBuilder("klingnet-test").
		SetCode([]byte("tx_transfer")).
		AddShieldedBuilder([]byte("meta")).
		SetData([]byte("payload")).
		Build()

	if err := tx.ProtocolFilter(); err != nil {
		t.Fatalf("ProtocolFilter() error: %v", err)
	}
	if len(tx.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(tx.Sections))
	}
	for _, s := range tx.Sections {
		if s.Kind == SectionShieldedBuilder {
			t.Error("shielded builder section survived filtering")
		}
	}
	// Idempotent.
	before := tx.SecHashes()
	if err := tx.ProtocolFilter(); err != nil {
		t.Fatalf("second ProtocolFilter() error: %v", err)
	}
	after := tx.SecHashes()
	for i := range before {
		if before[i] != after[i] {
			t.Error("second ProtocolFilter() changed the transaction")
		}
	}
}

func TestProtocolFilter_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		want    error
	}{
		{"unknown kind", Section{Kind: 42}, ErrUnknownSection},
		{"signature without body", Section{Kind: SectionSignature}, ErrMalformedSigSect},
		{"signature with payload", Section{Kind: SectionSignature, Payload: []byte{1}}, ErrPayloadOnSigSect},
		{"signature without signer", Section{Kind: SectionSignature, Signature: &Signature{
			Targets:    []types.Hash{{1}},
			Signatures: map[uint8][]byte{0: {1}},
		}}, ErrMalformedSigSect},
		{"data with signature", Section{Kind: SectionData, Signature: &Signature{}}, ErrSignatureOnPlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := testTx(t)
			tx.AddSection(tt.section)
			if err := tx.ProtocolFilter(); !errors.Is(err, tt.want) {
				t.Errorf("ProtocolFilter() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("no sections", func(t *testing.T) {
		if err := New("c").Validate(); !errors.Is(err, ErrNoSections) {
			t.Errorf("Validate() error = %v, want ErrNoSections", err)
		}
	})
	t.Run("missing code", func(t *testing.T) {
		tx := NewBuilder("c").SetData([]byte("d")).Build()
		if err := tx.Validate(); !errors.Is(err, ErrMissingCode) {
			t.Errorf("Validate() error = %v, want ErrMissingCode", err)
		}
	})
	t.Run("tampered data", func(t *testing.T) {
		tx := testTx(t)
		for i := range tx.Sections {
			if tx.Sections[i].Kind == SectionData {
				tx.Sections[i].Payload = []byte("other")
			}
		}
		if err := tx.Validate(); !errors.Is(err, ErrMissingData) {
			t.Errorf("Validate() error = %v, want ErrMissingData", err)
		}
	})
	t.Run("bad version", func(t *testing.T) {
		tx := testTx(t)
		tx.Version = 0
		if err := tx.Validate(); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Validate() error = %v, want ErrUnsupportedFormat", err)
		}
	})
	t.Run("too many sections", func(t *testing.T) {
		tx := testTx(t)
		for len(tx.Sections) <= MaxSections {
			tx.AddSection(Section{Kind: SectionExtraData})
		}
		if err := tx.Validate(); !errors.Is(err, ErrTooManySections) {
			t.Errorf("Validate() error = %v, want ErrTooManySections", err)
		}
	})
}
