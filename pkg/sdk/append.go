package sdk

import (
	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

// AppendSignature splices an externally produced signature bundle into a
// transaction and returns the new wire form.
//
// Two signature sections are appended, raw first, both attributed to the
// bundle's public key. Local-only sections are stripped before the indices
// are resolved. The wrapper indices address the section list after the raw
// section was added. Existing sections are kept as they are and
// duplicate bundles are appended again rather than merged. Signatures are
// not verified here.
func (s *Session) AppendSignature(txBytes, bundle []byte) ([]byte, error) {
	t, err := tx.Decode(txBytes)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "transaction", Err: err}
	}
	// Bundles are signed over the filtered form, so indices must resolve
	// against it.
	if err := t.ProtocolFilter(); err != nil {
		return nil, err
	}
	b, err := msg.DecodeSignature(bundle)
	if err != nil {
		return nil, err
	}

	raw, err := t.SignatureSection(b.PubKey, b.RawIndices, b.RawSignature)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "signature bundle", Err: err}
	}
	t.AddSection(raw)

	wrapper, err := t.SignatureSection(b.PubKey, b.WrapperIndices, b.WrapperSignature)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "signature bundle", Err: err}
	}
	t.AddSection(wrapper)

	if err := t.ProtocolFilter(); err != nil {
		return nil, err
	}
	l := log.WithTx(log.Signing, t.ID())
	l.Debug().Int("sections", len(t.Sections)).Msg("External signatures appended")
	return t.Encode()
}
