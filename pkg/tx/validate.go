package tx

import (
	"errors"
	"fmt"
)

// Wire validation errors.
var (
	ErrNoSections        = errors.New("transaction has no sections")
	ErrMissingData       = errors.New("header data hash matches no data section")
	ErrMissingCode       = errors.New("header code hash matches no code section")
	ErrUnknownSection    = errors.New("unknown section kind")
	ErrMalformedSigSect  = errors.New("malformed signature section")
	ErrTooManySections   = errors.New("too many sections")
	ErrPayloadOnSigSect  = errors.New("signature section carries a payload")
	ErrSignatureOnPlain  = errors.New("non-signature section carries a signature")
	ErrUnsupportedFormat = errors.New("unsupported transaction version")
)

// MaxSections bounds the number of sections a submitted transaction may carry.
const MaxSections = 256

// ProtocolFilter prepares the transaction for the wire. Sections that only
// matter to the local builder are removed; sections no node would accept are
// rejected. It is safe to call repeatedly.
func (t *Tx) ProtocolFilter() error {
	kept := t.Sections[:0]
	for i := range t.Sections {
		s := t.Sections[i]
		switch s.Kind {
		case SectionShieldedBuilder:
			continue
		case SectionData, SectionCode, SectionExtraData:
			if s.Signature != nil {
				return fmt.Errorf("section %d: %w", i, ErrSignatureOnPlain)
			}
		case SectionSignature:
			if err := checkSignatureSection(&s); err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
		default:
			return fmt.Errorf("section %d: %w: %s", i, ErrUnknownSection, s.Kind)
		}
		kept = append(kept, s)
	}
	// Clear the tail so dropped sections are not retained by the backing array.
	for i := len(kept); i < len(t.Sections); i++ {
		t.Sections[i] = Section{}
	}
	t.Sections = kept
	return nil
}

func checkSignatureSection(s *Section) error {
	if len(s.Payload) != 0 {
		return ErrPayloadOnSigSect
	}
	sig := s.Signature
	if sig == nil || len(sig.Targets) == 0 || len(sig.Signatures) == 0 {
		return ErrMalformedSigSect
	}
	if sig.Signer.Owner == nil && len(sig.Signer.PubKeys) == 0 {
		return ErrMalformedSigSect
	}
	return nil
}

// Validate checks that the transaction is structurally fit for submission.
// Signatures are not verified; the ledger does that.
func (t *Tx) Validate() error {
	if t.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, t.Version)
	}
	if len(t.Sections) == 0 {
		return ErrNoSections
	}
	if len(t.Sections) > MaxSections {
		return fmt.Errorf("%w: %d sections, max %d", ErrTooManySections, len(t.Sections), MaxSections)
	}
	if _, ok := t.Data(); !ok {
		return ErrMissingData
	}
	if _, ok := t.Code(); !ok {
		return ErrMissingCode
	}
	for i := range t.Sections {
		s := t.Sections[i]
		switch s.Kind {
		case SectionData, SectionCode, SectionExtraData, SectionShieldedBuilder:
			if s.Signature != nil {
				return fmt.Errorf("section %d: %w", i, ErrSignatureOnPlain)
			}
		case SectionSignature:
			if err := checkSignatureSection(&s); err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
		default:
			return fmt.Errorf("section %d: %w: %s", i, ErrUnknownSection, s.Kind)
		}
	}
	return nil
}
