package tx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Signing errors.
var (
	ErrNoSigningKeys    = errors.New("none of the provided keys belong to the account")
	ErrSectionIndex     = errors.New("section index out of range")
	ErrEmptySignature   = errors.New("empty signature")
	ErrInvalidSignerKey = errors.New("invalid signer public key")
)

// AccountPublicKeysMap indexes the public keys of an account. Raw-section
// signatures are keyed by these indices.
type AccountPublicKeysMap struct {
	keys [][]byte
}

// NewAccountPublicKeysMap builds a map over the given public keys, in order.
// Duplicates keep their first index.
func NewAccountPublicKeysMap(pubKeys [][]byte) *AccountPublicKeysMap {
	m := &AccountPublicKeysMap{}
	for _, pk := range pubKeys {
		if _, ok := m.Index(pk); ok {
			continue
		}
		m.keys = append(m.keys, bytes.Clone(pk))
	}
	return m
}

// Index returns the index of a public key in the map.
func (m *AccountPublicKeysMap) Index(pubKey []byte) (uint8, bool) {
	for i, pk := range m.keys {
		if bytes.Equal(pk, pubKey) {
			return uint8(i), true
		}
	}
	return 0, false
}

// PublicKeys returns the indexed public keys in index order.
func (m *AccountPublicKeysMap) PublicKeys() [][]byte {
	return m.keys
}

// Len returns the number of indexed keys.
func (m *AccountPublicKeysMap) Len() int {
	return len(m.keys)
}

// IndexSecretKeys pairs every signer whose public key is in the map with
// that key's index. Signers outside the map are dropped.
func (m *AccountPublicKeysMap) IndexSecretKeys(signers []crypto.Signer) map[uint8]crypto.Signer {
	out := make(map[uint8]crypto.Signer, len(signers))
	for _, s := range signers {
		if idx, ok := m.Index(s.PublicKey()); ok {
			out[idx] = s
		}
	}
	return out
}

// MarshalCBOR encodes the map as its ordered key list.
func (m AccountPublicKeysMap) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(m.keys)
}

// UnmarshalCBOR decodes an ordered key list.
func (m *AccountPublicKeysMap) UnmarshalCBOR(data []byte) error {
	var keys [][]byte
	if err := cbor.Decode(data, &keys); err != nil {
		return err
	}
	*m = *NewAccountPublicKeysMap(keys)
	return nil
}

// SigningData lists who must sign a transaction and who pays its fees.
// It is produced by the builders together with the unsigned transaction.
type SigningData struct {
	// Owner is the account authorizing the transaction, if any.
	Owner *types.Address `cbor:"1,keyasint,omitempty"`
	// PublicKeys are the keys expected to sign the raw section.
	PublicKeys [][]byte `cbor:"2,keyasint,omitempty"`
	Threshold  uint8    `cbor:"3,keyasint"`
	// AccountPublicKeysMap is nil for transactions that declare no signer
	// set; those skip raw signing.
	AccountPublicKeysMap *AccountPublicKeysMap `cbor:"4,keyasint,omitempty"`
	// FeePayer is the public key expected to sign the wrapper section.
	FeePayer []byte `cbor:"5,keyasint"`
}

// SignRaw signs the raw header with the signers that belong to the account
// described by pkMap and appends the signature section. When owner is nil
// the signature names the bare public keys instead of an account.
func (t *Tx) SignRaw(signers []crypto.Signer, pkMap *AccountPublicKeysMap, owner *types.Address) error {
	targets := []types.Hash{t.RawHeaderHash()}
	if err := t.ProtocolFilter(); err != nil {
		return err
	}

	var (
		indexed map[uint8]crypto.Signer
		signer  Signer
	)
	if owner != nil {
		if pkMap == nil {
			return fmt.Errorf("sign raw: owner %s has no public key map", owner)
		}
		indexed = pkMap.IndexSecretKeys(signers)
		o := *owner
		signer.Owner = &o
	} else {
		indexed = make(map[uint8]crypto.Signer, len(signers))
		for i, s := range signers {
			indexed[uint8(i)] = s
			signer.PubKeys = append(signer.PubKeys, s.PublicKey())
		}
	}
	if len(indexed) == 0 {
		return ErrNoSigningKeys
	}

	sig := &Signature{Targets: targets, Signer: signer, Signatures: make(map[uint8][]byte, len(indexed))}
	msg := sig.Message()
	for idx, s := range indexed {
		b, err := s.Sign(msg[:])
		if err != nil {
			return fmt.Errorf("sign raw header (index %d): %w", idx, err)
		}
		sig.Signatures[idx] = b
	}
	t.AddSection(Section{Kind: SectionSignature, Signature: sig})
	return nil
}

// SignWrapper signs the header hash and every section hash, raw signatures
// included, with the fee payer key and appends the signature section.
func (t *Tx) SignWrapper(feePayer crypto.Signer) error {
	if err := t.ProtocolFilter(); err != nil {
		return err
	}
	sig := &Signature{
		Targets: t.SecHashes(),
		Signer:  Signer{PubKeys: [][]byte{feePayer.PublicKey()}},
	}
	msg := sig.Message()
	b, err := feePayer.Sign(msg[:])
	if err != nil {
		return fmt.Errorf("sign wrapper: %w", err)
	}
	sig.Signatures = map[uint8][]byte{0: b}
	t.AddSection(Section{Kind: SectionSignature, Signature: sig})
	return nil
}

// SignatureSection builds a signature section from externally produced
// material. indices address SecHashes(); the signature is attributed to
// pubKey. Nothing is verified here.
func (t *Tx) SignatureSection(pubKey []byte, indices []uint8, signature []byte) (Section, error) {
	if err := crypto.ParsePublicKey(pubKey); err != nil {
		return Section{}, fmt.Errorf("%w: %v", ErrInvalidSignerKey, err)
	}
	if len(signature) == 0 {
		return Section{}, ErrEmptySignature
	}
	hashes := t.SecHashes()
	targets := make([]types.Hash, 0, len(indices))
	for _, idx := range indices {
		if int(idx) >= len(hashes) {
			return Section{}, fmt.Errorf("%w: %d (have %d)", ErrSectionIndex, idx, len(hashes))
		}
		targets = append(targets, hashes[idx])
	}
	return Section{
		Kind: SectionSignature,
		Signature: &Signature{
			Targets:    targets,
			Signer:     Signer{PubKeys: [][]byte{bytes.Clone(pubKey)}},
			Signatures: map[uint8][]byte{0: bytes.Clone(signature)},
		},
	}, nil
}
