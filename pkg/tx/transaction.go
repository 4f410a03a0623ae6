// Package tx defines the section-based transaction model, its signing
// operations and its canonical wire form.
//
// A transaction is a header plus an ordered list of sections. The header
// commits to the code and data sections by hash. The raw view of the header
// (without the wrapper fee data) is what the semantic signers authorize; the
// full section hash list is what the fee payer authorizes.
package tx

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Version is the current wire format version.
const Version uint8 = 1

// SectionKind identifies the content of a section.
type SectionKind uint8

const (
	SectionData            SectionKind = 1 // Kind-specific payload.
	SectionCode            SectionKind = 2 // Identifies the on-chain handler.
	SectionExtraData       SectionKind = 3 // Auxiliary data referenced by the payload.
	SectionSignature       SectionKind = 4 // Signature over a set of section hashes.
	SectionShieldedBuilder SectionKind = 5 // Local proof-building metadata, never submitted.
)

// String returns the section kind name.
func (k SectionKind) String() string {
	switch k {
	case SectionData:
		return "data"
	case SectionCode:
		return "code"
	case SectionExtraData:
		return "extra_data"
	case SectionSignature:
		return "signature"
	case SectionShieldedBuilder:
		return "shielded_builder"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// WrapperHeader carries fee and gas data. It is signed by the fee payer only.
type WrapperHeader struct {
	FeeToken        types.Address `cbor:"1,keyasint"`
	FeeAmountPerGas uint64        `cbor:"2,keyasint"`
	GasLimit        uint64        `cbor:"3,keyasint"`
	FeePayer        []byte        `cbor:"4,keyasint"`
}

// Header commits to the content of a transaction.
type Header struct {
	ChainID    string         `cbor:"1,keyasint"`
	Expiration int64          `cbor:"2,keyasint,omitempty"` // Unix seconds, 0 = never.
	Timestamp  int64          `cbor:"3,keyasint"`
	CodeHash   types.Hash     `cbor:"4,keyasint"`
	DataHash   types.Hash     `cbor:"5,keyasint"`
	Wrapper    *WrapperHeader `cbor:"6,keyasint,omitempty"`
}

// Signer names who produced the signatures of a signature section: either an
// account (owner) whose public keys are indexed, or a bare list of keys.
type Signer struct {
	Owner   *types.Address `cbor:"1,keyasint,omitempty"`
	PubKeys [][]byte       `cbor:"2,keyasint,omitempty"`
}

// Signature is the body of a signature section.
type Signature struct {
	Targets    []types.Hash     `cbor:"1,keyasint"`
	Signer     Signer           `cbor:"2,keyasint"`
	Signatures map[uint8][]byte `cbor:"3,keyasint"`
}

// Message returns the 32-byte hash the signatures commit to.
func (s *Signature) Message() types.Hash {
	parts := make([][]byte, len(s.Targets))
	for i := range s.Targets {
		parts[i] = s.Targets[i][:]
	}
	return crypto.HashParts(parts...)
}

// Section is one element of a transaction body.
type Section struct {
	Kind      SectionKind `cbor:"1,keyasint"`
	Payload   []byte      `cbor:"2,keyasint,omitempty"`
	Signature *Signature  `cbor:"3,keyasint,omitempty"`
}

// Hash returns the BLAKE3 hash of the section's canonical encoding.
func (s *Section) Hash() types.Hash {
	return crypto.Hash(mustEncode(s))
}

// Tx is a transaction: a header and its sections.
type Tx struct {
	Version  uint8     `cbor:"1,keyasint"`
	Header   Header    `cbor:"2,keyasint"`
	Sections []Section `cbor:"3,keyasint"`
}

// New creates an empty transaction for the given chain.
func New(chainID string) *Tx {
	return &Tx{
		Version: Version,
		Header: Header{
			ChainID:   chainID,
			Timestamp: time.Now().Unix(),
		},
	}
}

// AddSection appends a section and returns its index.
func (t *Tx) AddSection(s Section) int {
	t.Sections = append(t.Sections, s)
	return len(t.Sections) - 1
}

// SetData adds a data section and commits the header to it.
func (t *Tx) SetData(payload []byte) {
	s := Section{Kind: SectionData, Payload: payload}
	t.Header.DataHash = s.Hash()
	t.AddSection(s)
}

// SetCode adds a code section and commits the header to it.
func (t *Tx) SetCode(payload []byte) {
	s := Section{Kind: SectionCode, Payload: payload}
	t.Header.CodeHash = s.Hash()
	t.AddSection(s)
}

// Data returns the payload of the section the header commits to as data.
func (t *Tx) Data() ([]byte, bool) {
	return t.committed(SectionData, t.Header.DataHash)
}

// Code returns the payload of the section the header commits to as code.
func (t *Tx) Code() ([]byte, bool) {
	return t.committed(SectionCode, t.Header.CodeHash)
}

func (t *Tx) committed(kind SectionKind, h types.Hash) ([]byte, bool) {
	for i := range t.Sections {
		if t.Sections[i].Kind == kind && t.Sections[i].Hash() == h {
			return t.Sections[i].Payload, true
		}
	}
	return nil, false
}

// HeaderHash returns the hash of the full header, wrapper included.
// It identifies the transaction on chain.
func (t *Tx) HeaderHash() types.Hash {
	return crypto.Hash(mustEncode(&t.Header))
}

// RawHeaderHash returns the hash of the header with the wrapper removed.
// Raw signatures target this hash, so fee data can change without
// invalidating them.
func (t *Tx) RawHeaderHash() types.Hash {
	raw := t.Header
	raw.Wrapper = nil
	return crypto.Hash(mustEncode(&raw))
}

// SecHashes returns the header hash followed by the hash of every section,
// in order. Signature bundle indices address this list.
func (t *Tx) SecHashes() []types.Hash {
	out := make([]types.Hash, 0, len(t.Sections)+1)
	out = append(out, t.HeaderHash())
	for i := range t.Sections {
		out = append(out, t.Sections[i].Hash())
	}
	return out
}

// Signatures returns the bodies of all signature sections.
func (t *Tx) Signatures() []*Signature {
	var out []*Signature
	for i := range t.Sections {
		if t.Sections[i].Kind == SectionSignature && t.Sections[i].Signature != nil {
			out = append(out, t.Sections[i].Signature)
		}
	}
	return out
}

// ID returns the hex transaction identifier.
func (t *Tx) ID() string {
	return t.HeaderHash().String()
}

// Encode returns the canonical wire form of the transaction.
func (t *Tx) Encode() ([]byte, error) {
	data, err := cbor.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("encode tx: %w", err)
	}
	return data, nil
}

// Decode parses a transaction from its wire form.
func Decode(data []byte) (*Tx, error) {
	var t Tx
	if err := cbor.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode tx: %w", err)
	}
	if t.Version != Version {
		return nil, fmt.Errorf("decode tx: unsupported version %d", t.Version)
	}
	return &t, nil
}

// Clone returns a deep copy of the transaction.
func (t *Tx) Clone() (*Tx, error) {
	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// mustEncode encodes values whose types cannot fail to encode.
func mustEncode(v any) []byte {
	data, err := cbor.Encode(v)
	if err != nil {
		panic(fmt.Sprintf("tx: encode %T: %v", v, err))
	}
	return data
}
