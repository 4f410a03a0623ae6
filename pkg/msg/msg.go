// Package msg defines the versioned argument payloads accepted by the SDK:
// the common transaction arguments, one message per transaction kind and the
// externally produced signature bundle.
//
// Every message is CBOR with integer keys. Key 0 holds the format version.
package msg

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Version is the current message format version.
const Version uint8 = 1

// Header is embedded in every message.
type Header struct {
	Version uint8 `cbor:"0,keyasint"`
}

func (h *Header) header() *Header { return h }

// Message is implemented by every payload in this package.
type Message interface {
	header() *Header
}

// Encode stamps the current version on m and returns its wire form.
func Encode(m Message) ([]byte, error) {
	m.header().Version = Version
	data, err := cbor.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", m, err)
	}
	return data, nil
}

func decode(structure string, data []byte, m Message) error {
	if err := cbor.Decode(data, m); err != nil {
		return &DecodeError{Structure: structure, Err: err}
	}
	if v := m.header().Version; v != Version {
		return &DecodeError{Structure: structure, Err: fmt.Errorf("unsupported version %d", v)}
	}
	return nil
}

// TxMsg holds the arguments shared by every transaction kind.
type TxMsg struct {
	Header
	ChainID string `cbor:"1,keyasint"`
	// SigningKeys are the compressed public keys of the semantic signers.
	// The first key identifies the account for reveal and default sources.
	SigningKeys [][]byte `cbor:"2,keyasint"`
	// FeeToken defaults to the chain's native token when nil.
	FeeToken        *types.Address `cbor:"3,keyasint,omitempty"`
	FeeAmountPerGas uint64         `cbor:"4,keyasint"`
	GasLimit        uint64         `cbor:"5,keyasint"`
	// FeePayer is the public key paying fees. Defaults to the first signing key.
	FeePayer   []byte `cbor:"6,keyasint,omitempty"`
	Expiration int64  `cbor:"7,keyasint,omitempty"`
	Memo       []byte `cbor:"8,keyasint,omitempty"`
}

// MaxSigningKeys is the most signing keys a transaction can carry. Signature
// indices are one byte.
const MaxSigningKeys = 256

// DecodeTx parses common transaction arguments. Every public key must be a
// valid compressed secp256k1 key.
func DecodeTx(data []byte) (*TxMsg, error) {
	var m TxMsg
	if err := decode("tx args", data, &m); err != nil {
		return nil, err
	}
	if len(m.SigningKeys) > MaxSigningKeys {
		return nil, &DecodeError{Structure: "tx args", Err: fmt.Errorf("%d signing keys, max %d", len(m.SigningKeys), MaxSigningKeys)}
	}
	for i, pk := range m.SigningKeys {
		if err := crypto.ParsePublicKey(pk); err != nil {
			return nil, &DecodeError{Structure: "tx args", Err: fmt.Errorf("signing key %d: %w", i, err)}
		}
	}
	if len(m.FeePayer) != 0 {
		if err := crypto.ParsePublicKey(m.FeePayer); err != nil {
			return nil, &DecodeError{Structure: "tx args", Err: fmt.Errorf("fee payer: %w", err)}
		}
	}
	return &m, nil
}

// BondMsg delegates Amount to Validator.
type BondMsg struct {
	Header
	Validator types.Address `cbor:"1,keyasint"`
	Amount    uint64        `cbor:"2,keyasint"`
	// Source defaults to the first signing key's address.
	Source *types.Address `cbor:"3,keyasint,omitempty"`
}

// DecodeBond parses bond arguments.
func DecodeBond(data []byte) (*BondMsg, error) {
	var m BondMsg
	if err := decode("bond args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnbondMsg withdraws Amount of delegation from Validator.
type UnbondMsg struct {
	Header
	Validator types.Address  `cbor:"1,keyasint"`
	Amount    uint64         `cbor:"2,keyasint"`
	Source    *types.Address `cbor:"3,keyasint,omitempty"`
}

// DecodeUnbond parses unbond arguments.
func DecodeUnbond(data []byte) (*UnbondMsg, error) {
	var m UnbondMsg
	if err := decode("unbond args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WithdrawMsg claims unbonded tokens from Validator.
type WithdrawMsg struct {
	Header
	Validator types.Address  `cbor:"1,keyasint"`
	Source    *types.Address `cbor:"2,keyasint,omitempty"`
}

// DecodeWithdraw parses withdraw arguments.
func DecodeWithdraw(data []byte) (*WithdrawMsg, error) {
	var m WithdrawMsg
	if err := decode("withdraw args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// TransferMsg moves Amount of Token from Source to Target.
type TransferMsg struct {
	Header
	Source *types.Address `cbor:"1,keyasint,omitempty"`
	Target types.Address  `cbor:"2,keyasint"`
	// Token defaults to the native token when nil.
	Token  *types.Address `cbor:"3,keyasint,omitempty"`
	Amount uint64         `cbor:"4,keyasint"`
	// Shielded marks a transfer out of the shielded pool. Such transfers
	// carry no account signer set.
	Shielded bool `cbor:"5,keyasint,omitempty"`
}

// DecodeTransfer parses transfer arguments.
func DecodeTransfer(data []byte) (*TransferMsg, error) {
	var m TransferMsg
	if err := decode("transfer args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// IbcTransferMsg sends tokens to a counterparty chain over IBC.
type IbcTransferMsg struct {
	Header
	Source   *types.Address `cbor:"1,keyasint,omitempty"`
	Receiver string         `cbor:"2,keyasint"`
	Token    *types.Address `cbor:"3,keyasint,omitempty"`
	Amount   uint64         `cbor:"4,keyasint"`
	Port     string         `cbor:"5,keyasint"`
	Channel  string         `cbor:"6,keyasint"`
	// Timeouts are optional. A zero value means none.
	TimeoutHeight    uint64 `cbor:"7,keyasint,omitempty"`
	TimeoutTimestamp int64  `cbor:"8,keyasint,omitempty"`
	Memo             string `cbor:"9,keyasint,omitempty"`
}

// DecodeIbcTransfer parses IBC transfer arguments.
func DecodeIbcTransfer(data []byte) (*IbcTransferMsg, error) {
	var m IbcTransferMsg
	if err := decode("ibc transfer args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// EthBridgeTransferMsg queues a transfer in the Ethereum bridge pool.
type EthBridgeTransferMsg struct {
	Header
	// Asset is the ERC20 contract address.
	Asset     []byte         `cbor:"1,keyasint"`
	Recipient []byte         `cbor:"2,keyasint"`
	Sender    *types.Address `cbor:"3,keyasint,omitempty"`
	Amount    uint64         `cbor:"4,keyasint"`
	// FeeAmount pays the relayer, in FeeToken.
	FeeAmount uint64         `cbor:"5,keyasint"`
	FeeToken  *types.Address `cbor:"6,keyasint,omitempty"`
	// NUT requests wrapped non-usable tokens instead of the asset itself.
	NUT bool `cbor:"7,keyasint,omitempty"`
}

// DecodeEthBridgeTransfer parses Ethereum bridge transfer arguments.
func DecodeEthBridgeTransfer(data []byte) (*EthBridgeTransferMsg, error) {
	var m EthBridgeTransferMsg
	if err := decode("eth bridge transfer args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Vote values.
const (
	VoteYay     = "yay"
	VoteNay     = "nay"
	VoteAbstain = "abstain"
)

// VoteProposalMsg casts a vote on a governance proposal.
type VoteProposalMsg struct {
	Header
	ProposalID uint64         `cbor:"1,keyasint"`
	Vote       string         `cbor:"2,keyasint"`
	Voter      *types.Address `cbor:"3,keyasint,omitempty"`
}

// DecodeVoteProposal parses vote arguments.
func DecodeVoteProposal(data []byte) (*VoteProposalMsg, error) {
	var m VoteProposalMsg
	if err := decode("vote proposal args", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SignatureMsg is a signature bundle produced outside this process.
// Indices address the transaction's section hash list.
type SignatureMsg struct {
	Header
	PubKey           []byte  `cbor:"1,keyasint"`
	RawIndices       []uint8 `cbor:"2,keyasint"`
	RawSignature     []byte  `cbor:"3,keyasint"`
	WrapperIndices   []uint8 `cbor:"4,keyasint"`
	WrapperSignature []byte  `cbor:"5,keyasint"`
}

// DecodeSignature parses a signature bundle.
func DecodeSignature(data []byte) (*SignatureMsg, error) {
	var m SignatureMsg
	if err := decode("signature bundle", data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
