// Package builder turns decoded transaction arguments into unsigned
// transactions and their signing requirements. Builders read chain state
// through a Querier but never write it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Builder errors.
var (
	ErrMissingChainID      = errors.New("missing chain id")
	ErrNoSigningKeys       = errors.New("no signing keys")
	ErrZeroAmount          = errors.New("amount must be positive")
	ErrInvalidValidator    = errors.New("invalid validator address")
	ErrInvalidTarget       = errors.New("invalid target address")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidChannel      = errors.New("invalid ibc port or channel")
	ErrInvalidReceiver     = errors.New("invalid receiver")
	ErrInvalidEthAddress   = errors.New("ethereum address must be 20 bytes")
	ErrInvalidVote         = errors.New("vote must be yay, nay or abstain")
	ErrUnknownProposal     = errors.New("unknown proposal")
	ErrVotingClosed        = errors.New("voting period closed")
)

// Querier is the read-only chain access the builders need.
type Querier interface {
	QueryBalance(ctx context.Context, owner, token types.Address) (uint64, error)
	QueryProposal(ctx context.Context, id uint64) (*types.Proposal, error)
}

// Builder builds unsigned transactions for one chain.
type Builder struct {
	q           Querier
	nativeToken types.Address
	now         func() time.Time
}

// New returns a Builder. nativeToken is the default fee and transfer token.
func New(q Querier, nativeToken types.Address) *Builder {
	return &Builder{q: q, nativeToken: nativeToken, now: time.Now}
}

// codeName returns the on-chain handler name for a kind.
func codeName(k msg.Kind) []byte {
	return []byte("tx_" + k.String())
}

func (b *Builder) token(t *types.Address) types.Address {
	if t != nil && !t.IsZero() {
		return *t
	}
	return b.nativeToken
}

// source returns explicit when set, else the address of the first signing key.
func source(explicit *types.Address, common *msg.TxMsg) (types.Address, error) {
	if explicit != nil && !explicit.IsZero() {
		return *explicit, nil
	}
	if len(common.SigningKeys) == 0 {
		return types.Address{}, ErrNoSigningKeys
	}
	return crypto.AddressFromPubKey(common.SigningKeys[0]), nil
}

// feePayer returns the fee payer named in common, falling back to def.
func feePayer(common *msg.TxMsg, def []byte) []byte {
	if len(common.FeePayer) != 0 {
		return common.FeePayer
	}
	return def
}

// assemble writes the code, data and optional memo sections, and the header
// fields shared by every kind.
func (b *Builder) assemble(kind msg.Kind, common *msg.TxMsg, payload any, payer []byte) (*tx.Tx, error) {
	if common.ChainID == "" {
		return nil, ErrMissingChainID
	}
	if len(payer) == 0 {
		return nil, ErrNoSigningKeys
	}
	wrapper := tx.WrapperHeader{
		FeeToken:        b.token(common.FeeToken),
		FeeAmountPerGas: common.FeeAmountPerGas,
		GasLimit:        common.GasLimit,
		FeePayer:        payer,
	}
	if _, err := wrapper.MaxFee(); err != nil {
		return nil, err
	}
	data, err := cbor.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	tb := tx.NewBuilder(common.ChainID).
		SetTimestamp(b.now().Unix()).
		SetExpiration(common.Expiration).
		SetCode(codeName(kind)).
		SetData(data).
		SetWrapper(wrapper)
	if len(common.Memo) != 0 {
		tb.AddExtraData(common.Memo)
	}
	return tb.Build(), nil
}

// accountSigning returns the signing requirements of a transaction
// authorized by owner with the common signing keys.
func accountSigning(owner types.Address, common *msg.TxMsg, payer []byte) *tx.SigningData {
	return &tx.SigningData{
		Owner:                &owner,
		PublicKeys:           common.SigningKeys,
		Threshold:            1,
		AccountPublicKeysMap: tx.NewAccountPublicKeysMap(common.SigningKeys),
		FeePayer:             payer,
	}
}

func defaultPayer(common *msg.TxMsg) []byte {
	if len(common.SigningKeys) == 0 {
		return feePayer(common, nil)
	}
	return feePayer(common, common.SigningKeys[0])
}
