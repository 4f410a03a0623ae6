package builder

import (
	"context"
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

type bondData struct {
	Source    types.Address `cbor:"1,keyasint"`
	Validator types.Address `cbor:"2,keyasint"`
	Amount    uint64        `cbor:"3,keyasint"`
}

// Bond builds a delegation of args.Amount to args.Validator.
func (b *Builder) Bond(_ context.Context, common *msg.TxMsg, args *msg.BondMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.bonding(msg.KindBond, common, args.Validator, args.Amount, args.Source)
}

// Unbond builds the withdrawal of args.Amount of delegation from args.Validator.
func (b *Builder) Unbond(_ context.Context, common *msg.TxMsg, args *msg.UnbondMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.bonding(msg.KindUnbond, common, args.Validator, args.Amount, args.Source)
}

func (b *Builder) bonding(kind msg.Kind, common *msg.TxMsg, validator types.Address, amount uint64, src *types.Address) (*tx.Tx, *tx.SigningData, error) {
	if validator.IsZero() {
		return nil, nil, ErrInvalidValidator
	}
	if amount == 0 {
		return nil, nil, ErrZeroAmount
	}
	owner, err := source(src, common)
	if err != nil {
		return nil, nil, err
	}
	payer := defaultPayer(common)
	t, err := b.assemble(kind, common, &bondData{Source: owner, Validator: validator, Amount: amount}, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(owner, common, payer), nil
}

type withdrawData struct {
	Source    types.Address `cbor:"1,keyasint"`
	Validator types.Address `cbor:"2,keyasint"`
}

// Withdraw builds a claim of unbonded tokens from args.Validator.
func (b *Builder) Withdraw(_ context.Context, common *msg.TxMsg, args *msg.WithdrawMsg) (*tx.Tx, *tx.SigningData, error) {
	if args.Validator.IsZero() {
		return nil, nil, ErrInvalidValidator
	}
	owner, err := source(args.Source, common)
	if err != nil {
		return nil, nil, err
	}
	payer := defaultPayer(common)
	t, err := b.assemble(msg.KindWithdraw, common, &withdrawData{Source: owner, Validator: args.Validator}, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(owner, common, payer), nil
}

type transferData struct {
	Source   types.Address `cbor:"1,keyasint"`
	Target   types.Address `cbor:"2,keyasint"`
	Token    types.Address `cbor:"3,keyasint"`
	Amount   uint64        `cbor:"4,keyasint"`
	Shielded bool          `cbor:"5,keyasint,omitempty"`
}

// Transfer builds a token transfer. A transparent source must hold at least
// args.Amount of the token. A shielded source declares no account signer
// set; its fees default to the shielded source key and the proof-building
// metadata travels in a local-only section.
func (b *Builder) Transfer(ctx context.Context, common *msg.TxMsg, args *msg.TransferMsg) (*tx.Tx, *tx.SigningData, error) {
	if args.Target.IsZero() {
		return nil, nil, ErrInvalidTarget
	}
	if args.Amount == 0 {
		return nil, nil, ErrZeroAmount
	}
	token := b.token(args.Token)

	if args.Shielded {
		payer := feePayer(common, crypto.ShieldedTxKey().PublicKey())
		data := &transferData{Target: args.Target, Token: token, Amount: args.Amount, Shielded: true}
		t, err := b.assemble(msg.KindTransfer, common, data, payer)
		if err != nil {
			return nil, nil, err
		}
		meta, err := msg.Encode(args)
		if err != nil {
			return nil, nil, err
		}
		t.AddSection(tx.Section{Kind: tx.SectionShieldedBuilder, Payload: meta})
		return t, &tx.SigningData{FeePayer: payer}, nil
	}

	owner, err := source(args.Source, common)
	if err != nil {
		return nil, nil, err
	}
	balance, err := b.q.QueryBalance(ctx, owner, token)
	if err != nil {
		return nil, nil, err
	}
	if balance < args.Amount {
		return nil, nil, fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, owner, balance, args.Amount)
	}
	payer := defaultPayer(common)
	data := &transferData{Source: owner, Target: args.Target, Token: token, Amount: args.Amount}
	t, err := b.assemble(msg.KindTransfer, common, data, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(owner, common, payer), nil
}

type ibcTransferData struct {
	Source           types.Address `cbor:"1,keyasint"`
	Receiver         string        `cbor:"2,keyasint"`
	Token            types.Address `cbor:"3,keyasint"`
	Amount           uint64        `cbor:"4,keyasint"`
	Port             string        `cbor:"5,keyasint"`
	Channel          string        `cbor:"6,keyasint"`
	TimeoutHeight    uint64        `cbor:"7,keyasint,omitempty"`
	TimeoutTimestamp int64         `cbor:"8,keyasint,omitempty"`
	Memo             string        `cbor:"9,keyasint,omitempty"`
}

// IbcTransfer builds a transfer to a counterparty chain.
func (b *Builder) IbcTransfer(_ context.Context, common *msg.TxMsg, args *msg.IbcTransferMsg) (*tx.Tx, *tx.SigningData, error) {
	if args.Port == "" || args.Channel == "" {
		return nil, nil, ErrInvalidChannel
	}
	if args.Receiver == "" {
		return nil, nil, ErrInvalidReceiver
	}
	if args.Amount == 0 {
		return nil, nil, ErrZeroAmount
	}
	owner, err := source(args.Source, common)
	if err != nil {
		return nil, nil, err
	}
	payer := defaultPayer(common)
	data := &ibcTransferData{
		Source:           owner,
		Receiver:         args.Receiver,
		Token:            b.token(args.Token),
		Amount:           args.Amount,
		Port:             args.Port,
		Channel:          args.Channel,
		TimeoutHeight:    args.TimeoutHeight,
		TimeoutTimestamp: args.TimeoutTimestamp,
		Memo:             args.Memo,
	}
	t, err := b.assemble(msg.KindIBCTransfer, common, data, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(owner, common, payer), nil
}

type ethBridgeData struct {
	Asset     []byte        `cbor:"1,keyasint"`
	Recipient []byte        `cbor:"2,keyasint"`
	Sender    types.Address `cbor:"3,keyasint"`
	Amount    uint64        `cbor:"4,keyasint"`
	FeeAmount uint64        `cbor:"5,keyasint"`
	FeeToken  types.Address `cbor:"6,keyasint"`
	NUT       bool          `cbor:"7,keyasint,omitempty"`
}

// EthBridgeTransfer builds a bridge pool transfer to Ethereum.
func (b *Builder) EthBridgeTransfer(_ context.Context, common *msg.TxMsg, args *msg.EthBridgeTransferMsg) (*tx.Tx, *tx.SigningData, error) {
	if len(args.Asset) != 20 || len(args.Recipient) != 20 {
		return nil, nil, ErrInvalidEthAddress
	}
	if args.Amount == 0 {
		return nil, nil, ErrZeroAmount
	}
	sender, err := source(args.Sender, common)
	if err != nil {
		return nil, nil, err
	}
	payer := defaultPayer(common)
	data := &ethBridgeData{
		Asset:     args.Asset,
		Recipient: args.Recipient,
		Sender:    sender,
		Amount:    args.Amount,
		FeeAmount: args.FeeAmount,
		FeeToken:  b.token(args.FeeToken),
		NUT:       args.NUT,
	}
	t, err := b.assemble(msg.KindEthBridgeTransfer, common, data, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(sender, common, payer), nil
}

type revealData struct {
	PublicKey []byte `cbor:"1,keyasint"`
}

// RevealPK builds the registration of pubKey on chain. The key's own
// address is the owner and the key itself the only signer.
func (b *Builder) RevealPK(_ context.Context, common *msg.TxMsg, pubKey []byte) (*tx.Tx, *tx.SigningData, error) {
	if err := crypto.ParsePublicKey(pubKey); err != nil {
		return nil, nil, err
	}
	owner := crypto.AddressFromPubKey(pubKey)
	payer := feePayer(common, pubKey)
	t, err := b.assemble(msg.KindRevealPK, common, &revealData{PublicKey: pubKey}, payer)
	if err != nil {
		return nil, nil, err
	}
	keys := [][]byte{pubKey}
	return t, &tx.SigningData{
		Owner:                &owner,
		PublicKeys:           keys,
		Threshold:            1,
		AccountPublicKeysMap: tx.NewAccountPublicKeysMap(keys),
		FeePayer:             payer,
	}, nil
}

type voteData struct {
	ProposalID uint64        `cbor:"1,keyasint"`
	Vote       string        `cbor:"2,keyasint"`
	Voter      types.Address `cbor:"3,keyasint"`
	Epoch      types.Epoch   `cbor:"4,keyasint"`
}

// VoteProposal builds a vote on a governance proposal at the given epoch.
// The proposal must exist and be open for voting at that epoch.
func (b *Builder) VoteProposal(ctx context.Context, common *msg.TxMsg, args *msg.VoteProposalMsg, epoch types.Epoch) (*tx.Tx, *tx.SigningData, error) {
	switch args.Vote {
	case msg.VoteYay, msg.VoteNay, msg.VoteAbstain:
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidVote, args.Vote)
	}
	voter, err := source(args.Voter, common)
	if err != nil {
		return nil, nil, err
	}
	p, err := b.q.QueryProposal(ctx, args.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownProposal, args.ProposalID)
	}
	if !p.VotingOpen(epoch) {
		return nil, nil, fmt.Errorf("%w: proposal %d votes in epochs %d-%d, current %d",
			ErrVotingClosed, p.ID, p.VotingStart, p.VotingEnd, epoch)
	}
	payer := defaultPayer(common)
	data := &voteData{ProposalID: args.ProposalID, Vote: args.Vote, Voter: voter, Epoch: epoch}
	t, err := b.assemble(msg.KindVoteProposal, common, data, payer)
	if err != nil {
		return nil, nil, err
	}
	return t, accountSigning(voter, common, payer), nil
}
