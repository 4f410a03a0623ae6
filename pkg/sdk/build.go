package sdk

import (
	"context"
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/internal/builder"
	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

// Build decodes the arguments of a kind and returns the unsigned transaction
// with its signing requirements.
//
// specific holds the kind's arguments and common the shared tx arguments.
// Reveal-pk transactions reveal the first signing key of common and take no
// specific arguments. feePayerHint, when set, names a wallet alias whose key
// pays the fees.
func (s *Session) Build(ctx context.Context, kind msg.Kind, specific, common []byte, feePayerHint string) (*BuiltTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := msg.DecodeTx(common)
	if err != nil {
		return nil, err
	}
	if feePayerHint != "" {
		key, err := s.wallet.FindByAlias(feePayerHint)
		if err != nil {
			return nil, err
		}
		c.FeePayer = key.PublicKey()
	}
	return s.build(ctx, kind, specific, c)
}

// BuildBytes is Build returning the unsigned transaction's wire form.
func (s *Session) BuildBytes(ctx context.Context, kind msg.Kind, specific, common []byte, feePayerHint string) ([]byte, error) {
	b, err := s.Build(ctx, kind, specific, common, feePayerHint)
	if err != nil {
		return nil, err
	}
	return b.TxBytes()
}

func (s *Session) build(ctx context.Context, kind msg.Kind, specific []byte, c *msg.TxMsg) (*BuiltTx, error) {
	var (
		t   *tx.Tx
		sd  *tx.SigningData
		err error
	)
	switch kind {
	case msg.KindBond:
		var args *msg.BondMsg
		if args, err = msg.DecodeBond(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.Bond(ctx, c, args)
	case msg.KindUnbond:
		var args *msg.UnbondMsg
		if args, err = msg.DecodeUnbond(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.Unbond(ctx, c, args)
	case msg.KindWithdraw:
		var args *msg.WithdrawMsg
		if args, err = msg.DecodeWithdraw(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.Withdraw(ctx, c, args)
	case msg.KindTransfer:
		var args *msg.TransferMsg
		if args, err = msg.DecodeTransfer(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.Transfer(ctx, c, args)
	case msg.KindIBCTransfer:
		var args *msg.IbcTransferMsg
		if args, err = msg.DecodeIbcTransfer(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.IbcTransfer(ctx, c, args)
	case msg.KindEthBridgeTransfer:
		var args *msg.EthBridgeTransferMsg
		if args, err = msg.DecodeEthBridgeTransfer(specific); err != nil {
			return nil, err
		}
		t, sd, err = s.builders.EthBridgeTransfer(ctx, c, args)
	case msg.KindRevealPK:
		if len(specific) != 0 {
			return nil, &msg.DecodeError{Structure: "reveal pk args", Err: fmt.Errorf("unexpected %d bytes", len(specific))}
		}
		if len(c.SigningKeys) == 0 {
			return nil, &BuilderError{Kind: kind, Err: builder.ErrNoSigningKeys}
		}
		t, sd, err = s.builders.RevealPK(ctx, c, c.SigningKeys[0])
	case msg.KindVoteProposal:
		var args *msg.VoteProposalMsg
		if args, err = msg.DecodeVoteProposal(specific); err != nil {
			return nil, err
		}
		epoch, qerr := s.client.QueryEpoch(ctx)
		if qerr != nil {
			return nil, &QueryError{Op: "epoch", Err: qerr}
		}
		t, sd, err = s.builders.VoteProposal(ctx, c, args, epoch)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	if err != nil {
		return nil, &BuilderError{Kind: kind, Err: err}
	}

	l := log.WithTx(log.SDK, t.ID())
	l.Debug().
		Str("kind", kind.String()).
		Bool("raw_signers", sd.AccountPublicKeysMap != nil).
		Msg("Transaction built")
	return &BuiltTx{Tx: t, SigningData: sd}, nil
}
