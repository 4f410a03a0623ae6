// Package sdk assembles, signs and submits Klingnet transactions.
//
// A Session owns the chain client, the wallet, and the shielded parameter
// cache. Operations take and return opaque CBOR payloads (see package msg)
// so they can be driven from a CLI or another process. A Session serializes
// its operations; callers that need parallelism use one Session each.
package sdk

import (
	"context"
	"iter"
	"sync"

	"github.com/Klingon-tech/klingnet-sdk/internal/builder"
	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-sdk/internal/shielded"
	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Client is the chain access a Session needs. *rpcclient.Client implements it.
type Client interface {
	builder.Querier
	QueryEpoch(ctx context.Context) (types.Epoch, error)
	IsRevealPKNeeded(ctx context.Context, addr types.Address) (bool, error)
	Submit(ctx context.Context, txBytes []byte) (*rpcclient.TxResult, error)
}

// Builders has one entry point per transaction kind. *builder.Builder
// implements it.
type Builders interface {
	Bond(ctx context.Context, common *msg.TxMsg, args *msg.BondMsg) (*tx.Tx, *tx.SigningData, error)
	Unbond(ctx context.Context, common *msg.TxMsg, args *msg.UnbondMsg) (*tx.Tx, *tx.SigningData, error)
	Withdraw(ctx context.Context, common *msg.TxMsg, args *msg.WithdrawMsg) (*tx.Tx, *tx.SigningData, error)
	Transfer(ctx context.Context, common *msg.TxMsg, args *msg.TransferMsg) (*tx.Tx, *tx.SigningData, error)
	IbcTransfer(ctx context.Context, common *msg.TxMsg, args *msg.IbcTransferMsg) (*tx.Tx, *tx.SigningData, error)
	EthBridgeTransfer(ctx context.Context, common *msg.TxMsg, args *msg.EthBridgeTransferMsg) (*tx.Tx, *tx.SigningData, error)
	RevealPK(ctx context.Context, common *msg.TxMsg, pubKey []byte) (*tx.Tx, *tx.SigningData, error)
	VoteProposal(ctx context.Context, common *msg.TxMsg, args *msg.VoteProposalMsg, epoch types.Epoch) (*tx.Tx, *tx.SigningData, error)
}

// Session is the state shared by every operation.
//
// One mutex guards the whole Session and is held for the duration of each
// operation, network calls included. A Submit waiting for inclusion or an
// EnsureRevealed querying the node blocks every other call on the same
// Session until it returns or ctx is done.
type Session struct {
	mu          sync.Mutex
	client      Client
	builders    Builders
	wallet      *wallet.Wallet
	params      *shielded.Cache
	nativeToken types.Address
}

// New creates a session using the reference builders. A nil wallet starts
// empty.
func New(client Client, w *wallet.Wallet, nativeToken types.Address) *Session {
	return NewWithBuilders(client, builder.New(client, nativeToken), w, nativeToken)
}

// NewWithBuilders creates a session dispatching to the given builders.
func NewWithBuilders(client Client, b Builders, w *wallet.Wallet, nativeToken types.Address) *Session {
	if w == nil {
		w = wallet.New()
	}
	return &Session{
		client:      client,
		builders:    b,
		wallet:      w,
		params:      shielded.NewCache(),
		nativeToken: nativeToken,
	}
}

// NativeToken returns the chain's native token address.
func (s *Session) NativeToken() types.Address {
	return s.nativeToken
}

// AddSpendingKey stores a serialized extended spending key under alias.
func (s *Session) AddSpendingKey(xsk, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.AddSpendingKey(xsk, alias)
}

// Accounts lists the wallet's signing accounts.
func (s *Session) Accounts() []wallet.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.Accounts()
}

// InstallShieldedParams replaces the shielded parameters with exactly three
// blobs: spend, output, convert. Any other count panics with
// *shielded.InvariantViolation.
func (s *Session) InstallShieldedParams(blobs iter.Seq[[]byte]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Install(blobs)
}

// HasShieldedParams reports whether a full parameter set is installed.
func (s *Session) HasShieldedParams() bool {
	return s.params.Loaded()
}

// ShieldedParams returns the installed parameter set.
func (s *Session) ShieldedParams() (shielded.Params, bool) {
	return s.params.Params()
}

// Submit broadcasts a signed transaction and waits for its inclusion.
// Failures are returned as is; nothing is retried.
func (s *Session) Submit(ctx context.Context, txBytes, common []byte) (*rpcclient.TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := msg.DecodeTx(common)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, txBytes, c)
}

func (s *Session) submit(ctx context.Context, txBytes []byte, c *msg.TxMsg) (*rpcclient.TxResult, error) {
	t, err := tx.Decode(txBytes)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "transaction", Err: err}
	}
	if t.Header.ChainID != c.ChainID {
		return nil, ErrChainMismatch
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	l := log.WithTx(log.SDK, t.ID())
	l.Debug().Msg("Submitting transaction")
	res, err := s.client.Submit(ctx, txBytes)
	if err != nil {
		return nil, err
	}
	l.Info().Uint64("height", res.Height).Msg("Transaction applied")
	return res, nil
}
