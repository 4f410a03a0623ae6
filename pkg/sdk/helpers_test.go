package sdk

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/Klingon-tech/klingnet-sdk/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

const testChainID = "klingnet-test"

var testNativeToken = types.Address{0xEE}

// fakeClient is an in-memory chain. Submitting a reveal marks the key as
// revealed.
type fakeClient struct {
	mu         sync.Mutex
	epoch      types.Epoch
	epochErr   error
	balance    uint64
	proposal   *types.Proposal
	revealed   map[types.Address]bool
	revealErr  error
	submitErr  error
	submitted  [][]byte
	revealAsks int
}

func newFakeClient() *fakeClient {
	return &fakeClient{epoch: 7, balance: 1_000_000, revealed: make(map[types.Address]bool)}
}

func (c *fakeClient) QueryBalance(context.Context, types.Address, types.Address) (uint64, error) {
	return c.balance, nil
}

func (c *fakeClient) QueryProposal(_ context.Context, id uint64) (*types.Proposal, error) {
	if c.proposal == nil || c.proposal.ID != id {
		return nil, nil
	}
	return c.proposal, nil
}

func (c *fakeClient) QueryEpoch(context.Context) (types.Epoch, error) {
	return c.epoch, c.epochErr
}

func (c *fakeClient) IsRevealPKNeeded(_ context.Context, addr types.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revealAsks++
	if c.revealErr != nil {
		return false, c.revealErr
	}
	return !c.revealed[addr], nil
}

func (c *fakeClient) Submit(_ context.Context, txBytes []byte) (*rpcclient.TxResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = append(c.submitted, txBytes)
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	t, err := tx.Decode(txBytes)
	if err != nil {
		return nil, err
	}
	if code, _ := t.Code(); string(code) == "tx_reveal-pk" {
		for _, sig := range t.Signatures() {
			if sig.Signer.Owner != nil {
				c.revealed[*sig.Signer.Owner] = true
			}
		}
	}
	return &rpcclient.TxResult{TxID: t.ID(), Status: rpcclient.StatusApplied, Height: 10}, nil
}

// recordingBuilders records which entry point was called and returns a
// minimal transaction.
type recordingBuilders struct {
	calls  []msg.Kind
	common *msg.TxMsg
	epoch  types.Epoch
	pubKey []byte
	err    error
}

func (b *recordingBuilders) result(kind msg.Kind, common *msg.TxMsg) (*tx.Tx, *tx.SigningData, error) {
	b.calls = append(b.calls, kind)
	b.common = common
	if b.err != nil {
		return nil, nil, b.err
	}
	t := tx.NewBuilder(common.ChainID).
		SetCode([]byte("tx_" + kind.String())).
		SetData([]byte{byte(kind)}).
		SetWrapper(tx.WrapperHeader{FeePayer: common.FeePayer}).
		Build()
	return t, &tx.SigningData{FeePayer: common.FeePayer}, nil
}

func (b *recordingBuilders) Bond(_ context.Context, c *msg.TxMsg, _ *msg.BondMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindBond, c)
}

func (b *recordingBuilders) Unbond(_ context.Context, c *msg.TxMsg, _ *msg.UnbondMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindUnbond, c)
}

func (b *recordingBuilders) Withdraw(_ context.Context, c *msg.TxMsg, _ *msg.WithdrawMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindWithdraw, c)
}

func (b *recordingBuilders) Transfer(_ context.Context, c *msg.TxMsg, _ *msg.TransferMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindTransfer, c)
}

func (b *recordingBuilders) IbcTransfer(_ context.Context, c *msg.TxMsg, _ *msg.IbcTransferMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindIBCTransfer, c)
}

func (b *recordingBuilders) EthBridgeTransfer(_ context.Context, c *msg.TxMsg, _ *msg.EthBridgeTransferMsg) (*tx.Tx, *tx.SigningData, error) {
	return b.result(msg.KindEthBridgeTransfer, c)
}

func (b *recordingBuilders) RevealPK(_ context.Context, c *msg.TxMsg, pubKey []byte) (*tx.Tx, *tx.SigningData, error) {
	b.pubKey = pubKey
	return b.result(msg.KindRevealPK, c)
}

func (b *recordingBuilders) VoteProposal(_ context.Context, c *msg.TxMsg, _ *msg.VoteProposalMsg, epoch types.Epoch) (*tx.Tx, *tx.SigningData, error) {
	b.epoch = epoch
	return b.result(msg.KindVoteProposal, c)
}

func genKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return k
}

func keyHex(k *crypto.PrivateKey) string {
	return hex.EncodeToString(k.Serialize())
}

func encodeMsg(t *testing.T, m msg.Message) []byte {
	t.Helper()
	b, err := msg.Encode(m)
	if err != nil {
		t.Fatalf("encode %T: %v", m, err)
	}
	return b
}

func commonArgs(t *testing.T, keys ...*crypto.PrivateKey) []byte {
	t.Helper()
	c := &msg.TxMsg{ChainID: testChainID, FeeAmountPerGas: 1, GasLimit: 10_000}
	for _, k := range keys {
		c.SigningKeys = append(c.SigningKeys, k.PublicKey())
	}
	return encodeMsg(t, c)
}

// validSpecific returns well-formed arguments for each kind.
func validSpecific(t *testing.T) map[msg.Kind][]byte {
	t.Helper()
	validator := types.Address{0x0A}
	return map[msg.Kind][]byte{
		msg.KindBond:     encodeMsg(t, &msg.BondMsg{Validator: validator, Amount: 10}),
		msg.KindUnbond:   encodeMsg(t, &msg.UnbondMsg{Validator: validator, Amount: 10}),
		msg.KindWithdraw: encodeMsg(t, &msg.WithdrawMsg{Validator: validator}),
		msg.KindTransfer: encodeMsg(t, &msg.TransferMsg{Target: types.Address{0x01}, Amount: 10}),
		msg.KindIBCTransfer: encodeMsg(t, &msg.IbcTransferMsg{
			Receiver: "cosmos1abc", Amount: 10, Port: "transfer", Channel: "channel-0",
		}),
		msg.KindEthBridgeTransfer: encodeMsg(t, &msg.EthBridgeTransferMsg{
			Asset: make([]byte, 20), Recipient: make([]byte, 20), Amount: 10,
		}),
		msg.KindRevealPK:     nil,
		msg.KindVoteProposal: encodeMsg(t, &msg.VoteProposalMsg{ProposalID: 1, Vote: msg.VoteYay}),
	}
}
