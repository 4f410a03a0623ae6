package rpcclient

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/pkg/types"
)

// Transaction statuses reported by tx_getStatus.
const (
	StatusPending  = "pending"
	StatusApplied  = "applied"
	StatusRejected = "rejected"
)

// ErrInclusionTimeout is returned when a broadcast transaction is still
// pending after the inclusion timeout.
var ErrInclusionTimeout = errors.New("timed out waiting for inclusion")

// TxResult is the outcome of a broadcast transaction.
type TxResult struct {
	TxID   string `json:"tx_id"`
	Status string `json:"status"`
	Height uint64 `json:"height,omitempty"`
	Code   int    `json:"code,omitempty"`
	Log    string `json:"log,omitempty"`
}

// TxRejectedError reports a transaction the ledger refused.
type TxRejectedError struct {
	Result TxResult
}

func (e *TxRejectedError) Error() string {
	return fmt.Sprintf("tx %s rejected (code %d): %s", e.Result.TxID, e.Result.Code, e.Result.Log)
}

// QueryEpoch returns the current chain epoch.
func (c *Client) QueryEpoch(ctx context.Context) (types.Epoch, error) {
	var res struct {
		Epoch types.Epoch `json:"epoch"`
	}
	if err := c.Call(ctx, "chain_getEpoch", nil, &res); err != nil {
		return 0, fmt.Errorf("query epoch: %w", err)
	}
	return res.Epoch, nil
}

// IsRevealPKNeeded reports whether addr still has to reveal its public key
// before it can sign.
func (c *Client) IsRevealPKNeeded(ctx context.Context, addr types.Address) (bool, error) {
	var res struct {
		Needed bool `json:"needed"`
	}
	params := map[string]any{"address": addr}
	if err := c.Call(ctx, "account_isRevealPKNeeded", params, &res); err != nil {
		return false, fmt.Errorf("query reveal status of %s: %w", addr, err)
	}
	return res.Needed, nil
}

// QueryBalance returns owner's balance of token.
func (c *Client) QueryBalance(ctx context.Context, owner, token types.Address) (uint64, error) {
	var res struct {
		Balance uint64 `json:"balance"`
	}
	params := map[string]any{"address": owner, "token": token}
	if err := c.Call(ctx, "account_getBalance", params, &res); err != nil {
		return 0, fmt.Errorf("query balance of %s: %w", owner, err)
	}
	return res.Balance, nil
}

// QueryProposal returns a governance proposal, or nil if it does not exist.
func (c *Client) QueryProposal(ctx context.Context, id uint64) (*types.Proposal, error) {
	var res *types.Proposal
	if err := c.Call(ctx, "gov_getProposal", map[string]any{"id": id}, &res); err != nil {
		return nil, fmt.Errorf("query proposal %d: %w", id, err)
	}
	return res, nil
}

// Broadcast submits a signed transaction and returns its id.
func (c *Client) Broadcast(ctx context.Context, txBytes []byte) (string, error) {
	var res struct {
		TxID string `json:"tx_id"`
	}
	params := map[string]any{"tx": hex.EncodeToString(txBytes)}
	if err := c.Call(ctx, "tx_submit", params, &res); err != nil {
		return "", fmt.Errorf("broadcast tx: %w", err)
	}
	log.RPC.Debug().Str("tx_id", res.TxID).Msg("Transaction broadcast")
	return res.TxID, nil
}

// TxStatus returns the current status of a broadcast transaction.
func (c *Client) TxStatus(ctx context.Context, txID string) (*TxResult, error) {
	var res TxResult
	if err := c.Call(ctx, "tx_getStatus", map[string]any{"tx_id": txID}, &res); err != nil {
		return nil, fmt.Errorf("query tx %s status: %w", txID, err)
	}
	if res.TxID == "" {
		res.TxID = txID
	}
	return &res, nil
}

// WaitForInclusion polls until the transaction leaves the pending state or
// the inclusion timeout elapses. A rejected transaction is returned as
// *TxRejectedError.
func (c *Client) WaitForInclusion(ctx context.Context, txID string) (*TxResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.InclusionTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	stopped := func() error {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("tx %s: %w", txID, ErrInclusionTimeout)
		}
		return ctx.Err()
	}

	for {
		res, err := c.TxStatus(ctx, txID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, stopped()
			}
			return nil, err
		}
		switch res.Status {
		case StatusApplied:
			log.RPC.Debug().Str("tx_id", txID).Uint64("height", res.Height).Msg("Transaction included")
			return res, nil
		case StatusRejected:
			return res, &TxRejectedError{Result: *res}
		}

		select {
		case <-ctx.Done():
			return nil, stopped()
		case <-ticker.C:
		}
	}
}

// Submit broadcasts a signed transaction and waits for its inclusion.
// Nothing is retried.
func (c *Client) Submit(ctx context.Context, txBytes []byte) (*TxResult, error) {
	id, err := c.Broadcast(ctx, txBytes)
	if err != nil {
		return nil, err
	}
	return c.WaitForInclusion(ctx, id)
}
