package sdk

import (
	"context"

	"github.com/Klingon-tech/klingnet-sdk/internal/builder"
	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
)

// EnsureRevealed makes sure the first signing key of common is revealed on
// chain. If the chain reports it already is, nothing happens. Otherwise a
// reveal-pk transaction is built, signed with signingKey, submitted, and
// awaited. Any failure aborts the flow and is returned unmodified; nothing
// is retried.
func (s *Session) EnsureRevealed(ctx context.Context, signingKey string, common []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := msg.DecodeTx(common)
	if err != nil {
		return err
	}
	if len(c.SigningKeys) == 0 {
		return &BuilderError{Kind: msg.KindRevealPK, Err: builder.ErrNoSigningKeys}
	}
	addr := crypto.AddressFromPubKey(c.SigningKeys[0])
	l := log.SDK.With().Stringer("address", addr).Logger()

	needed, err := s.client.IsRevealPKNeeded(ctx, addr)
	if err != nil {
		return &QueryError{Op: "reveal pk needed", Err: err}
	}
	if !needed {
		l.Debug().Msg("Public key already revealed")
		return nil
	}

	built, err := s.build(ctx, msg.KindRevealPK, nil, c)
	if err != nil {
		return err
	}
	txBytes, err := s.sign(built, c, signingKey)
	if err != nil {
		return err
	}
	if _, err := s.submit(ctx, txBytes, c); err != nil {
		return err
	}
	l.Info().Msg("Public key revealed")
	return nil
}
