package sdk

import (
	"errors"

	"github.com/Klingon-tech/klingnet-sdk/internal/log"
	"github.com/Klingon-tech/klingnet-sdk/internal/wallet"
	"github.com/Klingon-tech/klingnet-sdk/pkg/crypto"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

// Sign signs a built transaction and returns its wire form. built is not
// modified.
//
// explicitKey is a hex secret key. When empty the well-known shielded source
// key signs instead. The raw section is signed only when the signing data
// declares an account key map. The wrapper section is always signed, by the
// wallet key bound to the fee payer or, when the wallet has none, by the
// same key that signed the raw section.
func (s *Session) Sign(built *BuiltTx, common []byte, explicitKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := msg.DecodeTx(common)
	if err != nil {
		return nil, err
	}
	return s.sign(built, c, explicitKey)
}

func (s *Session) sign(built *BuiltTx, c *msg.TxMsg, explicitKey string) ([]byte, error) {
	if built.Tx.Header.ChainID != c.ChainID {
		return nil, ErrChainMismatch
	}
	key, err := signingKey(explicitKey)
	if err != nil {
		return nil, err
	}
	t, err := built.Tx.Clone()
	if err != nil {
		return nil, err
	}
	sd := built.SigningData
	l := log.WithTx(log.Signing, t.ID())

	if sd.AccountPublicKeysMap != nil {
		if err := t.SignRaw([]crypto.Signer{key}, sd.AccountPublicKeysMap, sd.Owner); err != nil {
			if errors.Is(err, tx.ErrNoSigningKeys) {
				return nil, &wallet.KeyNotFoundError{Ref: "raw signer for " + ownerRef(sd)}
			}
			return nil, err
		}
	} else {
		l.Debug().Msg("No account key map, raw section left unsigned")
	}

	var payer crypto.Signer = key
	if found, err := s.wallet.FindFeePayerKey(sd.FeePayer); err == nil {
		payer = found
	} else if errors.Is(err, wallet.ErrKeyNotFound) {
		l.Debug().Msg("Fee payer not in wallet, using signing key")
	} else {
		return nil, err
	}
	if err := t.SignWrapper(payer); err != nil {
		return nil, err
	}
	return t.Encode()
}

func signingKey(explicit string) (*crypto.PrivateKey, error) {
	if explicit == "" {
		return crypto.ShieldedTxKey(), nil
	}
	key, err := crypto.PrivateKeyFromHex(explicit)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "signing key", Err: err}
	}
	return key, nil
}

func ownerRef(sd *tx.SigningData) string {
	if sd.Owner != nil {
		return sd.Owner.String()
	}
	return "bare keys"
}
