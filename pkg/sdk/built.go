package sdk

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/pkg/cbor"
	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
	"github.com/Klingon-tech/klingnet-sdk/pkg/tx"
)

// BuiltTx is an unsigned transaction together with its signing requirements.
type BuiltTx struct {
	Tx          *tx.Tx
	SigningData *tx.SigningData
}

// TxBytes returns the wire form of the unsigned transaction.
func (b *BuiltTx) TxBytes() ([]byte, error) {
	return b.Tx.Encode()
}

const builtVersion uint8 = 1

type builtEnvelope struct {
	Version     uint8           `cbor:"0,keyasint"`
	Tx          []byte          `cbor:"1,keyasint"`
	SigningData *tx.SigningData `cbor:"2,keyasint"`
}

// EncodeBuilt serializes b so it can be signed by another process.
func EncodeBuilt(b *BuiltTx) ([]byte, error) {
	txBytes, err := b.Tx.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode built tx: %w", err)
	}
	return cbor.Encode(&builtEnvelope{Version: builtVersion, Tx: txBytes, SigningData: b.SigningData})
}

// DecodeBuilt parses the output of EncodeBuilt.
func DecodeBuilt(data []byte) (*BuiltTx, error) {
	var env builtEnvelope
	if err := cbor.Decode(data, &env); err != nil {
		return nil, &msg.DecodeError{Structure: "built tx", Err: err}
	}
	if env.Version != builtVersion {
		return nil, &msg.DecodeError{Structure: "built tx", Err: fmt.Errorf("unsupported version %d", env.Version)}
	}
	if env.SigningData == nil {
		return nil, &msg.DecodeError{Structure: "built tx", Err: fmt.Errorf("missing signing data")}
	}
	t, err := tx.Decode(env.Tx)
	if err != nil {
		return nil, &msg.DecodeError{Structure: "built tx", Err: err}
	}
	return &BuiltTx{Tx: t, SigningData: env.SigningData}, nil
}
