// Package cbor is the canonical binary codec for every payload the SDK
// exchanges with callers: transactions, argument messages and signature
// bundles.
package cbor

import (
	"errors"
	"fmt"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

// RawMessage is a raw encoded CBOR value.
type RawMessage = _cbor.RawMessage

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once

	cachedDecMode     _cbor.DecMode
	cachedDecModeErr  error
	cachedDecModeOnce sync.Once
)

// getEncMode returns the cached deterministic encoder.
// Map keys are sorted so equal values always produce equal bytes, which is
// what section hashing relies on.
func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.CoreDetEncOptions()
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// getDecMode returns the cached strict decoder.
func getDecMode() (_cbor.DecMode, error) {
	cachedDecModeOnce.Do(func() {
		opts := _cbor.DecOptions{
			DupMapKey:         _cbor.DupMapKeyEnforcedAPF,
			ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
			MaxNestedLevels:   32,
		}
		cachedDecMode, cachedDecModeErr = opts.DecMode()
	})
	return cachedDecMode, cachedDecModeErr
}

// Encode serializes v in deterministic CBOR.
func Encode(v any) ([]byte, error) {
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	data, err := em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return data, nil
}

// Decode parses data into dest. Unknown fields, duplicate map keys and
// trailing bytes are all rejected.
func Decode(data []byte, dest any) error {
	if len(data) == 0 {
		return errors.New("cbor decode: empty input")
	}
	dm, err := getDecMode()
	if err != nil {
		return err
	}
	if err := dm.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}
