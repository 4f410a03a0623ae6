package wallet

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound matches every *KeyNotFoundError under errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// ErrAliasExists is returned when inserting under an alias already in use.
var ErrAliasExists = errors.New("alias already exists")

// KeyNotFoundError reports a signing or fee-payer key missing from the wallet.
// Ref is the alias or hex public key that was looked up.
type KeyNotFoundError struct {
	Ref string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Ref)
}

// Is reports whether target is ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}
