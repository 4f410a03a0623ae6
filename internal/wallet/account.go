package wallet

import "github.com/Klingon-tech/klingnet-sdk/pkg/types"

// Account describes a signing key held by the wallet. It never carries
// secret material.
type Account struct {
	Alias     string
	Address   types.Address
	PublicKey []byte
}
