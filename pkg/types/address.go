package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 20

// Bech32 prefixes of the two networks.
const (
	MainnetHRP = "kgx"
	TestnetHRP = "tkgx"
)

// activeHRP is the prefix String and MarshalText print with. It is set once
// at startup by SetAddressHRP.
var activeHRP = MainnetHRP

// SetAddressHRP selects the network prefix used to print addresses.
func SetAddressHRP(hrp string) {
	activeHRP = hrp
}

// Address is the 160-bit hash of an account's public key. The zero address
// names the native token when used as a token id.
type Address [AddressSize]byte

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the bech32 form under the active network prefix.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err == nil {
		var s string
		if s, err = bech32.Encode(activeHRP, conv); err == nil {
			return s
		}
	}
	return activeHRP + ":" + hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// MarshalText encodes the address in bech32. JSON-RPC params use it.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts anything ParseAddress does. Empty text is the zero
// address.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress reads a bech32 address of either network ("kgx1...",
// "tkgx1...") or 40 hex characters with an optional 0x prefix.
func ParseAddress(s string) (Address, error) {
	var raw []byte
	switch h := strings.TrimPrefix(s, "0x"); {
	case s == "":
		return Address{}, fmt.Errorf("empty address")
	case len(h) == 2*AddressSize:
		b, err := hex.DecodeString(h)
		if err != nil {
			return Address{}, fmt.Errorf("invalid hex address: %w", err)
		}
		raw = b
	default:
		hrp, data, err := bech32.Decode(s)
		if err != nil {
			return Address{}, fmt.Errorf("invalid bech32 address: %w", err)
		}
		if hrp != MainnetHRP && hrp != TestnetHRP {
			return Address{}, fmt.Errorf("unknown address prefix %q", hrp)
		}
		if raw, err = bech32.ConvertBits(data, 5, 8, false); err != nil {
			return Address{}, fmt.Errorf("invalid bech32 payload: %w", err)
		}
	}
	if len(raw) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}
