package msg

import (
	"fmt"
	"strings"
)

// Kind identifies a transaction kind. Values are part of the wire form.
type Kind uint8

const (
	KindBond              Kind = 1
	KindUnbond            Kind = 2
	KindWithdraw          Kind = 3
	KindTransfer          Kind = 4
	KindIBCTransfer       Kind = 5
	KindEthBridgeTransfer Kind = 6
	KindRevealPK          Kind = 7
	KindVoteProposal      Kind = 8
)

var kindNames = map[Kind]string{
	KindBond:              "bond",
	KindUnbond:            "unbond",
	KindWithdraw:          "withdraw",
	KindTransfer:          "transfer",
	KindIBCTransfer:       "ibc-transfer",
	KindEthBridgeTransfer: "eth-bridge-transfer",
	KindRevealPK:          "reveal-pk",
	KindVoteProposal:      "vote-proposal",
}

// Kinds lists every kind in tag order.
var Kinds = []Kind{
	KindBond, KindUnbond, KindWithdraw, KindTransfer,
	KindIBCTransfer, KindEthBridgeTransfer, KindRevealPK, KindVoteProposal,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a kind name as printed by String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction kind %q", s)
}
