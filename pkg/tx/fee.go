package tx

import (
	"fmt"
	"math"
)

// MaxFee returns the most the fee payer can be charged: the per-gas fee
// times the gas limit. Returns an error if the product overflows uint64.
func (w *WrapperHeader) MaxFee() (uint64, error) {
	if w.GasLimit == 0 || w.FeeAmountPerGas == 0 {
		return 0, nil
	}
	if w.FeeAmountPerGas > math.MaxUint64/w.GasLimit {
		return 0, fmt.Errorf("fee overflow: %d per gas x %d gas", w.FeeAmountPerGas, w.GasLimit)
	}
	return w.FeeAmountPerGas * w.GasLimit, nil
}
