package settlement

import (
	"errors"
	"math"

	"github.com/curio-network/gcurio/params"
)

// ErrGasOverflow is returned when a gas estimate does not fit in uint64.
var ErrGasOverflow = errors.New("settlement: gas estimate overflows")

func intrinsicDataGas(payload []byte) (uint64, error) {
	gas := params.TxGas
	if len(payload) == 0 {
		return gas, nil
	}
	var nonZero uint64
	for _, b := range payload {
		if b != 0 {
			nonZero++
		}
	}
	if (math.MaxUint64-gas)/params.TxDataNonZeroGas < nonZero {
		return 0, ErrGasOverflow
	}
	gas += nonZero * params.TxDataNonZeroGas
	zero := uint64(len(payload)) - nonZero
	if (math.MaxUint64-gas)/params.TxDataZeroGas < zero {
		return 0, ErrGasOverflow
	}
	gas += zero * params.TxDataZeroGas
	return gas, nil
}

// EstimatePurchaseGas returns deterministic gas for an encoded purchase
// payload with the given recipient count.
func EstimatePurchaseGas(payload []byte, payees int) (uint64, error) {
	if payees <= 0 {
		return 0, ErrMalformedDistribution
	}
	intrinsic, err := intrinsicDataGas(payload)
	if err != nil {
		return 0, err
	}
	if uint64(payees) > (math.MaxUint64-params.SettlementBaseGas)/params.SettlementPayeeGas {
		return 0, ErrGasOverflow
	}
	settle := params.SettlementBaseGas + uint64(payees)*params.SettlementPayeeGas
	if intrinsic > math.MaxUint64-settle {
		return 0, ErrGasOverflow
	}
	return intrinsic + settle, nil
}
