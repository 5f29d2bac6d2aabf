// Package params holds the protocol constants shared by the gcurio
// settlement subsystem.
package params

import "github.com/curio-network/gcurio/common"

// Well-known module account addresses. The trailing bytes spell the module
// name in ASCII so the accounts are recognisable in raw state dumps.
var (
	// SettlementAddress is the account that holds escrowed sale value and the
	// settlement module's persistent state ("CURIO1").
	SettlementAddress = common.HexToAddress("0x0000000000000000000000000000435552494F31")
)

// Gas constants for system action transactions.
const (
	// TxGas is the base cost of any transaction.
	TxGas uint64 = 21000

	// TxDataZeroGas is charged per zero byte of action payload data.
	TxDataZeroGas uint64 = 4

	// TxDataNonZeroGas is charged per non-zero byte of action payload data.
	TxDataNonZeroGas uint64 = 16

	// SysActionGas is the flat execution cost of dispatching a system action.
	SysActionGas uint64 = 50000

	// SettlementBaseGas is the flat cost of a purchase settlement on top of
	// the system action dispatch.
	SettlementBaseGas uint64 = 60000

	// SettlementPayeeGas is charged per distribution recipient, covering the
	// balance push and a bounded receive-hook invocation.
	SettlementPayeeGas uint64 = 9000
)
