// Package vm defines the state access contract between the host execution
// environment and the gcurio native modules.
package vm

import (
	"math/big"

	"github.com/curio-network/gcurio/common"
)

// StateDB is the subset of the host state interface that native modules
// operate on. Mutations are journaled by the implementation; Snapshot and
// RevertToSnapshot give callers all-or-nothing semantics around module
// execution.
type StateDB interface {
	CreateAccount(common.Address)
	Exist(common.Address) bool

	GetBalance(common.Address) *big.Int
	AddBalance(common.Address, *big.Int)
	SubBalance(common.Address, *big.Int)

	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	Snapshot() int
	RevertToSnapshot(int)
}
