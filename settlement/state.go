package settlement

import (
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/curio-network/gcurio/crypto"
	"github.com/curio-network/gcurio/params"
)

// --- slot derivation ---

func settlementSlot(field string) common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte("curio.settlement." + field)))
}

var (
	authoritySlot = settlementSlot("trustedAuthority")
	adminSlot     = settlementSlot("admin")
)

// Initialize seeds the settlement module state: the given address becomes
// both the admin capability holder and the initial trusted authority. The
// module account is created so it can hold escrowed value.
func Initialize(db vm.StateDB, admin common.Address) {
	db.CreateAccount(params.SettlementAddress)
	db.SetState(params.SettlementAddress, adminSlot, admin.Hash())
	db.SetState(params.SettlementAddress, authoritySlot, admin.Hash())
}

func readAdmin(db vm.StateDB) common.Address {
	return common.BytesToAddress(db.GetState(params.SettlementAddress, adminSlot).Bytes())
}

func readTrustedAuthority(db vm.StateDB) common.Address {
	return common.BytesToAddress(db.GetState(params.SettlementAddress, authoritySlot).Bytes())
}

// SetTrustedAuthority rotates the trusted authority; admin only. Rotation
// is immediate and total: signatures produced under the previous authority
// become permanently unverifiable.
func SetTrustedAuthority(db vm.StateDB, caller, authority common.Address) error {
	if caller != readAdmin(db) {
		return ErrUnauthorized
	}
	if authority == (common.Address{}) {
		return ErrZeroAuthority
	}
	db.SetState(params.SettlementAddress, authoritySlot, authority.Hash())
	return nil
}

// GetTrustedAuthority returns the current trusted authority; admin only.
func GetTrustedAuthority(db vm.StateDB, caller common.Address) (common.Address, error) {
	if caller != readAdmin(db) {
		return common.Address{}, ErrUnauthorized
	}
	return readTrustedAuthority(db), nil
}
