package assetreg

import (
	"math/big"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/curio-network/gcurio/crypto"
)

// --- slot derivation ---

func fieldSlot(field string, parts ...[]byte) common.Hash {
	key := append([]byte("curio.assets."), []byte(field)...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return common.BytesToHash(crypto.Keccak256(key))
}

func assetKey(id *big.Int) []byte {
	k := common.BigToHash(id)
	return k.Bytes()
}

// --- per-asset state ---

func getOwner(db vm.StateDB, collection common.Address, id *big.Int) common.Address {
	return common.BytesToAddress(db.GetState(collection, fieldSlot("owner", assetKey(id))).Bytes())
}

func setOwner(db vm.StateDB, collection common.Address, id *big.Int, owner common.Address) {
	db.SetState(collection, fieldSlot("owner", assetKey(id)), owner.Hash())
}

func getApprovedSlot(db vm.StateDB, collection common.Address, id *big.Int) common.Address {
	return common.BytesToAddress(db.GetState(collection, fieldSlot("approved", assetKey(id))).Bytes())
}

func setApprovedSlot(db vm.StateDB, collection common.Address, id *big.Int, to common.Address) {
	db.SetState(collection, fieldSlot("approved", assetKey(id)), to.Hash())
}

// --- operator approvals ---

func getOperatorFlag(db vm.StateDB, collection, owner, operator common.Address) bool {
	v := db.GetState(collection, fieldSlot("operator", owner.Bytes(), operator.Bytes()))
	return v != (common.Hash{})
}

func setOperatorFlag(db vm.StateDB, collection, owner, operator common.Address, approved bool) {
	var v common.Hash
	if approved {
		v = common.BigToHash(common.Big1)
	}
	db.SetState(collection, fieldSlot("operator", owner.Bytes(), operator.Bytes()), v)
}

// --- capabilities ---

func getMinterFlag(db vm.StateDB, collection, addr common.Address) bool {
	return db.GetState(collection, fieldSlot("minter", addr.Bytes())) != (common.Hash{})
}

func setMinterFlag(db vm.StateDB, collection, addr common.Address, enabled bool) {
	var v common.Hash
	if enabled {
		v = common.BigToHash(common.Big1)
	}
	db.SetState(collection, fieldSlot("minter", addr.Bytes()), v)
}

func getAdmin(db vm.StateDB, collection common.Address) common.Address {
	return common.BytesToAddress(db.GetState(collection, fieldSlot("admin")).Bytes())
}

func setAdmin(db vm.StateDB, collection common.Address, admin common.Address) {
	db.SetState(collection, fieldSlot("admin"), admin.Hash())
}

// --- metadata strings ---
//
// URIs are stored as a length slot plus 32-byte chunks at slots derived from
// the base slot and the chunk index.

func uriBaseSlot(id *big.Int) common.Hash {
	return fieldSlot("uri", assetKey(id))
}

func chunkSlot(base common.Hash, i uint64) common.Hash {
	return common.BytesToHash(crypto.Keccak256(base.Bytes(), common.BigToHash(new(big.Int).SetUint64(i)).Bytes()))
}

func writeString(db vm.StateDB, collection common.Address, base common.Hash, s string) {
	data := []byte(s)
	db.SetState(collection, base, common.BigToHash(new(big.Int).SetUint64(uint64(len(data)))))
	for i := uint64(0); i*32 < uint64(len(data)); i++ {
		var chunk common.Hash
		copy(chunk[:], data[i*32:])
		db.SetState(collection, chunkSlot(base, i), chunk)
	}
}

func readString(db vm.StateDB, collection common.Address, base common.Hash) string {
	length := db.GetState(collection, base).Big().Uint64()
	if length == 0 {
		return ""
	}
	data := make([]byte, 0, length)
	for i := uint64(0); i*32 < length; i++ {
		chunk := db.GetState(collection, chunkSlot(base, i))
		data = append(data, chunk.Bytes()...)
	}
	return string(data[:length])
}
