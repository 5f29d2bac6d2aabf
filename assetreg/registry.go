package assetreg

import (
	"math/big"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
)

// Registry provides the operations of one asset collection. The zero value
// is unusable; obtain instances through At.
type Registry struct {
	collection common.Address
}

// At returns the registry bound to the collection stored at addr.
func At(addr common.Address) Registry {
	return Registry{collection: addr}
}

// Collection returns the collection account address.
func (r Registry) Collection() common.Address { return r.collection }

func checkAssetID(id *big.Int) error {
	if id == nil || id.Sign() < 0 || id.BitLen() > 256 {
		return ErrInvalidAssetID
	}
	return nil
}

// InitializeCollection seeds the collection admin. The admin may grant and
// revoke the minter capability. Re-initialization is rejected.
func (r Registry) InitializeCollection(db vm.StateDB, admin common.Address) error {
	if admin == (common.Address{}) {
		return ErrZeroAddress
	}
	if getAdmin(db, r.collection) != (common.Address{}) {
		return ErrAlreadyInitialized
	}
	setAdmin(db, r.collection, admin)
	setMinterFlag(db, r.collection, admin, true)
	return nil
}

// SetMinter grants or revokes the minter capability; admin only.
func (r Registry) SetMinter(db vm.StateDB, caller, addr common.Address, enabled bool) error {
	if caller != getAdmin(db, r.collection) {
		return ErrNotCollectionAdmin
	}
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	setMinterFlag(db, r.collection, addr, enabled)
	return nil
}

// IsMinter reports whether addr holds the minter capability.
func (r Registry) IsMinter(db vm.StateDB, addr common.Address) bool {
	return getMinterFlag(db, r.collection, addr)
}

// Exists reports whether the asset has an owner.
func (r Registry) Exists(db vm.StateDB, id *big.Int) bool {
	if checkAssetID(id) != nil {
		return false
	}
	return getOwner(db, r.collection, id) != (common.Address{})
}

// OwnerOf returns the current owner of the asset.
func (r Registry) OwnerOf(db vm.StateDB, id *big.Int) (common.Address, error) {
	if err := checkAssetID(id); err != nil {
		return common.Address{}, err
	}
	owner := getOwner(db, r.collection, id)
	if owner == (common.Address{}) {
		return common.Address{}, ErrAssetNotFound
	}
	return owner, nil
}

// GetApproved returns the address approved to move the asset, zero if none.
func (r Registry) GetApproved(db vm.StateDB, id *big.Int) common.Address {
	if checkAssetID(id) != nil {
		return common.Address{}
	}
	return getApprovedSlot(db, r.collection, id)
}

// IsApprovedForAll reports whether operator may move every asset of owner.
func (r Registry) IsApprovedForAll(db vm.StateDB, owner, operator common.Address) bool {
	return getOperatorFlag(db, r.collection, owner, operator)
}

// TokenURI returns the metadata string attached at creation.
func (r Registry) TokenURI(db vm.StateDB, id *big.Int) (string, error) {
	if !r.Exists(db, id) {
		return "", ErrAssetNotFound
	}
	return readString(db, r.collection, uriBaseSlot(id)), nil
}

// Create mints the asset to the given owner with the given metadata. The
// minter argument must hold the minter capability; creation of an existing
// asset id fails.
func (r Registry) Create(db vm.StateDB, minter, to common.Address, id *big.Int, uri string) error {
	if err := checkAssetID(id); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if !getMinterFlag(db, r.collection, minter) {
		return ErrNotMinter
	}
	if getOwner(db, r.collection, id) != (common.Address{}) {
		return ErrAssetExists
	}
	setOwner(db, r.collection, id, to)
	if uri != "" {
		writeString(db, r.collection, uriBaseSlot(id), uri)
	}
	return nil
}

// Transfer moves the asset from its owner to another account. The operator
// argument is the acting party: it must be the owner, the per-asset approved
// address, or an approved operator for the owner. Any per-asset approval is
// cleared on transfer.
func (r Registry) Transfer(db vm.StateDB, operator, from, to common.Address, id *big.Int) error {
	if err := checkAssetID(id); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	owner := getOwner(db, r.collection, id)
	if owner == (common.Address{}) {
		return ErrAssetNotFound
	}
	if from != owner {
		return ErrFromMismatch
	}
	if operator != owner &&
		getApprovedSlot(db, r.collection, id) != operator &&
		!getOperatorFlag(db, r.collection, owner, operator) {
		return ErrNotAuthorized
	}
	setApprovedSlot(db, r.collection, id, common.Address{})
	setOwner(db, r.collection, id, to)
	return nil
}

// Approve sets the per-asset approved address; owner or operator only.
func (r Registry) Approve(db vm.StateDB, caller, to common.Address, id *big.Int) error {
	if err := checkAssetID(id); err != nil {
		return err
	}
	owner := getOwner(db, r.collection, id)
	if owner == (common.Address{}) {
		return ErrAssetNotFound
	}
	if caller != owner && !getOperatorFlag(db, r.collection, owner, caller) {
		return ErrNotAuthorized
	}
	setApprovedSlot(db, r.collection, id, to)
	return nil
}

// SetApprovalForAll sets or clears operator approval for every asset of the
// caller.
func (r Registry) SetApprovalForAll(db vm.StateDB, caller, operator common.Address, approved bool) error {
	if operator == (common.Address{}) {
		return ErrZeroAddress
	}
	setOperatorFlag(db, r.collection, caller, operator, approved)
	return nil
}
