// Package assetreg implements the unique-asset registry as a gcurio native
// module. Each collection is a separate namespace keyed by its account
// address; ownership, approvals, metadata and the minter capability live in
// that account's storage.
package assetreg

import "errors"

// Sentinel errors returned by registry operations and the system action
// handler.
var (
	ErrInvalidAssetID     = errors.New("assetreg: asset id must be a non-negative 256-bit integer")
	ErrAssetNotFound      = errors.New("assetreg: asset does not exist")
	ErrAssetExists        = errors.New("assetreg: asset already exists")
	ErrZeroAddress        = errors.New("assetreg: zero address not allowed")
	ErrNotMinter          = errors.New("assetreg: caller lacks minter capability")
	ErrNotCollectionAdmin = errors.New("assetreg: caller is not the collection admin")
	ErrNotAuthorized      = errors.New("assetreg: caller not authorized to move asset")
	ErrFromMismatch       = errors.New("assetreg: from address is not the asset owner")
	ErrAlreadyInitialized = errors.New("assetreg: collection already initialized")
)
