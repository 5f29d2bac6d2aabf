// Package settlement implements one-shot sale settlement for unique digital
// assets: dual-signature sale authorization, creator-bound asset identifier
// prefixes, and atomic multi-recipient payout with deferred asset creation.
package settlement

import (
	"errors"
	"math/big"

	"github.com/curio-network/gcurio/common"
)

// Sentinel errors surfaced by settlement operations. All of them are
// definitive rejections: retrying the same call with the same terms can
// never succeed.
var (
	ErrInvalidAuthoritySignature = errors.New("settlement: authority signature does not recover to the trusted authority")
	ErrInvalidCreatorSignature   = errors.New("settlement: creator signature malformed")
	ErrOwnershipMismatch         = errors.New("settlement: asset owner does not match recovered creator")
	ErrSelfPurchaseRejected      = errors.New("settlement: buyer already owns the asset")
	ErrNotApproved               = errors.New("settlement: engine not approved to move the asset")
	ErrAssetIDNotOwnedByCreator  = errors.New("settlement: asset id prefix does not match creator")
	ErrMalformedDistribution     = errors.New("settlement: payee and amount sequences empty or mismatched")
	ErrInvalidPayee              = errors.New("settlement: payee must not be the zero address")
	ErrZeroAmount                = errors.New("settlement: distribution amount must be positive")
	ErrAmountOverflow            = errors.New("settlement: distribution total overflows 256 bits")
	ErrValueMismatch             = errors.New("settlement: attached value does not equal distribution total")
	ErrReentrancyRejected        = errors.New("settlement: purchase already in flight")
	ErrUnknownRegistry           = errors.New("settlement: unknown asset collection")
	ErrInvalidAssetID            = errors.New("settlement: asset id must be a non-negative 256-bit integer")
	ErrUnauthorized              = errors.New("settlement: caller lacks the admin capability")
	ErrZeroAuthority             = errors.New("settlement: trusted authority must not be the zero address")
	ErrInsufficientBalance       = errors.New("settlement: sender balance below attached value")
)

// SaleTerms is the signed five-field tuple binding one sale to one
// settlement deployment. Field order in the canonical encoding follows the
// struct order and must not change.
type SaleTerms struct {
	Registry common.Address   // asset collection address
	AssetID  *big.Int         // asset identifier, unsigned 256-bit
	Context  common.Address   // settlement engine identity
	Payees   []common.Address // payment recipients
	Amounts  []*big.Int       // payment amounts, parallel to Payees
}

// PurchaseRequest carries everything a purchase call needs beyond the
// buyer identity and attached value. Preexisting selects between transfer
// of an existing asset and deferred creation; Metadata is only meaningful
// for deferred creation.
type PurchaseRequest struct {
	Registry     common.Address
	AssetID      *big.Int
	Payees       []common.Address
	Amounts      []*big.Int
	CreatorSig   []byte
	AuthoritySig []byte
	Preexisting  bool
	Metadata     string
}
