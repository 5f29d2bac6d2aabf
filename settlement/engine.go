package settlement

import (
	"fmt"
	"math/big"

	"github.com/curio-network/gcurio/assetreg"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/holiman/uint256"
)

// AssetRegistry is the collaborator contract the engine settles against.
// assetreg.Registry satisfies it; tests may substitute their own.
type AssetRegistry interface {
	OwnerOf(db vm.StateDB, id *big.Int) (common.Address, error)
	Exists(db vm.StateDB, id *big.Int) bool
	GetApproved(db vm.StateDB, id *big.Int) common.Address
	IsApprovedForAll(db vm.StateDB, owner, operator common.Address) bool
	Transfer(db vm.StateDB, operator, from, to common.Address, id *big.Int) error
	Create(db vm.StateDB, minter, to common.Address, id *big.Int, uri string) error
}

// RegistryResolver maps a collection address from sale terms onto a
// registry instance.
type RegistryResolver func(collection common.Address) (AssetRegistry, error)

// ReceiveHook is recipient-controlled code run when a payout lands on the
// recipient's account. This is the untrusted callout boundary of the
// protocol: funds have already moved when the hook runs, and the hook may
// attempt to re-enter the engine.
type ReceiveHook interface {
	PaymentReceived(db vm.StateDB, from, to common.Address, amount *big.Int) error
}

// HookFunc adapts a plain function to a ReceiveHook.
type HookFunc func(db vm.StateDB, from, to common.Address, amount *big.Int) error

// PaymentReceived implements ReceiveHook.
func (f HookFunc) PaymentReceived(db vm.StateDB, from, to common.Address, amount *big.Int) error {
	return f(db, from, to, amount)
}

// Engine orchestrates one-shot sale settlement for a single deployment
// address. The address is embedded in every signed sale digest, scoping
// signatures to this deployment.
type Engine struct {
	addr     common.Address
	resolve  RegistryResolver
	hooks    map[common.Address]ReceiveHook
	inFlight bool
}

// NewEngine creates an engine identified by addr, resolving collections
// through resolve.
func NewEngine(addr common.Address, resolve RegistryResolver) *Engine {
	return &Engine{
		addr:    addr,
		resolve: resolve,
		hooks:   make(map[common.Address]ReceiveHook),
	}
}

// Address returns the engine's settlement context identity.
func (e *Engine) Address() common.Address { return e.addr }

// SetReceiveHook installs (or, with a nil hook, removes) recipient code for
// addr.
func (e *Engine) SetReceiveHook(addr common.Address, hook ReceiveHook) {
	if hook == nil {
		delete(e.hooks, addr)
		return
	}
	e.hooks[addr] = hook
}

// Purchase settles one sale for buyer. The attached value must already sit
// on the engine account; the system action handler escrows it there before
// calling. Validation runs fully before any payout, payouts run strictly
// before asset delivery, and any error leaves the caller responsible for
// reverting state (sysaction.ExecuteWithContext does so via snapshot).
//
// The in-flight guard makes the whole operation mutually exclusive against
// itself: recipient hooks invoked during payout cannot re-enter regardless
// of which step the outer call is in.
func (e *Engine) Purchase(db vm.StateDB, buyer common.Address, value *big.Int, req *PurchaseRequest) error {
	if e.inFlight {
		return ErrReentrancyRejected
	}
	e.inFlight = true
	defer func() { e.inFlight = false }()

	// Received -> SignatureValidated. The context identity is the engine's
	// own address, never caller input: signatures collected for another
	// deployment must not verify here.
	terms := &SaleTerms{
		Registry: req.Registry,
		AssetID:  req.AssetID,
		Context:  e.addr,
		Payees:   req.Payees,
		Amounts:  req.Amounts,
	}
	creator, err := RecoverSigners(terms, req.CreatorSig, req.AuthoritySig, readTrustedAuthority(db))
	if err != nil {
		return err
	}

	reg, err := e.resolve(req.Registry)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownRegistry, err)
	}

	// SignatureValidated -> ProvenanceValidated.
	var owner common.Address
	if req.Preexisting {
		owner, err = reg.OwnerOf(db, req.AssetID)
		if err != nil {
			return err
		}
		if owner != creator {
			return ErrOwnershipMismatch
		}
		if owner == buyer {
			return ErrSelfPurchaseRejected
		}
		if reg.GetApproved(db, req.AssetID) != e.addr && !reg.IsApprovedForAll(db, owner, e.addr) {
			return ErrNotApproved
		}
	} else {
		if ExtractLeadingDigits(req.AssetID.Text(10), PrefixDigits) != DerivePrefix(creator) {
			return ErrAssetIDNotOwnedByCreator
		}
		// Collision is checked here, not left to Create: provenance must
		// fail before any payout so recipient hooks never run for a sale
		// that cannot deliver.
		if reg.Exists(db, req.AssetID) {
			return assetreg.ErrAssetExists
		}
	}

	// ProvenanceValidated -> DistributionValidated.
	total, err := distributionTotal(req.Payees, req.Amounts)
	if err != nil {
		return err
	}
	if value == nil || value.Cmp(total) != 0 {
		return ErrValueMismatch
	}

	// DistributionValidated -> Settled. Push payments land before the
	// recipient's hook runs, and all payouts complete before delivery.
	for i, payee := range req.Payees {
		db.SubBalance(e.addr, req.Amounts[i])
		db.AddBalance(payee, req.Amounts[i])
		if hook := e.hooks[payee]; hook != nil {
			if err := hook.PaymentReceived(db, e.addr, payee, req.Amounts[i]); err != nil {
				return fmt.Errorf("settlement: receive hook for %s: %w", payee.Hex(), err)
			}
		}
	}

	if req.Preexisting {
		return reg.Transfer(db, e.addr, owner, buyer, req.AssetID)
	}
	return reg.Create(db, e.addr, buyer, req.AssetID, req.Metadata)
}

// distributionTotal validates every distribution entry and returns the
// exact sum. Sums beyond 256 bits are rejected rather than wrapped.
func distributionTotal(payees []common.Address, amounts []*big.Int) (*big.Int, error) {
	if len(payees) == 0 || len(payees) != len(amounts) {
		return nil, ErrMalformedDistribution
	}
	total := new(big.Int)
	for i, payee := range payees {
		if payee == (common.Address{}) {
			return nil, ErrInvalidPayee
		}
		amount := amounts[i]
		if amount == nil || amount.Sign() <= 0 {
			return nil, ErrZeroAmount
		}
		if _, overflow := uint256.FromBig(amount); overflow {
			return nil, ErrAmountOverflow
		}
		total.Add(total, amount)
		if _, overflow := uint256.FromBig(total); overflow {
			return nil, ErrAmountOverflow
		}
	}
	return total, nil
}
