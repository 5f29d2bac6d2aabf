package settlement

import (
	"fmt"
	"math/big"

	"github.com/curio-network/gcurio/assetreg"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/common/hexutil"
	"github.com/curio-network/gcurio/params"
	"github.com/curio-network/gcurio/sysaction"
)

// defaultEngine is the process-wide engine at the well-known settlement
// address, resolving every collection through the assetreg module.
var defaultEngine = NewEngine(params.SettlementAddress, func(collection common.Address) (AssetRegistry, error) {
	return assetreg.At(collection), nil
})

// DefaultEngine returns the engine registered for system action dispatch.
func DefaultEngine() *Engine { return defaultEngine }

func init() {
	sysaction.DefaultRegistry.Register(&settlementHandler{engine: defaultEngine})
}

// settlementHandler implements sysaction.Handler for purchase and authority
// rotation actions.
type settlementHandler struct {
	engine *Engine
}

func (h *settlementHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionAssetPurchase, sysaction.ActionAuthoritySet:
		return true
	}
	return false
}

func (h *settlementHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	db := ctx.StateDB
	value := ctx.Value
	if value == nil {
		value = new(big.Int)
	}

	switch sa.Action {
	case sysaction.ActionAssetPurchase:
		var p sysaction.PurchasePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("purchase: %w", err)
		}
		req, err := purchaseRequestFromPayload(&p)
		if err != nil {
			return err
		}
		// Escrow the attached value on the engine account before
		// orchestration, so payouts draw from the engine, not the buyer.
		if value.Sign() > 0 {
			if db.GetBalance(ctx.From).Cmp(value) < 0 {
				return ErrInsufficientBalance
			}
			db.SubBalance(ctx.From, value)
			db.AddBalance(h.engine.Address(), value)
		}
		return h.engine.Purchase(db, ctx.From, value, req)

	case sysaction.ActionAuthoritySet:
		var p sysaction.AuthoritySetPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("authority set: %w", err)
		}
		if !common.IsHexAddress(p.Authority) {
			return fmt.Errorf("authority set: invalid address: %q", p.Authority)
		}
		return SetTrustedAuthority(db, ctx.From, common.HexToAddress(p.Authority))
	}
	return fmt.Errorf("settlement handler: unsupported action %q", sa.Action)
}

func purchaseRequestFromPayload(p *sysaction.PurchasePayload) (*PurchaseRequest, error) {
	if !common.IsHexAddress(p.Collection) {
		return nil, fmt.Errorf("purchase: invalid collection address: %q", p.Collection)
	}
	assetID, ok := new(big.Int).SetString(p.AssetID, 10)
	if !ok || assetID.Sign() < 0 || assetID.BitLen() > 256 {
		return nil, ErrInvalidAssetID
	}
	if len(p.Payees) != len(p.Amounts) {
		return nil, ErrMalformedDistribution
	}
	payees := make([]common.Address, len(p.Payees))
	for i, s := range p.Payees {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPayee, s)
		}
		payees[i] = common.HexToAddress(s)
	}
	amounts := make([]*big.Int, len(p.Amounts))
	for i, s := range p.Amounts {
		amount, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("purchase: invalid amount: %q", s)
		}
		amounts[i] = amount
	}
	creatorSig, err := hexutil.Decode(p.CreatorSig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCreatorSignature, err)
	}
	authoritySig, err := hexutil.Decode(p.AuthoritySig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAuthoritySignature, err)
	}
	return &PurchaseRequest{
		Registry:     common.HexToAddress(p.Collection),
		AssetID:      assetID,
		Payees:       payees,
		Amounts:      amounts,
		CreatorSig:   creatorSig,
		AuthoritySig: authoritySig,
		Preexisting:  p.Preexisting,
		Metadata:     p.URI,
	}, nil
}
