package assetreg

import (
	"fmt"
	"math/big"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&registryHandler{})
}

// registryHandler implements sysaction.Handler for asset registry actions.
type registryHandler struct{}

func (h *registryHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionAssetCreate,
		sysaction.ActionAssetTransfer,
		sysaction.ActionAssetApprove,
		sysaction.ActionAssetApproveAll:
		return true
	}
	return false
}

func (h *registryHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	db := ctx.StateDB
	from := ctx.From

	switch sa.Action {
	case sysaction.ActionAssetCreate:
		var p sysaction.AssetCreatePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("asset create: %w", err)
		}
		reg, err := collectionFromPayload(p.Collection)
		if err != nil {
			return err
		}
		to, err := addressFromPayload("to", p.To)
		if err != nil {
			return err
		}
		id, err := assetIDFromPayload(p.AssetID)
		if err != nil {
			return err
		}
		return reg.Create(db, from, to, id, p.URI)

	case sysaction.ActionAssetTransfer:
		var p sysaction.AssetTransferPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("asset transfer: %w", err)
		}
		reg, err := collectionFromPayload(p.Collection)
		if err != nil {
			return err
		}
		fromAddr, err := addressFromPayload("from", p.From)
		if err != nil {
			return err
		}
		to, err := addressFromPayload("to", p.To)
		if err != nil {
			return err
		}
		id, err := assetIDFromPayload(p.AssetID)
		if err != nil {
			return err
		}
		return reg.Transfer(db, from, fromAddr, to, id)

	case sysaction.ActionAssetApprove:
		var p sysaction.AssetApprovePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("asset approve: %w", err)
		}
		reg, err := collectionFromPayload(p.Collection)
		if err != nil {
			return err
		}
		to, err := addressFromPayload("to", p.To)
		if err != nil {
			return err
		}
		id, err := assetIDFromPayload(p.AssetID)
		if err != nil {
			return err
		}
		return reg.Approve(db, from, to, id)

	case sysaction.ActionAssetApproveAll:
		var p sysaction.AssetApproveAllPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("asset approve all: %w", err)
		}
		reg, err := collectionFromPayload(p.Collection)
		if err != nil {
			return err
		}
		operator, err := addressFromPayload("operator", p.Operator)
		if err != nil {
			return err
		}
		return reg.SetApprovalForAll(db, from, operator, p.Approved)
	}
	return fmt.Errorf("assetreg handler: unsupported action %q", sa.Action)
}

func collectionFromPayload(s string) (Registry, error) {
	if !common.IsHexAddress(s) {
		return Registry{}, fmt.Errorf("assetreg: invalid collection address: %q", s)
	}
	return At(common.HexToAddress(s)), nil
}

func addressFromPayload(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("assetreg: invalid %s address: %q", field, s)
	}
	return common.HexToAddress(s), nil
}

func assetIDFromPayload(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, ErrInvalidAssetID
	}
	return id, nil
}
