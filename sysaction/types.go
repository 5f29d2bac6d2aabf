// Package sysaction implements the gcurio system action protocol.
//
// System actions are special transactions sent to a module account. Their
// tx.Data field is a JSON-encoded SysAction message. No VM is invoked;
// instead the state processor calls sysaction.Execute() which dispatches to
// the appropriate handler (asset registry or settlement).
package sysaction

import "encoding/json"

// ActionKind identifies the type of system action.
type ActionKind string

const (
	// Asset registry operations
	ActionAssetCreate     ActionKind = "ASSET_CREATE"
	ActionAssetTransfer   ActionKind = "ASSET_TRANSFER"
	ActionAssetApprove    ActionKind = "ASSET_APPROVE"
	ActionAssetApproveAll ActionKind = "ASSET_APPROVE_ALL"

	// Settlement operations
	ActionAssetPurchase ActionKind = "ASSET_PURCHASE"
	ActionAuthoritySet  ActionKind = "AUTHORITY_SET"
)

// knownActions is the dispatchable protocol vocabulary.
var knownActions = map[ActionKind]struct{}{
	ActionAssetCreate:     {},
	ActionAssetTransfer:   {},
	ActionAssetApprove:    {},
	ActionAssetApproveAll: {},
	ActionAssetPurchase:   {},
	ActionAuthoritySet:    {},
}

// Valid reports whether k is part of the protocol vocabulary.
func (k ActionKind) Valid() bool {
	_, ok := knownActions[k]
	return ok
}

// SysAction is the top-level envelope stored in tx.Data for system action txs.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AssetCreatePayload is the payload for ASSET_CREATE. The sender must hold
// the minter capability on the collection.
type AssetCreatePayload struct {
	Collection string `json:"collection"`
	To         string `json:"to"`
	AssetID    string `json:"asset_id"` // decimal
	URI        string `json:"uri,omitempty"`
}

// AssetTransferPayload is the payload for ASSET_TRANSFER.
type AssetTransferPayload struct {
	Collection string `json:"collection"`
	From       string `json:"from"`
	To         string `json:"to"`
	AssetID    string `json:"asset_id"` // decimal
}

// AssetApprovePayload is the payload for ASSET_APPROVE (per-asset approval).
type AssetApprovePayload struct {
	Collection string `json:"collection"`
	To         string `json:"to"`
	AssetID    string `json:"asset_id"` // decimal
}

// AssetApproveAllPayload is the payload for ASSET_APPROVE_ALL (operator
// approval over every asset of the sender).
type AssetApproveAllPayload struct {
	Collection string `json:"collection"`
	Operator   string `json:"operator"`
	Approved   bool   `json:"approved"`
}

// PurchasePayload is the payload for ASSET_PURCHASE. Payees and Amounts are
// parallel sequences; tx.Value must equal the sum of Amounts exactly.
type PurchasePayload struct {
	Collection   string   `json:"collection"`
	AssetID      string   `json:"asset_id"` // decimal
	Payees       []string `json:"payees"`
	Amounts      []string `json:"amounts"` // decimal
	CreatorSig   string   `json:"creator_sig"`   // 0x-hex, 65 bytes
	AuthoritySig string   `json:"authority_sig"` // 0x-hex, 65 bytes
	Preexisting  bool     `json:"preexisting"`
	URI          string   `json:"uri,omitempty"` // delivery metadata for deferred creation
}

// AuthoritySetPayload is the payload for AUTHORITY_SET.
type AuthoritySetPayload struct {
	Authority string `json:"authority"`
}
