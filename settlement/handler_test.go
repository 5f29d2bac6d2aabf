package settlement

import (
	"errors"
	"math/big"
	"testing"

	"github.com/curio-network/gcurio/assetreg"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/common/hexutil"
	"github.com/curio-network/gcurio/core/state"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/curio-network/gcurio/params"
	"github.com/curio-network/gcurio/sysaction"
)

// dispatchFixture exercises the full system action path: JSON envelope in,
// dispatch through the default registry, escrow and settlement by the
// process-wide engine.
type dispatchFixture struct {
	*engineFixture
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	f := newEngineFixture(t)
	// Dispatch goes through the process-wide engine, which shares the
	// fixture's collection and authority state via the same StateDB.
	return &dispatchFixture{engineFixture: f}
}

func (f *dispatchFixture) purchasePayload(t *testing.T, req *PurchaseRequest) []byte {
	t.Helper()
	payees := make([]string, len(req.Payees))
	for i, p := range req.Payees {
		payees[i] = p.Hex()
	}
	amounts := make([]string, len(req.Amounts))
	for i, a := range req.Amounts {
		amounts[i] = a.Text(10)
	}
	data, err := sysaction.MakeSysAction(sysaction.ActionAssetPurchase, &sysaction.PurchasePayload{
		Collection:   req.Registry.Hex(),
		AssetID:      req.AssetID.Text(10),
		Payees:       payees,
		Amounts:      amounts,
		CreatorSig:   hexutil.Encode(req.CreatorSig),
		AuthoritySig: hexutil.Encode(req.AuthoritySig),
		Preexisting:  req.Preexisting,
		URI:          req.Metadata,
	})
	if err != nil {
		t.Fatalf("failed to encode purchase action: %v", err)
	}
	return data
}

func (f *dispatchFixture) dispatch(from common.Address, value *big.Int, data []byte) error {
	return sysaction.ExecuteWithContext(&sysaction.Context{
		From:    from,
		Value:   value,
		StateDB: f.db,
	}, data)
}

func TestDispatchPurchase(t *testing.T) {
	f := newDispatchFixture(t)
	payee := common.HexToAddress("0x0d01")
	req := f.signedRequest(t, f.deferredID(t, "21"), []common.Address{payee}, []*big.Int{big.NewInt(400)})
	req.Metadata = "ipfs://QmDispatch"
	data := f.purchasePayload(t, req)

	f.db.AddBalance(testBuyer, big.NewInt(400))
	if err := f.dispatch(testBuyer, big.NewInt(400), data); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if have := f.db.GetBalance(testBuyer); have.Sign() != 0 {
		t.Fatalf("buyer balance after purchase: have %v want 0", have)
	}
	if have := f.db.GetBalance(payee); have.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("payee balance: have %v want 400", have)
	}
	reg := assetreg.At(req.Registry)
	owner, err := reg.OwnerOf(f.db, req.AssetID)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if owner != testBuyer {
		t.Fatalf("owner: have %s want %s", owner.Hex(), testBuyer.Hex())
	}
}

func TestDispatchPurchaseFailureReverts(t *testing.T) {
	f := newDispatchFixture(t)
	payee := common.HexToAddress("0x0d02")
	req := f.signedRequest(t, f.deferredID(t, "22"), []common.Address{payee}, []*big.Int{big.NewInt(400)})
	// Corrupt the authority signature so settlement fails after escrow.
	req.AuthoritySig[10] ^= 0xff
	data := f.purchasePayload(t, req)

	f.db.AddBalance(testBuyer, big.NewInt(400))
	if err := f.dispatch(testBuyer, big.NewInt(400), data); !errors.Is(err, ErrInvalidAuthoritySignature) {
		t.Fatalf("have %v want ErrInvalidAuthoritySignature", err)
	}

	// The snapshot revert must restore the escrowed value to the buyer and
	// leave the engine account empty.
	if have := f.db.GetBalance(testBuyer); have.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("buyer balance not restored: have %v want 400", have)
	}
	if have := f.db.GetBalance(params.SettlementAddress); have.Sign() != 0 {
		t.Fatalf("engine retained escrow: have %v", have)
	}
	if assetreg.At(req.Registry).Exists(f.db, req.AssetID) {
		t.Fatalf("asset created despite failed purchase")
	}
}

func TestDispatchPurchaseInsufficientBalance(t *testing.T) {
	f := newDispatchFixture(t)
	req := f.signedRequest(t, f.deferredID(t, "23"), []common.Address{f.creator}, []*big.Int{big.NewInt(400)})
	data := f.purchasePayload(t, req)

	f.db.AddBalance(testBuyer, big.NewInt(399))
	if err := f.dispatch(testBuyer, big.NewInt(400), data); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("have %v want ErrInsufficientBalance", err)
	}
}

func TestDispatchPurchaseMalformedPayload(t *testing.T) {
	f := newDispatchFixture(t)

	cases := []struct {
		name    string
		payload *sysaction.PurchasePayload
	}{
		{"bad collection", &sysaction.PurchasePayload{Collection: "not-an-address", AssetID: "1"}},
		{"bad asset id", &sysaction.PurchasePayload{Collection: testCollection.Hex(), AssetID: "12x4"}},
		{"bad payee", &sysaction.PurchasePayload{Collection: testCollection.Hex(), AssetID: "1", Payees: []string{"zzz"}, Amounts: []string{"1"}}},
		{"bad amount", &sysaction.PurchasePayload{Collection: testCollection.Hex(), AssetID: "1", Payees: []string{testBuyer.Hex()}, Amounts: []string{"1.5"}}},
		{"bad signature hex", &sysaction.PurchasePayload{Collection: testCollection.Hex(), AssetID: "1", Payees: []string{testBuyer.Hex()}, Amounts: []string{"1"}, CreatorSig: "0xzz"}},
	}
	for _, tc := range cases {
		data, err := sysaction.MakeSysAction(sysaction.ActionAssetPurchase, tc.payload)
		if err != nil {
			t.Fatalf("%s: encode failed: %v", tc.name, err)
		}
		if err := f.dispatch(testBuyer, nil, data); err == nil {
			t.Fatalf("%s: malformed payload accepted", tc.name)
		}
	}
}

func TestDispatchAuthoritySet(t *testing.T) {
	f := newDispatchFixture(t)
	next := common.HexToAddress("0x0e01")
	data, err := sysaction.MakeSysAction(sysaction.ActionAuthoritySet, &sysaction.AuthoritySetPayload{Authority: next.Hex()})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if err := f.dispatch(testBuyer, nil, data); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin rotation: have %v want ErrUnauthorized", err)
	}
	if err := f.dispatch(testAdmin, nil, data); err != nil {
		t.Fatalf("admin rotation failed: %v", err)
	}
	authority, err := GetTrustedAuthority(f.db, testAdmin)
	if err != nil {
		t.Fatalf("authority read failed: %v", err)
	}
	if authority != next {
		t.Fatalf("authority: have %s want %s", authority.Hex(), next.Hex())
	}
}

func TestDefaultEngineAddress(t *testing.T) {
	if have := DefaultEngine().Address(); have != params.SettlementAddress {
		t.Fatalf("default engine address: have %s want %s", have.Hex(), params.SettlementAddress.Hex())
	}
}

var _ vm.StateDB = (*state.StateDB)(nil)
