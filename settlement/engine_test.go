package settlement

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/curio-network/gcurio/assetreg"
	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/state"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/curio-network/gcurio/params"
)

var (
	testAdmin      = common.HexToAddress("0x000000000000000000000000000000000000ad01")
	testCollection = common.HexToAddress("0x00000000000000000000000000000000c0111ec7")
	testBuyer      = common.HexToAddress("0x00000000000000000000000000000000000b7e01")
)

type engineFixture struct {
	db           *state.StateDB
	engine       *Engine
	reg          assetreg.Registry
	authorityKey *ecdsa.PrivateKey
	authority    common.Address
	creatorKey   *ecdsa.PrivateKey
	creator      common.Address
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	db := state.New()
	Initialize(db, testAdmin)

	authorityKey, authority := mustKey(t)
	if err := SetTrustedAuthority(db, testAdmin, authority); err != nil {
		t.Fatalf("failed to set authority: %v", err)
	}

	reg := assetreg.At(testCollection)
	if err := reg.InitializeCollection(db, testAdmin); err != nil {
		t.Fatalf("failed to initialize collection: %v", err)
	}
	if err := reg.SetMinter(db, testAdmin, params.SettlementAddress, true); err != nil {
		t.Fatalf("failed to grant minter: %v", err)
	}
	engine := NewEngine(params.SettlementAddress, func(collection common.Address) (AssetRegistry, error) {
		if collection != testCollection {
			return nil, fmt.Errorf("no registry at %s", collection.Hex())
		}
		return reg, nil
	})

	// Asset ids only settle when their leading digits reproduce the
	// creator's prefix, and a prefix starting with '0' is unmatchable by any
	// decimal literal. Pick a creator whose prefix avoids that.
	var (
		creatorKey *ecdsa.PrivateKey
		creator    common.Address
	)
	for {
		creatorKey, creator = mustKey(t)
		if DerivePrefix(creator)[0] != '0' {
			break
		}
	}
	return &engineFixture{
		db:           db,
		engine:       engine,
		reg:          reg,
		authorityKey: authorityKey,
		authority:    authority,
		creatorKey:   creatorKey,
		creator:      creator,
	}
}

// deferredID returns an unminted asset id carrying the creator's prefix.
func (f *engineFixture) deferredID(t *testing.T, suffix string) *big.Int {
	t.Helper()
	id, ok := new(big.Int).SetString(DerivePrefix(f.creator)+suffix, 10)
	if !ok {
		t.Fatalf("bad asset id suffix %q", suffix)
	}
	return id
}

// signedRequest builds a purchase request over the fixture's engine context
// and signs it with the fixture's creator and authority keys.
func (f *engineFixture) signedRequest(t *testing.T, id *big.Int, payees []common.Address, amounts []*big.Int) *PurchaseRequest {
	t.Helper()
	terms := &SaleTerms{
		Registry: testCollection,
		AssetID:  id,
		Context:  f.engine.Address(),
		Payees:   payees,
		Amounts:  amounts,
	}
	creatorSig, err := SignSale(terms, f.creatorKey)
	if err != nil {
		t.Fatalf("creator sign failed: %v", err)
	}
	authoritySig, err := SignSale(terms, f.authorityKey)
	if err != nil {
		t.Fatalf("authority sign failed: %v", err)
	}
	return &PurchaseRequest{
		Registry:     testCollection,
		AssetID:      id,
		Payees:       payees,
		Amounts:      amounts,
		CreatorSig:   creatorSig,
		AuthoritySig: authoritySig,
	}
}

// escrow simulates the handler moving the attached value onto the engine
// account before orchestration.
func (f *engineFixture) escrow(value *big.Int) {
	f.db.AddBalance(f.engine.Address(), value)
}

func TestPurchaseDeferredCreation(t *testing.T) {
	f := newEngineFixture(t)
	id := f.deferredID(t, "42")
	payees := []common.Address{f.creator, common.HexToAddress("0x0b02")}
	amounts := []*big.Int{big.NewInt(700), big.NewInt(300)}
	req := f.signedRequest(t, id, payees, amounts)
	req.Metadata = "ipfs://QmTest42"

	value := big.NewInt(1000)
	f.escrow(value)
	if err := f.engine.Purchase(f.db, testBuyer, value, req); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	owner, err := f.reg.OwnerOf(f.db, id)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if owner != testBuyer {
		t.Fatalf("owner: have %s want %s", owner.Hex(), testBuyer.Hex())
	}
	uri, err := f.reg.TokenURI(f.db, id)
	if err != nil {
		t.Fatalf("uri lookup failed: %v", err)
	}
	if uri != "ipfs://QmTest42" {
		t.Fatalf("uri: have %q want %q", uri, "ipfs://QmTest42")
	}
	for i, payee := range payees {
		if have := f.db.GetBalance(payee); have.Cmp(amounts[i]) != 0 {
			t.Fatalf("payee %d balance: have %v want %v", i, have, amounts[i])
		}
	}
	if have := f.db.GetBalance(f.engine.Address()); have.Sign() != 0 {
		t.Fatalf("engine retained %v after settlement", have)
	}
}

func TestPurchaseExistingAsset(t *testing.T) {
	f := newEngineFixture(t)
	id := big.NewInt(777)
	if err := f.reg.Create(f.db, params.SettlementAddress, f.creator, id, "sold"); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.reg.Approve(f.db, f.creator, f.engine.Address(), id); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(500)})
	req.Preexisting = true

	value := big.NewInt(500)
	f.escrow(value)
	if err := f.engine.Purchase(f.db, testBuyer, value, req); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	owner, _ := f.reg.OwnerOf(f.db, id)
	if owner != testBuyer {
		t.Fatalf("owner: have %s want %s", owner.Hex(), testBuyer.Hex())
	}
	if approved := f.reg.GetApproved(f.db, id); approved != (common.Address{}) {
		t.Fatalf("approval not cleared: %s", approved.Hex())
	}
}

func TestPurchaseValueMismatch(t *testing.T) {
	f := newEngineFixture(t)
	req := f.signedRequest(t, f.deferredID(t, "1"), []common.Address{f.creator}, []*big.Int{big.NewInt(1000)})

	for _, value := range []*big.Int{big.NewInt(999), big.NewInt(1001), nil} {
		f.escrow(big.NewInt(2000))
		if err := f.engine.Purchase(f.db, testBuyer, value, req); !errors.Is(err, ErrValueMismatch) {
			t.Fatalf("value %v: have %v want ErrValueMismatch", value, err)
		}
	}
}

func TestPurchaseWrongAuthority(t *testing.T) {
	f := newEngineFixture(t)
	req := f.signedRequest(t, f.deferredID(t, "1"), []common.Address{f.creator}, []*big.Int{big.NewInt(10)})

	impostorKey, _ := mustKey(t)
	terms := &SaleTerms{Registry: testCollection, AssetID: req.AssetID, Context: f.engine.Address(), Payees: req.Payees, Amounts: req.Amounts}
	req.AuthoritySig, _ = SignSale(terms, impostorKey)

	f.escrow(big.NewInt(10))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(10), req); !errors.Is(err, ErrInvalidAuthoritySignature) {
		t.Fatalf("have %v want ErrInvalidAuthoritySignature", err)
	}
}

func TestPurchaseNotApproved(t *testing.T) {
	f := newEngineFixture(t)
	id := big.NewInt(88)
	if err := f.reg.Create(f.db, params.SettlementAddress, f.creator, id, ""); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(5)})
	req.Preexisting = true

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("have %v want ErrNotApproved", err)
	}
}

func TestPurchaseOperatorApproval(t *testing.T) {
	f := newEngineFixture(t)
	id := big.NewInt(89)
	if err := f.reg.Create(f.db, params.SettlementAddress, f.creator, id, ""); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.reg.SetApprovalForAll(f.db, f.creator, f.engine.Address(), true); err != nil {
		t.Fatalf("operator approval failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(5)})
	req.Preexisting = true

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
}

func TestPurchaseSelfPurchaseRejected(t *testing.T) {
	f := newEngineFixture(t)
	id := big.NewInt(99)
	if err := f.reg.Create(f.db, params.SettlementAddress, f.creator, id, ""); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := f.reg.Approve(f.db, f.creator, f.engine.Address(), id); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(5)})
	req.Preexisting = true

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, f.creator, big.NewInt(5), req); !errors.Is(err, ErrSelfPurchaseRejected) {
		t.Fatalf("have %v want ErrSelfPurchaseRejected", err)
	}
}

func TestPurchaseOwnershipMismatch(t *testing.T) {
	f := newEngineFixture(t)
	id := big.NewInt(123)
	other := common.HexToAddress("0x0907")
	if err := f.reg.Create(f.db, params.SettlementAddress, other, id, ""); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(5)})
	req.Preexisting = true

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); !errors.Is(err, ErrOwnershipMismatch) {
		t.Fatalf("have %v want ErrOwnershipMismatch", err)
	}
}

func TestPurchaseDeferredPrefixMismatch(t *testing.T) {
	f := newEngineFixture(t)
	// A short id cannot carry any 12-digit prefix.
	req := f.signedRequest(t, big.NewInt(12345), []common.Address{f.creator}, []*big.Int{big.NewInt(5)})

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); !errors.Is(err, ErrAssetIDNotOwnedByCreator) {
		t.Fatalf("have %v want ErrAssetIDNotOwnedByCreator", err)
	}
}

func TestPurchaseDeferredCollision(t *testing.T) {
	f := newEngineFixture(t)
	id := f.deferredID(t, "7")
	if err := f.reg.Create(f.db, params.SettlementAddress, f.creator, id, ""); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	req := f.signedRequest(t, id, []common.Address{f.creator}, []*big.Int{big.NewInt(5)})

	// Collision is a provenance failure: the payee must see neither a
	// payout nor a hook invocation.
	hookRan := false
	f.engine.SetReceiveHook(f.creator, HookFunc(func(db vm.StateDB, from, to common.Address, amount *big.Int) error {
		hookRan = true
		return nil
	}))

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); !errors.Is(err, assetreg.ErrAssetExists) {
		t.Fatalf("have %v want ErrAssetExists", err)
	}
	if hookRan {
		t.Fatalf("receive hook ran for a colliding asset id")
	}
	if have := f.db.GetBalance(f.creator); have.Sign() != 0 {
		t.Fatalf("payout pushed before provenance check: %v", have)
	}
}

func TestPurchaseUnknownRegistry(t *testing.T) {
	f := newEngineFixture(t)
	id := f.deferredID(t, "1")
	payees := []common.Address{f.creator}
	amounts := []*big.Int{big.NewInt(5)}
	unknown := common.HexToAddress("0xdead")
	terms := &SaleTerms{Registry: unknown, AssetID: id, Context: f.engine.Address(), Payees: payees, Amounts: amounts}
	creatorSig, _ := SignSale(terms, f.creatorKey)
	authoritySig, _ := SignSale(terms, f.authorityKey)
	req := &PurchaseRequest{
		Registry:     unknown,
		AssetID:      id,
		Payees:       payees,
		Amounts:      amounts,
		CreatorSig:   creatorSig,
		AuthoritySig: authoritySig,
	}

	f.escrow(big.NewInt(5))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(5), req); !errors.Is(err, ErrUnknownRegistry) {
		t.Fatalf("have %v want ErrUnknownRegistry", err)
	}
}

func TestPurchaseDistribution(t *testing.T) {
	f := newEngineFixture(t)
	id := f.deferredID(t, "1")
	huge := new(big.Int).Lsh(common.Big1, 255)

	cases := []struct {
		name    string
		payees  []common.Address
		amounts []*big.Int
		want    error
	}{
		{"empty", nil, nil, ErrMalformedDistribution},
		{"mismatched", []common.Address{f.creator}, []*big.Int{big.NewInt(1), big.NewInt(2)}, ErrMalformedDistribution},
		{"zero payee", []common.Address{{}}, []*big.Int{big.NewInt(1)}, ErrInvalidPayee},
		{"zero amount", []common.Address{f.creator}, []*big.Int{big.NewInt(0)}, ErrZeroAmount},
		{"sum overflow", []common.Address{f.creator, testBuyer}, []*big.Int{huge, huge}, ErrAmountOverflow},
	}
	for _, tc := range cases {
		req := f.signedRequest(t, id, tc.payees, tc.amounts)
		f.escrow(big.NewInt(1))
		if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(1), req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: have %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestPurchaseReentrancyRejected(t *testing.T) {
	f := newEngineFixture(t)
	payee := common.HexToAddress("0x0b05")
	outer := f.signedRequest(t, f.deferredID(t, "1"), []common.Address{payee}, []*big.Int{big.NewInt(100)})
	inner := f.signedRequest(t, f.deferredID(t, "2"), []common.Address{payee}, []*big.Int{big.NewInt(100)})

	var innerErr error
	f.engine.SetReceiveHook(payee, HookFunc(func(db vm.StateDB, from, to common.Address, amount *big.Int) error {
		innerErr = f.engine.Purchase(db, testBuyer, big.NewInt(100), inner)
		return nil
	}))

	f.escrow(big.NewInt(100))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(100), outer); err != nil {
		t.Fatalf("outer purchase failed: %v", err)
	}
	if !errors.Is(innerErr, ErrReentrancyRejected) {
		t.Fatalf("inner purchase: have %v want ErrReentrancyRejected", innerErr)
	}
}

func TestPurchaseHookFailureAborts(t *testing.T) {
	f := newEngineFixture(t)
	payee := common.HexToAddress("0x0b06")
	req := f.signedRequest(t, f.deferredID(t, "3"), []common.Address{payee}, []*big.Int{big.NewInt(50)})

	boom := errors.New("recipient rejected payment")
	f.engine.SetReceiveHook(payee, HookFunc(func(db vm.StateDB, from, to common.Address, amount *big.Int) error {
		return boom
	}))

	f.escrow(big.NewInt(50))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(50), req); !errors.Is(err, boom) {
		t.Fatalf("have %v want hook error", err)
	}
	if f.reg.Exists(f.db, req.AssetID) {
		t.Fatalf("asset delivered despite hook failure")
	}
}

func TestAuthorityRotationInvalidatesSignatures(t *testing.T) {
	f := newEngineFixture(t)
	req := f.signedRequest(t, f.deferredID(t, "4"), []common.Address{f.creator}, []*big.Int{big.NewInt(10)})

	newKey, newAuthority := mustKey(t)
	if err := SetTrustedAuthority(f.db, testAdmin, newAuthority); err != nil {
		t.Fatalf("rotation failed: %v", err)
	}

	f.escrow(big.NewInt(10))
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(10), req); !errors.Is(err, ErrInvalidAuthoritySignature) {
		t.Fatalf("pre-rotation signature accepted: %v", err)
	}

	// Re-signing under the rotated authority restores verifiability.
	terms := &SaleTerms{Registry: testCollection, AssetID: req.AssetID, Context: f.engine.Address(), Payees: req.Payees, Amounts: req.Amounts}
	req.AuthoritySig, _ = SignSale(terms, newKey)
	if err := f.engine.Purchase(f.db, testBuyer, big.NewInt(10), req); err != nil {
		t.Fatalf("post-rotation purchase failed: %v", err)
	}
}

func TestTrustedAuthorityAccess(t *testing.T) {
	db := state.New()
	Initialize(db, testAdmin)
	stranger := common.HexToAddress("0x5714")

	if err := SetTrustedAuthority(db, stranger, stranger); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin rotation: have %v want ErrUnauthorized", err)
	}
	if err := SetTrustedAuthority(db, testAdmin, common.Address{}); !errors.Is(err, ErrZeroAuthority) {
		t.Fatalf("zero authority: have %v want ErrZeroAuthority", err)
	}
	if _, err := GetTrustedAuthority(db, stranger); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin read: have %v want ErrUnauthorized", err)
	}
	authority, err := GetTrustedAuthority(db, testAdmin)
	if err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if authority != testAdmin {
		t.Fatalf("initial authority: have %s want %s", authority.Hex(), testAdmin.Hex())
	}
}
