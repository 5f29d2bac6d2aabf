package settlement

import (
	"math/big"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
	lua "github.com/yuin/gopher-lua"
)

// LuaHook runs a recipient-owned Lua script when a payout lands. The script
// sees a "settlement" table:
//
//	settlement.amount       payout amount, decimal string
//	settlement.payer        engine account, hex address
//	settlement.self         recipient account, hex address
//	settlement.balance(a)   balance of hex address a, decimal string
//	settlement.revert(msg)  abort the settlement with msg
//	settlement.purchase()   attempt to re-enter the engine; returns the
//	                        failure reason string, or nil on success
//
// A script error aborts the whole settlement; the caller's snapshot revert
// undoes the payouts already pushed.
type LuaHook struct {
	src     string
	reenter func(db vm.StateDB) error
}

// NewLuaHook compiles nothing up front; src runs on every payout. reenter
// may be nil when the recipient has no use for the purchase binding.
func NewLuaHook(src string, reenter func(db vm.StateDB) error) *LuaHook {
	return &LuaHook{src: src, reenter: reenter}
}

// PaymentReceived implements ReceiveHook.
func (h *LuaHook) PaymentReceived(db vm.StateDB, from, to common.Address, amount *big.Int) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	defer L.Close()

	tbl := L.NewTable()
	L.SetField(tbl, "amount", lua.LString(amount.Text(10)))
	L.SetField(tbl, "payer", lua.LString(from.Hex()))
	L.SetField(tbl, "self", lua.LString(to.Hex()))

	L.SetField(tbl, "balance", L.NewFunction(func(L *lua.LState) int {
		addr := common.HexToAddress(L.CheckString(1))
		L.Push(lua.LString(db.GetBalance(addr).Text(10)))
		return 1
	}))

	L.SetField(tbl, "revert", L.NewFunction(func(L *lua.LState) int {
		message := L.OptString(1, "revert")
		L.RaiseError("settlement.revert: %s", message)
		return 0
	}))

	if h.reenter != nil {
		L.SetField(tbl, "purchase", L.NewFunction(func(L *lua.LState) int {
			if err := h.reenter(db); err != nil {
				L.Push(lua.LString(err.Error()))
				return 1
			}
			L.Push(lua.LNil)
			return 1
		}))
	}

	L.SetGlobal("settlement", tbl)
	return L.DoString(h.src)
}
