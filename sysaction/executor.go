package sysaction

import (
	"fmt"
	"math/big"

	"github.com/curio-network/gcurio/common"
	"github.com/curio-network/gcurio/core/vm"
	"github.com/curio-network/gcurio/params"
)

// Context carries information available to a system-action handler.
type Context struct {
	From        common.Address
	Value       *big.Int
	BlockNumber *big.Int
	StateDB     vm.StateDB
}

// Handler is implemented by the asset registry and settlement sub-systems.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = &Registry{}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Msg is the minimal message interface for Execute, satisfied by core.Message.
type Msg interface {
	From() common.Address
	Value() *big.Int
	Data() []byte
}

// Execute processes a system action from msg and dispatches to a registered
// handler. It is the entry point for the host chain: the state processor
// calls it for every transaction addressed to a module account, billing the
// returned gas. A handler failure reverts every state mutation made within
// the action; the host's all-or-nothing semantics are enforced here so no
// handler needs compensation logic.
func Execute(msg Msg, db vm.StateDB) (uint64, error) {
	ctx := &Context{
		From:    msg.From(),
		Value:   msg.Value(),
		StateDB: db,
	}
	return params.SysActionGas, ExecuteWithContext(ctx, msg.Data())
}

// ExecuteWithContext dispatches using a pre-built Context.
func ExecuteWithContext(ctx *Context, data []byte) error {
	sa, err := Decode(data)
	if err != nil {
		return err
	}
	for _, h := range DefaultRegistry.handlers {
		if h.CanHandle(sa.Action) {
			snapshot := ctx.StateDB.Snapshot()
			if err := h.Handle(ctx, sa); err != nil {
				ctx.StateDB.RevertToSnapshot(snapshot)
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("no handler registered for system action %q", sa.Action)
}
