// Package scripting runs zone Lua scripts in sandboxed GopherLua states.
// It imports no game packages; the game reaches scripts through Manager's
// callback fields and hook calls.
package scripting

import (
	"context"
	"errors"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the per-call opcode budget used when a zone
// does not set its own.
const DefaultInstructionLimit = 100_000

// ErrInstructionLimit is raised inside Lua when a call spends its budget.
var ErrInstructionLimit = errors.New("lua instruction limit exceeded")

// unsafeGlobals are base library functions that reach the filesystem, load
// code or steer the collector.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// opBudget is the context handed to an LState. GopherLua polls Done once per
// opcode, so counting polls counts instructions.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   int64
	spent  bool
}

func (b *opBudget) Done() <-chan struct{} {
	b.left--
	if b.left < 0 && !b.spent {
		b.spent = true
		b.cancel()
	}
	return b.Context.Done()
}

// Err reports ErrInstructionLimit in place of context.Canceled once the
// budget has run out, so the Lua error names the real cause.
func (b *opBudget) Err() error {
	if b.spent {
		return ErrInstructionLimit
	}
	return b.Context.Err()
}

func newBudget(parent context.Context, limit int) *opBudget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(parent)
	return &opBudget{Context: ctx, cancel: cancel, left: int64(limit)}
}

// NewSandbox returns an LState with only the base, table, string and math
// libraries, without unsafeGlobals, and with a budget of limit opcodes
// (DefaultInstructionLimit when limit <= 0).
//
// Postcondition: the caller owns the state and must Close it.
func NewSandbox(limit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(newBudget(context.Background(), limit))
	return L
}

// withBudget installs a fresh budget of limit opcodes on L, bound to parent.
// Call release once the call into L has returned.
func withBudget(parent context.Context, L *lua.LState, limit int) (b *opBudget, release func()) {
	b = newBudget(parent, limit)
	L.SetContext(b)
	return b, b.cancel
}
