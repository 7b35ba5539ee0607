package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// sharedVM keys the VM loaded by LoadGlobal. Zones without scripts of their
// own call into it.
const sharedVM = "__global__"

// ItemInfo is what engine.item exposes about an item definition.
type ItemInfo struct {
	ID     string
	Name   string
	Kind   string
	Value  float64
	Weight float64
}

// vm is one sandboxed state. An LState is single-threaded, so every call
// into it holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

func (v *vm) close() {
	v.mu.Lock()
	v.L.Close()
	v.mu.Unlock()
}

// Manager holds the loot scripts: one VM per zone that ships scripts plus an
// optional shared VM.
//
// Loading replaces a VM atomically. Calls into one VM are serialized; calls
// into different VMs run in parallel.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger

	// LookupItem backs engine.item. When nil, engine.item returns nil.
	LookupItem func(defID string) *ItemInfo
}

// NewManager returns a Manager with no scripts loaded. It panics on a nil
// logger.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{vms: make(map[string]*vm), logger: logger}
}

// LoadZone runs every .lua file in dir, in name order, in a fresh VM for
// zoneID and then swaps it in. A failed load leaves the previous VM, if any,
// in place.
//
// Precondition: zoneID is non-empty.
func (m *Manager) LoadZone(zoneID, dir string, limit int) error {
	return m.load(zoneID, dir, limit)
}

// LoadGlobal loads dir into the shared VM.
func (m *Manager) LoadGlobal(dir string, limit int) error {
	return m.load(sharedVM, dir, limit)
}

func (m *Manager) load(key, dir string, limit int) error {
	paths, err := luaFiles(dir)
	if err != nil {
		return fmt.Errorf("scripting: %s: %w", key, err)
	}

	L := NewSandbox(limit)
	m.RegisterModules(L, key)
	for _, path := range paths {
		_, release := withBudget(context.Background(), L, limit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: %s: running %s: %w", key, filepath.Base(path), err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: limit}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}

	m.logger.Debug("scripting: loaded scripts",
		zap.String("zone", key),
		zap.Int("files", len(paths)),
	)
	return nil
}

// luaFiles lists the .lua files directly inside dir, sorted by name.
func luaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".lua") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// HasZone reports whether zoneID has its own VM.
func (m *Manager) HasZone(zoneID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[zoneID]
	return ok
}

// Close shuts every VM down. Later hook calls find no VM and return nil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}

// vmFor returns zoneID's VM, the shared VM, or nil.
func (m *Manager) vmFor(zoneID string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[zoneID]; ok {
		return v
	}
	return m.vms[sharedVM]
}

// CallHook calls the global Lua function hook with args in zoneID's VM,
// falling back to the shared VM.
//
// A missing VM or an undefined hook yields LNil. A failing hook, including
// one that runs out of instructions, is logged at Warn and also yields LNil.
//
// Postcondition: err is non-nil only when ctx is done.
func (m *Manager) CallHook(ctx context.Context, zoneID, hook string, args ...lua.LValue) (lua.LValue, error) {
	if err := ctx.Err(); err != nil {
		return lua.LNil, err
	}
	v := m.vmFor(zoneID)
	if v == nil {
		m.logger.Debug("scripting: no VM for zone", zap.String("zone", zoneID), zap.String("hook", hook))
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	fn, ok := v.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return lua.LNil, nil
	}

	budget, release := withBudget(ctx, v.L, v.limit)
	defer release()
	err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	if err != nil {
		cause := err
		if budget.spent {
			cause = errors.Join(ErrInstructionLimit, err)
		}
		m.logger.Warn("scripting: hook failed",
			zap.String("zone", zoneID),
			zap.String("hook", hook),
			zap.Bool("over_budget", budget.spent),
			zap.Error(cause),
		)
		return lua.LNil, ctx.Err()
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}
