// Package hooking defines the observation points of the simulator. Components
// raise hooks at well-known positions and tracers, loggers, recorders, and
// checkers subscribe to them without the component knowing who listens.
package hooking

// HookPos names a position at which a hookable object raises hooks.
type HookPos struct {
	Name string
}

// HookCtx is what a hook receives when it is invoked.
type HookCtx struct {
	// Domain is the object raising the hook.
	Domain Hookable

	// Pos identifies where in the domain the hook fires.
	Pos *HookPos

	// Item is the subject of the hook, e.g., an event, an element, or a
	// per-cycle sample.
	Item any

	// Detail carries optional extra data. May be nil.
	Detail any
}

// Hookable is an object that hooks can attach to.
type Hookable interface {
	// AcceptHook registers a hook. Hooks are attached during configuration,
	// before the simulation runs, and are never removed.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns the registered hooks.
	Hooks() []Hook

	// InvokeHook calls every registered hook with the given context.
	InvokeHook(ctx HookCtx)
}

// NamedHookable is a Hookable that has a name.
type NamedHookable interface {
	Hookable
	Name() string
}

// Hook is invoked by a Hookable at hook positions.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function into a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase implements Hookable and is meant to be embedded.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates a HookableBase with no hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{hookList: make([]Hook, 0)}
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns the registered hooks.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); !isFunc {
		for _, registered := range h.hookList {
			if registered == hook {
				panic("duplicated hook")
			}
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook triggers the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
