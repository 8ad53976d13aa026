package dispatch

import "context"

// Result pairs an executed effect vector with its handler's return value.
type Result struct {
	Effect Operation
	Value  any
}

// Dispatcher is the continuation handle threaded through a dispatch context,
// re-entering the engine synchronously with the same registry.
type Dispatcher func(system System, data DispatchData, ops []Operation) Outcome

// Context is the base value threaded through every phase of one dispatch
// call. Each phase consumes one context and produces a new one; Results and
// Errors only ever grow, and nothing survives the call that created it.
//
// Context is a value type. Hooks receive a copy and return the copy they
// mutated; a failing hook's copy is discarded wholesale.
type Context struct {
	// Ctx is the caller's context.Context. Its cancellation is observed
	// between items and maps onto Halted.
	Ctx      context.Context
	System   System
	State    State
	Data     DispatchData
	Dispatch Dispatcher

	// Pending is the flattened operation list produced by action expansion,
	// containing only effect vectors by the time execution starts.
	Pending []Operation
	Results []Result
	Errors  []ErrorRecord

	// Halted is the sole early-exit signal. It is set only by interceptor
	// hooks (and by cancellation of Ctx); no exceptions cross phases.
	Halted bool
}

func (c *Context) base() *Context { return c }

// ActionContext scopes one action expansion. It exists only between the
// before-action and after-action hook passes.
type ActionContext struct {
	Context
	// Action is the action vector being expanded.
	Action Operation
	// Expansion is the operation list the action handler produced,
	// visible to after-action hooks.
	Expansion []Operation
}

// EffectContext scopes one effect execution. It exists only between the
// before-effect and after-effect hook passes.
type EffectContext struct {
	Context
	// Effect is the effect vector being executed.
	Effect Operation
	// Result is the handler's return value, visible to after-effect hooks.
	// After-effect hooks may override it before it lands on the Outcome.
	Result any
}

type dispatchIDKey struct{}

func withDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey{}, id)
}

// DispatchID returns the engine-assigned id of the dispatch call the given
// context belongs to. Nested continuation dispatches get their own id.
func DispatchID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(dispatchIDKey{}).(string)
	return id, ok
}
