package dispatch

import (
	"context"
	"fmt"
)

// Key names an effect, action, or placeholder in the registry.
// A leading Key is what tags a []any as an operation vector; plain slices
// without one are inert data and are never dispatched.
type Key string

// Operation is an ordered [key, args...] vector. Build one with Op.
type Operation []any

// Op builds an operation vector for the given key and arguments.
func Op(key Key, args ...any) Operation {
	op := make(Operation, 0, len(args)+1)
	op = append(op, key)
	return append(op, args...)
}

// Key returns the leading registry key of the vector, if it has one.
func (op Operation) Key() (Key, bool) {
	if len(op) == 0 {
		return "", false
	}
	k, ok := op[0].(Key)
	return k, ok
}

// Args returns the argument tail of the vector.
func (op Operation) Args() []any {
	if len(op) == 0 {
		return nil
	}
	return op[1:]
}

func (op Operation) String() string {
	return fmt.Sprintf("%v", []any(op))
}

// asOperation coerces a value into an operation vector. Both Operation and
// a raw []any with a leading Key qualify.
func asOperation(v any) (Operation, bool) {
	switch vec := v.(type) {
	case Operation:
		_, ok := vec.Key()
		return vec, ok
	case []any:
		op := Operation(vec)
		_, ok := op.Key()
		return op, ok
	default:
		return nil, false
	}
}

// System carries the side-effectful collaborators handlers need (clients,
// stores, clocks). It is shallow-merged by the continuation dispatch shapes.
type System map[string]any

// DispatchData carries late-bound values for placeholder resolution.
type DispatchData map[string]any

// State is the pure snapshot actions expand against, derived from System
// via Registry.SystemToState.
type State any

// EffectAPI is the handler-facing surface of a running dispatch. It exposes
// the synchronous continuation shapes and the data the effect was executed
// with. See Engine for the top-level entry points.
type EffectAPI struct {
	// Data is the dispatch data at the time the effect executes.
	Data DispatchData
	// System is the system the effect executes against.
	System System

	engine *Engine
	batch  DispatchData
	stdctx context.Context
}

// EffectHandler performs one side effect. Returned errors (and panics) are
// captured as execute-effect records; they never propagate to the caller.
type EffectHandler func(api *EffectAPI, system System, args []any) (any, error)

// ActionHandler expands one action into further operation vectors. It must
// be pure: no I/O, no reliance on anything but state and args.
type ActionHandler func(state State, args []any) ([]Operation, error)

// PlaceholderHandler resolves a placeholder vector against dispatch data.
// Returning a vector equal to the one being resolved preserves it unresolved,
// which is the designed way to say "value not yet available".
type PlaceholderHandler func(data DispatchData, args []any) any

// EffectDef describes one registered effect.
type EffectDef struct {
	Description string
	Schema      any
	Handler     EffectHandler
	// SystemKeys lists the System entries the handler reads. Metadata only;
	// the engine never inspects it.
	SystemKeys []string
}

// ActionDef describes one registered action.
type ActionDef struct {
	Description string
	Schema      any
	Handler     ActionHandler
}

// PlaceholderDef describes one registered placeholder.
type PlaceholderDef struct {
	Description string
	Schema      any
	Handler     PlaceholderHandler
}

// Registry is the pre-merged, immutable operation registry a dispatch engine
// runs against. Merging heterogeneous registry specifications into one value
// is an external concern; the engine only consumes the result.
type Registry struct {
	Effects      map[Key]EffectDef
	Actions      map[Key]ActionDef
	Placeholders map[Key]PlaceholderDef
	Interceptors []Interceptor
	// SystemToState derives the pure state actions expand against.
	// When nil, actions see a nil state.
	SystemToState func(System) State
}

// Validate rejects registries whose dispatch behavior would be undefined.
// Currently that is a key registered as both an action and an effect.
func (r Registry) Validate() error {
	for k := range r.Actions {
		if _, dup := r.Effects[k]; dup {
			return fmt.Errorf("%w: %s", ErrAmbiguousKey, k)
		}
	}
	return nil
}

// opKind is the three-variant result of a registry lookup, so the expansion
// state machine stays exhaustive instead of scattering membership checks.
type opKind int

const (
	kindUnknown opKind = iota
	kindEffect
	kindAction
)

func (r Registry) kindOf(k Key) opKind {
	if _, ok := r.Effects[k]; ok {
		return kindEffect
	}
	if _, ok := r.Actions[k]; ok {
		return kindAction
	}
	return kindUnknown
}
