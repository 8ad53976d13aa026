package dispatch

import (
	"fmt"
	"reflect"
)

// interpolate walks value structurally and resolves registered placeholder
// vectors against data. Sequences are interpolated element-wise, map values
// value-wise (keys are left untouched). Resolution of one vector chains at
// most depth times; at depth 0 the current value is returned as-is — a
// safety valve, not an error. Unknown placeholder keys are left unresolved.
func interpolate(phs map[Key]PlaceholderDef, data DispatchData, value any, depth int) any {
	switch v := value.(type) {
	case Operation:
		return interpolateVector(phs, data, []any(v), true, depth)
	case []any:
		return interpolateVector(phs, data, v, false, depth)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = interpolate(phs, data, elem, depth)
		}
		return out
	default:
		return value
	}
}

func interpolateVector(phs map[Key]PlaceholderDef, data DispatchData, vec []any, isOp bool, depth int) any {
	walked := make([]any, len(vec))
	for i, elem := range vec {
		walked[i] = interpolate(phs, data, elem, depth)
	}

	done := func() any {
		if isOp {
			return Operation(walked)
		}
		return walked
	}

	op := Operation(walked)
	k, ok := op.Key()
	if !ok {
		return done()
	}
	def, registered := phs[k]
	if !registered || depth <= 0 {
		return done()
	}

	resolved, err := resolvePlaceholder(def.Handler, data, op.Args())
	if err != nil {
		// A panicking resolver behaves like a self-preserving one.
		return done()
	}
	if sameVector(resolved, walked) {
		// Self-preservation: the value is not available yet. Stop here so a
		// later dispatch carrying the value can pick the vector up again.
		return done()
	}
	return interpolate(phs, data, resolved, depth-1)
}

// interpolateOps interpolates a whole operation list, keeping vectors that
// resolve to non-operation values unchanged so expansion can report them.
func interpolateOps(phs map[Key]PlaceholderDef, data DispatchData, ops []Operation, depth int) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if resolved, ok := asOperation(interpolate(phs, data, op, depth)); ok {
			out = append(out, resolved)
			continue
		}
		out = append(out, op)
	}
	return out
}

func resolvePlaceholder(h PlaceholderHandler, data DispatchData, args []any) (resolved any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("placeholder panic: %v", r)
		}
	}()
	return h(data, args), nil
}

// sameVector reports whether resolved echoes the vector it was resolved
// from, regardless of whether the handler rebuilt it as Operation or []any.
func sameVector(resolved any, vec []any) bool {
	switch r := resolved.(type) {
	case Operation:
		return reflect.DeepEqual([]any(r), vec)
	case []any:
		return reflect.DeepEqual(r, vec)
	default:
		return false
	}
}
