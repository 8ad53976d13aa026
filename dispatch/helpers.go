package dispatch

import "fmt"

var ErrNoSuchKey = fmt.Errorf("no value registered for key")

// ValueOf fetches a typed value from a System or DispatchData map.
// Returns a zero value and error if the key is missing or the type mismatches.
func ValueOf[T any, M ~map[string]any](m M, key string) (T, error) {
	var zero T

	raw, ok := m[key]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}

	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type for %s: %T", key, raw)
	}

	return val, nil
}

// MustValueOf is the panic-on-failure variant of ValueOf.
// Use when the entry is guaranteed to exist (e.g. a system collaborator the
// registry's SystemKeys declares).
func MustValueOf[T any, M ~map[string]any](m M, key string) T {
	val, err := ValueOf[T, M](m, key)
	if err != nil {
		panic(err)
	}
	return val
}
