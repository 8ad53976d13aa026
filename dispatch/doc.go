// Package dispatch provides a minimal and idiomatic effect dispatch engine for Go.
//
// Dispatch-ive Go turns a declarative list of tagged operation vectors into
// executed side effects. A registry of named, schema-described operations —
// effects, pure state-to-effect expanders (actions), and late-bound value
// resolvers (placeholders) — is handed to an Engine, and every call to
// Dispatch threads one context value through five ordered phases:
//
//	before-dispatch → interpolate → expand-actions → execute-effects → after-dispatch
//
// # Operation vectors
//
// An operation vector is an ordered sequence [key, args...], built with Op.
// The leading Key identifies an effect, an action, or a placeholder; the
// rest are arguments. This is the only data shape that crosses the dispatch
// boundary, and it is never mutated, only produced and consumed.
//
// # Why a data-driven engine?
//
// Describing side effects as data keeps business logic pure, testable, and
// reusable: actions compute what should happen, effects perform it, and
// interceptors observe or halt the pipeline without either knowing about
// the other. Apparent asynchrony is modeled entirely through self-preserving
// placeholders — a placeholder whose handler echoes its own vector stays
// unresolved until a later, separate dispatch carries the needed value.
//
// # Error discipline
//
// Dispatch never panics and never returns a Go error for pipeline failures.
// Failing handlers and hooks are isolated, converted into ErrorRecord values,
// and accumulated on the Outcome next to any partial results. The only early
// exit is the cooperative Halted flag, set by interceptor hooks such as the
// built-in fail-fast interceptor.
//
// Example:
//
//	reg := dispatch.Registry{
//	    Effects: map[dispatch.Key]dispatch.EffectDef{
//	        "print": {Handler: func(_ *dispatch.EffectAPI, _ dispatch.System, args []any) (any, error) {
//	            fmt.Println(args...)
//	            return nil, nil
//	        }},
//	    },
//	}
//	eng, _ := dispatch.New(reg)
//	out := eng.Dispatch(ctx, dispatch.Op("print", "hello"))
package dispatch
