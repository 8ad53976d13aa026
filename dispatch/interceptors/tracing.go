package interceptors

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/on-the-ground/dispatch_ive_go/dispatch"
)

// TracingID is the interceptor id Tracing registers under.
const TracingID dispatch.Key = "tracing"

// spanScope records one started span, the context to restore once it ends,
// and the error count at the time it started so the after-hook can derive
// the span status from errors recorded during the phase.
type spanScope struct {
	span     trace.Span
	parent   context.Context
	startErr int
}

type scopeKey struct{ phase string }

// Tracing creates OpenTelemetry spans around the dispatch call and around
// every action expansion and effect execution inside it. A nil tracer
// returns a pass-through interceptor with no tracing overhead.
func Tracing(tracer trace.Tracer) dispatch.Interceptor {
	if tracer == nil {
		return dispatch.Interceptor{ID: TracingID}
	}

	start := func(ctx context.Context, phase, name string, errs int, attrs ...attribute.KeyValue) context.Context {
		parent := ctx
		ctx, span := tracer.Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		span.SetAttributes(attrs...)
		return context.WithValue(ctx, scopeKey{phase},
			spanScope{span: span, parent: parent, startErr: errs})
	}

	// end closes the span its phase's start opened. A halt earlier in the
	// before-pass can skip start while the after-pass still runs; the scope
	// marker is absent (or stale) then, and end leaves the context alone
	// rather than ending an enclosing span.
	end := func(ctx context.Context, phase string, errs int, attrs ...attribute.KeyValue) context.Context {
		scope, ok := ctx.Value(scopeKey{phase}).(spanScope)
		if !ok || scope.span != trace.SpanFromContext(ctx) {
			return ctx
		}
		scope.span.SetAttributes(attrs...)
		if errs > scope.startErr {
			scope.span.SetStatus(codes.Error, "recorded errors")
		} else {
			scope.span.SetStatus(codes.Ok, "")
		}
		scope.span.End()
		return scope.parent
	}

	keyOf := func(op dispatch.Operation) string {
		k, _ := op.Key()
		return string(k)
	}

	return dispatch.Interceptor{
		ID: TracingID,
		BeforeDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			attrs := []attribute.KeyValue{}
			if id, ok := dispatch.DispatchID(c.Ctx); ok {
				attrs = append(attrs, attribute.String("dispatch.id", id))
			}
			c.Ctx = start(c.Ctx, "dispatch", "dispatch", 0, attrs...)
			return c, nil
		},
		AfterDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			c.Ctx = end(c.Ctx, "dispatch", len(c.Errors),
				attribute.Int("dispatch.results", len(c.Results)),
				attribute.Int("dispatch.errors", len(c.Errors)),
			)
			return c, nil
		},
		BeforeAction: func(c dispatch.ActionContext) (dispatch.ActionContext, error) {
			c.Ctx = start(c.Ctx, "action", "action "+keyOf(c.Action), len(c.Errors),
				attribute.String("dispatch.action", keyOf(c.Action)),
			)
			return c, nil
		},
		AfterAction: func(c dispatch.ActionContext) (dispatch.ActionContext, error) {
			c.Ctx = end(c.Ctx, "action", len(c.Errors),
				attribute.Int("dispatch.produced", len(c.Expansion)),
			)
			return c, nil
		},
		BeforeEffect: func(c dispatch.EffectContext) (dispatch.EffectContext, error) {
			c.Ctx = start(c.Ctx, "effect", "effect "+keyOf(c.Effect), len(c.Errors),
				attribute.String("dispatch.effect", keyOf(c.Effect)),
			)
			return c, nil
		},
		AfterEffect: func(c dispatch.EffectContext) (dispatch.EffectContext, error) {
			c.Ctx = end(c.Ctx, "effect", len(c.Errors))
			return c, nil
		},
	}
}
