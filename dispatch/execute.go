package dispatch

import "fmt"

// executeAll runs every pending effect vector in order, each wrapped in the
// before/after-effect hook pair. Failing effects are isolated; only Halted
// (or cancellation of ctx.Ctx) stops the batch early.
func (e *Engine) executeAll(ctx Context) Context {
	// The batch-start data is what continuation dispatches merge over, so
	// sibling effects never see each other's continuation data.
	batch := ctx.Data
	for _, eff := range ctx.Pending {
		if ctx.Halted {
			break
		}
		if ctx.Ctx != nil && ctx.Ctx.Err() != nil {
			ctx.Halted = true
			break
		}
		ctx = e.executeEffect(ctx, eff, batch)
	}
	return ctx
}

func (e *Engine) executeEffect(ctx Context, eff Operation, batch DispatchData) Context {
	ectx := EffectContext{Context: ctx, Effect: eff}
	ectx = runHooks[EffectContext, *EffectContext](
		e.registry.Interceptors, PhaseBeforeEffect, eff,
		func(it Interceptor) func(EffectContext) (EffectContext, error) { return it.BeforeEffect },
		ectx,
	)

	executed := false
	if !ectx.Halted {
		k, _ := eff.Key()
		def, ok := e.registry.Effects[k]
		if !ok {
			ectx.Errors = append(ectx.Errors, ErrorRecord{
				Phase:   PhaseExecuteEffect,
				Subject: eff,
				Err:     fmt.Errorf("%w: %s", ErrUnknownEffect, k),
			})
		} else {
			api := &EffectAPI{
				Data:   ectx.Data,
				System: ectx.System,
				engine: e,
				batch:  batch,
				stdctx: ectx.Ctx,
			}
			value, err := runEffect(def.Handler, api, ectx.System, eff.Args())
			if err != nil {
				ectx.Errors = append(ectx.Errors, ErrorRecord{
					Phase:   PhaseExecuteEffect,
					Subject: eff,
					Err:     err,
				})
			} else {
				ectx.Result = value
				executed = true
			}
		}
	}

	ectx = runHooks[EffectContext, *EffectContext](
		e.registry.Interceptors, PhaseAfterEffect, eff,
		func(it Interceptor) func(EffectContext) (EffectContext, error) { return it.AfterEffect },
		ectx,
	)

	if executed {
		ectx.Results = append(ectx.Results, Result{Effect: eff, Value: ectx.Result})
	}
	return ectx.Context
}

func runEffect(h EffectHandler, api *EffectAPI, system System, args []any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("effect panic: %v", r)
		}
	}()
	return h(api, system, args)
}

// Dispatch re-enters the engine with the same system and the batch-start
// dispatch data. It runs to completion before returning.
func (api *EffectAPI) Dispatch(ops ...Operation) Outcome {
	return api.DispatchWith(nil, ops...)
}

// DispatchWith re-enters the engine with extra dispatch data shallow-merged
// over the data captured at the start of the current effect batch — not the
// latest value, so concurrent sibling effects stay isolated.
func (api *EffectAPI) DispatchWith(extra DispatchData, ops ...Operation) Outcome {
	return api.engine.dispatch(api.stdctx, api.System, merged(api.batch, extra), ops)
}

// DispatchAs re-enters the engine with a system override shallow-merged over
// the current system and extra dispatch data merged as in DispatchWith.
func (api *EffectAPI) DispatchAs(system System, extra DispatchData, ops ...Operation) Outcome {
	return api.engine.dispatch(api.stdctx, merged(api.System, system), merged(api.batch, extra), ops)
}

func merged[M ~map[string]any](base, extra M) M {
	out := make(M, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
