package dispatch

import "fmt"

// expandOps recursively flattens ops into effect vectors on ctx.Pending.
// Effects pass through verbatim; actions are expanded through their hook
// pair, their produced list re-interpolated against the current dispatch
// data, and the result recursed into at depth-1. Unknown keys become
// expand-action records without aborting the batch.
//
// The returned bool is false when the recursion bound was hit: exactly one
// max-depth-exceeded record is appended, Pending is emptied, and the whole
// expansion unwinds.
func (e *Engine) expandOps(ctx Context, ops []Operation, depth int) (Context, bool) {
	if depth <= 0 {
		ctx.Errors = append(ctx.Errors, ErrorRecord{
			Phase: PhaseExpandAction,
			Err:   ErrMaxDepthExceeded,
		})
		ctx.Pending = nil
		return ctx, false
	}

	for _, op := range ops {
		if ctx.Halted {
			break
		}
		if ctx.Ctx != nil && ctx.Ctx.Err() != nil {
			ctx.Halted = true
			break
		}

		k, ok := op.Key()
		if !ok {
			ctx.Errors = append(ctx.Errors, ErrorRecord{
				Phase:   PhaseExpandAction,
				Subject: op,
				Err:     fmt.Errorf("%w: %v", ErrUnknownOperation, op),
			})
			continue
		}

		switch e.registry.kindOf(k) {
		case kindEffect:
			ctx.Pending = append(ctx.Pending, op)

		case kindAction:
			var fatal bool
			ctx, fatal = e.expandAction(ctx, op, k, depth)
			if fatal {
				return ctx, false
			}

		default:
			ctx.Errors = append(ctx.Errors, ErrorRecord{
				Phase:   PhaseExpandAction,
				Subject: op,
				Err:     fmt.Errorf("%w: %s", ErrUnknownOperation, k),
			})
		}
	}
	return ctx, true
}

// expandAction runs one action through its before/after hook pair, then
// recurses into whatever the handler produced.
func (e *Engine) expandAction(ctx Context, op Operation, k Key, depth int) (Context, bool) {
	actx := ActionContext{Context: ctx, Action: op}
	actx = runHooks[ActionContext, *ActionContext](
		e.registry.Interceptors, PhaseBeforeAction, op,
		func(it Interceptor) func(ActionContext) (ActionContext, error) { return it.BeforeAction },
		actx,
	)

	if !actx.Halted {
		produced, err := runAction(e.registry.Actions[k].Handler, actx.State, op.Args())
		if err != nil {
			actx.Errors = append(actx.Errors, ErrorRecord{
				Phase:   PhaseExpandAction,
				Subject: op,
				Err:     err,
			})
		} else {
			actx.Expansion = produced
		}
	}

	actx = runHooks[ActionContext, *ActionContext](
		e.registry.Interceptors, PhaseAfterAction, op,
		func(it Interceptor) func(ActionContext) (ActionContext, error) { return it.AfterAction },
		actx,
	)

	produced := actx.Expansion
	ctx = actx.Context

	if len(produced) == 0 {
		return ctx, false
	}

	// Re-interpolate with the current dispatch data: the action may have
	// introduced a placeholder that was absent from the original input.
	produced = interpolateOps(e.registry.Placeholders, ctx.Data, produced, e.config.MaxInterpolationDepth)
	ctx, ok := e.expandOps(ctx, produced, depth-1)
	return ctx, !ok
}

func runAction(h ActionHandler, state State, args []any) (ops []Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			ops = nil
			err = fmt.Errorf("action panic: %v", r)
		}
	}()
	return h(state, args)
}
