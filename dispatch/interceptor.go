package dispatch

import "fmt"

// Interceptor wraps pipeline phases with lifecycle hooks. Any hook may be
// nil. Hooks are pure context-to-context functions; a hook that returns an
// error (or panics) has its context discarded and the failure recorded, and
// the chain continues with the context as it stood before the hook ran.
//
// Before-hooks run in registration order, after-hooks in reverse order, so
// the interceptor closest to the handler observes results first and outer
// interceptors can override what inner ones did.
type Interceptor struct {
	ID Key

	BeforeDispatch func(Context) (Context, error)
	AfterDispatch  func(Context) (Context, error)
	BeforeAction   func(ActionContext) (ActionContext, error)
	AfterAction    func(ActionContext) (ActionContext, error)
	BeforeEffect   func(EffectContext) (EffectContext, error)
	AfterEffect    func(EffectContext) (EffectContext, error)
}

// runHooks drives one before- or after-pass of the chain over a phase
// context. Setting Halted skips the remaining hooks of a before-pass only;
// an after-pass always visits every hook so cleanup still fires.
func runHooks[C any, PC interface {
	*C
	base() *Context
}](
	itcs []Interceptor,
	phase Phase,
	subject Operation,
	pick func(Interceptor) func(C) (C, error),
	ctx C,
) C {
	before := isBeforePhase(phase)
	n := len(itcs)
	for i := 0; i < n; i++ {
		it := itcs[i]
		if !before {
			it = itcs[n-1-i]
		}
		if before && PC(&ctx).base().Halted {
			break
		}
		hook := pick(it)
		if hook == nil {
			continue
		}
		next, err := runHook(hook, ctx)
		if err != nil {
			b := PC(&ctx).base()
			b.Errors = append(b.Errors, ErrorRecord{
				Phase:         phase,
				Subject:       subject,
				InterceptorID: it.ID,
				Err:           err,
			})
			continue
		}
		ctx = next
	}
	return ctx
}

// runHook invokes a single hook, converting panics into errors so the
// failing hook's would-be mutation can be discarded like any other failure.
func runHook[C any](hook func(C) (C, error), ctx C) (next C, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = ctx
			err = fmt.Errorf("interceptor panic: %v", r)
		}
	}()
	return hook(ctx)
}

func isBeforePhase(p Phase) bool {
	switch p {
	case PhaseBeforeDispatch, PhaseBeforeAction, PhaseBeforeEffect:
		return true
	default:
		return false
	}
}
