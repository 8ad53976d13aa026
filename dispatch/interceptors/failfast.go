package interceptors

import "github.com/on-the-ground/dispatch_ive_go/dispatch"

// FailFastID is the interceptor id FailFast registers under.
const FailFastID dispatch.Key = "fail-fast"

// FailFast converts "errors accumulated so far" into "stop doing further
// work": every before-hook sets Halted whenever the context already carries
// errors. Already-collected results are kept; halting is opt-in, never
// automatic on first error.
func FailFast() dispatch.Interceptor {
	return dispatch.Interceptor{
		ID: FailFastID,
		BeforeDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			if len(c.Errors) > 0 {
				c.Halted = true
			}
			return c, nil
		},
		BeforeAction: func(c dispatch.ActionContext) (dispatch.ActionContext, error) {
			if len(c.Errors) > 0 {
				c.Halted = true
			}
			return c, nil
		},
		BeforeEffect: func(c dispatch.EffectContext) (dispatch.EffectContext, error) {
			if len(c.Errors) > 0 {
				c.Halted = true
			}
			return c, nil
		},
	}
}
