package interceptors

import (
	"context"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"

	"github.com/on-the-ground/dispatch_ive_go/dispatch"
)

// TimingID is the interceptor id Timing registers under.
const TimingID dispatch.Key = "timing"

type timingStartKey struct{}

// Timing records the wall-clock window of each dispatch call as a timespan
// and logs its duration when the after-dispatch pass runs. Nested
// continuation dispatches are measured as their own windows.
func Timing(logger *zap.Logger) dispatch.Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return dispatch.Interceptor{
		ID: TimingID,
		BeforeDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			c.Ctx = context.WithValue(c.Ctx, timingStartKey{}, time.Now())
			return c, nil
		},
		AfterDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			start, ok := c.Ctx.Value(timingStartKey{}).(time.Time)
			if !ok {
				return c, nil
			}
			window := timespan.BetweenTimes(start, time.Now())
			log := logger
			if id, found := dispatch.DispatchID(c.Ctx); found {
				log = log.With(zap.String("dispatchId", id))
			}
			log.Debug("dispatch window",
				zap.Duration("elapsed", window.Duration()),
				zap.Int("numResults", len(c.Results)),
				zap.Int("numErrors", len(c.Errors)),
			)
			return c, nil
		},
	}
}
