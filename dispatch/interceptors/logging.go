package interceptors

import (
	"go.uber.org/zap"

	"github.com/on-the-ground/dispatch_ive_go/dispatch"
	"github.com/on-the-ground/dispatch_ive_go/dispatch/internal/fingerprint"
)

// LoggingID is the interceptor id Logging registers under.
const LoggingID dispatch.Key = "logging"

// Logging emits structured debug logs around every phase and a warn-level
// summary when a dispatch finishes with errors. Operation vectors are tagged
// with a stable fingerprint so the before and after records of the same
// vector can be correlated.
func Logging(logger *zap.Logger) dispatch.Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	withID := func(c dispatch.Context) *zap.Logger {
		if id, ok := dispatch.DispatchID(c.Ctx); ok {
			return logger.With(zap.String("dispatchId", id))
		}
		return logger
	}

	return dispatch.Interceptor{
		ID: LoggingID,
		BeforeDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			withID(c).Debug("dispatch begin",
				zap.Int("numDataKeys", len(c.Data)),
			)
			return c, nil
		},
		AfterDispatch: func(c dispatch.Context) (dispatch.Context, error) {
			log := withID(c)
			log.Debug("dispatch end",
				zap.Int("numResults", len(c.Results)),
				zap.Int("numErrors", len(c.Errors)),
				zap.Bool("halted", c.Halted),
			)
			for _, rec := range c.Errors {
				log.Warn("dispatch error",
					zap.String("phase", string(rec.Phase)),
					zap.String("subject", rec.Subject.String()),
					zap.Error(rec.Err),
				)
			}
			return c, nil
		},
		BeforeAction: func(c dispatch.ActionContext) (dispatch.ActionContext, error) {
			withID(c.Context).Debug("expand action",
				zap.String("action", c.Action.String()),
				zap.Uint64("op", fingerprint.Of(c.Action)),
			)
			return c, nil
		},
		AfterAction: func(c dispatch.ActionContext) (dispatch.ActionContext, error) {
			withID(c.Context).Debug("action expanded",
				zap.Uint64("op", fingerprint.Of(c.Action)),
				zap.Int("numProduced", len(c.Expansion)),
			)
			return c, nil
		},
		BeforeEffect: func(c dispatch.EffectContext) (dispatch.EffectContext, error) {
			withID(c.Context).Debug("execute effect",
				zap.String("effect", c.Effect.String()),
				zap.Uint64("op", fingerprint.Of(c.Effect)),
			)
			return c, nil
		},
		AfterEffect: func(c dispatch.EffectContext) (dispatch.EffectContext, error) {
			withID(c.Context).Debug("effect executed",
				zap.Uint64("op", fingerprint.Of(c.Effect)),
				zap.Bool("halted", c.Halted),
			)
			return c, nil
		},
	}
}
