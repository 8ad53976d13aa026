package dispatch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Outcome is what every dispatch call returns: the ordered results of
// executed effects and every error recorded along the way. Callers must
// always inspect Errors; partial Results may sit alongside them.
type Outcome struct {
	Results []Result
	Errors  []ErrorRecord
}

// Err combines all error records into a single error, or nil when the
// dispatch was clean.
func (o Outcome) Err() error {
	errs := make([]error, len(o.Errors))
	for i, rec := range o.Errors {
		errs[i] = rec
	}
	return multierr.Combine(errs...)
}

// Values projects the result values in execution order.
func (o Outcome) Values() []any {
	vals := make([]any, len(o.Results))
	for i, res := range o.Results {
		vals[i] = res.Value
	}
	return vals
}

// Engine dispatches operation vectors against one merged registry. It holds
// no mutable state across calls; a single dispatch call, including its
// synchronous continuation re-entries, runs in one goroutine.
type Engine struct {
	registry Registry
	config   Config
	logger   *zap.Logger
}

// Option configures an Engine after construction.
type Option func(*Engine)

// WithLogger attaches a zap logger for engine debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithConfig overrides the recursion bounds.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// New validates the registry and builds an engine over it.
func New(registry Registry, opts ...Option) (*Engine, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		registry: registry,
		config:   NewConfig(0, 0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry exposes the merged registry for discoverability layers, which
// read descriptions, schemas, and system keys but never dispatch internals.
func (e *Engine) Registry() Registry { return e.registry }

// Dispatch runs ops with an empty system and empty dispatch data.
func (e *Engine) Dispatch(ctx context.Context, ops ...Operation) Outcome {
	return e.dispatch(ctx, nil, nil, ops)
}

// DispatchFor runs ops against system with empty dispatch data.
func (e *Engine) DispatchFor(ctx context.Context, system System, ops ...Operation) Outcome {
	return e.dispatch(ctx, system, nil, ops)
}

// DispatchWith runs ops against system with the given dispatch data.
func (e *Engine) DispatchWith(ctx context.Context, system System, data DispatchData, ops ...Operation) Outcome {
	return e.dispatch(ctx, system, data, ops)
}

// dispatch is the single underlying entry point behind every call shape,
// including continuation re-entries. It sequences the five phases and never
// panics or errors to the caller: failures surface on the Outcome.
func (e *Engine) dispatch(stdctx context.Context, system System, data DispatchData, ops []Operation) Outcome {
	if stdctx == nil {
		stdctx = context.Background()
	}
	if system == nil {
		system = System{}
	}
	if data == nil {
		data = DispatchData{}
	}

	id := uuid.NewString()
	stdctx = withDispatchID(stdctx, id)
	logger := e.logger.With(zap.String("dispatchId", id))
	logger.Debug("dispatch start", zap.Int("numOperations", len(ops)))

	ctx := Context{
		Ctx:    stdctx,
		System: system,
		Data:   data,
		Dispatch: func(system System, data DispatchData, ops []Operation) Outcome {
			return e.dispatch(stdctx, system, data, ops)
		},
	}
	if e.registry.SystemToState != nil {
		ctx.State = e.registry.SystemToState(system)
	}

	ctx = runHooks[Context, *Context](
		e.registry.Interceptors, PhaseBeforeDispatch, nil,
		func(it Interceptor) func(Context) (Context, error) { return it.BeforeDispatch },
		ctx,
	)

	if !ctx.Halted {
		// Interpolate with the possibly hook-modified dispatch data.
		interpolated := interpolateOps(e.registry.Placeholders, ctx.Data, ops, e.config.MaxInterpolationDepth)
		ctx, _ = e.expandOps(ctx, interpolated, e.config.MaxExpansionDepth)
		ctx = e.executeAll(ctx)
	}

	ctx = runHooks[Context, *Context](
		e.registry.Interceptors, PhaseAfterDispatch, nil,
		func(it Interceptor) func(Context) (Context, error) { return it.AfterDispatch },
		ctx,
	)

	logger.Debug("dispatch done",
		zap.Int("numResults", len(ctx.Results)),
		zap.Int("numErrors", len(ctx.Errors)),
	)
	return Outcome{Results: ctx.Results, Errors: ctx.Errors}
}
