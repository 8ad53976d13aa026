package dispatch

import (
	"errors"
	"fmt"
)

// Phase tags where in the pipeline an error was recorded or a hook ran.
type Phase string

const (
	PhaseBeforeDispatch Phase = "before-dispatch"
	PhaseAfterDispatch  Phase = "after-dispatch"
	PhaseBeforeAction   Phase = "before-action"
	PhaseAfterAction    Phase = "after-action"
	PhaseBeforeEffect   Phase = "before-effect"
	PhaseAfterEffect    Phase = "after-effect"
	PhaseExpandAction   Phase = "expand-action"
	PhaseExecuteEffect  Phase = "execute-effect"
)

var (
	// ErrUnknownEffect marks an effect vector whose key has no registered effect.
	ErrUnknownEffect = errors.New("no effect registered for key")
	// ErrUnknownOperation marks a vector whose key is neither a registered
	// action nor a registered effect.
	ErrUnknownOperation = errors.New("key is neither a registered action nor effect")
	// ErrMaxDepthExceeded marks an action expansion that hit the recursion bound.
	ErrMaxDepthExceeded = errors.New("max expansion depth exceeded")
	// ErrAmbiguousKey marks a registry key present in both Actions and Effects.
	ErrAmbiguousKey = errors.New("key registered as both action and effect")
)

// ErrorRecord is one recovered pipeline failure, surfaced as data on the
// Outcome. Records are accumulated in encounter order and never discarded.
type ErrorRecord struct {
	Phase Phase
	// Subject is the operation vector being processed when the failure
	// occurred, when there was one.
	Subject Operation
	// InterceptorID is set when the failure came from an interceptor hook.
	InterceptorID Key
	Err           error
}

func (r ErrorRecord) Error() string {
	if r.InterceptorID != "" {
		return fmt.Sprintf("%s[%s] %s: %v", r.Phase, r.InterceptorID, r.Subject, r.Err)
	}
	if r.Subject != nil {
		return fmt.Sprintf("%s %s: %v", r.Phase, r.Subject, r.Err)
	}
	return fmt.Sprintf("%s: %v", r.Phase, r.Err)
}

func (r ErrorRecord) Unwrap() error { return r.Err }
