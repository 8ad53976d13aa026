// Package interceptors ships the engine's built-in interceptors: fail-fast
// halting, structured logging, dispatch timing, and OpenTelemetry tracing.
// Each constructor returns a plain dispatch.Interceptor value to place in
// Registry.Interceptors; order matters, since before-hooks run in
// registration order and after-hooks in reverse.
package interceptors
