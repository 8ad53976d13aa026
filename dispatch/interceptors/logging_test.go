package interceptors_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/dispatch_ive_go/dispatch"
	"github.com/on-the-ground/dispatch_ive_go/dispatch/interceptors"
)

func TestLogging_EmitsPhaseLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	reg := dispatch.Registry{
		Effects: map[dispatch.Key]dispatch.EffectDef{
			"eff": {Handler: func(_ *dispatch.EffectAPI, _ dispatch.System, _ []any) (any, error) {
				return nil, nil
			}},
		},
		Actions: map[dispatch.Key]dispatch.ActionDef{
			"act": {Handler: func(_ dispatch.State, _ []any) ([]dispatch.Operation, error) {
				return []dispatch.Operation{dispatch.Op("eff")}, nil
			}},
		},
		Interceptors: []dispatch.Interceptor{interceptors.Logging(logger)},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	out := eng.Dispatch(context.Background(), dispatch.Op("act"))
	require.Empty(t, out.Errors)

	for _, msg := range []string{
		"dispatch begin",
		"expand action",
		"action expanded",
		"execute effect",
		"effect executed",
		"dispatch end",
	} {
		assert.Equal(t, 1, logs.FilterMessage(msg).Len(), "expected log %q", msg)
	}

	// Every entry of one dispatch carries the same dispatch id.
	entries := logs.All()
	require.NotEmpty(t, entries)
	id := entries[0].ContextMap()["dispatchId"]
	require.NotEmpty(t, id)
	for _, entry := range entries {
		assert.Equal(t, id, entry.ContextMap()["dispatchId"])
	}
}

func TestLogging_WarnsOnErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	reg := dispatch.Registry{
		Effects: map[dispatch.Key]dispatch.EffectDef{
			"boom": {Handler: func(_ *dispatch.EffectAPI, _ dispatch.System, _ []any) (any, error) {
				return nil, errors.New("boom")
			}},
		},
		Interceptors: []dispatch.Interceptor{interceptors.Logging(logger)},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	eng.Dispatch(context.Background(), dispatch.Op("boom"))

	warns := logs.FilterMessage("dispatch error")
	require.Equal(t, 1, warns.Len())
	assert.Equal(t, zapcore.WarnLevel, warns.All()[0].Level)
}

func TestLogging_NilLoggerIsSafe(t *testing.T) {
	reg := dispatch.Registry{
		Effects: map[dispatch.Key]dispatch.EffectDef{
			"eff": {Handler: func(_ *dispatch.EffectAPI, _ dispatch.System, _ []any) (any, error) {
				return "v", nil
			}},
		},
		Interceptors: []dispatch.Interceptor{interceptors.Logging(nil)},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	out := eng.Dispatch(context.Background(), dispatch.Op("eff"))
	require.Empty(t, out.Errors)
	assert.Equal(t, []any{"v"}, out.Values())
}
