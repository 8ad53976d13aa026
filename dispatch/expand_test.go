package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/on-the-ground/dispatch_ive_go/dispatch"
)

// selfRefRegistry registers an action that expands to itself forever.
func selfRefRegistry() dispatch.Registry {
	return dispatch.Registry{
		Actions: map[dispatch.Key]dispatch.ActionDef{
			"A": {Handler: func(_ dispatch.State, _ []any) ([]dispatch.Operation, error) {
				return []dispatch.Operation{dispatch.Op("A")}, nil
			}},
		},
	}
}

func TestExpand_DepthBound(t *testing.T) {
	eng, err := dispatch.New(selfRefRegistry(),
		dispatch.WithConfig(dispatch.Config{MaxExpansionDepth: 5, MaxInterpolationDepth: 10}),
	)
	require.NoError(t, err)

	out := eng.Dispatch(context.Background(), dispatch.Op("A"))

	require.Len(t, out.Errors, 1, "cyclic expansion must record exactly one error")
	assert.ErrorIs(t, out.Errors[0].Err, dispatch.ErrMaxDepthExceeded)
	assert.Empty(t, out.Results)
}

func TestExpand_DepthBound_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(0, 25).Draw(t, "maxDepth")

		expansions := 0
		reg := dispatch.Registry{
			Actions: map[dispatch.Key]dispatch.ActionDef{
				"A": {Handler: func(_ dispatch.State, _ []any) ([]dispatch.Operation, error) {
					expansions++
					return []dispatch.Operation{dispatch.Op("A")}, nil
				}},
			},
		}
		eng, err := dispatch.New(reg,
			dispatch.WithConfig(dispatch.Config{MaxExpansionDepth: depth, MaxInterpolationDepth: 10}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := eng.Dispatch(context.Background(), dispatch.Op("A"))

		if len(out.Errors) != 1 {
			t.Fatalf("expected exactly one error, got %d", len(out.Errors))
		}
		if !errors.Is(out.Errors[0].Err, dispatch.ErrMaxDepthExceeded) {
			t.Fatalf("expected max-depth-exceeded, got %v", out.Errors[0].Err)
		}
		if expansions != depth {
			t.Fatalf("expected %d expansion steps, got %d", depth, expansions)
		}
	})
}

func TestExpand_ActionsFlattenInOrder(t *testing.T) {
	reg := echoRegistry()
	reg.Actions = map[dispatch.Key]dispatch.ActionDef{
		"both": {Handler: func(_ dispatch.State, args []any) ([]dispatch.Operation, error) {
			return []dispatch.Operation{
				dispatch.Op("ok", args[0]),
				dispatch.Op("nested", args[1]),
			}, nil
		}},
		"nested": {Handler: func(_ dispatch.State, args []any) ([]dispatch.Operation, error) {
			return []dispatch.Operation{dispatch.Op("ok", args[0])}, nil
		}},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	out := eng.Dispatch(context.Background(),
		dispatch.Op("ok", "first"),
		dispatch.Op("both", "second", "third"),
		dispatch.Op("ok", "fourth"),
	)

	require.Empty(t, out.Errors)
	assert.Equal(t, []any{"first", "second", "third", "fourth"}, out.Values())
}

func TestExpand_FailingActionIsIsolated(t *testing.T) {
	reg := echoRegistry()
	reg.Actions = map[dispatch.Key]dispatch.ActionDef{
		"bad": {Handler: func(_ dispatch.State, _ []any) ([]dispatch.Operation, error) {
			return nil, errors.New("no expansion for you")
		}},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	out := eng.Dispatch(context.Background(),
		dispatch.Op("bad"),
		dispatch.Op("ok", "survivor"),
	)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, dispatch.PhaseExpandAction, out.Errors[0].Phase)
	assert.Equal(t, []any{"survivor"}, out.Values())
}

func TestExpand_ActionIntroducedPlaceholderIsReInterpolated(t *testing.T) {
	reg := echoRegistry()
	reg.Actions = map[dispatch.Key]dispatch.ActionDef{
		"wrap": {Handler: func(_ dispatch.State, _ []any) ([]dispatch.Operation, error) {
			// The placeholder below was not present in the original input.
			return []dispatch.Operation{dispatch.Op("ok", dispatch.Op("who"))}, nil
		}},
	}
	reg.Placeholders = map[dispatch.Key]dispatch.PlaceholderDef{
		"who": {Handler: func(data dispatch.DispatchData, _ []any) any {
			if v, ok := data["who"]; ok {
				return v
			}
			return dispatch.Op("who")
		}},
	}
	eng, err := dispatch.New(reg)
	require.NoError(t, err)

	out := eng.DispatchWith(context.Background(), nil,
		dispatch.DispatchData{"who": "world"},
		dispatch.Op("wrap"),
	)

	require.Empty(t, out.Errors)
	assert.Equal(t, []any{"world"}, out.Values())
}
