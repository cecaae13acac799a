package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbound/apperrors"
	"inbound/sheet"
)

func staticLookup(calls *[]string, name string, values map[string]string, err error) Lookup {
	return func(context.Context) (map[string]string, error) {
		*calls = append(*calls, name)
		return values, err
	}
}

func TestRun_Precedence(t *testing.T) {
	var calls []string
	targets := []string{"a", "b", "c"}
	res, err := Run(context.Background(), map[string]string{"a": "given"}, targets, []Step{
		{Source: "first", Fields: []string{"a", "b"}, Lookup: staticLookup(&calls, "first", map[string]string{"a": "x", "b": " "}, nil)},
		{Source: "second", Fields: []string{"b", "c"}, Lookup: staticLookup(&calls, "second", map[string]string{"b": "B", "c": "C"}, nil)},
		{Source: "third", Fields: []string{"c"}, Lookup: staticLookup(&calls, "third", map[string]string{"c": "never"}, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "given", "b": "B", "c": "C"}, res.Values)
	assert.Equal(t, map[string]string{"a": SourceInput, "b": "second", "c": "second"}, res.Sources)
	assert.Equal(t, []string{"first", "second"}, calls, "stops once every target is filled")
}

func TestRun_SkipsStepsWithNothingToFill(t *testing.T) {
	var calls []string
	_, err := Run(context.Background(), map[string]string{"a": "set"}, []string{"a", "b"}, []Step{
		{Source: "only-a", Fields: []string{"a"}, Lookup: staticLookup(&calls, "only-a", nil, nil)},
		{Source: "b", Fields: []string{"b"}, Lookup: staticLookup(&calls, "b", nil, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, calls)
}

func TestRun_ToleratesMissingSources(t *testing.T) {
	var calls []string
	res, err := Run(context.Background(), nil, []string{"a"}, []Step{
		{Source: "gone", Fields: []string{"a"}, Lookup: staticLookup(&calls, "gone", nil, sheet.ErrTableNotFound)},
		{Source: "nomatch", Fields: []string{"a"}, Lookup: staticLookup(&calls, "nomatch", nil, apperrors.NewNotFoundError("row", "k"))},
		{Source: "last", Fields: []string{"a"}, Lookup: staticLookup(&calls, "last", map[string]string{"a": "v"}, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, "v", res.Values["a"])
	assert.Empty(t, res.Missing([]string{"a"}))
}

func TestRun_PropagatesOtherErrors(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	_, err := Run(context.Background(), nil, []string{"a"}, []Step{
		{Source: "broken", Fields: []string{"a"}, Lookup: staticLookup(&calls, "broken", nil, boom)},
	})
	assert.ErrorIs(t, err, boom)

	_, err = Run(context.Background(), nil, []string{"a"}, []Step{
		{Source: "config", Fields: []string{"a"}, Lookup: staticLookup(&calls, "config", nil, apperrors.NewConfigError("T", "C"))},
	})
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}
