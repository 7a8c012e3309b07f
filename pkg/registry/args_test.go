package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredString(t *testing.T) {
	args := map[string]any{"repo": "owner/repo", "empty": "", "num": 3.0}

	v, err := RequiredString(args, "repo")
	require.NoError(t, err)
	assert.Equal(t, "owner/repo", v)

	_, err = RequiredString(args, "missing")
	assert.EqualError(t, err, "argument missing is required")

	_, err = RequiredString(args, "empty")
	assert.EqualError(t, err, "argument empty is required")

	_, err = RequiredString(args, "num")
	assert.EqualError(t, err, "argument num must be a string")
}

func TestIntExtraction(t *testing.T) {
	args := map[string]any{"issue_number": 42.0, "title": "x"}

	n, err := RequiredInt(args, "issue_number")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = RequiredInt(args, "absent")
	assert.EqualError(t, err, "argument absent is required")

	_, err = RequiredInt(args, "title")
	assert.EqualError(t, err, "argument title must be a number")

	assert.Equal(t, 30, OptionalInt(args, "absent", 30))
	assert.Equal(t, 42, OptionalInt(args, "issue_number", 30))
}

func TestStringSlice(t *testing.T) {
	args := map[string]any{
		"to":    []any{"a@b.c", "d@e.f"},
		"cc":    "solo@b.c",
		"bad":   []any{1.0},
		"blank": "",
	}

	v, err := StringSlice(args, "to")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.c", "d@e.f"}, v)

	v, err = StringSlice(args, "cc")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo@b.c"}, v)

	v, err = StringSlice(args, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringSlice(args, "blank")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = StringSlice(args, "bad")
	assert.Error(t, err)

	_, err = RequiredStringSlice(args, "absent")
	assert.EqualError(t, err, "argument absent is required")
}

func TestOptionalHelpers(t *testing.T) {
	args := map[string]any{"state": "open", "draft": true, "filter": map[string]any{"id": "eq.1"}}

	assert.Equal(t, "open", OptionalString(args, "state", "all"))
	assert.Equal(t, "all", OptionalString(args, "missing", "all"))
	assert.True(t, OptionalBool(args, "draft", false))
	assert.False(t, OptionalBool(args, "missing", false))

	m, err := OptionalMap(args, "filter")
	require.NoError(t, err)
	assert.Equal(t, "eq.1", m["id"])

	m, err = OptionalMap(args, "missing")
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = OptionalMap(args, "state")
	assert.Error(t, err)
}
