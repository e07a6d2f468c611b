package canonical

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dossier/pkg/domain-errors"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	a := map[string]any{"b": 2, "a": 1, "c": map[string]any{"z": true, "y": nil}}
	b := map[string]any{"c": map[string]any{"y": nil, "z": true}, "a": 1, "b": 2}

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, `{"a":1,"b":2,"c":{"y":null,"z":true}}`, ca)
}

func TestCanonicalizeArraysPreserveOrder(t *testing.T) {
	got, err := Canonicalize([]any{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, `[3,1,2]`, got)

	reordered, err := Canonicalize([]any{1, 2, 3})
	require.NoError(t, err)
	assert.NotEqual(t, got, reordered)
}

func TestCanonicalizeStructsMatchMaps(t *testing.T) {
	type row struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	fromStruct, err := Canonicalize(row{Name: "flat", Count: 2})
	require.NoError(t, err)
	fromMap, err := Canonicalize(map[string]any{"count": 2, "name": "flat"})
	require.NoError(t, err)
	assert.Equal(t, fromMap, fromStruct)
}

func TestCanonicalizeNil(t *testing.T) {
	got, err := Canonicalize(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", got)
}

func TestCanonicalizeNonFiniteFails(t *testing.T) {
	_, err := Canonicalize(map[string]any{"bad": math.NaN()})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeSerialization, dErrors.CodeOf(err))
}

func TestCanonicalizeCycleFails(t *testing.T) {
	type node struct {
		Next *node `json:"next"`
	}
	n := &node{}
	n.Next = n
	_, err := Canonicalize(n)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeSerialization, dErrors.CodeOf(err))
}

func TestHashValueDeterministic(t *testing.T) {
	v := map[string]any{"listing": "L-1", "rooms": 3, "tags": []any{"sea", "view"}}

	h1, err := HashValue(v)
	require.NoError(t, err)
	h2, err := HashValue(v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, strings.ToLower(h1))
}

func TestHashValueChangesWithContent(t *testing.T) {
	h1, err := HashValue(map[string]any{"rating": 4})
	require.NoError(t, err)
	h2, err := HashValue(map[string]any{"rating": 5})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestDigestKnownVector(t *testing.T) {
	// sha256("") is a fixed vector; guards against accidental algorithm swap.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Digest(""))
}
