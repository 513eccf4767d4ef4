package selector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-mcp/terminator-mcp-go/internal/selector"
)

func TestParse_ScenarioChainAndNativeId(t *testing.T) {
	got := selector.Parse("(role:Window && name:Best Plan Pro) >> nativeid:dob")
	require.Equal(t, selector.KindChain, got.Kind)
	require.Len(t, got.Children, 2)

	and := got.Children[0]
	require.Equal(t, selector.KindAnd, and.Kind)
	require.Len(t, and.Children, 2)
	assert.Equal(t, selector.KindRole, and.Children[0].Kind)
	assert.Equal(t, "Window", and.Children[0].Role)
	assert.Nil(t, and.Children[0].Name)
	assert.Equal(t, selector.KindName, and.Children[1].Kind)
	assert.Equal(t, "Best Plan Pro", and.Children[1].Str)

	nid := got.Children[1]
	assert.Equal(t, selector.KindNativeID, nid.Kind)
	assert.Equal(t, "dob", nid.Str)
}

func TestParse_AtomicNeverChainOrNot(t *testing.T) {
	for _, s := range []string{"role:Window", "name:Foo", "id:bar", "#bar", "nth:2", "visible:true"} {
		got := selector.Parse(s)
		assert.NotEqual(t, selector.KindChain, got.Kind, s)
		assert.NotEqual(t, selector.KindNot, got.Kind, s)
	}
}

func TestParse_ParensTransparentAroundAtoms(t *testing.T) {
	a := selector.Parse("(role:Window) >> role:Button")
	b := selector.Parse("role:Window >> role:Button")
	assert.Equal(t, b.String(), a.String())
}

func TestParse_ChainOfAtoms(t *testing.T) {
	got := selector.Parse("role:Window >> role:Button")
	require.Equal(t, selector.KindChain, got.Kind)
	require.Len(t, got.Children, 2)
}

func TestParse_PrecedenceNotAndOr(t *testing.T) {
	got := selector.Parse("role:A && !role:B || role:C")
	require.Equal(t, selector.KindOr, got.Kind)
	require.Len(t, got.Children, 2)
	and := got.Children[0]
	require.Equal(t, selector.KindAnd, and.Kind)
	require.Equal(t, selector.KindNot, and.Children[1].Kind)
}

func TestParse_MismatchedParens(t *testing.T) {
	got := selector.Parse("(role:A && role:B")
	require.Equal(t, selector.KindInvalid, got.Kind)
	assert.True(t, strings.Contains(strings.ToLower(got.Reason), "parenthes"))
}

func TestParse_UnknownFormat(t *testing.T) {
	got := selector.Parse("???not-a-selector???")
	require.Equal(t, selector.KindInvalid, got.Kind)
	assert.Contains(t, got.Reason, "Unknown selector format")
}

func TestParse_LegacyPipeForm(t *testing.T) {
	got := selector.Parse("button|OK")
	require.Equal(t, selector.KindRole, got.Kind)
	assert.Equal(t, "button", got.Role)
	require.NotNil(t, got.Name)
	assert.Equal(t, "OK", *got.Name)
}

func TestParse_MultiplePipesAreLiteral(t *testing.T) {
	got := selector.Parse("name:a|b|c")
	require.Equal(t, selector.KindName, got.Kind)
	assert.Equal(t, "a|b|c", got.Str)
}
