package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-mcp/terminator-mcp-go/internal/selector"
	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
)

func buildTree() *uitree.FakeNode {
	root := uitree.NewFakeNode("Window", "Best Plan Pro")
	field := uitree.NewFakeNode("TextField", "Date of Birth")
	field.NativeIDVal = "dob"
	button := uitree.NewFakeNode("Button", "OK")
	root.AddChild(field)
	root.AddChild(button)
	return root
}

func TestEvaluate_Chain(t *testing.T) {
	tree := buildTree()
	sel := selector.Parse("(role:Window && name:Best Plan Pro) >> nativeid:dob")
	got, err := selector.Evaluate(sel, tree)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dob", got[0].NativeID())
}

func TestEvaluate_InvalidSelectorErrors(t *testing.T) {
	tree := buildTree()
	sel := selector.Parse("???")
	_, err := selector.Evaluate(sel, tree)
	require.Error(t, err)
	var badSel *selector.BadSelectorError
	require.ErrorAs(t, err, &badSel)
}

func TestEvaluate_EmptyMatchIsNotError(t *testing.T) {
	tree := buildTree()
	sel := selector.Parse("nativeid:does-not-exist")
	got, err := selector.Evaluate(sel, tree)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluate_Nth(t *testing.T) {
	tree := buildTree()
	sel := selector.Parse("role:Window >> nth:-1")
	got, err := selector.Evaluate(sel, tree)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OK", got[0].Name())
}
