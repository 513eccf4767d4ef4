package substitution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terminator-mcp/terminator-mcp-go/internal/substitution"
)

func ctx() map[string]interface{} {
	return map[string]interface{}{"n": float64(3)}
}

func TestSubstitute_WholeStringPreservesType(t *testing.T) {
	got := substitution.Substitute("{{n}}", ctx())
	assert.Equal(t, float64(3), got)
}

func TestSubstitute_EmbeddedStringifies(t *testing.T) {
	got := substitution.Substitute("n={{n}}", ctx())
	assert.Equal(t, "n=3", got)
}

func TestSubstitute_UnresolvedVerbatim(t *testing.T) {
	got := substitution.Substitute("{{missing}}", ctx())
	assert.Equal(t, "{{missing}}", got)
}

func TestSubstitute_Idempotent(t *testing.T) {
	c := ctx()
	once := substitution.Substitute("n={{n}}", c)
	twice := substitution.Substitute(once, c)
	assert.Equal(t, once, twice)
}

func TestSubstitute_NestedStructures(t *testing.T) {
	c := ctx()
	in := map[string]interface{}{
		"a": []interface{}{"{{n}}", "x={{n}}"},
	}
	got := substitution.Substitute(in, c).(map[string]interface{})
	arr := got["a"].([]interface{})
	assert.Equal(t, float64(3), arr[0])
	assert.Equal(t, "x=3", arr[1])
}
