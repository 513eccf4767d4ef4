package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terminator-mcp/terminator-mcp-go/internal/expr"
)

func TestEval_Always(t *testing.T) {
	_, isAlways := expr.Eval("always()", nil)
	assert.True(t, isAlways)
}

func TestEval_PathComparison(t *testing.T) {
	ctx := map[string]interface{}{
		"env": map[string]interface{}{
			"step1": map[string]interface{}{"status": "ok"},
		},
	}
	ok, isAlways := expr.Eval(`env.step1.status == "ok"`, ctx)
	assert.False(t, isAlways)
	assert.True(t, ok)
}

func TestEval_BooleanComposition(t *testing.T) {
	ctx := map[string]interface{}{
		"env": map[string]interface{}{"x": float64(5)},
	}
	ok, _ := expr.Eval("env.x > 1 && env.x < 10", ctx)
	assert.True(t, ok)

	ok, _ = expr.Eval("!(env.x > 1) || env.x == 5", ctx)
	assert.True(t, ok)
}

func TestEval_MissingPathEqualsNull(t *testing.T) {
	ok, isAlways := expr.Eval("env.missing == null", map[string]interface{}{"env": map[string]interface{}{}})
	assert.False(t, isAlways)
	assert.True(t, ok)
}

func TestEval_ParseErrorReturnsFalse(t *testing.T) {
	ok, isAlways := expr.Eval("&&&", nil)
	assert.False(t, ok)
	assert.False(t, isAlways)
}
