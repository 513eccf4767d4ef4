package mcptools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalResultToToolResult_PlainString(t *testing.T) {
	out := evalResultToToolResult("hello")
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "hello", out["result"])
	assert.NotContains(t, out, "set_env")
}

func TestEvalResultToToolResult_ObjectWithSetEnv(t *testing.T) {
	out := evalResultToToolResult(`{"set_env":{"FOO":"bar"}}`)
	assert.Equal(t, "success", out["status"])
	setEnv, ok := out["set_env"].(map[string]interface{})
	require.True(t, ok, "expected set_env, got %#v", out)
	assert.Equal(t, "bar", setEnv["FOO"])
}

func TestEvalResultToToolResult_ObjectWithEnv(t *testing.T) {
	out := evalResultToToolResult(`{"env":{"FOO":"baz"}}`)
	setEnv, ok := out["set_env"].(map[string]interface{})
	require.True(t, ok, "expected set_env, got %#v", out)
	assert.Equal(t, "baz", setEnv["FOO"])
}

func TestEvalResultToToolResult_ObjectWithoutEnv(t *testing.T) {
	out := evalResultToToolResult(`{"value":42}`)
	assert.NotContains(t, out, "set_env")
	result, ok := out["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), result["value"])
}
