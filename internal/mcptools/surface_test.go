package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
)

func TestClickElement_AcceptsDurationStringTimeout(t *testing.T) {
	root := uitree.NewFakeNode("window", "root")
	button := uitree.NewFakeNode("button", "OK")
	root.AddChild(button)

	s := NewSurface(root, nil, t.TempDir())
	raw, err := json.Marshal(map[string]interface{}{
		"selector":   "role:button",
		"timeout_ms": "1500ms",
	})
	require.NoError(t, err)

	result, err := s.Dispatch(context.Background(), "click_element", raw)
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, []string{"click"}, button.Actions)
}

func TestClickElement_RejectsUnknownDurationUnit(t *testing.T) {
	root := uitree.NewFakeNode("window", "root")
	s := NewSurface(root, nil, t.TempDir())
	raw := []byte(`{"selector":"role:button","timeout_ms":"10x"}`)

	_, err := s.Dispatch(context.Background(), "click_element", raw)
	assert.Error(t, err)
}

func TestClickElement_AcceptsBareNumberTimeout(t *testing.T) {
	root := uitree.NewFakeNode("window", "root")
	button := uitree.NewFakeNode("button", "OK")
	root.AddChild(button)

	s := NewSurface(root, nil, t.TempDir())
	raw, err := json.Marshal(map[string]interface{}{
		"selector":   "role:button",
		"timeout_ms": 500,
	})
	require.NoError(t, err)

	result, err := s.Dispatch(context.Background(), "click_element", raw)
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])
}
