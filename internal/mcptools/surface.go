// Package mcptools implements the MCP tool dispatch surface: a thin
// name-to-handler map whose handlers consume the selector engine, the
// extension bridge, and the sequence executor.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/terminator-mcp/terminator-mcp-go/internal/bridge"
	"github.com/terminator-mcp/terminator-mcp-go/internal/duration"
	"github.com/terminator-mcp/terminator-mcp-go/internal/selector"
	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
	"github.com/terminator-mcp/terminator-mcp-go/internal/workflow"
)

// Handler is one tool's implementation. It receives already-JSON-decoded
// arguments and returns a JSON-serializable result map.
type Handler func(ctx context.Context, args json.RawMessage) (map[string]interface{}, error)

// Surface wires the dispatch table to its collaborators: a UI tree root
// (the narrow accessibility capability), the extension bridge
// supervisor, and a workspace directory for run_command.
type Surface struct {
	Root         uitree.Node
	Supervisor   *bridge.Supervisor
	WorkspaceDir string

	handlers map[string]Handler
	executor *workflow.Executor
}

// NewSurface builds the dispatch table described in the tool surface:
// click_element, type_into_element, press_key, open_application,
// activate_element, navigate_browser, execute_browser_script,
// run_command, scroll_element, execute_sequence.
func NewSurface(root uitree.Node, sup *bridge.Supervisor, workspaceDir string) *Surface {
	s := &Surface{Root: root, Supervisor: sup, WorkspaceDir: workspaceDir}
	s.handlers = map[string]Handler{
		"click_element":          s.clickElement,
		"type_into_element":      s.typeIntoElement,
		"press_key":              s.pressKey,
		"open_application":       s.openApplication,
		"activate_element":       s.activateElement,
		"navigate_browser":       s.navigateBrowser,
		"execute_browser_script": s.executeBrowserScript,
		"run_command":            s.runCommand,
		"scroll_element":         s.scrollElement,
	}
	s.executor = &workflow.Executor{Tools: s.asToolExecutor}
	s.handlers["execute_sequence"] = s.executeSequence
	return s
}

// Names returns the registered tool names in map iteration order (not
// sorted, not in declaration order).
func (s *Surface) Names() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the named tool's handler, or an "unknown tool" error
// equivalent to a -32601-style method-not-found.
func (s *Surface) Dispatch(ctx context.Context, name string, args json.RawMessage) (map[string]interface{}, error) {
	h, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return h(ctx, args)
}

// asToolExecutor adapts Dispatch to workflow.ToolExecutor so
// execute_sequence can drive the same dispatch table recursively.
func (s *Surface) asToolExecutor(ctx context.Context, toolName string, args map[string]interface{}) (workflow.ToolOutcome, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return workflow.ToolOutcome{}, err
	}
	result, err := s.Dispatch(ctx, toolName, raw)
	if err != nil {
		return workflow.ToolOutcome{Status: "error", Error: err.Error()}, nil
	}
	return workflow.ToolOutcome{Status: "success", Result: result, SetEnv: extractSetEnvField(result)}, nil
}

func extractSetEnvField(result map[string]interface{}) map[string]interface{} {
	if se, ok := result["set_env"].(map[string]interface{}); ok {
		return se
	}
	if se, ok := result["env"].(map[string]interface{}); ok {
		return se
	}
	return nil
}

// standardArgs are the fields common to every element-targeting tool.
type standardArgs struct {
	Selector          string          `json:"selector"`
	TimeoutMs         duration.Millis `json:"timeout_ms,omitempty"`
	Retries           int             `json:"retries,omitempty"`
	FallbackSelectors []string        `json:"fallback_selectors,omitempty"`
}

func (a standardArgs) timeout() time.Duration {
	if a.TimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

// resolveElement evaluates Selector (and, in order, each
// FallbackSelectors entry) against root, retrying up to Retries times
// with a short backoff, polling within the configured timeout.
func resolveElement(ctx context.Context, root uitree.Node, a standardArgs) (uitree.Node, error) {
	candidates := append([]string{a.Selector}, a.FallbackSelectors...)
	deadline := time.Now().Add(a.timeout())

	for attempt := 0; attempt <= a.Retries; attempt++ {
		for _, raw := range candidates {
			sel := selector.Parse(raw)
			if sel.IsInvalid() {
				return nil, &selector.BadSelectorError{Reason: sel.Reason}
			}
			matches, err := selector.Evaluate(sel, root)
			if err != nil {
				continue
			}
			if len(matches) > 0 {
				return matches[0], nil
			}
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("no element matched selector %q (or its fallbacks) within timeout", a.Selector)
}
