package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
)

// actuate resolves args' selector against s.Root and invokes fn on the
// element if it implements uitree.Actuator, returning a uniform result
// shape with the resolved element's role/name for traceability.
func (s *Surface) actuate(ctx context.Context, raw json.RawMessage, action string, fn func(uitree.Actuator) error) (map[string]interface{}, error) {
	var a standardArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Selector == "" {
		return nil, fmt.Errorf("selector must not be empty")
	}
	if s.Root == nil {
		return nil, fmt.Errorf("no element tree available")
	}

	el, err := resolveElement(ctx, s.Root, a)
	if err != nil {
		return nil, err
	}

	actor, ok := el.(uitree.Actuator)
	if !ok {
		return nil, &uitree.ErrUnsupportedAction{Action: action}
	}
	if err := fn(actor); err != nil {
		return nil, fmt.Errorf("%s failed: %w", action, err)
	}

	return map[string]interface{}{
		"status": "success",
		"role":   el.Role(),
		"name":   el.Name(),
	}, nil
}

func (s *Surface) clickElement(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	return s.actuate(ctx, raw, "click", func(a uitree.Actuator) error { return a.Click() })
}

func (s *Surface) activateElement(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	return s.actuate(ctx, raw, "activate_window", func(a uitree.Actuator) error { return a.ActivateWindow() })
}

type typeIntoElementArgs struct {
	standardArgs
	Text         string `json:"text"`
	UseClipboard bool   `json:"use_clipboard,omitempty"`
}

func (s *Surface) typeIntoElement(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a typeIntoElementArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	body, err := json.Marshal(a.standardArgs)
	if err != nil {
		return nil, err
	}
	return s.actuate(ctx, body, "type_text", func(act uitree.Actuator) error {
		return act.TypeText(a.Text, a.UseClipboard)
	})
}

type pressKeyArgs struct {
	standardArgs
	Key string `json:"key"`
}

func (s *Surface) pressKey(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a pressKeyArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Key == "" {
		return nil, fmt.Errorf("key must not be empty")
	}
	body, err := json.Marshal(a.standardArgs)
	if err != nil {
		return nil, err
	}
	return s.actuate(ctx, body, "press_key", func(act uitree.Actuator) error {
		return act.PressKey(a.Key)
	})
}

type scrollElementArgs struct {
	standardArgs
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount,omitempty"`
}

func (s *Surface) scrollElement(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a scrollElementArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Direction == "" {
		return nil, fmt.Errorf("direction must not be empty")
	}
	body, err := json.Marshal(a.standardArgs)
	if err != nil {
		return nil, err
	}
	return s.actuate(ctx, body, "scroll", func(act uitree.Actuator) error {
		return act.Scroll(a.Direction, a.Amount)
	})
}

// openApplicationArgs targets an application by path/name rather than a
// selector; it has no existing element to resolve against, so it is
// handled as a no-element tool with its own run_command-style exec.
type openApplicationArgs struct {
	Path string   `json:"path"`
	Args []string `json:"args,omitempty"`
}

func (s *Surface) openApplication(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a openApplicationArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path must not be empty")
	}
	cmd := newProcessCmd(ctx, a.Path, a.Args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("open_application failed: %w", err)
	}
	return map[string]interface{}{"status": "success", "path": a.Path}, nil
}
