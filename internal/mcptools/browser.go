package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
)

type executeBrowserScriptArgs struct {
	Script       string `json:"script"`
	AwaitPromise bool   `json:"await_promise,omitempty"`
}

// executeBrowserScript evaluates arbitrary JS in the most recently
// connected browser tab via the extension bridge. A nil result (no
// client connected within the bridge's retry budget) is surfaced as a
// BridgeUnavailable-shaped result rather than an error, per the bridge's
// eval_in_active_tab contract.
func (s *Surface) executeBrowserScript(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a executeBrowserScriptArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Script == "" {
		return nil, fmt.Errorf("script must not be empty")
	}
	if s.Supervisor == nil {
		return nil, fmt.Errorf("no extension bridge configured")
	}

	b, err := s.Supervisor.Global()
	if err != nil {
		return nil, fmt.Errorf("bridge unavailable: %w", err)
	}

	result, err := b.EvalInActiveTab(ctx, a.Script, a.AwaitPromise)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return map[string]interface{}{"status": "error", "error": "bridge_unavailable: no browser extension connected"}, nil
	}
	return evalResultToToolResult(*result), nil
}

// evalResultToToolResult restructures a bridge eval result. A script that
// evaluates to an object comes back from the bridge as that object's raw
// JSON text; this promotes a {set_env: {...}} (or {env: {...}}) return
// value to a top-level key the sequence executor's env merge looks for,
// the same convention run_command uses for its stdout.
func evalResultToToolResult(result string) map[string]interface{} {
	out := map[string]interface{}{"status": "success", "result": result}
	var asObj map[string]interface{}
	if json.Unmarshal([]byte(result), &asObj) != nil {
		return out
	}
	out["result"] = asObj
	if se, ok := asObj["set_env"].(map[string]interface{}); ok {
		out["set_env"] = se
	} else if se, ok := asObj["env"].(map[string]interface{}); ok {
		out["set_env"] = se
	}
	return out
}

type navigateBrowserArgs struct {
	URL string `json:"url"`
}

// navigateBrowser drives the browser's active tab to a URL the same way
// any other browser automation does here: by evaluating JS, since the
// bridge protocol has no dedicated navigate action.
func (s *Surface) navigateBrowser(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a navigateBrowserArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.URL == "" {
		return nil, fmt.Errorf("url must not be empty")
	}
	script, err := json.Marshal(executeBrowserScriptArgs{
		Script: fmt.Sprintf("window.location.href = %s;", jsonString(a.URL)),
	})
	if err != nil {
		return nil, err
	}
	result, err := s.executeBrowserScript(ctx, script)
	if err != nil {
		return nil, err
	}
	result["url"] = a.URL
	return result, nil
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
