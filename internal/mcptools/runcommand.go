package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terminator-mcp/terminator-mcp-go/internal/duration"
	"github.com/terminator-mcp/terminator-mcp-go/internal/util"
)

const (
	defaultCommandTimeout = 30 * time.Second
	maxCommandOutputChars = 8000
)

// dangerousPatterns blocks obviously destructive commands. This is a
// best-effort guard against accidental damage from agent-generated
// commands, not a security boundary.
var dangerousPatterns = []string{
	"rm -rf /",
	"rm -r -f /",
	"rm -rf ~",
	"rm -rf -- /",
	"mkfs",
	"dd if=",
	"shutdown",
	"reboot",
	"halt",
	":(){:|:&};:",
	"format c:",
	"format d:",
	"del /s /q c:\\",
	"rd /s /q c:\\",
}

type runCommandArgs struct {
	Command   string          `json:"command"`
	TimeoutMs duration.Millis `json:"timeout_ms,omitempty"`
}

// runCommand executes a shell command in the configured workspace
// directory, truncating output and filtering secret-shaped environment
// variables, mirroring the blocklist/truncation idiom used elsewhere in
// this tree for subprocess execution.
func (s *Surface) runCommand(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var a runCommandArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Command) == "" {
		return nil, fmt.Errorf("command must not be empty")
	}

	lower := strings.ToLower(a.Command)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return nil, fmt.Errorf("refusing to run command matching blocked pattern %q", pattern)
		}
	}

	timeout := defaultCommandTimeout
	if a.TimeoutMs > 0 {
		timeout = time.Duration(a.TimeoutMs) * time.Millisecond
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := newShellCmd(cctx, a.Command)
	if s.WorkspaceDir != "" {
		cmd.Dir = s.WorkspaceDir
	}
	cmd.Env = filterEnv(os.Environ())

	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	outStr := truncateOutput(trimmed, maxCommandOutputChars)

	result := map[string]interface{}{"output": outStr}
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %s: %s", timeout, outStr)
		}
		result["status"] = "error"
		result["error"] = err.Error()
		return result, nil
	}
	result["status"] = "success"
	if setEnv := parseSetEnvOutput(trimmed); setEnv != nil {
		result["set_env"] = setEnv
	}
	return result, nil
}

// parseSetEnvOutput lets a command hand values back into context.env by
// printing a single JSON object with a set_env (or env) key as its
// stdout, the same convention execute_browser_script uses for scripts
// that return an object.
func parseSetEnvOutput(output string) map[string]interface{} {
	if output == "" || output[0] != '{' {
		return nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return nil
	}
	if se, ok := parsed["set_env"].(map[string]interface{}); ok {
		return se
	}
	if se, ok := parsed["env"].(map[string]interface{}); ok {
		return se
	}
	return nil
}

// truncateOutput bounds command output, reusing the shared rune-safe
// truncation helper and appending the total length so callers can tell a
// truncated result from a short one.
func truncateOutput(s string, maxRunes int) string {
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	return util.TruncateRunes(s, maxRunes) + fmt.Sprintf(" (output truncated, %d characters total)", total)
}

var sensitiveEnvSuffixes = []string{
	"_KEY", "_SECRET", "_TOKEN", "_PASSWORD", "_PASSWD", "_PASSPHRASE", "_CREDENTIALS", "_AUTH", "_DSN",
}

func filterEnv(env []string) []string {
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		name, _, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		upper := strings.ToUpper(name)
		sensitive := false
		for _, suffix := range sensitiveEnvSuffixes {
			if strings.HasSuffix(upper, suffix) {
				sensitive = true
				break
			}
		}
		if !sensitive {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
