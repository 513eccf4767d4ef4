package mcptools

import (
	"context"
	"os/exec"
)

// newProcessCmd launches path directly (no shell interpretation), unlike
// newShellCmd which is used for run_command's free-form shell strings.
func newProcessCmd(ctx context.Context, path string, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, path, args...)
}
