package mcptools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/terminator-mcp/terminator-mcp-go/internal/substitution"
	"github.com/terminator-mcp/terminator-mcp-go/internal/workflow"
)

const outputParserTimeout = 10 * time.Second

// runOutputParser feeds summary's JSON encoding to def's command on stdin
// and splices its stdout, parsed as JSON, into parsed_output. A parse or
// exec failure sets parser_error and leaves summary otherwise intact, per
// the output parser's specified failure mode.
func runOutputParser(ctx context.Context, def workflow.OutputParserDef, summary workflow.Summary, execEnv map[string]interface{}) (parsed interface{}, parserError string) {
	args := substitution.Substitute(def.Arguments, map[string]interface{}{"env": execEnv}).(map[string]interface{})
	command, _ := args["command"].(string)
	if command == "" {
		command = def.ToolName
	}
	if strings.TrimSpace(command) == "" {
		return nil, "output parser has no command"
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Sprintf("failed to encode summary: %v", err)
	}

	cctx, cancel := context.WithTimeout(ctx, outputParserTimeout)
	defer cancel()

	cmd := newShellCmd(cctx, command)
	cmd.Stdin = bytes.NewReader(summaryJSON)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Sprintf("output parser command failed: %v: %s", err, truncateOutput(stderr.String(), maxCommandOutputChars))
	}

	var result interface{}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Sprintf("output parser produced non-JSON output: %v", err)
	}
	return result, ""
}
