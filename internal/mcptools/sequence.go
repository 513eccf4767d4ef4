package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terminator-mcp/terminator-mcp-go/internal/workflow"
)

// executeSequence resolves a (possibly remote) step sequence and runs it
// through the shared workflow.Executor, which calls back into this same
// Surface's Dispatch for each step's tool. A sequence step named
// "execute_sequence" is therefore allowed to recurse. The bounded-loop
// guard in workflow.Executor.Run (n*10 iterations) limits each
// sequence's own step loop only; the depth of nested execute_sequence
// calls is not limited.
func (s *Surface) executeSequence(ctx context.Context, raw json.RawMessage) (map[string]interface{}, error) {
	var args workflow.ExecuteSequenceArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	resolved, err := workflow.ResolveRemote(args)
	if err != nil {
		return nil, err
	}

	summary, err := s.executor.Run(ctx, resolved)
	if err != nil {
		return nil, err
	}

	if resolved.OutputParser != nil {
		env, _ := summary.DebugInfoOnFailure["env"].(map[string]interface{})
		parsed, parserErr := runOutputParser(ctx, *resolved.OutputParser, summary, env)
		if parserErr != "" {
			summary.ParserError = parserErr
		} else {
			summary.ParsedOutput = parsed
		}
	}

	out, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, err
	}
	return result, nil
}
