package workflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/terminator-mcp/terminator-mcp-go/internal/expr"
	"github.com/terminator-mcp/terminator-mcp-go/internal/substitution"
)

// ToolOutcome is what a ToolExecutor reports back for one invocation.
type ToolOutcome struct {
	Status string // "success" | "error"
	Error  string
	Result map[string]interface{}
	SetEnv map[string]interface{} // merged into context.env on success of an env-producing tool (see isEnvProducingTool)
}

// ToolExecutor dispatches one tool call by name. Implementations wrap the
// MCP tool dispatch surface; this package has no dependency on it.
type ToolExecutor func(ctx context.Context, toolName string, args map[string]interface{}) (ToolOutcome, error)

const retryDelay = 500 * time.Millisecond

// Executor runs execute_sequence's step loop.
type Executor struct {
	Tools ToolExecutor
	// Notify, if set, is called for step begin/end progress events.
	Notify func(event string, payload map[string]interface{})
}

func (e *Executor) notify(event string, payload map[string]interface{}) {
	if e.Notify != nil {
		e.Notify(event, payload)
	}
}

// Run executes a fully-resolved (post ResolveRemote) sequence and returns
// its summary.
func (e *Executor) Run(ctx context.Context, args ExecuteSequenceArgs) (Summary, error) {
	start := time.Now()
	execCtx, err := BuildContext(args)
	if err != nil {
		return Summary{}, err
	}

	idToIndex := map[string]int{}
	for i, s := range args.Steps {
		if s.ID == "" {
			continue
		}
		if _, dup := idToIndex[s.ID]; dup {
			log.Printf("[Executor] duplicate step id %q, last definition wins", s.ID)
		}
		idToIndex[s.ID] = i
	}

	var results []StepResult
	executedTools := 0
	criticalErrorOccurred := false

	n := len(args.Steps)
	maxIterations := n * 10
	if maxIterations == 0 {
		maxIterations = 1
	}

	i := 0
	iterations := 0
	for i < n && iterations < maxIterations {
		iterations++
		step := args.Steps[i]

		isAlways := false
		if step.If != "" {
			_, isAlways = expr.Eval(step.If, nil)
		}

		if criticalErrorOccurred && !isAlways {
			results = append(results, StepResult{ID: step.ID, Tool: step.ToolName, Group: step.GroupName, Status: "skipped", Reason: "critical error occurred"})
			i++
			continue
		}

		if step.If != "" && !isAlways {
			ok, _ := expr.Eval(step.If, execCtx)
			if !ok {
				results = append(results, StepResult{ID: step.ID, Tool: step.ToolName, Group: step.GroupName, Status: "skipped", Reason: "if condition false"})
				i++
				continue
			}
		}

		e.notify("step_begin", map[string]interface{}{"index": i, "id": step.ID})

		var res StepResult
		var stepErr error
		if step.IsGroup() {
			res, stepErr = e.runGroup(ctx, step, execCtx)
		} else {
			res, stepErr = e.runTool(ctx, step, execCtx)
			executedTools++
		}

		e.notify("step_end", map[string]interface{}{"index": i, "id": step.ID, "status": res.Status})
		results = append(results, res)

		if stepErr != nil || res.Status == "error" {
			if step.FallbackID != "" {
				if target, ok := idToIndex[step.FallbackID]; ok {
					i = target
					continue
				}
				log.Printf("[Executor] fallback_id %q does not resolve to a known step, advancing", step.FallbackID)
			}
			if step.IsGroup() {
				// Matches the original's group-level gate: a non-skippable
				// group failure only escalates when stop_on_error is set.
				if !step.Skippable && args.stopOnError() {
					criticalErrorOccurred = true
				}
			} else if !step.ContinueOnError {
				criticalErrorOccurred = true
			}
		}
		i++
	}

	finalStatus := "success"
	if criticalErrorOccurred {
		finalStatus = "partial_success"
	} else {
		for _, r := range results {
			if r.Status == "error" {
				finalStatus = "completed_with_errors"
				break
			}
		}
	}

	summary := Summary{
		Status:          finalStatus,
		ExecutedTools:   executedTools,
		TotalDurationMs: time.Since(start).Milliseconds(),
	}
	if args.includeDetailedResults() {
		summary.Steps = results
	}
	if finalStatus != "success" {
		summary.DebugInfoOnFailure = map[string]interface{}{"env": execCtx["env"]}
	}

	return summary, nil
}

func (e *Executor) runTool(ctx context.Context, step Step, execCtx map[string]interface{}) (StepResult, error) {
	args := substitution.Substitute(step.Arguments, execCtx).(map[string]interface{})

	maxAttempts := step.Retries + 1
	var last ToolOutcome
	var lastErr error
	attemptsMade := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptsMade = attempt
		last, lastErr = e.Tools(ctx, step.ToolName, args)
		if lastErr == nil && last.Status == "success" {
			break
		}
		if step.DelayMs > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				goto done
			case <-time.After(time.Duration(step.DelayMs) * time.Millisecond):
			}
		}
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				goto done
			case <-time.After(retryDelay):
			}
		}
	}
done:
	res := StepResult{
		ID: step.ID, Tool: step.ToolName, Attempts: attemptsMade,
		Result: last.Result,
	}
	if lastErr != nil {
		res.Status = "error"
		res.Error = lastErr.Error()
		return res, lastErr
	}
	if last.Status != "success" {
		res.Status = "error"
		res.Error = last.Error
		return res, nil
	}
	res.Status = "success"
	// Only the tools that can run arbitrary engine/script code are allowed
	// to feed their output back into context.env; matching the original's
	// tool_name_normalized == "execute_browser_script" || "run_command" gate.
	if isEnvProducingTool(step.ToolName) {
		mergeEnv(execCtx, last.SetEnv)
		mergeEnv(execCtx, extractSetEnv(last.Result))
	}
	return res, nil
}

// isEnvProducingTool reports whether toolName is allowed to set context.env
// via set_env/env in its result, stripping the mcp_terminator-mcp-agent_
// prefix the original strips before comparing.
func isEnvProducingTool(toolName string) bool {
	normalized := strings.TrimPrefix(toolName, "mcp_terminator-mcp-agent_")
	return normalized == "execute_browser_script" || normalized == "run_command"
}

func (e *Executor) runGroup(ctx context.Context, step Step, execCtx map[string]interface{}) (StepResult, error) {
	res := StepResult{ID: step.ID, Group: step.GroupName, Status: "success"}
	anyError := false
	criticalChildError := false
	for _, child := range step.Steps {
		var childRes StepResult
		var err error
		if child.IsGroup() {
			childRes, err = e.runGroup(ctx, child, execCtx)
		} else {
			childRes, err = e.runTool(ctx, child, execCtx)
		}
		res.Children = append(res.Children, childRes)
		if err != nil || childRes.Status == "error" {
			anyError = true
			if !child.ContinueOnError {
				criticalChildError = true
				break
			}
		}
	}
	switch {
	case criticalChildError && !step.Skippable:
		// A non-skippable group propagates its failure as "error" so the
		// outer loop's fallback_id and critical-error gate can see it.
		res.Status = "error"
	case anyError:
		res.Status = "partial_success"
	}
	return res, nil
}

// extractSetEnv pulls set_env (or env) out of a tool result shaped like
// {content: [{result: {set_env: {...}}}]} or a top-level {set_env: {...}}.
func extractSetEnv(result map[string]interface{}) map[string]interface{} {
	if result == nil {
		return nil
	}
	if se, ok := asObject(result["set_env"]); ok {
		return se
	}
	if se, ok := asObject(result["env"]); ok {
		return se
	}
	content, ok := result["content"].([]interface{})
	if !ok {
		return nil
	}
	merged := map[string]interface{}{}
	for _, item := range content {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if inner, ok := asObject(itemMap["result"]); ok {
			if se, ok := asObject(inner["set_env"]); ok {
				for k, v := range se {
					merged[k] = v
				}
			}
			if se, ok := asObject(inner["env"]); ok {
				for k, v := range se {
					merged[k] = v
				}
			}
		}
		if se, ok := asObject(itemMap["set_env"]); ok {
			for k, v := range se {
				merged[k] = v
			}
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func mergeEnv(execCtx map[string]interface{}, setEnv map[string]interface{}) {
	if len(setEnv) == 0 {
		return
	}
	env, _ := execCtx["env"].(map[string]interface{})
	if env == nil {
		env = map[string]interface{}{}
	}
	for k, v := range setEnv {
		env[k] = v
	}
	execCtx["env"] = env
}
