package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-mcp/terminator-mcp-go/internal/workflow"
)

func TestExecutor_AllStepsSucceed(t *testing.T) {
	calls := map[string]int{}
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			calls[tool]++
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{ID: "a", ToolName: "click_element"},
			{ID: "b", ToolName: "press_key"},
			{ID: "c", ToolName: "scroll_element"},
		},
	}
	summary, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "success", summary.Status)
	assert.Equal(t, 3, summary.ExecutedTools)
}

func TestExecutor_FallbackJumpSkipsMiddleStep(t *testing.T) {
	var order []string
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			order = append(order, tool)
			if tool == "a" {
				return workflow.ToolOutcome{Status: "error", Error: "boom"}, nil
			}
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{ID: "a", ToolName: "a", Retries: 0, FallbackID: "c"},
			{ID: "b", ToolName: "b"},
			{ID: "c", ToolName: "c"},
		},
	}
	_, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestExecutor_EnvMergeVisibleToLaterStep(t *testing.T) {
	var sawValue interface{}
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			if tool == "execute_browser_script" {
				return workflow.ToolOutcome{Status: "success", SetEnv: map[string]interface{}{"x": float64(42)}}, nil
			}
			sawValue = args["value"]
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{ID: "s1", ToolName: "execute_browser_script"},
			{ID: "s2", ToolName: "use", Arguments: map[string]interface{}{"value": "{{env.x}}"}},
		},
	}
	_, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, float64(42), sawValue)
}

// TestExecutor_EnvMergeOnlyForEnvProducingTools confirms SetEnv from an
// ordinary tool is dropped, matching the original's tool_name_normalized
// gate (execute_browser_script/run_command only).
func TestExecutor_EnvMergeOnlyForEnvProducingTools(t *testing.T) {
	var sawValue interface{}
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			if tool == "click_element" {
				return workflow.ToolOutcome{Status: "success", SetEnv: map[string]interface{}{"x": float64(42)}}, nil
			}
			sawValue = args["value"]
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{ID: "s1", ToolName: "click_element"},
			{ID: "s2", ToolName: "use", Arguments: map[string]interface{}{"value": "{{env.x}}"}},
		},
	}
	_, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	// env.x was never set, so the placeholder stays unresolved verbatim.
	assert.Equal(t, "{{env.x}}", sawValue)
}

func TestExecutor_RetriesBoundAttempts(t *testing.T) {
	attempts := 0
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			attempts++
			return workflow.ToolOutcome{Status: "error", Error: "nope"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{{ID: "a", ToolName: "a", Retries: 2}},
	}
	_, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts) // k+1 executions for retries:k
}

func TestExecutor_RequiredVariableMissingAborts(t *testing.T) {
	required := true
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			t.Fatal("no step should execute when variable validation fails")
			return workflow.ToolOutcome{}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Variables: map[string]workflow.VariableSchema{
			"name": {Type: workflow.VarString, Required: &required},
		},
		Steps: []workflow.Step{{ID: "a", ToolName: "a"}},
	}
	_, err := exec.Run(context.Background(), args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestExecutor_NonSkippableGroupFailureSetsCriticalError(t *testing.T) {
	var order []string
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			order = append(order, tool)
			if tool == "fails" {
				return workflow.ToolOutcome{Status: "error", Error: "boom"}, nil
			}
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{
				ID:        "g1",
				GroupName: "setup",
				Skippable: false,
				Steps: []workflow.Step{
					{ID: "g1-1", ToolName: "fails"},
				},
			},
			{ID: "after", ToolName: "after"},
		},
	}
	summary, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "partial_success", summary.Status)
	require.Len(t, summary.Steps, 2)
	assert.Equal(t, "error", summary.Steps[0].Status)
	assert.Equal(t, "skipped", summary.Steps[1].Status)
}

func TestExecutor_SkippableGroupFailureDoesNotBlockSequence(t *testing.T) {
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			if tool == "fails" {
				return workflow.ToolOutcome{Status: "error", Error: "boom"}, nil
			}
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{
				ID:        "g1",
				GroupName: "setup",
				Skippable: true,
				Steps: []workflow.Step{
					{ID: "g1-1", ToolName: "fails"},
				},
			},
			{ID: "after", ToolName: "after"},
		},
	}
	summary, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, summary.Steps, 2)
	assert.Equal(t, "partial_success", summary.Steps[0].Status)
	assert.Equal(t, "success", summary.Steps[1].Status)
}

func TestExecutor_GroupFallbackIDJumpsOnFailure(t *testing.T) {
	var order []string
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			order = append(order, tool)
			if tool == "fails" {
				return workflow.ToolOutcome{Status: "error", Error: "boom"}, nil
			}
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{
				ID:         "g1",
				GroupName:  "setup",
				FallbackID: "recover",
				Steps: []workflow.Step{
					{ID: "g1-1", ToolName: "fails"},
				},
			},
			{ID: "skipped", ToolName: "skipped"},
			{ID: "recover", ToolName: "recover"},
		},
	}
	_, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, []string{"fails", "recover"}, order)
}

func TestExecutor_StopOnErrorFalseAllowsGroupFailureToContinue(t *testing.T) {
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			if tool == "fails" {
				return workflow.ToolOutcome{Status: "error", Error: "boom"}, nil
			}
			return workflow.ToolOutcome{Status: "success"}, nil
		},
	}
	stopOnError := false
	args := workflow.ExecuteSequenceArgs{
		StopOnError: &stopOnError,
		Steps: []workflow.Step{
			{
				ID:        "g1",
				GroupName: "setup",
				Skippable: false,
				Steps: []workflow.Step{
					{ID: "g1-1", ToolName: "fails"},
				},
			},
			{ID: "after", ToolName: "after"},
		},
	}
	summary, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, summary.Steps, 2)
	assert.Equal(t, "error", summary.Steps[0].Status)
	assert.Equal(t, "success", summary.Steps[1].Status)
}

func TestExecutor_BoundedLoopTerminates(t *testing.T) {
	exec := &workflow.Executor{
		Tools: func(ctx context.Context, tool string, args map[string]interface{}) (workflow.ToolOutcome, error) {
			return workflow.ToolOutcome{Status: "error"}, nil
		},
	}
	args := workflow.ExecuteSequenceArgs{
		Steps: []workflow.Step{
			{ID: "a", ToolName: "a", FallbackID: "a", Retries: 0},
		},
	}
	summary, err := exec.Run(context.Background(), args)
	require.NoError(t, err)
	assert.NotNil(t, summary)
}
