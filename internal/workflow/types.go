// Package workflow implements the declarative step-sequence execution
// engine: variable schemas, execution context construction, retries,
// fallback jumps, env merging, and the output parser hand-off.
package workflow

import (
	"encoding/json"

	"github.com/terminator-mcp/terminator-mcp-go/internal/duration"
)

// VariableType is one of the schema types a workflow variable declares.
type VariableType string

const (
	VarString  VariableType = "string"
	VarNumber  VariableType = "number"
	VarBoolean VariableType = "boolean"
	VarEnum    VariableType = "enum"
	VarArray   VariableType = "array"
	VarObject  VariableType = "object"
)

// VariableSchema describes one entry of a workflow document's top-level
// `variables` map.
type VariableSchema struct {
	Type     VariableType  `json:"type" yaml:"type"`
	Default  interface{}   `json:"default,omitempty" yaml:"default,omitempty"`
	Required *bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Options  []interface{} `json:"options,omitempty" yaml:"options,omitempty"`
	Label    string        `json:"label,omitempty" yaml:"label,omitempty"`
}

// IsRequired defaults to true when unset, matching the original's
// required.unwrap_or(true) behavior: a variable schema entry with no
// default and no explicit `required: false` must be supplied by the
// caller.
func (v VariableSchema) IsRequired() bool {
	if v.Required == nil {
		return true
	}
	return *v.Required
}

// OutputParserDef describes the script/command that post-processes a
// sequence's summary.
type OutputParserDef struct {
	ToolName  string                 `json:"tool_name" yaml:"tool_name"`
	Arguments map[string]interface{} `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Step is one entry of a workflow's `steps` list. Exactly one of
// ToolName/GroupName is set.
type Step struct {
	ID        string                 `json:"id,omitempty" yaml:"id,omitempty"`
	ToolName  string                 `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	GroupName string                 `json:"group_name,omitempty" yaml:"group_name,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty" yaml:"arguments,omitempty"`

	If              string          `json:"if,omitempty" yaml:"if,omitempty"`
	Retries         int             `json:"retries,omitempty" yaml:"retries,omitempty"`
	FallbackID      string          `json:"fallback_id,omitempty" yaml:"fallback_id,omitempty"`
	DelayMs         duration.Millis `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
	ContinueOnError bool            `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`

	// Group-only fields.
	Steps     []Step `json:"steps,omitempty" yaml:"steps,omitempty"`
	Skippable bool   `json:"skippable,omitempty" yaml:"skippable,omitempty"`
}

// IsGroup reports whether this step is a group rather than a tool call.
func (s Step) IsGroup() bool { return s.GroupName != "" }

// ExecuteSequenceArgs is the execute_sequence tool's argument shape.
type ExecuteSequenceArgs struct {
	URL                    string                    `json:"url,omitempty" yaml:"url,omitempty"`
	Steps                  []Step                    `json:"steps,omitempty" yaml:"steps,omitempty"`
	Inputs                 map[string]interface{}    `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Variables              map[string]VariableSchema `json:"variables,omitempty" yaml:"variables,omitempty"`
	Selectors              json.RawMessage           `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	StopOnError            *bool                     `json:"stop_on_error,omitempty" yaml:"stop_on_error,omitempty"`
	IncludeDetailedResults *bool                     `json:"include_detailed_results,omitempty" yaml:"include_detailed_results,omitempty"`
	OutputParser           *OutputParserDef          `json:"output_parser,omitempty" yaml:"output_parser,omitempty"`
}

func (a ExecuteSequenceArgs) stopOnError() bool {
	if a.StopOnError == nil {
		return true
	}
	return *a.StopOnError
}

func (a ExecuteSequenceArgs) includeDetailedResults() bool {
	if a.IncludeDetailedResults == nil {
		return true
	}
	return *a.IncludeDetailedResults
}

// StepResult is the recorded outcome of one executed (or skipped) step.
type StepResult struct {
	ID       string                 `json:"id,omitempty"`
	Tool     string                 `json:"tool,omitempty"`
	Group    string                 `json:"group,omitempty"`
	Status   string                 `json:"status"` // success | error | skipped | partial_success
	Attempts int                    `json:"attempts,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Children []StepResult           `json:"children,omitempty"`
}

// Summary is the final response object of execute_sequence.
type Summary struct {
	Status             string                 `json:"status"`
	ExecutedTools      int                     `json:"executed_tools"`
	TotalDurationMs    int64                  `json:"total_duration_ms"`
	Steps              []StepResult           `json:"steps,omitempty"`
	ParsedOutput       interface{}            `json:"parsed_output,omitempty"`
	ParserError        string                 `json:"parser_error,omitempty"`
	DebugInfoOnFailure map[string]interface{} `json:"debug_info_on_failure,omitempty"`
}
