package mcpserver

import "encoding/json"

// standardSelectorProps are the fields every element-targeting tool
// accepts, per spec.md §4.9.
const standardSelectorProps = `
	"selector": {"type": "string", "description": "selector expression, e.g. role:Button && name:OK"},
	"timeout_ms": {"type": "integer", "description": "how long to poll for a match, in milliseconds"},
	"retries": {"type": "integer", "description": "additional resolution attempts after the first"},
	"fallback_selectors": {"type": "array", "items": {"type": "string"}, "description": "selectors tried in order if the primary misses"}
`

var toolDescriptions = map[string]string{
	"click_element":          "Click an element matched by selector.",
	"type_into_element":      "Type text into an element matched by selector.",
	"press_key":              "Press a key while an element matched by selector is focused.",
	"open_application":       "Launch an application by path.",
	"activate_element":       "Bring the window containing an element to the foreground.",
	"navigate_browser":       "Navigate the active browser tab to a URL.",
	"execute_browser_script": "Evaluate JavaScript in the active browser tab via the extension bridge.",
	"run_command":            "Run a shell command in the configured workspace directory.",
	"scroll_element":         "Scroll an element matched by selector.",
	"execute_sequence":       "Run a declarative sequence of tool-call steps with retries, fallback jumps, and variable substitution.",
}

var toolSchemas = map[string]json.RawMessage{
	"click_element": json.RawMessage(`{"type":"object","required":["selector"],"properties":{` + standardSelectorProps + `}}`),
	"activate_element": json.RawMessage(`{"type":"object","required":["selector"],"properties":{` + standardSelectorProps + `}}`),
	"scroll_element": json.RawMessage(`{"type":"object","required":["selector","direction"],"properties":{` + standardSelectorProps + `,
		"direction": {"type": "string", "enum": ["up", "down", "left", "right"]},
		"amount": {"type": "number"}
	}}`),
	"type_into_element": json.RawMessage(`{"type":"object","required":["selector","text"],"properties":{` + standardSelectorProps + `,
		"text": {"type": "string"},
		"use_clipboard": {"type": "boolean"}
	}}`),
	"press_key": json.RawMessage(`{"type":"object","required":["selector","key"],"properties":{` + standardSelectorProps + `,
		"key": {"type": "string", "description": "e.g. Enter, Tab, Escape"}
	}}`),
	"open_application": json.RawMessage(`{"type":"object","required":["path"],"properties":{
		"path": {"type": "string"},
		"args": {"type": "array", "items": {"type": "string"}}
	}}`),
	"navigate_browser": json.RawMessage(`{"type":"object","required":["url"],"properties":{
		"url": {"type": "string"}
	}}`),
	"execute_browser_script": json.RawMessage(`{"type":"object","required":["script"],"properties":{
		"script": {"type": "string"},
		"await_promise": {"type": "boolean"}
	}}`),
	"run_command": json.RawMessage(`{"type":"object","required":["command"],"properties":{
		"command": {"type": "string"},
		"timeout_ms": {"type": "integer"}
	}}`),
	"execute_sequence": json.RawMessage(`{"type":"object","properties":{
		"url": {"type": "string", "description": "fetch the sequence document from file:// or http(s)://"},
		"steps": {"type": "array", "items": {"type": "object"}},
		"inputs": {"type": "object"},
		"variables": {"type": "object"},
		"selectors": {"type": "object"},
		"stop_on_error": {"type": "boolean"},
		"include_detailed_results": {"type": "boolean"},
		"output_parser": {"type": "object"}
	}}`),
}
