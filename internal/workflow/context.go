package workflow

import (
	"encoding/json"
	"fmt"
)

// ValidationError is a fatal, up-front error: variable schema mismatch,
// malformed selectors payload, or a missing required variable. The
// sequence never executes a single step when this is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BuildContext constructs the execution context in the exact order the
// spec requires: variable defaults, then user inputs overlaid on top,
// then selectors attached, then an empty env bag.
func BuildContext(args ExecuteSequenceArgs) (map[string]interface{}, error) {
	ctx := map[string]interface{}{}

	for name, schema := range args.Variables {
		if schema.Default != nil {
			ctx[name] = schema.Default
		}
	}

	for name, schema := range args.Variables {
		val, present := args.Inputs[name]
		if !present {
			if schema.IsRequired() && schema.Default == nil {
				return nil, &ValidationError{Message: fmt.Sprintf("missing required variable '%s'", name)}
			}
			continue
		}
		if err := validateType(name, schema, val); err != nil {
			return nil, err
		}
		ctx[name] = val
	}
	// Inputs not declared in the schema still pass through (schema is a
	// contract for required/typed variables, not an allowlist).
	for name, val := range args.Inputs {
		if _, declared := args.Variables[name]; !declared {
			ctx[name] = val
		}
	}

	if len(args.Selectors) > 0 {
		selectors, err := parseSelectors(args.Selectors)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid selectors: %v", err)}
		}
		ctx["selectors"] = selectors
	}

	ctx["env"] = map[string]interface{}{}
	return ctx, nil
}

func parseSelectors(raw json.RawMessage) (interface{}, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		var nested interface{}
		if err := json.Unmarshal([]byte(asString), &nested); err != nil {
			return nil, err
		}
		return nested, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func validateType(name string, schema VariableSchema, val interface{}) error {
	switch schema.Type {
	case VarString:
		if _, ok := val.(string); !ok {
			return &ValidationError{Message: fmt.Sprintf("variable '%s' must be a string", name)}
		}
	case VarNumber:
		if _, ok := val.(float64); !ok {
			return &ValidationError{Message: fmt.Sprintf("variable '%s' must be a number", name)}
		}
	case VarBoolean:
		if _, ok := val.(bool); !ok {
			return &ValidationError{Message: fmt.Sprintf("variable '%s' must be a boolean", name)}
		}
	case VarEnum:
		for _, opt := range schema.Options {
			if fmt.Sprintf("%v", opt) == fmt.Sprintf("%v", val) {
				return nil
			}
		}
		return &ValidationError{Message: fmt.Sprintf("variable '%s' must be one of %v", name, schema.Options)}
	case VarArray:
		if _, ok := val.([]interface{}); !ok {
			return &ValidationError{Message: fmt.Sprintf("variable '%s' must be an array", name)}
		}
	case VarObject:
		if _, ok := val.(map[string]interface{}); !ok {
			return &ValidationError{Message: fmt.Sprintf("variable '%s' must be an object", name)}
		}
	}
	return nil
}
