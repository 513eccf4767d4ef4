// Package substitution implements recursive {{path}} variable
// substitution over arbitrary JSON-shaped values.
package substitution

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Substitute recursively walks value (as produced by encoding/json
// Unmarshal into interface{}: map[string]interface{}, []interface{},
// string, float64, bool, nil) replacing {{path}} placeholders resolved
// against ctx.
//
// A string that is *exactly* one placeholder is replaced by the resolved
// value itself, preserving its JSON type. A string with a placeholder
// embedded in other text has each placeholder stringified in place.
// Unresolved placeholders are left verbatim.
func Substitute(value interface{}, ctx map[string]interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return substituteString(v, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = Substitute(val, ctx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = Substitute(val, ctx)
		}
		return out
	default:
		return v
	}
}

func substituteString(s string, ctx map[string]interface{}) interface{} {
	if m := wholeStringPlaceholder(s); m != "" {
		resolved, ok := lookup(m, ctx)
		if ok {
			return resolved
		}
		return s
	}

	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		path = strings.TrimSpace(path)
		resolved, ok := lookup(path, ctx)
		if !ok {
			return match
		}
		return stringify(resolved)
	})
}

// wholeStringPlaceholder returns the path if s is exactly "{{path}}" with
// no surrounding text, else "".
func wholeStringPlaceholder(s string) string {
	loc := placeholderRe.FindStringIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "{{"), "}}"))
}

func lookup(path string, ctx map[string]interface{}) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = ctx
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
