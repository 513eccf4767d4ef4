package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse turns a user-supplied selector string into a Selector AST. It
// never fails: syntactic problems are reported as a Selector with
// Kind == KindInvalid carrying a human-readable Reason.
func Parse(input string) *Selector {
	s := strings.TrimSpace(input)
	if s == "" {
		return invalid("Unknown selector format: (empty)")
	}

	if parts := strings.Split(s, ">>"); len(parts) > 1 {
		children := make([]*Selector, 0, len(parts))
		for _, p := range parts {
			child := Parse(strings.TrimSpace(p))
			if child.Kind == KindChain {
				children = append(children, child.Children...)
			} else {
				children = append(children, child)
			}
		}
		return &Selector{Kind: KindChain, Children: children}
	}

	tokens := tokenize(s)
	if len(tokens) == 1 && tokens[0].kind == tokLiteral && tokens[0].lit == s {
		return parseAtomic(s)
	}
	if len(tokens) == 0 {
		return invalid("Unknown selector format: (empty)")
	}
	return shuntingYard(tokens)
}

func precedence(k tokenKind) int {
	switch k {
	case tokNot:
		return 3
	case tokAnd:
		return 2
	case tokOr:
		return 1
	default:
		return 0
	}
}

func combine(opKind tokenKind, a, b *Selector) *Selector {
	kind := KindOr
	if opKind == tokAnd {
		kind = KindAnd
	}
	var children []*Selector
	if a.Kind == kind {
		children = append(children, a.Children...)
	} else {
		children = append(children, a)
	}
	if b.Kind == kind {
		children = append(children, b.Children...)
	} else {
		children = append(children, b)
	}
	return &Selector{Kind: kind, Children: children}
}

func shuntingYard(tokens []token) *Selector {
	var output []*Selector
	var ops []token

	applyTop := func() bool {
		if len(ops) == 0 {
			return false
		}
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		switch op.kind {
		case tokNot:
			if len(output) < 1 {
				return false
			}
			a := output[len(output)-1]
			output = output[:len(output)-1]
			output = append(output, &Selector{Kind: KindNot, Inner: a})
		case tokAnd, tokOr:
			if len(output) < 2 {
				return false
			}
			b := output[len(output)-1]
			a := output[len(output)-2]
			output = output[:len(output)-2]
			output = append(output, combine(op.kind, a, b))
		}
		return true
	}

	for _, t := range tokens {
		switch t.kind {
		case tokLiteral:
			output = append(output, Parse(t.lit))
		case tokLParen:
			ops = append(ops, t)
		case tokRParen:
			for len(ops) > 0 && ops[len(ops)-1].kind != tokLParen {
				if !applyTop() {
					return invalid("Mismatched parentheses")
				}
			}
			if len(ops) == 0 {
				return invalid("Mismatched parentheses")
			}
			ops = ops[:len(ops)-1] // discard LParen
		case tokNot:
			ops = append(ops, t)
		case tokAnd, tokOr:
			for len(ops) > 0 && ops[len(ops)-1].kind != tokLParen && precedence(ops[len(ops)-1].kind) >= precedence(t.kind) {
				if !applyTop() {
					return invalid("Malformed selector expression")
				}
			}
			ops = append(ops, t)
		}
	}

	for len(ops) > 0 {
		if ops[len(ops)-1].kind == tokLParen {
			return invalid("Mismatched parentheses")
		}
		if !applyTop() {
			return invalid("Malformed selector expression")
		}
	}

	if len(output) != 1 {
		return invalid("Malformed selector expression")
	}
	return output[0]
}

var bareRoleKeywords = []string{
	"app", "application", "window", "button", "checkbox", "menu",
	"menuitem", "menubar", "textfield", "input",
}

type spatialPrefix struct {
	prefix string
	kind   Kind
}

var spatialPrefixes = []spatialPrefix{
	{"rightof:", KindRightOf},
	{"leftof:", KindLeftOf},
	{"above:", KindAbove},
	{"below:", KindBelow},
	{"near:", KindNear},
}

func stripPrefixCI(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):]
	}
	return s
}

func stripAnyPrefixCI(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return s[len(p):]
		}
	}
	return s
}

func parseRoleRest(rest string) *Selector {
	if idx := strings.Index(rest, ":"); idx >= 0 {
		name := rest[idx+1:]
		return role(rest[:idx], &name)
	}
	return role(rest, nil)
}

// parseAtomic parses a single, operator-free selector literal.
func parseAtomic(raw string) *Selector {
	s := strings.TrimSpace(raw)
	if s == "" {
		return invalid("Unknown selector format: (empty)")
	}
	lower := strings.ToLower(s)

	// Legacy single-pipe form: "role|name". Rejected if the string
	// contains any "||" or more than one "|".
	if strings.Count(s, "|") == 1 && !strings.Contains(s, "||") {
		parts := strings.SplitN(s, "|", 2)
		left := strings.TrimSpace(stripPrefixCI(parts[0], "role:"))
		right := strings.TrimSpace(stripAnyPrefixCI(parts[1], "name:", "contains:"))
		if right == "" {
			return role(left, nil)
		}
		return role(left, &right)
	}

	if strings.HasPrefix(lower, "role:") {
		return parseRoleRest(s[len("role:"):])
	}

	for _, kw := range bareRoleKeywords {
		if lower == kw {
			return role(s, nil)
		}
		if strings.HasPrefix(lower, kw+":") {
			name := s[len(kw)+1:]
			return role(kw, &name)
		}
	}

	if strings.HasPrefix(s, "AX") {
		return role(s, nil)
	}

	if strings.HasPrefix(lower, "name:") {
		return str(KindName, s[len("name:"):])
	}

	if strings.HasPrefix(lower, "classname:") {
		return str(KindClassName, s[len("classname:"):])
	}

	if strings.HasPrefix(lower, "nativeid:") {
		return str(KindNativeID, strings.TrimSpace(s[len("nativeid:"):]))
	}

	if strings.HasPrefix(lower, "visible:") {
		v := strings.TrimSpace(s[len("visible:"):])
		return &Selector{Kind: KindVisible, Bool: strings.EqualFold(v, "true")}
	}

	if strings.HasPrefix(lower, "attr:") {
		rest := s[len("attr:"):]
		if k, v, ok := strings.Cut(rest, "="); ok {
			return &Selector{Kind: KindAttributes, Attrs: map[string]string{k: v}}
		}
		return &Selector{Kind: KindAttributes, Attrs: map[string]string{rest: "true"}}
	}

	for _, sp := range spatialPrefixes {
		if strings.HasPrefix(lower, sp.prefix) {
			inner := Parse(s[len(sp.prefix):])
			return &Selector{Kind: sp.kind, Inner: inner}
		}
	}

	if strings.HasPrefix(lower, "has:") {
		inner := Parse(s[len("has:"):])
		return &Selector{Kind: KindHas, Inner: inner}
	}

	if strings.HasPrefix(lower, "nth:") || strings.HasPrefix(lower, "nth=") {
		numStr := strings.TrimSpace(s[4:])
		n, err := strconv.Atoi(numStr)
		if err != nil {
			return invalid(fmt.Sprintf("Invalid nth index: %s", numStr))
		}
		return &Selector{Kind: KindNth, N: n}
	}

	if strings.HasPrefix(lower, "id:") {
		return str(KindID, s[len("id:"):])
	}

	if strings.HasPrefix(lower, "text:") {
		return str(KindText, s[len("text:"):])
	}

	if idx := strings.Index(s, ":"); idx >= 0 {
		name := s[idx+1:]
		return role(s[:idx], &name)
	}

	if strings.HasPrefix(s, "#") {
		return str(KindID, s[1:])
	}

	if strings.HasPrefix(s, "/") {
		return str(KindPath, s)
	}

	if s == ".." || lower == "parent" {
		return &Selector{Kind: KindParent}
	}

	return invalid(fmt.Sprintf(
		"Unknown selector format: %q (expected one of role:, name:, id:, text:, nativeid:, classname:, visible:, attr:, rightof:, leftof:, above:, below:, near:, has:, nth:, #id, /path, ..)",
		s))
}
