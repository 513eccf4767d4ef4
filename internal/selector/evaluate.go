package selector

import (
	"fmt"
	"math"
	"strings"

	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
)

// BadSelectorError is returned when evaluation encounters a nil selector
// or an Invalid one, whether at the top level or nested inside a
// composite.
type BadSelectorError struct {
	Reason string
}

func (e *BadSelectorError) Error() string { return fmt.Sprintf("bad selector: %s", e.Reason) }

// Evaluate walks scope's descendants (and scope itself) and returns every
// element matching sel, in a deterministic order.
func Evaluate(sel *Selector, scope uitree.Node) ([]uitree.Node, error) {
	if sel == nil {
		return nil, &BadSelectorError{Reason: "nil selector"}
	}
	if sel.IsInvalid() {
		return nil, &BadSelectorError{Reason: sel.Reason}
	}
	return evalNode(sel, []uitree.Node{scope})
}

func evalNode(sel *Selector, candidates []uitree.Node) ([]uitree.Node, error) {
	switch sel.Kind {
	case KindChain:
		cur := candidates
		for _, stage := range sel.Children {
			var next []uitree.Node
			for _, c := range cur {
				sub := allDescendantsIncludingSelf(c)
				matched, err := evalNode(stage, sub)
				if err != nil {
					return nil, err
				}
				next = append(next, matched...)
			}
			cur = dedupe(next)
		}
		return cur, nil

	case KindAnd:
		cur := candidates
		for _, child := range sel.Children {
			set, err := evalNode(child, cur)
			if err != nil {
				return nil, err
			}
			cur = intersect(cur, set)
		}
		return cur, nil

	case KindOr:
		var out []uitree.Node
		for _, child := range sel.Children {
			set, err := evalNode(child, candidates)
			if err != nil {
				return nil, err
			}
			out = append(out, set...)
		}
		return dedupe(out), nil

	case KindNot:
		set, err := evalNode(sel.Inner, candidates)
		if err != nil {
			return nil, err
		}
		excluded := map[uitree.Node]bool{}
		for _, n := range set {
			excluded[n] = true
		}
		var out []uitree.Node
		for _, c := range candidates {
			if !excluded[c] {
				out = append(out, c)
			}
		}
		return out, nil

	case KindHas:
		var out []uitree.Node
		for _, c := range candidates {
			desc := allDescendants(c)
			matched, err := evalNode(sel.Inner, desc)
			if err != nil {
				return nil, err
			}
			if len(matched) > 0 {
				out = append(out, c)
			}
		}
		return out, nil

	case KindParent:
		var out []uitree.Node
		for _, c := range candidates {
			if p, ok := c.Parent(); ok {
				out = append(out, p)
			}
		}
		return dedupe(out), nil

	case KindNth:
		all := candidates
		idx := sel.N
		if idx < 0 {
			idx = len(all) + idx
		}
		if idx < 0 || idx >= len(all) {
			return nil, nil
		}
		return []uitree.Node{all[idx]}, nil

	case KindRightOf, KindLeftOf, KindAbove, KindBelow, KindNear:
		anchors, err := evalNode(sel.Inner, candidates)
		if err != nil {
			return nil, err
		}
		return spatialFilter(sel.Kind, anchors, candidates), nil

	default:
		if sel.Kind == KindInvalid {
			return nil, &BadSelectorError{Reason: sel.Reason}
		}
		return matchAtomic(sel, candidates), nil
	}
}

func matchAtomic(sel *Selector, candidates []uitree.Node) []uitree.Node {
	var out []uitree.Node
	for _, n := range allDescendantsFromSet(candidates) {
		if matchesAtom(sel, n) {
			out = append(out, n)
		}
	}
	return dedupe(out)
}

// allDescendantsFromSet expands each candidate to itself + every
// descendant, since atomic predicates search the whole subtree rooted at
// each candidate (candidates start as the scope on the first stage).
func allDescendantsFromSet(candidates []uitree.Node) []uitree.Node {
	var out []uitree.Node
	for _, c := range candidates {
		out = append(out, allDescendantsIncludingSelf(c)...)
	}
	return out
}

func allDescendantsIncludingSelf(n uitree.Node) []uitree.Node {
	out := []uitree.Node{n}
	return append(out, allDescendants(n)...)
}

func allDescendants(n uitree.Node) []uitree.Node {
	var out []uitree.Node
	for _, c := range n.Children() {
		out = append(out, c)
		out = append(out, allDescendants(c)...)
	}
	return out
}

func matchesAtom(sel *Selector, n uitree.Node) bool {
	switch sel.Kind {
	case KindRole:
		if n.Role() != sel.Role {
			return false
		}
		if sel.Name == nil {
			return true
		}
		return matchName(*sel.Name, n.Name())
	case KindID:
		return n.NativeID() == sel.Str
	case KindName:
		return matchName(sel.Str, n.Name())
	case KindText:
		return strings.Contains(n.Text(), sel.Str)
	case KindPath:
		return false // path-based lookups are resolved by the platform provider, not this evaluator
	case KindNativeID:
		return n.NativeID() == sel.Str
	case KindClassName:
		return strings.EqualFold(n.ClassName(), sel.Str)
	case KindVisible:
		return n.Visible() == sel.Bool
	case KindLocalizedRole:
		return n.LocalizedRole() == sel.Str
	case KindAttributes:
		attrs := n.Attributes()
		for k, v := range sel.Attrs {
			if attrs[k] != v {
				return false
			}
		}
		return true
	case KindFilter:
		return false // opaque filters are resolved by the caller that registered them
	default:
		return false
	}
}

func matchName(want, got string) bool {
	if rest, ok := strings.CutPrefix(want, "contains:"); ok {
		return strings.Contains(got, rest)
	}
	return got == want
}

func intersect(a, b []uitree.Node) []uitree.Node {
	set := map[uitree.Node]bool{}
	for _, n := range b {
		set[n] = true
	}
	var out []uitree.Node
	for _, n := range a {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}

func dedupe(in []uitree.Node) []uitree.Node {
	seen := map[uitree.Node]bool{}
	var out []uitree.Node
	for _, n := range in {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func center(r uitree.Rect) (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func dist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return math.Sqrt(dx*dx + dy*dy)
}

// spatialFilter keeps candidates positioned relative to any anchor
// according to kind, breaking ties by center-to-center distance (Near
// uses a radius proportional to the anchor's larger dimension).
func spatialFilter(kind Kind, anchors, candidates []uitree.Node) []uitree.Node {
	var out []uitree.Node
	for _, anchor := range anchors {
		ab := anchor.Bounds()
		ax, ay := center(ab)
		var best uitree.Node
		bestDist := math.MaxFloat64
		radius := math.Max(ab.Width, ab.Height)
		for _, c := range candidates {
			if c == anchor {
				continue
			}
			cb := c.Bounds()
			cx, cy := center(cb)
			ok := false
			switch kind {
			case KindRightOf:
				ok = cx > ax
			case KindLeftOf:
				ok = cx < ax
			case KindAbove:
				ok = cy < ay
			case KindBelow:
				ok = cy > ay
			case KindNear:
				ok = dist(ax, ay, cx, cy) <= radius
			}
			if !ok {
				continue
			}
			d := dist(ax, ay, cx, cy)
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		if best != nil {
			out = append(out, best)
		}
	}
	return dedupe(out)
}
