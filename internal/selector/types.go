// Package selector implements the string-encoded query DSL used to locate
// elements in an accessibility tree: parsing into an AST and evaluating
// that AST against a uitree.Node scope.
package selector

import "fmt"

// Kind tags the variant a Selector holds.
type Kind int

const (
	KindRole Kind = iota
	KindID
	KindName
	KindText
	KindPath
	KindNativeID
	KindClassName
	KindVisible
	KindLocalizedRole
	KindAttributes
	KindNth
	KindParent
	KindInvalid

	KindRightOf
	KindLeftOf
	KindAbove
	KindBelow
	KindNear

	KindHas

	KindChain
	KindAnd
	KindOr
	KindNot

	KindFilter
)

// Selector is the AST produced by Parse. Only the fields relevant to Kind
// are populated; the zero value of the others is ignored.
type Selector struct {
	Kind Kind

	// Atomic payloads.
	Role       string
	Name       *string // nil means "no name constraint"
	Str        string  // ID / Name / Text / Path / NativeId / ClassName / LocalizedRole / Filter
	Bool       bool    // Visible
	Attrs      map[string]string
	N          int // Nth
	Reason     string

	// Unary/n-ary payloads.
	Inner    *Selector   // spatial, Has, Not
	Children []*Selector // Chain, And, Or
}

func (s *Selector) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.Kind {
	case KindRole:
		if s.Name != nil {
			return fmt.Sprintf("Role{role:%q,name:%q}", s.Role, *s.Name)
		}
		return fmt.Sprintf("Role{role:%q,name:None}", s.Role)
	case KindID:
		return fmt.Sprintf("Id(%q)", s.Str)
	case KindName:
		return fmt.Sprintf("Name(%q)", s.Str)
	case KindText:
		return fmt.Sprintf("Text(%q)", s.Str)
	case KindPath:
		return fmt.Sprintf("Path(%q)", s.Str)
	case KindNativeID:
		return fmt.Sprintf("NativeId(%q)", s.Str)
	case KindClassName:
		return fmt.Sprintf("ClassName(%q)", s.Str)
	case KindVisible:
		return fmt.Sprintf("Visible(%v)", s.Bool)
	case KindLocalizedRole:
		return fmt.Sprintf("LocalizedRole(%q)", s.Str)
	case KindAttributes:
		return fmt.Sprintf("Attributes(%v)", s.Attrs)
	case KindNth:
		return fmt.Sprintf("Nth(%d)", s.N)
	case KindParent:
		return "Parent"
	case KindInvalid:
		return fmt.Sprintf("Invalid(%q)", s.Reason)
	case KindRightOf:
		return fmt.Sprintf("RightOf(%s)", s.Inner)
	case KindLeftOf:
		return fmt.Sprintf("LeftOf(%s)", s.Inner)
	case KindAbove:
		return fmt.Sprintf("Above(%s)", s.Inner)
	case KindBelow:
		return fmt.Sprintf("Below(%s)", s.Inner)
	case KindNear:
		return fmt.Sprintf("Near(%s)", s.Inner)
	case KindHas:
		return fmt.Sprintf("Has(%s)", s.Inner)
	case KindChain:
		return fmt.Sprintf("Chain(%v)", s.Children)
	case KindAnd:
		return fmt.Sprintf("And(%v)", s.Children)
	case KindOr:
		return fmt.Sprintf("Or(%v)", s.Children)
	case KindNot:
		return fmt.Sprintf("Not(%s)", s.Inner)
	case KindFilter:
		return fmt.Sprintf("Filter(%q)", s.Str)
	default:
		return "<unknown>"
	}
}

// IsInvalid reports whether s is an Invalid leaf.
func (s *Selector) IsInvalid() bool { return s != nil && s.Kind == KindInvalid }

func role(r string, name *string) *Selector { return &Selector{Kind: KindRole, Role: r, Name: name} }
func invalid(reason string) *Selector       { return &Selector{Kind: KindInvalid, Reason: reason} }
func str(k Kind, s string) *Selector        { return &Selector{Kind: k, Str: s} }
