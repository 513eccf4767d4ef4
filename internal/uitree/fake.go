package uitree

// FakeNode is an in-memory Node used by tests and by hosts that have not
// wired a real accessibility provider yet. It also implements Actuator,
// appending every action performed to Actions so tests can assert on it.
type FakeNode struct {
	RoleVal          string
	LocalizedRoleVal string
	NameVal          string
	ClassNameVal     string
	NativeIDVal      string
	TextVal          string
	AttributesVal    map[string]string
	BoundsVal        Rect
	VisibleVal       bool
	ParentNode       *FakeNode
	ChildNodes       []*FakeNode

	Actions   []string
	ValueSet  string
	FailWith  error
}

func NewFakeNode(role, name string) *FakeNode {
	return &FakeNode{
		RoleVal:       role,
		NameVal:       name,
		AttributesVal: map[string]string{},
		VisibleVal:    true,
	}
}

func (n *FakeNode) AddChild(c *FakeNode) *FakeNode {
	c.ParentNode = n
	n.ChildNodes = append(n.ChildNodes, c)
	return n
}

func (n *FakeNode) Role() string                  { return n.RoleVal }
func (n *FakeNode) LocalizedRole() string         { return n.LocalizedRoleVal }
func (n *FakeNode) Name() string                  { return n.NameVal }
func (n *FakeNode) ClassName() string             { return n.ClassNameVal }
func (n *FakeNode) NativeID() string              { return n.NativeIDVal }
func (n *FakeNode) Text() string                  { return n.TextVal }
func (n *FakeNode) Attributes() map[string]string { return n.AttributesVal }
func (n *FakeNode) Bounds() Rect                  { return n.BoundsVal }
func (n *FakeNode) Visible() bool                 { return n.VisibleVal }

func (n *FakeNode) Parent() (Node, bool) {
	if n.ParentNode == nil {
		return nil, false
	}
	return n.ParentNode, true
}

func (n *FakeNode) Children() []Node {
	out := make([]Node, len(n.ChildNodes))
	for i, c := range n.ChildNodes {
		out[i] = c
	}
	return out
}

func (n *FakeNode) record(action string) error {
	n.Actions = append(n.Actions, action)
	return n.FailWith
}

func (n *FakeNode) Click() error  { return n.record("click") }
func (n *FakeNode) Focus() error  { return n.record("focus") }
func (n *FakeNode) Invoke() error { return n.record("invoke") }

func (n *FakeNode) TypeText(text string, useClipboard bool) error {
	n.TextVal = text
	return n.record("type_text")
}

func (n *FakeNode) PressKey(key string) error { return n.record("press_key:" + key) }

func (n *FakeNode) SetValue(value string) error {
	n.ValueSet = value
	return n.record("set_value")
}

func (n *FakeNode) Scroll(direction string, amount float64) error {
	return n.record("scroll:" + direction)
}

func (n *FakeNode) ActivateWindow() error { return n.record("activate_window") }
