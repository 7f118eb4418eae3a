// Package markup parses the component template language: HTML-like tags with
// attribute bindings and {{ }} interpolations.
package markup

import (
	"fmt"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindRoot is the enclosing document. It has no name or attributes, just children.
	KindRoot Kind = iota
	KindSelfClosingTag
	KindStartTag
	KindAttribute
	KindEndTag
	KindText
	// KindComment includes the enclosing <!-- and -->.
	KindComment
	// KindInterpolation includes the enclosing {{ and }}.
	KindInterpolation
)

var kindNames = [...]string{
	KindRoot:           "Root",
	KindSelfClosingTag: "SelfClosingTag",
	KindStartTag:       "StartTag",
	KindAttribute:      "Attribute",
	KindEndTag:         "EndTag",
	KindText:           "Text",
	KindComment:        "Comment",
	KindInterpolation:  "Interpolation",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsTag reports whether nodes of this kind carry a name, attributes and children.
func (k Kind) IsTag() bool {
	return k == KindStartTag || k == KindSelfClosingTag
}

// NodeID indexes Tree.Nodes.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Root is always the first node of a tree.
const Root NodeID = 0

// Node is one element of the template tree. Offsets are byte offsets into the
// template text; EndPos is exclusive.
type Node struct {
	Kind Kind
	// FullStartPos includes any leading whitespace.
	FullStartPos int
	StartPos     int
	EndPos       int
	// Parent is a non-owning back reference. NoNode for the root.
	Parent NodeID

	// Name is set for tags, end tags and attributes.
	Name string

	// Value and ValuePos are only meaningful for attributes with HasValue set.
	// ValuePos is the offset of the first value character (inside any quotes).
	Value    string
	HasValue bool
	ValuePos int

	Attributes []NodeID
	// Children of a start tag end with its matching EndTag when the tag is closed.
	Children []NodeID
}

// Error is a recoverable markup problem found while scanning. It is data,
// never returned as a Go error by the parser.
type Error struct {
	Start   int
	End     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("markup:%d:%d: %s", e.Start, e.End, e.Message)
}

// Stats counts the nodes produced by a parse.
type Stats struct {
	OpenTags        int
	CloseTags       int
	SelfClosingTags int
	Attributes      int
	Comments        int
	Interpolations  int
	TextNodes       int
}

func (s Stats) TotalNodes() int {
	return s.OpenTags + s.CloseTags + s.SelfClosingTags + s.Attributes + s.Comments + s.Interpolations + s.TextNodes
}

// Tree is the result of Parse. Nodes[Root] is the document.
type Tree struct {
	Text   string
	Nodes  []*Node
	Errors []*Error
	Stats  Stats
}

func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[id]
}

// NodeText returns the source text spanned by a node.
func (t *Tree) NodeText(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return t.Text[n.StartPos:n.EndPos]
}

// ErrorStrings renders the errors in emission order.
func (t *Tree) ErrorStrings() []string {
	out := make([]string, 0, len(t.Errors))
	for _, e := range t.Errors {
		out = append(out, e.Error())
	}
	return out
}

func (t *Tree) add(n *Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

func (t *Tree) errorf(start, end int, format string, args ...any) {
	t.Errors = append(t.Errors, &Error{Start: start, End: end, Message: fmt.Sprintf(format, args...)})
}
