package completion

import (
	"strings"

	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/projector"
)

// Location says what kind of template text a completion position is in.
type Location int

const (
	LocationNone Location = iota
	// LocationTagName is the name of a start or self-closing tag.
	LocationTagName
	LocationEndTag
	LocationAttributeName
	// LocationExpression is an attribute value or the inside of an interpolation.
	LocationExpression
)

func (l Location) String() string {
	switch l {
	case LocationTagName:
		return "tag-name"
	case LocationEndTag:
		return "end-tag"
	case LocationAttributeName:
		return "attribute-name"
	case LocationExpression:
		return "expression"
	}
	return "none"
}

// Context holds information about a completion request inside one template.
// Pos is relative to the template text.
type Context struct {
	Tree     *markup.Tree
	Pos      int
	Node     markup.NodeID
	Location Location
	// Binding is the kind of the attribute holding Pos, if any.
	Binding  projector.Binding
	AfterDot bool
	// EventParam is visible as a local inside event binding values.
	EventParam string
}

func NewContext(tree *markup.Tree, pos int) *Context {
	c := &Context{
		Tree:       tree,
		Pos:        pos,
		Node:       tree.NodeAtPosition(pos),
		EventParam: projector.DefaultEventParam,
	}

	n := tree.Nodes[c.Node]
	switch n.Kind {
	case markup.KindStartTag, markup.KindSelfClosingTag:
		if pos <= n.StartPos+1+len(n.Name) {
			c.Location = LocationTagName
		}
	case markup.KindEndTag:
		c.Location = LocationEndTag
	case markup.KindAttribute:
		c.Binding = bindingOf(n.Name)
		switch {
		case n.HasValue && pos >= n.ValuePos:
			c.Location = LocationExpression
		case pos <= n.StartPos+len(n.Name):
			c.Location = LocationAttributeName
		}
	case markup.KindInterpolation:
		closed := strings.HasSuffix(tree.Text[n.StartPos:n.EndPos], "}}") && n.EndPos-n.StartPos >= 4
		if pos >= n.StartPos+2 && (!closed || pos <= n.EndPos-2) {
			c.Location = LocationExpression
		}
	}

	if c.Location == LocationExpression {
		c.AfterDot = IsAfterDot(tree.Text, pos)
	}
	return c
}

// bindingOf classifies a possibly unfinished attribute name by its first sigil.
func bindingOf(name string) projector.Binding {
	if kind, _ := projector.ParseBinding(name); kind != projector.BindingPlain {
		return kind
	}
	if name == "" {
		return projector.BindingPlain
	}
	switch name[0] {
	case '(':
		return projector.BindingEvent
	case '[':
		return projector.BindingProperty
	case '*':
		return projector.BindingDirective
	case '#':
		return projector.BindingLocal
	}
	return projector.BindingPlain
}

// ParentName is the name of the tag enclosing Node, empty at the top level.
func (c *Context) ParentName() string {
	parent := c.Tree.Nodes[c.Node].Parent
	if parent == markup.NoNode || parent == markup.Root {
		return ""
	}
	return c.Tree.Nodes[parent].Name
}

// Locals lists the template locals visible at the position.
func (c *Context) Locals() []string {
	locals := c.Tree.LocalsInScope(c.Node)
	if c.Location == LocationExpression && c.Binding == projector.BindingEvent && c.EventParam != "" {
		locals = append(locals, c.EventParam)
	}
	return locals
}

// ExpressionBeforeDot returns the selector chain in front of the dot being
// completed, for example "user.address" in "user.address.ci".
func (c *Context) ExpressionBeforeDot() string {
	if !c.AfterDot {
		return ""
	}
	text := c.Tree.Text
	dot := identStart(text, c.Pos) - 1

	start := dot
	for start > 0 && (isIdentByte(text[start-1]) || text[start-1] == '.') {
		start--
	}
	return text[start:dot]
}

// IsAfterDot reports whether the identifier being typed at pos follows a '.'.
func IsAfterDot(text string, pos int) bool {
	if pos > len(text) {
		pos = len(text)
	}
	start := identStart(text, pos)
	return start > 0 && text[start-1] == '.'
}

func identStart(text string, pos int) int {
	for pos > 0 && isIdentByte(text[pos-1]) {
		pos--
	}
	return pos
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
