package markup

import (
	"strings"
)

// LocalSigil prefixes an attribute name that declares a local reference.
const LocalSigil = '#'

// NodeAtPosition finds the innermost node at pos. Tags are descended while pos
// lies past their start tag; when the located node is a tag, an attribute
// spanning pos is returned in its place.
func (t *Tree) NodeAtPosition(pos int) NodeID {
	id := Root
	for {
		n := t.Nodes[id]
		if n.Kind != KindStartTag && n.Kind != KindRoot {
			break
		}
		if len(n.Children) == 0 || (n.Kind == KindStartTag && n.EndPos > pos) {
			break
		}

		next := n.Children[len(n.Children)-1]
		for _, c := range n.Children {
			if t.FullEndPos(c) > pos {
				next = c
				break
			}
		}
		id = next
	}

	if t.Nodes[id].Kind.IsTag() {
		if attr := t.AttributeAt(id, pos); attr != NoNode {
			return attr
		}
	}
	return id
}

// FullEndPos is the end of a node including its children and closing tag.
func (t *Tree) FullEndPos(id NodeID) int {
	n := t.Nodes[id]
	if n.Kind != KindStartTag && n.Kind != KindRoot {
		return n.EndPos
	}
	if len(n.Children) == 0 {
		return n.EndPos
	}
	last := t.FullEndPos(n.Children[len(n.Children)-1])
	if last < n.EndPos {
		return n.EndPos
	}
	return last
}

// AttributeAt returns the last attribute of tag whose [StartPos, EndPos] holds pos.
func (t *Tree) AttributeAt(tag NodeID, pos int) NodeID {
	found := NoNode
	for _, a := range t.Nodes[tag].Attributes {
		n := t.Nodes[a]
		if pos >= n.StartPos && pos <= n.EndPos {
			found = a
		}
	}
	return found
}

// Leaves returns every content node without children. End tags, attributes
// and the root are not content.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		for _, c := range t.Nodes[id].Children {
			n := t.Nodes[c]
			if n.Kind == KindEndTag {
				continue
			}
			if len(n.Children) == 0 {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(Root)
	return out
}

// LocalName returns the declared name when attr is a value-less local reference.
func (t *Tree) LocalName(attr NodeID) (string, bool) {
	n := t.Nodes[attr]
	if n.Kind != KindAttribute || n.HasValue || len(n.Name) < 2 || n.Name[0] != LocalSigil {
		return "", false
	}
	return n.Name[1:], true
}

// LocalsInScope lists the local references visible to id, innermost first.
// A local declared on a tag is visible to every sibling of that tag and
// their descendants, as well as to the tag's own attributes.
func (t *Tree) LocalsInScope(id NodeID) []string {
	var out []string
	seen := map[string]bool{}
	for owner := t.Nodes[id].Parent; owner != NoNode; owner = t.Nodes[owner].Parent {
		for _, name := range t.declaredLocals(owner) {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// declaredLocals lists the local names introduced by the tag children of owner.
func (t *Tree) declaredLocals(owner NodeID) []string {
	var out []string
	for _, c := range t.Nodes[owner].Children {
		if !t.Nodes[c].Kind.IsTag() {
			continue
		}
		for _, a := range t.Nodes[c].Attributes {
			if name, ok := t.LocalName(a); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

// InterpolationExpression returns the text between the delimiters of an
// interpolation and its offset in the template.
func (t *Tree) InterpolationExpression(id NodeID) (string, int) {
	n := t.Nodes[id]
	raw := t.Text[n.StartPos:n.EndPos]
	start := n.StartPos + 2
	expr := strings.TrimPrefix(raw, "{{")
	if strings.HasSuffix(expr, "}}") && n.EndPos-n.StartPos >= 4 {
		expr = strings.TrimSuffix(expr, "}}")
	}
	return expr, start
}
