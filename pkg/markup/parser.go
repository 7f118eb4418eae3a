package markup

import (
	"strings"
)

// Parse scans text into a tree. It never fails: malformed markup is recorded
// in Tree.Errors and the scan continues without repairing the tree.
func Parse(text string) *Tree {
	s := &scanner{
		text: text,
		tree: &Tree{Text: text},
	}
	s.scan()
	return s.tree
}

// scanner owns the cursor for a single parse.
type scanner struct {
	text string
	pos  int
	tree *Tree
}

// next consumes one byte. It returns 0 at the end of the text.
func (s *scanner) next() byte {
	if s.pos >= len(s.text) {
		return 0
	}
	ch := s.text[s.pos]
	s.pos++
	return ch
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset >= len(s.text) {
		return 0
	}
	return s.text[s.pos+offset]
}

func (s *scanner) scan() {
	root := s.tree.add(&Node{
		Kind:   KindRoot,
		EndPos: len(s.text),
		Parent: NoNode,
	})

	stack := []NodeID{root}
	for {
		id, ok := s.nextChild()
		if !ok {
			break
		}

		top := stack[len(stack)-1]
		child := s.tree.Nodes[id]
		child.Parent = top
		s.tree.Nodes[top].Children = append(s.tree.Nodes[top].Children, id)

		switch child.Kind {
		case KindStartTag:
			stack = append(stack, id)
		case KindEndTag:
			if child.Name == s.tree.Nodes[top].Name && top != root {
				stack = stack[:len(stack)-1]
				continue
			}
			if len(stack) > 1 {
				s.tree.errorf(child.StartPos, s.pos, "Expected closing tag named %q", s.tree.Nodes[top].Name)
			} else {
				s.tree.errorf(child.StartPos, s.pos, "Unexpected closing tag")
			}
		}
	}

	for i := len(stack) - 1; i > 0; i-- {
		n := s.tree.Nodes[stack[i]]
		s.tree.errorf(n.StartPos, n.EndPos, "Unmatched opening tag")
	}
}

func (s *scanner) nextChild() (NodeID, bool) {
	fullStart := s.pos
	s.skipWhitespace()

	if s.pos >= len(s.text) {
		if s.pos == fullStart {
			return NoNode, false
		}
		// trailing whitespace
		s.tree.Stats.TextNodes++
		return s.tree.add(&Node{
			Kind:         KindText,
			FullStartPos: fullStart,
			StartPos:     s.pos,
			EndPos:       s.pos,
		}), true
	}

	switch s.next() {
	case '<':
		switch {
		case s.peek(0) == '!' && s.peek(1) == '-' && s.peek(2) == '-':
			return s.parseComment(fullStart), true
		case s.peek(0) == '/':
			return s.parseCloseTag(fullStart), true
		case isTagStartChar(s.peek(0)):
			return s.parseTag(fullStart), true
		default:
			s.tree.errorf(s.pos-1, s.pos, "Invalid tag name")
			return s.parseText(fullStart), true
		}
	case '{':
		if s.peek(0) == '{' {
			return s.parseInterpolation(fullStart), true
		}
		return s.parseText(fullStart), true
	default:
		return s.parseText(fullStart), true
	}
}

func (s *scanner) parseComment(fullStart int) NodeID {
	n := &Node{
		Kind:         KindComment,
		FullStartPos: fullStart,
		StartPos:     s.pos - 1,
	}
	s.tree.Stats.Comments++

	// skip the "!--"
	s.pos += 3

	closed := false
	for ch := s.next(); ch != 0; ch = s.next() {
		if ch == '-' && s.peek(0) == '-' && s.peek(1) == '>' {
			s.pos += 2
			closed = true
			break
		}
	}
	n.EndPos = s.pos
	if !closed {
		s.tree.errorf(n.StartPos, n.EndPos, "Unclosed comment")
	}
	return s.tree.add(n)
}

func (s *scanner) parseTag(fullStart int) NodeID {
	n := &Node{
		Kind:         KindStartTag,
		FullStartPos: fullStart,
		StartPos:     s.pos - 1,
	}
	id := s.tree.add(n)

	s.next()
	for isTagPartChar(s.peek(0)) {
		s.next()
	}
	n.Name = s.text[n.StartPos+1 : s.pos]

	for {
		attr, ok := s.parseAttribute()
		if !ok {
			break
		}
		s.tree.Nodes[attr].Parent = id
		n.Attributes = append(n.Attributes, attr)
	}
	s.skipWhitespace()

	switch {
	case s.peek(0) == '/' && s.peek(1) == '>':
		s.pos += 2
		n.Kind = KindSelfClosingTag
	case s.peek(0) == '>':
		s.pos++
	default:
		s.tree.errorf(n.StartPos, s.pos, "Invalid tag end")
	}

	if n.Kind == KindSelfClosingTag {
		s.tree.Stats.SelfClosingTags++
	} else {
		s.tree.Stats.OpenTags++
	}

	n.EndPos = s.pos
	return id
}

func (s *scanner) parseAttribute() (NodeID, bool) {
	fullStart := s.pos
	s.skipWhitespace()
	if !isAttribChar(s.peek(0)) {
		return NoNode, false
	}

	n := &Node{
		Kind:         KindAttribute,
		FullStartPos: fullStart,
		StartPos:     s.pos,
	}
	for isAttribChar(s.peek(0)) {
		s.next()
	}
	n.Name = s.text[n.StartPos:s.pos]
	n.EndPos = s.pos
	s.tree.Stats.Attributes++

	// look past whitespace for an '=', restoring the cursor if there is none
	nameEnd := s.pos
	s.skipWhitespace()
	if s.peek(0) != '=' {
		s.pos = nameEnd
		return s.tree.add(n), true
	}
	s.next()
	s.skipWhitespace()

	valueStart := s.pos
	ch := s.peek(0)
	if ch != '\'' && ch != '"' && !isAttribChar(ch) {
		n.EndPos = s.pos
		s.tree.errorf(n.StartPos, s.pos, "Unrecognized attribute value")
		return s.tree.add(n), true
	}

	n.HasValue = true
	n.ValuePos = valueStart
	var quote byte
	if !isAttribChar(ch) {
		quote = ch
		n.ValuePos++
		s.next()
	}

	for ch = s.next(); ch != 0; ch = s.next() {
		if quote != 0 && ch == quote {
			n.EndPos = s.pos
			n.Value = s.text[n.ValuePos : s.pos-1]
			return s.tree.add(n), true
		}
		if quote == 0 && !isAttribChar(ch) {
			// put back the terminator
			s.pos--
			n.EndPos = s.pos
			n.Value = s.text[n.ValuePos:s.pos]
			return s.tree.add(n), true
		}
	}

	n.EndPos = s.pos
	n.Value = s.text[n.ValuePos:s.pos]
	s.tree.errorf(n.StartPos, n.EndPos, "Incomplete attribute value")
	return s.tree.add(n), true
}

func (s *scanner) parseCloseTag(fullStart int) NodeID {
	n := &Node{
		Kind:         KindEndTag,
		FullStartPos: fullStart,
		StartPos:     s.pos - 1,
	}
	s.tree.Stats.CloseTags++

	// consume the '/'
	s.next()
	for ch := s.next(); ch != 0; ch = s.next() {
		if ch == '>' {
			n.Name = strings.TrimSpace(s.text[n.StartPos+2 : s.pos-1])
			n.EndPos = s.pos
			return s.tree.add(n)
		}
	}

	n.Name = strings.TrimSpace(s.text[n.StartPos+2 : s.pos])
	n.EndPos = s.pos
	s.tree.errorf(n.StartPos, n.EndPos, "Incomplete closing tag")
	return s.tree.add(n)
}

func (s *scanner) parseInterpolation(fullStart int) NodeID {
	n := &Node{
		Kind:         KindInterpolation,
		FullStartPos: fullStart,
		StartPos:     s.pos - 1,
	}
	s.tree.Stats.Interpolations++

	// consume the second '{'
	s.next()
	for ch := s.next(); ch != 0; ch = s.next() {
		if ch == '}' && s.peek(0) == '}' {
			s.pos++
			n.EndPos = s.pos
			return s.tree.add(n)
		}
	}

	n.EndPos = s.pos
	s.tree.errorf(n.StartPos, n.EndPos, "Unclosed interpolation")
	return s.tree.add(n)
}

func (s *scanner) parseText(fullStart int) NodeID {
	n := &Node{
		Kind:         KindText,
		FullStartPos: fullStart,
		StartPos:     s.pos - 1,
	}
	s.tree.Stats.TextNodes++

	for {
		ch := s.peek(0)
		if ch == 0 || ch == '<' {
			break
		}
		if ch == '{' && s.peek(1) == '{' {
			break
		}
		s.next()
	}

	n.EndPos = s.pos
	return s.tree.add(n)
}

func (s *scanner) skipWhitespace() {
	for s.pos < len(s.text) && isWhitespace(s.text[s.pos]) {
		s.pos++
	}
}

func isWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

func isTagStartChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// control characters are never part of a name
func isTagPartChar(ch byte) bool {
	if ch < 0x20 {
		return false
	}
	switch ch {
	case ' ', '/', '>':
		return false
	}
	return true
}

func isAttribChar(ch byte) bool {
	if ch < 0x20 {
		return false
	}
	switch ch {
	case ' ', '/', '>', '=', '"', '\'':
		return false
	}
	return true
}
