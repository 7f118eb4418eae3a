// Package projector turns a parsed template into Go code that a type checker
// can analyse in place of the template. Every template expression in the
// output is wrapped in position markers so results can be mapped back.
package projector

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/walteh/ngtmpls/pkg/dom"
	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/position"
)

const (
	DefaultReceiver       = "__comp"
	DefaultElementPackage = "dom"
	DefaultEventParam     = "event"
	DefaultIndent         = "  "

	// EventPrefix is prepended to the name of an event binding.
	EventPrefix = "On"

	// SyntheticPrefix starts every generated name that does not come from the template.
	SyntheticPrefix = "__"
)

// ElementCatalog maps tag names to element types and lists their members.
// *dom.Catalog satisfies it.
type ElementCatalog interface {
	ElementType(tag string) string
	ResolveMemberNames(typeName string) []langsvc.Member
}

type Options struct {
	// Receiver names the parameter that stands for the component instance.
	Receiver string
	// ElementPackage qualifies element type names.
	ElementPackage string
	// EventParam is the parameter of generated event handlers.
	EventParam string
	Indent     string
	Elements   ElementCatalog
}

func DefaultOptions() Options {
	return Options{
		Receiver:       DefaultReceiver,
		ElementPackage: DefaultElementPackage,
		EventParam:     DefaultEventParam,
		Indent:         DefaultIndent,
		Elements:       dom.NewCatalog(nil),
	}
}

type Projector struct {
	opts Options
}

// New returns a projector. Empty options fall back to their defaults.
func New(opts Options) *Projector {
	def := DefaultOptions()
	if opts.Receiver == "" {
		opts.Receiver = def.Receiver
	}
	if opts.ElementPackage == "" {
		opts.ElementPackage = def.ElementPackage
	}
	if opts.EventParam == "" {
		opts.EventParam = def.EventParam
	}
	if opts.Indent == "" {
		opts.Indent = def.Indent
	}
	if opts.Elements == nil {
		opts.Elements = def.Elements
	}
	return &Projector{opts: opts}
}

func (p *Projector) Options() Options {
	return p.opts
}

// Project renders the tree as a blank Go function taking the component as its
// receiver parameter. The result has no leading or trailing newline.
func (p *Projector) Project(tree *markup.Tree, componentType string) string {
	w := &writer{indent: p.opts.Indent}
	w.line(0, fmt.Sprintf("func _(%s *%s) {", p.opts.Receiver, componentType))
	// scope 0 holds globals and is never searched
	p.level(w, tree, markup.Root, 1, [][]string{nil})
	w.line(0, "}")
	return strings.TrimSuffix(w.String(), "\n")
}

// ElementVar is the generated local holding instances of a tag.
func ElementVar(tag string) string {
	return SyntheticPrefix + sanitize(strings.ToLower(tag))
}

func (p *Projector) level(w *writer, tree *markup.Tree, parent markup.NodeID, depth int, scopes [][]string) {
	children := tree.Nodes[parent].Children

	var declared []string
	declTypes := map[string]string{}
	var locals []string
	localDecls := map[string]string{}

	for _, c := range children {
		n := tree.Nodes[c]
		if !n.Kind.IsTag() {
			continue
		}
		v := ElementVar(n.Name)
		if _, ok := declTypes[v]; !ok {
			declared = append(declared, v)
			declTypes[v] = p.opts.Elements.ElementType(n.Name)
		}
		for _, a := range n.Attributes {
			name, ok := tree.LocalName(a)
			if !ok {
				continue
			}
			ident := LocalIdent(name)
			if _, ok := localDecls[ident]; !ok {
				locals = append(locals, ident)
			}
			start := tree.Nodes[a].StartPos + 1
			localDecls[ident] = "var " + position.Wrap(ident, start, start+len(name)) + " = " + v
		}
	}

	inner := make([][]string, len(scopes), len(scopes)+1)
	copy(inner, scopes)
	inner = append(inner, locals)

	for _, v := range declared {
		w.line(depth, fmt.Sprintf("%s := new(%s.%s)", v, p.opts.ElementPackage, declTypes[v]))
		w.line(depth, "_ = "+v)
	}
	for _, l := range locals {
		w.line(depth, localDecls[l])
		w.line(depth, "_ = "+l)
	}

	for _, c := range children {
		if tree.Nodes[c].Kind != markup.KindInterpolation {
			continue
		}
		expr, start := tree.InterpolationExpression(c)
		w.line(depth, "_ = "+p.bindNames(expr, start, start+len(expr), inner))
	}

	for _, c := range children {
		if !tree.Nodes[c].Kind.IsTag() {
			continue
		}
		block := &writer{indent: w.indent}
		p.bindings(block, tree, c, depth+1, inner)
		p.level(block, tree, c, depth+1, inner)
		if block.Len() == 0 {
			continue
		}
		w.line(depth, "{")
		w.WriteString(block.String())
		w.line(depth, "}")
	}
}

// bindings emits the event and property assignments of a tag.
func (p *Projector) bindings(w *writer, tree *markup.Tree, tag markup.NodeID, depth int, scopes [][]string) {
	n := tree.Nodes[tag]
	v := ElementVar(n.Name)
	typ := p.opts.Elements.ElementType(n.Name)

	for _, a := range n.Attributes {
		attr := tree.Nodes[a]
		if !attr.HasValue {
			continue
		}
		kind, name := ParseBinding(attr.Name)
		if kind != BindingEvent && kind != BindingProperty {
			continue
		}

		nameStart := attr.StartPos + 1
		valueEnd := attr.ValuePos + len(attr.Value)

		switch kind {
		case BindingEvent:
			field := p.fieldName(typ, EventPrefix+sanitize(name))
			handlerScopes := append(scopes[:len(scopes):len(scopes)], []string{p.opts.EventParam})
			value := p.bindNames(attr.Value, attr.ValuePos, valueEnd, handlerScopes)
			w.line(depth, fmt.Sprintf("%s.%s = func(%s %s.Event) { %s }",
				v, position.Wrap(field, nameStart, nameStart+len(name)), p.opts.EventParam, p.opts.ElementPackage, value))
		case BindingProperty:
			field := p.fieldName(typ, sanitize(name))
			value := p.bindNames(attr.Value, attr.ValuePos, valueEnd, scopes)
			w.line(depth, fmt.Sprintf("%s.%s = %s", v, position.Wrap(field, nameStart, nameStart+len(name)), value))
		}
	}
}

// fieldName finds the element field matching want regardless of case.
func (p *Projector) fieldName(typeName, want string) string {
	for _, m := range p.opts.Elements.ResolveMemberNames(typeName) {
		if !m.Method && strings.EqualFold(m.Name, want) {
			return m.Name
		}
	}
	return upperFirst(want)
}

// bindNames decides whether expr refers to a template local or to the
// component. Only the leading identifier is considered: when it names a local
// in scope, a keyword or one of true, false and nil the expression is kept as
// is, otherwise it is qualified with the receiver. Either way the expression,
// without leading whitespace, is wrapped in markers for [start+lead, end].
func (p *Projector) bindNames(expr string, start, end int, scopes [][]string) string {
	body := strings.TrimLeft(expr, " \t\r\n")
	lead := len(expr) - len(body)
	ws := expr[:lead]

	if body == "" {
		return ws + position.Wrap("nil", start+lead, end)
	}

	name := LeadingIdentifier(body)
	if token.IsKeyword(name) && inScope(LocalIdent(name), scopes) {
		return ws + position.Wrap(LocalIdent(name)+body[len(name):], start+lead, end)
	}
	if name == "" || inScope(name, scopes) || literal(name) {
		return ws + position.Wrap(body, start+lead, end)
	}
	return ws + p.opts.Receiver + "." + position.Wrap(body, start+lead, end)
}

func inScope(name string, scopes [][]string) bool {
	for i := len(scopes) - 1; i > 0; i-- {
		for _, n := range scopes[i] {
			if n == name {
				return true
			}
		}
	}
	return false
}

// literal reports names that can never be component members. Builtins such as
// len or cap are not included, a component may declare members with those names.
func literal(name string) bool {
	switch name {
	case "true", "false", "nil":
		return true
	}
	return token.IsKeyword(name)
}

// LocalIdent is the Go name declared for the template local name. Keywords
// get a trailing underscore.
func LocalIdent(name string) string {
	ident := sanitize(name)
	if token.IsKeyword(ident) {
		return ident + "_"
	}
	return ident
}

// LeadingIdentifier returns the identifier expr starts with, if any.
func LeadingIdentifier(expr string) string {
	if expr == "" || !isIdentStart(expr[0]) {
		return ""
	}
	i := 1
	for i < len(expr) && isIdentChar(expr[i]) {
		i++
	}
	return expr[:i]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// sanitize replaces bytes that cannot appear in a Go identifier, keeping the length.
func sanitize(name string) string {
	b := []byte(name)
	for i, c := range b {
		if !isIdentChar(c) {
			b[i] = '_'
		}
	}
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		b[0] = '_'
	}
	return string(b)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

type writer struct {
	strings.Builder
	indent string
}

func (w *writer) line(depth int, s string) {
	for i := 0; i < depth; i++ {
		w.WriteString(w.indent)
	}
	w.WriteString(s)
	w.WriteByte('\n')
}
