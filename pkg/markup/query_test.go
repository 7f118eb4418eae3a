package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/markup"
)

func TestTree_NodeAtPosition(t *testing.T) {
	//            0         1         2         3         4         5
	//            0123456789012345678901234567890123456789012345678901234
	const text = `<div #box (click)="go()">{{name}} hi<span></span></div>`

	tree := markup.Parse(text)
	require.Empty(t, tree.Errors)

	tests := []struct {
		name     string
		pos      int
		kind     markup.Kind
		nodeName string
	}{
		{name: "tag name", pos: 2, kind: markup.KindStartTag, nodeName: "div"},
		{name: "local attribute", pos: 6, kind: markup.KindAttribute, nodeName: "#box"},
		{name: "end of local attribute", pos: 9, kind: markup.KindAttribute, nodeName: "#box"},
		{name: "event value", pos: 20, kind: markup.KindAttribute, nodeName: "(click)"},
		{name: "interpolation", pos: 28, kind: markup.KindInterpolation},
		{name: "text", pos: 34, kind: markup.KindText},
		{name: "nested tag", pos: 38, kind: markup.KindStartTag, nodeName: "span"},
		{name: "nested close tag", pos: 44, kind: markup.KindEndTag, nodeName: "span"},
		{name: "outer close tag", pos: 51, kind: markup.KindEndTag, nodeName: "div"},
		{name: "past the end", pos: 200, kind: markup.KindEndTag, nodeName: "div"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tree.NodeAtPosition(tt.pos)
			n := tree.Nodes[id]
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, tt.nodeName, n.Name)
		})
	}
}

func TestTree_LocalsInScope(t *testing.T) {
	const text = `<div #outer><p #inner>{{inner}}</p>{{outer}}</div><span #sibling></span>`

	tree := markup.Parse(text)
	require.Empty(t, tree.Errors)

	first := tree.NodeAtPosition(24)
	require.Equal(t, markup.KindInterpolation, tree.Nodes[first].Kind)
	assert.Equal(t, []string{"inner", "outer", "sibling"}, tree.LocalsInScope(first))

	second := tree.NodeAtPosition(38)
	require.Equal(t, markup.KindInterpolation, tree.Nodes[second].Kind)
	assert.Equal(t, []string{"inner", "outer", "sibling"}, tree.LocalsInScope(second))

	span := tree.NodeAtPosition(53)
	require.Equal(t, markup.KindStartTag, tree.Nodes[span].Kind)
	assert.Equal(t, []string{"outer", "sibling"}, tree.LocalsInScope(span))
}

func TestTree_InterpolationExpression(t *testing.T) {
	tests := []struct {
		text      string
		expr      string
		exprStart int
	}{
		{text: `{{name}}`, expr: "name", exprStart: 2},
		{text: `ab{{ a.b }}`, expr: " a.b ", exprStart: 4},
		{text: `{{}}`, expr: "", exprStart: 2},
		{text: `{{open`, expr: "open", exprStart: 2},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tree := markup.Parse(tt.text)
			var id markup.NodeID = markup.NoNode
			for i, n := range tree.Nodes {
				if n.Kind == markup.KindInterpolation {
					id = markup.NodeID(i)
				}
			}
			require.NotEqual(t, markup.NoNode, id)

			expr, start := tree.InterpolationExpression(id)
			assert.Equal(t, tt.expr, expr)
			assert.Equal(t, tt.exprStart, start)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "SelfClosingTag", markup.KindSelfClosingTag.String())
	assert.Equal(t, "Interpolation", markup.KindInterpolation.String())
	assert.Equal(t, "Kind(42)", markup.Kind(42).String())
}
