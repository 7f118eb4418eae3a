package parser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/parser"
)

const counterSource = "package app\n" +
	"\n" +
	"import \"github.com/walteh/ngtmpls/pkg/dom\"\n" +
	"\n" +
	"type Counter struct{ count int }\n" +
	"\n" +
	"func (c *Counter) Template() string {\n" +
	"\treturn `<div>{{count}}</div>`\n" +
	"}\n" +
	"\n" +
	"type Label struct{ Text string }\n" +
	"\n" +
	"func (l Label) Template() string { return `<span>{{Text}}</span>` }\n" +
	"\n" +
	"var _ = dom.Event{}\n"

func TestParseFile(t *testing.T) {
	pf, err := parser.ParseFile(context.Background(), "counter.go", counterSource)
	require.NoError(t, err)
	require.NoError(t, pf.SyntaxError)

	assert.Equal(t, "app", pf.Package)
	require.Len(t, pf.Templates, 2)

	first := pf.Templates[0]
	assert.Equal(t, "Counter", first.ComponentType)
	assert.Equal(t, "<div>{{count}}</div>", first.Text)
	assert.Equal(t, first.Text, counterSource[first.Start:first.End])
	assert.Equal(t, "`", counterSource[first.Start-1:first.Start])
	assert.Equal(t, "}\n\ntype Label", counterSource[first.InsertionPoint-1:first.InsertionPoint+12])

	second := pf.Templates[1]
	assert.Equal(t, "Label", second.ComponentType)
	assert.Equal(t, "<span>{{Text}}</span>", second.Text)
	assert.Equal(t, "\n\nvar _", counterSource[second.InsertionPoint:second.InsertionPoint+7])

	assert.Same(t, first, pf.First())
}

func TestParsedFile_TemplateAt(t *testing.T) {
	pf, err := parser.ParseFile(context.Background(), "counter.go", counterSource)
	require.NoError(t, err)
	first := pf.First()

	tests := []struct {
		name     string
		pos      int
		expected *parser.Template
	}{
		{name: "template start", pos: first.Start, expected: first},
		{name: "template end", pos: first.End, expected: first},
		{name: "inside", pos: first.Start + 7, expected: first},
		{name: "opening quote", pos: first.Start - 1},
		{name: "after closing quote", pos: first.End + 1},
		{name: "second template", pos: pf.Templates[1].Start + 2, expected: pf.Templates[1]},
		{name: "package clause", pos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.expected, pf.TemplateAt(tt.pos))
		})
	}
}

func TestParseFile_Ignores(t *testing.T) {
	src := strings.Join([]string{
		"package app",
		"type A struct{}",
		"type B struct{}",
		"type C struct{}",
		"func Template() string { return `<i></i>` }",
		"func (a A) Template() string { return \"<b></b>\" }",
		"func (b B) Template(x int) string { return `<u></u>` }",
		"func (c C) Render() string { return `<p></p>` }",
		"func (c *C) Template() string { f := func() string { return `<q></q>` }; return f() }",
	}, "\n")

	pf, err := parser.ParseFile(context.Background(), "ignored.go", src)
	require.NoError(t, err)
	assert.Empty(t, pf.Templates)
	assert.Nil(t, pf.First())
}

func TestParseFile_SyntaxErrors(t *testing.T) {
	t.Run("partial file keeps earlier templates", func(t *testing.T) {
		src := "package app\n\nfunc (c *C) Template() string { return `<b></b>` }\n\nfunc broken( {\n"
		pf, err := parser.ParseFile(context.Background(), "partial.go", src)
		require.NoError(t, err)
		assert.Error(t, pf.SyntaxError)
		require.Len(t, pf.Templates, 1)
		assert.Equal(t, "<b></b>", pf.Templates[0].Text)
	})

	t.Run("not go at all", func(t *testing.T) {
		_, err := parser.ParseFile(context.Background(), "bad.go", "<html></html>")
		assert.Error(t, err)
	})
}
