package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/projector"
)

func TestNewContext_Location(t *testing.T) {
	tests := []struct {
		name     string
		template string
		pos      int
		location Location
		binding  projector.Binding
		afterDot bool
	}{
		{name: "tag name", template: `<div><sp`, pos: 8, location: LocationTagName},
		{name: "end tag", template: `<div></div>`, pos: 8, location: LocationEndTag},
		{name: "unfinished end tag", template: `<div></`, pos: 7, location: LocationEndTag},
		{name: "directive name", template: `<li *ng></li>`, pos: 7, location: LocationAttributeName, binding: projector.BindingDirective},
		{name: "unfinished event name", template: `<button (cl></button>`, pos: 11, location: LocationAttributeName, binding: projector.BindingEvent},
		{name: "property name", template: `<input [va]/>`, pos: 9, location: LocationAttributeName, binding: projector.BindingProperty},
		{name: "event value", template: `<a (click)="go()"></a>`, pos: 12, location: LocationExpression, binding: projector.BindingEvent},
		{name: "interpolation", template: `<div #box>{{ co }}</div>`, pos: 15, location: LocationExpression},
		{name: "interpolation after dot", template: `{{user.na}}`, pos: 9, location: LocationExpression, afterDot: true},
		{name: "unclosed interpolation", template: `{{user.`, pos: 7, location: LocationExpression, afterDot: true},
		{name: "interpolation delimiter", template: `{{user}}`, pos: 1, location: LocationNone},
		{name: "text", template: `hello`, pos: 2, location: LocationNone},
		{name: "inside a tag after its name", template: `<div  ></div>`, pos: 5, location: LocationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(markup.Parse(tt.template), tt.pos)
			assert.Equal(t, tt.location, c.Location, "got %s", c.Location)
			assert.Equal(t, tt.binding, c.Binding, "got %s", c.Binding)
			assert.Equal(t, tt.afterDot, c.AfterDot)
		})
	}
}

func TestContext_ExpressionBeforeDot(t *testing.T) {
	tests := []struct {
		template string
		pos      int
		want     string
	}{
		{template: `{{user.na}}`, pos: 9, want: "user"},
		{template: `{{a.b.c}}`, pos: 7, want: "a.b"},
		{template: `{{ save(x).y }}`, pos: 12, want: ""},
		{template: `{{name}}`, pos: 6, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			c := NewContext(markup.Parse(tt.template), tt.pos)
			assert.Equal(t, tt.want, c.ExpressionBeforeDot())
		})
	}
}

func TestContext_Locals(t *testing.T) {
	tree := markup.Parse(`<div #box><a (click)="go()" #link></a>{{ x }}</div>`)

	inHandler := NewContext(tree, 22)
	assert.Equal(t, LocationExpression, inHandler.Location)
	assert.ElementsMatch(t, []string{"box", "link", "event"}, inHandler.Locals())

	inText := NewContext(tree, 41)
	assert.Equal(t, LocationExpression, inText.Location)
	assert.ElementsMatch(t, []string{"box", "link"}, inText.Locals())
}

func TestIsAfterDot(t *testing.T) {
	assert.True(t, IsAfterDot("a.", 2))
	assert.True(t, IsAfterDot("a.bc", 4))
	assert.True(t, IsAfterDot("a.bc", 3))
	assert.False(t, IsAfterDot("a.bc", 1))
	assert.False(t, IsAfterDot("abc", 3))
	assert.False(t, IsAfterDot("", 0))
	assert.True(t, IsAfterDot("a.", 10), "positions past the end are clamped")
}
