package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindNames(t *testing.T) {
	p := New(Options{})

	tests := []struct {
		name     string
		expr     string
		start    int
		scopes   [][]string
		expected string
	}{
		{
			name:     "member access binds the leading identifier",
			expr:     "user.name",
			start:    10,
			scopes:   [][]string{nil},
			expected: "__comp./*{start:10}*/user.name/*{end:19}*/",
		},
		{
			name:     "local in an inner scope",
			expr:     "row.id",
			start:    3,
			scopes:   [][]string{nil, {"other"}, {"row"}},
			expected: "/*{start:3}*/row.id/*{end:9}*/",
		},
		{
			name:     "local in an outer scope",
			expr:     "row",
			start:    3,
			scopes:   [][]string{nil, {"row"}, {}},
			expected: "/*{start:3}*/row/*{end:6}*/",
		},
		{
			name:     "globals scope is never searched",
			expr:     "row",
			start:    3,
			scopes:   [][]string{{"row"}},
			expected: "__comp./*{start:3}*/row/*{end:6}*/",
		},
		{
			name:     "call",
			expr:     "save(item)",
			start:    0,
			scopes:   [][]string{nil, {"item"}},
			expected: "__comp./*{start:0}*/save(item)/*{end:10}*/",
		},
		{
			name:     "string literal is verbatim",
			expr:     `"hi"`,
			start:    4,
			scopes:   [][]string{nil},
			expected: `/*{start:4}*/"hi"/*{end:8}*/`,
		},
		{
			name:     "parenthesised expression is verbatim",
			expr:     "(a)",
			start:    4,
			scopes:   [][]string{nil},
			expected: "/*{start:4}*/(a)/*{end:7}*/",
		},
		{
			name:     "builtin name binds to the component",
			expr:     "cap",
			start:    7,
			scopes:   [][]string{nil},
			expected: "__comp./*{start:7}*/cap/*{end:10}*/",
		},
		{
			name:     "builtin call binds to the component",
			expr:     "len(items) > 0",
			start:    0,
			scopes:   [][]string{nil},
			expected: "__comp./*{start:0}*/len(items) > 0/*{end:14}*/",
		},
		{
			name:     "local shadows a builtin name",
			expr:     "max",
			start:    2,
			scopes:   [][]string{nil, {"max"}},
			expected: "/*{start:2}*/max/*{end:5}*/",
		},
		{
			name:     "boolean literal is verbatim",
			expr:     "true",
			start:    0,
			scopes:   [][]string{nil},
			expected: "/*{start:0}*/true/*{end:4}*/",
		},
		{
			name:     "nil is verbatim",
			expr:     "nil",
			start:    0,
			scopes:   [][]string{nil},
			expected: "/*{start:0}*/nil/*{end:3}*/",
		},
		{
			name:     "keyword is verbatim",
			expr:     "func() {}",
			start:    0,
			scopes:   [][]string{nil},
			expected: "/*{start:0}*/func() {}/*{end:9}*/",
		},
		{
			name:     "empty expression",
			expr:     "",
			start:    5,
			scopes:   [][]string{nil},
			expected: "/*{start:5}*/nil/*{end:5}*/",
		},
		{
			name:     "blank expression",
			expr:     "  ",
			start:    5,
			scopes:   [][]string{nil},
			expected: "  /*{start:7}*/nil/*{end:7}*/",
		},
		{
			name:     "keyword local is renamed",
			expr:     "type.Value",
			start:    6,
			scopes:   [][]string{nil, {"type_"}},
			expected: "/*{start:6}*/type_.Value/*{end:16}*/",
		},
		{
			name:     "identifier prefix is not a match",
			expr:     "rows",
			start:    0,
			scopes:   [][]string{nil, {"row"}},
			expected: "__comp./*{start:0}*/rows/*{end:4}*/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.bindNames(tt.expr, tt.start, tt.start+len(tt.expr), tt.scopes)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		attr     string
		kind     Binding
		stripped string
	}{
		{attr: "#box", kind: BindingLocal, stripped: "box"},
		{attr: "(click)", kind: BindingEvent, stripped: "click"},
		{attr: "[value]", kind: BindingProperty, stripped: "value"},
		{attr: "*ngIf", kind: BindingDirective, stripped: "ngIf"},
		{attr: "class", kind: BindingPlain, stripped: "class"},
		{attr: "(click", kind: BindingPlain, stripped: "(click"},
		{attr: "()", kind: BindingPlain, stripped: "()"},
		{attr: "#", kind: BindingPlain, stripped: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			kind, stripped := ParseBinding(tt.attr)
			assert.Equal(t, tt.kind, kind, "got %s", kind)
			assert.Equal(t, tt.stripped, stripped)
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "my_widget", sanitize("my-widget"))
	assert.Equal(t, "ng_x_y", sanitize("ng:x.y"))
	assert.Equal(t, "_col", sanitize("1col"))
	assert.Equal(t, "__", sanitize("é"))
	assert.Equal(t, "", upperFirst(""))
	assert.Equal(t, "Value", upperFirst("value"))
	assert.Equal(t, "type_", LocalIdent("type"))
	assert.Equal(t, "range_", LocalIdent("range"))
	assert.Equal(t, "box", LocalIdent("box"))
}
