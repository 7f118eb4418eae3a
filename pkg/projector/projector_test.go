package projector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/position"
	"github.com/walteh/ngtmpls/pkg/projector"
)

func project(t *testing.T, opts projector.Options, template string) string {
	t.Helper()
	tree := markup.Parse(template)
	require.Empty(t, tree.ErrorStrings())
	return projector.New(opts).Project(tree, "Counter")
}

func TestProject_Counter(t *testing.T) {
	got := project(t, projector.Options{}, `<div #box>{{count}}<button (click)="increment()">+</button></div>`)

	expected := strings.Join([]string{
		"func _(__comp *Counter) {",
		"  __div := new(dom.HTMLDivElement)",
		"  _ = __div",
		"  var /*{start:6}*/box/*{end:9}*/ = __div",
		"  _ = box",
		"  {",
		"    __button := new(dom.HTMLButtonElement)",
		"    _ = __button",
		"    _ = __comp./*{start:12}*/count/*{end:17}*/",
		"    {",
		"      __button./*{start:28}*/OnClick/*{end:33}*/ = func(event dom.Event) { __comp./*{start:36}*/increment()/*{end:47}*/ }",
		"    }",
		"  }",
		"}",
	}, "\n")

	assert.Equal(t, expected, got)
}

func TestProject_LocalReferenceBinding(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "declared local is used verbatim",
			template: `<div #name>{{name}}</div>`,
			expected: "_ = /*{start:13}*/name/*{end:17}*/",
		},
		{
			name:     "no local binds to the receiver",
			template: `<div>{{name}}</div>`,
			expected: "_ = __comp./*{start:7}*/name/*{end:11}*/",
		},
		{
			name:     "local declared by a later sibling is visible",
			template: `<div>{{ref.Value}}</div><input #ref/>`,
			expected: "_ = /*{start:7}*/ref.Value/*{end:16}*/",
		},
		{
			name:     "local inside a tag is not visible outside it",
			template: `<div><i #inner></i></div>{{inner}}`,
			expected: "_ = __comp./*{start:27}*/inner/*{end:32}*/",
		},
		{
			name:     "keyword local is declared with a suffix",
			template: `<input #type/>`,
			expected: "var /*{start:8}*/type_/*{end:12}*/ = __input\n  _ = type_",
		},
		{
			name:     "keyword local reference uses the suffixed name",
			template: `<div #range>{{range.ID}}</div>`,
			expected: "_ = /*{start:14}*/range_.ID/*{end:22}*/",
		},
		{
			name:     "builtin name binds to the receiver",
			template: `<div>{{cap}}</div>`,
			expected: "_ = __comp./*{start:7}*/cap/*{end:10}*/",
		},
		{
			name:     "leading whitespace stays outside the markers",
			template: `<p>{{  total + 1}}</p>`,
			expected: "_ =   __comp./*{start:7}*/total + 1/*{end:16}*/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := project(t, projector.Options{}, tt.template)
			assert.Contains(t, got, tt.expected)
		})
	}
}

func TestProject_PropertyAndEventBindings(t *testing.T) {
	t.Run("property", func(t *testing.T) {
		got := project(t, projector.Options{}, `<input [value]="title"/>`)
		assert.Contains(t, got, "__input./*{start:8}*/Value/*{end:13}*/ = __comp./*{start:16}*/title/*{end:21}*/")
	})

	t.Run("event field is matched regardless of case", func(t *testing.T) {
		got := project(t, projector.Options{}, `<p (dblclick)="x()"></p>`)
		assert.Contains(t, got, "__p./*{start:4}*/OnDblClick/*{end:12}*/")
	})

	t.Run("event parameter is a local inside the handler", func(t *testing.T) {
		got := project(t, projector.Options{}, `<a (click)="event.PreventDefault()"></a>`)
		assert.Contains(t, got, "func(event dom.Event) { /*{start:12}*/event.PreventDefault()/*{end:34}*/ }")
	})

	t.Run("plain and directive attributes are not bound", func(t *testing.T) {
		got := project(t, projector.Options{}, `<li class="x" *ngFor="item"></li>`)
		assert.NotContains(t, got, "item")
		assert.NotContains(t, got, "Class")
	})
}

func TestProject_Structure(t *testing.T) {
	t.Run("empty blocks are skipped", func(t *testing.T) {
		got := project(t, projector.Options{}, `<div><span></span></div>`)
		expected := strings.Join([]string{
			"func _(__comp *Counter) {",
			"  __div := new(dom.HTMLDivElement)",
			"  _ = __div",
			"  {",
			"    __span := new(dom.HTMLSpanElement)",
			"    _ = __span",
			"  }",
			"}",
		}, "\n")
		assert.Equal(t, expected, got)
	})

	t.Run("one declaration per tag name", func(t *testing.T) {
		got := project(t, projector.Options{}, `<p></p><P></P><p/>`)
		assert.Equal(t, 1, strings.Count(got, "__p := new(dom.HTMLParagraphElement)"))
	})

	t.Run("unknown tags use the generic element", func(t *testing.T) {
		got := project(t, projector.Options{}, `<my-widget></my-widget>`)
		assert.Contains(t, got, "__my_widget := new(dom.HTMLElement)")
	})

	t.Run("empty template", func(t *testing.T) {
		got := project(t, projector.Options{}, ``)
		assert.Equal(t, "func _(__comp *Counter) {\n}", got)
	})

	t.Run("options", func(t *testing.T) {
		got := project(t, projector.Options{
			Receiver:       "c",
			ElementPackage: "html",
			EventParam:     "e",
			Indent:         "\t",
		}, `<b (click)="run(e)"></b>`)
		assert.Contains(t, got, "func _(c *Counter) {\n\t__b := new(html.HTMLPhraseElement)")
		assert.Contains(t, got, "\t\t__b./*{start:4}*/OnClick/*{end:9}*/ = func(e html.Event) { c./*{start:12}*/run(e)/*{end:18}*/ }")
	})
}

func TestProject_MarkersMapBackToTemplate(t *testing.T) {
	template := `<div #box>{{count}}<button (click)="increment()" [disabled]="box.Hidden">+</button>{{ }}</div>`
	tree := markup.Parse(template)
	require.Empty(t, tree.ErrorStrings())

	generated := projector.New(projector.DefaultOptions()).Project(tree, "Counter")
	m, err := position.ParseMarkers(generated)
	require.NoError(t, err)
	require.Len(t, m.Correspondences, 7)

	for _, c := range m.Correspondences {
		assert.GreaterOrEqual(t, c.Template.Start, 0)
		assert.LessOrEqual(t, c.Template.End, len(template))
	}

	byTemplate := map[string]string{}
	for _, c := range m.Correspondences {
		byTemplate[template[c.Template.Start:c.Template.End]] = generated[c.Generated.Start:c.Generated.End]
	}
	assert.Equal(t, "box", byTemplate["box"])
	assert.Equal(t, "count", byTemplate["count"])
	assert.Equal(t, "OnClick", byTemplate["click"])
	assert.Equal(t, "Disabled", byTemplate["disabled"])
	assert.Equal(t, "box.Hidden", byTemplate["box.Hidden"])
	assert.Equal(t, "nil", byTemplate[""])
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ElementType(tag string) string {
	return m.Called(tag).String(0)
}

func (m *mockCatalog) ResolveMemberNames(typeName string) []langsvc.Member {
	args := m.Called(typeName)
	return args.Get(0).([]langsvc.Member)
}

func TestProject_CustomCatalog(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("ElementType", "x-chart").Return("Chart")
	catalog.On("ResolveMemberNames", "Chart").Return([]langsvc.Member{
		{Name: "OnSeriesClick", Callable: true},
		{Name: "DataSet"},
	})

	got := project(t, projector.Options{Elements: catalog}, `<x-chart (seriesclick)="pick(event)" [dataset]="rows"/>`)

	assert.Contains(t, got, "__x_chart := new(dom.Chart)")
	assert.Contains(t, got, "__x_chart./*{start:10}*/OnSeriesClick/*{end:21}*/")
	assert.Contains(t, got, "__x_chart./*{start:38}*/DataSet/*{end:45}*/ = __comp./*{start:48}*/rows/*{end:52}*/")
	catalog.AssertExpectations(t)
}
