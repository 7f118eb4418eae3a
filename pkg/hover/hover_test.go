package hover_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/hover"
	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/position"
)

func parts(s string) []langsvc.SymbolDisplayPart {
	return []langsvc.SymbolDisplayPart{{Text: s, Kind: "text"}}
}

func TestFormatQuickInfo(t *testing.T) {
	text := "func (Counter) Template() string {\n\treturn `<p>{{Count}}</p>`\n}\n"

	tests := []struct {
		name    string
		info    *langsvc.QuickInfo
		want    []string
		rng     position.Range
		wantErr bool
	}{
		{
			name: "field with documentation",
			info: &langsvc.QuickInfo{
				Kind:          langsvc.KindField,
				TextSpan:      langsvc.TextSpan{Start: 49, Length: 5},
				DisplayParts:  parts("field Count int"),
				Documentation: parts("Count is the number of clicks.\n"),
			},
			want: []string{"```go\nfield Count int\n```", "Count is the number of clicks."},
			rng:  position.Range{Start: position.Place{Line: 2, Character: 15}, End: position.Place{Line: 2, Character: 20}},
		},
		{
			name: "no documentation",
			info: &langsvc.QuickInfo{
				TextSpan:     langsvc.TextSpan{Start: 0, Length: 4},
				DisplayParts: parts("func"),
			},
			want: []string{"```go\nfunc\n```"},
			rng:  position.Range{Start: position.Place{Line: 1, Character: 1}, End: position.Place{Line: 1, Character: 5}},
		},
		{
			name:    "nil",
			wantErr: true,
		},
		{
			name: "span outside text",
			info: &langsvc.QuickInfo{
				TextSpan:     langsvc.TextSpan{Start: 100, Length: 5},
				DisplayParts: parts("x"),
			},
			wantErr: true,
		},
		{
			name:    "nothing to display",
			info:    &langsvc.QuickInfo{TextSpan: langsvc.TextSpan{Start: 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hover.FormatQuickInfo(context.Background(), tt.info, text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Content)
			assert.Equal(t, tt.rng, got.Range)
			assert.Equal(t, tt.info.TextSpan, got.Span)
		})
	}
}

func TestMarkdown(t *testing.T) {
	h := &hover.HoverInfo{Content: []string{"a", "b"}}
	assert.Equal(t, "a\n\nb", h.Markdown())
}

func TestFormatEntryDetails(t *testing.T) {
	assert.Equal(t, "", hover.FormatEntryDetails(nil))
	assert.Equal(t, "```go\nOnClick func(dom.Event)\n```", hover.FormatEntryDetails(&langsvc.CompletionEntryDetails{
		Name:         "click",
		DisplayParts: parts("OnClick func(dom.Event)"),
	}))
	assert.Equal(t, "```go\nx\n```\n\ndoc", hover.FormatEntryDetails(&langsvc.CompletionEntryDetails{
		DisplayParts:  parts("x"),
		Documentation: parts("doc"),
	}))
}
