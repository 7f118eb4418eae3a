// Package hover renders quick info results as markdown for editor tooltips.
package hover

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/position"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display
	Content []string
	Span    langsvc.TextSpan
	// Range is Span converted to lines and columns of the hovered file.
	Range position.Range
}

// Markdown joins the content sections.
func (h *HoverInfo) Markdown() string {
	return strings.Join(h.Content, "\n\n")
}

// FormatQuickInfo turns a quick info result into hover content. text is the
// file the span refers to.
func FormatQuickInfo(ctx context.Context, info *langsvc.QuickInfo, text string) (*HoverInfo, error) {
	if info == nil {
		return nil, errors.New("quick info cannot be nil")
	}
	if info.TextSpan.Start < 0 || info.TextSpan.End() > len(text) {
		return nil, errors.Errorf("quick info span %s outside of text (len %d)", info.TextSpan, len(text))
	}

	display := langsvc.DisplayString(info.DisplayParts)
	if display == "" {
		return nil, errors.Errorf("quick info at %s has nothing to display", info.TextSpan)
	}

	content := []string{codeBlock(display)}
	if doc := strings.TrimSpace(langsvc.DisplayString(info.Documentation)); doc != "" {
		content = append(content, doc)
	}

	zerolog.Ctx(ctx).Debug().Str("kind", string(info.Kind)).Stringer("span", info.TextSpan).Msg("formatted hover")

	return &HoverInfo{
		Content: content,
		Span:    info.TextSpan,
		Range:   position.GetRange(text, info.TextSpan.Start, info.TextSpan.End()),
	}, nil
}

// FormatEntryDetails renders the details of a completion entry the same way.
func FormatEntryDetails(details *langsvc.CompletionEntryDetails) string {
	if details == nil {
		return ""
	}
	out := codeBlock(langsvc.DisplayString(details.DisplayParts))
	if doc := strings.TrimSpace(langsvc.DisplayString(details.Documentation)); doc != "" {
		out += "\n\n" + doc
	}
	return out
}

func codeBlock(s string) string {
	return "```go\n" + s + "\n```"
}
