// Package completion answers completion requests that the template markup
// can answer by itself, and tells the caller when the Go session must.
package completion

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/projector"
)

// ClosePrefix starts the entry offered to close the enclosing tag.
const ClosePrefix = "/"

// Directives are the structural directives offered after '*'.
var Directives = []string{"ngFor", "ngIf", "ngSwitch"}

// Source supplies what completions need to know about elements and the component.
type Source interface {
	Tags() []string
	ElementMembers(ctx context.Context, tag string) ([]langsvc.Member, error)
	ComponentMembers(ctx context.Context) ([]langsvc.Member, error)
}

// Complete returns the completions for c. It returns nil when there is
// nothing to offer or when the position follows a dot, in which case the
// Go session has to answer.
func Complete(ctx context.Context, c *Context, src Source) (*langsvc.CompletionInfo, error) {
	zerolog.Ctx(ctx).Trace().
		Int("pos", c.Pos).
		Str("location", c.Location.String()).
		Str("binding", c.Binding.String()).
		Bool("after_dot", c.AfterDot).
		Msg("template completion")

	var entries []langsvc.CompletionEntry
	switch c.Location {
	case LocationTagName:
		entries = ElementEntries(src.Tags(), c.ParentName())
	case LocationEndTag:
		entries = ClosingTagEntry(c.ParentName())
	case LocationAttributeName:
		switch c.Binding {
		case projector.BindingDirective:
			entries = DirectiveEntries()
		case projector.BindingEvent, projector.BindingProperty:
			tag := c.Tree.Nodes[c.Tree.Nodes[c.Node].Parent].Name
			members, err := src.ElementMembers(ctx, tag)
			if err != nil {
				return nil, errors.Errorf("listing members of <%s>: %w", tag, err)
			}
			entries = AttributeEntries(c.Binding, members)
		}
	case LocationExpression:
		if c.AfterDot {
			return nil, nil
		}
		members, err := src.ComponentMembers(ctx)
		if err != nil {
			return nil, errors.Errorf("listing component members: %w", err)
		}
		entries = append(LocalEntries(c.Locals()), MemberEntries(members)...)
	}

	if len(entries) == 0 {
		return nil, nil
	}
	return &langsvc.CompletionInfo{
		IsMemberCompletion:      c.Location == LocationExpression,
		IsNewIdentifierLocation: c.Location == LocationTagName,
		Entries:                 entries,
	}, nil
}

// ElementEntries offers every tag name, and a closer for parent when inside one.
func ElementEntries(tags []string, parent string) []langsvc.CompletionEntry {
	out := make([]langsvc.CompletionEntry, 0, len(tags)+1)
	for _, tag := range tags {
		out = append(out, langsvc.CompletionEntry{Name: tag, Kind: langsvc.KindElement, SortText: "1"})
	}
	if parent != "" {
		out = append(out, langsvc.CompletionEntry{Name: ClosePrefix + parent, Kind: langsvc.KindElement, SortText: "0"})
	}
	return out
}

// ClosingTagEntry offers the name an end tag is expected to close.
func ClosingTagEntry(parent string) []langsvc.CompletionEntry {
	if parent == "" {
		return nil
	}
	return []langsvc.CompletionEntry{{Name: parent, Kind: langsvc.KindElement, SortText: "0"}}
}

func DirectiveEntries() []langsvc.CompletionEntry {
	out := make([]langsvc.CompletionEntry, 0, len(Directives))
	for _, d := range Directives {
		out = append(out, langsvc.CompletionEntry{Name: d, Kind: langsvc.KindDirective, SortText: "0"})
	}
	return out
}

// AttributeEntries turns element members into attribute names. Event
// bindings get the callable On* fields without the prefix, property bindings
// get the non-callable fields.
func AttributeEntries(b projector.Binding, members []langsvc.Member) []langsvc.CompletionEntry {
	seen := map[string]bool{}
	var out []langsvc.CompletionEntry
	add := func(name string, kind langsvc.ElementKind) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, langsvc.CompletionEntry{Name: name, Kind: kind, SortText: "0"})
	}

	for _, m := range members {
		switch b {
		case projector.BindingEvent:
			if m.Callable && !m.Method && strings.HasPrefix(m.Name, projector.EventPrefix) {
				add(strings.ToLower(strings.TrimPrefix(m.Name, projector.EventPrefix)), langsvc.KindEvent)
			}
		case projector.BindingProperty:
			if !m.Callable {
				add(lowerFirst(m.Name), langsvc.KindProperty)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MemberEntries offers the fields and methods of the component.
func MemberEntries(members []langsvc.Member) []langsvc.CompletionEntry {
	out := make([]langsvc.CompletionEntry, 0, len(members))
	for _, m := range members {
		kind := langsvc.KindField
		if m.Method {
			kind = langsvc.KindMethod
		}
		out = append(out, langsvc.CompletionEntry{Name: m.Name, Kind: kind, SortText: "1"})
	}
	return out
}

// LocalEntries offers template locals ahead of component members.
func LocalEntries(names []string) []langsvc.CompletionEntry {
	out := make([]langsvc.CompletionEntry, 0, len(names))
	for _, n := range names {
		out = append(out, langsvc.CompletionEntry{Name: n, Kind: langsvc.KindLocal, SortText: "0"})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]-'A'+'a') + s[1:]
}
