package service

import (
	"context"
	"strings"

	"github.com/walteh/ngtmpls/pkg/completion"
	"github.com/walteh/ngtmpls/pkg/dom"
	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/projector"
)

// Completions answers from the markup where it can and otherwise asks the
// session at the generated position.
func (s *Service) Completions(ctx context.Context, fileName string, pos int) (*langsvc.CompletionInfo, error) {
	t, err := s.resolve(ctx, fileName, pos)
	if err != nil || t == nil {
		return nil, err
	}

	cc := s.completionContext(t, pos)
	if cc.Location == completion.LocationExpression && cc.AfterDot {
		gen := t.proj.Mapper.TemplateToGenerated(pos)
		s.logger(ctx).Trace().Int("pos", pos).Int("generated", gen).Str("before_dot", cc.ExpressionBeforeDot()).Msg("delegating member completion")
		return s.session.Completions(ctx, t.source.Name, gen)
	}
	return completion.Complete(ctx, cc, &source{s: s, t: t})
}

// CompletionEntryDetails describes one entry returned by Completions.
func (s *Service) CompletionEntryDetails(ctx context.Context, fileName string, pos int, name string) (*langsvc.CompletionEntryDetails, error) {
	t, err := s.resolve(ctx, fileName, pos)
	if err != nil || t == nil {
		return nil, err
	}

	cc := s.completionContext(t, pos)
	switch cc.Location {
	case completion.LocationExpression:
		return s.session.CompletionEntryDetails(ctx, t.source.Name, t.proj.Mapper.TemplateToGenerated(pos), name)
	case completion.LocationTagName, completion.LocationEndTag:
		return s.elementDetails(name), nil
	case completion.LocationAttributeName:
		return s.attributeDetails(ctx, t, cc, name)
	}
	return nil, nil
}

// QuickInfo describes the template expression at pos.
func (s *Service) QuickInfo(ctx context.Context, fileName string, pos int) (*langsvc.QuickInfo, error) {
	t, err := s.resolve(ctx, fileName, pos)
	if err != nil || t == nil {
		return nil, err
	}

	qi, err := s.session.QuickInfo(ctx, t.source.Name, t.proj.Mapper.TemplateToGenerated(pos))
	if err != nil || qi == nil {
		return nil, err
	}
	qi.TextSpan = s.mapSpan(t, qi.TextSpan)
	return qi, nil
}

// Definition locates the declaration of the template expression at pos.
// Results in other files are returned unchanged.
func (s *Service) Definition(ctx context.Context, fileName string, pos int) ([]langsvc.DefinitionInfo, error) {
	t, err := s.resolve(ctx, fileName, pos)
	if err != nil || t == nil {
		return nil, err
	}

	defs, err := s.session.Definition(ctx, t.source.Name, t.proj.Mapper.TemplateToGenerated(pos))
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].FileName == t.source.Name {
			defs[i].TextSpan = s.mapSpan(t, defs[i].TextSpan)
		}
	}
	return defs, nil
}

// MarkupErrorCode is the diagnostic code of template markup errors.
const MarkupErrorCode = 1

// DiagnosticSource names this service on its diagnostics.
const DiagnosticSource = "ngtmpls"

// SyntacticDiagnosticsFilter appends the markup errors of every template in
// fileName to previous, as warnings at file offsets.
func (s *Service) SyntacticDiagnosticsFilter(ctx context.Context, fileName string, previous []langsvc.Diagnostic) ([]langsvc.Diagnostic, error) {
	sf, file, err := s.open(ctx, fileName)
	if err != nil {
		return previous, err
	}

	out := previous
	for _, tmpl := range file.Templates {
		tree := markup.Parse(tmpl.Text)
		for _, e := range tree.Errors {
			out = append(out, langsvc.Diagnostic{
				FileName: sf.Name,
				Start:    tmpl.Start + e.Start,
				Length:   e.End - e.Start,
				Message:  e.Message,
				Category: langsvc.CategoryWarning,
				Code:     MarkupErrorCode,
				Source:   DiagnosticSource,
			})
		}
	}
	return out, nil
}

// SemanticDiagnosticsFilter appends the Go errors found in the projected
// template of fileName to previous, mapped back into the template. Errors
// outside the generated code are left to the caller's own checker.
func (s *Service) SemanticDiagnosticsFilter(ctx context.Context, fileName string, previous []langsvc.Diagnostic) ([]langsvc.Diagnostic, error) {
	sf, file, err := s.open(ctx, fileName)
	if err != nil {
		return previous, err
	}
	proj, err := s.ensure(ctx, sf, file)
	if err != nil || proj == nil {
		return previous, err
	}

	diags, err := s.session.Diagnostics(ctx, sf.Name)
	if err != nil {
		return previous, err
	}

	out := previous
	for _, d := range diags {
		if d.FileName != sf.Name || !proj.Mapper.IsInGeneratedCode(d.Start) {
			continue
		}
		d.Start, d.Length = proj.Mapper.MapSpanToTemplate(d.Start, d.Length)
		d.Source = DiagnosticSource
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) mapSpan(t *target, span langsvc.TextSpan) langsvc.TextSpan {
	start, length := t.proj.Mapper.MapSpanToTemplate(span.Start, span.Length)
	return langsvc.TextSpan{Start: start, Length: length}
}

func (s *Service) completionContext(t *target, pos int) *completion.Context {
	cc := completion.NewContext(t.proj.Tree, pos-t.template.Start)
	cc.EventParam = s.projector.Options().EventParam
	return cc
}

func (s *Service) elementDetails(tag string) *langsvc.CompletionEntryDetails {
	opts := s.projector.Options()
	typ := opts.Elements.ElementType(tag)
	return &langsvc.CompletionEntryDetails{
		Name: tag,
		Kind: langsvc.KindElement,
		DisplayParts: []langsvc.SymbolDisplayPart{
			{Text: "<" + tag + ">", Kind: string(langsvc.KindElement)},
			{Text: " ", Kind: "space"},
			{Text: opts.ElementPackage + "." + typ, Kind: string(langsvc.KindType)},
		},
	}
}

func (s *Service) attributeDetails(ctx context.Context, t *target, cc *completion.Context, name string) (*langsvc.CompletionEntryDetails, error) {
	if cc.Binding == projector.BindingDirective {
		return &langsvc.CompletionEntryDetails{
			Name:         name,
			Kind:         langsvc.KindDirective,
			DisplayParts: []langsvc.SymbolDisplayPart{{Text: "*" + name, Kind: string(langsvc.KindDirective)}},
		}, nil
	}

	tag := cc.Tree.Nodes[cc.Tree.Nodes[cc.Node].Parent].Name
	members, err := (&source{s: s, t: t}).ElementMembers(ctx, tag)
	if err != nil {
		return nil, err
	}
	for _, e := range completion.AttributeEntries(cc.Binding, members) {
		if e.Name != name {
			continue
		}
		for _, m := range members {
			field := name
			if cc.Binding == projector.BindingEvent {
				field = projector.EventPrefix + name
			}
			if m.Method || !strings.EqualFold(m.Name, field) {
				continue
			}
			return &langsvc.CompletionEntryDetails{
				Name: name,
				Kind: e.Kind,
				DisplayParts: []langsvc.SymbolDisplayPart{
					{Text: m.Name, Kind: string(langsvc.KindField)},
					{Text: " ", Kind: "space"},
					{Text: m.Type, Kind: string(langsvc.KindType)},
				},
			}, nil
		}
	}
	return nil, nil
}

// source feeds completion with the element catalog and the Go session.
type source struct {
	s *Service
	t *target
}

func (c *source) Tags() []string {
	if tagged, ok := c.s.projector.Options().Elements.(interface{ Tags() []string }); ok {
		return tagged.Tags()
	}
	return dom.Tags()
}

// ElementMembers asks the session first so custom element types declared in
// the workspace are seen, and falls back to the catalog.
func (c *source) ElementMembers(ctx context.Context, tag string) ([]langsvc.Member, error) {
	opts := c.s.projector.Options()
	typ := opts.Elements.ElementType(tag)
	members, err := c.s.session.MembersOf(ctx, c.t.source.Name, opts.ElementPackage+"."+typ)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		members = opts.Elements.ResolveMemberNames(typ)
	}
	return members, nil
}

func (c *source) ComponentMembers(ctx context.Context) ([]langsvc.Member, error) {
	return c.s.session.MembersOf(ctx, c.t.source.Name, c.t.template.ComponentType)
}
