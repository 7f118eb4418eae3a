// Package service answers editor queries on Go files that embed templates.
// A query landing in a template is translated into the generated Go code,
// answered by a Go analysis session, and mapped back.
package service

import (
	"context"
	"strconv"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/cache"
	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/parser"
	"github.com/walteh/ngtmpls/pkg/projector"
	"github.com/walteh/ngtmpls/pkg/workspace"
)

// Session answers Go language queries. It sees projected files through the
// host it was created with and never calls back into the Service.
type Session interface {
	Completions(ctx context.Context, fileName string, pos int) (*langsvc.CompletionInfo, error)
	CompletionEntryDetails(ctx context.Context, fileName string, pos int, name string) (*langsvc.CompletionEntryDetails, error)
	QuickInfo(ctx context.Context, fileName string, pos int) (*langsvc.QuickInfo, error)
	Definition(ctx context.Context, fileName string, pos int) ([]langsvc.DefinitionInfo, error)
	Diagnostics(ctx context.Context, fileName string) ([]langsvc.Diagnostic, error)
	MembersOf(ctx context.Context, fileName, typeName string) ([]langsvc.Member, error)
}

// SessionFactory creates the Go session over the projected host.
type SessionFactory func(host workspace.Host) Session

type Service struct {
	id        string
	host      workspace.Host
	projector *projector.Projector
	cache     *cache.Cache
	session   Session
}

// New creates a service over host. The session is created once, against a
// host that serves projected text for every file with a cached projection.
func New(host workspace.Host, newSession SessionFactory, opts projector.Options) *Service {
	c := cache.New()
	return &Service{
		id:        xid.New().String(),
		host:      host,
		projector: projector.New(opts),
		cache:     c,
		session:   newSession(&ProjectedHost{Base: host, Cache: c}),
	}
}

func (s *Service) ID() string {
	return s.id
}

func (s *Service) Cache() *cache.Cache {
	return s.cache
}

func (s *Service) Projector() *projector.Projector {
	return s.projector
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", s.id).Logger()
	return &l
}

// target is a query resolved to a projected template.
type target struct {
	source   *workspace.SourceFile
	file     *parser.ParsedFile
	template *parser.Template
	proj     *cache.Projection
}

func (s *Service) open(ctx context.Context, fileName string) (*workspace.SourceFile, *parser.ParsedFile, error) {
	sf, err := s.host.SourceFile(ctx, fileName)
	if err != nil {
		return nil, nil, errors.Errorf("resolving %s: %w", fileName, err)
	}
	file, err := parser.ParseFile(ctx, sf.Name, sf.Text)
	if err != nil {
		return nil, nil, errors.Errorf("parsing %s: %w", sf.Name, err)
	}
	return sf, file, nil
}

// resolve finds the template at pos and makes sure its projection is current.
// It returns nil when pos is outside the projected template.
func (s *Service) resolve(ctx context.Context, fileName string, pos int) (*target, error) {
	sf, file, err := s.open(ctx, fileName)
	if err != nil {
		return nil, err
	}

	tmpl := file.TemplateAt(pos)
	if tmpl == nil {
		s.logger(ctx).Trace().Str("file", sf.Name).Int("pos", pos).Msg("position is not in a template")
		return nil, nil
	}
	if tmpl != file.First() {
		// TODO: project every template of a file, not only the first.
		s.logger(ctx).Debug().Str("file", sf.Name).Str("component", tmpl.ComponentType).Msg("only the first template of a file is projected")
		return nil, nil
	}

	proj, err := s.ensure(ctx, sf, file)
	if err != nil || proj == nil {
		return nil, err
	}
	return &target{source: sf, file: file, template: proj.Template, proj: proj}, nil
}

func (s *Service) ensure(ctx context.Context, sf *workspace.SourceFile, file *parser.ParsedFile) (*cache.Projection, error) {
	proj, rebuilt, err := s.cache.GetOrBuild(ctx, sf.Name, sf.Version, func(ctx context.Context) (*cache.Projection, error) {
		return cache.Build(ctx, file, sf.Version, s.projector)
	})
	if err != nil {
		return nil, err
	}
	if rebuilt {
		s.logger(ctx).Debug().Str("file", sf.Name).Uint64("generation", s.cache.Generation()).Msg("projection rebuilt")
	}
	return proj, nil
}

// Projection returns the current projection of fileName, or nil when the
// file has no template.
func (s *Service) Projection(ctx context.Context, fileName string) (*cache.Projection, error) {
	sf, file, err := s.open(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return s.ensure(ctx, sf, file)
}

// Forget drops what is cached for fileName.
func (s *Service) Forget(fileName string) {
	s.cache.Delete(fileName)
	if f, ok := s.session.(interface{ Forget(string) }); ok {
		f.Forget(fileName)
	}
}

// Prune drops projections of files the host no longer lists.
func (s *Service) Prune(ctx context.Context) error {
	names, err := s.host.FileNames(ctx)
	if err != nil {
		return errors.Errorf("listing files: %w", err)
	}
	for _, name := range s.cache.Prune(names) {
		s.logger(ctx).Debug().Str("file", name).Msg("pruned projection")
	}
	return nil
}

// ProjectedHost serves the generated text of files whose projection matches
// the base host's current version. Other files pass through.
type ProjectedHost struct {
	Base  workspace.Host
	Cache *cache.Cache
}

var _ workspace.Host = (*ProjectedHost)(nil)

func (h *ProjectedHost) FileNames(ctx context.Context) ([]string, error) {
	return h.Base.FileNames(ctx)
}

func (h *ProjectedHost) SourceFile(ctx context.Context, name string) (*workspace.SourceFile, error) {
	sf, err := h.Base.SourceFile(ctx, name)
	if err != nil {
		return nil, err
	}
	p, ok := h.Cache.Lookup(sf.Name, sf.Version)
	if !ok {
		return sf, nil
	}
	return &workspace.SourceFile{
		Name:    sf.Name,
		Text:    p.GeneratedText,
		Version: sf.Version + "." + strconv.FormatUint(p.Generation, 10),
	}, nil
}
