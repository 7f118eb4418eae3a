// Package project wires a workspace, its configuration, the Go session and the
// template service together for the command line tools.
package project

import (
	"context"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/ngtmpls/pkg/config"
	"github.com/walteh/ngtmpls/pkg/diagnostic"
	"github.com/walteh/ngtmpls/pkg/finder"
	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/registry"
	"github.com/walteh/ngtmpls/pkg/service"
	"github.com/walteh/ngtmpls/pkg/session"
	"github.com/walteh/ngtmpls/pkg/workspace"
)

// DefaultConcurrency bounds how many files Check looks at at once.
const DefaultConcurrency = 8

type Project struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Registry  *registry.Registry
	Session   *session.Checker
	Service   *service.Service

	generator diagnostic.Generator
}

type Option func(*options)

type options struct {
	registry *registry.Registry
	config   *config.Config
}

// WithRegistry replaces the go/packages backed registry rooted at the project.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithConfig skips config discovery.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// Open assembles a project rooted at root.
func Open(ctx context.Context, fs afero.Fs, root string, opts ...Option) (*Project, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.config
	if cfg == nil {
		var err error
		cfg, err = config.Discover(ctx, fs, root)
		if err != nil {
			return nil, errors.Errorf("loading config for %s: %w", root, err)
		}
	}

	reg := o.registry
	if reg == nil {
		reg = registry.NewRegistry(root)
	}

	p := &Project{
		Config:    cfg,
		Workspace: workspace.New(fs, root, finder.NewDefaultFinder(fs, cfg.Include, cfg.Exclude)),
		Registry:  reg,
		generator: diagnostic.NewDefaultGenerator(),
	}
	p.Service = service.New(p.Workspace, func(host workspace.Host) service.Session {
		p.Session = session.New(host, reg)
		return p.Session
	}, cfg.ProjectorOptions())

	zerolog.Ctx(ctx).Debug().
		Str("root", p.Workspace.Root()).
		Str("service", p.Service.ID()).
		Str("session", p.Session.ID()).
		Msg("opened project")

	return p, nil
}

// Diagnostics returns the template diagnostics of one file: markup errors
// followed by type errors inside the template.
func (p *Project) Diagnostics(ctx context.Context, fileName string) ([]langsvc.Diagnostic, error) {
	diags, err := p.Service.SyntacticDiagnosticsFilter(ctx, fileName, nil)
	if err != nil {
		return nil, err
	}
	return p.Service.SemanticDiagnosticsFilter(ctx, fileName, diags)
}

// FileReport holds the diagnostics of one file with lines and columns resolved.
type FileReport struct {
	FileName    string
	Diagnostics *diagnostic.Diagnostics
}

// Check reports every file of the workspace that has diagnostics. Files that
// fail do not stop the others; their errors are returned together.
func (p *Project) Check(ctx context.Context, concurrency int) ([]FileReport, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	names, err := p.Workspace.FileNames(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Service.Prune(ctx); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		reports []FileReport
		result  *multierror.Error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range names {
		g.Go(func() error {
			report, err := p.checkFile(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result = multierror.Append(result, errors.Errorf("checking %s: %w", name, err))
				return nil
			}
			if report != nil {
				reports = append(reports, *report)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].FileName < reports[j].FileName })
	return reports, result.ErrorOrNil()
}

func (p *Project) checkFile(ctx context.Context, name string) (*FileReport, error) {
	diags, err := p.Diagnostics(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(diags) == 0 {
		return nil, nil
	}
	sf, err := p.Workspace.SourceFile(ctx, name)
	if err != nil {
		return nil, err
	}
	out, err := p.generator.Generate(ctx, sf.Text, diags)
	if err != nil {
		return nil, err
	}
	return &FileReport{FileName: sf.Name, Diagnostics: out}, nil
}

// Merge flattens reports into one set of diagnostics.
func Merge(reports []FileReport) *diagnostic.Diagnostics {
	out := &diagnostic.Diagnostics{
		Errors:   make([]diagnostic.Diagnostic, 0),
		Warnings: make([]diagnostic.Diagnostic, 0),
	}
	for _, r := range reports {
		out.Merge(r.Diagnostics)
	}
	return out
}
