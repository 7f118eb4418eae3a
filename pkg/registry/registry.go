// Package registry resolves imports for the Go analysis session. Packages can
// be registered in memory; anything else is loaded with go/packages.
package registry

import (
	"context"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedTypesSizes

var ErrPackageNotFound = errors.Base("package not found")

// Registry manages Go package and type information. It is safe for concurrent use.
type Registry struct {
	// Dir is where go/packages runs; loading is disabled when empty.
	Dir string
	// Overlay is handed to go/packages for unsaved files.
	Overlay map[string][]byte

	fset     *token.FileSet
	mu       sync.Mutex
	packages map[string]*types.Package
	failed   map[string]error
}

// NewRegistry creates a registry that loads missing packages from dir.
func NewRegistry(dir string) *Registry {
	return &Registry{
		Dir:      dir,
		fset:     token.NewFileSet(),
		packages: map[string]*types.Package{},
		failed:   map[string]error{},
	}
}

// NewEmptyRegistry creates a registry that only knows what is added to it.
func NewEmptyRegistry() *Registry {
	return NewRegistry("")
}

// Fset holds the positions of every package the registry loaded or checked.
func (r *Registry) Fset() *token.FileSet {
	return r.fset
}

func (r *Registry) AddPackage(pkg *types.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[pkg.Path()] = pkg
	delete(r.failed, pkg.Path())
}

// AddSource type checks in-memory files as the package at pkgPath and registers it.
func (r *Registry) AddSource(ctx context.Context, pkgPath string, files map[string]string) (*types.Package, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	parsed := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := goparser.ParseFile(r.fset, name, files[name], goparser.ParseComments)
		if err != nil {
			return nil, errors.Errorf("parsing %s: %w", name, err)
		}
		parsed = append(parsed, f)
	}

	conf := types.Config{Importer: r.Importer(ctx)}
	pkg, err := conf.Check(pkgPath, r.fset, parsed, nil)
	if err != nil {
		return nil, errors.Errorf("checking %s: %w", pkgPath, err)
	}

	r.AddPackage(pkg)
	zerolog.Ctx(ctx).Debug().Str("package", pkgPath).Msg("registered in-memory package")

	return pkg, nil
}

// Preload loads every path not yet known in a single go/packages call, so
// that shared dependencies resolve to the same *types.Package.
func (r *Registry) Preload(ctx context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, paths)
}

func (r *Registry) load(ctx context.Context, paths []string) error {
	var missing []string
	for _, p := range paths {
		if p == "unsafe" || p == "C" {
			continue
		}
		if _, ok := r.packages[p]; ok {
			continue
		}
		if _, ok := r.failed[p]; ok {
			continue
		}
		missing = append(missing, p)
	}
	if len(missing) == 0 {
		return nil
	}
	if r.Dir == "" {
		for _, p := range missing {
			r.failed[p] = errors.Errorf("%s: %w", p, ErrPackageNotFound)
		}
		return nil
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     r.Dir,
		Env:     append(os.Environ(), "GO111MODULE=on"),
		Fset:    r.fset,
		Overlay: r.Overlay,
	}

	pkgs, err := packages.Load(cfg, missing...)
	if err != nil {
		return errors.Errorf("loading %v: %w", missing, err)
	}

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg.Types == nil || !pkg.Types.Complete() {
			return
		}
		if _, ok := r.packages[pkg.PkgPath]; !ok {
			r.packages[pkg.PkgPath] = pkg.Types
		}
	})

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			zerolog.Ctx(ctx).Debug().Str("package", pkg.PkgPath).Msgf("package loaded with errors: %v", pkg.Errors)
		}
	}
	for _, p := range missing {
		if _, ok := r.packages[p]; !ok {
			r.failed[p] = errors.Errorf("%s: %w", p, ErrPackageNotFound)
		}
	}

	zerolog.Ctx(ctx).Debug().Strs("requested", missing).Int("known", len(r.packages)).Msg("loaded packages")

	return nil
}

// GetPackage returns a package by path, base name or path suffix.
func (r *Registry) GetPackage(ctx context.Context, packageName string) (*types.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pkg, ok := r.packages[packageName]; ok {
		zerolog.Ctx(ctx).Trace().Str("package", packageName).Msg("found exact match")
		return pkg, nil
	}

	paths := make([]string, 0, len(r.packages))
	for p := range r.packages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if path.Base(p) == packageName || r.packages[p].Name() == packageName {
			zerolog.Ctx(ctx).Trace().Str("packageName", packageName).Str("path", p).Msg("found by name")
			return r.packages[p], nil
		}
	}

	for _, p := range paths {
		if strings.HasSuffix(p, "/"+packageName) {
			zerolog.Ctx(ctx).Trace().Str("packageName", packageName).Str("path", p).Msg("found by suffix")
			return r.packages[p], nil
		}
	}

	zerolog.Ctx(ctx).Trace().Str("packageName", packageName).Msg("not found")
	return nil, errors.Errorf("%s: %w", packageName, ErrPackageNotFound)
}

// Importer binds the registry to ctx for use as a go/types importer.
func (r *Registry) Importer(ctx context.Context) types.ImporterFrom {
	return &importer{ctx: ctx, r: r}
}

type importer struct {
	ctx context.Context
	r   *Registry
}

func (i *importer) Import(path string) (*types.Package, error) {
	return i.ImportFrom(path, "", 0)
}

func (i *importer) ImportFrom(path, _ string, _ types.ImportMode) (*types.Package, error) {
	if path == "unsafe" {
		return types.Unsafe, nil
	}

	i.r.mu.Lock()
	defer i.r.mu.Unlock()

	if err := i.r.load(i.ctx, []string{path}); err != nil {
		return nil, err
	}
	if pkg, ok := i.r.packages[path]; ok {
		return pkg, nil
	}
	if err, ok := i.r.failed[path]; ok {
		return nil, err
	}
	return nil, errors.Errorf("%s: %w", path, ErrPackageNotFound)
}
