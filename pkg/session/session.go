// Package session answers language queries on Go code with go/types. It is
// the isolated secondary session the template service delegates to: it sees
// files through a workspace.Host and knows nothing about templates.
package session

import (
	"context"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/walteh/ngtmpls/pkg/registry"
	"github.com/walteh/ngtmpls/pkg/workspace"
)

// HiddenPrefix marks generated names that completions never offer.
const HiddenPrefix = "__"

// Checker type checks the package a file belongs to and answers queries
// against the result. Results are cached per directory until one of the
// package's file versions changes.
type Checker struct {
	id       string
	host     workspace.Host
	registry *registry.Registry

	mu    sync.Mutex
	cache map[string]*checked
}

func New(host workspace.Host, reg *registry.Registry) *Checker {
	if reg == nil {
		reg = registry.NewEmptyRegistry()
	}
	return &Checker{
		id:       uuid.NewString(),
		host:     host,
		registry: reg,
		cache:    map[string]*checked{},
	}
}

func (c *Checker) ID() string {
	return c.id
}

type checked struct {
	key  string
	fset *token.FileSet
	// deps holds the positions of imported packages
	deps  *token.FileSet
	pkg   *types.Package
	info  *types.Info
	files map[string]*ast.File
	texts map[string]string
	// errs holds syntax and type errors, combined with multierr
	errs error
}

func (c *Checker) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("session", c.id).Logger()
	return &l
}

// check returns the type-checked package holding fileName.
func (c *Checker) check(ctx context.Context, fileName string) (*checked, error) {
	target, err := c.host.SourceFile(ctx, fileName)
	if err != nil {
		return nil, errors.Errorf("session: %w", err)
	}
	fileName = target.Name
	dir := filepath.Dir(fileName)

	names, err := c.host.FileNames(ctx)
	if err != nil {
		return nil, errors.Errorf("session: listing files: %w", err)
	}

	sources := []*workspace.SourceFile{target}
	for _, n := range names {
		if n == fileName || filepath.Dir(n) != dir || !strings.HasSuffix(n, ".go") || strings.HasSuffix(n, "_test.go") {
			continue
		}
		sf, err := c.host.SourceFile(ctx, n)
		if err != nil {
			c.logger(ctx).Debug().Err(err).Str("file", n).Msg("skipping unreadable file")
			continue
		}
		sources = append(sources, sf)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })

	var key strings.Builder
	for _, sf := range sources {
		key.WriteString(sf.Name + "@" + sf.Version + ";")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.cache[dir]; ok && ch.key == key.String() {
		c.logger(ctx).Trace().Str("dir", dir).Msg("package check cache hit")
		return ch, nil
	}

	ch := &checked{
		key:   key.String(),
		fset:  token.NewFileSet(),
		deps:  c.registry.Fset(),
		files: map[string]*ast.File{},
		texts: map[string]string{},
		info: &types.Info{
			Types:      map[ast.Expr]types.TypeAndValue{},
			Defs:       map[*ast.Ident]types.Object{},
			Uses:       map[*ast.Ident]types.Object{},
			Implicits:  map[ast.Node]types.Object{},
			Selections: map[*ast.SelectorExpr]*types.Selection{},
			Scopes:     map[ast.Node]*types.Scope{},
		},
	}

	var parsed []*ast.File
	for _, sf := range sources {
		f, perr := goparser.ParseFile(ch.fset, sf.Name, sf.Text, goparser.ParseComments|goparser.AllErrors)
		if f == nil || f.Name == nil || f.Name.Name == "" {
			continue
		}
		if perr != nil {
			ch.errs = multierr.Append(ch.errs, perr)
		}
		ch.files[sf.Name] = f
		ch.texts[sf.Name] = sf.Text
		parsed = append(parsed, f)
	}

	main, ok := ch.files[fileName]
	if !ok {
		return nil, errors.Errorf("session: %s is not a go file", fileName)
	}

	var pkgFiles []*ast.File
	imports := map[string]bool{}
	for _, f := range parsed {
		if f.Name.Name != main.Name.Name {
			continue
		}
		pkgFiles = append(pkgFiles, f)
		for _, spec := range f.Imports {
			if p, err := strconv.Unquote(spec.Path.Value); err == nil {
				imports[p] = true
			}
		}
	}

	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if err := c.registry.Preload(ctx, paths...); err != nil {
		c.logger(ctx).Debug().Err(err).Msg("preloading imports")
	}

	conf := types.Config{
		Importer:    c.registry.Importer(ctx),
		FakeImportC: true,
		Error: func(err error) {
			ch.errs = multierr.Append(ch.errs, err)
		},
	}
	ch.pkg, _ = conf.Check(dir, ch.fset, pkgFiles, ch.info)

	c.cache[dir] = ch
	c.logger(ctx).Debug().
		Str("dir", dir).
		Int("files", len(pkgFiles)).
		Int("errors", len(multierr.Errors(ch.errs))).
		Msg("checked package")

	return ch, nil
}

// Errors returns the syntax and type errors of the package holding fileName.
func (c *Checker) Errors(ctx context.Context, fileName string) error {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return err
	}
	return ch.errs
}

// Forget drops cached results for the directory holding fileName.
func (c *Checker) Forget(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, filepath.Dir(fileName))
}

// tokenPos converts a byte offset in a checked file to a token.Pos.
func (ch *checked) tokenPos(fileName string, offset int) (token.Pos, *ast.File, bool) {
	f, ok := ch.files[fileName]
	if !ok {
		return token.NoPos, nil, false
	}
	tf := ch.fset.File(f.Pos())
	if tf == nil {
		return token.NoPos, nil, false
	}
	if offset < 0 {
		offset = 0
	}
	if offset > tf.Size() {
		offset = tf.Size()
	}
	return tf.Pos(offset), f, true
}

// position resolves the declaration of obj in whichever file set holds it.
func (ch *checked) position(obj types.Object) token.Position {
	if ch.local(obj) {
		return ch.fset.Position(obj.Pos())
	}
	return ch.deps.Position(obj.Pos())
}

func (ch *checked) local(obj types.Object) bool {
	return obj.Pkg() == nil || obj.Pkg() == ch.pkg
}

// declaringFile returns the checked file declaring obj, if any.
func (ch *checked) declaringFile(obj types.Object) (string, *ast.File) {
	if !ch.local(obj) {
		return "", nil
	}
	return ch.fileOf(obj.Pos())
}

func (ch *checked) fileOf(pos token.Pos) (string, *ast.File) {
	for name, f := range ch.files {
		if f.FileStart <= pos && pos <= f.FileEnd {
			return name, f
		}
	}
	return "", nil
}

// qualifier names other packages by their package name, as source code does.
func (ch *checked) qualifier() types.Qualifier {
	return func(p *types.Package) string {
		if p == ch.pkg {
			return ""
		}
		return p.Name()
	}
}

// syntaxErrors flattens the parser errors held in errs.
func syntaxErrors(errs error) []*scanner.Error {
	var out []*scanner.Error
	for _, err := range multierr.Errors(errs) {
		var list scanner.ErrorList
		if errors.As(err, &list) {
			out = append(out, list...)
		}
	}
	return out
}
