// Package parser finds component templates in Go source files.
//
// A template is the raw string literal returned by a method named Template
// that takes no arguments and returns a string:
//
//	func (c *Counter) Template() string {
//		return `<div>{{count}}</div>`
//	}
//
// The receiver's base type is the component the template binds against.
package parser

import (
	"context"
	"go/ast"
	goparser "go/parser"
	"go/token"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// MethodName is the method that declares a component's template.
const MethodName = "Template"

type Template struct {
	ComponentType string
	// Start is the file offset of the first template character and End the
	// offset just past the last one. The back-quotes are not included.
	Start int
	End   int
	Text  string
	// InsertionPoint is the offset just past the declaring method, where
	// generated code for the template is spliced in.
	InsertionPoint int
}

// Contains reports whether pos lies in the template, both ends included.
func (t *Template) Contains(pos int) bool {
	return pos >= t.Start && pos <= t.End
}

type ParsedFile struct {
	Name      string
	Text      string
	Package   string
	Fset      *token.FileSet
	File      *ast.File
	Templates []*Template
	// SyntaxError is set when the file only parsed partially.
	SyntaxError error
}

// ParseFile parses Go source and collects its templates in source order.
// Syntax errors are tolerated as long as a partial file comes back.
func ParseFile(ctx context.Context, name, text string) (*ParsedFile, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, name, text, goparser.ParseComments|goparser.AllErrors)
	if file == nil || file.Name == nil || file.Name.Name == "" {
		// go/parser hands back an empty file when there is no package clause
		return nil, errors.Errorf("parsing %s: %w", name, err)
	}

	pf := &ParsedFile{
		Name:        name,
		Text:        text,
		Package:     file.Name.Name,
		Fset:        fset,
		File:        file,
		SyntaxError: err,
	}
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("file", name).Msg("go source only parsed partially")
	}

	tf := fset.File(file.Pos())
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || !isTemplateMethod(fd) {
			continue
		}
		lit := returnedRawString(fd)
		if lit == nil {
			continue
		}
		typ := receiverTypeName(fd)
		if typ == "" {
			continue
		}

		start := tf.Offset(lit.Pos()) + 1
		end := tf.Offset(lit.End()) - 1
		if end < start || end > len(text) {
			// unterminated literal
			continue
		}
		pf.Templates = append(pf.Templates, &Template{
			ComponentType:  typ,
			Start:          start,
			End:            end,
			Text:           text[start:end],
			InsertionPoint: tf.Offset(fd.End()),
		})
	}

	zerolog.Ctx(ctx).Trace().Str("file", name).Int("templates", len(pf.Templates)).Msg("parsed go source")

	return pf, nil
}

// TemplateAt returns the template holding pos, or nil.
func (f *ParsedFile) TemplateAt(pos int) *Template {
	for _, t := range f.Templates {
		if t.Contains(pos) {
			return t
		}
	}
	return nil
}

// First returns the first template of the file, or nil.
func (f *ParsedFile) First() *Template {
	if len(f.Templates) == 0 {
		return nil
	}
	return f.Templates[0]
}

func isTemplateMethod(fd *ast.FuncDecl) bool {
	if fd.Recv == nil || len(fd.Recv.List) != 1 || fd.Name.Name != MethodName || fd.Body == nil {
		return false
	}
	if fd.Type.Params.NumFields() != 0 || fd.Type.Results.NumFields() != 1 {
		return false
	}
	ident, ok := fd.Type.Results.List[0].Type.(*ast.Ident)
	return ok && ident.Name == "string"
}

// returnedRawString finds the first back-quoted literal returned by fd.
func returnedRawString(fd *ast.FuncDecl) *ast.BasicLit {
	var found *ast.BasicLit
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		ret, ok := n.(*ast.ReturnStmt)
		if !ok || len(ret.Results) != 1 {
			return true
		}
		lit, ok := ret.Results[0].(*ast.BasicLit)
		if ok && lit.Kind == token.STRING && len(lit.Value) >= 2 && lit.Value[0] == '`' {
			found = lit
		}
		return true
	})
	return found
}

func receiverTypeName(fd *ast.FuncDecl) string {
	expr := fd.Recv.List[0].Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}
