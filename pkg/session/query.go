package session

import (
	"context"
	"go/ast"
	"go/types"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/walteh/ngtmpls/pkg/langsvc"
)

// Completions lists members after a '.', otherwise the names in scope at pos.
func (c *Checker) Completions(ctx context.Context, fileName string, pos int) (*langsvc.CompletionInfo, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}
	fileName = c.canonical(ctx, fileName)

	if dot, ok := ch.dotBefore(fileName, pos); ok {
		objs, ok := ch.selectorMembers(fileName, dot)
		if !ok {
			c.logger(ctx).Trace().Int("pos", pos).Msg("no selector before dot")
			return nil, nil
		}
		return &langsvc.CompletionInfo{
			IsMemberCompletion: true,
			Entries:            ch.entries(objs, "0"),
		}, nil
	}

	return &langsvc.CompletionInfo{
		IsNewIdentifierLocation: true,
		Entries:                 ch.scopeEntries(fileName, pos),
	}, nil
}

// CompletionEntryDetails describes the completion entry called name at pos.
func (c *Checker) CompletionEntryDetails(ctx context.Context, fileName string, pos int, name string) (*langsvc.CompletionEntryDetails, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}
	fileName = c.canonical(ctx, fileName)

	var obj types.Object
	if dot, ok := ch.dotBefore(fileName, pos); ok {
		objs, _ := ch.selectorMembers(fileName, dot)
		for _, o := range objs {
			if o.Name() == name {
				obj = o
				break
			}
		}
	} else if tp, _, ok := ch.tokenPos(fileName, pos); ok {
		if scope := ch.pkg.Scope().Innermost(tp); scope != nil {
			_, obj = scope.LookupParent(name, tp)
		}
	}
	if obj == nil {
		return nil, nil
	}

	return &langsvc.CompletionEntryDetails{
		Name:          obj.Name(),
		Kind:          kindOf(obj),
		DisplayParts:  ch.displayParts(obj),
		Documentation: ch.documentation(obj),
	}, nil
}

// QuickInfo describes the identifier at pos.
func (c *Checker) QuickInfo(ctx context.Context, fileName string, pos int) (*langsvc.QuickInfo, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}
	fileName = c.canonical(ctx, fileName)

	id, obj := ch.objectAt(fileName, pos)
	if obj == nil {
		return nil, nil
	}
	return &langsvc.QuickInfo{
		Kind:          kindOf(obj),
		TextSpan:      langsvc.TextSpan{Start: ch.fset.Position(id.Pos()).Offset, Length: len(id.Name)},
		DisplayParts:  ch.displayParts(obj),
		Documentation: ch.documentation(obj),
	}, nil
}

// Definition locates the declaration of the identifier at pos.
func (c *Checker) Definition(ctx context.Context, fileName string, pos int) ([]langsvc.DefinitionInfo, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}
	fileName = c.canonical(ctx, fileName)

	_, obj := ch.objectAt(fileName, pos)
	if obj == nil || !obj.Pos().IsValid() {
		return nil, nil
	}

	def := langsvc.DefinitionInfo{
		Kind:          kindOf(obj),
		Name:          obj.Name(),
		ContainerName: containerName(obj),
		TextSpan:      langsvc.TextSpan{Length: len(obj.Name())},
	}

	p := ch.position(obj)
	if name, _ := ch.declaringFile(obj); name != "" {
		def.FileName = name
		def.TextSpan.Start = p.Offset
		return []langsvc.DefinitionInfo{def}, nil
	}

	// declared in an imported package; export data only keeps lines reliably
	def.FileName = p.Filename
	def.TextSpan.Start = p.Offset
	if sf, err := c.host.SourceFile(ctx, p.Filename); err == nil {
		def.FileName = sf.Name
		def.TextSpan.Start = offsetOfName(sf.Text, p.Line, p.Column, obj.Name())
	}
	return []langsvc.DefinitionInfo{def}, nil
}

// Diagnostics reports the syntax and type errors located in fileName.
func (c *Checker) Diagnostics(ctx context.Context, fileName string) ([]langsvc.Diagnostic, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}
	fileName = c.canonical(ctx, fileName)
	text := ch.texts[fileName]

	var out []langsvc.Diagnostic
	for _, se := range syntaxErrors(ch.errs) {
		if se.Pos.Filename != fileName {
			continue
		}
		out = append(out, langsvc.Diagnostic{
			FileName: fileName,
			Start:    se.Pos.Offset,
			Length:   tokenLength(text, se.Pos.Offset),
			Message:  se.Msg,
			Category: langsvc.CategoryError,
			Code:     CodeSyntax,
			Source:   "go/parser",
		})
	}
	for _, err := range multierr.Errors(ch.errs) {
		te, ok := err.(types.Error)
		if !ok {
			continue
		}
		p := te.Fset.Position(te.Pos)
		if p.Filename != fileName {
			continue
		}
		category := langsvc.CategoryError
		if te.Soft {
			category = langsvc.CategoryWarning
		}
		out = append(out, langsvc.Diagnostic{
			FileName: fileName,
			Start:    p.Offset,
			Length:   tokenLength(text, p.Offset),
			Message:  te.Msg,
			Category: category,
			Code:     CodeType,
			Source:   "go/types",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

const (
	CodeSyntax = 2
	CodeType   = 3
)

// MembersOf lists the fields and methods of a type visible from the package
// of fileName. typeName is either local ("Counter") or qualified by an
// imported package name ("dom.HTMLDivElement").
func (c *Checker) MembersOf(ctx context.Context, fileName, typeName string) ([]langsvc.Member, error) {
	ch, err := c.check(ctx, fileName)
	if err != nil {
		return nil, err
	}

	obj := ch.lookupType(typeName)
	if obj == nil {
		return nil, nil
	}

	var out []langsvc.Member
	for _, o := range ch.members(types.NewPointer(obj.Type())) {
		_, isFunc := o.(*types.Func)
		_, sig := o.Type().Underlying().(*types.Signature)
		out = append(out, langsvc.Member{
			Name:     o.Name(),
			Callable: isFunc || sig,
			Method:   isFunc,
			Type:     types.TypeString(o.Type(), ch.qualifier()),
		})
	}
	return out, nil
}

func (c *Checker) canonical(ctx context.Context, fileName string) string {
	if sf, err := c.host.SourceFile(ctx, fileName); err == nil {
		return sf.Name
	}
	return fileName
}

func (ch *checked) lookupType(typeName string) *types.TypeName {
	if ch.pkg == nil {
		return nil
	}
	scope := ch.pkg.Scope()
	if qual, name, ok := strings.Cut(typeName, "."); ok {
		scope = nil
		for _, imp := range ch.pkg.Imports() {
			if imp.Name() == qual {
				scope = imp.Scope()
				break
			}
		}
		if scope == nil {
			return nil
		}
		typeName = name
	}
	tn, _ := scope.Lookup(typeName).(*types.TypeName)
	return tn
}

// dotBefore reports the offset of a '.' that the identifier being typed at
// pos follows. Block comments between the dot and the identifier are skipped.
func (ch *checked) dotBefore(fileName string, pos int) (int, bool) {
	text := ch.texts[fileName]
	if pos > len(text) {
		pos = len(text)
	}
	start := pos
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	for strings.HasSuffix(text[:start], "*/") {
		open := strings.LastIndex(text[:start-2], "/*")
		if open < 0 {
			break
		}
		start = open
	}
	if start > 0 && text[start-1] == '.' {
		return start - 1, true
	}
	return 0, false
}

// selectorMembers lists what can follow the expression ending at the dot.
func (ch *checked) selectorMembers(fileName string, dot int) ([]types.Object, bool) {
	f, ok := ch.files[fileName]
	if !ok || ch.pkg == nil {
		return nil, false
	}

	var sel *ast.SelectorExpr
	ast.Inspect(f, func(n ast.Node) bool {
		if sel != nil {
			return false
		}
		if s, ok := n.(*ast.SelectorExpr); ok && ch.fset.Position(s.X.End()).Offset == dot {
			sel = s
			return false
		}
		return true
	})
	if sel == nil {
		return nil, false
	}

	if id, ok := sel.X.(*ast.Ident); ok {
		if pn, ok := ch.info.Uses[id].(*types.PkgName); ok {
			var out []types.Object
			scope := pn.Imported().Scope()
			for _, name := range scope.Names() {
				if obj := scope.Lookup(name); obj.Exported() {
					out = append(out, obj)
				}
			}
			return out, true
		}
	}

	t := ch.info.TypeOf(sel.X)
	if t == nil {
		return nil, false
	}
	return ch.members(t), true
}

// members lists the fields, promoted ones included, and the methods of t.
func (ch *checked) members(t types.Type) []types.Object {
	seen := map[string]bool{}
	var out []types.Object

	add := func(obj types.Object) {
		if seen[obj.Name()] || obj.Name() == "_" {
			return
		}
		if !obj.Exported() && obj.Pkg() != ch.pkg {
			return
		}
		seen[obj.Name()] = true
		out = append(out, obj)
	}

	var visit func(t types.Type, depth int)
	visit = func(t types.Type, depth int) {
		if depth > 8 {
			return
		}
		if p, ok := t.Underlying().(*types.Pointer); ok {
			t = p.Elem()
		}
		st, ok := t.Underlying().(*types.Struct)
		if !ok {
			return
		}
		var embedded []types.Type
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			if f.Embedded() {
				embedded = append(embedded, f.Type())
				continue
			}
			add(f)
		}
		for _, e := range embedded {
			visit(e, depth+1)
		}
	}
	visit(t, 0)

	var cache typeutil.MethodSetCache
	for _, s := range typeutil.IntuitiveMethodSet(t, &cache) {
		add(s.Obj())
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (ch *checked) scopeEntries(fileName string, pos int) []langsvc.CompletionEntry {
	tp, _, ok := ch.tokenPos(fileName, pos)
	if !ok || ch.pkg == nil {
		return nil
	}
	scope := ch.pkg.Scope().Innermost(tp)
	if scope == nil {
		scope = ch.pkg.Scope()
	}

	seen := map[string]bool{}
	var out []langsvc.CompletionEntry
	for s := scope; s != nil; s = s.Parent() {
		sortText := "0"
		switch s {
		case ch.pkg.Scope():
			sortText = "1"
		case types.Universe:
			sortText = "2"
		}
		local := s != ch.pkg.Scope() && s != types.Universe && s.Parent() != ch.pkg.Scope()
		var objs []types.Object
		for _, name := range s.Names() {
			if seen[name] || name == "_" || strings.HasPrefix(name, HiddenPrefix) {
				continue
			}
			obj := s.Lookup(name)
			if local && obj.Pos() > tp {
				continue
			}
			seen[name] = true
			objs = append(objs, obj)
		}
		out = append(out, ch.entries(objs, sortText)...)
	}
	return out
}

func (ch *checked) entries(objs []types.Object, sortText string) []langsvc.CompletionEntry {
	out := make([]langsvc.CompletionEntry, 0, len(objs))
	for _, obj := range objs {
		if strings.HasPrefix(obj.Name(), HiddenPrefix) {
			continue
		}
		out = append(out, langsvc.CompletionEntry{
			Name:     obj.Name(),
			Kind:     kindOf(obj),
			SortText: sortText,
		})
	}
	return out
}

// objectAt finds the identifier at pos, or just before it, and its object.
func (ch *checked) objectAt(fileName string, pos int) (*ast.Ident, types.Object) {
	for _, p := range []int{pos, pos - 1} {
		tp, f, ok := ch.tokenPos(fileName, p)
		if !ok || p < 0 {
			continue
		}
		path, _ := astutil.PathEnclosingInterval(f, tp, tp)
		if len(path) == 0 {
			continue
		}
		id, ok := path[0].(*ast.Ident)
		if !ok {
			continue
		}
		if obj := ch.info.Uses[id]; obj != nil {
			return id, obj
		}
		if obj := ch.info.Defs[id]; obj != nil {
			return id, obj
		}
	}
	return nil, nil
}

func (ch *checked) displayParts(obj types.Object) []langsvc.SymbolDisplayPart {
	return []langsvc.SymbolDisplayPart{{Text: types.ObjectString(obj, ch.qualifier()), Kind: string(kindOf(obj))}}
}

// documentation returns the doc comment of an object declared in a checked file.
func (ch *checked) documentation(obj types.Object) []langsvc.SymbolDisplayPart {
	_, f := ch.declaringFile(obj)
	if f == nil {
		return nil
	}
	path, _ := astutil.PathEnclosingInterval(f, obj.Pos(), obj.Pos())
	for _, n := range path {
		var doc *ast.CommentGroup
		switch n := n.(type) {
		case *ast.Field:
			doc = n.Doc
			if doc == nil {
				doc = n.Comment
			}
		case *ast.ValueSpec:
			doc = n.Doc
		case *ast.TypeSpec:
			doc = n.Doc
		case *ast.GenDecl:
			doc = n.Doc
		case *ast.FuncDecl:
			doc = n.Doc
		}
		if doc != nil {
			return []langsvc.SymbolDisplayPart{{Text: strings.TrimSpace(doc.Text()), Kind: "text"}}
		}
	}
	return nil
}

func kindOf(obj types.Object) langsvc.ElementKind {
	switch o := obj.(type) {
	case *types.Var:
		switch {
		case o.IsField():
			return langsvc.KindField
		case o.Pkg() != nil && o.Parent() == o.Pkg().Scope():
			return langsvc.KindVariable
		}
		return langsvc.KindLocal
	case *types.Func:
		if sig, ok := o.Type().(*types.Signature); ok && sig.Recv() != nil {
			return langsvc.KindMethod
		}
		return langsvc.KindFunction
	case *types.Const:
		return langsvc.KindConst
	case *types.TypeName:
		return langsvc.KindType
	case *types.PkgName:
		return langsvc.KindPackage
	case *types.Builtin:
		return langsvc.KindFunction
	case *types.Nil:
		return langsvc.KindKeyword
	}
	return langsvc.KindUnknown
}

func containerName(obj types.Object) string {
	if fn, ok := obj.(*types.Func); ok {
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
			t := sig.Recv().Type()
			if p, ok := t.(*types.Pointer); ok {
				t = p.Elem()
			}
			if named, ok := t.(*types.Named); ok {
				return named.Obj().Name()
			}
		}
	}
	if obj.Pkg() != nil && obj.Parent() == obj.Pkg().Scope() {
		return obj.Pkg().Name()
	}
	return ""
}

// offsetOfName converts a 1-based line and byte column to an offset, moving
// forward to name when it appears later on that line.
func offsetOfName(text string, line, column int, name string) int {
	offset := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return offset
		}
		offset += i + 1
	}
	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	lineText := text[offset : offset+lineEnd]

	col := column - 1
	if col < 0 || col > len(lineText) {
		col = 0
	}
	if i := strings.Index(lineText[col:], name); i >= 0 {
		return offset + col + i
	}
	return offset + col
}

func tokenLength(text string, offset int) int {
	n := 0
	for offset+n < len(text) && isIdentByte(text[offset+n]) {
		n++
	}
	if n == 0 && offset < len(text) {
		return 1
	}
	return n
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
