package session_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/registry"
	"github.com/walteh/ngtmpls/pkg/session"
	"github.com/walteh/ngtmpls/pkg/workspace"
)

const domStub = `package dom

type Event struct{}

type HTMLElement struct {
	ID      string
	OnClick func(Event)
}

func (e *HTMLElement) Focus() {}

type HTMLDivElement struct {
	HTMLElement
	Align string
}
`

const mainSource = `package app

import "github.com/walteh/ngtmpls/pkg/dom"

// Counter counts clicks.
type Counter struct {
	// Count is the number of clicks.
	Count int
	Label string
	user  *User
}

type User struct{ Name string }

func (c *Counter) Increment() { c.Count++ }

func _(__comp *Counter) {
	__div := new(dom.HTMLDivElement)
	_ = __div
	_ = __comp.user.Name
	_ = __comp.Count
	_ = __comp.Missing
}
`

type fixture struct {
	ws       *workspace.Workspace
	registry *registry.Registry
	checker  *session.Checker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/app/main.go", []byte(mainSource), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/app/other.go", []byte("package app\n\nvar Shared = 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/app/main_test.go", []byte("package app\n\nvar Hidden = 1\n"), 0o644))

	reg := registry.NewEmptyRegistry()
	_, err := reg.AddSource(ctx, "github.com/walteh/ngtmpls/pkg/dom", map[string]string{"dom.go": domStub})
	require.NoError(t, err)

	ws := workspace.New(fs, "/proj", nil)
	return &fixture{ws: ws, registry: reg, checker: session.New(ws, reg)}
}

func offsetAfter(t *testing.T, text, marker string) int {
	t.Helper()
	i := strings.Index(text, marker)
	require.GreaterOrEqual(t, i, 0, "marker %q", marker)
	return i + len(marker)
}

func entryNames(info *langsvc.CompletionInfo) []string {
	var out []string
	for _, e := range info.Entries {
		out = append(out, e.Name)
	}
	return out
}

func TestChecker_Completions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	t.Run("members after a dot", func(t *testing.T) {
		info, err := f.checker.Completions(ctx, file, offsetAfter(t, mainSource, "_ = __comp."))
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.True(t, info.IsMemberCompletion)
		assert.Equal(t, []string{"Count", "Increment", "Label", "user"}, entryNames(info))
	})

	t.Run("members of a nested selector", func(t *testing.T) {
		info, err := f.checker.Completions(ctx, file, offsetAfter(t, mainSource, "__comp.user.N"))
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, []string{"Name"}, entryNames(info))
	})

	t.Run("promoted members of an imported type", func(t *testing.T) {
		src := strings.Replace(mainSource, "_ = __div", "_ = __div.A", 1)
		f.ws.Open(file, src)
		defer f.ws.Close(file)

		info, err := f.checker.Completions(ctx, file, offsetAfter(t, src, "_ = __div."))
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, []string{"Align", "Focus", "ID", "OnClick"}, entryNames(info))
	})

	t.Run("names in scope hide generated ones", func(t *testing.T) {
		info, err := f.checker.Completions(ctx, file, offsetAfter(t, mainSource, "\t_ = __div\n"))
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.False(t, info.IsMemberCompletion)

		names := entryNames(info)
		assert.Contains(t, names, "Counter")
		assert.Contains(t, names, "Shared", "other files of the package are checked")
		assert.Contains(t, names, "dom")
		assert.NotContains(t, names, "Hidden", "test files are not part of the package")
		assert.NotContains(t, names, "__comp")
		assert.NotContains(t, names, "__div")
	})
}

func TestChecker_QuickInfoAndDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	pos := offsetAfter(t, mainSource, "_ = __comp.Co")
	qi, err := f.checker.QuickInfo(ctx, file, pos)
	require.NoError(t, err)
	require.NotNil(t, qi)
	assert.Equal(t, langsvc.KindField, qi.Kind)
	assert.Equal(t, "field Count int", langsvc.DisplayString(qi.DisplayParts))
	assert.Equal(t, "Count is the number of clicks.", langsvc.DisplayString(qi.Documentation))
	assert.Equal(t, langsvc.TextSpan{Start: pos - 2, Length: 5}, qi.TextSpan)

	details, err := f.checker.CompletionEntryDetails(ctx, file, offsetAfter(t, mainSource, "_ = __comp."), "Increment")
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, langsvc.KindMethod, details.Kind)
	assert.Equal(t, "func (*Counter).Increment()", langsvc.DisplayString(details.DisplayParts))

	details, err = f.checker.CompletionEntryDetails(ctx, file, offsetAfter(t, mainSource, "_ = __comp."), "Nope")
	require.NoError(t, err)
	assert.Nil(t, details)

	qi, err = f.checker.QuickInfo(ctx, file, 0)
	require.NoError(t, err)
	assert.Nil(t, qi, "package keyword has no object")
}

func TestChecker_Definition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	defs, err := f.checker.Definition(ctx, file, offsetAfter(t, mainSource, "__comp.Co"))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, file, defs[0].FileName)
	assert.Equal(t, strings.Index(mainSource, "Count int"), defs[0].TextSpan.Start)
	assert.Equal(t, 5, defs[0].TextSpan.Length)
	assert.Equal(t, langsvc.KindField, defs[0].Kind)

	defs, err = f.checker.Definition(ctx, file, offsetAfter(t, mainSource, "new(dom.HTMLDiv"))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "dom.go", defs[0].FileName)
	assert.Equal(t, strings.Index(domStub, "HTMLDivElement struct"), defs[0].TextSpan.Start)
	assert.Equal(t, "dom", defs[0].ContainerName)

	defs, err = f.checker.Definition(ctx, file, offsetAfter(t, mainSource, "__div := ne"))
	require.NoError(t, err)
	assert.Empty(t, defs, "builtins have no declaration")
}

func TestChecker_Diagnostics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	diags, err := f.checker.Diagnostics(ctx, file)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, offsetAfter(t, mainSource, "__comp.Missing")-len("Missing"), diags[0].Start)
	assert.Equal(t, len("Missing"), diags[0].Length)
	assert.Contains(t, diags[0].Message, "Missing")
	assert.Equal(t, session.CodeType, diags[0].Code)
	assert.Equal(t, langsvc.CategoryError, diags[0].Category)

	broken := mainSource + "\nfunc broken( {\n"
	f.ws.Open(file, broken)
	diags, err = f.checker.Diagnostics(ctx, file)
	require.NoError(t, err)
	var codes []int
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, session.CodeSyntax)
	assert.Error(t, f.checker.Errors(ctx, file))
}

func TestChecker_RecheckLeavesRegistryFileSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	f.ws.Open(file, mainSource)
	_, err := f.checker.Diagnostics(ctx, file)
	require.NoError(t, err)
	base := f.registry.Fset().Base()

	for i := 1; i <= 3; i++ {
		_, err := f.ws.Update(file, mainSource+strings.Repeat("\n", i))
		require.NoError(t, err)
		_, err = f.checker.Diagnostics(ctx, file)
		require.NoError(t, err)
	}
	assert.Equal(t, base, f.registry.Fset().Base(), "checked files are not added to the registry")

	defs, err := f.checker.Definition(ctx, file, offsetAfter(t, mainSource, "new(dom.HTMLDiv"))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "dom.go", defs[0].FileName)
}

func TestChecker_MembersOf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	members, err := f.checker.MembersOf(ctx, file, "Counter")
	require.NoError(t, err)
	byName := map[string]langsvc.Member{}
	for _, m := range members {
		byName[m.Name] = m
	}
	assert.True(t, byName["Increment"].Method)
	assert.True(t, byName["Increment"].Callable)
	assert.False(t, byName["Count"].Callable)
	assert.Equal(t, "int", byName["Count"].Type)

	members, err = f.checker.MembersOf(ctx, file, "dom.HTMLDivElement")
	require.NoError(t, err)
	byName = map[string]langsvc.Member{}
	for _, m := range members {
		byName[m.Name] = m
	}
	assert.True(t, byName["OnClick"].Callable)
	assert.False(t, byName["OnClick"].Method)
	assert.True(t, byName["Focus"].Method)

	members, err = f.checker.MembersOf(ctx, file, "Unknown")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestChecker_FileNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.checker.Completions(context.Background(), "/proj/app/missing.go", 0)
	assert.ErrorIs(t, err, workspace.ErrFileNotFound)
	assert.NotEmpty(t, f.checker.ID())
}

func TestChecker_RechecksOnNewVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const file = "/proj/app/main.go"

	diags, err := f.checker.Diagnostics(ctx, file)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	f.ws.Open(file, strings.Replace(mainSource, "_ = __comp.Missing", "_ = __comp.Label", 1))
	diags, err = f.checker.Diagnostics(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, diags)
}
