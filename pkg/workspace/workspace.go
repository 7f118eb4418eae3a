// Package workspace serves source files to the template service: documents
// opened in an editor take precedence over the file system.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/finder"
)

var ErrFileNotFound = errors.Base("file not found")

// SourceFile is one version of a file's text. Version changes whenever the
// text may have changed.
type SourceFile struct {
	Name    string
	Text    string
	Version string
}

// Host is what the template service needs from its environment.
type Host interface {
	FileNames(ctx context.Context) ([]string, error)
	SourceFile(ctx context.Context, name string) (*SourceFile, error)
}

type document struct {
	name    string
	text    string
	version uint64
}

// Workspace is a Host over an afero file system plus open documents.
type Workspace struct {
	fs     afero.Fs
	root   string
	finder finder.ComponentFinder
	store  *sync.Map // map[string]*document
	// versions numbers every Open and Update across all documents
	versions atomic.Uint64
}

func New(fs afero.Fs, root string, f finder.ComponentFinder) *Workspace {
	if f == nil {
		f = finder.NewDefaultFinder(fs, nil, nil)
	}
	return &Workspace{
		fs:     fs,
		root:   filepath.Clean(root),
		finder: f,
		store:  &sync.Map{},
	}
}

func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Normalize turns a file URI or relative path into the key used by the workspace.
func (w *Workspace) Normalize(name string) string {
	name = strings.TrimPrefix(name, "file://")
	if !filepath.IsAbs(name) {
		name = filepath.Join(w.root, name)
	}
	return filepath.Clean(name)
}

// Open starts tracking an in-memory document. Reopening a document, with or
// without closing it first, gives it a version it never had before.
func (w *Workspace) Open(name, text string) *SourceFile {
	doc := &document{name: w.Normalize(name), text: text, version: w.nextVersion()}
	w.store.Store(doc.name, doc)
	return doc.sourceFile()
}

// Update replaces the text of an open document and bumps its version.
func (w *Workspace) Update(name, text string) (*SourceFile, error) {
	key := w.Normalize(name)
	if _, ok := w.store.Load(key); !ok {
		return nil, errors.Errorf("updating %s: document not open: %w", key, ErrFileNotFound)
	}
	doc := &document{name: key, text: text, version: w.nextVersion()}
	w.store.Store(key, doc)
	return doc.sourceFile(), nil
}

// Close stops tracking a document; the file system copy is served again.
func (w *Workspace) Close(name string) {
	w.store.Delete(w.Normalize(name))
}

func (w *Workspace) SourceFile(ctx context.Context, name string) (*SourceFile, error) {
	key := w.Normalize(name)
	if v, ok := w.store.Load(key); ok {
		return v.(*document).sourceFile(), nil
	}

	info, err := w.fs.Stat(key)
	if err != nil || info.IsDir() {
		zerolog.Ctx(ctx).Trace().Str("file", key).Msg("file not in workspace")
		return nil, errors.Errorf("%s: %w", key, ErrFileNotFound)
	}
	content, err := afero.ReadFile(w.fs, key)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", key, err)
	}
	return &SourceFile{
		Name:    key,
		Text:    string(content),
		Version: fmt.Sprintf("disk-%d-%d", info.Size(), info.ModTime().UnixNano()),
	}, nil
}

// FileNames lists open documents and the files found below the root.
func (w *Workspace) FileNames(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	w.store.Range(func(k, _ any) bool {
		seen[k.(string)] = true
		out = append(out, k.(string))
		return true
	})

	files, err := w.finder.FindFiles(ctx, w.root)
	if err != nil {
		return nil, errors.Errorf("listing workspace files: %w", err)
	}
	for _, f := range files {
		if !seen[f.FullPath] {
			seen[f.FullPath] = true
			out = append(out, f.FullPath)
		}
	}

	sort.Strings(out)
	return out, nil
}

func (w *Workspace) nextVersion() uint64 {
	return w.versions.Add(1)
}

func (d *document) sourceFile() *SourceFile {
	return &SourceFile{
		Name:    d.name,
		Text:    d.text,
		Version: strconv.FormatUint(d.version, 10),
	}
}
