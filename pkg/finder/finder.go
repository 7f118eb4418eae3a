package finder

import (
	"context"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var (
	DefaultInclude = []string{"**/*.go"}
	DefaultExclude = []string{"**/*_test.go", "vendor/**", "**/testdata/**", "_*/**", ".*/**"}
)

// ComponentFinder is responsible for finding Go files that may declare components
type ComponentFinder interface {
	// FindFiles lists the matching files below dir, relative paths sorted
	FindFiles(ctx context.Context, dir string) ([]FileInfo, error)
}

// FileInfo represents information about a found file
type FileInfo struct {
	// Path is relative to the searched directory, slash separated
	Path     string
	FullPath string
	Content  []byte
	FileType string
}

// DefaultFinder matches doublestar patterns against an afero file system
type DefaultFinder struct {
	fs      afero.Fs
	include []string
	exclude []string
}

// NewDefaultFinder creates a new DefaultFinder. Nil patterns use the defaults.
func NewDefaultFinder(fs afero.Fs, include, exclude []string) *DefaultFinder {
	if include == nil {
		include = DefaultInclude
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	return &DefaultFinder{fs: fs, include: include, exclude: exclude}
}

// FindFiles implements ComponentFinder
func (f *DefaultFinder) FindFiles(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("finding files: %w", err)
	}

	info, err := f.fs.Stat(dir)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(f.fs, dir))

	seen := map[string]bool{}
	var matches []string
	for _, pattern := range f.include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid include pattern %q", pattern)
		}
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		for _, m := range found {
			if !seen[m] && !f.excluded(m) {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	sort.Strings(matches)

	out := make([]FileInfo, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("finding files: %w", err)
		}
		full := filepath.Join(dir, filepath.FromSlash(m))
		content, err := afero.ReadFile(f.fs, full)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", full, err)
		}
		out = append(out, FileInfo{
			Path:     m,
			FullPath: full,
			Content:  content,
			FileType: fileType(m),
		})
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Int("files", len(out)).Msg("found files")

	return out, nil
}

func (f *DefaultFinder) excluded(rel string) bool {
	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func fileType(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return "unknown"
	}
	return ext[1:]
}
