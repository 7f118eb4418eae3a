package finder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFs(t *testing.T) (afero.Fs, string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	root := "/project"
	files := map[string]string{
		"counter.go":             "package app",
		"counter_test.go":        "package app",
		"ui/label.go":            "package ui",
		"ui/README.md":           "# ui",
		"ui/testdata/fixture.go": "package fixture",
		"vendor/dep/dep.go":      "package dep",
		".cache/x.go":            "package x",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(root, name), []byte(content), 0o644))
	}
	return fs, root
}

func paths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestDefaultFinder_FindFiles(t *testing.T) {
	fs, root := newTestFs(t)

	tests := []struct {
		name    string
		dir     string
		include []string
		exclude []string
		want    []string
		wantErr bool
	}{
		{
			name: "default patterns",
			dir:  root,
			want: []string{"counter.go", "ui/label.go"},
		},
		{
			name:    "custom include",
			dir:     root,
			include: []string{"ui/**"},
			want:    []string{"ui/README.md", "ui/label.go"},
		},
		{
			name:    "nothing excluded",
			dir:     root,
			exclude: []string{},
			want:    []string{".cache/x.go", "counter.go", "counter_test.go", "ui/label.go", "ui/testdata/fixture.go", "vendor/dep/dep.go"},
		},
		{
			name: "subdirectory",
			dir:  filepath.Join(root, "ui"),
			want: []string{"label.go"},
		},
		{
			name:    "invalid pattern",
			dir:     root,
			include: []string{"[a"},
			wantErr: true,
		},
		{
			name:    "non-existent directory",
			dir:     filepath.Join(root, "non-existent"),
			wantErr: true,
		},
		{
			name:    "file instead of directory",
			dir:     filepath.Join(root, "counter.go"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDefaultFinder(fs, tt.include, tt.exclude)
			got, err := f.FindFiles(context.Background(), tt.dir)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, paths(got))

			for _, file := range got {
				assert.NotEmpty(t, file.Content)
				assert.Equal(t, filepath.Join(tt.dir, filepath.FromSlash(file.Path)), file.FullPath)
				assert.NotEmpty(t, file.FileType)
			}
		})
	}
}

func TestDefaultFinder_FindFiles_Context(t *testing.T) {
	fs, root := newTestFs(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewDefaultFinder(fs, nil, nil)
	_, err := f.FindFiles(ctx, root)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
