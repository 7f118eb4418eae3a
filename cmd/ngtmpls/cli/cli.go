// Package cli holds what the ngtmpls sub-commands share: logging, opening a
// project for a file and turning flags into offsets.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/debug"
	"github.com/walteh/ngtmpls/pkg/position"
	"github.com/walteh/ngtmpls/pkg/project"
	"github.com/walteh/ngtmpls/pkg/workspace"
)

// LogFlags configure the logger installed on the command context.
type LogFlags struct {
	Debug bool
	JSON  bool
}

func (f *LogFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&f.JSON, "log-json", false, "log as json lines")
}

// Install puts a logger writing to w on the command's context.
func (f *LogFlags) Install(cmd *cobra.Command, w io.Writer) {
	level := zerolog.WarnLevel
	if f.Debug {
		level = zerolog.DebugLevel
	}
	logger := debug.NewLogger(w, debug.Options{
		Level:  level,
		JSON:   f.JSON,
		Color:  !f.JSON && isTerminal(w),
		Caller: f.Debug,
	})
	cmd.SetContext(logger.WithContext(cmd.Context()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Position is a location given either as a byte offset or as a one-based
// line and column.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p *Position) Register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Offset, "offset", -1, "byte offset in the file")
	cmd.Flags().IntVar(&p.Line, "line", 0, "one-based line, used with --col")
	cmd.Flags().IntVar(&p.Col, "col", 0, "one-based column, used with --line")
	cmd.MarkFlagsMutuallyExclusive("offset", "line")
	cmd.MarkFlagsRequiredTogether("line", "col")
}

// Resolve returns the byte offset in text.
func (p *Position) Resolve(text string) (int, error) {
	if p.Offset >= 0 {
		if p.Offset > len(text) {
			return 0, errors.Errorf("offset %d is past the end of the file (%d bytes)", p.Offset, len(text))
		}
		return p.Offset, nil
	}
	if p.Line == 0 {
		return 0, errors.New("either --offset or --line and --col is required")
	}
	offset, err := position.OffsetFromLineAndColumn(text, p.Line, p.Col)
	if err != nil {
		return 0, errors.Errorf("resolving position: %w", err)
	}
	return offset, nil
}

// Target is a project opened for one file.
type Target struct {
	Project *project.Project
	File    *workspace.SourceFile
	Offset  int
}

// OpenFile opens the project around file. root defaults to the file's directory.
func OpenFile(ctx context.Context, fs afero.Fs, root, file string, pos *Position) (*Target, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", file, err)
	}
	if root == "" {
		root = filepath.Dir(abs)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", root, err)
	}

	p, err := project.Open(ctx, fs, root)
	if err != nil {
		return nil, err
	}

	sf, err := p.Workspace.SourceFile(ctx, abs)
	if err != nil {
		return nil, err
	}

	t := &Target{Project: p, File: sf}
	if pos != nil {
		t.Offset, err = pos.Resolve(sf.Text)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteJSON writes v indented, followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Errorf("encoding output: %w", err)
	}
	return nil
}
