package get_diagnostics

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/diagnostic"
	"github.com/walteh/ngtmpls/pkg/project"
)

type Handler struct {
	dir         string
	format      string // text, json, yaml
	watch       bool
	concurrency int
	failOnError bool

	fs   afero.Fs
	out  io.Writer
	opts []project.Option
}

func NewGetDiagnosticsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-diagnostics [package-dir]",
		Short: "report template errors of every component below a directory",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the format of the diagnostics: text, json or yaml")
	cmd.Flags().BoolVar(&me.watch, "watch", false, "report again whenever a file changes")
	cmd.Flags().IntVar(&me.concurrency, "concurrency", project.DefaultConcurrency, "files checked at once")
	cmd.Flags().BoolVar(&me.failOnError, "fail-on-error", false, "exit non-zero when an error diagnostic is found")
	cmd.Args = cobra.MaximumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.dir = "."
		if len(args) == 1 {
			me.dir = args[0]
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	formatter, err := diagnostic.NewFormatter(me.format)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(me.dir)
	if err != nil {
		return errors.Errorf("resolving %s: %w", me.dir, err)
	}

	p, err := project.Open(ctx, me.fs, dir, me.opts...)
	if err != nil {
		return err
	}

	diags, err := me.report(ctx, p, formatter)
	if err != nil {
		return err
	}

	if !me.watch {
		if me.failOnError && len(diags.Errors) > 0 {
			return errors.Errorf("%d template errors", len(diags.Errors))
		}
		return nil
	}

	w, err := project.NewWatcher(dir, project.DefaultDebounce)
	if err != nil {
		return err
	}

	return w.Run(ctx, func(ctx context.Context, files []string) {
		zerolog.Ctx(ctx).Info().Strs("files", files).Msg("rechecking")
		// config or file set changes are picked up by reopening
		p, err := project.Open(ctx, me.fs, dir, me.opts...)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("reopening project")
			return
		}
		if _, err := me.report(ctx, p, formatter); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("reporting diagnostics")
		}
	})
}

// report checks every file and prints the result. Files that fail to check
// are logged and skipped.
func (me *Handler) report(ctx context.Context, p *project.Project, formatter diagnostic.Formatter) (*diagnostic.Diagnostics, error) {
	reports, err := p.Check(ctx, me.concurrency)
	if err != nil {
		if len(reports) == 0 && errors.Is(err, context.Canceled) {
			return nil, err
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some files could not be checked")
	}

	diags := project.Merge(reports)
	out, err := formatter.Format(diags)
	if err != nil {
		return nil, errors.Errorf("formatting diagnostics: %w", err)
	}
	if _, err := fmt.Fprint(me.out, string(out)); err != nil {
		return nil, errors.Errorf("writing diagnostics: %w", err)
	}
	return diags, nil
}
