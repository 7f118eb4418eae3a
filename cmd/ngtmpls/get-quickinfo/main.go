package get_quickinfo

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
	"github.com/walteh/ngtmpls/pkg/hover"
)

type Handler struct {
	root     string
	file     string
	markdown bool
	pos      cli.Position

	fs  afero.Fs
	out io.Writer
}

func NewGetQuickInfoCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-quickinfo [file]",
		Short: "describe the symbol at a position in a component template",
	}

	cmd.Flags().StringVar(&me.root, "root", "", "workspace root, defaults to the file's directory")
	cmd.Flags().BoolVar(&me.markdown, "markdown", false, "print hover markdown instead of json")
	me.pos.Register(cmd)
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	t, err := cli.OpenFile(ctx, me.fs, me.root, me.file, &me.pos)
	if err != nil {
		return err
	}

	info, err := t.Project.Service.QuickInfo(ctx, t.File.Name, t.Offset)
	if err != nil {
		return errors.Errorf("getting quick info: %w", err)
	}

	if !me.markdown {
		return cli.WriteJSON(me.out, info)
	}
	if info == nil {
		return nil
	}

	h, err := hover.FormatQuickInfo(ctx, info, t.File.Text)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(me.out, "%s (%s)\n\n%s\n", t.File.Name, h.Range.Start, h.Markdown()); err != nil {
		return errors.Errorf("writing hover: %w", err)
	}
	return nil
}
