package get_definition

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
	"github.com/walteh/ngtmpls/pkg/langsvc"
)

type Handler struct {
	root string
	file string
	pos  cli.Position

	fs  afero.Fs
	out io.Writer
}

func NewGetDefinitionCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-definition [file]",
		Short: "find where the symbol at a position in a component template is declared",
	}

	cmd.Flags().StringVar(&me.root, "root", "", "workspace root, defaults to the file's directory")
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

	defs, err := t.Project.Service.Definition(ctx, t.File.Name, t.Offset)
	if err != nil {
		return errors.Errorf("getting definition: %w", err)
	}
	if defs == nil {
		defs = []langsvc.DefinitionInfo{}
	}
	return cli.WriteJSON(me.out, defs)
}
