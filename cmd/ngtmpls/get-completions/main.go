package get_completions

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
)

type Handler struct {
	root    string
	file    string
	details string
	pos     cli.Position

	fs  afero.Fs
	out io.Writer
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-completions [file]",
		Short: "get completions for a position in a component template",
	}

	cmd.Flags().StringVar(&me.root, "root", "", "workspace root, defaults to the file's directory")
	cmd.Flags().StringVar(&me.details, "details", "", "print the details of this entry instead of the list")
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

	if me.details != "" {
		details, err := t.Project.Service.CompletionEntryDetails(ctx, t.File.Name, t.Offset, me.details)
		if err != nil {
			return errors.Errorf("getting details of %q: %w", me.details, err)
		}
		return cli.WriteJSON(me.out, details)
	}

	completions, err := t.Project.Service.Completions(ctx, t.File.Name, t.Offset)
	if err != nil {
		return errors.Errorf("getting completions: %w", err)
	}
	return cli.WriteJSON(me.out, completions)
}
