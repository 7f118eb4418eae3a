package project

import (
	"context"
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/position"
)

type Handler struct {
	root    string
	file    string
	ast     bool
	markers bool

	fs  afero.Fs
	out io.Writer
}

func NewProjectCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "project [file]",
		Short: "print the go code generated for a component template",
	}

	cmd.Flags().StringVar(&me.root, "root", "", "workspace root, defaults to the file's directory")
	cmd.Flags().BoolVar(&me.ast, "ast", false, "dump the parsed template instead")
	cmd.Flags().BoolVar(&me.markers, "markers", false, "list the template and generated spans of every marker")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	t, err := cli.OpenFile(ctx, me.fs, me.root, me.file, nil)
	if err != nil {
		return err
	}

	proj, err := t.Project.Service.Projection(ctx, t.File.Name)
	if err != nil {
		return errors.Errorf("projecting %s: %w", t.File.Name, err)
	}
	if proj == nil {
		return errors.Errorf("%s declares no template", t.File.Name)
	}

	switch {
	case me.ast:
		printer := pp.New()
		printer.SetOutput(me.out)
		printer.SetColoringEnabled(false)
		printer.SetExportedOnly(true)
		if _, err := printer.Println(tagTree(proj.Tree, markup.Root)); err != nil {
			return errors.Errorf("printing tree: %w", err)
		}
		return nil
	case me.markers:
		code := proj.Block[len(position.BlockPrefix):]
		for _, c := range proj.Mapper.Markers().Correspondences {
			tmpl := proj.Template.Text[c.Template.Start:c.Template.End]
			gen := code[c.Generated.Start:c.Generated.End]
			if _, err := fmt.Fprintf(me.out, "%s %q -> %s %q\n", c.Template, tmpl, c.Generated, gen); err != nil {
				return errors.Errorf("writing markers: %w", err)
			}
		}
		return nil
	}

	if _, err := fmt.Fprintln(me.out, proj.Block); err != nil {
		return errors.Errorf("writing projection: %w", err)
	}
	return nil
}

// Node is the printable form of a markup node.
type Node struct {
	Kind       string
	Name       string `json:",omitempty"`
	Value      string `json:",omitempty"`
	Start      int
	End        int
	Attributes []*Node `json:",omitempty"`
	Children   []*Node `json:",omitempty"`
}

func tagTree(tree *markup.Tree, id markup.NodeID) *Node {
	n := tree.Nodes[id]
	out := &Node{
		Kind:  n.Kind.String(),
		Name:  n.Name,
		Value: n.Value,
		Start: n.StartPos,
		End:   n.EndPos,
	}
	for _, a := range n.Attributes {
		out.Attributes = append(out.Attributes, tagTree(tree, a))
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, tagTree(tree, c))
	}
	return out
}
