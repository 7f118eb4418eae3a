package cache

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/pkg/markup"
	"github.com/walteh/ngtmpls/pkg/parser"
	"github.com/walteh/ngtmpls/pkg/position"
	"github.com/walteh/ngtmpls/pkg/projector"
)

// Projection is the generated Go code standing in for the template of one
// file. It is replaced as a whole whenever the file changes.
type Projection struct {
	FileName string
	Template *parser.Template
	Tree     *markup.Tree
	// Block is the generated code inserted after the template method.
	Block string
	// GeneratedText is the whole file with Block inserted.
	GeneratedText string
	Mapper        *position.Mapper

	BasedOnVersion string
	// Generation is the cache generation this projection was stored under.
	Generation uint64
}

// Build projects the first template of file. It returns nil when the file
// has no template.
func Build(ctx context.Context, file *parser.ParsedFile, version string, p *projector.Projector) (*Projection, error) {
	tmpl := file.First()
	if tmpl == nil {
		return nil, nil
	}

	tree := markup.Parse(tmpl.Text)
	generated := p.Project(tree, tmpl.ComponentType)

	mapper, err := position.NewMapper(generated, position.Layout{
		TemplateStart:  tmpl.Start,
		TemplateEnd:    tmpl.End,
		InsertionPoint: tmpl.InsertionPoint,
	})
	if err != nil {
		return nil, errors.Errorf("projecting %s: %w", file.Name, err)
	}

	block := mapper.Block()
	text := file.Text[:tmpl.InsertionPoint] + block + file.Text[tmpl.InsertionPoint:]

	zerolog.Ctx(ctx).Debug().
		Str("file", file.Name).
		Str("component", tmpl.ComponentType).
		Int("markup_errors", len(tree.Errors)).
		Int("block_length", len(block)).
		Msg("built projection")

	return &Projection{
		FileName:       file.Name,
		Template:       tmpl,
		Tree:           tree,
		Block:          block,
		GeneratedText:  text,
		Mapper:         mapper,
		BasedOnVersion: version,
	}, nil
}
