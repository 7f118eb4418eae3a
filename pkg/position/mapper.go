package position

import (
	"gitlab.com/tozd/go/errors"
)

// BlockPrefix and BlockSuffix surround generated code when it is inserted
// into a host file.
const (
	BlockPrefix = "\n"
	BlockSuffix = "\n"
)

// Layout locates a template and the inserted block inside the host file.
// TemplateStart and TemplateEnd bound the template text (without delimiters).
type Layout struct {
	TemplateStart  int
	TemplateEnd    int
	InsertionPoint int
}

// Mapper translates host-file offsets to offsets in the host file with the
// generated block inserted, and back.
type Mapper struct {
	layout    Layout
	generated string
	markers   *Markers
}

func NewMapper(generated string, layout Layout) (*Mapper, error) {
	markers, err := ParseMarkers(generated)
	if err != nil {
		return nil, errors.Errorf("building mapper: %w", err)
	}
	return &Mapper{
		layout:    layout,
		generated: generated,
		markers:   markers,
	}, nil
}

func (m *Mapper) Layout() Layout {
	return m.layout
}

func (m *Mapper) Markers() *Markers {
	return m.markers
}

// Block is the exact text inserted at the insertion point.
func (m *Mapper) Block() string {
	return BlockPrefix + m.generated + BlockSuffix
}

func (m *Mapper) BlockLength() int {
	return len(BlockPrefix) + len(m.generated) + len(BlockSuffix)
}

func (m *Mapper) codeStart() int {
	return m.layout.InsertionPoint + len(BlockPrefix)
}

// IsInTemplate reports whether a host-file offset lies in the template text.
func (m *Mapper) IsInTemplate(pos int) bool {
	return pos >= m.layout.TemplateStart && pos <= m.layout.TemplateEnd
}

// IsInGeneratedCode reports whether an offset in the generated file lies in the inserted block.
func (m *Mapper) IsInGeneratedCode(pos int) bool {
	return pos >= m.layout.InsertionPoint && pos < m.layout.InsertionPoint+m.BlockLength()
}

// TemplateToGenerated maps a host-file offset to the generated file. Template
// offsets covered by a marker pair land inside the block; anything else keeps
// its place in the surrounding file.
func (m *Mapper) TemplateToGenerated(pos int) int {
	if m.IsInTemplate(pos) {
		if gen, ok := m.markers.ToGenerated(pos - m.layout.TemplateStart); ok {
			return m.codeStart() + gen
		}
	}
	if pos >= m.layout.InsertionPoint {
		return pos + m.BlockLength()
	}
	return pos
}

// GeneratedToTemplate maps a generated-file offset back to the host file.
// Offsets in the block with no marker pair fall back to the template start.
func (m *Mapper) GeneratedToTemplate(pos int) int {
	switch {
	case pos < m.layout.InsertionPoint:
		return pos
	case pos >= m.layout.InsertionPoint+m.BlockLength():
		return pos - m.BlockLength()
	}

	if tmpl, ok := m.markers.ToTemplate(pos - m.codeStart()); ok {
		return m.layout.TemplateStart + tmpl
	}
	return m.layout.TemplateStart
}

// MapSpanToTemplate maps a generated-file range [start, start+length) back to
// the host file. Ranges in the block that begin outside every marker pair use
// the first pair they overlap.
func (m *Mapper) MapSpanToTemplate(start, length int) (int, int) {
	if !m.IsInGeneratedCode(start) {
		return m.GeneratedToTemplate(start), length
	}

	rel := start - m.codeStart()
	c, ok := m.markers.containing(rel)
	if !ok {
		if span, ok := m.markers.FirstOverlap(rel, rel+length); ok {
			return m.layout.TemplateStart + span.Start, span.Len()
		}
		return m.layout.TemplateStart, 0
	}

	from := c.Template.Start + (rel - c.Generated.Start)
	if from > c.Template.End {
		from = c.Template.End
	}
	to := from + length
	if to > c.Template.End {
		to = c.Template.End
	}
	return m.layout.TemplateStart + from, to - from
}
