package position

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"gitlab.com/tozd/go/errors"
)

// Place is a one-based line and column. Columns count grapheme clusters, not bytes.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Place
	End   Place
}

// Span is an inclusive range of byte offsets. An inverted span collapses to
// the single point at Start.
type Span struct {
	Start int
	End   int
}

func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

func (s Span) Overlaps(start, end int) bool {
	return s.Start <= end && s.End >= start
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d]", s.Start, s.End)
}

// GetLineAndColumn converts a byte offset into a one-based line and column.
// Offsets past the end of text are clamped.
func GetLineAndColumn(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}

	line = strings.Count(text[:offset], "\n") + 1
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	return line, graphemes(text[lineStart:offset]) + 1
}

// OffsetFromLineAndColumn is the inverse of GetLineAndColumn.
func OffsetFromLineAndColumn(text string, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, errors.Errorf("invalid position %d:%d", line, col)
	}

	offset := 0
	for i := 1; i < line; i++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl == -1 {
			return 0, errors.Errorf("line %d out of range", line)
		}
		offset += nl + 1
	}

	end := strings.IndexByte(text[offset:], '\n')
	if end == -1 {
		end = len(text) - offset
	}
	rest := []byte(text[offset : offset+end])

	for i := 1; i < col; i++ {
		if len(rest) == 0 {
			return 0, errors.Errorf("column %d out of range on line %d", col, line)
		}
		adv, _, err := textseg.ScanGraphemeClusters(rest, true)
		if err != nil {
			return 0, errors.Errorf("scanning line %d: %w", line, err)
		}
		offset += adv
		rest = rest[adv:]
	}

	return offset, nil
}

// GetRange converts a byte range into line and column places.
func GetRange(text string, start, end int) Range {
	sl, sc := GetLineAndColumn(text, start)
	el, ec := GetLineAndColumn(text, end)
	return Range{
		Start: Place{Line: sl, Character: sc},
		End:   Place{Line: el, Character: ec},
	}
}

func graphemes(s string) int {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		return len(s)
	}
	return n
}
