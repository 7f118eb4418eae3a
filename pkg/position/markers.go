// Package position maps offsets between template text and the code generated
// from it, and converts offsets to lines and columns.
package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

// ErrUnbalancedMarkers is returned when generated text does not hold strictly
// alternating start and end markers.
var ErrUnbalancedMarkers = errors.Base("unbalanced markers")

// ErrInvalidMarker is returned for a marker whose offset does not fit an int.
var ErrInvalidMarker = errors.Base("invalid marker")

// StartMarker annotates the beginning of a span that originated at templateOffset.
func StartMarker(templateOffset int) string {
	return fmt.Sprintf("/*{start:%d}*/", templateOffset)
}

// EndMarker annotates the end of a span that originated before templateOffset.
func EndMarker(templateOffset int) string {
	return fmt.Sprintf("/*{end:%d}*/", templateOffset)
}

// Wrap surrounds text with a marker pair for the template range [start, end].
func Wrap(text string, start, end int) string {
	return StartMarker(start) + text + EndMarker(end)
}

var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Start", Pattern: `/\*\{start:\d+\}\*/`},
	{Name: "End", Pattern: `/\*\{end:\d+\}\*/`},
	{Name: "Code", Pattern: `[^/]+|/`},
})

var (
	startToken = markerLexer.Symbols()["Start"]
	endToken   = markerLexer.Symbols()["End"]
)

// StripMarkers removes every marker from generated text.
func StripMarkers(generated string) string {
	tokens, err := lexMarkers(generated)
	if err != nil {
		return generated
	}
	var b strings.Builder
	b.Grow(len(generated))
	for _, tok := range tokens {
		if tok.Type != startToken && tok.Type != endToken {
			b.WriteString(tok.Value)
		}
	}
	return b.String()
}

func lexMarkers(generated string) ([]lexer.Token, error) {
	lex, err := markerLexer.LexString("", generated)
	if err != nil {
		return nil, errors.Errorf("lexing generated code: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Errorf("lexing generated code: %w", err)
	}
	return tokens, nil
}

// Correspondence pairs the template range named by a marker pair with the
// generated range between its markers. Both ranges are inclusive.
type Correspondence struct {
	Template  Span
	Generated Span
	// Outer spans the markers themselves as well as the text between them.
	Outer Span
}

// Markers is the ordered list of correspondences found in one generated text.
type Markers struct {
	Correspondences []Correspondence
}

// ParseMarkers scans generated text once and records every marker pair.
func ParseMarkers(generated string) (*Markers, error) {
	tokens, err := lexMarkers(generated)
	if err != nil {
		return nil, err
	}

	m := &Markers{}
	var open *lexer.Token
	for i := range tokens {
		tok := tokens[i]
		switch tok.Type {
		case startToken:
			if open != nil {
				return nil, errors.WithDetails(ErrUnbalancedMarkers, "offset", tok.Pos.Offset, "reason", "start marker inside an open pair")
			}
			open = &tokens[i]
		case endToken:
			if open == nil {
				return nil, errors.WithDetails(ErrUnbalancedMarkers, "offset", tok.Pos.Offset, "reason", "end marker without a start")
			}
			start, err := markerValue(open)
			if err != nil {
				return nil, err
			}
			end, err := markerValue(&tok)
			if err != nil {
				return nil, err
			}
			m.Correspondences = append(m.Correspondences, Correspondence{
				Template:  NewSpan(start, end),
				Generated: NewSpan(open.Pos.Offset+len(open.Value), tok.Pos.Offset),
				Outer:     NewSpan(open.Pos.Offset, tok.Pos.Offset+len(tok.Value)),
			})
			open = nil
		}
	}

	if open != nil {
		return nil, errors.WithDetails(ErrUnbalancedMarkers, "offset", open.Pos.Offset, "reason", "start marker never closed")
	}

	return m, nil
}

func markerValue(tok *lexer.Token) (int, error) {
	digits := strings.TrimSuffix(tok.Value[strings.IndexByte(tok.Value, ':')+1:], "}*/")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errors.WithDetails(ErrInvalidMarker, "offset", tok.Pos.Offset, "marker", tok.Value)
	}
	return n, nil
}

// ToGenerated maps a template offset into the generated text. The result is
// clamped to the end of the pair, since a rename can make the generated span
// shorter than the template span.
func (m *Markers) ToGenerated(templatePos int) (int, bool) {
	for _, c := range m.Correspondences {
		if !c.Template.Contains(templatePos) {
			continue
		}
		pos := c.Generated.Start + (templatePos - c.Template.Start)
		if pos > c.Generated.End {
			pos = c.Generated.End
		}
		return pos, true
	}
	return -1, false
}

// ToTemplate maps a generated offset back into the template, clamped to the
// end of the pair's template range.
func (m *Markers) ToTemplate(generatedPos int) (int, bool) {
	c, ok := m.containing(generatedPos)
	if !ok {
		return -1, false
	}
	pos := c.Template.Start + (generatedPos - c.Generated.Start)
	if pos > c.Template.End {
		pos = c.Template.End
	}
	return pos, true
}

func (m *Markers) containing(generatedPos int) (Correspondence, bool) {
	for _, c := range m.Correspondences {
		if c.Generated.Contains(generatedPos) {
			return c, true
		}
	}
	return Correspondence{}, false
}

// FirstOverlap finds the template range of the first marker pair (markers
// included) that intersects the generated range [start, end].
func (m *Markers) FirstOverlap(start, end int) (Span, bool) {
	for _, c := range m.Correspondences {
		if c.Outer.Overlaps(start, end) {
			return c.Template, true
		}
	}
	return Span{}, false
}
