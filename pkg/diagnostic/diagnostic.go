// Package diagnostic turns offset-based diagnostics into line and column
// reports and formats them for people and tools.
package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/ngtmpls/pkg/langsvc"
	"github.com/walteh/ngtmpls/pkg/position"
)

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic `json:"errors" yaml:"errors"`
	Warnings []Diagnostic `json:"warnings" yaml:"warnings"`
	Hints    []Diagnostic `json:"hints,omitempty" yaml:"hints,omitempty"`
}

// Diagnostic is one message with one-based line and column bounds.
type Diagnostic struct {
	File     string             `json:"file" yaml:"file"`
	Message  string             `json:"message" yaml:"message"`
	Line     int                `json:"line" yaml:"line"`
	Column   int                `json:"column" yaml:"column"`
	EndLine  int                `json:"endLine" yaml:"endLine"`
	EndCol   int                `json:"endCol" yaml:"endCol"`
	Severity DiagnosticSeverity `json:"severity" yaml:"severity"`
	Code     int                `json:"code" yaml:"code"`
	Source   string             `json:"source,omitempty" yaml:"source,omitempty"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	if d.Source != "" {
		s += " (" + d.Source + ")"
	}
	return s
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
	Hint    DiagnosticSeverity = "hint"
)

// SeverityOf maps a language service category to a severity.
func SeverityOf(c langsvc.DiagnosticCategory) DiagnosticSeverity {
	switch c {
	case langsvc.CategoryError:
		return Error
	case langsvc.CategoryWarning:
		return Warning
	case langsvc.CategorySuggestion:
		return Hint
	}
	return Info
}

// Generator is responsible for generating diagnostics from language service results
type Generator interface {
	Generate(ctx context.Context, text string, diags []langsvc.Diagnostic) (*Diagnostics, error)
}

// DefaultGenerator is the default implementation of Generator
type DefaultGenerator struct{}

func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

// Generate converts offsets into text into lines and columns and groups the
// diagnostics by severity. text is the file the offsets refer to.
func (g *DefaultGenerator) Generate(ctx context.Context, text string, diags []langsvc.Diagnostic) (*Diagnostics, error) {
	out := &Diagnostics{
		Errors:   make([]Diagnostic, 0),
		Warnings: make([]Diagnostic, 0),
	}

	for _, d := range diags {
		if d.Start < 0 || d.Start > len(text) {
			return nil, errors.Errorf("diagnostic %q starts at %d, outside %s", d.Message, d.Start, d.FileName)
		}
		r := position.GetRange(text, d.Start, d.Start+d.Length)
		item := Diagnostic{
			File:     d.FileName,
			Message:  d.Message,
			Line:     r.Start.Line,
			Column:   r.Start.Character,
			EndLine:  r.End.Line,
			EndCol:   r.End.Character,
			Severity: SeverityOf(d.Category),
			Code:     d.Code,
			Source:   d.Source,
		}
		switch item.Severity {
		case Error:
			out.Errors = append(out.Errors, item)
		case Warning:
			out.Warnings = append(out.Warnings, item)
		default:
			out.Hints = append(out.Hints, item)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("errors", len(out.Errors)).
		Int("warnings", len(out.Warnings)).
		Int("hints", len(out.Hints)).
		Msg("generated diagnostics")

	return out, nil
}

// Merge appends the diagnostics of other to d.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Hints = append(d.Hints, other.Hints...)
}

func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Hints)
}

// All returns every diagnostic ordered by file and position.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Hints...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})
	return all
}

type Formatter interface {
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// NewFormatter returns the formatter called name: "text", "json" or "yaml".
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "text":
		return &TextFormatter{}, nil
	case "json", "vscode":
		return NewVSCodeFormatter(), nil
	case "yaml":
		return &YAMLFormatter{}, nil
	}
	return nil, errors.Errorf("unknown diagnostics format %q", name)
}

// TextFormatter prints one "file:line:col: severity: message" line per diagnostic.
type TextFormatter struct{}

func (f *TextFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}
	var sb strings.Builder
	for _, d := range diagnostics.All() {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}
	out, err := yaml.Marshal(diagnostics)
	if err != nil {
		return nil, errors.Errorf("marshalling diagnostics: %w", err)
	}
	return out, nil
}

// VSCodeFormatter emits the zero-based JSON shape editors expect.
type VSCodeFormatter struct{}

func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	File     string      `json:"file"`
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Code     int         `json:"code,omitempty"`
	Source   string      `json:"source,omitempty"`
	Range    vscodeRange `json:"range"`
}

var vscodeSeverity = map[DiagnosticSeverity]int{
	Error:   1,
	Warning: 2,
	Info:    3,
	Hint:    4,
}

func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	result := make([]vscodeDiagnostic, 0, diagnostics.Len())
	for _, d := range diagnostics.All() {
		result = append(result, vscodeDiagnostic{
			File:     d.File,
			Severity: vscodeSeverity[d.Severity],
			Message:  d.Message,
			Code:     d.Code,
			Source:   d.Source,
			Range: vscodeRange{
				Start: vscodePosition{Line: d.Line - 1, Character: d.Column - 1},
				End:   vscodePosition{Line: d.EndLine - 1, Character: d.EndCol - 1},
			},
		})
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Errorf("marshalling diagnostics: %w", err)
	}
	return out, nil
}
