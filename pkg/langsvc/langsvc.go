// Package langsvc holds the result shapes shared by the template service and
// the Go analysis session: completions, quick info, definitions and diagnostics.
// All offsets are 0-based byte offsets into a file's text.
package langsvc

import "fmt"

type TextSpan struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

func (s TextSpan) End() int {
	return s.Start + s.Length
}

func (s TextSpan) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End())
}

type ElementKind string

const (
	KindUnknown   ElementKind = ""
	KindKeyword   ElementKind = "keyword"
	KindElement   ElementKind = "element"
	KindField     ElementKind = "field"
	KindMethod    ElementKind = "method"
	KindFunction  ElementKind = "function"
	KindVariable  ElementKind = "var"
	KindLocal     ElementKind = "local var"
	KindConst     ElementKind = "const"
	KindType      ElementKind = "type"
	KindPackage   ElementKind = "package"
	KindParameter ElementKind = "parameter"
	KindDirective ElementKind = "directive"
	KindEvent     ElementKind = "event"
	KindProperty  ElementKind = "property"
)

type CompletionEntry struct {
	Name          string      `json:"name"`
	Kind          ElementKind `json:"kind"`
	KindModifiers string      `json:"kindModifiers,omitempty"`
	SortText      string      `json:"sortText"`
}

type CompletionInfo struct {
	IsMemberCompletion      bool              `json:"isMemberCompletion"`
	IsNewIdentifierLocation bool              `json:"isNewIdentifierLocation"`
	Entries                 []CompletionEntry `json:"entries"`
}

type SymbolDisplayPart struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// DisplayString joins the parts' text.
func DisplayString(parts []SymbolDisplayPart) string {
	out := ""
	for _, p := range parts {
		out += p.Text
	}
	return out
}

type CompletionEntryDetails struct {
	Name          string              `json:"name"`
	Kind          ElementKind         `json:"kind"`
	KindModifiers string              `json:"kindModifiers,omitempty"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
}

type QuickInfo struct {
	Kind          ElementKind         `json:"kind"`
	KindModifiers string              `json:"kindModifiers,omitempty"`
	TextSpan      TextSpan            `json:"textSpan"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
}

type DefinitionInfo struct {
	FileName      string      `json:"fileName"`
	TextSpan      TextSpan    `json:"textSpan"`
	Kind          ElementKind `json:"kind"`
	Name          string      `json:"name"`
	ContainerName string      `json:"containerName,omitempty"`
}

type DiagnosticCategory int

const (
	CategoryWarning DiagnosticCategory = iota
	CategoryError
	CategorySuggestion
	CategoryMessage
)

func (c DiagnosticCategory) String() string {
	switch c {
	case CategoryWarning:
		return "warning"
	case CategoryError:
		return "error"
	case CategorySuggestion:
		return "suggestion"
	case CategoryMessage:
		return "message"
	}
	return fmt.Sprintf("DiagnosticCategory(%d)", int(c))
}

func (c DiagnosticCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type Diagnostic struct {
	FileName string             `json:"fileName"`
	Start    int                `json:"start"`
	Length   int                `json:"length"`
	Message  string             `json:"message"`
	Category DiagnosticCategory `json:"category"`
	Code     int                `json:"code"`
	Source   string             `json:"source,omitempty"`
}

// Member is a field or method of a type, as seen by completion and projection.
type Member struct {
	Name     string `json:"name"`
	Callable bool   `json:"callable"`
	Method   bool   `json:"method,omitempty"`
	Type     string `json:"type,omitempty"`
}

// MemberResolver answers which members a named type has.
type MemberResolver interface {
	ResolveMemberNames(typeName string) []Member
}

// MemberResolverFunc adapts a function to MemberResolver.
type MemberResolverFunc func(typeName string) []Member

func (f MemberResolverFunc) ResolveMemberNames(typeName string) []Member {
	return f(typeName)
}
