// Package dom declares the element types that template tags are checked
// against. Component files import it so generated code can refer to
// dom.HTMLDivElement and friends.
package dom

// Event is passed to every event handler.
type Event struct {
	Type             string
	Target           *HTMLElement
	CurrentTarget    *HTMLElement
	Bubbles          bool
	DefaultPrevented bool
	TimeStamp        float64

	// set for keyboard events
	Key      string
	Code     string
	AltKey   bool
	CtrlKey  bool
	ShiftKey bool
	MetaKey  bool

	// set for pointer events
	ClientX int
	ClientY int
	Button  int
}

func (e *Event) PreventDefault() {
	e.DefaultPrevented = true
}

func (e *Event) StopPropagation() {}

type Rect struct {
	X, Y, Width, Height float64
}

// HTMLElement holds what every element has. Specific elements embed it.
type HTMLElement struct {
	ID              string
	ClassName       string
	Title           string
	Lang            string
	Dir             string
	InnerText       string
	InnerHTML       string
	Hidden          bool
	Draggable       bool
	ContentEditable string
	TabIndex        int
	AccessKey       string
	Style           map[string]string
	Dataset         map[string]string

	OnClick       func(Event)
	OnDblClick    func(Event)
	OnMouseDown   func(Event)
	OnMouseUp     func(Event)
	OnMouseEnter  func(Event)
	OnMouseLeave  func(Event)
	OnMouseMove   func(Event)
	OnKeyDown     func(Event)
	OnKeyUp       func(Event)
	OnKeyPress    func(Event)
	OnFocus       func(Event)
	OnBlur        func(Event)
	OnInput       func(Event)
	OnChange      func(Event)
	OnScroll      func(Event)
	OnWheel       func(Event)
	OnDragStart   func(Event)
	OnDrop        func(Event)
	OnContextMenu func(Event)
}

func (e *HTMLElement) Focus()                          {}
func (e *HTMLElement) Blur()                           {}
func (e *HTMLElement) Click()                          {}
func (e *HTMLElement) GetAttribute(name string) string { return "" }
func (e *HTMLElement) SetAttribute(name, value string) {}
func (e *HTMLElement) GetBoundingClientRect() Rect     { return Rect{} }
func (e *HTMLElement) ScrollIntoView()                 {}

type HTMLAnchorElement struct {
	HTMLElement
	Href     string
	Target   string
	Rel      string
	Download string
}

type HTMLAreaElement struct {
	HTMLElement
	Alt    string
	Coords string
	Shape  string
	Href   string
}

type HTMLMediaElement struct {
	HTMLElement
	Src          string
	Autoplay     bool
	Controls     bool
	Loop         bool
	Muted        bool
	Paused       bool
	CurrentTime  float64
	Duration     float64
	Volume       float64
	OnPlay       func(Event)
	OnPause      func(Event)
	OnEnded      func(Event)
	OnTimeUpdate func(Event)
}

func (e *HTMLMediaElement) Play()  {}
func (e *HTMLMediaElement) Pause() {}
func (e *HTMLMediaElement) Load()  {}

type HTMLAudioElement struct {
	HTMLMediaElement
}

type HTMLVideoElement struct {
	HTMLMediaElement
	Width       int
	Height      int
	Poster      string
	VideoWidth  int
	VideoHeight int
}

type HTMLBRElement struct {
	HTMLElement
}

type HTMLBaseElement struct {
	HTMLElement
	Href   string
	Target string
}

type HTMLBodyElement struct {
	HTMLElement
	OnLoad   func(Event)
	OnUnload func(Event)
	OnResize func(Event)
}

type HTMLButtonElement struct {
	HTMLElement
	Disabled  bool
	Name      string
	Type      string
	Value     string
	Autofocus bool
	Form      *HTMLFormElement
}

type HTMLCanvasElement struct {
	HTMLElement
	Width  int
	Height int
}

func (e *HTMLCanvasElement) ToDataURL(kind string) string { return "" }

type HTMLDListElement struct {
	HTMLElement
}

type HTMLDataListElement struct {
	HTMLElement
	Options []*HTMLOptionElement
}

type HTMLDivElement struct {
	HTMLElement
	Align string
}

type HTMLEmbedElement struct {
	HTMLElement
	Src    string
	Type   string
	Width  string
	Height string
}

type HTMLFieldSetElement struct {
	HTMLElement
	Disabled bool
	Name     string
}

type HTMLFormElement struct {
	HTMLElement
	Action   string
	Method   string
	Enctype  string
	Name     string
	Target   string
	OnSubmit func(Event)
	OnReset  func(Event)
}

func (e *HTMLFormElement) Submit()             {}
func (e *HTMLFormElement) Reset()              {}
func (e *HTMLFormElement) CheckValidity() bool { return true }

type HTMLHRElement struct {
	HTMLElement
}

type HTMLHeadElement struct {
	HTMLElement
}

type HTMLHeadingElement struct {
	HTMLElement
	Align string
}

type HTMLHtmlElement struct {
	HTMLElement
	Version string
}

type HTMLIFrameElement struct {
	HTMLElement
	Src     string
	Name    string
	Width   string
	Height  string
	Sandbox string
	Allow   string
	OnLoad  func(Event)
}

type HTMLImageElement struct {
	HTMLElement
	Src           string
	Alt           string
	Width         int
	Height        int
	NaturalWidth  int
	NaturalHeight int
	Complete      bool
	Loading       string
	OnLoad        func(Event)
	OnError       func(Event)
}

type HTMLInputElement struct {
	HTMLElement
	Type           string
	Name           string
	Value          string
	Placeholder    string
	Checked        bool
	Disabled       bool
	ReadOnly       bool
	Required       bool
	Autofocus      bool
	Multiple       bool
	Min            string
	Max            string
	Step           string
	MaxLength      int
	Pattern        string
	SelectionStart int
	SelectionEnd   int
	Form           *HTMLFormElement
	OnInvalid      func(Event)
	OnSelect       func(Event)
}

func (e *HTMLInputElement) Select()             {}
func (e *HTMLInputElement) CheckValidity() bool { return true }

type HTMLLIElement struct {
	HTMLElement
	Value int
}

type HTMLLabelElement struct {
	HTMLElement
	HTMLFor string
	Form    *HTMLFormElement
}

type HTMLLegendElement struct {
	HTMLElement
	Align string
}

type HTMLLinkElement struct {
	HTMLElement
	Href     string
	Rel      string
	Type     string
	Media    string
	Hreflang string
}

type HTMLMapElement struct {
	HTMLElement
	Name  string
	Areas []*HTMLAreaElement
}

type HTMLMetaElement struct {
	HTMLElement
	Name      string
	Content   string
	HTTPEquiv string
}

type HTMLModElement struct {
	HTMLElement
	Cite     string
	DateTime string
}

type HTMLOListElement struct {
	HTMLElement
	Start    int
	Reversed bool
	Type     string
}

type HTMLObjectElement struct {
	HTMLElement
	Data   string
	Type   string
	Name   string
	Width  string
	Height string
}

type HTMLOptGroupElement struct {
	HTMLElement
	Disabled bool
	Label    string
}

type HTMLOptionElement struct {
	HTMLElement
	Disabled bool
	Label    string
	Selected bool
	Text     string
	Value    string
	Index    int
}

type HTMLParagraphElement struct {
	HTMLElement
	Align string
}

type HTMLParamElement struct {
	HTMLElement
	Name  string
	Value string
}

// HTMLPhraseElement covers inline text-level tags with no extra behaviour.
type HTMLPhraseElement struct {
	HTMLElement
	Cite     string
	DateTime string
}

// HTMLBlockElement covers legacy block-level tags.
type HTMLBlockElement struct {
	HTMLElement
	Cite  string
	Width int
}

type HTMLPreElement struct {
	HTMLElement
	Width int
}

type HTMLProgressElement struct {
	HTMLElement
	Value    float64
	Max      float64
	Position float64
}

type HTMLQuoteElement struct {
	HTMLElement
	Cite string
}

type HTMLScriptElement struct {
	HTMLElement
	Src   string
	Type  string
	Async bool
	Defer bool
	Text  string
}

type HTMLSelectElement struct {
	HTMLElement
	Name          string
	Value         string
	Disabled      bool
	Multiple      bool
	Required      bool
	Size          int
	SelectedIndex int
	Options       []*HTMLOptionElement
	Form          *HTMLFormElement
}

func (e *HTMLSelectElement) Add(option *HTMLOptionElement) {}
func (e *HTMLSelectElement) Remove(index int)              {}

type HTMLSourceElement struct {
	HTMLElement
	Src   string
	Type  string
	Media string
}

type HTMLSpanElement struct {
	HTMLElement
}

type HTMLStyleElement struct {
	HTMLElement
	Media string
	Type  string
}

type HTMLTableCaptionElement struct {
	HTMLElement
	Align string
}

type HTMLTableColElement struct {
	HTMLElement
	Span  int
	Width string
}

type HTMLTableElement struct {
	HTMLElement
	Caption *HTMLTableCaptionElement
	THead   *HTMLTableSectionElement
	TFoot   *HTMLTableSectionElement
	TBodies []*HTMLTableSectionElement
	Rows    []*HTMLTableRowElement
	Border  string
}

func (e *HTMLTableElement) InsertRow(index int) *HTMLTableRowElement { return nil }
func (e *HTMLTableElement) DeleteRow(index int)                      {}

type HTMLTableSectionElement struct {
	HTMLElement
	Rows []*HTMLTableRowElement
}

type HTMLTableCellElement struct {
	HTMLElement
	ColSpan   int
	RowSpan   int
	Headers   string
	CellIndex int
}

type HTMLTableRowElement struct {
	HTMLElement
	Cells           []*HTMLTableCellElement
	RowIndex        int
	SectionRowIndex int
}

func (e *HTMLTableRowElement) InsertCell(index int) *HTMLTableCellElement { return nil }

type HTMLTextAreaElement struct {
	HTMLElement
	Name        string
	Value       string
	Placeholder string
	Rows        int
	Cols        int
	Disabled    bool
	ReadOnly    bool
	Required    bool
	MaxLength   int
	Wrap        string
	Form        *HTMLFormElement
	OnSelect    func(Event)
}

func (e *HTMLTextAreaElement) Select() {}

type HTMLTitleElement struct {
	HTMLElement
	Text string
}

type HTMLTrackElement struct {
	HTMLElement
	Kind    string
	Src     string
	Srclang string
	Label   string
	Default bool
}

type HTMLUListElement struct {
	HTMLElement
}
