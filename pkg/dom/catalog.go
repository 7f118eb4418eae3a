package dom

import (
	"reflect"
	"sort"
	"strings"

	"github.com/walteh/ngtmpls/pkg/langsvc"
)

// GenericElement is used for tags with no specific element type.
const GenericElement = "HTMLElement"

var tagTypes = map[string]string{
	"a":          "HTMLAnchorElement",
	"abbr":       "HTMLPhraseElement",
	"address":    "HTMLBlockElement",
	"area":       "HTMLAreaElement",
	"audio":      "HTMLAudioElement",
	"b":          "HTMLPhraseElement",
	"base":       "HTMLBaseElement",
	"bdo":        "HTMLPhraseElement",
	"blockquote": "HTMLQuoteElement",
	"body":       "HTMLBodyElement",
	"br":         "HTMLBRElement",
	"button":     "HTMLButtonElement",
	"canvas":     "HTMLCanvasElement",
	"caption":    "HTMLTableCaptionElement",
	"center":     "HTMLBlockElement",
	"cite":       "HTMLPhraseElement",
	"code":       "HTMLPhraseElement",
	"col":        "HTMLTableColElement",
	"colgroup":   "HTMLTableColElement",
	"datalist":   "HTMLDataListElement",
	"dd":         "HTMLElement",
	"del":        "HTMLModElement",
	"dfn":        "HTMLPhraseElement",
	"div":        "HTMLDivElement",
	"dl":         "HTMLDListElement",
	"dt":         "HTMLElement",
	"em":         "HTMLPhraseElement",
	"embed":      "HTMLEmbedElement",
	"fieldset":   "HTMLFieldSetElement",
	"form":       "HTMLFormElement",
	"h1":         "HTMLHeadingElement",
	"h2":         "HTMLHeadingElement",
	"h3":         "HTMLHeadingElement",
	"h4":         "HTMLHeadingElement",
	"h5":         "HTMLHeadingElement",
	"h6":         "HTMLHeadingElement",
	"head":       "HTMLHeadElement",
	"hr":         "HTMLHRElement",
	"html":       "HTMLHtmlElement",
	"i":          "HTMLPhraseElement",
	"iframe":     "HTMLIFrameElement",
	"img":        "HTMLImageElement",
	"input":      "HTMLInputElement",
	"ins":        "HTMLModElement",
	"kbd":        "HTMLPhraseElement",
	"label":      "HTMLLabelElement",
	"legend":     "HTMLLegendElement",
	"li":         "HTMLLIElement",
	"link":       "HTMLLinkElement",
	"map":        "HTMLMapElement",
	"meta":       "HTMLMetaElement",
	"object":     "HTMLObjectElement",
	"ol":         "HTMLOListElement",
	"optgroup":   "HTMLOptGroupElement",
	"option":     "HTMLOptionElement",
	"p":          "HTMLParagraphElement",
	"param":      "HTMLParamElement",
	"pre":        "HTMLPreElement",
	"progress":   "HTMLProgressElement",
	"q":          "HTMLQuoteElement",
	"rt":         "HTMLPhraseElement",
	"ruby":       "HTMLPhraseElement",
	"s":          "HTMLPhraseElement",
	"samp":       "HTMLPhraseElement",
	"script":     "HTMLScriptElement",
	"select":     "HTMLSelectElement",
	"small":      "HTMLPhraseElement",
	"source":     "HTMLSourceElement",
	"span":       "HTMLSpanElement",
	"strike":     "HTMLPhraseElement",
	"strong":     "HTMLPhraseElement",
	"style":      "HTMLStyleElement",
	"sub":        "HTMLPhraseElement",
	"sup":        "HTMLPhraseElement",
	"table":      "HTMLTableElement",
	"tbody":      "HTMLTableSectionElement",
	"td":         "HTMLTableCellElement",
	"textarea":   "HTMLTextAreaElement",
	"tfoot":      "HTMLTableSectionElement",
	"th":         "HTMLTableCellElement",
	"thead":      "HTMLTableSectionElement",
	"title":      "HTMLTitleElement",
	"tr":         "HTMLTableRowElement",
	"track":      "HTMLTrackElement",
	"tt":         "HTMLPhraseElement",
	"u":          "HTMLPhraseElement",
	"ul":         "HTMLUListElement",
	"var":        "HTMLPhraseElement",
	"video":      "HTMLVideoElement",
	"xmp":        "HTMLBlockElement",
}

var elementTypes = map[string]reflect.Type{}

func init() {
	for _, v := range []any{
		HTMLElement{}, HTMLAnchorElement{}, HTMLAreaElement{}, HTMLMediaElement{}, HTMLAudioElement{},
		HTMLVideoElement{}, HTMLBRElement{}, HTMLBaseElement{}, HTMLBodyElement{}, HTMLButtonElement{},
		HTMLCanvasElement{}, HTMLDListElement{}, HTMLDataListElement{}, HTMLDivElement{}, HTMLEmbedElement{},
		HTMLFieldSetElement{}, HTMLFormElement{}, HTMLHRElement{}, HTMLHeadElement{}, HTMLHeadingElement{},
		HTMLHtmlElement{}, HTMLIFrameElement{}, HTMLImageElement{}, HTMLInputElement{}, HTMLLIElement{},
		HTMLLabelElement{}, HTMLLegendElement{}, HTMLLinkElement{}, HTMLMapElement{}, HTMLMetaElement{},
		HTMLModElement{}, HTMLOListElement{}, HTMLObjectElement{}, HTMLOptGroupElement{}, HTMLOptionElement{},
		HTMLParagraphElement{}, HTMLParamElement{}, HTMLPhraseElement{}, HTMLBlockElement{}, HTMLPreElement{},
		HTMLProgressElement{}, HTMLQuoteElement{}, HTMLScriptElement{}, HTMLSelectElement{}, HTMLSourceElement{},
		HTMLSpanElement{}, HTMLStyleElement{}, HTMLTableCaptionElement{}, HTMLTableColElement{}, HTMLTableElement{},
		HTMLTableSectionElement{}, HTMLTableCellElement{}, HTMLTableRowElement{}, HTMLTextAreaElement{},
		HTMLTitleElement{}, HTMLTrackElement{}, HTMLUListElement{},
	} {
		t := reflect.TypeOf(v)
		elementTypes[t.Name()] = t
	}
}

// TypeForTag returns the element type name for a tag. Tag names are matched
// case-insensitively; unknown tags get GenericElement.
func TypeForTag(tag string) (string, bool) {
	name, ok := tagTypes[strings.ToLower(tag)]
	if !ok {
		return GenericElement, false
	}
	return name, true
}

// Tags lists every known tag name in order.
func Tags() []string {
	out := make([]string, 0, len(tagTypes))
	for tag := range tagTypes {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Members lists the exported fields and methods of an element type, promoted
// members included. Func-typed fields and methods are callable.
func Members(typeName string) ([]langsvc.Member, bool) {
	t, ok := elementTypes[typeName]
	if !ok {
		return nil, false
	}

	seen := map[string]bool{}
	var out []langsvc.Member
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, langsvc.Member{
			Name:     f.Name,
			Callable: f.Type.Kind() == reflect.Func,
			Type:     f.Type.String(),
		})
	}

	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		out = append(out, langsvc.Member{
			Name:     m.Name,
			Callable: true,
			Method:   true,
			Type:     m.Type.String(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, true
}

// Catalog resolves tags to element types, with project specific tags taking
// precedence over the built-in table.
type Catalog struct {
	custom map[string]string
}

func NewCatalog(custom map[string]string) *Catalog {
	c := &Catalog{custom: map[string]string{}}
	for tag, typ := range custom {
		c.custom[strings.ToLower(tag)] = typ
	}
	return c
}

func (c *Catalog) ElementType(tag string) string {
	if typ, ok := c.custom[strings.ToLower(tag)]; ok {
		return typ
	}
	typ, _ := TypeForTag(tag)
	return typ
}

// Tags lists built-in and custom tag names.
func (c *Catalog) Tags() []string {
	out := Tags()
	for tag := range c.custom {
		if _, ok := tagTypes[tag]; !ok {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveMemberNames lists the members of a built-in element type. Custom
// element types are not known here and resolve to nothing.
func (c *Catalog) ResolveMemberNames(typeName string) []langsvc.Member {
	members, _ := Members(typeName)
	return members
}
