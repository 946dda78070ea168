package css

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domdebug/dom"
)

// Origin is the origin of a declaration in the cascade.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
	OriginInline
)

// matchedDeclaration is a declaration that applies to an element, with the
// metadata used for cascade ordering.
type matchedDeclaration struct {
	decl        Declaration
	origin      Origin
	specificity Specificity
	order       int
}

// StyleResolver resolves computed styles for elements using the CSS cascade.
type StyleResolver struct {
	mu sync.RWMutex

	userAgentSheet *Stylesheet
	linked         map[string]*Stylesheet
	parsed         map[string]*Stylesheet
	viewportW      float64
	viewportH      float64
}

// NewStyleResolver creates a resolver with the default user agent sheet.
func NewStyleResolver() *StyleResolver {
	return &StyleResolver{
		userAgentSheet: UserAgentStylesheet(),
		linked:         make(map[string]*Stylesheet),
		parsed:         make(map[string]*Stylesheet),
		viewportW:      dom.DefaultView.Width,
		viewportH:      dom.DefaultView.Height,
	}
}

// SetViewport sets the size vw and vh units resolve against.
func (sr *StyleResolver) SetViewport(width, height float64) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.viewportW, sr.viewportH = width, height
}

// SetLinkedStylesheet registers the parsed contents of a
// <link rel="stylesheet" href="..."> so it takes part in the cascade at
// the link's position in the document.
func (sr *StyleResolver) SetLinkedStylesheet(href string, ss *Stylesheet) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.linked[href] = ss
}

// authorSheets returns the document's stylesheets in tree order: <style>
// contents and loaded <link rel="stylesheet"> sheets.
func (sr *StyleResolver) authorSheets(doc *dom.Document) []*Stylesheet {
	if doc == nil {
		return nil
	}
	var sheets []*Stylesheet
	dom.WalkElements(doc.AsNode(), func(el *dom.Element) bool {
		switch atom.Lookup([]byte(el.LocalName())) {
		case atom.Style:
			sheets = append(sheets, sr.parseCached(el.TextContent()))
		case atom.Link:
			if strings.EqualFold(el.GetAttribute("rel"), "stylesheet") {
				sr.mu.RLock()
				ss := sr.linked[el.GetAttribute("href")]
				sr.mu.RUnlock()
				if ss != nil {
					sheets = append(sheets, ss)
				}
			}
		}
		return true
	})
	return sheets
}

func (sr *StyleResolver) parseCached(text string) *Stylesheet {
	sr.mu.RLock()
	ss, ok := sr.parsed[text]
	sr.mu.RUnlock()
	if ok {
		return ss
	}
	ss = ParseStylesheet(text)
	sr.mu.Lock()
	sr.parsed[text] = ss
	sr.mu.Unlock()
	return ss
}

func (sr *StyleResolver) context() lengthContext {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return lengthContext{fontSize: 16, rootFontSize: 16, viewportW: sr.viewportW, viewportH: sr.viewportH}
}

// ComputedStyle computes the style of el from scratch, resolving its
// ancestors first for inheritance. Nothing is cached between calls.
func (sr *StyleResolver) ComputedStyle(el *dom.Element) *ComputedStyle {
	var chain []*dom.Element
	for e := el; e != nil; e = e.ParentElement() {
		chain = append(chain, e)
	}
	sheets := sr.authorSheets(el.AsNode().OwnerDocument())
	ctx := sr.context()
	var style *ComputedStyle
	for i := len(chain) - 1; i >= 0; i-- {
		style = sr.resolve(chain[i], style, sheets, ctx)
	}
	return style
}

// ComputeTree computes styles for every element of doc in one pass.
func (sr *StyleResolver) ComputeTree(doc *dom.Document) map[*dom.Element]*ComputedStyle {
	styles := make(map[*dom.Element]*ComputedStyle)
	root := doc.DocumentElement()
	if root == nil {
		return styles
	}
	sheets := sr.authorSheets(doc)
	ctx := sr.context()
	var walk func(el *dom.Element, parent *ComputedStyle)
	walk = func(el *dom.Element, parent *ComputedStyle) {
		cs := sr.resolve(el, parent, sheets, ctx)
		styles[el] = cs
		for _, child := range el.Children() {
			walk(child, cs)
		}
	}
	walk(root, nil)
	return styles
}

func (sr *StyleResolver) resolve(el *dom.Element, parent *ComputedStyle, sheets []*Stylesheet, ctx lengthContext) *ComputedStyle {
	matched := sr.collect(el, sheets)
	sortByPrecedence(matched)

	specified := make(map[string]string, len(matched))
	for _, m := range matched {
		if validDeclaration(m.decl.Property, m.decl.Value) {
			specified[m.decl.Property] = m.decl.Value
		}
	}
	return compute(specified, parent, ctx)
}

func (sr *StyleResolver) collect(el *dom.Element, sheets []*Stylesheet) []matchedDeclaration {
	var matched []matchedDeclaration
	order := 0
	add := func(ss *Stylesheet, origin Origin) {
		if ss == nil {
			return
		}
		for i := range ss.Rules {
			rule := &ss.Rules[i]
			ok, spec := rule.Selector.Match(el)
			if !ok {
				continue
			}
			for _, d := range rule.Declarations {
				matched = append(matched, matchedDeclaration{decl: d, origin: origin, specificity: spec, order: order})
				order++
			}
		}
	}
	add(sr.userAgentSheet, OriginUserAgent)
	for _, ss := range sheets {
		add(ss, OriginAuthor)
	}
	for _, d := range InlineDeclarations(el) {
		matched = append(matched, matchedDeclaration{decl: d, origin: OriginInline, order: order})
		order++
	}
	return matched
}

// sortByPrecedence orders declarations from lowest to highest precedence so
// that applying them in order lets the winner overwrite the rest.
func sortByPrecedence(decls []matchedDeclaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		a, b := decls[i], decls[j]
		if la, lb := cascadeLayer(a), cascadeLayer(b); la != lb {
			return la < lb
		}
		if cmp := a.specificity.Compare(b.specificity); cmp != 0 {
			return cmp < 0
		}
		return a.order < b.order
	})
}

func cascadeLayer(m matchedDeclaration) int {
	if m.decl.Important {
		switch m.origin {
		case OriginAuthor:
			return 3
		case OriginInline:
			return 4
		default:
			return 5
		}
	}
	switch m.origin {
	case OriginAuthor:
		return 1
	case OriginInline:
		return 2
	}
	return 0
}

// ComputedStyle holds the computed value of every known property as its
// serialized string, e.g. "16px" or "rgb(0, 0, 0)".
type ComputedStyle struct {
	values map[string]string
	parent *ComputedStyle
}

// PropertyDefault defines the initial value and inheritance of a property.
type PropertyDefault struct {
	Initial   string
	Inherited bool
}

// PropertyDefaults lists the properties the engine computes.
var PropertyDefaults = map[string]PropertyDefault{
	"display":    {"inline", false},
	"position":   {"static", false},
	"top":        {"auto", false},
	"right":      {"auto", false},
	"bottom":     {"auto", false},
	"left":       {"auto", false},
	"width":      {"auto", false},
	"height":     {"auto", false},
	"min-width":  {"0px", false},
	"min-height": {"0px", false},
	"max-width":  {"none", false},
	"max-height": {"none", false},
	"box-sizing": {"content-box", false},
	"z-index":    {"auto", false},
	"overflow":   {"visible", false},
	"opacity":    {"1", false},

	"flex-direction":  {"row", false},
	"justify-content": {"flex-start", false},
	"align-items":     {"stretch", false},
	"flex-grow":       {"0", false},

	"margin-top": {"0px", false}, "margin-right": {"0px", false}, "margin-bottom": {"0px", false}, "margin-left": {"0px", false},
	"padding-top": {"0px", false}, "padding-right": {"0px", false}, "padding-bottom": {"0px", false}, "padding-left": {"0px", false},

	"border-top-width": {"medium", false}, "border-right-width": {"medium", false}, "border-bottom-width": {"medium", false}, "border-left-width": {"medium", false},
	"border-top-style": {"none", false}, "border-right-style": {"none", false}, "border-bottom-style": {"none", false}, "border-left-style": {"none", false},
	"border-top-color": {"currentcolor", false}, "border-right-color": {"currentcolor", false}, "border-bottom-color": {"currentcolor", false}, "border-left-color": {"currentcolor", false},
	"border-top-left-radius": {"0px", false}, "border-top-right-radius": {"0px", false}, "border-bottom-right-radius": {"0px", false}, "border-bottom-left-radius": {"0px", false},

	"background-color": {"transparent", false},

	"color":          {"black", true},
	"font-family":    {"serif", true},
	"font-size":      {"medium", true},
	"font-weight":    {"400", true},
	"font-style":     {"normal", true},
	"line-height":    {"normal", true},
	"text-align":     {"start", true},
	"white-space":    {"normal", true},
	"visibility":     {"visible", true},
	"cursor":         {"auto", true},
	"pointer-events": {"auto", true},
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

func propertyKind(prop string) string {
	switch {
	case prop == "color" || strings.HasSuffix(prop, "-color"):
		return "color"
	case strings.HasSuffix(prop, "-style") && strings.HasPrefix(prop, "border-"):
		return "border-style"
	case strings.HasPrefix(prop, "border-") && strings.HasSuffix(prop, "-width"):
		return "border-width"
	case strings.HasSuffix(prop, "-radius"):
		return "length"
	case strings.HasPrefix(prop, "margin-"), strings.HasPrefix(prop, "padding-"),
		prop == "width", prop == "height", prop == "min-width", prop == "min-height",
		prop == "max-width", prop == "max-height",
		prop == "top", prop == "right", prop == "bottom", prop == "left":
		return "length"
	case prop == "font-size":
		return "font-size"
	case prop == "line-height":
		return "line-height"
	case prop == "opacity", prop == "flex-grow":
		return "number"
	}
	return "keyword"
}

// validDeclaration rejects values that cannot be computed so that they fall
// back to the next declaration in the cascade, as browsers do.
func validDeclaration(prop, value string) bool {
	if isWideKeyword(value) {
		return true
	}
	lower := strings.ToLower(value)
	switch propertyKind(prop) {
	case "color":
		_, ok := ParseColor(lower)
		return ok || lower == "currentcolor"
	case "border-style":
		return borderStyles[lower]
	case "border-width":
		l, ok := ParseLength(lower)
		return (ok && l.Unit != "%" && l.Value >= 0) || borderWidthKeywords[lower] > 0
	case "length":
		if lower == "auto" || lower == "none" {
			return true
		}
		l, ok := ParseLength(lower)
		if !ok {
			return false
		}
		if strings.HasPrefix(prop, "padding-") || strings.HasSuffix(prop, "-radius") {
			return l.Value >= 0
		}
		return true
	case "font-size":
		if _, ok := fontSizeKeywords[lower]; ok || lower == "smaller" || lower == "larger" {
			return true
		}
		l, ok := ParseLength(lower)
		return ok && l.Value >= 0
	case "line-height":
		if lower == "normal" {
			return true
		}
		_, ok := ParseLength(lower)
		return ok
	case "number":
		_, err := strconv.ParseFloat(lower, 64)
		return err == nil
	}
	return strings.TrimSpace(value) != ""
}

func compute(specified map[string]string, parent *ComputedStyle, ctx lengthContext) *ComputedStyle {
	cs := &ComputedStyle{values: make(map[string]string, len(PropertyDefaults)), parent: parent}

	value := func(prop string) string {
		def, known := PropertyDefaults[prop]
		v, ok := specified[prop]
		if !ok {
			if known && def.Inherited && parent != nil {
				return "inherit"
			}
			return def.Initial
		}
		switch strings.ToLower(v) {
		case "initial":
			return def.Initial
		case "unset", "revert":
			if def.Inherited && parent != nil {
				return "inherit"
			}
			return def.Initial
		}
		return v
	}
	inherit := func(prop string) (string, bool) {
		if parent == nil {
			return "", false
		}
		v, ok := parent.values[prop]
		return v, ok
	}

	// font-size and color first: em units and currentcolor depend on them.
	parentFont := 16.0
	rootFont := ctx.rootFontSize
	if parent != nil {
		parentFont = parent.px("font-size", 0)
		root := parent
		for root.parent != nil {
			root = root.parent
		}
		rootFont = root.px("font-size", 0)
	}
	fontSize := computeFontSize(value("font-size"), parentFont, rootFont, ctx)
	cs.values["font-size"] = px(fontSize)
	if parent == nil {
		rootFont = fontSize
	}
	ctx.fontSize = fontSize
	ctx.rootFontSize = rootFont

	color := Color{0, 0, 0, 255}
	if v := value("color"); v == "inherit" {
		if pv, ok := inherit("color"); ok {
			color, _ = ParseColor(pv)
		}
	} else if strings.EqualFold(v, "currentcolor") {
		if pv, ok := inherit("color"); ok {
			color, _ = ParseColor(pv)
		}
	} else if c, ok := ParseColor(v); ok {
		color = c
	}
	cs.values["color"] = color.String()

	for prop := range PropertyDefaults {
		if prop == "font-size" || prop == "color" {
			continue
		}
		v := value(prop)
		if v == "inherit" {
			if pv, ok := inherit(prop); ok {
				cs.values[prop] = pv
				continue
			}
			v = PropertyDefaults[prop].Initial
		}
		cs.values[prop] = computeValue(prop, v, color, ctx)
	}
	// Properties the engine does not model are carried through verbatim.
	for prop, v := range specified {
		if _, known := PropertyDefaults[prop]; !known && !isWideKeyword(v) {
			cs.values[prop] = v
		}
	}

	for _, side := range sides {
		style := cs.values["border-"+side+"-style"]
		if style == "none" || style == "hidden" {
			cs.values["border-"+side+"-width"] = "0px"
		}
	}
	return cs
}

func computeFontSize(v string, parentFont, rootFont float64, ctx lengthContext) float64 {
	lower := strings.ToLower(v)
	if lower == "inherit" {
		return parentFont
	}
	if size, ok := fontSizeKeywords[lower]; ok {
		return size
	}
	switch lower {
	case "smaller":
		return parentFont / 1.2
	case "larger":
		return parentFont * 1.2
	}
	l, ok := ParseLength(lower)
	if !ok {
		return parentFont
	}
	if l.Unit == "%" {
		return parentFont * l.Value / 100
	}
	ctx.fontSize = parentFont
	ctx.rootFontSize = rootFont
	if size, ok := l.toPx(ctx); ok {
		return size
	}
	return parentFont
}

func computeValue(prop, v string, color Color, ctx lengthContext) string {
	lower := strings.ToLower(strings.TrimSpace(v))
	switch propertyKind(prop) {
	case "color":
		if lower == "currentcolor" {
			return color.String()
		}
		if c, ok := ParseColor(lower); ok {
			return c.String()
		}
	case "border-width":
		if w, ok := borderWidthKeywords[lower]; ok {
			return px(w)
		}
		if l, ok := ParseLength(lower); ok {
			if n, ok := l.toPx(ctx); ok {
				return px(n)
			}
		}
	case "length":
		if l, ok := ParseLength(lower); ok {
			if l.Unit == "%" {
				return formatNumber(l.Value) + "%"
			}
			if n, ok := l.toPx(ctx); ok {
				return px(n)
			}
		}
	case "line-height":
		if l, ok := ParseLength(lower); ok {
			switch l.Unit {
			case "":
				return formatNumber(l.Value)
			case "%":
				return px(ctx.fontSize * l.Value / 100)
			}
			if n, ok := l.toPx(ctx); ok {
				return px(n)
			}
		}
	case "number":
		if f, err := strconv.ParseFloat(lower, 64); err == nil {
			if prop == "opacity" {
				f = clamp01(f)
			}
			return formatNumber(f)
		}
	case "keyword":
		if prop == "font-family" {
			return strings.TrimSpace(v)
		}
	}
	return lower
}

// Value returns the computed value of prop as getComputedStyle would
// serialize it. Shorthands (margin, padding, border, border-radius and
// friends) are assembled from their longhands; a border whose sides differ
// serializes as "". camelCase names are accepted.
func (cs *ComputedStyle) Value(prop string) string {
	prop = dom.NormalizePropertyName(prop)
	switch prop {
	case "margin", "padding":
		return minimizeBox(cs.four(prop+"-", "", sides))
	case "border-width", "border-style", "border-color":
		return minimizeBox(cs.four("border-", strings.TrimPrefix(prop, "border"), sides))
	case "border-radius":
		return minimizeBox(cs.four("border-", "-radius", corners))
	case "border-top", "border-right", "border-bottom", "border-left":
		return cs.borderSide(strings.TrimPrefix(prop, "border-"))
	case "border":
		first := cs.borderSide("top")
		for _, side := range sides[1:] {
			if cs.borderSide(side) != first {
				return ""
			}
		}
		return first
	case "background":
		return cs.values["background-color"]
	}
	return cs.values[prop]
}

func (cs *ComputedStyle) four(prefix, suffix string, names [4]string) [4]string {
	var out [4]string
	for i, n := range names {
		out[i] = cs.values[prefix+n+suffix]
	}
	return out
}

func (cs *ComputedStyle) borderSide(side string) string {
	p := "border-" + side
	return cs.values[p+"-width"] + " " + cs.values[p+"-style"] + " " + cs.values[p+"-color"]
}

// Keyword returns the computed value of a keyword property.
func (cs *ComputedStyle) Keyword(prop string) string {
	return cs.values[prop]
}

// IsAuto reports whether prop computed to "auto" (or "none" for max sizes).
func (cs *ComputedStyle) IsAuto(prop string) bool {
	v := cs.values[prop]
	return v == "auto" || v == "none" || v == ""
}

// Px returns prop in pixels. Percentages resolve against base; auto and
// other keywords yield 0.
func (cs *ComputedStyle) Px(prop string, base float64) float64 {
	return cs.px(prop, base)
}

func (cs *ComputedStyle) px(prop string, base float64) float64 {
	v := cs.values[prop]
	if strings.HasSuffix(v, "%") {
		f, _ := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		return base * f / 100
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// Color returns the computed color of prop.
func (cs *ComputedStyle) Color(prop string) Color {
	c, _ := ParseColor(cs.values[prop])
	return c
}

// Number returns a unitless numeric property such as opacity.
func (cs *ComputedStyle) Number(prop string) float64 {
	f, _ := strconv.ParseFloat(cs.values[prop], 64)
	return f
}

// LineHeight returns the used line height in pixels.
func (cs *ComputedStyle) LineHeight() float64 {
	fontSize := cs.px("font-size", 0)
	v := cs.values["line-height"]
	switch {
	case v == "normal" || v == "":
		return fontSize * 1.2
	case strings.HasSuffix(v, "px"):
		return cs.px("line-height", 0)
	}
	f, _ := strconv.ParseFloat(v, 64)
	return fontSize * f
}
