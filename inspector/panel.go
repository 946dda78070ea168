package inspector

import (
	"strings"

	"github.com/chrisuehlinger/domdebug/dom"
)

// DefaultProperties are the style properties bound to panel fields.
var DefaultProperties = []string{
	"backgroundColor",
	"color",
	"fontSize",
	"padding",
	"border",
	"borderRadius",
}

// Panel binds the style properties of one element to editable fields.
// Fields show the element's inline value when it has one and the computed
// value otherwise; edits always go to the inline style.
type Panel struct {
	host       Host
	properties []string
	fields     map[string]*dom.Element

	root       *dom.Element
	header     *dom.Element
	editor     *dom.Element
	copyButton *dom.Element

	target           *dom.Element
	requestRemeasure func()
}

func newPanel(host Host, m *markup, properties []string, remeasure func()) *Panel {
	p := &Panel{
		host:             host,
		properties:       properties,
		fields:           make(map[string]*dom.Element, len(properties)),
		root:             m.panel,
		header:           m.elementTag,
		editor:           m.editor,
		copyButton:       m.copyBtn,
		requestRemeasure: remeasure,
	}
	for i, prop := range properties {
		p.fields[prop] = m.inputs[i]
	}
	return p
}

// Load shows el in the header and fills every field.
func (p *Panel) Load(el *dom.Element) {
	p.target = el
	p.header.SetTextContent(Describe(el))
	p.host.SetInlineStyle(p.editor, "display", "block")
	for _, prop := range p.properties {
		v := p.host.InlineStyle(el, prop)
		if v == "" {
			v = p.host.ComputedStyle(el, prop)
		}
		p.fields[prop].SetAttribute("value", v)
	}
}

// Apply writes value to the target's inline style without validating it
// and asks for the selection to be measured again.
func (p *Panel) Apply(prop, value string) {
	if p.target == nil {
		return
	}
	p.host.SetInlineStyle(p.target, prop, value)
	if f, ok := p.fields[prop]; ok && f.GetAttribute("value") != value {
		f.SetAttribute("value", value)
	}
	if p.requestRemeasure != nil {
		p.requestRemeasure()
	}
}

// ExportAppliedStyles returns the target's style attribute verbatim.
func (p *Panel) ExportAppliedStyles() string {
	if p.target == nil {
		return ""
	}
	text, _ := p.host.StyleAttribute(p.target)
	return text
}

// Reset clears the target and shows the placeholder.
func (p *Panel) Reset() {
	p.target = nil
	p.header.SetTextContent(placeholderText)
	p.host.SetInlineStyle(p.editor, "display", "none")
}

// Header returns the header text.
func (p *Panel) Header() string {
	return p.header.TextContent()
}

// Target returns the element the panel is bound to, or nil.
func (p *Panel) Target() *dom.Element {
	return p.target
}

// Field returns the value shown for prop.
func (p *Panel) Field(prop string) string {
	f, ok := p.fields[prop]
	if !ok {
		return ""
	}
	return f.GetAttribute("value")
}

// Fields returns every bound property with its shown value, in panel
// order.
func (p *Panel) Fields() []FieldValue {
	out := make([]FieldValue, len(p.properties))
	for i, prop := range p.properties {
		out[i] = FieldValue{Property: prop, Label: Label(prop), Value: p.Field(prop)}
	}
	return out
}

// Properties returns the bound property names.
func (p *Panel) Properties() []string {
	return p.properties
}

// Bound reports whether prop has a field.
func (p *Panel) Bound(prop string) bool {
	_, ok := p.fields[prop]
	return ok
}

// CopyLabel returns the copy button text.
func (p *Panel) CopyLabel() string {
	return p.copyButton.TextContent()
}

func (p *Panel) setCopyLabel(text string) {
	p.copyButton.SetTextContent(text)
}

// FieldValue is one row of the panel.
type FieldValue struct {
	Property string
	Label    string
	Value    string
}

// Describe returns tag#id.class1.class2 for el.
func Describe(el *dom.Element) string {
	var sb strings.Builder
	sb.WriteString(el.LocalName())
	if id := el.Id(); id != "" {
		sb.WriteString("#" + id)
	}
	for _, c := range el.ClassList().Values() {
		sb.WriteString("." + c)
	}
	return sb.String()
}
