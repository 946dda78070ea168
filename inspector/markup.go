package inspector

import (
	"strings"

	"github.com/chrisuehlinger/domdebug/dom"
)

const (
	placeholderText = "Click an element to inspect"
	copyLabel       = "📋 Copy Applied Styles"
	copiedLabel     = "✅ Copied!"
)

// stylesheet is the inspector's CSS. {p} is replaced by the prefix.
const stylesheet = `
.{p}-highlight, .{p}-active-highlight, .{p}-panel, .{p}-toggle {
  box-sizing: border-box;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
}
.{p}-highlight {
  position: absolute; background: #3b82f6; opacity: 0.1; border: 2px solid #3b82f6;
  pointer-events: none; z-index: 999998; border-radius: 3px; display: none;
}
.{p}-active-highlight {
  position: absolute; background: transparent; border: 2px dashed #10b981;
  pointer-events: none; z-index: 999998; border-radius: 3px; display: none;
}
.{p}-panel {
  position: fixed; top: 20px; bottom: 20px; right: -400px; width: 350px;
  background: #1f2937; color: #f9fafb; border-radius: 8px;
  z-index: 1000000; overflow: hidden; display: flex; flex-direction: column;
}
.{p}-panel.active { right: 20px; }
.{p}-panel * { box-sizing: border-box; }
.{p}-panel .panel-header {
  padding: 20px; border-bottom: 1px solid #374151;
  display: flex; justify-content: space-between; align-items: center;
}
.{p}-panel .panel-title { font-size: 1.2rem; font-weight: 600; margin: 0; }
.{p}-panel .panel-close {
  background: none; border: none; color: #f9fafb; font-size: 1.5rem; cursor: pointer; padding: 0;
  width: 30px; height: 30px; border-radius: 50%;
  display: flex; align-items: center; justify-content: center;
}
.{p}-panel .panel-content { flex: 1; overflow: auto; padding: 20px; }
.{p}-panel .element-info h3 { margin: 0 0 10px 0; font-size: 1rem; color: #9ca3af; }
.{p}-panel .element-tag {
  background: #374151; padding: 8px 12px; border-radius: 4px;
  font-family: "Monaco", "Menlo", monospace; font-size: 0.9rem;
}
.{p}-panel .style-editor { margin-top: 20px; display: none; }
.{p}-panel .style-editor h3 { margin: 0 0 10px 0; font-size: 1rem; color: #9ca3af; }
.{p}-panel .style-group { margin-bottom: 15px; }
.{p}-panel .style-group label { display: block; margin-bottom: 5px; font-size: 0.9rem; color: #9ca3af; }
.{p}-panel .style-input {
  display: block; width: 100%; padding: 8px 12px; background: #374151; border: 1px solid #4b5563;
  border-radius: 4px; color: #f9fafb; font-family: "Monaco", "Menlo", monospace; font-size: 0.85rem;
}
.{p}-panel .copy-row { margin-top: 20px; }
.{p}-panel .panel-button {
  display: block; background: #3b82f6; color: white; border: none; padding: 12px 24px;
  border-radius: 6px; cursor: pointer; font-weight: 500; width: 100%;
}
.{p}-toggle {
  position: fixed; top: 20px; right: 20px; background: #1f2937; color: #f9fafb;
  border: none; border-radius: 50%; cursor: pointer; font-size: 1.2rem; z-index: 1000000;
  width: 60px; height: 60px; display: flex; align-items: center; justify-content: center;
}
.{p}-toggle.active { background: #3b82f6; }
`

// markup holds the nodes the inspector adds to the document.
type markup struct {
	style      *dom.Element
	toggle     *dom.Element
	panel      *dom.Element
	closeBtn   *dom.Element
	elementTag *dom.Element
	editor     *dom.Element
	inputs     []*dom.Element
	copyBtn    *dom.Element
	hover      *dom.Element
	selection  *dom.Element

	created map[*dom.Node]struct{}
}

type builder struct {
	doc     *dom.Document
	created map[*dom.Node]struct{}
}

func (b *builder) el(tag, class string, children ...*dom.Element) *dom.Element {
	el := b.doc.CreateElement(tag)
	if class != "" {
		el.SetAttribute("class", class)
	}
	for _, c := range children {
		el.AppendElement(c)
	}
	b.created[el.AsNode()] = struct{}{}
	return el
}

func (b *builder) text(tag, class, text string) *dom.Element {
	el := b.el(tag, class)
	el.SetTextContent(text)
	return el
}

// buildMarkup creates the inspector's stylesheet and nodes and attaches
// them to the end of head and body.
func buildMarkup(doc *dom.Document, prefix string, properties []string) (*markup, error) {
	head, body := doc.Head(), doc.Body()
	if head == nil || body == nil {
		return nil, ErrNoBody
	}
	b := &builder{doc: doc, created: make(map[*dom.Node]struct{})}
	ui := prefix + "-ui"
	m := &markup{created: b.created}

	m.style = b.el("style", "")
	m.style.SetId(prefix + "-styles")
	m.style.SetTextContent(strings.ReplaceAll(stylesheet, "{p}", prefix))

	m.toggle = b.text("button", prefix+"-toggle "+ui, "🔍")
	m.toggle.SetAttribute("title", "Toggle DOM Inspector")

	m.closeBtn = b.text("button", "panel-close", "×")
	m.elementTag = b.text("div", "element-tag", placeholderText)
	m.copyBtn = b.text("button", "panel-button copy-styles-btn", copyLabel)

	m.editor = b.el("div", "style-editor", b.text("h3", "", "Live Style Editor"))
	for _, prop := range properties {
		input := b.el("input", "style-input")
		input.SetAttribute("type", "text")
		input.SetAttribute("data-property", prop)
		input.SetAttribute("placeholder", "e.g., 1rem, #fff, etc.")
		m.inputs = append(m.inputs, input)
		m.editor.AppendElement(b.el("div", "style-group", b.text("label", "", Label(prop)), input))
	}
	m.editor.AppendElement(b.el("div", "copy-row", m.copyBtn))

	m.panel = b.el("div", prefix+"-panel "+ui,
		b.el("div", "panel-header",
			b.text("h2", "panel-title", "DOM Inspector"),
			m.closeBtn,
		),
		b.el("div", "panel-content",
			b.el("div", "element-info",
				b.text("h3", "", "Selected Element"),
				m.elementTag,
			),
			m.editor,
		),
	)

	m.hover = b.el("div", prefix+"-highlight")
	m.selection = b.el("div", prefix+"-active-highlight")

	head.AppendElement(m.style)
	for _, el := range []*dom.Element{m.toggle, m.panel, m.hover, m.selection} {
		body.AppendElement(el)
	}
	return m, nil
}

// Label turns a camelCase property name into a field label:
// "backgroundColor" becomes "Background Color".
func Label(prop string) string {
	var sb strings.Builder
	for i, r := range prop {
		switch {
		case i == 0 && r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
		case i > 0 && r >= 'A' && r <= 'Z':
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
