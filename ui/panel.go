package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/domdebug/inspector"
)

const noSelection = "Click an element to inspect"

// StylePanel mirrors the in-page panel with native widgets so it stays
// usable when the page is scrolled away from it.
type StylePanel struct {
	Header  *widget.Label
	Entries map[string]*widget.Entry
	Copy    *widget.Button
	Close   *widget.Button

	properties []string
	form       *widget.Form
	content    *fyne.Container
	syncing    bool

	OnInput func(prop, value string)
	OnCopy  func()
	OnClose func()
}

// NewStylePanel creates entries for properties in order.
func NewStylePanel(properties []string) *StylePanel {
	p := &StylePanel{
		Header:     widget.NewLabelWithStyle(noSelection, fyne.TextAlignLeading, fyne.TextStyle{Monospace: true}),
		Entries:    make(map[string]*widget.Entry, len(properties)),
		properties: properties,
		form:       widget.NewForm(),
	}
	for _, prop := range properties {
		entry := widget.NewEntry()
		entry.OnChanged = func(value string) {
			if p.syncing || p.OnInput == nil {
				return
			}
			p.OnInput(prop, value)
		}
		p.Entries[prop] = entry
		p.form.Append(inspector.Label(prop), entry)
	}
	p.Copy = widget.NewButtonWithIcon("📋 Copy Applied Styles", theme.ContentCopyIcon(), func() {
		if p.OnCopy != nil {
			p.OnCopy()
		}
	})
	p.Close = widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		if p.OnClose != nil {
			p.OnClose()
		}
	})
	p.content = container.NewBorder(
		container.NewBorder(nil, nil, nil, p.Close, p.Header),
		p.Copy, nil, nil,
		container.NewVScroll(p.form),
	)
	p.form.Hide()
	p.Copy.Disable()
	return p
}

// Object returns the panel's root canvas object.
func (p *StylePanel) Object() fyne.CanvasObject {
	return p.content
}

// Update shows s. Entries are written without echoing back as input.
func (p *StylePanel) Update(s inspector.Snapshot) {
	p.syncing = true
	defer func() { p.syncing = false }()

	if s.Selected == nil {
		p.Header.SetText(noSelection)
		p.form.Hide()
		p.Copy.Disable()
	} else {
		p.Header.SetText(s.Header)
		p.form.Show()
		p.Copy.Enable()
	}
	for _, f := range s.Fields {
		if entry, ok := p.Entries[f.Property]; ok && entry.Text != f.Value {
			entry.SetText(f.Value)
		}
	}
	if s.CopyLabel != "" && p.Copy.Text != s.CopyLabel {
		p.Copy.SetText(s.CopyLabel)
	}
}
