package ui

import (
	"context"

	"fyne.io/fyne/v2"
)

// Clipboard writes exported styles to the system clipboard.
type Clipboard struct {
	target fyne.Clipboard
}

// NewClipboard wraps a fyne clipboard, usually App.Clipboard().
func NewClipboard(target fyne.Clipboard) *Clipboard {
	return &Clipboard{target: target}
}

// WriteText implements inspector.Clipboard.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fyne.Do(func() { c.target.SetContent(text) })
	return nil
}
