package inspector

import (
	"context"
	"sync"
)

// Clipboard receives exported styles. Writes may be refused.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// MemoryClipboard keeps the last written text in memory.
type MemoryClipboard struct {
	mu     sync.Mutex
	text   string
	writes int
}

// WriteText stores text.
func (m *MemoryClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
	return nil
}

// Text returns the last written text.
func (m *MemoryClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many writes succeeded.
func (m *MemoryClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// DeniedClipboard refuses every write, like a browser without clipboard
// permission.
type DeniedClipboard struct{}

// WriteText always fails with ErrClipboardDenied.
func (DeniedClipboard) WriteText(context.Context, string) error {
	return ErrClipboardDenied
}
