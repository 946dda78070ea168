package cmd

import (
	"context"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/chrisuehlinger/domdebug/inspector"
)

// systemClipboard writes to the desktop clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return inspector.ErrClipboardDenied
	}
	return clipboard.WriteAll(text)
}

// recordingClipboard remembers the outcome of the last write so a
// command can report a copy that the panel only logged.
type recordingClipboard struct {
	inspector.Clipboard

	mu      sync.Mutex
	written bool
	err     error
}

func (r *recordingClipboard) WriteText(ctx context.Context, text string) error {
	err := r.Clipboard.WriteText(ctx, text)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written, r.err = err == nil, err
	return err
}

// result returns the error of the last write, or errNoCopy when nothing
// was written.
func (r *recordingClipboard) result() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if !r.written {
		return errNoCopy
	}
	return nil
}
