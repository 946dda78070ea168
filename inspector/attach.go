package inspector

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/dom"
)

// registry keeps one inspector per document.
var registry = struct {
	sync.Mutex
	byDoc map[*dom.Document]*Controller
}{byDoc: make(map[*dom.Document]*Controller)}

// Attach installs an inspector on doc and returns it. A document that
// already has one gets the existing inspector back and opts are ignored.
// If doc is still loading, the inspector's nodes are added when
// DOMContentLoaded fires.
func Attach(doc *dom.Document, opts Options) (*Controller, error) {
	registry.Lock()
	defer registry.Unlock()
	if c, ok := registry.byDoc[doc]; ok {
		return c, nil
	}
	if opts.Host == nil {
		return nil, ErrNoHost
	}

	c := newController(doc, opts)
	if doc.ReadyState() == dom.ReadyStateLoading {
		doc.OnContentLoaded(func() {
			if err := c.call("mount", c.mount); err != nil {
				c.logger.Error("Failed to attach inspector", zap.Error(err))
				forget(doc, c)
			}
		})
		c.logger.Debug("Document loading, attach deferred")
	} else if err := c.call("mount", c.mount); err != nil {
		return nil, fmt.Errorf("attach inspector: %w", err)
	}
	registry.byDoc[doc] = c
	return c, nil
}

// forget drops c if it is still the inspector registered for doc.
func forget(doc *dom.Document, c *Controller) {
	registry.Lock()
	defer registry.Unlock()
	if registry.byDoc[doc] == c {
		delete(registry.byDoc, doc)
	}
}

// Lookup returns the inspector attached to doc.
func Lookup(doc *dom.Document) (*Controller, bool) {
	registry.Lock()
	defer registry.Unlock()
	c, ok := registry.byDoc[doc]
	return c, ok
}
