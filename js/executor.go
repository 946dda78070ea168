package js

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
)

// ScriptFetcher loads the source of an external script. src is the raw
// attribute value; resolving it against the document URL is up to the
// fetcher.
type ScriptFetcher func(ctx context.Context, src string) (string, error)

// ScriptExecutor handles executing scripts in an HTML document.
type ScriptExecutor struct {
	runtime   *Runtime
	domBinder *DOMBinder
	fetch     ScriptFetcher
	logger    *zap.Logger
}

// NewScriptExecutor binds doc into runtime and returns an executor for its
// scripts.
func NewScriptExecutor(runtime *Runtime, doc *dom.Document, host inspector.Host) *ScriptExecutor {
	binder := NewDOMBinder(runtime, doc, host)
	binder.BindDocument()
	return &ScriptExecutor{
		runtime:   runtime,
		domBinder: binder,
		logger:    runtime.logger.Named("scripts"),
	}
}

// Runtime returns the JavaScript runtime.
func (se *ScriptExecutor) Runtime() *Runtime {
	return se.runtime
}

// DOMBinder returns the DOM binder.
func (se *ScriptExecutor) DOMBinder() *DOMBinder {
	return se.domBinder
}

// SetScriptFetcher sets how external scripts are loaded. Without one,
// scripts with a src attribute are skipped.
func (se *ScriptExecutor) SetScriptFetcher(fetch ScriptFetcher) {
	se.fetch = fetch
}

// ExecuteScripts runs every script element of the document in document
// order. A failing script does not stop the ones after it.
func (se *ScriptExecutor) ExecuteScripts(ctx context.Context) []error {
	var errs []error
	for _, script := range se.domBinder.document.QuerySelectorAll("script") {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := se.executeScript(ctx, script); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// isJavaScript reports whether a script type attribute names a classic
// script.
func isJavaScript(scriptType string) bool {
	switch strings.ToLower(strings.TrimSpace(scriptType)) {
	case "", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript":
		return true
	}
	return false
}

// executeScript executes a single script element.
func (se *ScriptExecutor) executeScript(ctx context.Context, script *dom.Element) error {
	if !isJavaScript(script.GetAttribute("type")) {
		return nil
	}

	if src := script.GetAttribute("src"); src != "" {
		if se.fetch == nil {
			se.logger.Debug("Skipping external script", zap.String("src", src))
			return nil
		}
		code, err := se.fetch(ctx, src)
		if err != nil {
			se.logger.Warn("Failed to load script", zap.String("src", src), zap.Error(err))
			return fmt.Errorf("load script %s: %w", src, err)
		}
		return se.ExecuteExternalScript(code, src)
	}

	code := strings.TrimSpace(script.TextContent())
	if code == "" {
		return nil
	}
	name := "inline"
	if id := script.Id(); id != "" {
		name = "inline#" + id
	}
	return se.runtime.ExecuteScript(code, name)
}

// ExecuteExternalScript executes an external script with the given content.
// The scriptURL is used for error reporting.
func (se *ScriptExecutor) ExecuteExternalScript(content, scriptURL string) error {
	code := strings.TrimSpace(content)
	if code == "" {
		return nil
	}
	return se.runtime.ExecuteScript(code, scriptURL)
}

// DispatchLoadEvent fires load on the document, where window listeners
// are registered.
func (se *ScriptExecutor) DispatchLoadEvent() {
	se.domBinder.document.AsNode().DispatchEvent(dom.NewEvent("load"))
}

// RunEventLoop drives timers and queued callbacks until none are left or
// ctx is done.
func (se *ScriptExecutor) RunEventLoop(ctx context.Context) error {
	return se.runtime.Run(ctx)
}

// Cleanup drops pending work and cached wrappers.
func (se *ScriptExecutor) Cleanup() {
	se.runtime.Stop()
	se.domBinder.ClearCache()
	se.runtime.ClearErrors()
}
