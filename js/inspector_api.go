package js

import (
	"context"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
)

// GuardGlobal is set on the window once the inspector API is installed.
// Installing again while it is truthy does nothing.
const GuardGlobal = "__DOM_DEBUG_ACTIVE__"

// InstallInspector exposes ctrl to page scripts as window.domDebug. It
// reports false, leaving the window untouched, when a previous install
// already set the guard global.
func (se *ScriptExecutor) InstallInspector(ctrl *inspector.Controller) bool {
	vm := se.runtime.vm
	window := se.runtime.window
	if guard := window.Get(GuardGlobal); guard != nil && guard.ToBoolean() {
		se.logger.Debug("Inspector API already installed")
		return false
	}

	api := vm.NewObject()
	check := func(err error) {
		if err != nil {
			se.runtime.throw("%v", err)
		}
	}

	// The calls below take effect before they return, also from listeners
	// and timers, which run between inspector events.
	api.Set("toggle", func(goja.FunctionCall) goja.Value {
		if ctrl.Mode() == inspector.Inactive {
			check(ctrl.Activate())
		} else {
			check(ctrl.Deactivate())
		}
		return vm.ToValue(ctrl.Mode().String())
	})
	api.Set("activate", func(goja.FunctionCall) goja.Value {
		check(ctrl.Activate())
		return goja.Undefined()
	})
	api.Set("close", func(goja.FunctionCall) goja.Value {
		check(ctrl.Deactivate())
		return goja.Undefined()
	})
	// select accepts an element or a selector.
	api.Set("select", func(call goja.FunctionCall) goja.Value {
		el := se.resolveTarget(ctrl.Document(), call.Argument(0))
		check(ctrl.Select(el))
		return se.domBinder.elementValue(el)
	})
	api.Set("set", func(call goja.FunctionCall) goja.Value {
		check(ctrl.Apply(call.Argument(0).String(), call.Argument(1).String()))
		return goja.Undefined()
	})
	api.Set("export", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(ctrl.Snapshot().Applied)
	})
	api.Set("copy", func(goja.FunctionCall) goja.Value {
		ctrl.Copy(context.Background())
		return goja.Undefined()
	})
	api.Set("state", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(ctrl.Mode().String())
	})
	api.Set("selected", func(goja.FunctionCall) goja.Value {
		return se.domBinder.elementValue(ctrl.Selected())
	})
	api.Set("header", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(ctrl.Snapshot().Header)
	})
	api.Set("fields", func(goja.FunctionCall) goja.Value {
		snap := ctrl.Snapshot()
		out := vm.NewObject()
		for _, f := range snap.Fields {
			out.Set(f.Property, f.Value)
		}
		return out
	})

	window.Set("domDebug", api)
	window.DefineDataProperty(GuardGlobal, vm.ToValue(true), goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	se.logger.Info("Inspector API installed", zap.String("prefix", ctrl.Prefix()))
	return true
}

// ExposeInstaller defines window.installDomDebug(), which attaches an
// inspector through attach and installs the API. It returns true on the
// first call and false afterwards.
func (se *ScriptExecutor) ExposeInstaller(attach func() (*inspector.Controller, error)) {
	se.runtime.window.Set("installDomDebug", func(goja.FunctionCall) goja.Value {
		if guard := se.runtime.window.Get(GuardGlobal); guard != nil && guard.ToBoolean() {
			return se.runtime.vm.ToValue(false)
		}
		ctrl, err := attach()
		if err != nil {
			se.runtime.throw("installDomDebug: %v", err)
		}
		return se.runtime.vm.ToValue(se.InstallInspector(ctrl))
	})
}

// resolveTarget turns a script argument into an element: a bound element
// is used as is, anything else is treated as a selector.
func (se *ScriptExecutor) resolveTarget(doc *dom.Document, v goja.Value) *dom.Element {
	if el := se.domBinder.GoElement(v); el != nil {
		return el
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	el, err := css.QuerySelector(doc.AsNode(), v.String())
	if err != nil {
		se.runtime.throw("select: %v", err)
	}
	return el
}
