// Package js runs page scripts on goja and exposes the document and the
// inspector to them.
//
// A Runtime is not safe for concurrent use. Scripts, timers and DOM
// listeners that call into script all run on the goroutine driving the
// event loop.
package js

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Options configures a Runtime.
type Options struct {
	Logger    *zap.Logger
	Clock     clockwork.Clock
	UserAgent string
}

// Runtime is a goja VM with the window globals a page script expects.
type Runtime struct {
	vm      *goja.Runtime
	logger  *zap.Logger
	console *zap.Logger
	clock   clockwork.Clock
	window  *goja.Object
	timers  *timerManager
	jobs    jobQueue
	start   time.Time

	mu      sync.Mutex
	errors  []error
	onError func(error)
}

func NewRuntime(opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "domdebug/1.0"
	}

	logger := opts.Logger.Named("js")
	r := &Runtime{
		vm:      goja.New(),
		logger:  logger,
		console: logger.Named("console"),
		clock:   opts.Clock,
		timers:  newTimerManager(opts.Clock),
		start:   opts.Clock.Now(),
	}
	r.setupConsole()
	r.setupTimers()
	r.setupWindow(opts.UserAgent)
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Window returns the global object.
func (r *Runtime) Window() *goja.Object {
	return r.window
}

// SetOnError is called for every recorded script error.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

func (r *Runtime) recordError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()

	r.logger.Warn("Script error", zap.Error(err))
	if handler != nil {
		handler(err)
	}
}

// guard turns a Go panic raised while script runs into an error, records
// every error and hands it back.
func (r *Runtime) guard(what string, run func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic: %v", what, p)
		}
		if err != nil {
			r.recordError(err)
		}
	}()
	return run()
}

// Execute evaluates code and returns its completion value.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	err = r.guard("execute", func() error {
		result, err = r.vm.RunString(code)
		return err
	})
	return result, err
}

// ExecuteScript compiles and runs a classic (sloppy mode) script. name
// shows up in error locations.
func (r *Runtime) ExecuteScript(code, name string) error {
	return r.guard(name, func() error {
		program, err := goja.Compile(name, code, false)
		if err != nil {
			return err
		}
		_, err = r.vm.RunProgram(program)
		return err
	})
}

// call invokes a script callback. A thrown exception is recorded, not
// propagated.
func (r *Runtime) call(fn goja.Callable, this goja.Value, args ...goja.Value) {
	_ = r.guard("callback", func() error {
		_, err := fn(this, args...)
		return err
	})
}

// Errors returns every script error recorded since the last ClearErrors.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors forgets recorded errors.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// throw raises a TypeError in the calling script.
func (r *Runtime) throw(format string, args ...any) {
	panic(r.vm.NewTypeError(fmt.Sprintf(format, args...)))
}

// setupConsole routes console output to the "console" logger.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	method := func(name string, fn func(args []goja.Value)) {
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			fn(call.Arguments)
			return goja.Undefined()
		})
	}
	printer := func(log func(string, ...zap.Field)) func([]goja.Value) {
		return func(args []goja.Value) { log(formatArgs(args)) }
	}

	method("log", printer(r.console.Info))
	method("info", printer(r.console.Info))
	method("warn", printer(r.console.Warn))
	method("error", printer(r.console.Error))
	method("debug", printer(r.console.Debug))
	method("trace", printer(r.console.Debug))
	method("clear", func([]goja.Value) {})

	method("assert", func(args []goja.Value) {
		if len(args) > 0 && args[0].ToBoolean() {
			return
		}
		msg := "Assertion failed"
		if len(args) > 1 {
			msg += ": " + formatArgs(args[1:])
		}
		r.console.Error(msg)
	})

	counts := map[string]int{}
	method("count", func(args []goja.Value) {
		label := labelArg(args)
		counts[label]++
		r.console.Info(fmt.Sprintf("%s: %d", label, counts[label]))
	})
	method("countReset", func(args []goja.Value) { delete(counts, labelArg(args)) })

	started := map[string]time.Time{}
	elapsed := func(label string) bool {
		t0, ok := started[label]
		if ok {
			r.console.Info(fmt.Sprintf("%s: %v", label, r.clock.Since(t0)))
		}
		return ok
	}
	method("time", func(args []goja.Value) { started[labelArg(args)] = r.clock.Now() })
	method("timeLog", func(args []goja.Value) { elapsed(labelArg(args)) })
	method("timeEnd", func(args []goja.Value) {
		if label := labelArg(args); elapsed(label) {
			delete(started, label)
		}
	})

	r.vm.Set("console", console)
}

func labelArg(args []goja.Value) string {
	if len(args) > 0 && !goja.IsUndefined(args[0]) {
		return args[0].String()
	}
	return "default"
}

// setupTimers creates setTimeout, setInterval, clearTimeout, clearInterval.
func (r *Runtime) setupTimers() {
	schedule := func(repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			callback, ok := goja.AssertFunction(call.Argument(0))
			if !ok {
				return goja.Undefined()
			}
			delay := max(call.Argument(1).ToInteger(), 0)
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = call.Arguments[2:]
			}
			d := time.Duration(delay) * time.Millisecond
			if repeat {
				// Intervals shorter than 4ms are clamped.
				return r.vm.ToValue(r.timers.setInterval(callback, max(d, 4*time.Millisecond), args))
			}
			return r.vm.ToValue(r.timers.setTimeout(callback, d, args))
		}
	}
	cancel := func(call goja.FunctionCall) goja.Value {
		r.timers.clearTimer(int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", schedule(false))
	r.vm.Set("setInterval", schedule(true))
	r.vm.Set("clearTimeout", cancel)
	r.vm.Set("clearInterval", cancel)

	// requestAnimationFrame approximates a 60Hz frame with a 16ms timeout.
	r.vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		args := []goja.Value{r.vm.ToValue(r.now())}
		return r.vm.ToValue(r.timers.setTimeout(callback, 16*time.Millisecond, args))
	})
	r.vm.Set("cancelAnimationFrame", cancel)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			r.throw("queueMicrotask: argument is not a function")
		}
		r.jobs.push(callback)
		return goja.Undefined()
	})
}

// now returns milliseconds since the runtime started.
func (r *Runtime) now() float64 {
	return float64(r.clock.Since(r.start).Nanoseconds()) / 1e6
}

// setupWindow makes the global object the window and adds the browser
// globals that do not depend on a document.
func (r *Runtime) setupWindow(userAgent string) {
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)
	window.Set("parent", window)
	window.Set("top", window)
	window.Set("devicePixelRatio", 1.0)

	navigator := r.vm.NewObject()
	navigator.Set("userAgent", userAgent)
	navigator.Set("language", "en-US")
	navigator.Set("languages", []string{"en-US", "en"})
	navigator.Set("platform", "domdebug")
	navigator.Set("onLine", true)
	navigator.Set("cookieEnabled", false)
	window.Set("navigator", navigator)

	dialog := func(kind string, result goja.Value) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			r.console.Info(formatArgs(call.Arguments), zap.String("dialog", kind))
			return result
		}
	}
	window.Set("alert", dialog("alert", goja.Undefined()))
	window.Set("confirm", dialog("confirm", r.vm.ToValue(true)))
	window.Set("prompt", dialog("prompt", goja.Null()))

	performance := r.vm.NewObject()
	performance.Set("now", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(r.now())
	})
	performance.Set("timeOrigin", float64(r.start.UnixNano())/1e6)
	window.Set("performance", performance)

	cssObj := r.vm.NewObject()
	cssObj.Set("escape", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(cssEscape(call.Argument(0).String()))
	})
	window.Set("CSS", cssObj)

	r.window = window
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}

// cssEscape escapes a string for use as a CSS identifier.
func cssEscape(input string) string {
	var b strings.Builder
	for i, r := range input {
		switch {
		case r == 0:
			b.WriteString("\ufffd")
		case (r >= 0x0001 && r <= 0x001f) || r == 0x007f:
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(input) == 1:
			b.WriteString("\\-")
		case r < 0x0080 && !isIdentRune(r):
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
